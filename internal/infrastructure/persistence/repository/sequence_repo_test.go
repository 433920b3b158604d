package repository

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSequenceRepository_NextValue(t *testing.T) {
	db := newTestDB(t)
	repo := NewSequenceRepository(db, zap.NewNop())
	ctx := context.Background()

	t.Run("starts at one and increments without gaps", func(t *testing.T) {
		for want := int64(1); want <= 5; want++ {
			got, err := repo.NextValue(ctx, 2025)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("years are scoped independently", func(t *testing.T) {
		got, err := repo.NextValue(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)

		got, err = repo.NextValue(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(6), got)
	})
}

func TestSequenceRepository_NextValue_Concurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSequenceRepository(db, zap.NewNop())

	const callers = 50
	values := make(chan int64, callers)
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.NextValue(context.Background(), 2025)
			if err != nil {
				t.Error(err)
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	var got []int64
	for v := range values {
		got = append(got, v)
	}
	require.Len(t, got, callers)

	// N concurrent callers must observe N distinct, contiguous values
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(i+1), v)
	}
}
