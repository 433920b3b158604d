package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/oirpng/receipt-ledger/internal/application/service"
	"github.com/oirpng/receipt-ledger/internal/config"
	"github.com/oirpng/receipt-ledger/internal/infrastructure/persistence/repository"
	"github.com/oirpng/receipt-ledger/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/oirpng/receipt-ledger/internal/interfaces/http"
	"github.com/oirpng/receipt-ledger/internal/report"
	"github.com/oirpng/receipt-ledger/pkg/database"
	"github.com/oirpng/receipt-ledger/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting fee receipt ledger",
		zap.String("number_prefix", cfg.Receipts.NumberPrefix),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db, logger)
	feeTypeRepo := repository.NewFeeTypeRepository(db, logger)
	receiptRepo := repository.NewReceiptRepository(db, logger)
	pendingRepo := repository.NewPendingFeeRepository(db, logger)
	sequenceRepo := repository.NewSequenceRepository(db, logger)

	serviceLogger := utils.NewZapAdapter(logger)

	catalogService := service.NewCatalogService(feeTypeRepo, serviceLogger)
	builderService := service.NewBuilderService(catalogService, serviceLogger)
	allocator := service.NewNumberAllocator(sequenceRepo, cfg.Receipts.NumberPrefix, cfg.Receipts.NumberWidth)
	ledgerService := service.NewLedgerService(receiptRepo, allocator, txManager, serviceLogger)
	pendingService := service.NewPendingFeeService(pendingRepo, serviceLogger)
	registerExporter := report.NewRegisterExporter(ledgerService, serviceLogger)

	server := httpapi.NewServer(
		httpapi.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		catalogService,
		builderService,
		ledgerService,
		pendingService,
		registerExporter,
		serviceLogger,
	)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
