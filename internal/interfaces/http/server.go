// Package http provides the HTTP adapter over the ledger core.
// It is a thin layer: handlers translate requests to service calls and map
// the core's error taxonomy to status codes, adding no semantics of their own.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oirpng/receipt-ledger/internal/application/service"
	"github.com/oirpng/receipt-ledger/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server wired to the ledger services
func NewServer(
	config ServerConfig,
	catalog service.CatalogService,
	builder service.BuilderService,
	ledger service.LedgerService,
	pending service.PendingFeeService,
	register *report.RegisterExporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(catalog, builder, ledger, pending, register, logger),
		logger:   logger,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handlers.Health)

	api := s.router.Group("/api/v1")
	{
		api.GET("/fee-types", s.handlers.ListFeeTypes)
		api.GET("/fee-types/:code", s.handlers.GetFeeType)
		api.PUT("/fee-types/:code", s.handlers.UpsertFeeType)

		api.POST("/receipts", s.handlers.IssueReceipt)
		api.GET("/receipts", s.handlers.FindReceipts)
		api.GET("/receipts/:number", s.handlers.GetReceipt)
		api.POST("/receipts/:number/cancel", s.handlers.CancelReceipt)

		api.POST("/pending-fees", s.handlers.RecordPendingFee)
		api.GET("/pending-fees", s.handlers.ListPendingFees)
		api.POST("/pending-fees/settle", s.handlers.SettlePendingFee)

		api.GET("/reports/receipt-register", s.handlers.ExportReceiptRegister)
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
