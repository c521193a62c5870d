package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/schemarun/internal/auth"
	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/ledger"
)

// Config controls the inspector API.
type Config struct {
	Addr            string
	JWT             auth.VerifyConfig
	TenantPattern   string
	LedgerEnabled   bool
	LedgerTable     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = constants.DefaultListenAddr
	}
	if c.TenantPattern == "" {
		c.TenantPattern = constants.DefaultTenantPattern
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultRequestTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	return c
}

// Server is the read-only inspector API over one database handle. It owns
// the handle and closes it on shutdown.
type Server struct {
	cfg    Config
	handle *database.Handle
	ledger *ledger.Ledger
	engine *gin.Engine
	logger *common.Logger
}

// New builds the gin engine and routes.
func New(h *database.Handle, cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:    cfg,
		handle: h,
		logger: common.GetLogger().WithComponent("server"),
	}
	if cfg.LedgerEnabled {
		s.ledger = ledger.New(h.DB, h.Dialect, cfg.LedgerTable)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.health)

	api := engine.Group("/api", s.authenticate())
	api.GET("/columns/:table", s.columns)
	api.GET("/tenants", requireSuperAdmin(), s.tenants)
	api.GET("/history", requireRole("admin"), s.history)

	s.engine = engine
	return s
}

// Handler exposes the engine for embedding and tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// the database handle.
func (s *Server) Run(ctx context.Context) error {
	if s.ledger != nil {
		if err := s.ledger.Ensure(ctx); err != nil {
			s.logger.Warn("run history unavailable", "error", err)
			s.ledger = nil
		}
	}
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.RequestTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		s.logger.Info("shutting down inspector")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		err = srv.Shutdown(shutdownCtx)
		cancel()
	}
	if cerr := s.handle.Close(); cerr != nil {
		s.logger.Warn("failed to close database handle", "error", cerr)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
