package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/tenderpricing/internal/config"
	"github.com/Simplici0/tenderpricing/internal/db"
	"github.com/Simplici0/tenderpricing/internal/migrations"
	"github.com/Simplici0/tenderpricing/internal/observability"
	"github.com/Simplici0/tenderpricing/internal/seed"
	"github.com/Simplici0/tenderpricing/internal/store"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

const (
	serviceName     = "tenderpricing"
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

type server struct {
	db         *sql.DB
	store      *store.Store
	svc        *tools.Service
	tools      *tools.Registry
	metrics    *observability.Metrics
	observer   observability.Observer
	logger     *slog.Logger
	adminToken string
}

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel, cfg.IsDev())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	srv, err := newServer(ctx, database, cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "env", cfg.AppEnv)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newServer migrates and seeds database, then wires the pricing service on top
// of the stored presets and defaults.
func newServer(ctx context.Context, database *sql.DB, cfg config.Config, logger *slog.Logger) (*server, error) {
	if err := migrations.Up(ctx, database); err != nil {
		return nil, err
	}

	stats, err := seed.Run(ctx, database, seed.Config{Defaults: cfg.Pricing})
	if err != nil {
		return nil, err
	}
	logger.Info("seed complete", "inserts", stats.Inserts)

	metrics := observability.NewMetrics()
	observer := observability.NewMulti(observability.NewSlogObserver(logger), metrics)

	st := store.New(database)
	svc := tools.NewService(st, cfg.ParallelCompare, observer)

	reg := tools.NewRegistry()
	if err := tools.Register(reg, svc, cfg.Pricing); err != nil {
		return nil, err
	}

	return &server{
		db:         database,
		store:      st,
		svc:        svc,
		tools:      reg,
		metrics:    metrics,
		observer:   observer,
		logger:     logger,
		adminToken: cfg.AdminToken,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/pricing/model", s.handleModel)
		r.Post("/pricing/compare", s.handleCompare)
		r.Post("/pricing/report", s.handleReportHTML)
		r.Post("/pricing/report.xlsx", s.handleReportXLSX)
		r.Post("/pricing/report.pdf", s.handleReportPDF)
		r.Post("/pricing/import", s.handleImport)

		r.Get("/tools", s.handleToolList)
		r.Post("/tools/{name}", s.handleToolCall)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminOnly)
		r.Get("/presets", s.handleAdminPresets)
		r.Put("/presets", s.handleAdminPresetsSave)
		r.Get("/defaults", s.handleAdminDefaults)
		r.Put("/defaults", s.handleAdminDefaultsSave)
	})

	return r
}

// requestLogger logs one line per request once the response is written.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		switch {
		case ww.Status() >= http.StatusInternalServerError:
			level = slog.LevelError
		case ww.Status() >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		s.logger.LogAttrs(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	version, err := migrations.Version(r.Context(), s.db)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ready",
		"service":        serviceName,
		"schema_version": version,
	})
}
