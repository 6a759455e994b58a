// Package api exposes transparency scoring and question generation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/hedamo/transparency/pkg/logging"
	"github.com/hedamo/transparency/pkg/question"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	maxBodyBytes              = 10 << 20

	serviceName = "Product Transparency Service"
)

// Options configures the API server.
type Options struct {
	Address        string
	Generator      question.Generator
	Model          string
	Version        string
	AllowedOrigins []string
	MaxConcurrent  int
	Logger         *slog.Logger
}

// Server holds the handler dependencies.
type Server struct {
	gen     question.Generator
	model   string
	version string
	started time.Time
	logger  *slog.Logger
}

// NewHandler returns the API router.
func NewHandler(opts Options) http.Handler {
	if opts.Generator == nil {
		opts.Generator = question.TemplateGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 100
	}

	s := &Server{
		gen:     opts.Generator,
		model:   opts.Model,
		version: opts.Version,
		started: time.Now(),
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, logging.RequestLogger(opts.Logger), recoverJSON(opts.Logger))
	r.Use(allowOrigins(opts.AllowedOrigins))
	r.Use(throttleJSON(opts.MaxConcurrent))

	r.Get("/", s.info)
	r.Get("/health", s.health)

	r.Post("/transparency-score", s.transparencyScore)
	r.Post("/generate-questions", s.generateQuestions)

	r.Route("/api", func(r chi.Router) {
		r.Post("/transparency-score", s.transparencyScore)
		r.Post("/generate-questions", s.generateQuestions)
		r.Post("/analyze-product", s.analyzeProduct)
		r.Post("/generate-pdf-report", s.generateReport)
	})

	return r
}

// Serve runs the API on opts.Address until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, opts Options) error {
	s := &http.Server{
		Addr:           opts.Address,
		Handler:        NewHandler(opts),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", opts.Address))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
