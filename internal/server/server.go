// Package server runs the demo feedback site: forms guarded by polite spam
// prevention, with and without a custom fallback message, plus bypass
// variants that never show a CAPTCHA.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/ppiankov/politecaptcha/internal/alert"
	"github.com/ppiankov/politecaptcha/internal/config"
	"github.com/ppiankov/politecaptcha/internal/recaptcha"
	"github.com/ppiankov/politecaptcha/sdk/go/politecaptcha"
)

// BypassPrefix routes requests to the guard that never shows a CAPTCHA.
const BypassPrefix = "/bypass"

const shutdownTimeout = 10 * time.Second

// Server is the demo HTTP server.
type Server struct {
	cfg      *config.Config
	logger   logr.Logger
	sources  *config.Sources
	guard    *politecaptcha.Guard
	bypass   *politecaptcha.Guard
	reloader *config.Reloader
	http     *http.Server
}

// New wires the key sources, both guards and the routes.
func New(ctx context.Context, cfg *config.Config, logger logr.Logger) (*Server, error) {
	sources, err := config.OpenSources(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open key sources: %w", err)
	}

	provider := recaptcha.FromConfig(cfg.Provider, sources.Chain)
	guard, err := politecaptcha.New(
		politecaptcha.WithGenerator(recaptcha.NewGenerator(provider)),
		politecaptcha.WithValidator(recaptcha.NewValidator(provider)),
		politecaptcha.WithLogger(logger.WithName("guard")),
		politecaptcha.WithAuditLog(cfg.AuditLog),
		politecaptcha.WithAlerts(alert.NewDispatcher(cfg.Alerts, nil, logger.WithName("alert"))),
		politecaptcha.WithFallbackMessage(cfg.FallbackMessage),
	)
	if err != nil {
		sources.Close()
		return nil, err
	}

	bypass, err := politecaptcha.New(
		politecaptcha.WithBypass(),
		politecaptcha.WithLogger(logger.WithName("bypass")),
	)
	if err != nil {
		guard.Close()
		sources.Close()
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		sources: sources,
		guard:   guard,
		bypass:  bypass,
	}

	if sources.File != nil {
		r, err := config.NewReloader(sources.File, sources.File.Path(), logger.WithName("reload"))
		if err != nil {
			logger.Error(err, "hot-reload disabled")
		} else {
			s.reloader = r
		}
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the routed demo site.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mountForms(mux, "", s.guard)
	s.mountForms(mux, BypassPrefix, s.bypass)
	return mux
}

func (s *Server) mountForms(mux *http.ServeMux, prefix string, g *politecaptcha.Guard) {
	mux.Handle(prefix+"/without-fallback", g.Middleware(s.feedbackForm(g, "")))
	mux.Handle(prefix+"/with-fallback", g.Middleware(s.feedbackForm(g, withFallbackMessage)))
	mux.Handle("POST "+prefix+"/api/feedback", g.Enforce(http.HandlerFunc(s.handleAPIFeedback)))
}

// Serve listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.ServeOn(ctx, lis)
}

// ServeOn serves on lis until ctx is cancelled. For testing.
func (s *Server) ServeOn(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.reloader != nil {
		go s.reloader.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(lis)
	}()
	s.logger.Info("demo server listening", "addr", lis.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the audit log and key stores.
func (s *Server) Close() error {
	return errors.Join(s.guard.Close(), s.bypass.Close(), s.sources.Close())
}
