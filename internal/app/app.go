// Package app initializes and runs the dashboard frontend service.
// It configures logging, the backend gateway, session resolution and
// routing, and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkeunid/linkeun-dash/internal/apiclient"
	"github.com/linkeunid/linkeun-dash/internal/breach"
	"github.com/linkeunid/linkeun-dash/internal/config"
	"github.com/linkeunid/linkeun-dash/internal/handlers"
	"github.com/linkeunid/linkeun-dash/internal/linkquery"
	"github.com/linkeunid/linkeun-dash/internal/logger"
	"github.com/linkeunid/linkeun-dash/internal/metrics"
	"github.com/linkeunid/linkeun-dash/internal/ratelimit"
	"github.com/linkeunid/linkeun-dash/internal/router"
	"github.com/linkeunid/linkeun-dash/internal/session"
)

// App encapsulates the configuration, HTTP handler and background
// services (rate-limiter sweep) needed to run the dashboard frontend.
type App struct {
	cfg          *config.Config
	loginLimiter *ratelimit.Limiter
	httpHandler  http.Handler
}

// New initializes a new App by:
// - loading configuration
// - initializing the logger
// - building the backend gateway factory and read-query services
// - setting up the router and middleware
func New() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	newClient := func(token string) *apiclient.Client {
		opts := []apiclient.Option{
			apiclient.WithTimeout(cfg.UpstreamTimeout),
			apiclient.WithObserver(collector.RecordUpstream),
		}
		if token != "" {
			opts = append(opts, apiclient.WithToken(token))
		}
		return apiclient.New(cfg.APIBaseURL, opts...)
	}

	resolver := session.New(
		newClient,
		cfg.AuthCookieName,
		cfg.IsProduction(),
		session.WithRecorder(collector.RecordSession),
	)

	links := linkquery.New(newClient, cfg.LinksPerPage)
	breachChecker := breach.New(cfg.BreachAPIBaseURL, breach.WithTimeout(cfg.UpstreamTimeout))

	loginLimiter := ratelimit.New(cfg.LoginRatePerMin, cfg.LoginBurst)

	httpHandler := router.New(
		handlers.New(newClient, resolver, links, breachChecker),
		resolver,
		loginLimiter,
		collector,
		registry,
	)

	return &App{
		cfg:          cfg,
		loginLimiter: loginLimiter,
		httpHandler:  httpHandler,
	}, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr, "APIBaseURL", a.cfg.APIBaseURL)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Exiting...")
		a.loginLimiter.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
