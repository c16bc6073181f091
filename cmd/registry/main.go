// Package main implements the entry point for the registry viewer, a password-gated
// web page over a CSV export of the construction and repair registry.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/minstroy46-sys/kursk-registry-sub000/auth"
	"github.com/minstroy46-sys/kursk-registry-sub000/catalog"
	"github.com/minstroy46-sys/kursk-registry-sub000/config"
	"github.com/minstroy46-sys/kursk-registry-sub000/dataset"
	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/health"
	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
	"github.com/minstroy46-sys/kursk-registry-sub000/pkg/tlsutil"
	"github.com/minstroy46-sys/kursk-registry-sub000/web"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "registry"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.NewLoader(cliCfg.ConfigPath).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg, cliCfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "config", cfg.String())
		return nil
	}

	slog.Info("Starting registry viewer",
		"version", Version,
		"build_time", BuildTime,
		"config", cfg.String())

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	app, err := newApplication(signalCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	return app.serve(signalCtx, cfg)
}

// initializeCLI parses flags and handles the informational ones
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	return cliCfg, false, nil
}

// applyFlagOverrides lets explicit flags win over file and environment settings
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.LogLevel != "" {
		cfg.Log.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Log.Format = cliCfg.LogFormat
	}
	if cliCfg.Addr != "" {
		cfg.Server.Addr = cliCfg.Addr
	}
}

// application holds the wired components of a running viewer
type application struct {
	loader  *dataset.Loader
	gate    *auth.Gate
	catalog *catalog.Catalog
	server  *web.Server
	logger  *slog.Logger
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	metricsRegistry := metric.NewMetricsRegistry()
	coreMetrics := metricsRegistry.CoreMetrics()

	monitor := health.NewMonitor()
	monitor.OnChange(func(status health.Status) {
		coreMetrics.RecordHealthStatus(status.Component, status.Level())
	})

	retryCfg := errors.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.Source.RetryAttempts
	fetcherOpts := []dataset.FetcherOption{dataset.WithRetry(retryCfg)}
	if len(cfg.Source.CAFiles) > 0 {
		tlsCfg, err := tlsutil.LoadClientTLSConfig(tlsutil.ClientConfig{CAFiles: cfg.Source.CAFiles})
		if err != nil {
			return nil, fmt.Errorf("load source CA files: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsCfg
		fetcherOpts = append(fetcherOpts, dataset.WithHTTPClient(&http.Client{
			Timeout:   cfg.Source.Timeout,
			Transport: transport,
		}))
	}
	fetcher := dataset.NewHTTPFetcher(cfg.Source.Timeout, fetcherOpts...)

	loader, err := dataset.NewLoader(ctx, fetcher, cfg.Source.TTL,
		dataset.WithLogger(logger),
		dataset.WithMetrics(metricsRegistry),
		dataset.WithWaitTimeout(cfg.Source.WaitTimeout),
		dataset.WithHealthMonitor(monitor))
	if err != nil {
		return nil, fmt.Errorf("create dataset loader: %w", err)
	}

	gate, err := auth.NewGate(ctx, cfg.Auth.Password, cfg.Auth.SessionTTL,
		auth.WithLogger(logger),
		auth.WithMetrics(metricsRegistry))
	if err != nil {
		_ = loader.Close()
		return nil, fmt.Errorf("create auth gate: %w", err)
	}

	cat := catalog.New(loader, cfg.Source.URL,
		catalog.WithLogger(logger),
		catalog.WithMetrics(metricsRegistry))

	server, err := web.NewServer(cat, gate,
		web.WithLogger(logger),
		web.WithMetrics(metricsRegistry),
		web.WithHealthMonitor(monitor),
		web.WithRefreshCooldown(cfg.Server.RefreshCooldown),
		web.WithCookie(cfg.Auth.CookieName, cfg.Auth.SecureCookie, cfg.Auth.SessionTTL))
	if err != nil {
		_ = gate.Close()
		_ = loader.Close()
		return nil, fmt.Errorf("create web server: %w", err)
	}

	if !cat.Configured() {
		logger.Warn("Data source URL is not set; the registry page will show no records",
			"env", config.EnvSourceURL)
	}
	if !gate.Configured() {
		logger.Warn("Password is not set; every login attempt will be refused",
			"env", config.EnvPassword)
	}

	return &application{
		loader:  loader,
		gate:    gate,
		catalog: cat,
		server:  server,
		logger:  logger,
	}, nil
}

// serve runs the HTTP listener and the warm-up loop until ctx is done, then shuts
// the listener down within the configured timeout.
func (a *application) serve(ctx context.Context, cfg *config.Config) error {
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.server.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	if cfg.Server.TLS.Enabled {
		tlsCfg, err := tlsutil.LoadServerTLSConfig(tlsutil.ServerConfig{
			CertFile:   cfg.Server.TLS.CertFile,
			KeyFile:    cfg.Server.TLS.KeyFile,
			MinVersion: cfg.Server.TLS.MinVersion,
		})
		if err != nil {
			return fmt.Errorf("load server certificate: %w", err)
		}
		httpServer.TLSConfig = tlsCfg
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "addr", cfg.Server.Addr, "tls", cfg.Server.TLS.Enabled)
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.catalog.Run(gctx, cfg.Source.RefreshInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("Registry viewer shutdown complete")
	return nil
}

func (a *application) close() {
	if err := a.gate.Close(); err != nil {
		a.logger.Warn("Failed to stop session janitor", "error", err)
	}
	if err := a.loader.Close(); err != nil {
		a.logger.Warn("Failed to stop cache janitor", "error", err)
	}
}
