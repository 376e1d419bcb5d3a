package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finxray/finxray/internal/commentary"
	"github.com/finxray/finxray/internal/dashboard"
	"github.com/finxray/finxray/internal/httpapi"
	"github.com/finxray/finxray/internal/store"
	"github.com/finxray/finxray/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a)
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "Listen address (overrides FINXRAY_ADDR)")
	f.String("db", "", "SQLite database path (overrides FINXRAY_DB_PATH)")
	f.String("web-dir", "", "Directory containing web UI files (overrides FINXRAY_WEB_DIR)")
	f.String("backend-url", "", "Dashboard analysis backend URL (overrides FINXRAY_BACKEND_URL)")
	f.Int("trial-limit", 0, "Free analyses for new accounts (overrides FINXRAY_TRIAL_LIMIT)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "finxray", Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	st.SetTrialLimit(cfg.TrialLimit)

	opts := httpapi.Options{
		Store:       st,
		PDFRenderer: httpapi.NewChromiumPDFRenderer(cfg.WebDir),
		WebDir:      cfg.WebDir,
		Version:     Version,
		Logger:      logger,
	}
	if caller, err := commentary.NewAnthropicCaller(cfg.AnthropicKey); err == nil {
		opts.Commenter = commentary.NewWriter(caller, logger)
	} else {
		logger.Info("analyst commentary disabled", zap.Error(err))
	}
	if cfg.BackendURL != "" {
		opts.Dashboard = dashboard.NewClient(dashboard.ClientConfig{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout})
	} else {
		logger.Info("dashboard uploads disabled; FINXRAY_BACKEND_URL not set")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewServer(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("finxray listening",
			zap.String("addr", cfg.Addr),
			zap.String("db", cfg.DBPath),
			zap.String("web_dir", cfg.WebDir),
			zap.Int("trial_limit", cfg.TrialLimit),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		logger.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
