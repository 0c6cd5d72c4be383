package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	watermark "github.com/yyyoichi/aethertag"
	"github.com/yyyoichi/aethertag/internal/config"
	"github.com/yyyoichi/aethertag/internal/ledger"
	"github.com/yyyoichi/aethertag/internal/server"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.StringP("config", "c", "", "YAML config file (default: $"+config.EnvVar+")")
		listen  = fs.String("listen", "", "override the listen address")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []watermark.Option{
		watermark.WithLogger(logger),
		watermark.WithMaxPixels(cfg.MaxPixels),
	}
	var srvOpts []server.Option
	if cfg.LedgerPath != "" {
		db, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, watermark.WithLedger(db))
		srvOpts = append(srvOpts, server.WithHealthCheck(db.Ping))
	}
	w, err := watermark.New(opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(w, cfg.Authenticator(), cfg.MaxUploadBytes, logger, srvOpts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "auth", cfg.Auth.Mode, "ledger", cfg.LedgerPath != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
