package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gmllt/prepboard/internal/api"
	"github.com/gmllt/prepboard/internal/boardview"
	"github.com/gmllt/prepboard/internal/notify"
	"github.com/gmllt/prepboard/internal/seed"
	"github.com/gmllt/prepboard/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the board HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	seeds, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to init %s store: %w", cfg.Storage.Driver, err)
	}
	defer st.Close()

	feed := notify.NewFeed(cfg.Notify.FeedSize)
	sink := notify.Multi{feed, notify.NewLogger(logger)}
	boards := boardview.NewRegistry(st, seeds, sink, logger, cfg.Storage.Timeout)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(boards, feed, logger, cfg.Server.StaticDir).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("board server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.Strings("boards", seeds.Names()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	// let optimistic updates reach the store before it is closed
	boards.Wait()
	return nil
}
