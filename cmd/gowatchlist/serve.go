package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/gowatchlist/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the popular list refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cmdCtx *commandContext) error {
	cfg, logger, err := cmdCtx.ensureConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.WithField("version", version).Info("Starting gowatchlist")
	logger.WithFields(logrus.Fields{
		"config_dir": cfg.ConfigDir,
		"backend":    cfg.StorageBackend,
	}).Info("Configuration loaded")

	shutdownTracing, err := telemetry.Setup(telemetry.NewLogExporter(logger), version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}()

	app, cleanup, err := initializeApp(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := app.Coordinator.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := app.Coordinator.Stop(); err != nil {
			logger.WithError(err).Error("Error during shutdown")
		}
	}()

	// Server.Start shuts the server down once ctx is cancelled
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- app.Server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("gowatchlist is running")

	var serverErr error
	select {
	case serverErr = <-serverDone:
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		serverErr = <-serverDone
	}
	if serverErr != nil && ctx.Err() == nil {
		return serverErr
	}
	if serverErr != nil {
		logger.WithError(serverErr).Error("Error during server shutdown")
	}

	logger.Info("gowatchlist stopped")
	return nil
}
