package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/product-management/internal/agent"
	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/log"
	"github.com/tuanvumaihuynh/product-management/internal/telemetry"
	"github.com/tuanvumaihuynh/product-management/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running agent application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		Agent config.Agent
		Otel  config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// stdout carries the protocol in stdio mode, so logs go to stderr.
	logger := slog.New(log.NewHandler(os.Stderr, cfg.Log))
	slog.SetDefault(logger)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	client := agent.NewClient(cfg.Agent.ProductAPIURL, cfg.Agent.APITimeout)
	mcpServer := agent.NewServer(client, logger)

	interruptChan := cmdutil.InterruptChan()

	if cfg.Agent.Transport == config.AgentTransportStdio {
		go func() {
			<-interruptChan
			cancel()
		}()

		logger.InfoContext(ctx, "agent service started", slog.String("transport", cfg.Agent.Transport.String()))
		return agent.ServeStdio(ctx, mcpServer, os.Stdin, os.Stdout, logger)
	}

	cleanup, err := agent.ServeHTTP(ctx, cfg.Agent, mcpServer, logger)
	if err != nil {
		return fmt.Errorf("error running agent service: %w", err)
	}
	logger.InfoContext(ctx, "agent service started",
		slog.String("transport", cfg.Agent.Transport.String()),
		slog.String("product_api", cfg.Agent.ProductAPIURL))

	<-interruptChan

	logger.InfoContext(ctx, "agent service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down agent service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "agent service is stopped")

	return nil
}
