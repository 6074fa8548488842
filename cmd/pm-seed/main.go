package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/log"
	"github.com/tuanvumaihuynh/product-management/internal/repository"
	"github.com/tuanvumaihuynh/product-management/internal/seed"
	"github.com/tuanvumaihuynh/product-management/internal/service"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running seed application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	productService := service.NewProductService(logger, dbClient, repository.NewProductRepository(dbClient), nil)

	logger.InfoContext(ctx, "starting database seeding")

	created, err := seed.Run(ctx, logger, productService, seed.Products)
	if err != nil {
		return fmt.Errorf("error seeding database: %w", err)
	}

	logger.InfoContext(ctx, "database seeding completed",
		slog.Int("created", created),
		slog.Int("skipped", len(seed.Products)-created))

	return nil
}
