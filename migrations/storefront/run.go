package main

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"time"

	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrator.RunMigrations(ctx, cfg.DefinitionDatabaseURL, MigrationsFS, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
}
