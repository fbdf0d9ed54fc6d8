package main

import (
	"context"
	"flag"
	"fmt"

	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/migrations"

	"go.uber.org/zap"
)

type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or version")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	sqlDB, err := db.NewDatabase(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("database unavailable", zap.Error(err))
	}

	m, err := migrations.New(sqlDB, logger.L())
	if err != nil {
		logger.L().Fatal("failed to load migrations", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, *mode); err != nil {
		logger.L().Fatal("migration failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func run(m migrator, mode string) error {
	switch mode {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
	case "down":
		if err := m.Down(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'version')", mode)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.L().Info("schema version",
		zap.String("mode", mode),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
