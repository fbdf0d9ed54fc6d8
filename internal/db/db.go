package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

func buildDSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, sslMode,
	)
}

// NewDatabase opens the Postgres pool sized from cfg and verifies it with a ping.
func NewDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return open(ctx, cfg, "postgres", buildDSN(cfg))
}

func open(ctx context.Context, cfg *config.Config, driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// InitDB is NewDatabase for process startup: it exits when the database is
// unreachable.
func InitDB(cfg *config.Config) *sql.DB {
	db, err := NewDatabase(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("database unavailable",
			zap.String("host", cfg.DBHost),
			zap.String("name", cfg.DBName),
			zap.Error(err),
		)
	}

	logger.L().Info("database connection established",
		zap.String("host", cfg.DBHost),
		zap.Int("max_open_conns", cfg.DBMaxOpenConns),
	)
	return db
}
