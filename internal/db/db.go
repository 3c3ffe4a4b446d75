// Package db opens the database, applies the schema and seeds demo data.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/crm-documents/internal/config"
	"github.com/diewo77/crm-documents/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RetryDelay is the pause between two connection attempts.
var RetryDelay = 2 * time.Second

// Connect opens the configured database, retrying while PostgreSQL starts.
func Connect(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logging.Discard()
	}
	dialector, target, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	attempts := cfg.Retries
	if attempts < 1 {
		attempts = 1
	}
	var db *gorm.DB
	for i := 1; i <= attempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = Ping(context.Background(), db)
		}
		if err == nil {
			break
		}
		log.Warn("database not ready", "attempt", i, "of", attempts, "err", err)
		if i < attempts {
			time.Sleep(RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", attempts, err)
	}
	log.Info("database connected", "driver", cfg.Driver, "target", target)
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case "", "postgres", "postgresql":
		dsn := NormalizeDSN(cfg.DSN())
		return postgres.Open(dsn), MaskDSN(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), cfg.Path, nil
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Ping checks the connection with a trivial query.
func Ping(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("SELECT 1").Error
}
