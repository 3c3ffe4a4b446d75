package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/models"
	"github.com/golang-migrate/migrate/v4"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// requiredTables must exist once the schema is applied.
var requiredTables = []string{"proposals", "proposal_items", "invoices", "invoice_items", "email_logs"}

// Migrate applies the schema. With useSQL the embedded SQL migrations run
// through golang-migrate (PostgreSQL only); otherwise gorm AutoMigrate is used.
func Migrate(db *gorm.DB, useSQL bool, log *slog.Logger) error {
	if log == nil {
		log = logging.Discard()
	}
	if useSQL {
		if db.Dialector.Name() != "postgres" {
			return fmt.Errorf("sql migrations need postgres, got %s", db.Dialector.Name())
		}
		if err := runSQLMigrations(db, log); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
		log.Info("schema migrated", "mode", "automigrate")
	}
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(db *gorm.DB, log *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	driver, err := mpostgres.WithInstance(sqlDB, &mpostgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, _ := m.Version()
	log.Info("schema migrated", "mode", "sql", "version", version, "dirty", dirty)
	return nil
}
