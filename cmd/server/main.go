package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/crm-documents/auth"
	"github.com/diewo77/crm-documents/internal/config"
	"github.com/diewo77/crm-documents/internal/db"
	"github.com/diewo77/crm-documents/internal/email"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/metrics"
	"github.com/diewo77/crm-documents/internal/pdf"
	"github.com/diewo77/crm-documents/internal/server"
	"github.com/diewo77/crm-documents/internal/services"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	dbConn, err := db.Connect(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg.App.Migrations, log); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, log); err != nil {
			log.Error("seeding failed", "err", err)
			os.Exit(1)
		}
		log.Info("seeding completed successfully")
		return
	}

	if err := db.Migrate(dbConn, cfg.App.Migrations, log); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn, log); err != nil {
			log.Error("seeding failed", "err", err)
			os.Exit(1)
		}
	}

	users, err := auth.NewDirectory(cfg.Auth.AdminPassword, cfg.Auth.UserPassword)
	if err != nil {
		log.Error("failed to build user directory", "err", err)
		os.Exit(1)
	}
	sessions := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	sessions.Secure = !cfg.App.Dev

	rate := cfg.Billing.DefaultTaxRate
	handler := server.New(dbConn, server.Options{
		Settings: services.Settings{
			DefaultTaxRate: &rate,
			PDF: pdf.Options{
				IssuerName:    cfg.Billing.IssuerName,
				IssuerTagline: cfg.Billing.IssuerTagline,
				Lang:          cfg.Billing.PDFLang,
			},
		},
		Sender:   email.LogSender{Log: log},
		MailFrom: cfg.Mail.From,
		Users:    users,
		Sessions: sessions,
		Metrics:  metrics.New(),
		Log:      log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped gracefully")
}
