// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
	Auth     AuthConfig
	Billing  BillingConfig
	Mail     MailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver   string
	RawDSN   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
	Debug    bool
	Retries  int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
}

type LogConfig struct {
	Level  string
	Format string // text or json
}

// AuthConfig holds the login gate settings. Passwords are plain here and
// hashed once when the user directory is built.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	AdminPassword string
	UserPassword  string
}

// BillingConfig holds document defaults and the issuer printed on PDFs.
type BillingConfig struct {
	DefaultTaxRate decimal.Decimal
	IssuerName     string
	IssuerTagline  string
	PDFLang        string
}

type MailConfig struct {
	From string
}

// DSN returns the PostgreSQL connection string in key=value format.
// A DATABASE_DSN value takes precedence over the individual fields.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if strings.HasPrefix(d.RawDSN, "postgres://") || strings.HasPrefix(d.RawDSN, "postgresql://") {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			RawDSN:   strings.Trim(strings.TrimSpace(os.Getenv("DATABASE_DSN")), "\"'"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "crm"),
			Password: getEnv("DB_PASSWORD", "crm123"),
			DBName:   getEnv("DB_NAME", "crm"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "crm.db"),
			Debug:    getEnvBool("DB_DEBUG", false),
			Retries:  getEnvInt("DB_CONNECT_RETRIES", 10),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
			Seed:       getEnvBool("DB_SEED", false),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", "devsessionsecret"),
			SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
			UserPassword:  getEnv("USER_PASSWORD", "user123"),
		},
		Billing: BillingConfig{
			DefaultTaxRate: getEnvDecimal("DEFAULT_TAX_RATE", decimal.NewFromInt(23)),
			IssuerName:     getEnv("ISSUER_NAME", "CRM Pro"),
			IssuerTagline:  getEnv("ISSUER_TAGLINE", "A sua Agência Web"),
			PDFLang:        getEnv("PDF_LANG", "pt"),
		},
		Mail: MailConfig{
			From: getEnv("MAIL_FROM", "CRM Pro <onboarding@resend.dev>"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
