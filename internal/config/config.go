package config

import (
	"os"
	"time"

	"backend/internal/report"

	"github.com/shopspring/decimal"
)

// Config collects all runtime settings from the environment. Detector
// thresholds travel inside it so they reach the engine as explicit values,
// never as package-level constants.
type Config struct {
	Port         string
	DatabaseDSN  string
	QueryTimeout time.Duration
	Thresholds   report.Thresholds
	WebhookURL   string // empty disables the webhook channel
}

// Load reads the environment with development defaults.
func Load() Config {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		DatabaseDSN:  buildDSN(),
		QueryTimeout: getDuration("REPORT_QUERY_TIMEOUT", 10*time.Second),
		Thresholds:   report.DefaultThresholds(),
		WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
	}

	if v := os.Getenv("CASH_DIFFERENCE_TOLERANCE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			cfg.Thresholds.CashDifferenceTolerance = d
		}
	}
	if v := os.Getenv("FINANCE_MISMATCH_TOLERANCE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			cfg.Thresholds.FinanceMismatchTolerance = d
		}
	}
	if v := os.Getenv("WASTAGE_THRESHOLD_PERCENT"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			cfg.Thresholds.WastagePercent = d
		}
	}

	return cfg
}

func buildDSN() string {
	host := getenv("DB_HOST", "localhost")
	port := getenv("DB_PORT", "5432")
	user := getenv("DB_USER", "postgres")
	password := getenv("DB_PASSWORD", "postgres")
	name := getenv("DB_NAME", "postgres")
	sslMode := getenv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
