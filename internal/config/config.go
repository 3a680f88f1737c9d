package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// Database
	SQLiteDBPath string

	// Billing policy
	PaymentTermDays   int  // invoice payment term, end-of-month based
	QuoteValidityDays int  // default quote validity window
	VATApplicable     bool // micro-entreprise regime: false
	VATRate           decimal.Decimal

	// Regulatory threshold (services revenue ceiling)
	RevenueThreshold decimal.Decimal
	AlertPercent     int

	// AMQP (document events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	ExpirySweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gestion.db"),

		PaymentTermDays:   getEnvInt("PAYMENT_TERM_DAYS", 30),
		QuoteValidityDays: getEnvInt("QUOTE_VALIDITY_DAYS", 30),
		VATApplicable:     getEnvBool("VAT_APPLICABLE", false),
		VATRate:           getEnvDecimal("VAT_RATE", "0.20"),

		RevenueThreshold: getEnvDecimal("REVENUE_THRESHOLD", "77700"),
		AlertPercent:     getEnvInt("ALERT_PERCENT", 80),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gestion"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "document_events"),

		ExpirySweepInterval: getEnvDuration("EXPIRY_SWEEP_INTERVAL", time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.PaymentTermDays < 1 {
		errs = append(errs, fmt.Sprintf("invalid payment term %d: must be at least 1 day", c.PaymentTermDays))
	}
	if c.QuoteValidityDays < 1 {
		errs = append(errs, fmt.Sprintf("invalid quote validity %d: must be at least 1 day", c.QuoteValidityDays))
	}
	if c.VATRate.IsNegative() {
		errs = append(errs, fmt.Sprintf("invalid VAT rate %s: must not be negative", c.VATRate))
	}
	if c.RevenueThreshold.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, fmt.Sprintf("invalid revenue threshold %s: must be positive", c.RevenueThreshold))
	}
	if c.AlertPercent < 1 || c.AlertPercent > 100 {
		errs = append(errs, fmt.Sprintf("invalid alert percent %d: must be between 1 and 100", c.AlertPercent))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExpirySweepInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid expiry sweep interval %v: must be at least 1 minute", c.ExpirySweepInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
