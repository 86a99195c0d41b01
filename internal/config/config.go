package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"oficina/internal/logger"
)

// DefaultPaymentMethods is offered when PAYMENT_METHODS is unset. The first
// entry is the fallback for payment rows without a method.
var DefaultPaymentMethods = []string{"Dinheiro", "Pix", "Cartão de Crédito", "Cartão de Débito", "Transferência"}

type Config struct {
	// Data sources
	DataFile    string
	DatabaseURL string

	// Finance rules
	DueTermsDays   int
	Timezone       string
	PaymentMethods []string

	// HTTP server
	HTTPAddr string

	// Google Sheets export
	GoogleSheetURL          string
	GoogleServiceAccountKey string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string

	location *time.Location
}

func Load() (*Config, error) {
	dueTerms, err := strconv.Atoi(getEnv("DUE_TERMS_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: DUE_TERMS_DAYS must be a number: %w", err)
	}

	config := &Config{
		DataFile:                getEnv("DATA_FILE", "data/oficina.yaml"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		DueTermsDays:            dueTerms,
		Timezone:                getEnv("TIMEZONE", "America/Sao_Paulo"),
		PaymentMethods:          splitList(getEnv("PAYMENT_METHODS", "")),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		GoogleSheetURL:          getEnv("GOOGLE_SHEET_URL", ""),
		GoogleServiceAccountKey: getEnv("GOOGLE_SERVICE_ACCOUNT_KEY", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:           getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:               getEnv("LOG_OUTPUT", "stderr"),
	}
	if len(config.PaymentMethods) == 0 {
		config.PaymentMethods = append([]string(nil), DefaultPaymentMethods...)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DueTermsDays < 0 {
		return fmt.Errorf("DUE_TERMS_DAYS must not be negative, got %d", c.DueTermsDays)
	}
	if c.DataFile == "" && c.DatabaseURL == "" {
		return fmt.Errorf("DATA_FILE or DATABASE_URL is required")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location returns the zone used for month and day boundaries.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// UsesDatabase reports whether records are read from Postgres instead of the data file.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
