// Package config loads the front-desk service configuration from the
// environment. A .env file in the working directory is read first when
// present; real environment variables win over it.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env      string // APP_ENV (dev, test, prod)
	Port     string // APP_PORT
	LogLevel string // LOG_LEVEL

	DBUser string // DB_USER
	DBPass string // DB_PASS or DB_PASSWORD, may be empty
	DBHost string // DB_HOST
	DBPort string // DB_PORT
	DBName string // DB_NAME

	JWTSecret string // JWT_SECRET, verifies tokens issued by the clinic's identity service

	GatewayTimeout  time.Duration // GATEWAY_TIMEOUT, bound on each records call
	SessionIdleTTL  time.Duration // SESSION_IDLE_TTL, idle encounters are evicted after this
	PaymentMethod   string        // PAYMENT_METHOD recorded on payments
	PaymentRemarks  string        // PAYMENT_REMARKS recorded on payments
	CurrencySymbol  string        // CURRENCY_SYMBOL used on printed receipts
	Timezone        *time.Location
	MaxTenderAmount decimal.Decimal // MAX_TENDER_AMOUNT, zero disables the check
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

// Load reads configuration and exits the process when a required variable
// is missing or malformed.
func Load() Config {
	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// FromEnv is Load without the exit.
func FromEnv() (Config, error) {
	// a missing .env is normal in containers
	_ = godotenv.Load()

	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}
	cfg := Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),

		LogLevel:       envStr("LOG_LEVEL", "info"),
		DBPass:         envStr("DB_PASS", os.Getenv("DB_PASSWORD")),
		GatewayTimeout: envDur("GATEWAY_TIMEOUT", 10*time.Second),
		SessionIdleTTL: envDur("SESSION_IDLE_TTL", 2*time.Hour),
		PaymentMethod:  envStr("PAYMENT_METHOD", "cash"),
		PaymentRemarks: envStr("PAYMENT_REMARKS", "Paid at front desk"),
		CurrencySymbol: envStr("CURRENCY_SYMBOL", "₱"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	tz := envStr("APP_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	cfg.MaxTenderAmount = decimal.Zero
	if v := os.Getenv("MAX_TENDER_AMOUNT"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return Config{}, fmt.Errorf("invalid MAX_TENDER_AMOUNT %q", v)
		}
		cfg.MaxTenderAmount = d
	}
	return cfg, nil
}
