package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

const (
	defaultAppEnv       = "development"
	defaultDBPath       = "./freightcost.db"
	defaultPort         = "8080"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultCurrency     = "ETB"
	defaultAPIRateLimit = "60-M"
	devSessionSecret    = "freightcost-dev-session-secret"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DBPath             string
	LogLevel           string
	LogFormat          string
	SessionSecret      string
	AdminEmail         string
	AdminPassword      string
	AdminPasswordHash  string
	CORSAllowedOrigins []string
	APIRateLimit       string
	MetricsEnabled     bool
	Currency           string
	Rates              RateOverrides

	// Warnings lists non-fatal configuration problems for the caller to log.
	Warnings []string
}

// RateOverrides are optional replacements for the stored rate table factors.
// A nil field keeps the stored value.
type RateOverrides struct {
	ExportDiscountFactor *float64
	OptimizationDiscount *float64
	OptimizationMinStops *int
	StoragePenaltyRate   *float64
	StorageFreeDays      *int
}

// Apply returns settings with every set override replaced.
func (o RateOverrides) Apply(settings ratetable.Settings) ratetable.Settings {
	if o.ExportDiscountFactor != nil {
		settings.ExportDiscountFactor = *o.ExportDiscountFactor
	}
	if o.OptimizationDiscount != nil {
		settings.OptimizationDiscount = *o.OptimizationDiscount
	}
	if o.OptimizationMinStops != nil {
		settings.OptimizationMinStops = *o.OptimizationMinStops
	}
	if o.StoragePenaltyRate != nil {
		settings.StoragePenalty.DailyRate = *o.StoragePenaltyRate
	}
	if o.StorageFreeDays != nil {
		settings.StoragePenalty.FreeDays = *o.StorageFreeDays
	}
	return settings
}

// Empty reports whether no override is set.
func (o RateOverrides) Empty() bool {
	return o == RateOverrides{}
}

// Load reads environment variables, plus a local .env file when present, and
// returns a populated Config.
func Load() (*Config, error) {
	// Production injects real environment variables; the file is optional.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             strings.ToLower(valueOrDefault(k.String("APP_ENV"), defaultAppEnv)),
		Port:               valueOrDefault(k.String("PORT"), defaultPort),
		DBPath:             valueOrDefault(k.String("DB_PATH"), defaultDBPath),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), defaultLogLevel),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), defaultLogFormat),
		SessionSecret:      k.String("SESSION_SECRET"),
		AdminEmail:         strings.TrimSpace(k.String("ADMIN_EMAIL")),
		AdminPassword:      k.String("ADMIN_PASSWORD"),
		AdminPasswordHash:  strings.TrimSpace(k.String("ADMIN_PASSWORD_HASH")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		APIRateLimit:       valueOrDefault(k.String("API_RATE_LIMIT"), defaultAPIRateLimit),
		MetricsEnabled:     parseBool(k.String("METRICS_ENABLED"), true),
		Currency:           strings.ToUpper(valueOrDefault(k.String("CURRENCY"), defaultCurrency)),
	}

	var err error
	if cfg.Rates, err = loadRateOverrides(k); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return nil, errors.New("SESSION_SECRET is required outside development")
		}
		cfg.SessionSecret = devSessionSecret
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET is not set, using the development secret")
	}
	if cfg.AdminEmail == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_EMAIL is not set, rate administration is disabled")
	} else if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_PASSWORD_HASH is not set, rate administration is disabled")
	}

	return cfg, nil
}

// IsDev reports whether the application runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev" || c.AppEnv == "local"
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func loadRateOverrides(k *koanf.Koanf) (RateOverrides, error) {
	var o RateOverrides
	var err error
	if o.ExportDiscountFactor, err = optionalFloat(k, "EXPORT_DISCOUNT_FACTOR"); err != nil {
		return o, err
	}
	if o.OptimizationDiscount, err = optionalFloat(k, "OPTIMIZATION_DISCOUNT"); err != nil {
		return o, err
	}
	if o.OptimizationMinStops, err = optionalInt(k, "OPTIMIZATION_MIN_STOPS"); err != nil {
		return o, err
	}
	if o.StoragePenaltyRate, err = optionalFloat(k, "STORAGE_PENALTY_RATE"); err != nil {
		return o, err
	}
	if o.StorageFreeDays, err = optionalInt(k, "STORAGE_FREE_DAYS"); err != nil {
		return o, err
	}
	return o, nil
}

func optionalFloat(k *koanf.Koanf, key string) (*float64, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be numeric: %w", key, err)
	}
	return &v, nil
}

func optionalInt(k *koanf.Koanf, key string) (*int, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a whole number: %w", key, err)
	}
	return &v, nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
