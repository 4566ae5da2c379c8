package config

import (
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

const (
	defaultDBPath   = "./tenderpricing.db"
	defaultPort     = "8080"
	defaultLogLevel = "info"
	defaultAppEnv   = "dev"
	defaultEnvFile  = ".env"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminToken string
	DBPath     string
	Port       string
	LogLevel   string
	AppEnv     string

	// Pricing defaults used when a request omits a percentage. They seed the
	// pricing_defaults row on first start.
	Pricing pricing.Parameters
	// ParallelCompare evaluates comparison strategies concurrently.
	ParallelCompare bool
}

// IsDev reports whether the service runs in the local development environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, "dev")
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Production injects real env vars; the dotenv file is for local runs.
	envFile := envOr("ENV_FILE", defaultEnvFile)
	if loaded, err := loadDotEnv(envFile); err != nil {
		slog.Warn("dotenv file ignored", "path", envFile, "error", err)
	} else if len(loaded) > 0 {
		slog.Debug("dotenv file loaded", "path", envFile, "keys", len(loaded))
	}

	cfg := Config{
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		DBPath:     envOr("DB_PATH", defaultDBPath),
		Port:       envOr("PORT", defaultPort),
		LogLevel:   envOr("LOG_LEVEL", defaultLogLevel),
		AppEnv:     envOr("APP_ENV", defaultAppEnv),
	}

	defaults := pricing.DefaultParameters()
	cfg.Pricing = pricing.Parameters{
		OverheadPct:     envPercent("PRICING_OVERHEAD_PCT", defaults.OverheadPct),
		ContingencyPct:  envPercent("PRICING_CONTINGENCY_PCT", defaults.ContingencyPct),
		ProfitMarginPct: envPercent("PRICING_PROFIT_MARGIN_PCT", defaults.ProfitMarginPct),
		TaxRatePct:      envPercent("PRICING_TAX_RATE_PCT", defaults.TaxRatePct),
		CurrencySymbol:  envOr("PRICING_CURRENCY_SYMBOL", defaults.CurrencySymbol),
	}
	cfg.ParallelCompare = envBool("PRICING_PARALLEL", false)

	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN is not set; admin endpoints are disabled")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envPercent parses a non-negative number. Anything else logs a warning and
// keeps the fallback.
func envPercent(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		slog.Warn("ignoring invalid percentage", "key", key, "value", raw)
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		slog.Warn("ignoring invalid boolean", "key", key, "value", raw)
		return fallback
	}
	return v
}
