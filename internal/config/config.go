package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	APIKey    string

	DB       DatabaseConfig
	Redis    RedisConfig
	SMSLive  SMSLiveConfig
	FiveSim  FiveSimConfig
	DaisySMS DaisySMSConfig
	FX       FXConfig
	Markup   MarkupConfig
	Refresh  RefreshConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SMSLiveConfig contains credentials for the SMSLive provider.
type SMSLiveConfig struct {
	BaseURL string
	APIKey  string
}

// FiveSimConfig contains credentials for the FiveSim provider.
type FiveSimConfig struct {
	BaseURL string
	Token   string
}

// DaisySMSConfig contains credentials for the DaisySMS provider.
type DaisySMSConfig struct {
	BaseURL string
	APIKey  string
}

// FXConfig holds exchange-rate configuration. Rates are static per process
// start; every priced catalog row records the rates actually used so older
// rows stay explainable after config changes.
type FXConfig struct {
	// USDNGN is the USD -> NGN rate used for display pricing.
	USDNGN float64
	// NativeUSD maps an ISO-like currency code to its -> USD rate.
	NativeUSD map[string]float64
	// ProviderCurrency maps a provider code to its native currency.
	// Unmapped providers default to USD.
	ProviderCurrency map[string]string
	// ProviderRateOverride optionally pins a provider's native -> USD rate,
	// taking precedence over NativeUSD.
	ProviderRateOverride map[string]float64
}

// MarkupConfig holds customer-facing markup parameters.
type MarkupConfig struct {
	// GlobalPercent is the default percentage markup applied to the
	// FX-converted cost. Negative values are allowed (promotional pricing).
	GlobalPercent float64
	// ProviderPercent overrides GlobalPercent per provider code.
	ProviderPercent map[string]float64
	// SurchargeNGN is a flat amount added after the percentage markup.
	// The percentage never applies to the surcharge.
	SurchargeNGN float64
}

// RefreshConfig contains catalog refresh orchestration parameters.
type RefreshConfig struct {
	// Countries is the list of country codes refreshed for every provider.
	Countries []string
	// Interval between scheduled refresh cycles.
	Interval time.Duration
	// CatalogInterval between country/service reference catalog syncs.
	CatalogInterval time.Duration
	// ProviderTimeout bounds each adapter fetch.
	ProviderTimeout time.Duration
	// Concurrency bounds the number of (provider, country) pairs in flight.
	Concurrency int
	// StaleWindow is how recently a row must have been seen to count as a
	// current offer.
	StaleWindow time.Duration
}

// knownProviders are the provider codes with env-tunable FX/markup knobs.
var knownProviders = []string{"smslive", "fivesim", "daisysms"}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.APIKey = getEnv("CLIENT_API_KEY", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Providers
	cfg.SMSLive = SMSLiveConfig{
		BaseURL: getEnv("SMSLIVE_BASE_URL", "https://api.smslive.io/stubs/handler_api.php"),
		APIKey:  getEnv("SMSLIVE_API_KEY", ""),
	}
	cfg.FiveSim = FiveSimConfig{
		BaseURL: getEnv("FIVESIM_BASE_URL", "https://5sim.net/v1"),
		Token:   getEnv("FIVESIM_TOKEN", ""),
	}
	cfg.DaisySMS = DaisySMSConfig{
		BaseURL: getEnv("DAISYSMS_BASE_URL", "https://daisysms.com/stubs/handler_api.php"),
		APIKey:  getEnv("DAISYSMS_API_KEY", ""),
	}

	// FX. Defaults cover the shipped provider set; ops can override any of
	// them without a deploy.
	usdNGN := getEnvFloat("FX_USD_NGN", 1600)
	cfg.FX = FXConfig{
		USDNGN: usdNGN,
		NativeUSD: map[string]float64{
			"USD": 1,
			"RUB": getEnvFloat("FX_RUB_USD", 0.011),
			"NGN": safeInverse(usdNGN),
		},
		ProviderCurrency: map[string]string{
			"smslive":  getEnv("SMSLIVE_CURRENCY", "RUB"),
			"fivesim":  getEnv("FIVESIM_CURRENCY", "RUB"),
			"daisysms": getEnv("DAISYSMS_CURRENCY", "USD"),
		},
		ProviderRateOverride: map[string]float64{},
	}
	for _, code := range knownProviders {
		key := fmt.Sprintf("%s_FX_RATE", strings.ToUpper(code))
		if v := getEnvFloat(key, 0); v > 0 {
			cfg.FX.ProviderRateOverride[code] = v
		}
	}

	// Markup
	cfg.Markup = MarkupConfig{
		GlobalPercent:   getEnvFloat("MARKUP_PERCENT", 10),
		ProviderPercent: map[string]float64{},
		SurchargeNGN:    getEnvFloat("MARKUP_SURCHARGE_NGN", 0),
	}
	for _, code := range knownProviders {
		key := fmt.Sprintf("%s_MARKUP_PERCENT", strings.ToUpper(code))
		if raw := os.Getenv(key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			cfg.Markup.ProviderPercent[code] = v
		}
	}

	// Refresh orchestration (durations)
	cfg.Refresh.Countries = splitList(getEnv("REFRESH_COUNTRIES", "NG,US,GB"))
	cfg.Refresh.Concurrency = getEnvInt("REFRESH_CONCURRENCY", 4)
	var err error
	if cfg.Refresh.Interval, err = parseDurationEnv("REFRESH_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	if cfg.Refresh.CatalogInterval, err = parseDurationEnv("CATALOG_SYNC_INTERVAL", "6h"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SYNC_INTERVAL: %w", err)
	}
	if cfg.Refresh.ProviderTimeout, err = parseDurationEnv("PROVIDER_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	if cfg.Refresh.StaleWindow, err = parseDurationEnv("PRICE_STALE_WINDOW", "30m"); err != nil {
		return nil, fmt.Errorf("invalid PRICE_STALE_WINDOW: %w", err)
	}
	if cfg.Refresh.Concurrency <= 0 {
		cfg.Refresh.Concurrency = 1
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for admin authentication")
	}

	if len(cfg.Refresh.Countries) == 0 {
		return nil, errors.New("REFRESH_COUNTRIES must name at least one country code")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitList splits a comma-separated env value, trimming blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.ToUpper(strings.TrimSpace(p)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// safeInverse returns 1/v, or 0 when v is 0 so a misconfigured rate surfaces
// as "rate unavailable" downstream instead of dividing by zero here.
func safeInverse(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
