package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config captures runtime configuration values used by the backend service.
type Config struct {
	// ServerAddress is the host:port pair the HTTP server listens on. Defaults to ":18111".
	ServerAddress string

	// StripeSecretKey authenticates calls to the Stripe API.
	StripeSecretKey string

	// StripeAPIURL overrides the Stripe API base URL (stripe-mock, tests).
	StripeAPIURL string

	// PlanPrices maps plan tier names (models.PlanStarter, ...) to Stripe price IDs.
	PlanPrices map[string]string

	// StoreDriver selects the persistence backend: "postgres" (default) or "redis".
	StoreDriver string

	// DatabaseURL is the Postgres DSN used by database/sql.
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AllowedOrigins is the CORS allow-list. The first entry is the fallback
	// origin for requests from unknown origins.
	AllowedOrigins []string
}

const (
	defaultServerAddress = ":18111"
	defaultRedisAddr     = "localhost:6379"

	envServerAddress   = "BACKEND_ADDR"
	envStripeSecretKey = "STRIPE_SECRET_KEY"
	envStripeAPIURL    = "STRIPE_API_URL"
	envPlanCatalogFile = "PLAN_CATALOG_FILE"
	envStoreDriver     = "STORE_DRIVER"
	envDatabaseURL     = "DATABASE_URL"
	envRedisAddr       = "REDIS_ADDR"
	envRedisPassword   = "REDIS_PASSWORD"
	envRedisDB         = "REDIS_DB"
	envAllowedOrigins  = "CORS_ALLOWED_ORIGINS"
)

// planPriceEnv maps each plan tier to the env var holding its price ID.
var planPriceEnv = map[string]string{
	models.PlanStarter:      "STRIPE_PRICE_STARTER",
	models.PlanProfessional: "STRIPE_PRICE_PROFESSIONAL",
	models.PlanPremium:      "STRIPE_PRICE_PREMIUM",
	models.PlanEnterprise:   "STRIPE_PRICE_ENTERPRISE",
}

// DefaultAllowedOrigins is used when CORS_ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"https://tryinterview.site",
	"https://www.tryinterview.site",
}

// Load reads configuration from environment variables, applies defaults, and returns
// a Config structure. Required values return an error when missing.
func Load() (Config, error) {
	cfg := Config{
		ServerAddress:   firstNonEmpty(os.Getenv(envServerAddress), defaultServerAddress),
		StripeSecretKey: strings.TrimSpace(os.Getenv(envStripeSecretKey)),
		StripeAPIURL:    strings.TrimSpace(os.Getenv(envStripeAPIURL)),
		StoreDriver:     strings.ToLower(firstNonEmpty(os.Getenv(envStoreDriver), StoreDriverPostgres)),
		DatabaseURL:     os.Getenv(envDatabaseURL),
		RedisAddr:       firstNonEmpty(os.Getenv(envRedisAddr), defaultRedisAddr),
		RedisPassword:   os.Getenv(envRedisPassword),
		AllowedOrigins:  DefaultAllowedOrigins,
	}

	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("%s is required", envStripeSecretKey)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("%s is required", envDatabaseURL)
		}
	case StoreDriverRedis:
	default:
		return Config{}, fmt.Errorf("invalid %s %q: want %s or %s", envStoreDriver, cfg.StoreDriver, StoreDriverPostgres, StoreDriverRedis)
	}

	if value := os.Getenv(envRedisDB); value != "" {
		db, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envRedisDB, err)
		}
		cfg.RedisDB = db
	}

	if value := os.Getenv(envAllowedOrigins); value != "" {
		cfg.AllowedOrigins = splitList(value)
	}

	prices, err := loadPlanPrices(os.Getenv(envPlanCatalogFile))
	if err != nil {
		return Config{}, err
	}
	cfg.PlanPrices = prices

	return cfg, nil
}

// LoadDatabaseURL returns DATABASE_URL for tools that only touch the database.
func LoadDatabaseURL() (string, error) {
	dsn := os.Getenv(envDatabaseURL)
	if dsn == "" {
		return "", fmt.Errorf("%s is required", envDatabaseURL)
	}
	return dsn, nil
}

// PlanCatalog builds the price -> plan lookup from the configured price IDs.
func (c Config) PlanCatalog() models.PlanCatalog {
	return models.NewPlanCatalog(c.PlanPrices)
}

// planCatalogFile is the YAML layout of PLAN_CATALOG_FILE.
type planCatalogFile struct {
	Starter      string `yaml:"starter"`
	Professional string `yaml:"professional"`
	Premium      string `yaml:"premium"`
	Enterprise   string `yaml:"enterprise"`
}

// loadPlanPrices reads the optional catalog file, then lets STRIPE_PRICE_*
// variables override individual tiers.
func loadPlanPrices(path string) (map[string]string, error) {
	prices := make(map[string]string, len(planPriceEnv))

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", envPlanCatalogFile, err)
		}
		var file planCatalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", envPlanCatalogFile, err)
		}
		prices[models.PlanStarter] = strings.TrimSpace(file.Starter)
		prices[models.PlanProfessional] = strings.TrimSpace(file.Professional)
		prices[models.PlanPremium] = strings.TrimSpace(file.Premium)
		prices[models.PlanEnterprise] = strings.TrimSpace(file.Enterprise)
	}

	for tier, env := range planPriceEnv {
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			prices[tier] = value
		}
	}

	return prices, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
