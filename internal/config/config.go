package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the hooklab service.
// Environment variables are parsed from the HOOKLAB_ prefix.
type Config struct {
	// Build target selects high-level environment: local or cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived when set to "auto"
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// zerolog level name: debug, info, warn, error
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Row store
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/hooklab.db"`

	// Attempts made to reach the row store at startup
	StoreConnectAttempts int `envconfig:"STORE_CONNECT_ATTEMPTS" default:"5"`

	// Free tier allowance granted on first access
	DefaultCredits int `envconfig:"DEFAULT_CREDITS" default:"5"`

	// Generative model
	LLMProvider   string `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-pro"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`

	// Social feed used for trend summaries
	NeynarAPIKey  string `envconfig:"NEYNAR_API_KEY" default:""`
	NeynarBaseURL string `envconfig:"NEYNAR_BASE_URL" default:"https://api.neynar.com"`
	TrendChannel  string `envconfig:"TREND_CHANNEL" default:"base"`
	TrendLimit    int    `envconfig:"TREND_LIMIT" default:"50"`

	// Optional trend summary cache; empty address disables it
	RedisAddr            string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword        string `envconfig:"REDIS_PASSWORD" default:""`
	TrendCacheTTLSeconds int    `envconfig:"TREND_CACHE_TTL_SECONDS" default:"300"`

	// Subscription contract
	ChainRPCURL          string `envconfig:"CHAIN_RPC_URL" default:"https://mainnet.base.org"`
	SubscriptionContract string `envconfig:"SUBSCRIPTION_CONTRACT" default:""`
	SubscribeURL         string `envconfig:"SUBSCRIBE_URL" default:"/subscribe"`

	UpstreamTimeoutSeconds int `envconfig:"UPSTREAM_TIMEOUT_SECONDS" default:"20"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	allowedLLM := map[string]bool{"gemini": true, "openai": true}
	if !allowedLLM[c.LLMProvider] {
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", c.LLMProvider)
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("unsupported LOG_LEVEL: %s", c.LogLevel)
		}
	}

	// Without a contract every wallet is free tier; only acceptable outside production.
	if c.IsProduction() && c.SubscriptionContract == "" {
		return fmt.Errorf("SUBSCRIPTION_CONTRACT is required when ENVIRONMENT=production")
	}

	if c.DefaultCredits < 0 {
		return fmt.Errorf("DEFAULT_CREDITS must be >= 0, got %d", c.DefaultCredits)
	}
	if c.TrendLimit <= 0 {
		c.TrendLimit = 50
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: HOOKLAB_HTTP_PORT, HOOKLAB_GEMINI_API_KEY
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("HOOKLAB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Str("log_level", cfg.LogLevel).
		Int("port", cfg.HTTPPort).
		Str("llm_provider", cfg.LLMProvider).
		Str("trend_channel", cfg.TrendChannel).
		Bool("trend_cache", cfg.RedisAddr != "").
		Str("chain_rpc_url", cfg.ChainRPCURL).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		BuildTarget: "local",
		DBDriver:    "sqlite",
		SQLitePath:  ":memory:",
		HTTPPort:    8080,
		LogLevel:    "info",
	}

	cfg.DefaultCredits = 5
	cfg.StoreConnectAttempts = 1
	cfg.LLMProvider = "gemini"
	cfg.GeminiModel = "gemini-pro"
	cfg.TrendChannel = "base"
	cfg.TrendLimit = 50
	cfg.TrendCacheTTLSeconds = 300
	cfg.SubscribeURL = "/subscribe"
	cfg.UpstreamTimeoutSeconds = 5

	cfg.HealthIntervalSeconds = 1
	cfg.HealthProbeTimeoutSeconds = 1
	cfg.BootstrapTimeoutSeconds = 1

	return cfg
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UpstreamTimeout is the per-call deadline applied by upstream HTTP clients.
func (c *Config) UpstreamTimeout() time.Duration {
	if c.UpstreamTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// TrendCacheTTL returns the lifetime of cached trend summaries.
func (c *Config) TrendCacheTTL() time.Duration {
	return time.Duration(c.TrendCacheTTLSeconds) * time.Second
}
