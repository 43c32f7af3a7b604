package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HOOKLAB_BUILD_TARGET", "HOOKLAB_DB_DRIVER", "HOOKLAB_DEFAULT_CREDITS", "HOOKLAB_LLM_PROVIDER", "HOOKLAB_LOG_LEVEL", "HOOKLAB_ENVIRONMENT"} {
		_ = os.Unsetenv(k)
	}

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.BuildTarget)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5, cfg.DefaultCredits)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "base", cfg.TrendChannel)
	assert.Equal(t, 50, cfg.TrendLimit)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOOKLAB_BUILD_TARGET", "cloud")
	t.Setenv("HOOKLAB_DEFAULT_CREDITS", "7")
	t.Setenv("HOOKLAB_LLM_PROVIDER", "openai")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 7, cfg.DefaultCredits)
	assert.Equal(t, "openai", cfg.LLMProvider)
}

func TestResolveDefaults_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"build target": func(c *Config) { c.BuildTarget = "mainframe" },
		"db driver":    func(c *Config) { c.DBDriver = "mysql" },
		"llm provider": func(c *Config) { c.LLMProvider = "claude-on-a-napkin" },
		"credits":      func(c *Config) { c.DefaultCredits = -1 },
		"log level":    func(c *Config) { c.LogLevel = "loud" },
		"production without contract": func(c *Config) {
			c.Environment = EnvProduction
			c.SubscriptionContract = ""
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewForTesting()
			mutate(cfg)
			assert.Error(t, cfg.ResolveDefaults())
		})
	}
}

func TestResolveDefaults_KeepsExplicitDriver(t *testing.T) {
	cfg := NewForTesting()
	cfg.BuildTarget = "local"
	cfg.DBDriver = "postgres"
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestUpstreamTimeout_Fallback(t *testing.T) {
	cfg := NewForTesting()
	cfg.UpstreamTimeoutSeconds = 0
	assert.Equal(t, "20s", cfg.UpstreamTimeout().String())
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.Equal(t, EnvTesting, cfg.Environment)
}

func TestResolveDefaults_ProductionWithContract(t *testing.T) {
	cfg := NewForTesting()
	cfg.Environment = EnvProduction
	cfg.SubscriptionContract = "0x00000000000000000000000000000000000000c0"
	cfg.LogLevel = "warn"
	require.NoError(t, cfg.ResolveDefaults())
	assert.True(t, cfg.IsProduction())
}
