package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range envDefaults {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "", config.APIKey)
	assert.Equal(t, ":3000", config.ListenAddr)
	assert.Equal(t, "https://openrouter.ai/api/v1", config.BaseURL)
	assert.Equal(t, "gpt-4o-mini", config.Model)
	assert.Equal(t, "http://localhost:3000/", config.Referer)
	assert.Equal(t, "NameofAI_BOT", config.Title)
	assert.Equal(t, []string{"*"}, config.AllowOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, config.TrustedProxies)
	assert.Equal(t, "", config.LogFile)
	assert.False(t, config.TracingEnabled)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("UPSTREAM_MODEL", "openai/gpt-4o")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("TRACING_ENABLED", "1")

	config, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "sk-or-test", config.APIKey)
	assert.Equal(t, "openai/gpt-4o", config.Model)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.AllowOrigins)
	assert.True(t, config.TracingEnabled)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("UPSTREAM_MODEL", "from-env")

	config, err := Load(newFlags(t, "--listen", ":9090", "--tracing"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", config.ListenAddr)
	assert.Equal(t, "from-env", config.Model)
	assert.True(t, config.TracingEnabled)
}

func TestLoadWithoutFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_TITLE", "Support Bot")

	config, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "Support Bot", config.Title)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRACING_ENABLED", "sometimes")

	_, err := Load(newFlags(t))
	assert.ErrorContains(t, err, "TRACING_ENABLED")

	t.Setenv("TRACING_ENABLED", "")
	_, err = Load(newFlags(t, "--model", ""))
	assert.ErrorContains(t, err, "UPSTREAM_MODEL")
}
