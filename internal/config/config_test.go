package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SUPPORTVIZ_ADDR", "SUPPORTVIZ_LOG_MODE", "SUPPORTVIZ_LOG_FILE",
		"GLM_BASE_URL", "GLM_API_KEY", "GLM_MODEL_NAME",
		"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL_NAME", "LLM_PROVIDER", "LLM_ENABLED", "LLM_CACHE_TTL_SECONDS",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "dev", cfg.Log.Mode)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "glm-4-flash", cfg.LLM.Model)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout())
	assert.Zero(t, cfg.CacheTTL())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
llm:
  enabled: true
  base_url: http://file
  model: file-model
  cache_ttl_seconds: 30
`), 0o644))

	t.Setenv("LLM_MODEL_NAME", "env-model")
	t.Setenv("GLM_API_KEY", "glm-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "http://file", cfg.LLM.BaseURL)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "glm-key", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())

	t.Setenv("LLM_ENABLED", "nope")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.LLM.Enabled)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "Yes"} {
		assert.True(t, Truthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "enabled", "on", "On"} {
		assert.False(t, Truthy(v), v)
	}
}

func TestLoadConfig_OnDoesNotEnableLLM(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_ENABLED", "on")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.LLM.Enabled)
}
