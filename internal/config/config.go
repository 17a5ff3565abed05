package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"` // dev | prod
		File string `yaml:"file"` // optional rotating JSON log
	} `yaml:"log"`
	LLM struct {
		Enabled           bool    `yaml:"enabled"`
		Provider          string  `yaml:"provider"` // openai | gemini
		BaseURL           string  `yaml:"base_url"`
		APIKey            string  `yaml:"api_key"`
		Model             string  `yaml:"model"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
		ShortcutThreshold float64 `yaml:"shortcut_threshold"`
	} `yaml:"llm"`
	Telemetry struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
		Insecure bool   `yaml:"insecure"`
	} `yaml:"telemetry"`
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.LLM.CacheTTLSeconds) * time.Second
}

// LoadConfig reads .env, then the YAML file at path (a missing file is not an
// error), then applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, &cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "SUPPORTVIZ_ADDR")
	setString(&cfg.Log.Mode, "SUPPORTVIZ_LOG_MODE")
	setString(&cfg.Log.File, "SUPPORTVIZ_LOG_FILE")

	// GLM_* names are accepted for older deployments.
	setString(&cfg.LLM.BaseURL, "GLM_BASE_URL", "LLM_BASE_URL")
	setString(&cfg.LLM.APIKey, "GLM_API_KEY", "LLM_API_KEY")
	setString(&cfg.LLM.Model, "GLM_MODEL_NAME", "LLM_MODEL_NAME")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setBool(&cfg.LLM.Enabled, "LLM_ENABLED")
	setInt(&cfg.LLM.CacheTTLSeconds, "LLM_CACHE_TTL_SECONDS")

	setBool(&cfg.Telemetry.Enabled, "OTEL_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "dev"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "glm-4-flash"
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		cfg.LLM.TimeoutSeconds = 60
	}
}

// Truthy reports whether a toggle value switches a feature on.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// setString applies the last non-empty variable among keys.
func setString(dst *string, keys ...string) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = Truthy(v)
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
