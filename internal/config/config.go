// Package config loads runtime settings from defaults, an optional YAML
// file and TRIGTUTOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/trigtutor/internal/cache"
	"github.com/abhisek/trigtutor/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. TRIGTUTOR_CACHE_BACKEND.
const EnvPrefix = "TRIGTUTOR"

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	LLM    llm.Config
	Cache  CacheConfig
	Redis  cache.RedisConfig
	DB     DBConfig
	Log    LogConfig
	Server ServerConfig
}

type CacheConfig struct {
	Backend string
	TTL     time.Duration
}

type DBConfig struct {
	// Path is the SQLite file. Empty means store.DefaultDBPath.
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Addr          string
	SessionSecret string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("cache.backend", CacheSQLite)
	v.SetDefault("cache.ttl", cache.DefaultTTL)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	// Keys without a default must still be bound for env lookup.
	for _, k := range []string{
		"llm.gemini.api_key", "llm.gemini.base_url",
		"llm.openai.api_key", "llm.openai.base_url",
		"llm.anthropic.api_key", "llm.anthropic.base_url",
		"llm.openrouter.api_key", "llm.openrouter.base_url",
	} {
		v.SetDefault(k, "")
	}
}

// Load reads configuration. path selects an explicit config file; when empty,
// config.yaml is looked up in $XDG_CONFIG_HOME/trigtutor and the working
// directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		LLM: llmConfig(v),
		Cache: CacheConfig{
			Backend: strings.ToLower(v.GetString("cache.backend")),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Redis: cache.RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Server: ServerConfig{
			Addr:          v.GetString("server.addr"),
			SessionSecret: v.GetString("server.session_secret"),
			ReadTimeout:   v.GetDuration("server.read_timeout"),
			WriteTimeout:  v.GetDuration("server.write_timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func llmConfig(v *viper.Viper) llm.Config {
	cfg := llm.Config{
		Provider: strings.ToLower(v.GetString("llm.provider")),
		Gemini: llm.GeminiConfig{
			APIKey:  v.GetString("llm.gemini.api_key"),
			Model:   v.GetString("llm.gemini.model"),
			BaseURL: v.GetString("llm.gemini.base_url"),
		},
		OpenAI: llm.OpenAIConfig{
			APIKey:  v.GetString("llm.openai.api_key"),
			Model:   v.GetString("llm.openai.model"),
			BaseURL: v.GetString("llm.openai.base_url"),
		},
		Anthropic: llm.AnthropicConfig{
			APIKey:  v.GetString("llm.anthropic.api_key"),
			Model:   v.GetString("llm.anthropic.model"),
			BaseURL: v.GetString("llm.anthropic.base_url"),
		},
		OpenRouter: llm.OpenRouterConfig{
			APIKey:  v.GetString("llm.openrouter.api_key"),
			Model:   v.GetString("llm.openrouter.model"),
			BaseURL: v.GetString("llm.openrouter.base_url"),
		},
		Retry: llm.RetryConfig{
			MaxAttempts: v.GetInt("llm.retry.max_attempts"),
			InitialWait: v.GetDuration("llm.retry.initial_wait"),
			MaxWait:     v.GetDuration("llm.retry.max_wait"),
			Multiplier:  v.GetFloat64("llm.retry.multiplier"),
		},
		Timeout: v.GetDuration("llm.timeout"),
	}

	if cfg.Provider != "" {
		return cfg
	}
	if found, ok := llm.DiscoverConfig(cfg); ok {
		return found
	}
	// Nothing configured: keep the default so Validate names the key to set.
	cfg.Provider = llm.DefaultConfig().Provider
	return cfg
}

// Validate checks settings that are not tied to the LLM provider. Provider
// keys are checked when a provider is built, so commands that never call
// the backend still run without one.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheSQLite, CacheMemory:
	case CacheRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

// configDir returns $XDG_CONFIG_HOME/trigtutor, falling back to
// ~/.config/trigtutor.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "trigtutor"), nil
}
