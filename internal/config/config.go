package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the planner service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// LLMConfig contains reasoning-service provider settings
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`

	CostPer1KInput  float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// InventoryConfig contains the per-type dataset and selection settings
type InventoryConfig struct {
	DataDir    string                  `mapstructure:"data_dir"`
	MaxWorkers int                     `mapstructure:"max_workers"`
	Types      map[string]TypeSettings `mapstructure:"types"`
}

// TypeSettings configures one inventory type's pipeline.
// A dataset no larger than ChunkSize is judged in a single pass.
type TypeSettings struct {
	File        string `mapstructure:"file"`
	ChunkSize   int    `mapstructure:"chunk_size"`
	ChunkTopN   int    `mapstructure:"chunk_top_n"`
	FinalTopN   int    `mapstructure:"final_top_n"`
	BriefBudget int    `mapstructure:"brief_budget"`
}

// CacheConfig selects and configures the selection-result cache backend
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory, lru, redis
	LRUSize int           `mapstructure:"lru_size"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Known inventory type tags; keys of inventory.types.
const (
	TypeWebsite   = "website"
	TypeTVNetwork = "tv_network"
	TypeStreaming = "streaming_platform"
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("planner_config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - defaults cover a full local run
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", "60s")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.cost_per_1k_input", 0.0025)
	v.SetDefault("llm.cost_per_1k_output", 0.01)

	v.SetDefault("inventory.data_dir", "./data/inventory")
	v.SetDefault("inventory.max_workers", 4)

	// Websites are the only inventory large enough to need partitioning;
	// per-chunk top-N exceeds the final top-N so aggregation has a real pool.
	v.SetDefault("inventory.types.website.file", "top_media_affinity_sites.csv")
	v.SetDefault("inventory.types.website.chunk_size", 5000)
	v.SetDefault("inventory.types.website.chunk_top_n", 10)
	v.SetDefault("inventory.types.website.final_top_n", 5)
	v.SetDefault("inventory.types.website.brief_budget", 3000)

	v.SetDefault("inventory.types.tv_network.file", "top_tv_network_affinities.csv")
	v.SetDefault("inventory.types.tv_network.chunk_size", 5000)
	v.SetDefault("inventory.types.tv_network.chunk_top_n", 5)
	v.SetDefault("inventory.types.tv_network.final_top_n", 5)
	v.SetDefault("inventory.types.tv_network.brief_budget", 3000)

	v.SetDefault("inventory.types.streaming_platform.file", "top_streaming_platforms.csv")
	v.SetDefault("inventory.types.streaming_platform.chunk_size", 5000)
	v.SetDefault("inventory.types.streaming_platform.chunk_top_n", 6)
	v.SetDefault("inventory.types.streaming_platform.final_top_n", 6)
	v.SetDefault("inventory.types.streaming_platform.brief_budget", 3000)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.lru_size", 256)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.cost_tracking", true)

	v.SetDefault("server.addr", ":10010")
}

// overrideFromEnv overrides configuration with environment variables
func overrideFromEnv(v *viper.Viper) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		v.Set("llm.api_key", apiKey)
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		v.Set("cache.redis.host", host)
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("cache.redis.port", p)
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		v.Set("cache.redis.password", password)
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("llm.provider must be configured")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model must be configured")
	}
	if cfg.Inventory.MaxWorkers <= 0 {
		return fmt.Errorf("inventory.max_workers must be positive, got %d", cfg.Inventory.MaxWorkers)
	}
	for tag, ts := range cfg.Inventory.Types {
		switch tag {
		case TypeWebsite, TypeTVNetwork, TypeStreaming:
		default:
			return fmt.Errorf("unknown inventory type %q", tag)
		}
		if ts.ChunkSize <= 0 {
			return fmt.Errorf("inventory.types.%s.chunk_size must be positive, got %d", tag, ts.ChunkSize)
		}
		if ts.ChunkTopN <= 0 || ts.FinalTopN <= 0 {
			return fmt.Errorf("inventory.types.%s: top_n values must be positive", tag)
		}
	}
	switch cfg.Cache.Backend {
	case "memory", "lru", "redis":
	default:
		return fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == "lru" && cfg.Cache.LRUSize <= 0 {
		return fmt.Errorf("cache.lru_size must be positive for the lru backend")
	}
	return nil
}
