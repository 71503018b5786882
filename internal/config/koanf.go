package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recommendation/config.yaml",
}

// DefaultJWTSecret matches the credential service's development default.
const DefaultJWTSecret = "devsecret"

// envKeys maps environment variables onto koanf paths.
var envKeys = map[string]string{
	"port":                   "server.port",
	"request_timeout":        "server.request_timeout",
	"shutdown_timeout":       "server.shutdown_timeout",
	"rate_limit_requests":    "server.rate_limit_requests",
	"rate_limit_window":      "server.rate_limit_window",
	"cors_allowed_origins":   "server.cors_allowed_origins",
	"jwt_secret":             "auth.jwt_secret",
	"token_max_age":          "auth.max_token_age",
	"product_service_url":    "collaborators.product_service_url",
	"user_service_url":       "collaborators.user_service_url",
	"identity_timeout":       "collaborators.identity_timeout",
	"catalog_timeout":        "collaborators.catalog_timeout",
	"catalog_limit":          "collaborators.catalog_limit",
	"generation_provider":    "generation.provider",
	"generation_timeout":     "generation.timeout",
	"generation_model":       "generation.model",
	"generation_max_tokens":  "generation.max_tokens",
	"generation_temperature": "generation.temperature",
	"aws_region":             "generation.aws_region",
	"aws_access_key_id":      "generation.aws_access_key_id",
	"aws_secret_access_key":  "generation.aws_secret_access_key",
	"gemini_api_key":         "generation.gemini_api_key",
	"gemini_model":           "generation.gemini_model",
	"breaker_failures":       "generation.breaker_failures",
	"breaker_timeout":        "generation.breaker_timeout",
	"database_url":           "database.url",
	"db_pool_size":           "database.pool_size",
	"order_history_limit":    "database.order_history_limit",
	"redis_url":              "redis.url",
	"chat_history_ttl":       "redis.history_ttl",
	"chat_history_turns":     "redis.history_turns",
	"log_level":              "log.level",
	"log_format":             "log.format",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8002,
			RequestTimeout:     60 * time.Second,
			ShutdownTimeout:    15 * time.Second,
			RateLimitRequests:  60,
			RateLimitWindow:    time.Minute,
			CORSAllowedOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			JWTSecret: DefaultJWTSecret,
		},
		Collaborators: CollaboratorsConfig{
			ProductServiceURL: "http://localhost:8001",
			UserServiceURL:    "http://localhost:8000",
			IdentityTimeout:   5 * time.Second,
			CatalogTimeout:    5 * time.Second,
			CatalogLimit:      20,
		},
		Generation: GenerationConfig{
			Provider:        ProviderAuto,
			Timeout:         30 * time.Second,
			Model:           "anthropic.claude-3-sonnet-20240229-v1:0",
			MaxTokens:       1000,
			Temperature:     0.7,
			AWSRegion:       "us-east-1",
			GeminiModel:     "gemini-2.5-flash",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			PoolSize:          10,
			OrderHistoryLimit: 20,
		},
		Redis: RedisConfig{
			HistoryTTL:   24 * time.Hour,
			HistoryTurns: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load configuration from defaults, an optional YAML file and the environment,
// in increasing order of priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envTransform returns "" for variables we do not own so koanf skips them.
func envTransform(key string) string {
	return envKeys[strings.ToLower(key)]
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
