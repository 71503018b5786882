package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	ProviderAuto    = ""
	ProviderMock    = "mock"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Auth          AuthConfig          `koanf:"auth"`
	Collaborators CollaboratorsConfig `koanf:"collaborators"`
	Generation    GenerationConfig    `koanf:"generation"`
	Database      DatabaseConfig      `koanf:"database"`
	Redis         RedisConfig         `koanf:"redis"`
	Log           LogConfig           `koanf:"log"`
}

type ServerConfig struct {
	Port               int           `koanf:"port"`
	RequestTimeout     time.Duration `koanf:"request_timeout"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	RateLimitRequests  int           `koanf:"rate_limit_requests"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
}

type AuthConfig struct {
	// JWTSecret is shared with the credential service that issues tokens.
	JWTSecret string `koanf:"jwt_secret"`
	// MaxTokenAge bounds iat-based token age. Zero disables the check.
	MaxTokenAge time.Duration `koanf:"max_token_age"`
}

type CollaboratorsConfig struct {
	ProductServiceURL string        `koanf:"product_service_url"`
	UserServiceURL    string        `koanf:"user_service_url"`
	IdentityTimeout   time.Duration `koanf:"identity_timeout"`
	CatalogTimeout    time.Duration `koanf:"catalog_timeout"`
	CatalogLimit      int           `koanf:"catalog_limit"`
}

type GenerationConfig struct {
	Provider        string        `koanf:"provider"`
	Timeout         time.Duration `koanf:"timeout"`
	Model           string        `koanf:"model"`
	MaxTokens       int           `koanf:"max_tokens"`
	Temperature     float64       `koanf:"temperature"`
	AWSRegion       string        `koanf:"aws_region"`
	AWSAccessKeyID  string        `koanf:"aws_access_key_id"`
	AWSSecretKey    string        `koanf:"aws_secret_access_key"`
	GeminiAPIKey    string        `koanf:"gemini_api_key"`
	GeminiModel     string        `koanf:"gemini_model"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

type DatabaseConfig struct {
	URL               string `koanf:"url"`
	PoolSize          int    `koanf:"pool_size"`
	OrderHistoryLimit int    `koanf:"order_history_limit"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	HistoryTTL   time.Duration `koanf:"history_ttl"`
	HistoryTurns int           `koanf:"history_turns"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ResolvedProvider returns the configured generation provider, picking one from the
// available credentials when none was set explicitly. No credentials means mock.
func (g GenerationConfig) ResolvedProvider() string {
	switch {
	case g.Provider != ProviderAuto:
		return g.Provider
	case g.AWSAccessKeyID != "":
		return ProviderBedrock
	case g.GeminiAPIKey != "":
		return ProviderGemini
	default:
		return ProviderMock
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.MaxTokenAge < 0 {
		errs = append(errs, errors.New("auth.max_token_age must not be negative"))
	}
	if c.Collaborators.ProductServiceURL == "" || c.Collaborators.UserServiceURL == "" {
		errs = append(errs, errors.New("collaborator base urls are required"))
	}
	if c.Collaborators.IdentityTimeout <= 0 || c.Collaborators.CatalogTimeout <= 0 {
		errs = append(errs, errors.New("collaborator timeouts must be positive"))
	}
	if c.Collaborators.CatalogLimit <= 0 {
		errs = append(errs, fmt.Errorf("collaborators.catalog_limit must be positive: %d", c.Collaborators.CatalogLimit))
	}
	if c.Generation.Timeout <= 0 {
		errs = append(errs, errors.New("generation.timeout must be positive"))
	}
	switch c.Generation.Provider {
	case ProviderAuto, ProviderMock, ProviderBedrock, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown generation.provider %q", c.Generation.Provider))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	return errors.Join(errs...)
}
