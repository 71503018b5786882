package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8002, cfg.Server.Port)
	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 20, cfg.Collaborators.CatalogLimit)
	assert.Equal(t, 5*time.Second, cfg.Collaborators.CatalogTimeout)
	assert.Equal(t, ":8002", cfg.Addr())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CATALOG_TIMEOUT", "2s")
	t.Setenv("GENERATION_PROVIDER", "gemini")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Second, cfg.Collaborators.CatalogTimeout)
	assert.Equal(t, ProviderGemini, cfg.Generation.ResolvedProvider())
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "collaborators:\n  catalog_limit: 7\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Collaborators.CatalogLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GENERATION_PROVIDER", "openai")

	_, err := Load()
	assert.Error(t, err)
}

func TestResolvedProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  GenerationConfig
		want string
	}{
		{"no credentials", GenerationConfig{}, ProviderMock},
		{"aws credentials", GenerationConfig{AWSAccessKeyID: "AKIA"}, ProviderBedrock},
		{"gemini key", GenerationConfig{GeminiAPIKey: "k"}, ProviderGemini},
		{"explicit wins", GenerationConfig{Provider: ProviderMock, AWSAccessKeyID: "AKIA"}, ProviderMock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolvedProvider())
		})
	}
}
