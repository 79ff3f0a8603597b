package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIMRADAR_BASE_URL", "")
	t.Setenv("SIMRADAR_LOCALE", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("EXPORT_SINK", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, "en", cfg.API.Locale)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Export.Sink)
	assert.False(t, cfg.Minio.UseSSL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SIMRADAR_BASE_URL", "https://simradar.example.com/")
	t.Setenv("SIMRADAR_LOCALE", "es-ES")
	t.Setenv("HTTP_TIMEOUT", "5")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("EXPORT_SINK", "minio")

	cfg := Load()

	assert.Equal(t, "https://simradar.example.com", cfg.API.BaseURL)
	assert.Equal(t, "es-ES", cfg.API.Locale)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Minio.UseSSL)
	assert.Equal(t, "minio", cfg.Export.Sink)
}

func TestLoad_DurationSyntax(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, Load().API.Timeout)

	t.Setenv("HTTP_TIMEOUT", "soon")
	assert.Equal(t, 30*time.Second, Load().API.Timeout)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b "))
	assert.Nil(t, SplitList(""))
}
