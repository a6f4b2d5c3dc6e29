package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 10*time.Second, cfg.Store.CallTimeout)
	assert.Equal(t, "store.reconcile", cfg.Kafka.ReconcileTopic)
	assert.Equal(t, "pathwise", cfg.Redis.KeyPrefix)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LLM_PROVIDER", ProviderGemini)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("STORE_CALL_TIMEOUT", "3s")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/pathwise")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 3*time.Second, cfg.Store.CallTimeout)
	assert.Equal(t, "postgres://u:p@localhost:5432/pathwise", cfg.DB.DSN)
}
