package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"familyglitch/internal/llm"
)

func clearAIEnv(t *testing.T) {
	for _, k := range []string{"AI_PROVIDER", "AI_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENROUTER_API_KEY", "GEMINI_API_KEY", "AI_TIMEOUT_MS", "AI_TEMPERATURE"} {
		t.Setenv(k, "")
	}
}

func TestDefaultAIConfigOpenAI(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-1234567890")
	t.Setenv("AI_TIMEOUT_MS", "1500")

	cfg := DefaultAIConfig()
	require.Equal(t, ProviderOpenAI, cfg.Provider)
	require.Equal(t, llm.DefaultOpenAIBaseURL, cfg.BaseURL)
	require.True(t, cfg.IsEnabled())
	require.Equal(t, "sk-test-...", cfg.KeyPrefix())
	require.Equal(t, 1500*time.Millisecond, cfg.Timeout())

	client, closer, err := cfg.NewClient(context.Background())
	require.NoError(t, err)
	require.Equal(t, "openai", client.Provider())
	require.NoError(t, closer.Close())
}

func TestDefaultAIConfigOpenRouterKey(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "or-key-abcdefgh")

	cfg := DefaultAIConfig()
	require.Equal(t, llm.OpenRouterBaseURL, cfg.BaseURL)
	require.Equal(t, "or-key-abcdefgh", cfg.APIKey)
}

func TestNewClientMissingKey(t *testing.T) {
	clearAIEnv(t)

	cfg := DefaultAIConfig()
	require.False(t, cfg.IsEnabled())
	require.Empty(t, cfg.KeyPrefix())

	_, _, err := cfg.NewClient(context.Background())
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)

	cfg = &AIConfig{Provider: ProviderGemini}
	_, _, err = cfg.NewClient(context.Background())
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := &AIConfig{Provider: "carrier-pigeon", APIKey: "k"}
	_, _, err := cfg.NewClient(context.Background())
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_TTL_HOURS", "3")

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.NotEmpty(t, cfg.JWTSecret)
	require.Equal(t, 3*time.Hour, cfg.TokenTTL)
	require.NotNil(t, cfg.AI)
}
