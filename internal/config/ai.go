package config

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"familyglitch/internal/llm"
)

// Supported model providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider    string  `json:"provider"`
	APIKey      string  `json:"-"` // Never serialize
	BaseURL     string  `json:"baseUrl,omitempty"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	TimeoutMS   int     `json:"timeoutMs"`
}

// DefaultAIConfig reads the AI configuration from the environment. The
// provider defaults to an OpenAI-compatible endpoint; setting
// OPENROUTER_API_KEY without OPENAI_BASE_URL points it at OpenRouter.
func DefaultAIConfig() *AIConfig {
	provider := strings.ToLower(getEnv("AI_PROVIDER", ProviderOpenAI))

	cfg := &AIConfig{
		Provider:    provider,
		Temperature: float32(getEnvFloat("AI_TEMPERATURE", 0.8)),
		TimeoutMS:   getEnvInt("AI_TIMEOUT_MS", 60000),
	}

	switch provider {
	case ProviderGemini:
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
		cfg.Model = getEnv("AI_MODEL", "gemini-2.0-flash")
	default:
		cfg.APIKey = getEnv("OPENAI_API_KEY", "")
		cfg.BaseURL = getEnv("OPENAI_BASE_URL", llm.DefaultOpenAIBaseURL)
		if cfg.APIKey == "" {
			if key := getEnv("OPENROUTER_API_KEY", ""); key != "" {
				cfg.APIKey = key
				cfg.BaseURL = getEnv("OPENAI_BASE_URL", llm.OpenRouterBaseURL)
			}
		}
		cfg.Model = getEnv("AI_MODEL", "gpt-4o-mini")
	}
	return cfg
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// KeyPrefix returns the first characters of the key for diagnostics
func (c *AIConfig) KeyPrefix() string {
	if len(c.APIKey) <= 8 {
		return ""
	}
	return c.APIKey[:8] + "..."
}

// Timeout is the per-request model timeout
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// NewClient builds the model client for the configured provider. The returned
// closer releases SDK resources and is never nil.
func (c *AIConfig) NewClient(ctx context.Context) (llm.Client, io.Closer, error) {
	switch c.Provider {
	case ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, c.APIKey, c.Model)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case ProviderOpenAI:
		client, err := llm.NewOpenAIClient(c.APIKey, c.BaseURL, c.Model, c.Timeout())
		if err != nil {
			return nil, nil, err
		}
		return client, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", c.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
