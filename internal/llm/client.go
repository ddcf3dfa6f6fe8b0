package llm

import (
	"context"
	"errors"

	"familyglitch/internal/model"
	"familyglitch/internal/tool"
)

var (
	ErrMissingAPIKey = errors.New("model API key is not configured")
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Request is one round-trip to a chat model
type Request struct {
	Model       string
	Messages    []model.Message
	Tools       []tool.Definition
	Temperature *float32
	MaxTokens   int
	JSONMode    bool // ask for a bare JSON object reply
}

// Response is the assistant message the model produced
type Response struct {
	Message      model.Message
	Usage        *model.Usage
	FinishReason string
	Model        string
}

// Client is a chat-completion backend with tool calling
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Provider() string
}

// Float32 returns a pointer to v
func Float32(v float32) *float32 {
	return &v
}
