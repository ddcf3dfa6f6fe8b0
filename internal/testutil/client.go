package testutil

import (
	"context"
	"sync"

	"familyglitch/internal/llm"
	"familyglitch/internal/model"
)

// StubClient is an llm.Client that answers every request through Fn
type StubClient struct {
	Fn func(req llm.Request) (*llm.Response, error)

	mu       sync.Mutex
	requests []llm.Request
}

// NewStubClient answers every request with reply
func NewStubClient(reply string) *StubClient {
	return &StubClient{Fn: func(llm.Request) (*llm.Response, error) { return TextReply(reply) }}
}

func (c *StubClient) Provider() string { return "stub" }

func (c *StubClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	fn := c.Fn
	c.mu.Unlock()
	return fn(req)
}

// Requests returns every request seen so far
func (c *StubClient) Requests() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// TextReply is a plain assistant reply with no tool calls
func TextReply(s string) (*llm.Response, error) {
	return &llm.Response{Message: model.Message{Role: model.RoleAssistant, Content: s}}, nil
}

// ToolCallReply proposes a single tool call
func ToolCallReply(id, name, args string) (*llm.Response, error) {
	return &llm.Response{
		Message: model.Message{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{{
				ID:       id,
				Type:     "function",
				Function: model.FunctionCall{Name: name, Arguments: args},
			}},
		},
		Usage: &model.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}
