package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"familyglitch/internal/llm"
	"familyglitch/internal/model"
	"familyglitch/internal/tool"
)

const DefaultMaxIterations = 10

var ErrMaxIterations = errors.New("Max tool execution iterations reached")

// State is where the loop currently is
type State string

const (
	StateAwaitingModel  State = "awaiting_model"
	StateExecutingTools State = "executing_tools"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Tool error types fed back to the model
const (
	ToolErrInvalidJSON      = "invalid_arguments_json"
	ToolErrUnknownTool      = "unknown_tool"
	ToolErrInvalidArguments = "invalid_arguments"
	ToolErrExecution        = "execution_error"
)

// Request is one orchestration run
type Request struct {
	Messages    []model.Message
	Model       string
	Temperature *float32
	MaxTokens   int
	Tools       []string // subset of registered tools; empty offers all
}

// ExecutedCall records one tool invocation and its outcome
type ExecutedCall struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Arguments    map[string]any     `json:"arguments,omitempty"`
	TemplateType model.TemplateType `json:"templateType,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// Result is the outcome of a completed run
type Result struct {
	Text         string             `json:"text"`
	Usage        *model.Usage       `json:"usage,omitempty"`
	TemplateType model.TemplateType `json:"templateType,omitempty"`
	Params       map[string]any     `json:"params,omitempty"`
	Data         map[string]any     `json:"data,omitempty"`
	ToolCalls    []ExecutedCall     `json:"toolCalls"`
	Messages     []model.Message    `json:"-"`
	Iterations   int                `json:"-"`
	State        State              `json:"-"`
}

// Orchestrator drives the bounded model/tool round-trip cycle
type Orchestrator struct {
	client        llm.Client
	registry      *tool.Registry
	maxIterations int
}

// NewOrchestrator creates an orchestrator with the default iteration cap
func NewOrchestrator(client llm.Client, registry *tool.Registry) *Orchestrator {
	return &Orchestrator{
		client:        client,
		registry:      registry,
		maxIterations: DefaultMaxIterations,
	}
}

// WithMaxIterations overrides the round-trip cap
func (o *Orchestrator) WithMaxIterations(n int) *Orchestrator {
	if n > 0 {
		o.maxIterations = n
	}
	return o
}

// Run sends the conversation to the model and executes requested tools until
// the model answers without tool calls or the iteration cap is hit
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateConversation(req.Messages); err != nil {
		return nil, err
	}

	history := make([]model.Message, len(req.Messages))
	copy(history, req.Messages)
	defs := o.registry.Definitions(req.Tools...)

	res := &Result{ToolCalls: []ExecutedCall{}, State: StateAwaitingModel}
	var usage model.Usage
	sawUsage := false

	for res.Iterations < o.maxIterations {
		res.Iterations++
		res.State = StateAwaitingModel

		resp, err := o.client.Complete(ctx, llm.Request{
			Model:       req.Model,
			Messages:    history,
			Tools:       defs,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			res.State = StateFailed
			return nil, fmt.Errorf("model request failed: %w", err)
		}
		if resp.Usage != nil {
			usage.Add(resp.Usage)
			sawUsage = true
		}

		msg := resp.Message
		msg.Role = model.RoleAssistant
		history = append(history, msg)

		if len(msg.ToolCalls) == 0 {
			res.State = StateDone
			res.Text = msg.Content
			res.Messages = history
			if sawUsage {
				res.Usage = &usage
			}
			return res, nil
		}

		res.State = StateExecutingTools
		for _, call := range msg.ToolCalls {
			content, exec := o.executeCall(ctx, call)
			if exec.Error == "" && exec.TemplateType != "" {
				res.TemplateType = exec.TemplateType
			}
			if out, ok := content.(*tool.Result); ok && exec.Error == "" {
				if out.TemplateType != "" {
					res.Params = out.Params
				}
				if out.Data != nil {
					res.Data = out.Data
				}
			}
			res.ToolCalls = append(res.ToolCalls, exec)
			history = append(history, model.ToolResultMessage(call.ID, call.Function.Name, encodeToolContent(content)))
		}
	}

	res.State = StateFailed
	log.Printf("chat: gave up after %d iterations", res.Iterations)
	return nil, ErrMaxIterations
}

type toolError struct {
	Error toolErrorBody `json:"error"`
	Tool  string        `json:"tool"`
}

type toolErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// executeCall never fails the loop; every problem becomes a tool-level error payload
func (o *Orchestrator) executeCall(ctx context.Context, call model.ToolCall) (any, ExecutedCall) {
	exec := ExecutedCall{ID: call.ID, Name: call.Function.Name}

	fail := func(kind string, err error) (any, ExecutedCall) {
		exec.Error = err.Error()
		log.Printf("chat: tool %s failed (%s): %v", call.Function.Name, kind, err)
		return toolError{Error: toolErrorBody{Type: kind, Message: err.Error()}, Tool: call.Function.Name}, exec
	}

	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fail(ToolErrInvalidJSON, fmt.Errorf("arguments are not a JSON object: %w", err))
		}
		if args == nil {
			args = map[string]any{}
		}
	}
	exec.Arguments = args

	out, err := o.registry.Execute(ctx, call.Function.Name, args)
	switch {
	case errors.Is(err, tool.ErrUnknownTool):
		return fail(ToolErrUnknownTool, err)
	case errors.Is(err, tool.ErrInvalidArguments):
		return fail(ToolErrInvalidArguments, err)
	case err != nil:
		return fail(ToolErrExecution, err)
	}

	exec.TemplateType = out.TemplateType
	return out, exec
}

func encodeToolContent(v any) string {
	if r, ok := v.(*tool.Result); ok {
		payload := map[string]any{"success": true}
		if r.TemplateType != "" {
			payload["templateType"] = r.TemplateType
		}
		if r.Params != nil {
			payload["params"] = r.Params
		}
		for k, val := range r.Data {
			payload[k] = val
		}
		v = payload
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":{"type":%q,"message":%q}}`, ToolErrExecution, err.Error())
	}
	return string(b)
}
