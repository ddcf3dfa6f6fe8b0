package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"familyglitch/internal/model"
	"familyglitch/internal/tool"
)

// GeminiClient adapts the Gemini SDK to the chat Client contract
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiClient creates a Gemini-backed client; an empty key is a configuration error
func NewGeminiClient(ctx context.Context, apiKey, defaultModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, defaultModel: defaultModel}, nil
}

func (c *GeminiClient) Provider() string {
	return "gemini"
}

// Close releases the underlying SDK client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Complete sends the conversation as chat history plus a final turn
func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	name := req.Model
	if name == "" {
		name = c.defaultModel
	}
	gm := c.client.GenerativeModel(name)
	if req.Temperature != nil {
		gm.SetTemperature(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSONMode {
		gm.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		gm.Tools = []*genai.Tool{{FunctionDeclarations: toFunctionDeclarations(req.Tools)}}
	}

	system, contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}
	if system != nil {
		gm.SystemInstruction = system
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: conversation has no user turn")
	}

	cs := gm.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return fromGeminiResponse(resp, name)
}

func fromGeminiResponse(resp *genai.GenerateContentResponse, modelName string) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	cand := resp.Candidates[0]

	msg := model.Message{Role: model.RoleAssistant}
	for _, part := range cand.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			msg.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini: failed to encode call args: %w", err)
			}
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:       "call_" + uuid.New().String(),
				Type:     "function",
				Function: model.FunctionCall{Name: p.Name, Arguments: string(args)},
			})
		}
	}

	out := &Response{
		Message:      msg,
		FinishReason: cand.FinishReason.String(),
		Model:        modelName,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &model.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// toGeminiContents splits out system text and folds the rest into alternating
// user/model contents. Tool results travel as function responses on the user side.
func toGeminiContents(msgs []model.Message) (*genai.Content, []*genai.Content, error) {
	var system *genai.Content
	var contents []*genai.Content
	callNames := make(map[string]string)

	appendPart := func(role string, part genai.Part) {
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, part)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{part}})
	}

	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.Text(m.Content))
		case model.RoleUser:
			appendPart("user", genai.Text(m.Content))
		case model.RoleAssistant:
			if m.Content != "" {
				appendPart("model", genai.Text(m.Content))
			}
			for _, call := range m.ToolCalls {
				args := map[string]any{}
				if call.Function.Arguments != "" {
					if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
						args = map[string]any{"raw": call.Function.Arguments}
					}
				}
				callNames[call.ID] = call.Function.Name
				appendPart("model", genai.FunctionCall{Name: call.Function.Name, Args: args})
			}
		case model.RoleTool:
			name := m.Name
			if name == "" {
				name = callNames[m.ToolCallID]
			}
			var payload map[string]any
			if err := json.Unmarshal([]byte(m.Content), &payload); err != nil || payload == nil {
				payload = map[string]any{"content": m.Content}
			}
			appendPart("user", genai.FunctionResponse{Name: name, Response: payload})
		default:
			return nil, nil, fmt.Errorf("gemini: unsupported role %q", m.Role)
		}
	}
	return system, contents, nil
}

func toFunctionDeclarations(defs []tool.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, len(defs))
	for i, d := range defs {
		decls[i] = &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  toGeminiSchema(d.Parameters),
		}
	}
	return decls
}

func toGeminiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGeminiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGeminiSchema(v)
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}
