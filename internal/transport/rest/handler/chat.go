package handler

import (
	"net/http"

	"familyglitch/internal/chat"
	"familyglitch/internal/model"
	"familyglitch/internal/service"
	"familyglitch/internal/transport/rest/middleware"
)

// ChatHandler exposes the tool-calling loop
type ChatHandler struct {
	hostSvc *service.HostService
	authSvc *service.AuthService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(hostSvc *service.HostService, authSvc *service.AuthService) *ChatHandler {
	return &ChatHandler{hostSvc: hostSvc, authSvc: authSvc}
}

// ChatConfig carries per-request overrides
type ChatConfig struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	SessionID   string   `json:"sessionId,omitempty"`
	PlayerID    string   `json:"playerId,omitempty"`
}

// ChatRequest is the request body for POST /api/chat
type ChatRequest struct {
	Messages []model.Message `json:"messages"`
	Config   *ChatConfig     `json:"config,omitempty"`
}

// ChatResponse is the outcome of one loop run
type ChatResponse struct {
	Text         string              `json:"text"`
	Usage        *model.Usage        `json:"usage,omitempty"`
	TemplateType model.TemplateType  `json:"templateType,omitempty"`
	Params       map[string]any      `json:"params,omitempty"`
	TurnID       string              `json:"turnId,omitempty"`
	ChallengeID  string              `json:"challengeId,omitempty"`
	ToolCalls    []chat.ExecutedCall `json:"toolCalls"`
}

func newChatResponse(res *chat.Result) *ChatResponse {
	resp := &ChatResponse{
		Text:         res.Text,
		Usage:        res.Usage,
		TemplateType: res.TemplateType,
		Params:       res.Params,
		ToolCalls:    res.ToolCalls,
	}
	if resp.ToolCalls == nil {
		resp.ToolCalls = []chat.ExecutedCall{}
	}
	resp.TurnID, _ = res.Data["turnId"].(string)
	resp.ChallengeID, _ = res.Data["challengeId"].(string)
	return resp
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	cfg := req.Config
	if cfg == nil {
		cfg = &ChatConfig{}
	}
	if cfg.SessionID != "" {
		claims, err := h.authSvc.ValidateSessionToken(middleware.BearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.SessionID != cfg.SessionID {
			writeError(w, http.StatusForbidden, "token does not grant access to this session")
			return
		}
	}

	res, err := h.hostSvc.Chat(r.Context(), chat.Request{
		Messages:    req.Messages,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Tools:       cfg.Tools,
	}, cfg.SessionID, cfg.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newChatResponse(res))
}
