package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"familyglitch/internal/model"
	"familyglitch/internal/service"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	hostSvc    *service.HostService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, hostSvc *service.HostService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, hostSvc: hostSvc}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.sessionSvc.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessionSvc.State(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// SetAct handles POST /v1/sessions/{id}/act
func (h *SessionHandler) SetAct(w http.ResponseWriter, r *http.Request) {
	var req model.SetActRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.SetAct(r.Context(), mux.Vars(r)["id"], req.Act)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// End handles POST /v1/sessions/{id}/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.End(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Turns handles GET /v1/sessions/{id}/turns
func (h *SessionHandler) Turns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.sessionSvc.ListTurns(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turns)
}

// CompleteTurn handles POST /v1/sessions/{id}/turns/{turnId}/complete
func (h *SessionHandler) CompleteTurn(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req model.CompleteTurnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.sessionSvc.CompleteTurn(r.Context(), vars["id"], vars["turnId"], &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

// JudgeTurn handles POST /v1/sessions/{id}/turns/{turnId}/judge
func (h *SessionHandler) JudgeTurn(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.hostSvc.JudgeTurn(r.Context(), vars["id"], vars["turnId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// NextRequest names the player whose turn it is
type NextRequest struct {
	PlayerID string `json:"playerId"`
}

// Next handles POST /v1/sessions/{id}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req NextRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	res, err := h.hostSvc.NextQuestion(r.Context(), mux.Vars(r)["id"], req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newChatResponse(res))
}

// Scoreboard handles GET /v1/sessions/{id}/scoreboard
func (h *SessionHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.sessionSvc.Scoreboard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scoreboard": board,
	})
}
