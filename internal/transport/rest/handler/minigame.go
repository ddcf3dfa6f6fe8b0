package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"familyglitch/internal/model"
	"familyglitch/internal/service"
)

// MinigameHandler handles mini-game endpoints
type MinigameHandler struct {
	sessionSvc  *service.SessionService
	minigameSvc *service.MinigameService
}

// NewMinigameHandler creates a new mini-game handler
func NewMinigameHandler(sessionSvc *service.SessionService, minigameSvc *service.MinigameService) *MinigameHandler {
	return &MinigameHandler{sessionSvc: sessionSvc, minigameSvc: minigameSvc}
}

// List handles GET /v1/sessions/{id}/minigames?playerId=
func (h *MinigameHandler) List(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	results, err := h.sessionSvc.MiniGames(r.Context(), mux.Vars(r)["id"], playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"minigames": results,
	})
}

// Generate handles POST /v1/sessions/{id}/minigames
func (h *MinigameHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GameType == "" || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "gameType and playerId are required")
		return
	}

	ch, err := h.minigameSvc.Generate(r.Context(), mux.Vars(r)["id"], req.PlayerID, req.GameType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

// Submit handles POST /v1/sessions/{id}/minigames/{challengeId}/submit
func (h *MinigameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req model.SubmitChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.minigameSvc.Submit(r.Context(), vars["id"], vars["challengeId"], &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
