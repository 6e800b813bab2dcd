package handler

import (
	"encoding/json"
	"net/http"

	"moonhollow/internal/service"
)

// GameHandler handles in-game action endpoints
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// ChatRequest is the request body for sending a chat message
type ChatRequest struct {
	Content string `json:"content"`
}

// TargetRequest names the target of a vote or night action
type TargetRequest struct {
	TargetID string `json:"targetId"`
}

// Start handles POST /v1/rooms/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	if err := h.gameSvc.StartGame(roomID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// Skip handles POST /v1/rooms/{id}/skip
func (h *GameHandler) Skip(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	if err := h.gameSvc.SkipToVoting(roomID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "voting"})
}

// Chat handles POST /v1/rooms/{id}/chat
func (h *GameHandler) Chat(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.gameSvc.SubmitChat(roomID, playerID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// Vote handles POST /v1/rooms/{id}/vote
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.SubmitVote(roomID, playerID, req.TargetID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

// NightAction handles POST /v1/rooms/{id}/night-action
func (h *GameHandler) NightAction(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.SubmitNightAction(roomID, playerID, req.TargetID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}
