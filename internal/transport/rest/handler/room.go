package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"moonhollow/internal/game"
	"moonhollow/internal/service"
	"moonhollow/internal/transport/rest/middleware"
)

// RoomHandler handles room lifecycle endpoints
type RoomHandler struct {
	gameSvc *service.GameService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(gameSvc *service.GameService) *RoomHandler {
	return &RoomHandler{gameSvc: gameSvc}
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

// RemoveAIRequest names the AI player to remove
type RemoveAIRequest struct {
	PlayerID string `json:"playerId"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.CreateRoom(req.PlayerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Join handles POST /v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.Join(roomID, req.PlayerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	snapshot, err := h.gameSvc.Snapshot(roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Leave handles POST /v1/rooms/{id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	if err := h.gameSvc.Leave(r.Context(), roomID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// AddAI handles POST /v1/rooms/{id}/ai-players
func (h *RoomHandler) AddAI(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	aiPlayer, err := h.gameSvc.AddAIPlayer(r.Context(), roomID, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, aiPlayer.PublicView())
}

// RemoveAI handles DELETE /v1/rooms/{id}/ai-players
func (h *RoomHandler) RemoveAI(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, ok := roomScope(w, r)
	if !ok {
		return
	}

	var req RemoveAIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.RemoveAIPlayer(r.Context(), roomID, playerID, req.PlayerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// roomScope reads the room from the path and the player from the token and
// rejects a token minted for a different room.
func roomScope(w http.ResponseWriter, r *http.Request) (roomID, playerID string, ok bool) {
	roomID = mux.Vars(r)["id"]
	playerID = middleware.GetPlayerID(r.Context())
	if middleware.GetRoomID(r.Context()) != roomID {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return "", "", false
	}
	return roomID, playerID, true
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNotHost):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrRoomFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidTarget), errors.Is(err, game.ErrPlayerDead), errors.Is(err, game.ErrNoNightAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
