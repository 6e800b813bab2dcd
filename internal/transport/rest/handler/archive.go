package handler

import (
	"net/http"
	"strconv"

	"moonhollow/internal/service"
)

// ArchiveHandler serves finished-game history
type ArchiveHandler struct {
	gameSvc *service.GameService
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(gameSvc *service.GameService) *ArchiveHandler {
	return &ArchiveHandler{gameSvc: gameSvc}
}

// ListRecent handles GET /v1/games
func (h *ArchiveHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	records, err := h.gameSvc.ListRecentGames(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
