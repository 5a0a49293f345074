package handler

import (
	"net/http"
	"strconv"

	"goldrush-game-api/internal/service"
	"goldrush-game-api/pkg/apierror"
	"goldrush-game-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// LeaderboardHandler handles ranked queries.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// TopN handles GET /api/leaderboard/{board}?limit=N
func (h *LeaderboardHandler) TopN(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	limit := int64(service.DefaultLeaderboardLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(w, apierror.BadRequest("limit must be an integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboardService.TopN(r.Context(), board, limit)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"board":       board,
		"leaderboard": entries,
	})
}
