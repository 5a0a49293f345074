package handler

import (
	"net/http"

	"goldrush-game-api/internal/service"
	"goldrush-game-api/pkg/apierror"
	"goldrush-game-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ClickHandler handles the core click action.
type ClickHandler struct {
	clickService *service.ClickService
}

// NewClickHandler creates a new click handler.
func NewClickHandler(clickService *service.ClickService) *ClickHandler {
	return &ClickHandler{
		clickService: clickService,
	}
}

// Click handles POST /api/click/{player_id}
func (h *ClickHandler) Click(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	if playerID == "" {
		response.Error(w, apierror.BadRequest("player_id is required"))
		return
	}

	result, err := h.clickService.Click(r.Context(), playerID)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, result)
}
