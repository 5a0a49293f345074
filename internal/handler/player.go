package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"goldrush-game-api/internal/service"
	"goldrush-game-api/pkg/apierror"
	"goldrush-game-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// maxUsernameLength bounds the name-based login.
const maxUsernameLength = 24

// PlayerHandler handles account HTTP requests.
type PlayerHandler struct {
	playerService *service.PlayerService
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(playerService *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

type loginRequest struct {
	Username string `json:"username"`
}

// Login handles POST /api/player/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		response.Error(w, apierror.BadRequest("username is required"))
		return
	}
	if len(username) > maxUsernameLength {
		response.Error(w, apierror.BadRequest("username too long"))
		return
	}

	player, created, err := h.playerService.Login(r.Context(), username)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	payload := map[string]interface{}{
		"player":  player,
		"created": created,
	}
	if created {
		response.Created(w, payload)
		return
	}
	response.OK(w, payload)
}

// Logout handles POST /api/player/logout
//
// Sessions are client-held, so there is nothing to tear down server
// side. The endpoint exists so the game page has a clean exit call.
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "logged_out"})
}

// Profile handles GET /api/player/{player_id}
func (h *PlayerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	if playerID == "" {
		response.Error(w, apierror.BadRequest("player_id is required"))
		return
	}

	profile, err := h.playerService.Profile(r.Context(), playerID)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, profile)
}
