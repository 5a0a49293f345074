package handler

import (
	"encoding/json"
	"net/http"

	"goldrush-game-api/internal/repository"
	"goldrush-game-api/internal/service"
	"goldrush-game-api/pkg/apierror"
	"goldrush-game-api/pkg/response"
)

// ClientCounter reports how many notification clients are connected.
type ClientCounter interface {
	ClientCount() int
}

// AdminHandler handles the operator endpoints behind the admin password.
type AdminHandler struct {
	settingsService *service.SettingsService
	archive         repository.HistoryArchive
	clients         ClientCounter
}

// NewAdminHandler creates a new admin handler. archive and clients may
// be nil when the deployment runs without them.
func NewAdminHandler(settingsService *service.SettingsService, archive repository.HistoryArchive, clients ClientCounter) *AdminHandler {
	return &AdminHandler{
		settingsService: settingsService,
		archive:         archive,
		clients:         clients,
	}
}

// GetConfig handles GET /admin/config
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, settings)
}

type setCooldownRequest struct {
	CooldownMS int64 `json:"cooldown_ms"`
}

// SetCooldown handles POST /admin/set_cooldown
func (h *AdminHandler) SetCooldown(w http.ResponseWriter, r *http.Request) {
	var req setCooldownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	settings, err := h.settingsService.SetCooldown(r.Context(), req.CooldownMS)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, settings)
}

type setRateLimitRequest struct {
	WindowMS int64 `json:"window_ms"`
	MaxHits  int64 `json:"max_hits"`
}

// SetRateLimit handles POST /admin/set_rate_limit
func (h *AdminHandler) SetRateLimit(w http.ResponseWriter, r *http.Request) {
	var req setRateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	settings, err := h.settingsService.SetRateLimit(r.Context(), req.WindowMS, req.MaxHits)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, settings)
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	if h.clients != nil {
		stats["connected_clients"] = h.clients.ClientCount()
	}
	if h.archive != nil {
		archived, err := h.archive.Stats(r.Context())
		if err != nil {
			response.Error(w, apierror.InternalError("failed to read archive stats"))
			return
		}
		stats["archived_events"] = archived
	}

	response.OK(w, stats)
}
