package handler

import (
	"encoding/json"
	"net/http"

	"goldrush-game-api/internal/service"
	"goldrush-game-api/pkg/apierror"
	"goldrush-game-api/pkg/response"
)

// ShopHandler handles catalog and purchase HTTP requests.
type ShopHandler struct {
	shopService *service.ShopService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shopService *service.ShopService) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// ListItems handles GET /api/shop/items
func (h *ShopHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.shopService.ListItems(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, map[string]interface{}{"items": items})
}

type buyRequest struct {
	PlayerID string `json:"player_id"`
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// Buy handles POST /api/shop/buy
func (h *ShopHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.PlayerID == "" || req.ItemID == "" {
		response.Error(w, apierror.BadRequest("player_id and item_id are required"))
		return
	}

	result, err := h.shopService.Buy(r.Context(), req.PlayerID, req.ItemID, req.Quantity)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, result)
}
