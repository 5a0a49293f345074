package handler

import (
	"encoding/json"
	"net/http"

	"goldrush-game-api/internal/service"
	"goldrush-game-api/pkg/apierror"
	"goldrush-game-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// AuctionHandler handles auction house HTTP requests.
type AuctionHandler struct {
	auctionService *service.AuctionService
}

// NewAuctionHandler creates a new auction handler.
func NewAuctionHandler(auctionService *service.AuctionService) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
	}
}

type createAuctionRequest struct {
	PlayerID      string `json:"player_id"`
	UniqueID      string `json:"unique_id"`
	StartingPrice int64  `json:"starting_price"`
}

// Create handles POST /api/auction/create
func (h *AuctionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.PlayerID == "" || req.UniqueID == "" {
		response.Error(w, apierror.BadRequest("player_id and unique_id are required"))
		return
	}
	if req.StartingPrice < 0 {
		response.Error(w, apierror.BadRequest("starting_price must not be negative"))
		return
	}

	auction, err := h.auctionService.Create(r.Context(), req.PlayerID, req.UniqueID, req.StartingPrice)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.Created(w, auction)
}

// List handles GET /api/auction/list
func (h *AuctionHandler) List(w http.ResponseWriter, r *http.Request) {
	auctions, err := h.auctionService.List(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, map[string]interface{}{"auctions": auctions})
}

type bidRequest struct {
	AuctionID string `json:"auction_id"`
	PlayerID  string `json:"player_id"`
	BidAmount int64  `json:"bid_amount"`
}

// Bid handles POST /api/auction/bid
func (h *AuctionHandler) Bid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.AuctionID == "" || req.PlayerID == "" {
		response.Error(w, apierror.BadRequest("auction_id and player_id are required"))
		return
	}

	result, err := h.auctionService.Bid(r.Context(), req.AuctionID, req.PlayerID, req.BidAmount)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, result)
}

type buyoutRequest struct {
	PlayerID string `json:"player_id"`
}

// Buyout handles POST /api/auction/buy/{auction_id}
func (h *AuctionHandler) Buyout(w http.ResponseWriter, r *http.Request) {
	auctionID := chi.URLParam(r, "auction_id")
	if auctionID == "" {
		response.Error(w, apierror.BadRequest("auction_id is required"))
		return
	}

	var req buyoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if req.PlayerID == "" {
		response.Error(w, apierror.BadRequest("player_id is required"))
		return
	}

	result, err := h.auctionService.Buyout(r.Context(), auctionID, req.PlayerID)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}

	response.OK(w, result)
}
