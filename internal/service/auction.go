package service

import (
	"context"
	"log"
	"time"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"
	"goldrush-game-api/pkg/uid"
)

// BidResult is the payload of an accepted bid.
type BidResult struct {
	Gold int64 `json:"gold"`
}

// BuyoutResult is the payload of a settled buyout.
type BuyoutResult struct {
	Price      int64  `json:"price"`
	ItemName   string `json:"item_name"`
	BuyerGold  int64  `json:"buyer_gold"`
	SellerGold int64  `json:"seller_gold"`
}

// AuctionService governs listings from creation through buyout
// settlement. Escrow rules: the listed item leaves the seller's
// inventory at creation and lives on the auction record; bid gold is
// held by the engine, never more than the current high bid.
type AuctionService struct {
	store    store.Store
	notifier notify.Broadcaster
}

// NewAuctionService wires the auction house.
func NewAuctionService(st store.Store, notifier notify.Broadcaster) *AuctionService {
	return &AuctionService{store: st, notifier: notifier}
}

// Create lists an inventory item for auction. The item moves out of the
// seller's inventory into escrow on the new record.
func (s *AuctionService) Create(ctx context.Context, sellerID, uniqueID string, startingPrice int64) (*model.Auction, error) {
	seller, err := s.store.GetPlayer(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	item, err := s.store.RemoveInventoryItem(ctx, sellerID, uniqueID)
	if err != nil {
		return nil, err
	}

	auction := &model.Auction{
		ID:           uid.NewTimeID(),
		SellerID:     sellerID,
		SellerName:   seller.Username,
		ItemID:       item.ItemID,
		ItemName:     item.Name,
		CurrentPrice: startingPrice,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateAuction(ctx, auction); err != nil {
		// The item already left the inventory; put it back rather than
		// lose it to escrow on a record that was never written.
		if restoreErr := s.store.AppendInventory(ctx, sellerID, *item); restoreErr != nil {
			log.Printf("[AuctionService] failed to restore item %s to %s after create failure: %v",
				item.UniqueID, sellerID, restoreErr)
		}
		return nil, err
	}

	s.notifier.Publish(notify.EventAuctionUpdate, map[string]interface{}{
		"type":    "create",
		"auction": auction,
	})

	return auction, nil
}

// List returns active listings in creation order.
func (s *AuctionService) List(ctx context.Context) ([]model.Auction, error) {
	return s.store.ListAuctions(ctx)
}

// Bid places a bid. The refund of the outbid player and the debit of
// the new bidder commit in the same unit as the price swap.
func (s *AuctionService) Bid(ctx context.Context, auctionID, bidderID string, amount int64) (*BidResult, error) {
	bidder, err := s.store.GetPlayer(ctx, bidderID)
	if err != nil {
		return nil, err
	}

	gold, err := s.store.PlaceBid(ctx, auctionID, bidderID, bidder.Username, amount)
	if err != nil {
		return nil, err
	}

	// Best-effort history; the bid stands regardless.
	if err := s.store.AppendBidEvent(ctx, model.BidEvent{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Timestamp: time.Now(),
	}); err != nil {
		log.Printf("[AuctionService] bid history append failed for %s: %v", auctionID, err)
	}

	s.notifier.Publish(notify.EventAuctionUpdate, map[string]interface{}{
		"type":        "bid",
		"auction_id":  auctionID,
		"bidder":      bidderID,
		"bidder_name": bidder.Username,
		"amount":      amount,
	})
	s.notifier.Publish(notify.EventLeaderboardUpdate, nil)

	return &BidResult{Gold: gold}, nil
}

// Buyout settles a listing at its current price. Known inconsistency,
// kept deliberately: when a third party buys out an auction that has a
// standing bid, the outbid player's escrowed gold is not refunded. See
// DESIGN.md before changing this.
func (s *AuctionService) Buyout(ctx context.Context, auctionID, buyerID string) (*BuyoutResult, error) {
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetPlayer(ctx, buyerID); err != nil {
		return nil, err
	}

	grant := model.InventoryItem{
		ItemID:     auction.ItemID,
		Name:       auction.ItemName,
		UniqueID:   uid.NewItemUID(),
		AcquiredAt: time.Now(),
	}
	price, buyerGold, sellerGold, err := s.store.BuyoutAuction(ctx, auctionID, buyerID, grant)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notify.EventAuctionUpdate, map[string]interface{}{
		"type":       "buy",
		"auction_id": auctionID,
	})
	s.notifier.Publish(notify.EventLeaderboardUpdate, nil)

	return &BuyoutResult{
		Price:      price,
		ItemName:   auction.ItemName,
		BuyerGold:  buyerGold,
		SellerGold: sellerGold,
	}, nil
}
