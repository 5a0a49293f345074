package service

import (
	"context"
	"fmt"
	"time"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"
	"goldrush-game-api/pkg/uid"
)

// DefaultStock is the seeded stock counter for every catalog entry.
const DefaultStock = 100

// DefaultCatalog returns the seed item definitions. Seeding is
// idempotent: existing entries and stock counters are never overwritten.
func DefaultCatalog() []model.ItemDefinition {
	return []model.ItemDefinition{
		{ID: "sword_bronze", Name: "Bronze Sword", Price: 100, Attributes: map[string]int64{"damage": 10}},
		{ID: "sword_silver", Name: "Silver Sword", Price: 500, Attributes: map[string]int64{"damage": 30}},
		{ID: "sword_gold", Name: "Golden Sword", Price: 2000, Attributes: map[string]int64{"damage": 80}},
		{ID: "armor_leather", Name: "Leather Armor", Price: 150, Attributes: map[string]int64{"defense": 15}},
		{ID: "armor_iron", Name: "Iron Armor", Price: 600, Attributes: map[string]int64{"defense": 40}},
		{ID: "potion_health", Name: "Health Potion", Price: 50, Attributes: map[string]int64{"heal": 100}},
	}
}

// PurchaseResult is the payload of a successful purchase.
type PurchaseResult struct {
	Cost int64 `json:"cost"`
	Gold int64 `json:"gold"`
}

// ShopService serves the catalog and runs the purchase path.
type ShopService struct {
	store    store.Store
	notifier notify.Broadcaster
}

// NewShopService wires the shop.
func NewShopService(st store.Store, notifier notify.Broadcaster) *ShopService {
	return &ShopService{store: st, notifier: notifier}
}

// ListItems returns the catalog with live stock.
func (s *ShopService) ListItems(ctx context.Context) ([]model.ShopItem, error) {
	return s.store.ListItems(ctx)
}

// Buy purchases quantity units of an item. The stock and gold movements
// commit atomically; the inventory grant follows separately since it
// only touches the buyer's private list.
func (s *ShopService) Buy(ctx context.Context, playerID, itemID string, quantity int64) (*PurchaseResult, error) {
	if quantity <= 0 {
		quantity = 1
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	cost, gold, err := s.store.PurchaseItem(ctx, playerID, itemID, quantity)
	if err != nil {
		return nil, err
	}

	grants := make([]model.InventoryItem, 0, quantity)
	now := time.Now()
	for i := int64(0); i < quantity; i++ {
		grants = append(grants, model.InventoryItem{
			ItemID:     item.ID,
			Name:       item.Name,
			UniqueID:   uid.NewItemUID(),
			AcquiredAt: now,
		})
	}
	if err := s.store.AppendInventory(ctx, playerID, grants...); err != nil {
		return nil, fmt.Errorf("purchase committed but inventory grant failed: %w", err)
	}

	s.notifier.Publish(notify.EventLeaderboardUpdate, nil)

	return &PurchaseResult{Cost: cost, Gold: gold}, nil
}
