package model

import "time"

// ItemDefinition describes a catalog entry. Definitions are immutable
// after seeding; only the stock counter next to them changes.
type ItemDefinition struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Price      int64            `json:"price"`
	Attributes map[string]int64 `json:"attributes,omitempty"`
}

// ShopItem is a catalog entry paired with its live stock counter, as
// returned by GET /api/shop/items.
type ShopItem struct {
	ItemDefinition
	Stock int64 `json:"stock"`
}

// InventoryItem is one owned item instance. UniqueID is globally unique
// and minted at acquisition time; ownership moves between inventories
// (or into auction escrow) by removal-then-append, never by copy.
type InventoryItem struct {
	ItemID     string    `json:"item_id"`
	Name       string    `json:"name"`
	UniqueID   string    `json:"unique_id"`
	AcquiredAt time.Time `json:"acquired_at"`
}
