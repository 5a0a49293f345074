package store

import (
	"context"
	"time"

	"goldrush-game-api/internal/model"
)

// Leaderboard names accepted by TopN and maintained by the economy
// operations.
const (
	BoardGold   = "gold"
	BoardClicks = "clicks"
)

// History stream names.
const (
	StreamClicks = "stream:clicks"
	StreamBids   = "stream:auction:bids"
)

// Throttle defaults, used when no admin override is present in the store.
const (
	DefaultCooldownMS = 500
	DefaultWindowMS   = 1000
	DefaultMaxHits    = 3
)

// MaxStreamLength bounds each history stream; the oldest entries are
// trimmed once a stream grows past it.
const MaxStreamLength = 1000

// Store is the single durable-state port of the economy engine. All
// multi-entity mutations are indivisible units: either every listed
// effect lands or none does, and no observer sees an intermediate
// state. Two implementations exist: RedisStore (production, server-side
// scripts) and MemoryStore (tests and single-instance development).
type Store interface {
	PlayerStore
	RateStore
	EconomyStore
	AuctionStore
	HistoryStore
	SettingsStore

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// PlayerStore manages account records and their leaderboard positions.
type PlayerStore interface {
	// CreatePlayer stores a new player and seeds both leaderboards with
	// the player's starting scores.
	CreatePlayer(ctx context.Context, p *model.Player) error

	// GetPlayer returns ErrPlayerNotFound for unknown IDs.
	GetPlayer(ctx context.Context, playerID string) (*model.Player, error)

	// FindPlayerByUsername returns ErrPlayerNotFound when no player has
	// claimed the name.
	FindPlayerByUsername(ctx context.Context, username string) (*model.Player, error)

	// TouchLastLogin records a login without touching economy state.
	TouchLastLogin(ctx context.Context, playerID string, at time.Time) error

	// PlayerRanks returns the 1-based positions on both leaderboards;
	// 0 means unranked.
	PlayerRanks(ctx context.Context, playerID string) (goldRank, clickRank int64, err error)

	// TotalClicks returns the lifetime action counter.
	TotalClicks(ctx context.Context, playerID string) (int64, error)
}

// RateStore holds the throttle and streak state consulted on the click
// path.
type RateStore interface {
	// TakeRateSlot prunes window entries older than now-window, then
	// either records now and admits, or rejects with the time until the
	// oldest surviving entry leaves the window. The slot is consumed on
	// admission even if a later gate rejects the same action.
	TakeRateSlot(ctx context.Context, playerID string, now time.Time, window time.Duration, maxHits int64) (admitted bool, retryAfter time.Duration, err error)

	// AcquireCooldown sets the cooldown marker if none is live, or
	// rejects with the marker's remaining time. A non-positive cooldown
	// admits without setting a marker.
	AcquireCooldown(ctx context.Context, playerID string, cooldown time.Duration) (acquired bool, remaining time.Duration, err error)

	// Combo returns the current streak, 0 when absent or expired.
	Combo(ctx context.Context, playerID string) (int, error)

	// SetCombo stores the streak with a fresh validity window.
	SetCombo(ctx context.Context, playerID string, combo int, ttl time.Duration) error
}

// EconomyStore covers the catalog, purchases, inventories, the click
// reward transaction and leaderboard reads.
type EconomyStore interface {
	// ApplyClickReward credits gold, increments the lifetime click
	// counter and syncs both leaderboards in one unit.
	ApplyClickReward(ctx context.Context, playerID string, reward int64) (gold, totalClicks int64, err error)

	// SeedItems inserts missing catalog entries and stock counters; it
	// never overwrites existing ones.
	SeedItems(ctx context.Context, items []model.ItemDefinition, stock int64) error

	ListItems(ctx context.Context) ([]model.ShopItem, error)

	// GetItem returns ErrItemNotFound for unknown IDs.
	GetItem(ctx context.Context, itemID string) (*model.ItemDefinition, error)

	// PurchaseItem verifies stock and funds, then decrements both in one
	// unit, syncing the gold leaderboard. Fails with ErrOutOfStock or
	// ErrInsufficientFunds with zero mutation. The inventory grant is the
	// caller's follow-up: it only touches the buyer's private list.
	PurchaseItem(ctx context.Context, playerID, itemID string, quantity int64) (cost, gold int64, err error)

	Inventory(ctx context.Context, playerID string) ([]model.InventoryItem, error)

	AppendInventory(ctx context.Context, playerID string, items ...model.InventoryItem) error

	// RemoveInventoryItem takes one item out of the owner's ordered
	// inventory by unique ID, returning it. ErrItemNotFound if absent.
	RemoveInventoryItem(ctx context.Context, playerID, uniqueID string) (*model.InventoryItem, error)

	// TopN returns up to limit entries in strictly descending score
	// order with contiguous 1-based ranks. Usernames are not filled in.
	TopN(ctx context.Context, board string, limit int64) ([]model.RankEntry, error)
}

// AuctionStore governs listings from creation to buyout settlement.
type AuctionStore interface {
	CreateAuction(ctx context.Context, a *model.Auction) error

	// GetAuction returns ErrAuctionNotFound for unknown or settled IDs.
	GetAuction(ctx context.Context, auctionID string) (*model.Auction, error)

	// ListAuctions returns active listings in creation order.
	ListAuctions(ctx context.Context) ([]model.Auction, error)

	// PlaceBid refunds the previous highest bidder their own prior bid,
	// debits the new bidder the full amount, swaps price and bidder and
	// syncs the gold leaderboard, all in one unit. Escrow held by the
	// auction therefore never exceeds the current high bid.
	PlaceBid(ctx context.Context, auctionID, bidderID, bidderName string, amount int64) (gold int64, err error)

	// BuyoutAuction debits the buyer the current price, credits the
	// seller, syncs the leaderboard, appends the escrowed item to the
	// buyer's inventory and deletes the record, all in one unit. The
	// previous highest bidder is NOT refunded here; see the known
	// inconsistency note in DESIGN.md.
	BuyoutAuction(ctx context.Context, auctionID, buyerID string, grant model.InventoryItem) (price, buyerGold, sellerGold int64, err error)
}

// HistoryStore is the bounded, append-only event record. Appends are
// best-effort at call sites: a failure is logged, never escalated.
type HistoryStore interface {
	AppendClickEvent(ctx context.Context, ev model.ClickEvent) error
	AppendBidEvent(ctx context.Context, ev model.BidEvent) error

	// EventsSince returns entries with IDs strictly greater than lastID,
	// oldest first. An empty lastID reads from the start of the stream.
	EventsSince(ctx context.Context, stream, lastID string) ([]model.StreamEvent, error)
}

// SettingsStore exposes the runtime-mutable throttle parameters.
type SettingsStore interface {
	// ClickSettings reads the live values, substituting defaults for
	// unset fields. Callers must not cache the result across requests.
	ClickSettings(ctx context.Context) (model.ClickSettings, error)

	SetCooldown(ctx context.Context, cooldownMS int64) error
	SetRateLimit(ctx context.Context, windowMS, maxHits int64) error
}

// Error is a sentinel error for business-rule rejections. Whenever one
// of these is returned, no state was mutated by the failing call.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrPlayerNotFound indicates an unknown player ID or username.
	ErrPlayerNotFound Error = "player not found"

	// ErrItemNotFound indicates an unknown catalog or inventory item.
	ErrItemNotFound Error = "item not found"

	// ErrAuctionNotFound indicates an unknown or already settled auction.
	ErrAuctionNotFound Error = "auction not found"

	// ErrOutOfStock indicates the stock counter cannot cover the quantity.
	ErrOutOfStock Error = "out of stock"

	// ErrInsufficientFunds indicates the player's gold cannot cover the cost.
	ErrInsufficientFunds Error = "insufficient funds"

	// ErrBidTooLow indicates a bid at or below the current price.
	ErrBidTooLow Error = "bid too low"
)
