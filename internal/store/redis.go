package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/pkg/uid"

	"github.com/redis/go-redis/v9"
)

// Redis key layout. Everything the engine owns lives under these
// prefixes; presence of an auction hash doubles as its Active status.
const (
	playerKeyPrefix   = "player:"
	playerNameIndex   = "players:by_name"
	clicksKeyPrefix   = "clicks:"
	comboKeyPrefix    = "combo:"
	cooldownKeyPrefix = "cooldown:"
	rateKeyPrefix     = "rate:clicks:"
	boardKeyPrefix    = "leaderboard:"
	itemKeyPrefix     = "item:"
	itemIndexKey      = "items:index"
	stockKeyPrefix    = "stock:"
	invKeyPrefix      = "inventory:"
	auctionKeyPrefix  = "auction:"
	activeAuctionsKey = "auctions:active"

	cooldownConfigKey = "config:click_cooldown_ms"
	windowConfigKey   = "config:click_window_ms"
	maxHitsConfigKey  = "config:click_max_hits"
)

// clickRewardScript credits the reward, bumps the lifetime click counter
// and syncs both leaderboards in one server-side unit.
var clickRewardScript = redis.NewScript(`
	local new_gold = redis.call("HINCRBY", KEYS[1], "gold", ARGV[2])
	local new_clicks = redis.call("INCR", KEYS[2])
	redis.call("ZADD", KEYS[3], new_gold, ARGV[1])
	redis.call("ZADD", KEYS[4], new_clicks, ARGV[1])
	return {new_gold, new_clicks}
`)

// purchaseScript re-checks stock and funds inside the unit so the check
// and the debit cannot race, then applies every effect or none.
var purchaseScript = redis.NewScript(`
	local qty = tonumber(ARGV[2])
	local stock = tonumber(redis.call("GET", KEYS[2]))
	if not stock or stock < qty then
		return {0, "stock"}
	end
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return {0, "player"}
	end
	local price = tonumber(redis.call("HGET", KEYS[3], "price"))
	local gold = tonumber(redis.call("HGET", KEYS[1], "gold"))
	local cost = price * qty
	if not gold or gold < cost then
		return {0, "funds"}
	end
	local new_gold = redis.call("HINCRBY", KEYS[1], "gold", -cost)
	redis.call("DECRBY", KEYS[2], qty)
	redis.call("ZADD", KEYS[4], new_gold, ARGV[1])
	return {1, cost, new_gold}
`)

// rateSlotScript prunes the sliding window, then either rejects with a
// retry hint or records this hit. The record happens on admission even
// when the caller's next gate rejects the action.
var rateSlotScript = redis.NewScript(`
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local max_hits = tonumber(ARGV[3])
	redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, now - window)
	local hits = redis.call("ZCARD", KEYS[1])
	if hits >= max_hits then
		local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
		local retry = 0
		if oldest[2] then
			retry = math.max(0, tonumber(oldest[2]) + window - now)
		end
		return {0, retry}
	end
	redis.call("ZADD", KEYS[1], now, ARGV[4])
	redis.call("PEXPIRE", KEYS[1], window)
	return {1, 0}
`)

// cooldownScript reports the live marker's TTL or plants a fresh one.
var cooldownScript = redis.NewScript(`
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl > 0 then
		return {0, ttl}
	end
	if tonumber(ARGV[1]) > 0 then
		redis.call("SET", KEYS[1], 1, "PX", ARGV[1])
	end
	return {1, 0}
`)

// bidScript validates, refunds the outbid player exactly their own prior
// bid, debits the new bidder the full amount and swaps price/bidder in
// one unit. The previous bidder's key is derived inside the unit so the
// refund always goes to whoever holds the high bid at execution time.
var bidScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return {-1}
	end
	local amount = tonumber(ARGV[3])
	local current = tonumber(redis.call("HGET", KEYS[1], "current_price"))
	if amount <= current then
		return {-2}
	end
	local gold = tonumber(redis.call("HGET", KEYS[2], "gold"))
	if not gold or gold < amount then
		return {-3}
	end
	local prev = redis.call("HGET", KEYS[1], "highest_bidder")
	if prev and prev ~= "" then
		local prev_gold = redis.call("HINCRBY", ARGV[4] .. prev, "gold", current)
		redis.call("ZADD", KEYS[3], prev_gold, prev)
	end
	local new_gold = redis.call("HINCRBY", KEYS[2], "gold", -amount)
	redis.call("ZADD", KEYS[3], new_gold, ARGV[1])
	redis.call("HSET", KEYS[1],
		"current_price", amount,
		"highest_bidder", ARGV[1],
		"highest_bidder_name", ARGV[2])
	return {1, new_gold}
`)

// buyoutScript settles a listing: gold moves buyer->seller, the escrowed
// item lands in the buyer's inventory and the record disappears. The
// previous highest bidder is deliberately not refunded; the original
// economy behaves this way and callers assert it (see DESIGN.md).
var buyoutScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return {-1}
	end
	local price = tonumber(redis.call("HGET", KEYS[1], "current_price"))
	local seller = redis.call("HGET", KEYS[1], "seller")
	local gold = tonumber(redis.call("HGET", KEYS[2], "gold"))
	if not gold or gold < price then
		return {-3}
	end
	local new_buyer = redis.call("HINCRBY", KEYS[2], "gold", -price)
	local new_seller = redis.call("HINCRBY", ARGV[2] .. seller, "gold", price)
	redis.call("ZADD", KEYS[3], new_buyer, ARGV[1])
	redis.call("ZADD", KEYS[3], new_seller, seller)
	redis.call("RPUSH", KEYS[4], ARGV[3])
	redis.call("DEL", KEYS[1])
	redis.call("ZREM", KEYS[5], ARGV[4])
	return {1, price, new_buyer, new_seller}
`)

// RedisStore implements Store on a shared Redis instance. Every
// multi-entity unit runs as one server-side script, so the store itself
// is the only arbiter of ordering; no in-process locks are held.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// --- players ---

// CreatePlayer stores the account hash, claims the username and seeds
// both leaderboards in a single transaction pipeline.
func (s *RedisStore) CreatePlayer(ctx context.Context, p *model.Player) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, playerKeyPrefix+p.ID, map[string]interface{}{
		"username":   p.Username,
		"gold":       p.Gold,
		"level":      p.Level,
		"exp":        p.Exp,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
		"last_login": p.LastLogin.Format(time.RFC3339Nano),
	})
	pipe.HSet(ctx, playerNameIndex, p.Username, p.ID)
	pipe.ZAdd(ctx, boardKeyPrefix+BoardGold, redis.Z{Score: float64(p.Gold), Member: p.ID})
	pipe.ZAdd(ctx, boardKeyPrefix+BoardClicks, redis.Z{Score: 0, Member: p.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetPlayer loads and parses the account hash.
func (s *RedisStore) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	data, err := s.client.HGetAll(ctx, playerKeyPrefix+playerID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrPlayerNotFound
	}
	return parsePlayerHash(playerID, data), nil
}

// FindPlayerByUsername resolves a name through the username index.
func (s *RedisStore) FindPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	id, err := s.client.HGet(ctx, playerNameIndex, username).Result()
	if err == redis.Nil {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}
	return s.GetPlayer(ctx, id)
}

// TouchLastLogin records a login timestamp.
func (s *RedisStore) TouchLastLogin(ctx context.Context, playerID string, at time.Time) error {
	return s.client.HSet(ctx, playerKeyPrefix+playerID, "last_login", at.Format(time.RFC3339Nano)).Err()
}

// PlayerRanks reads the 1-based leaderboard positions.
func (s *RedisStore) PlayerRanks(ctx context.Context, playerID string) (int64, int64, error) {
	goldRank, err := s.revRank(ctx, BoardGold, playerID)
	if err != nil {
		return 0, 0, err
	}
	clickRank, err := s.revRank(ctx, BoardClicks, playerID)
	if err != nil {
		return 0, 0, err
	}
	return goldRank, clickRank, nil
}

func (s *RedisStore) revRank(ctx context.Context, board, playerID string) (int64, error) {
	rank, err := s.client.ZRevRank(ctx, boardKeyPrefix+board, playerID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rank: %w", err)
	}
	return rank + 1, nil
}

// TotalClicks reads the lifetime click counter.
func (s *RedisStore) TotalClicks(ctx context.Context, playerID string) (int64, error) {
	raw, err := s.client.Get(ctx, clicksKeyPrefix+playerID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read click counter: %w", err)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// --- rate limiting / streak ---

// TakeRateSlot runs the sliding-window gate.
func (s *RedisStore) TakeRateSlot(ctx context.Context, playerID string, now time.Time, window time.Duration, maxHits int64) (bool, time.Duration, error) {
	// Member carries a random suffix so two hits in the same millisecond
	// both count.
	member := fmt.Sprintf("%d-%s", now.UnixMilli(), uid.New()[:8])
	res, err := rateSlotScript.Run(ctx, s.client,
		[]string{rateKeyPrefix + playerID},
		now.UnixMilli(), window.Milliseconds(), maxHits, member,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate slot script failed: %w", err)
	}
	if res[0] == 0 {
		return false, time.Duration(res[1]) * time.Millisecond, nil
	}
	return true, 0, nil
}

// AcquireCooldown runs the cooldown gate.
func (s *RedisStore) AcquireCooldown(ctx context.Context, playerID string, cooldown time.Duration) (bool, time.Duration, error) {
	res, err := cooldownScript.Run(ctx, s.client,
		[]string{cooldownKeyPrefix + playerID},
		cooldown.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown script failed: %w", err)
	}
	if res[0] == 0 {
		return false, time.Duration(res[1]) * time.Millisecond, nil
	}
	return true, 0, nil
}

// Combo reads the current streak; an expired key reads as 0.
func (s *RedisStore) Combo(ctx context.Context, playerID string) (int, error) {
	raw, err := s.client.Get(ctx, comboKeyPrefix+playerID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read combo: %w", err)
	}
	combo, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}
	return combo, nil
}

// SetCombo stores the streak with a fresh validity window.
func (s *RedisStore) SetCombo(ctx context.Context, playerID string, combo int, ttl time.Duration) error {
	return s.client.Set(ctx, comboKeyPrefix+playerID, combo, ttl).Err()
}

// --- economy ---

// ApplyClickReward commits the click transaction.
func (s *RedisStore) ApplyClickReward(ctx context.Context, playerID string, reward int64) (int64, int64, error) {
	res, err := clickRewardScript.Run(ctx, s.client,
		[]string{
			playerKeyPrefix + playerID,
			clicksKeyPrefix + playerID,
			boardKeyPrefix + BoardGold,
			boardKeyPrefix + BoardClicks,
		},
		playerID, reward,
	).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("click reward script failed: %w", err)
	}
	return res[0], res[1], nil
}

// SeedItems inserts any catalog entries that do not exist yet.
func (s *RedisStore) SeedItems(ctx context.Context, items []model.ItemDefinition, stock int64) error {
	for _, item := range items {
		exists, err := s.client.Exists(ctx, itemKeyPrefix+item.ID).Result()
		if err != nil {
			return fmt.Errorf("failed to check item %s: %w", item.ID, err)
		}
		if exists == 0 {
			attrs, _ := json.Marshal(item.Attributes)
			pipe := s.client.TxPipeline()
			pipe.HSet(ctx, itemKeyPrefix+item.ID, map[string]interface{}{
				"name":       item.Name,
				"price":      item.Price,
				"attributes": string(attrs),
			})
			pipe.SAdd(ctx, itemIndexKey, item.ID)
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to seed item %s: %w", item.ID, err)
			}
		}
		if err := s.client.SetNX(ctx, stockKeyPrefix+item.ID, stock, 0).Err(); err != nil {
			return fmt.Errorf("failed to seed stock for %s: %w", item.ID, err)
		}
	}
	return nil
}

// ListItems returns the catalog with live stock counters.
func (s *RedisStore) ListItems(ctx context.Context) ([]model.ShopItem, error) {
	ids, err := s.client.SMembers(ctx, itemIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	items := make([]model.ShopItem, 0, len(ids))
	for _, id := range ids {
		def, err := s.GetItem(ctx, id)
		if err == ErrItemNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		stock, err := s.client.Get(ctx, stockKeyPrefix+id).Int64()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to read stock for %s: %w", id, err)
		}
		items = append(items, model.ShopItem{ItemDefinition: *def, Stock: stock})
	}
	return items, nil
}

// GetItem loads one catalog entry.
func (s *RedisStore) GetItem(ctx context.Context, itemID string) (*model.ItemDefinition, error) {
	data, err := s.client.HGetAll(ctx, itemKeyPrefix+itemID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrItemNotFound
	}
	price, _ := strconv.ParseInt(data["price"], 10, 64)
	def := &model.ItemDefinition{ID: itemID, Name: data["name"], Price: price}
	if raw := data["attributes"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &def.Attributes)
	}
	return def, nil
}

// PurchaseItem commits the purchase transaction.
func (s *RedisStore) PurchaseItem(ctx context.Context, playerID, itemID string, quantity int64) (int64, int64, error) {
	res, err := purchaseScript.Run(ctx, s.client,
		[]string{
			playerKeyPrefix + playerID,
			stockKeyPrefix + itemID,
			itemKeyPrefix + itemID,
			boardKeyPrefix + BoardGold,
		},
		playerID, quantity,
	).Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("purchase script failed: %w", err)
	}
	if res[0].(int64) == 0 {
		switch res[1].(string) {
		case "stock":
			return 0, 0, ErrOutOfStock
		case "player":
			return 0, 0, ErrPlayerNotFound
		}
		return 0, 0, ErrInsufficientFunds
	}
	return res[1].(int64), res[2].(int64), nil
}

// Inventory returns the player's ordered item list.
func (s *RedisStore) Inventory(ctx context.Context, playerID string) ([]model.InventoryItem, error) {
	rows, err := s.client.LRange(ctx, invKeyPrefix+playerID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	items := make([]model.InventoryItem, 0, len(rows))
	for _, row := range rows {
		var item model.InventoryItem
		if err := json.Unmarshal([]byte(row), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// AppendInventory appends item instances to the owner's list.
func (s *RedisStore) AppendInventory(ctx context.Context, playerID string, items ...model.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]interface{}, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode inventory item: %w", err)
		}
		rows = append(rows, raw)
	}
	if err := s.client.RPush(ctx, invKeyPrefix+playerID, rows...).Err(); err != nil {
		return fmt.Errorf("failed to append inventory: %w", err)
	}
	return nil
}

// RemoveInventoryItem removes one item by unique ID. LREM on the exact
// serialized row removes a single instance even under concurrent
// appends; a zero removal count means someone else took it first.
func (s *RedisStore) RemoveInventoryItem(ctx context.Context, playerID, uniqueID string) (*model.InventoryItem, error) {
	key := invKeyPrefix + playerID
	rows, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	for _, row := range rows {
		var item model.InventoryItem
		if err := json.Unmarshal([]byte(row), &item); err != nil {
			continue
		}
		if item.UniqueID != uniqueID {
			continue
		}
		removed, err := s.client.LRem(ctx, key, 1, row).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to remove inventory item: %w", err)
		}
		if removed == 0 {
			return nil, ErrItemNotFound
		}
		return &item, nil
	}
	return nil, ErrItemNotFound
}

// TopN reads a leaderboard in descending score order.
func (s *RedisStore) TopN(ctx context.Context, board string, limit int64) ([]model.RankEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.client.ZRevRangeWithScores(ctx, boardKeyPrefix+board, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	entries := make([]model.RankEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, model.RankEntry{
			Rank:     int64(i) + 1,
			PlayerID: row.Member.(string),
			Score:    int64(row.Score),
		})
	}
	return entries, nil
}

// --- auctions ---

// CreateAuction stores the listing and registers it as active.
func (s *RedisStore) CreateAuction(ctx context.Context, a *model.Auction) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, auctionKeyPrefix+a.ID, map[string]interface{}{
		"seller":              a.SellerID,
		"seller_name":         a.SellerName,
		"item_id":             a.ItemID,
		"item_name":           a.ItemName,
		"current_price":       a.CurrentPrice,
		"highest_bidder":      a.HighestBidderID,
		"highest_bidder_name": a.HighestBidderName,
		"created_at":          a.CreatedAt.Format(time.RFC3339Nano),
	})
	pipe.ZAdd(ctx, activeAuctionsKey, redis.Z{Score: float64(a.CreatedAt.UnixMilli()), Member: a.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// GetAuction loads one listing; a deleted (settled) record reads as not
// found.
func (s *RedisStore) GetAuction(ctx context.Context, auctionID string) (*model.Auction, error) {
	data, err := s.client.HGetAll(ctx, auctionKeyPrefix+auctionID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrAuctionNotFound
	}
	return parseAuctionHash(auctionID, data), nil
}

// ListAuctions returns active listings in creation order. Members whose
// hash is gone were settled between the index read and the hash read and
// are skipped.
func (s *RedisStore) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	ids, err := s.client.ZRange(ctx, activeAuctionsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	auctions := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAuction(ctx, id)
		if err == ErrAuctionNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, *a)
	}
	return auctions, nil
}

// PlaceBid commits the bid transaction.
func (s *RedisStore) PlaceBid(ctx context.Context, auctionID, bidderID, bidderName string, amount int64) (int64, error) {
	res, err := bidScript.Run(ctx, s.client,
		[]string{
			auctionKeyPrefix + auctionID,
			playerKeyPrefix + bidderID,
			boardKeyPrefix + BoardGold,
		},
		bidderID, bidderName, amount, playerKeyPrefix,
	).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("bid script failed: %w", err)
	}
	switch res[0] {
	case -1:
		return 0, ErrAuctionNotFound
	case -2:
		return 0, ErrBidTooLow
	case -3:
		return 0, ErrInsufficientFunds
	}
	return res[1], nil
}

// BuyoutAuction commits the settlement transaction.
func (s *RedisStore) BuyoutAuction(ctx context.Context, auctionID, buyerID string, grant model.InventoryItem) (int64, int64, int64, error) {
	raw, err := json.Marshal(grant)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to encode inventory grant: %w", err)
	}
	res, err := buyoutScript.Run(ctx, s.client,
		[]string{
			auctionKeyPrefix + auctionID,
			playerKeyPrefix + buyerID,
			boardKeyPrefix + BoardGold,
			invKeyPrefix + buyerID,
			activeAuctionsKey,
		},
		buyerID, playerKeyPrefix, raw, auctionID,
	).Int64Slice()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("buyout script failed: %w", err)
	}
	switch res[0] {
	case -1:
		return 0, 0, 0, ErrAuctionNotFound
	case -3:
		return 0, 0, 0, ErrInsufficientFunds
	}
	return res[1], res[2], res[3], nil
}

// --- history ---

// AppendClickEvent records a reward event, trimming the stream to its
// bound.
func (s *RedisStore) AppendClickEvent(ctx context.Context, ev model.ClickEvent) error {
	critical := "0"
	if ev.Critical {
		critical = "1"
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamClicks,
		MaxLen: MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"player_id": ev.PlayerID,
			"reward":    ev.Reward,
			"combo":     ev.Combo,
			"critical":  critical,
			"timestamp": ev.Timestamp.Format(time.RFC3339Nano),
		},
	}).Err()
}

// AppendBidEvent records a bid event, trimming the stream to its bound.
func (s *RedisStore) AppendBidEvent(ctx context.Context, ev model.BidEvent) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamBids,
		MaxLen: MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"auction_id": ev.AuctionID,
			"bidder":     ev.BidderID,
			"amount":     ev.Amount,
			"timestamp":  ev.Timestamp.Format(time.RFC3339Nano),
		},
	}).Err()
}

// EventsSince reads stream entries after lastID, oldest first.
func (s *RedisStore) EventsSince(ctx context.Context, stream, lastID string) ([]model.StreamEvent, error) {
	start := "-"
	if lastID != "" {
		start = "(" + lastID
	}
	msgs, err := s.client.XRange(ctx, stream, start, "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", stream, err)
	}
	events := make([]model.StreamEvent, 0, len(msgs))
	for _, msg := range msgs {
		events = append(events, model.StreamEvent{ID: msg.ID, Values: msg.Values})
	}
	return events, nil
}

// --- settings ---

// ClickSettings reads the live throttle parameters, substituting
// defaults for unset keys.
func (s *RedisStore) ClickSettings(ctx context.Context) (model.ClickSettings, error) {
	vals, err := s.client.MGet(ctx, cooldownConfigKey, windowConfigKey, maxHitsConfigKey).Result()
	if err != nil {
		return model.ClickSettings{}, fmt.Errorf("failed to read click settings: %w", err)
	}
	return model.ClickSettings{
		CooldownMS: settingOrDefault(vals[0], DefaultCooldownMS),
		WindowMS:   settingOrDefault(vals[1], DefaultWindowMS),
		MaxHits:    settingOrDefault(vals[2], DefaultMaxHits),
	}, nil
}

// SetCooldown stores the cooldown override.
func (s *RedisStore) SetCooldown(ctx context.Context, cooldownMS int64) error {
	return s.client.Set(ctx, cooldownConfigKey, cooldownMS, 0).Err()
}

// SetRateLimit stores the sliding-window overrides.
func (s *RedisStore) SetRateLimit(ctx context.Context, windowMS, maxHits int64) error {
	return s.client.MSet(ctx, windowConfigKey, windowMS, maxHitsConfigKey, maxHits).Err()
}

// --- parsing helpers ---

func settingOrDefault(val interface{}, def int64) int64 {
	raw, ok := val.(string)
	if !ok || raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func parsePlayerHash(id string, data map[string]string) *model.Player {
	gold, _ := strconv.ParseInt(data["gold"], 10, 64)
	level, _ := strconv.Atoi(data["level"])
	exp, _ := strconv.ParseInt(data["exp"], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	lastLogin, _ := time.Parse(time.RFC3339Nano, data["last_login"])
	return &model.Player{
		ID:        id,
		Username:  data["username"],
		Gold:      gold,
		Level:     level,
		Exp:       exp,
		CreatedAt: createdAt,
		LastLogin: lastLogin,
	}
}

func parseAuctionHash(id string, data map[string]string) *model.Auction {
	price, _ := strconv.ParseInt(data["current_price"], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	return &model.Auction{
		ID:                id,
		SellerID:          data["seller"],
		SellerName:        data["seller_name"],
		ItemID:            data["item_id"],
		ItemName:          data["item_name"],
		CurrentPrice:      price,
		HighestBidderID:   data["highest_bidder"],
		HighestBidderName: data["highest_bidder_name"],
		CreatedAt:         createdAt,
	}
}
