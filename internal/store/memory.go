package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"goldrush-game-api/internal/model"
)

type comboEntry struct {
	value     int
	expiresAt time.Time
}

type memorySettings struct {
	cooldownMS int64
	windowMS   int64
	maxHits    int64

	hasCooldown bool
	hasWindow   bool
	hasMaxHits  bool
}

// MemoryStore is an in-process implementation of Store. A single mutex
// stands in for the remote store's transaction boundary, which gives the
// same all-or-nothing visibility per operation. Use it for tests and
// single-instance development runs.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	players   map[string]*model.Player
	nameIndex map[string]string
	clicks    map[string]int64

	combos      map[string]comboEntry
	cooldowns   map[string]time.Time
	rateWindows map[string][]int64

	boards     map[string]map[string]int64
	boardOrder map[string][]string

	items     map[string]model.ItemDefinition
	itemOrder []string
	stock     map[string]int64

	inventories map[string][]model.InventoryItem

	auctions     map[string]*model.Auction
	auctionOrder []string

	streams   map[string][]model.StreamEvent
	streamSeq map[string]int64

	settings memorySettings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:         time.Now,
		players:     make(map[string]*model.Player),
		nameIndex:   make(map[string]string),
		clicks:      make(map[string]int64),
		combos:      make(map[string]comboEntry),
		cooldowns:   make(map[string]time.Time),
		rateWindows: make(map[string][]int64),
		boards:      make(map[string]map[string]int64),
		boardOrder:  make(map[string][]string),
		items:       make(map[string]model.ItemDefinition),
		stock:       make(map[string]int64),
		inventories: make(map[string][]model.InventoryItem),
		auctions:    make(map[string]*model.Auction),
		streams:     make(map[string][]model.StreamEvent),
		streamSeq:   make(map[string]int64),
	}
}

// WithClock replaces the time source. Tests use this to exercise
// cooldown and combo expiry without sleeping.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) setScore(board, playerID string, score int64) {
	b, ok := s.boards[board]
	if !ok {
		b = make(map[string]int64)
		s.boards[board] = b
	}
	if _, seen := b[playerID]; !seen {
		s.boardOrder[board] = append(s.boardOrder[board], playerID)
	}
	b[playerID] = score
}

// --- players ---

func (s *MemoryStore) CreatePlayer(ctx context.Context, p *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.players[p.ID] = &cp
	s.nameIndex[p.Username] = p.ID
	s.setScore(BoardGold, p.ID, p.Gold)
	s.setScore(BoardClicks, p.ID, 0)
	return nil
}

func (s *MemoryStore) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) FindPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.Lock()
	id, ok := s.nameIndex[username]
	s.mu.Unlock()
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return s.GetPlayer(ctx, id)
}

func (s *MemoryStore) TouchLastLogin(ctx context.Context, playerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[playerID]; ok {
		p.LastLogin = at
	}
	return nil
}

func (s *MemoryStore) PlayerRanks(ctx context.Context, playerID string) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rankOf(BoardGold, playerID), s.rankOf(BoardClicks, playerID), nil
}

func (s *MemoryStore) rankOf(board, playerID string) int64 {
	entries := s.sortedBoard(board)
	for i, e := range entries {
		if e.PlayerID == playerID {
			return int64(i) + 1
		}
	}
	return 0
}

func (s *MemoryStore) TotalClicks(ctx context.Context, playerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clicks[playerID], nil
}

// --- rate limiting / streak ---

func (s *MemoryStore) TakeRateSlot(ctx context.Context, playerID string, now time.Time, window time.Duration, maxHits int64) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMS := now.UnixMilli()
	windowMS := window.Milliseconds()

	kept := s.rateWindows[playerID][:0]
	for _, ts := range s.rateWindows[playerID] {
		if ts > nowMS-windowMS {
			kept = append(kept, ts)
		}
	}
	s.rateWindows[playerID] = kept

	if int64(len(kept)) >= maxHits {
		retry := kept[0] + windowMS - nowMS
		if retry < 0 {
			retry = 0
		}
		return false, time.Duration(retry) * time.Millisecond, nil
	}
	s.rateWindows[playerID] = append(kept, nowMS)
	return true, 0, nil
}

func (s *MemoryStore) AcquireCooldown(ctx context.Context, playerID string, cooldown time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.cooldowns[playerID]; ok && expiry.After(now) {
		return false, expiry.Sub(now), nil
	}
	if cooldown > 0 {
		s.cooldowns[playerID] = now.Add(cooldown)
	}
	return true, 0, nil
}

func (s *MemoryStore) Combo(ctx context.Context, playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.combos[playerID]
	if !ok || !entry.expiresAt.After(s.now()) {
		return 0, nil
	}
	return entry.value, nil
}

func (s *MemoryStore) SetCombo(ctx context.Context, playerID string, combo int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.combos[playerID] = comboEntry{value: combo, expiresAt: s.now().Add(ttl)}
	return nil
}

// --- economy ---

func (s *MemoryStore) ApplyClickReward(ctx context.Context, playerID string, reward int64) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return 0, 0, ErrPlayerNotFound
	}
	p.Gold += reward
	s.clicks[playerID]++
	s.setScore(BoardGold, playerID, p.Gold)
	s.setScore(BoardClicks, playerID, s.clicks[playerID])
	return p.Gold, s.clicks[playerID], nil
}

func (s *MemoryStore) SeedItems(ctx context.Context, items []model.ItemDefinition, stock int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if _, ok := s.items[item.ID]; !ok {
			s.items[item.ID] = item
			s.itemOrder = append(s.itemOrder, item.ID)
		}
		if _, ok := s.stock[item.ID]; !ok {
			s.stock[item.ID] = stock
		}
	}
	return nil
}

func (s *MemoryStore) ListItems(ctx context.Context) ([]model.ShopItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.ShopItem, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		items = append(items, model.ShopItem{ItemDefinition: s.items[id], Stock: s.stock[id]})
	}
	return items, nil
}

func (s *MemoryStore) GetItem(ctx context.Context, itemID string) (*model.ItemDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

func (s *MemoryStore) PurchaseItem(ctx context.Context, playerID, itemID string, quantity int64) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return 0, 0, ErrItemNotFound
	}
	if s.stock[itemID] < quantity {
		return 0, 0, ErrOutOfStock
	}
	p, ok := s.players[playerID]
	if !ok {
		return 0, 0, ErrPlayerNotFound
	}
	cost := item.Price * quantity
	if p.Gold < cost {
		return 0, 0, ErrInsufficientFunds
	}
	s.stock[itemID] -= quantity
	p.Gold -= cost
	s.setScore(BoardGold, playerID, p.Gold)
	return cost, p.Gold, nil
}

func (s *MemoryStore) Inventory(ctx context.Context, playerID string) ([]model.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.InventoryItem, len(s.inventories[playerID]))
	copy(items, s.inventories[playerID])
	return items, nil
}

func (s *MemoryStore) AppendInventory(ctx context.Context, playerID string, items ...model.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inventories[playerID] = append(s.inventories[playerID], items...)
	return nil
}

func (s *MemoryStore) RemoveInventoryItem(ctx context.Context, playerID, uniqueID string) (*model.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.inventories[playerID]
	for i, item := range inv {
		if item.UniqueID == uniqueID {
			removed := item
			s.inventories[playerID] = append(inv[:i:i], inv[i+1:]...)
			return &removed, nil
		}
	}
	return nil, ErrItemNotFound
}

func (s *MemoryStore) TopN(ctx context.Context, board string, limit int64) ([]model.RankEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.sortedBoard(board)
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// sortedBoard orders members by descending score; equal scores keep the
// order in which members first entered the index.
func (s *MemoryStore) sortedBoard(board string) []model.RankEntry {
	scores := s.boards[board]
	entries := make([]model.RankEntry, 0, len(scores))
	for _, id := range s.boardOrder[board] {
		entries = append(entries, model.RankEntry{PlayerID: id, Score: scores[id]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = int64(i) + 1
	}
	return entries
}

// --- auctions ---

func (s *MemoryStore) CreateAuction(ctx context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.auctions[a.ID] = &cp
	s.auctionOrder = append(s.auctionOrder, a.ID)
	return nil
}

func (s *MemoryStore) GetAuction(ctx context.Context, auctionID string) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auctions := make([]model.Auction, 0, len(s.auctions))
	for _, id := range s.auctionOrder {
		if a, ok := s.auctions[id]; ok {
			auctions = append(auctions, *a)
		}
	}
	return auctions, nil
}

func (s *MemoryStore) PlaceBid(ctx context.Context, auctionID, bidderID, bidderName string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return 0, ErrAuctionNotFound
	}
	if amount <= a.CurrentPrice {
		return 0, ErrBidTooLow
	}
	bidder, ok := s.players[bidderID]
	if !ok {
		return 0, ErrPlayerNotFound
	}
	if bidder.Gold < amount {
		return 0, ErrInsufficientFunds
	}

	if a.HighestBidderID != "" {
		if prev, ok := s.players[a.HighestBidderID]; ok {
			prev.Gold += a.CurrentPrice
			s.setScore(BoardGold, prev.ID, prev.Gold)
		}
	}
	bidder.Gold -= amount
	s.setScore(BoardGold, bidderID, bidder.Gold)
	a.CurrentPrice = amount
	a.HighestBidderID = bidderID
	a.HighestBidderName = bidderName
	return bidder.Gold, nil
}

func (s *MemoryStore) BuyoutAuction(ctx context.Context, auctionID, buyerID string, grant model.InventoryItem) (int64, int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return 0, 0, 0, ErrAuctionNotFound
	}
	buyer, ok := s.players[buyerID]
	if !ok {
		return 0, 0, 0, ErrPlayerNotFound
	}
	price := a.CurrentPrice
	if buyer.Gold < price {
		return 0, 0, 0, ErrInsufficientFunds
	}

	buyer.Gold -= price
	s.setScore(BoardGold, buyerID, buyer.Gold)

	var sellerGold int64
	if seller, ok := s.players[a.SellerID]; ok {
		seller.Gold += price
		sellerGold = seller.Gold
		s.setScore(BoardGold, seller.ID, seller.Gold)
	}

	s.inventories[buyerID] = append(s.inventories[buyerID], grant)
	delete(s.auctions, auctionID)
	return price, buyer.Gold, sellerGold, nil
}

// --- history ---

func (s *MemoryStore) AppendClickEvent(ctx context.Context, ev model.ClickEvent) error {
	critical := "0"
	if ev.Critical {
		critical = "1"
	}
	s.appendStream(StreamClicks, map[string]interface{}{
		"player_id": ev.PlayerID,
		"reward":    strconv.FormatInt(ev.Reward, 10),
		"combo":     strconv.Itoa(ev.Combo),
		"critical":  critical,
		"timestamp": ev.Timestamp.Format(time.RFC3339Nano),
	})
	return nil
}

func (s *MemoryStore) AppendBidEvent(ctx context.Context, ev model.BidEvent) error {
	s.appendStream(StreamBids, map[string]interface{}{
		"auction_id": ev.AuctionID,
		"bidder":     ev.BidderID,
		"amount":     strconv.FormatInt(ev.Amount, 10),
		"timestamp":  ev.Timestamp.Format(time.RFC3339Nano),
	})
	return nil
}

func (s *MemoryStore) appendStream(stream string, values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streamSeq[stream]++
	entries := append(s.streams[stream], model.StreamEvent{
		ID:     fmt.Sprintf("%d-0", s.streamSeq[stream]),
		Values: values,
	})
	if len(entries) > MaxStreamLength {
		entries = entries[len(entries)-MaxStreamLength:]
	}
	s.streams[stream] = entries
}

func (s *MemoryStore) EventsSince(ctx context.Context, stream, lastID string) ([]model.StreamEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastSeq int64
	if lastID != "" {
		lastSeq, _ = strconv.ParseInt(strings.SplitN(lastID, "-", 2)[0], 10, 64)
	}
	var events []model.StreamEvent
	for _, ev := range s.streams[stream] {
		seq, _ := strconv.ParseInt(strings.SplitN(ev.ID, "-", 2)[0], 10, 64)
		if seq > lastSeq {
			events = append(events, ev)
		}
	}
	return events, nil
}

// --- settings ---

func (s *MemoryStore) ClickSettings(ctx context.Context) (model.ClickSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := model.ClickSettings{
		CooldownMS: DefaultCooldownMS,
		WindowMS:   DefaultWindowMS,
		MaxHits:    DefaultMaxHits,
	}
	if s.settings.hasCooldown {
		settings.CooldownMS = s.settings.cooldownMS
	}
	if s.settings.hasWindow {
		settings.WindowMS = s.settings.windowMS
	}
	if s.settings.hasMaxHits {
		settings.MaxHits = s.settings.maxHits
	}
	return settings, nil
}

func (s *MemoryStore) SetCooldown(ctx context.Context, cooldownMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.cooldownMS = cooldownMS
	s.settings.hasCooldown = true
	return nil
}

func (s *MemoryStore) SetRateLimit(ctx context.Context, windowMS, maxHits int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.windowMS = windowMS
	s.settings.hasWindow = true
	s.settings.maxHits = maxHits
	s.settings.hasMaxHits = true
	return nil
}
