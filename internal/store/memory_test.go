package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"goldrush-game-api/internal/model"

	"github.com/stretchr/testify/require"
)

func newTestPlayer(id, name string, gold int64) *model.Player {
	now := time.Now()
	return &model.Player{
		ID:        id,
		Username:  name,
		Gold:      gold,
		Level:     1,
		CreatedAt: now,
		LastLogin: now,
	}
}

func seedSword(t *testing.T, s *MemoryStore, stock int64) {
	t.Helper()
	err := s.SeedItems(context.Background(), []model.ItemDefinition{
		{ID: "sword_bronze", Name: "Bronze Sword", Price: 100, Attributes: map[string]int64{"damage": 10}},
	}, stock)
	require.NoError(t, err)
}

func TestCreateAndFindPlayer(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p1", "alice", 1000)))

	found, err := s.FindPlayerByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "p1", found.ID)
	require.Equal(t, int64(1000), found.Gold)

	_, err = s.FindPlayerByUsername(ctx, "nobody")
	require.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = s.GetPlayer(ctx, "ghost")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestApplyClickRewardSyncsBothBoards(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p1", "alice", 1000)))

	gold, clicks, err := s.ApplyClickReward(ctx, "p1", 25)
	require.NoError(t, err)
	require.Equal(t, int64(1025), gold)
	require.Equal(t, int64(1), clicks)

	goldBoard, err := s.TopN(ctx, BoardGold, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1025), goldBoard[0].Score)

	clickBoard, err := s.TopN(ctx, BoardClicks, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), clickBoard[0].Score)
}

func TestPurchaseRejectionsLeaveStateUntouched(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p1", "alice", 150)))
	seedSword(t, s, 1)

	// More units than stock.
	_, _, err := s.PurchaseItem(ctx, "p1", "sword_bronze", 2)
	require.ErrorIs(t, err, ErrOutOfStock)

	// Can afford one but asks for a price above the balance.
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p2", "bob", 50)))
	_, _, err = s.PurchaseItem(ctx, "p2", "sword_bronze", 1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Unknown buyer is not-found, not a funds failure.
	_, _, err = s.PurchaseItem(ctx, "ghost", "sword_bronze", 1)
	require.ErrorIs(t, err, ErrPlayerNotFound)

	// Neither rejection moved gold or stock.
	p1, err := s.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(150), p1.Gold)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), items[0].Stock)

	// The valid purchase goes through.
	cost, gold, err := s.PurchaseItem(ctx, "p1", "sword_bronze", 1)
	require.NoError(t, err)
	require.Equal(t, int64(100), cost)
	require.Equal(t, int64(50), gold)
}

func TestConcurrentPurchaseOfLastUnit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedSword(t, s, 1)

	const buyers = 16
	for i := 0; i < buyers; i++ {
		id := string(rune('a' + i))
		require.NoError(t, s.CreatePlayer(ctx, newTestPlayer(id, "buyer-"+id, 1000)))
	}

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := s.PurchaseItem(ctx, id, "sword_bronze", 1)
			results <- err
		}(string(rune('a' + i)))
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, ErrOutOfStock)
		}
	}
	require.Equal(t, 1, won)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), items[0].Stock)
}

func TestSeedItemsIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedSword(t, s, 5)
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p1", "alice", 1000)))
	_, _, err := s.PurchaseItem(ctx, "p1", "sword_bronze", 2)
	require.NoError(t, err)

	// Re-seeding must not restore the spent stock or duplicate the item.
	seedSword(t, s, 5)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].Stock)
}

func TestRemoveInventoryItem(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AppendInventory(ctx, "p1",
		model.InventoryItem{ItemID: "sword_bronze", Name: "Bronze Sword", UniqueID: "u1"},
		model.InventoryItem{ItemID: "sword_bronze", Name: "Bronze Sword", UniqueID: "u2"},
	))

	removed, err := s.RemoveInventoryItem(ctx, "p1", "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", removed.UniqueID)

	inv, err := s.Inventory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	require.Equal(t, "u2", inv[0].UniqueID)

	_, err = s.RemoveInventoryItem(ctx, "p1", "u1")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestPlaceBidRefundsPreviousBidderExactly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("seller", "sue", 0)))
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("b1", "bea", 100)))
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("b2", "ben", 100)))

	require.NoError(t, s.CreateAuction(ctx, &model.Auction{
		ID: "a1", SellerID: "seller", SellerName: "sue",
		ItemID: "sword_bronze", ItemName: "Bronze Sword", CurrentPrice: 50,
	}))

	// At or below the current price is rejected.
	_, err := s.PlaceBid(ctx, "a1", "b1", "bea", 50)
	require.ErrorIs(t, err, ErrBidTooLow)

	gold, err := s.PlaceBid(ctx, "a1", "b1", "bea", 60)
	require.NoError(t, err)
	require.Equal(t, int64(40), gold)

	// Outbidding refunds bea her own 60, debits ben 70.
	gold, err = s.PlaceBid(ctx, "a1", "b2", "ben", 70)
	require.NoError(t, err)
	require.Equal(t, int64(30), gold)

	bea, err := s.GetPlayer(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, int64(100), bea.Gold)

	a, err := s.GetAuction(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, int64(70), a.CurrentPrice)
	require.Equal(t, "b2", a.HighestBidderID)
}

func TestBuyoutDoesNotRefundStandingBid(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("seller", "sue", 0)))
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("bidder", "bea", 100)))
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("buyer", "ben", 200)))

	require.NoError(t, s.CreateAuction(ctx, &model.Auction{
		ID: "a1", SellerID: "seller", SellerName: "sue",
		ItemID: "sword_bronze", ItemName: "Bronze Sword", CurrentPrice: 50,
	}))

	_, err := s.PlaceBid(ctx, "a1", "bidder", "bea", 60)
	require.NoError(t, err)

	grant := model.InventoryItem{ItemID: "sword_bronze", Name: "Bronze Sword", UniqueID: "g1"}
	price, buyerGold, sellerGold, err := s.BuyoutAuction(ctx, "a1", "buyer", grant)
	require.NoError(t, err)
	require.Equal(t, int64(60), price)
	require.Equal(t, int64(140), buyerGold)
	require.Equal(t, int64(60), sellerGold)

	// The standing bidder's escrowed gold stays gone.
	bea, err := s.GetPlayer(ctx, "bidder")
	require.NoError(t, err)
	require.Equal(t, int64(40), bea.Gold)

	// Settled auction is gone.
	_, err = s.GetAuction(ctx, "a1")
	require.ErrorIs(t, err, ErrAuctionNotFound)

	inv, err := s.Inventory(ctx, "buyer")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	require.Equal(t, "g1", inv[0].UniqueID)
}

func TestListAuctionsKeepsCreationOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, s.CreateAuction(ctx, &model.Auction{ID: id, SellerID: "s", CurrentPrice: 10}))
	}
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("buyer", "ben", 100)))

	_, _, _, err := s.BuyoutAuction(ctx, "a2", "buyer", model.InventoryItem{UniqueID: "g"})
	require.NoError(t, err)

	auctions, err := s.ListAuctions(ctx)
	require.NoError(t, err)
	require.Len(t, auctions, 2)
	require.Equal(t, "a1", auctions[0].ID)
	require.Equal(t, "a3", auctions[1].ID)
}

func TestTopNOrderingAndTieBreak(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p1", "alice", 300)))
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p2", "bob", 500)))
	require.NoError(t, s.CreatePlayer(ctx, newTestPlayer("p3", "carl", 300)))

	entries, err := s.TopN(ctx, BoardGold, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "p2", entries[0].PlayerID)
	require.Equal(t, int64(1), entries[0].Rank)
	// Equal scores keep first-entry order.
	require.Equal(t, "p1", entries[1].PlayerID)
	require.Equal(t, int64(2), entries[1].Rank)

	goldRank, clickRank, err := s.PlayerRanks(ctx, "p3")
	require.NoError(t, err)
	require.Equal(t, int64(3), goldRank)
	require.NotZero(t, clickRank)
}

func TestTakeRateSlotSlidingWindow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	window := time.Second

	for i := 0; i < 3; i++ {
		admitted, _, err := s.TakeRateSlot(ctx, "p1", base.Add(time.Duration(i)*100*time.Millisecond), window, 3)
		require.NoError(t, err)
		require.True(t, admitted)
	}

	// Fourth hit inside the window is rejected with a retry hint.
	admitted, retry, err := s.TakeRateSlot(ctx, "p1", base.Add(300*time.Millisecond), window, 3)
	require.NoError(t, err)
	require.False(t, admitted)
	require.Equal(t, 700*time.Millisecond, retry)

	// Once the oldest entry slides out, the next hit is admitted.
	admitted, _, err = s.TakeRateSlot(ctx, "p1", base.Add(1100*time.Millisecond), window, 3)
	require.NoError(t, err)
	require.True(t, admitted)
}

func TestAcquireCooldown(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	acquired, _, err := s.AcquireCooldown(ctx, "p1", 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, remaining, err := s.AcquireCooldown(ctx, "p1", 500*time.Millisecond)
	require.NoError(t, err)
	require.False(t, acquired)
	require.Equal(t, 500*time.Millisecond, remaining)

	now = now.Add(501 * time.Millisecond)
	acquired, _, err = s.AcquireCooldown(ctx, "p1", 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestAcquireCooldownZeroAlwaysAdmits(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		acquired, _, err := s.AcquireCooldown(ctx, "p1", 0)
		require.NoError(t, err)
		require.True(t, acquired)
	}
}

func TestComboExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.SetCombo(ctx, "p1", 7, 10*time.Second))

	combo, err := s.Combo(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 7, combo)

	now = now.Add(10*time.Second + time.Millisecond)
	combo, err = s.Combo(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, combo)
}

func TestStreamTrimAndEventsSince(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < MaxStreamLength+10; i++ {
		require.NoError(t, s.AppendClickEvent(ctx, model.ClickEvent{
			PlayerID:  "p1",
			Reward:    10,
			Timestamp: time.Now(),
		}))
	}

	all, err := s.EventsSince(ctx, StreamClicks, "")
	require.NoError(t, err)
	require.Len(t, all, MaxStreamLength)

	// Reading past the high-water mark returns only the newer entries.
	tail, err := s.EventsSince(ctx, StreamClicks, all[len(all)-3].ID)
	require.NoError(t, err)
	require.Len(t, tail, 2)
}

func TestClickSettingsDefaultsAndOverrides(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	settings, err := s.ClickSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(DefaultCooldownMS), settings.CooldownMS)
	require.Equal(t, int64(DefaultWindowMS), settings.WindowMS)
	require.Equal(t, int64(DefaultMaxHits), settings.MaxHits)

	require.NoError(t, s.SetCooldown(ctx, 200))
	require.NoError(t, s.SetRateLimit(ctx, 2000, 5))

	settings, err = s.ClickSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(200), settings.CooldownMS)
	require.Equal(t, int64(2000), settings.WindowMS)
	require.Equal(t, int64(5), settings.MaxHits)
}
