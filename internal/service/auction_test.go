package service

import (
	"context"
	"testing"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"

	"github.com/stretchr/testify/require"
)

func newAuctionFixture(t *testing.T) (*AuctionService, *store.MemoryStore) {
	t.Helper()

	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.CreatePlayer(ctx, &model.Player{ID: "seller", Username: "sue", Gold: 100, Level: 1}))
	require.NoError(t, mem.CreatePlayer(ctx, &model.Player{ID: "bidder", Username: "bea", Gold: 100, Level: 1}))
	require.NoError(t, mem.CreatePlayer(ctx, &model.Player{ID: "buyer", Username: "ben", Gold: 200, Level: 1}))

	require.NoError(t, mem.AppendInventory(ctx, "seller", model.InventoryItem{
		ItemID: "sword_bronze", Name: "Bronze Sword", UniqueID: "u1",
	}))
	return NewAuctionService(mem, notify.NopBroadcaster{}), mem
}

func TestCreateMovesItemIntoEscrow(t *testing.T) {
	svc, mem := newAuctionFixture(t)
	ctx := context.Background()

	auction, err := svc.Create(ctx, "seller", "u1", 50)
	require.NoError(t, err)
	require.Equal(t, "sue", auction.SellerName)
	require.Equal(t, "Bronze Sword", auction.ItemName)
	require.Equal(t, int64(50), auction.CurrentPrice)
	require.Empty(t, auction.HighestBidderID)

	// The listed item left the seller's inventory.
	inv, err := mem.Inventory(ctx, "seller")
	require.NoError(t, err)
	require.Empty(t, inv)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, auction.ID, listed[0].ID)
}

func TestCreateUnknownItem(t *testing.T) {
	svc, _ := newAuctionFixture(t)

	_, err := svc.Create(context.Background(), "seller", "nope", 50)
	require.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestBidLifecycle(t *testing.T) {
	svc, mem := newAuctionFixture(t)
	ctx := context.Background()

	auction, err := svc.Create(ctx, "seller", "u1", 50)
	require.NoError(t, err)

	_, err = svc.Bid(ctx, auction.ID, "bidder", 40)
	require.ErrorIs(t, err, store.ErrBidTooLow)

	result, err := svc.Bid(ctx, auction.ID, "bidder", 60)
	require.NoError(t, err)
	require.Equal(t, int64(40), result.Gold)

	// A later lower bid is rejected without touching the standing one.
	_, err = svc.Bid(ctx, auction.ID, "buyer", 55)
	require.ErrorIs(t, err, store.ErrBidTooLow)

	current, err := mem.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(60), current.CurrentPrice)
	require.Equal(t, "bidder", current.HighestBidderID)
	require.Equal(t, "bea", current.HighestBidderName)

	// Bids land on the history stream.
	events, err := mem.EventsSince(ctx, store.StreamBids, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, auction.ID, events[0].Values["auction_id"])
}

func TestThirdPartyBuyoutLeavesBidderUnrefunded(t *testing.T) {
	svc, mem := newAuctionFixture(t)
	ctx := context.Background()

	auction, err := svc.Create(ctx, "seller", "u1", 50)
	require.NoError(t, err)

	_, err = svc.Bid(ctx, auction.ID, "bidder", 60)
	require.NoError(t, err)

	result, err := svc.Buyout(ctx, auction.ID, "buyer")
	require.NoError(t, err)
	require.Equal(t, int64(60), result.Price)
	require.Equal(t, "Bronze Sword", result.ItemName)
	require.Equal(t, int64(140), result.BuyerGold)
	require.Equal(t, int64(160), result.SellerGold)

	// The outbid player's 60 stays with the settled auction.
	bea, err := mem.GetPlayer(ctx, "bidder")
	require.NoError(t, err)
	require.Equal(t, int64(40), bea.Gold)

	// The buyer received a freshly minted copy of the escrowed item.
	inv, err := mem.Inventory(ctx, "buyer")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	require.Equal(t, "sword_bronze", inv[0].ItemID)
	require.NotEqual(t, "u1", inv[0].UniqueID)

	_, err = svc.Buyout(ctx, auction.ID, "buyer")
	require.ErrorIs(t, err, store.ErrAuctionNotFound)
}

func TestBuyoutInsufficientFunds(t *testing.T) {
	svc, mem := newAuctionFixture(t)
	ctx := context.Background()

	auction, err := svc.Create(ctx, "seller", "u1", 500)
	require.NoError(t, err)

	_, err = svc.Buyout(ctx, auction.ID, "buyer")
	require.ErrorIs(t, err, store.ErrInsufficientFunds)

	// The listing survives the failed settlement.
	_, err = mem.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
}
