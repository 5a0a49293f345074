package service

import (
	"context"
	"testing"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"

	"github.com/stretchr/testify/require"
)

func newShopFixture(t *testing.T) (*ShopService, *store.MemoryStore) {
	t.Helper()

	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.SeedItems(ctx, DefaultCatalog(), 5))
	require.NoError(t, mem.CreatePlayer(ctx, &model.Player{
		ID: "p1", Username: "alice", Gold: 1000, Level: 1,
	}))
	return NewShopService(mem, notify.NopBroadcaster{}), mem
}

func TestBuyGrantsDistinctInventoryItems(t *testing.T) {
	svc, mem := newShopFixture(t)
	ctx := context.Background()

	result, err := svc.Buy(ctx, "p1", "sword_bronze", 2)
	require.NoError(t, err)
	require.Equal(t, int64(200), result.Cost)
	require.Equal(t, int64(800), result.Gold)

	inv, err := mem.Inventory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, inv, 2)
	require.Equal(t, "sword_bronze", inv[0].ItemID)
	require.NotEqual(t, inv[0].UniqueID, inv[1].UniqueID)

	items, err := mem.ListItems(ctx)
	require.NoError(t, err)
	for _, item := range items {
		if item.ID == "sword_bronze" {
			require.Equal(t, int64(3), item.Stock)
		}
	}
}

func TestBuyDefaultsQuantityToOne(t *testing.T) {
	svc, mem := newShopFixture(t)
	ctx := context.Background()

	result, err := svc.Buy(ctx, "p1", "potion_health", 0)
	require.NoError(t, err)
	require.Equal(t, int64(50), result.Cost)

	inv, err := mem.Inventory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, inv, 1)
}

func TestBuyRejections(t *testing.T) {
	svc, mem := newShopFixture(t)
	ctx := context.Background()

	_, err := svc.Buy(ctx, "p1", "no_such_item", 1)
	require.ErrorIs(t, err, store.ErrItemNotFound)

	_, err = svc.Buy(ctx, "ghost", "sword_bronze", 1)
	require.ErrorIs(t, err, store.ErrPlayerNotFound)

	_, err = svc.Buy(ctx, "p1", "sword_bronze", 6)
	require.ErrorIs(t, err, store.ErrOutOfStock)

	_, err = svc.Buy(ctx, "p1", "sword_gold", 1)
	require.ErrorIs(t, err, store.ErrInsufficientFunds)

	// No rejection touched gold or granted anything.
	p, err := mem.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(1000), p.Gold)

	inv, err := mem.Inventory(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, inv)
}
