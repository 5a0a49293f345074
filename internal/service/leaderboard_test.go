package service

import (
	"context"
	"testing"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"

	"github.com/stretchr/testify/require"
)

func TestTopNHydratesUsernames(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewLeaderboardService(mem)
	ctx := context.Background()

	require.NoError(t, mem.CreatePlayer(ctx, &model.Player{ID: "p1", Username: "alice", Gold: 300, Level: 1}))
	require.NoError(t, mem.CreatePlayer(ctx, &model.Player{ID: "p2", Username: "bob", Gold: 500, Level: 1}))

	entries, err := svc.TopN(ctx, store.BoardGold, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "bob", entries[0].Username)
	require.Equal(t, int64(1), entries[0].Rank)
	require.Equal(t, "alice", entries[1].Username)
	require.Equal(t, int64(2), entries[1].Rank)
}

func TestTopNRejectsUnknownBoard(t *testing.T) {
	svc := NewLeaderboardService(store.NewMemoryStore())

	_, err := svc.TopN(context.Background(), "exp", 10)
	require.ErrorIs(t, err, ErrUnknownBoard)
}

func TestSettingsClampAndFallback(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewSettingsService(mem, notify.NopBroadcaster{})
	ctx := context.Background()

	settings, err := svc.SetCooldown(ctx, -10)
	require.NoError(t, err)
	require.Equal(t, int64(0), settings.CooldownMS)

	settings, err = svc.SetRateLimit(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(store.DefaultWindowMS), settings.WindowMS)
	require.Equal(t, int64(1), settings.MaxHits)

	settings, err = svc.SetRateLimit(ctx, 2000, 5)
	require.NoError(t, err)
	require.Equal(t, int64(2000), settings.WindowMS)
	require.Equal(t, int64(5), settings.MaxHits)
}
