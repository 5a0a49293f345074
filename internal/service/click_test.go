package service

import (
	"context"
	"testing"
	"time"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"

	"github.com/stretchr/testify/require"
)

func newClickFixture(t *testing.T) (*ClickService, *store.MemoryStore, *time.Time) {
	t.Helper()

	now := time.Now()
	mem := store.NewMemoryStore().WithClock(func() time.Time { return now })

	svc := NewClickService(mem, NewRewardCalculatorWithRoll(noCrit), notify.NopBroadcaster{})
	svc.now = func() time.Time { return now }

	require.NoError(t, mem.CreatePlayer(context.Background(), &model.Player{
		ID: "p1", Username: "alice", Gold: 1000, Level: 1,
		CreatedAt: now, LastLogin: now,
	}))
	return svc, mem, &now
}

func TestClickCreditsRewardAndStreak(t *testing.T) {
	svc, mem, now := newClickFixture(t)
	ctx := context.Background()

	// Generous limits so every click below is admitted.
	require.NoError(t, mem.SetCooldown(ctx, 0))
	require.NoError(t, mem.SetRateLimit(ctx, 1000, 100))

	res, err := svc.Click(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(10), res.Reward)
	require.Equal(t, int64(1010), res.Gold)
	require.Equal(t, 1, res.Combo)
	require.Equal(t, int64(1), res.TotalClicks)
	require.False(t, res.Critical)

	// The second click lands inside the streak window: combo 1 adds 2.
	*now = now.Add(time.Second)
	res, err = svc.Click(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(12), res.Reward)
	require.Equal(t, 2, res.Combo)
	require.Equal(t, int64(1022), res.Gold)

	// Gold and the leaderboard score never diverge.
	board, err := mem.TopN(ctx, store.BoardGold, 1)
	require.NoError(t, err)
	require.Equal(t, res.Gold, board[0].Score)
}

func TestClickStreakExpires(t *testing.T) {
	svc, mem, now := newClickFixture(t)
	ctx := context.Background()

	require.NoError(t, mem.SetCooldown(ctx, 0))
	require.NoError(t, mem.SetRateLimit(ctx, 1000, 100))

	for i := 0; i < 3; i++ {
		_, err := svc.Click(ctx, "p1")
		require.NoError(t, err)
		*now = now.Add(time.Second)
	}

	// More than ten seconds of silence restarts the streak.
	*now = now.Add(11 * time.Second)
	res, err := svc.Click(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, res.Combo)
	require.Equal(t, int64(10), res.Reward)
}

func TestClickRateLimitReject(t *testing.T) {
	svc, mem, _ := newClickFixture(t)
	ctx := context.Background()

	require.NoError(t, mem.SetCooldown(ctx, 0))
	require.NoError(t, mem.SetRateLimit(ctx, 1000, 2))

	for i := 0; i < 2; i++ {
		_, err := svc.Click(ctx, "p1")
		require.NoError(t, err)
	}

	_, err := svc.Click(ctx, "p1")
	var throttled *ThrottledError
	require.ErrorAs(t, err, &throttled)
	require.Equal(t, ThrottleRateLimit, throttled.Reason)
	require.Equal(t, int64(1000), throttled.Settings.WindowMS)
	require.Positive(t, throttled.RetryAfter)
}

func TestCooldownRejectStillConsumesWindowSlot(t *testing.T) {
	svc, mem, now := newClickFixture(t)
	ctx := context.Background()

	require.NoError(t, mem.SetCooldown(ctx, 500))
	require.NoError(t, mem.SetRateLimit(ctx, 1000, 2))

	_, err := svc.Click(ctx, "p1")
	require.NoError(t, err)

	// Inside the cooldown: rejected by the cooldown gate, but the window
	// slot taken first stays consumed.
	*now = now.Add(100 * time.Millisecond)
	_, err = svc.Click(ctx, "p1")
	var throttled *ThrottledError
	require.ErrorAs(t, err, &throttled)
	require.Equal(t, ThrottleCooldown, throttled.Reason)

	// Past the cooldown but still inside the window: the two consumed
	// slots fill the window, so the rate gate rejects even though the
	// cooldown gate would now admit.
	*now = now.Add(500 * time.Millisecond)
	_, err = svc.Click(ctx, "p1")
	require.ErrorAs(t, err, &throttled)
	require.Equal(t, ThrottleRateLimit, throttled.Reason)
}

func TestClickUnknownPlayer(t *testing.T) {
	svc, _, _ := newClickFixture(t)

	_, err := svc.Click(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrPlayerNotFound)
}

func TestClickAppendsHistoryEvent(t *testing.T) {
	svc, mem, _ := newClickFixture(t)
	ctx := context.Background()

	require.NoError(t, mem.SetCooldown(ctx, 0))
	require.NoError(t, mem.SetRateLimit(ctx, 1000, 100))

	_, err := svc.Click(ctx, "p1")
	require.NoError(t, err)

	events, err := mem.EventsSince(ctx, store.StreamClicks, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "p1", events[0].Values["player_id"])
}
