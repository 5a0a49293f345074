package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"
)

// comboTTL is the streak validity window: a click more than this long
// after the previous one restarts the streak at zero.
const comboTTL = 10 * time.Second

// ThrottleReason distinguishes the two click gates.
type ThrottleReason string

const (
	ThrottleRateLimit ThrottleReason = "rate_limit"
	ThrottleCooldown  ThrottleReason = "cooldown"
)

// ThrottledError reports a rejected click and the retry hint for the
// client. It carries the settings in effect at decision time so the
// response can echo them.
type ThrottledError struct {
	Reason     ThrottleReason
	RetryAfter time.Duration
	Settings   model.ClickSettings
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("click throttled (%s), retry in %dms", e.Reason, e.RetryAfter.Milliseconds())
}

// ClickResult is the payload of an accepted click.
type ClickResult struct {
	Reward      int64 `json:"reward"`
	Gold        int64 `json:"gold"`
	Combo       int   `json:"combo"`
	Critical    bool  `json:"critical"`
	TotalClicks int64 `json:"total_clicks"`
	CooldownMS  int64 `json:"cooldown_ms"`
	WindowMS    int64 `json:"rate_limit_window_ms"`
	MaxHits     int64 `json:"rate_limit_max_hits"`
}

// ClickService runs the full click pipeline: throttle gates, reward
// computation, the atomic reward transaction and the follow-up
// best-effort history and broadcast steps.
type ClickService struct {
	store    store.Store
	rewards  *RewardCalculator
	notifier notify.Broadcaster
	now      func() time.Time
}

// NewClickService wires the click pipeline.
func NewClickService(st store.Store, rewards *RewardCalculator, notifier notify.Broadcaster) *ClickService {
	return &ClickService{
		store:    st,
		rewards:  rewards,
		notifier: notifier,
		now:      time.Now,
	}
}

// Click processes one click action for a player.
func (s *ClickService) Click(ctx context.Context, playerID string) (*ClickResult, error) {
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	// Settings are runtime-mutable; every admission reads the live
	// values, never a cached copy.
	settings, err := s.store.ClickSettings(ctx)
	if err != nil {
		return nil, err
	}

	admitted, retryAfter, err := s.store.TakeRateSlot(ctx, playerID, s.now(),
		time.Duration(settings.WindowMS)*time.Millisecond, settings.MaxHits)
	if err != nil {
		return nil, err
	}
	if !admitted {
		return nil, &ThrottledError{Reason: ThrottleRateLimit, RetryAfter: retryAfter, Settings: settings}
	}

	// The window slot just taken stays consumed even if the cooldown
	// gate rejects below: a cooldown-rejected click still counts against
	// the rate window.
	acquired, remaining, err := s.store.AcquireCooldown(ctx, playerID,
		time.Duration(settings.CooldownMS)*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, &ThrottledError{Reason: ThrottleCooldown, RetryAfter: remaining, Settings: settings}
	}

	combo, err := s.store.Combo(ctx, playerID)
	if err != nil {
		return nil, err
	}

	reward, critical := s.rewards.Compute(combo)

	gold, totalClicks, err := s.store.ApplyClickReward(ctx, playerID, reward)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetCombo(ctx, playerID, combo+1, comboTTL); err != nil {
		log.Printf("[ClickService] failed to refresh combo for %s: %v", playerID, err)
	}

	// History is best-effort: a failed append never rolls back the
	// reward it records.
	if err := s.store.AppendClickEvent(ctx, model.ClickEvent{
		PlayerID:  playerID,
		Reward:    reward,
		Combo:     combo + 1,
		Critical:  critical,
		Timestamp: s.now(),
	}); err != nil {
		log.Printf("[ClickService] history append failed for %s: %v", playerID, err)
	}

	s.notifier.Publish(notify.EventLeaderboardUpdate, nil)

	return &ClickResult{
		Reward:      reward,
		Gold:        gold,
		Combo:       combo + 1,
		Critical:    critical,
		TotalClicks: totalClicks,
		CooldownMS:  settings.CooldownMS,
		WindowMS:    settings.WindowMS,
		MaxHits:     settings.MaxHits,
	}, nil
}
