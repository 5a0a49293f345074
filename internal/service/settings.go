package service

import (
	"context"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"
)

// SettingsService manages the runtime throttle parameters. Every write
// broadcasts the full effective settings so connected game pages adjust
// immediately.
type SettingsService struct {
	store    store.Store
	notifier notify.Broadcaster
}

// NewSettingsService wires the settings manager.
func NewSettingsService(st store.Store, notifier notify.Broadcaster) *SettingsService {
	return &SettingsService{store: st, notifier: notifier}
}

// Get returns the effective click settings.
func (s *SettingsService) Get(ctx context.Context) (model.ClickSettings, error) {
	return s.store.ClickSettings(ctx)
}

// SetCooldown updates the cooldown. Negative values clamp to zero,
// which disables the cooldown gate.
func (s *SettingsService) SetCooldown(ctx context.Context, cooldownMS int64) (model.ClickSettings, error) {
	if cooldownMS < 0 {
		cooldownMS = 0
	}
	if err := s.store.SetCooldown(ctx, cooldownMS); err != nil {
		return model.ClickSettings{}, err
	}
	return s.broadcastSettings(ctx)
}

// SetRateLimit updates the sliding window. Non-positive inputs fall
// back to a sane floor rather than disabling the gate.
func (s *SettingsService) SetRateLimit(ctx context.Context, windowMS, maxHits int64) (model.ClickSettings, error) {
	if windowMS <= 0 {
		windowMS = store.DefaultWindowMS
	}
	if maxHits <= 0 {
		maxHits = 1
	}
	if err := s.store.SetRateLimit(ctx, windowMS, maxHits); err != nil {
		return model.ClickSettings{}, err
	}
	return s.broadcastSettings(ctx)
}

func (s *SettingsService) broadcastSettings(ctx context.Context) (model.ClickSettings, error) {
	settings, err := s.store.ClickSettings(ctx)
	if err != nil {
		return model.ClickSettings{}, err
	}
	s.notifier.Publish(notify.EventConfigUpdate, settings)
	return settings, nil
}
