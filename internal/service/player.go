package service

import (
	"context"
	"fmt"
	"time"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/store"
	"goldrush-game-api/pkg/uid"
)

// PlayerService handles the name-based account upsert and profile reads.
type PlayerService struct {
	store        store.Store
	notifier     notify.Broadcaster
	startingGold int64
}

// NewPlayerService wires account handling. startingGold seeds new
// accounts and their leaderboard entries.
func NewPlayerService(st store.Store, notifier notify.Broadcaster, startingGold int64) *PlayerService {
	return &PlayerService{store: st, notifier: notifier, startingGold: startingGold}
}

// Login resolves a username to a player, creating the account on first
// login. Returns the player and whether it was just created.
func (s *PlayerService) Login(ctx context.Context, username string) (*model.Player, bool, error) {
	existing, err := s.store.FindPlayerByUsername(ctx, username)
	if err == nil {
		if err := s.store.TouchLastLogin(ctx, existing.ID, time.Now()); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != store.ErrPlayerNotFound {
		return nil, false, err
	}

	now := time.Now()
	p := &model.Player{
		ID:        uid.NewTimeID(),
		Username:  username,
		Gold:      s.startingGold,
		Level:     1,
		CreatedAt: now,
		LastLogin: now,
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return nil, false, err
	}

	s.notifier.Publish(notify.EventPlayerUpdate, map[string]string{
		"msg": fmt.Sprintf("%s joined the game", username),
	})

	return p, true, nil
}

// Profile assembles the full player view: account, inventory, ranks,
// lifetime clicks and current streak.
func (s *PlayerService) Profile(ctx context.Context, playerID string) (*model.Profile, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	inventory, err := s.store.Inventory(ctx, playerID)
	if err != nil {
		return nil, err
	}
	goldRank, clickRank, err := s.store.PlayerRanks(ctx, playerID)
	if err != nil {
		return nil, err
	}
	totalClicks, err := s.store.TotalClicks(ctx, playerID)
	if err != nil {
		return nil, err
	}
	combo, err := s.store.Combo(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		Player:       *p,
		Inventory:    inventory,
		GoldRank:     goldRank,
		ClickRank:    clickRank,
		TotalClicks:  totalClicks,
		CurrentCombo: combo,
	}, nil
}
