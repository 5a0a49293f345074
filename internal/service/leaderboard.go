package service

import (
	"context"
	"errors"

	"goldrush-game-api/internal/model"
	"goldrush-game-api/internal/store"
)

// ErrUnknownBoard rejects leaderboard names outside gold/clicks.
var ErrUnknownBoard = errors.New("unknown leaderboard")

// DefaultLeaderboardLimit applies when the caller sends no limit.
const DefaultLeaderboardLimit = 10

// LeaderboardService answers ranked queries over the score indexes
// maintained by the economy transactions.
type LeaderboardService struct {
	store store.Store
}

// NewLeaderboardService wires the leaderboard reader.
func NewLeaderboardService(st store.Store) *LeaderboardService {
	return &LeaderboardService{store: st}
}

// TopN returns up to limit entries in strictly descending score order
// with contiguous 1-based ranks, usernames filled in.
func (s *LeaderboardService) TopN(ctx context.Context, board string, limit int64) ([]model.RankEntry, error) {
	if board != store.BoardGold && board != store.BoardClicks {
		return nil, ErrUnknownBoard
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries, err := s.store.TopN(ctx, board, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		p, err := s.store.GetPlayer(ctx, entries[i].PlayerID)
		if err != nil {
			// An index entry without an account record should not hide
			// the rest of the board.
			continue
		}
		entries[i].Username = p.Username
	}
	return entries, nil
}
