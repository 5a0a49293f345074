package model

import "time"

// Player is the account record. The economy engine owns the gold field
// exclusively; level and exp belong to the account side and are only
// carried through.
type Player struct {
	ID        string    `json:"player_id"`
	Username  string    `json:"username"`
	Gold      int64     `json:"gold"`
	Level     int       `json:"level"`
	Exp       int64     `json:"exp"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

// Profile is the full player view returned by GET /api/player/{id}:
// the account record plus inventory, leaderboard positions and streak
// state. Ranks are 1-based; 0 means unranked.
type Profile struct {
	Player
	Inventory    []InventoryItem `json:"inventory"`
	GoldRank     int64           `json:"gold_rank"`
	ClickRank    int64           `json:"click_rank"`
	TotalClicks  int64           `json:"total_clicks"`
	CurrentCombo int             `json:"current_combo"`
}

// RankEntry is one row of a leaderboard query.
type RankEntry struct {
	Rank     int64  `json:"rank"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}
