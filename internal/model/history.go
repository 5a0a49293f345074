package model

import "time"

// ClickEvent is one entry of the click reward history stream.
type ClickEvent struct {
	PlayerID  string    `json:"player_id"`
	Reward    int64     `json:"reward"`
	Combo     int       `json:"combo"`
	Critical  bool      `json:"critical"`
	Timestamp time.Time `json:"timestamp"`
}

// BidEvent is one entry of the auction bid history stream.
type BidEvent struct {
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// StreamEvent is a raw history entry read back from a stream. IDs are
// monotonically increasing within a stream, so the archiver can resume
// from the last ID it persisted.
type StreamEvent struct {
	ID     string                 `json:"id"`
	Values map[string]interface{} `json:"values"`
}
