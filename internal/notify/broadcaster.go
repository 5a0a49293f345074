package notify

// Broadcaster publishes state-change events to connected clients.
// Publication is fire-and-forget: a broadcast may arrive after,
// alongside, or (on failure) never relative to the transaction it
// reports. Clients treat events as hints to re-fetch state, never as
// the state itself.
type Broadcaster interface {
	Publish(event string, payload interface{})
}

// Event names broadcast by the engine.
const (
	EventLeaderboardUpdate = "leaderboard_update"
	EventAuctionUpdate     = "auction_update"
	EventConfigUpdate      = "config_update"
	EventPlayerUpdate      = "player_update"
)

// NopBroadcaster discards every event. Used in tests and when the
// websocket hub is disabled.
type NopBroadcaster struct{}

// Publish discards the event.
func (NopBroadcaster) Publish(string, interface{}) {}
