package model

// ClickSettings are the throttle parameters for the click action. They
// are runtime-mutable through the admin API and must be read fresh from
// the store on every admission decision, never cached across requests.
type ClickSettings struct {
	CooldownMS int64 `json:"cooldown_ms"`
	WindowMS   int64 `json:"window_ms"`
	MaxHits    int64 `json:"max_hits"`
}
