package repository

import (
	"context"

	"goldrush-game-api/internal/model"
)

// HistoryArchive persists history events beyond the bounded in-store
// streams, so reward and bid records survive stream trimming. Writes are
// idempotent per (stream, event ID): re-archiving an event is a no-op.
type HistoryArchive interface {
	// SaveEvents appends a batch of stream events.
	SaveEvents(ctx context.Context, stream string, events []model.StreamEvent) error

	// LastEventID returns the newest archived event ID for a stream, or
	// an empty string when nothing has been archived yet.
	LastEventID(ctx context.Context, stream string) (string, error)

	// Stats returns per-stream archived event counts.
	Stats(ctx context.Context) (map[string]int64, error)

	// Close closes the archive connection.
	Close() error
}
