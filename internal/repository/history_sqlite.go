package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"goldrush-game-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteHistoryArchive implements HistoryArchive using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteHistoryArchive struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteHistoryArchive opens (or creates) the archive database.
// dbPath is the path to the SQLite database file (e.g., "./data/history.db")
func NewSQLiteHistoryArchive(dbPath string) (*SQLiteHistoryArchive, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteHistoryArchive] Initialized with database: %s", dbPath)
	return &SQLiteHistoryArchive{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS history_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stream TEXT NOT NULL,
		event_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		archived_at DATETIME NOT NULL DEFAULT (datetime('now')),
		UNIQUE(stream, event_id)
	);
	CREATE INDEX IF NOT EXISTS idx_stream ON history_events(stream);
	`
	_, err := db.Exec(query)
	return err
}

// SaveEvents appends a batch of stream events inside one transaction.
func (a *SQLiteHistoryArchive) SaveEvents(ctx context.Context, stream string, events []model.StreamEvent) error {
	if len(events) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO history_events (stream, event_id, payload)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		payload, err := json.Marshal(ev.Values)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, stream, ev.ID, string(payload)); err != nil {
			return fmt.Errorf("failed to archive event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LastEventID returns the newest archived event ID for a stream.
func (a *SQLiteHistoryArchive) LastEventID(ctx context.Context, stream string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var eventID string
	err := a.db.QueryRowContext(ctx, `
		SELECT event_id FROM history_events
		WHERE stream = ?
		ORDER BY id DESC LIMIT 1`, stream).Scan(&eventID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read last event ID: %w", err)
	}
	return eventID, nil
}

// Stats returns per-stream archived event counts.
func (a *SQLiteHistoryArchive) Stats(ctx context.Context) (map[string]int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.QueryContext(ctx, `
		SELECT stream, COUNT(*) FROM history_events GROUP BY stream`)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var stream string
		var count int64
		if err := rows.Scan(&stream, &count); err != nil {
			return nil, err
		}
		stats[stream] = count
	}
	return stats, rows.Err()
}

// Close closes the archive connection.
func (a *SQLiteHistoryArchive) Close() error {
	return a.db.Close()
}
