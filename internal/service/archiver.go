package service

import (
	"context"
	"log"
	"sync"
	"time"

	"goldrush-game-api/internal/repository"
	"goldrush-game-api/internal/store"
)

// ArchiverConfig holds configuration for the history archiver.
type ArchiverConfig struct {
	// FlushInterval is how often new stream events are copied into the
	// archive. Default: 15 seconds.
	FlushInterval time.Duration
}

// HistoryArchiver periodically copies history stream events into the
// durable archive. The in-store streams keep only the most recent 1000
// entries; the archive keeps everything. Archiving is strictly
// best-effort: a failed flush is logged and retried on the next tick,
// and never affects the transactions that produced the events.
type HistoryArchiver struct {
	history  store.HistoryStore
	archive  repository.HistoryArchive
	config   ArchiverConfig
	streams  []string
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewHistoryArchiver creates an archiver for the click and bid streams.
func NewHistoryArchiver(history store.HistoryStore, archive repository.HistoryArchive, config ArchiverConfig) *HistoryArchiver {
	if config.FlushInterval == 0 {
		config.FlushInterval = 15 * time.Second
	}
	return &HistoryArchiver{
		history: history,
		archive: archive,
		config:  config,
		streams: []string{store.StreamClicks, store.StreamBids},
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the archive loop.
func (a *HistoryArchiver) Start() {
	a.ticker = time.NewTicker(a.config.FlushInterval)
	log.Printf("[HistoryArchiver] Started - Interval: %v", a.config.FlushInterval)
	go a.run()
}

func (a *HistoryArchiver) run() {
	defer close(a.doneCh)
	for {
		select {
		case <-a.ticker.C:
			a.flush()
		case <-a.stopCh:
			// Final drain so a clean shutdown loses nothing.
			a.flush()
			log.Printf("[HistoryArchiver] Stopped")
			return
		}
	}
}

// flush copies every event newer than the archive's high-water mark.
func (a *HistoryArchiver) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stream := range a.streams {
		lastID, err := a.archive.LastEventID(ctx, stream)
		if err != nil {
			log.Printf("[HistoryArchiver] failed to read high-water mark for %s: %v", stream, err)
			continue
		}
		events, err := a.history.EventsSince(ctx, stream, lastID)
		if err != nil {
			log.Printf("[HistoryArchiver] failed to read %s: %v", stream, err)
			continue
		}
		if len(events) == 0 {
			continue
		}
		if err := a.archive.SaveEvents(ctx, stream, events); err != nil {
			log.Printf("[HistoryArchiver] failed to archive %d events from %s: %v", len(events), stream, err)
			continue
		}
		log.Printf("[HistoryArchiver] Archived %d events from %s", len(events), stream)
	}
}

// Stop halts the loop after a final drain and waits for it to finish.
func (a *HistoryArchiver) Stop() {
	a.stopOnce.Do(func() {
		if a.ticker != nil {
			a.ticker.Stop()
		}
		close(a.stopCh)
		<-a.doneCh
	})
}
