package local

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounceWindow is the idle period after the most recent mutation
// before a snapshot is persisted.
const DefaultDebounceWindow = 500 * time.Millisecond

// snapshotter owns the single pending-save slot. Scheduling cancels any
// pending timer and restarts the window, so a burst of mutations collapses
// into one save taken after the burst goes quiet. Save failures are logged
// and swallowed: losing the persisted copy must not crash a working
// in-memory session.
type snapshotter struct {
	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
	save   func() error
	logger *slog.Logger
}

func newSnapshotter(window time.Duration, save func() error, logger *slog.Logger) *snapshotter {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &snapshotter{window: window, save: save, logger: logger}
}

// Schedule arms the debounce timer, superseding any pending save.
func (sn *snapshotter) Schedule() {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	if sn.timer != nil {
		sn.timer.Stop()
	}
	sn.timer = time.AfterFunc(sn.window, func() {
		if err := sn.save(); err != nil {
			sn.logger.Warn("snapshot save failed", slog.String("error", err.Error()))
		}
	})
}

// Flush cancels any pending timer and saves synchronously.
func (sn *snapshotter) Flush() error {
	sn.mu.Lock()
	if sn.timer != nil {
		sn.timer.Stop()
		sn.timer = nil
	}
	sn.mu.Unlock()
	return sn.save()
}

// Stop cancels any pending save without persisting.
func (sn *snapshotter) Stop() {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	if sn.timer != nil {
		sn.timer.Stop()
		sn.timer = nil
	}
}
