package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// sweepInterval matches spec.md §4.1: cleanup_stale_sessions runs at
// startup and every 5 minutes thereafter.
const sweepInterval = 5 * time.Minute

// StaleSweeper periodically reconciles sessions stuck in status=running
// past their type's inactivity threshold — the disaster-recovery path
// named in spec.md §5.
type StaleSweeper struct {
	store *store.Store
}

// NewStaleSweeper builds a sweeper bound to a store.
func NewStaleSweeper(s *store.Store) *StaleSweeper {
	return &StaleSweeper{store: s}
}

// Run sweeps once immediately, then every sweepInterval, until ctx is
// cancelled. It is meant to be launched as a background goroutine from the
// process entrypoint.
func (w *StaleSweeper) Run(ctx context.Context) {
	w.sweepOnce(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *StaleSweeper) sweepOnce(ctx context.Context) {
	ids, err := w.store.CleanupStaleSessions(ctx)
	if err != nil {
		slog.Error("orchestrator: stale session sweep failed", "error", err)
		return
	}
	if len(ids) > 0 {
		slog.Info("orchestrator: swept stale sessions", "count", len(ids), "session_ids", ids)
	}
}
