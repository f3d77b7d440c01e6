package firestore

import (
	"context"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Watcher — change notifications, implements port.Watcher
// ============================================================

// watchCollections is polled in a fixed order so fingerprints line up
// between rounds.
var watchCollections = []string{
	domain.CollectionTransactions,
	domain.CollectionCategories,
	domain.CollectionBudgets,
}

// Watcher polls a user's collections and emits a ChangeEvent whenever a
// collection's fingerprint (count + max updateTime) moves. The REST API
// has no streaming listen surface, so polling is the change feed.
type Watcher struct {
	client   *Client
	interval time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher polling at the given interval.
func NewWatcher(client *Client, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// Watch starts a polling goroutine for one user. The returned channel is
// closed when ctx is cancelled. The first round establishes baselines and
// emits one event per collection so the subscriber starts from a full
// snapshot.
func (w *Watcher) Watch(ctx context.Context, userID string) (<-chan domain.ChangeEvent, error) {
	events := make(chan domain.ChangeEvent, len(watchCollections))

	go func() {
		defer close(events)

		seen := make(map[string]string, len(watchCollections))
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.poll(ctx, userID, seen, events)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll(ctx, userID, seen, events)
			}
		}
	}()

	return events, nil
}

// poll checks every collection once and pushes events for changed ones.
// A failed list leaves the previous fingerprint in place so the change
// is caught on the next round.
func (w *Watcher) poll(ctx context.Context, userID string, seen map[string]string, events chan<- domain.ChangeEvent) {
	for _, coll := range watchCollections {
		docs, err := w.client.listDocuments(ctx, userID, coll)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("watcher: poll failed",
				zap.String("user_id", userID),
				zap.String("collection", coll),
				zap.Error(err),
			)
			continue
		}

		fp := fingerprint(docs)
		if prev, ok := seen[coll]; ok && prev == fp {
			continue
		}
		seen[coll] = fp

		select {
		case events <- domain.ChangeEvent{UserID: userID, Collection: coll}:
		case <-ctx.Done():
			return
		}
	}
}
