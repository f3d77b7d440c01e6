package service

import (
	"context"
	"sync"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/port"
	"github.com/catatuang/catatuang-go/internal/report"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/reports")

// ReportService derives dashboard state from the user's collections.
// Live subscribers get a full recompute on every collection change: each
// stream updates independently and the derived state depends only on the
// latest snapshot of each, so recomputation is idempotent and
// order-insensitive.
type ReportService struct {
	transactions port.TransactionStore
	settings     port.SettingsStore
	watcher      port.Watcher
	cache        port.Cache[domain.DerivedState]
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(
	transactions port.TransactionStore,
	settings port.SettingsStore,
	watcher port.Watcher,
	cache port.Cache[domain.DerivedState],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		transactions: transactions,
		settings:     settings,
		watcher:      watcher,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Recompute derives the full dashboard state from a snapshot. Pure: same
// snapshot and clock, same result.
func (s *ReportService) Recompute(snap domain.Snapshot) domain.DerivedState {
	s.metrics.IncrRecompute()
	return report.Derive(snap, s.now())
}

// fetchSnapshot loads all three collections concurrently.
func (s *ReportService) fetchSnapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.fetchSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txns, err := s.transactions.ListTransactions(gctx, userID)
		if err != nil {
			return err
		}
		snap.Transactions = txns
		return nil
	})
	g.Go(func() error {
		cats, err := s.settings.ListCategories(gctx, userID)
		if err != nil {
			return err
		}
		snap.Categories = cats
		return nil
	})
	g.Go(func() error {
		budgets, err := s.settings.ListBudgets(gctx, userID)
		if err != nil {
			return err
		}
		snap.Budgets = budgets
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("firestore")
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Dashboard serves the one-shot dashboard query, cached briefly per user.
func (s *ReportService) Dashboard(ctx context.Context, userID string) (*domain.DerivedState, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Dashboard")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if state, ok := s.cache.Get(userID); ok {
		s.metrics.IncrCacheHit("dashboard")
		return &state, nil
	}
	s.metrics.IncrCacheMiss("dashboard")

	snap, err := s.fetchSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := s.Recompute(snap)
	s.cache.Set(userID, state)
	return &state, nil
}

// Trend serves the trend series for the month selected by offset
// (0 = current month, negative = past months).
func (s *ReportService) Trend(ctx context.Context, userID string, monthOffset int) ([]domain.TrendPoint, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Trend")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("month.offset", monthOffset),
	)

	txns, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("firestore")
		return nil, err
	}

	filter := report.Resolve(report.Spec{
		Mode:        report.ModeMonth,
		MonthOffset: monthOffset,
		Type:        report.TypeAll,
	}, s.now())

	return report.ComputeTrend(filter.Apply(txns)), nil
}

// Subscribe streams the user's derived state. The first element is built
// from a fresh full snapshot; afterwards every collection change reloads
// that collection and pushes a complete recompute. The stream closes when
// ctx is cancelled. Slow consumers miss intermediate states but always
// receive the latest one.
func (s *ReportService) Subscribe(ctx context.Context, userID string) (<-chan domain.DerivedState, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Subscribe")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	snap, err := s.fetchSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.watcher.Watch(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.DerivedState, 1)
	sub := &subscription{svc: s, userID: userID, snap: snap, out: out}

	s.metrics.StreamClientConnected()
	sub.push(ctx)

	go func() {
		defer close(out)
		defer s.metrics.StreamClientDisconnected()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				sub.apply(ctx, ev)
			}
		}
	}()

	return out, nil
}

// subscription is the per-subscriber state: the latest snapshot of each
// collection, guarded by a mutex so watcher deliveries serialize.
type subscription struct {
	svc    *ReportService
	userID string
	out    chan domain.DerivedState

	mu   sync.Mutex
	snap domain.Snapshot
}

// apply reloads the changed collection, swaps it into the snapshot, and
// pushes a full recompute. A failed reload keeps the previous snapshot;
// the next event retries implicitly.
func (sub *subscription) apply(ctx context.Context, ev domain.ChangeEvent) {
	s := sub.svc
	s.metrics.IncrSnapshot(ev.Collection)

	sub.mu.Lock()
	defer sub.mu.Unlock()

	var err error
	switch ev.Collection {
	case domain.CollectionTransactions:
		sub.snap.Transactions, err = s.transactions.ListTransactions(ctx, sub.userID)
	case domain.CollectionCategories:
		sub.snap.Categories, err = s.settings.ListCategories(ctx, sub.userID)
	case domain.CollectionBudgets:
		sub.snap.Budgets, err = s.settings.ListBudgets(ctx, sub.userID)
	default:
		s.logger.Warn("report: unknown collection in change event",
			zap.String("collection", ev.Collection),
		)
		return
	}
	if err != nil {
		s.logger.Warn("report: failed to reload collection",
			zap.String("user_id", sub.userID),
			zap.String("collection", ev.Collection),
			zap.Error(err),
		)
		return
	}

	// Any change invalidates the one-shot dashboard cache too.
	s.cache.Delete(sub.userID)
	sub.push(ctx)
}

// push recomputes from the current snapshot and delivers the state,
// replacing an undelivered previous state if the consumer is slow.
func (sub *subscription) push(ctx context.Context) {
	state := sub.svc.Recompute(sub.snap)

	for {
		select {
		case sub.out <- state:
			return
		case <-ctx.Done():
			return
		default:
		}
		select {
		case <-sub.out:
		default:
		}
	}
}
