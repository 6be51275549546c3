package worker

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// DefaultPruneInterval is how often the retention sweep runs
const DefaultPruneInterval = time.Minute

// Pruner removes expired records older than the retention window
type Pruner interface {
	Prune(ctx context.Context, now time.Time) model.PruneResult
}

// PruneWorker runs the retention sweep of the event bus in the background
//
// Architecture assumptions:
// - Single process owns the bus (no distributed locking)
// - The sweep itself is idempotent, so a missed tick is harmless
type PruneWorker struct {
	pruner   Pruner
	interval time.Duration
	clock    func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

type PruneOption func(*PruneWorker)

// WithPruneClock sets the time source passed to each sweep
func WithPruneClock(clock func() time.Time) PruneOption {
	return func(w *PruneWorker) {
		w.clock = clock
	}
}

// NewPruneWorker creates a worker that sweeps pruner every interval. A
// non-positive interval falls back to DefaultPruneInterval.
func NewPruneWorker(pruner Pruner, interval time.Duration, opts ...PruneOption) *PruneWorker {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	w := &PruneWorker{
		pruner:   pruner,
		interval: interval,
		clock:    func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the sweep loop in a background goroutine. The first sweep
// runs immediately. Starting twice, or after Stop, does nothing.
func (w *PruneWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return nil
	}
	w.started = true

	logging.From(ctx).Info("prune worker starting", "interval", w.interval.String())
	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for the running sweep to end.
// It may be called before Start and any number of times.
func (w *PruneWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.stopCh)
		logging.Default().Info("prune worker stopping")
	}
	started := w.started
	w.mu.Unlock()

	if started {
		<-w.doneCh
	}
	logging.Default().Info("prune worker stopped")
}

func (w *PruneWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("prune worker context cancelled")
			return
		}
	}
}

func (w *PruneWorker) sweep(ctx context.Context) {
	started := time.Now()
	result := w.pruner.Prune(ctx, w.clock())
	logging.From(ctx).Debug("prune sweep finished",
		"events", result.Events,
		"memories", result.Memories,
		"duration", time.Since(started).String())
}
