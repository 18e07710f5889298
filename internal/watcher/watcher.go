// Package watcher turns periodic API snapshots into events.
//
// A Watcher polls only the resources that registered listeners depend on,
// diffs each fetch against the previous snapshot and dispatches the
// resulting events. At most one tick runs at a time; a tick that would
// overlap a running one is dropped.
package watcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/metrics"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/snapshot"
)

const (
	MinFetchInterval     = 10 * time.Second
	DefaultFetchInterval = 30 * time.Second
	DefaultRequestDelay  = 500 * time.Millisecond
)

// Options configures a Watcher. Zero values select the defaults.
type Options struct {
	FetchInterval time.Duration
	RequestDelay  time.Duration
	Metrics       *metrics.Metrics
}

type Watcher struct {
	fetcher      api.Fetcher
	cache        *snapshot.Cache
	registry     *events.Registry
	logger       *zap.Logger
	metrics      *metrics.Metrics
	requestDelay time.Duration

	ticking  atomic.Bool
	inflight sync.WaitGroup

	mu       sync.Mutex
	interval time.Duration
	running  bool
	ticker   *time.Ticker
	stop     chan struct{}
}

func New(fetcher api.Fetcher, opts Options, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	interval := opts.FetchInterval
	if interval == 0 {
		interval = DefaultFetchInterval
	}
	delay := opts.RequestDelay
	if delay <= 0 {
		delay = DefaultRequestDelay
	}

	return &Watcher{
		fetcher:      fetcher,
		cache:        snapshot.NewCache(),
		registry:     events.NewRegistry(logger, opts.Metrics),
		logger:       logger,
		metrics:      opts.Metrics,
		requestDelay: delay,
		interval:     clampInterval(interval),
	}
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinFetchInterval {
		return MinFetchInterval
	}
	return d
}

// SetAuthToken forwards the token to the fetcher. An empty token removes it.
func (w *Watcher) SetAuthToken(token string) {
	w.fetcher.SetAuthToken(token)
}

func (w *Watcher) FetchInterval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interval
}

// SetFetchInterval changes the polling interval, clamping it to
// MinFetchInterval, and returns the value in effect. A running timer is reset.
func (w *Watcher) SetFetchInterval(d time.Duration) time.Duration {
	d = clampInterval(d)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.interval = d
	if w.running {
		w.ticker.Reset(d)
	}
	w.logger.Debug("fetch interval set", zap.Duration("interval", d))
	return d
}

// Running reports whether the timer is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start runs one tick immediately and then one per interval until Stop is
// called or ctx is done. Calling Start on a running watcher does nothing.
// Ticks run under ctx, so Stop never interrupts one already in flight.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.ticker = time.NewTicker(w.interval)
	ticker, stop := w.ticker, w.stop
	interval := w.interval
	w.mu.Unlock()

	w.logger.Info("watcher started", zap.Duration("interval", interval))

	w.inflight.Add(1)
	go w.loop(ctx, ticker, stop)
	w.fire(ctx)
}

// Stop cancels the timer. It does not wait for a tick in flight; use Wait for that.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	w.ticker.Stop()
	close(w.stop)
	w.logger.Info("watcher stopped")
}

// Wait blocks until the timer loop has exited and no tick is in flight.
func (w *Watcher) Wait() {
	w.inflight.Wait()
}

func (w *Watcher) loop(ctx context.Context, ticker *time.Ticker, stop chan struct{}) {
	defer w.inflight.Done()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.stop == stop && w.running {
				w.running = false
				ticker.Stop()
				close(stop)
			}
			w.mu.Unlock()
			w.logger.Info("watcher context done")
			return

		case <-stop:
			return

		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			w.fire(ctx)
		}
	}
}

// fire starts a tick in the background. The tick is dropped inside Poll if
// another one is still running.
func (w *Watcher) fire(ctx context.Context) {
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		w.Poll(ctx)
	}()
}

// Poll runs a single tick and reports whether it ran. It returns false
// without fetching anything when another tick is in flight.
func (w *Watcher) Poll(ctx context.Context) bool {
	if !w.ticking.CompareAndSwap(false, true) {
		w.logger.Debug("tick already in flight, dropping")
		w.countTick("dropped")
		return false
	}
	defer w.ticking.Store(false)

	start := time.Now()
	demanded := w.registry.Demanded()

	fetched := 0
	for _, res := range snapshot.Resources {
		if !demanded[res] {
			w.cache.Clear(res)
			continue
		}

		if fetched > 0 && !w.sleep(ctx, w.requestDelay) {
			w.logger.Debug("tick cancelled between fetches", zap.Error(ctx.Err()))
			w.countTick("cancelled")
			return true
		}
		fetched++

		switch res {
		case snapshot.ResourceStream:
			w.pollStream(ctx)
		case snapshot.ResourceSchedule:
			w.pollSchedule(ctx)
		case snapshot.ResourceSubathons:
			w.pollSubathons(ctx)
		}
	}

	duration := time.Since(start)
	w.countTick("ok")
	if w.metrics != nil {
		w.metrics.TickDuration.Observe(duration.Seconds())
	}
	w.logger.Debug("tick complete",
		zap.Int("fetched", fetched),
		zap.Duration("duration", duration),
	)
	return true
}

func (w *Watcher) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (w *Watcher) countTick(status string) {
	if w.metrics != nil {
		w.metrics.TicksTotal.WithLabelValues(status).Inc()
	}
}

// Snapshot returns a copy of the last observed values.
func (w *Watcher) Snapshot() snapshot.View {
	return w.cache.View()
}

// On registers fn for kind. onErr may be nil. The returned func unregisters.
func (w *Watcher) On(kind events.Kind, fn events.Handler, onErr events.ErrorHandler) (events.ListenerID, func()) {
	return w.registry.On(kind, fn, onErr)
}

// Once registers a listener that runs at most once, on success or error.
func (w *Watcher) Once(kind events.Kind, fn events.Handler, onErr events.ErrorHandler) (events.ListenerID, func()) {
	return w.registry.Once(kind, fn, onErr)
}

func (w *Watcher) Off(kind events.Kind, id events.ListenerID) bool {
	return w.registry.Off(kind, id)
}

// RemoveAllListeners clears the given kinds, or every kind when none are given.
func (w *Watcher) RemoveAllListeners(kinds ...events.Kind) {
	w.registry.Clear(kinds...)
}

// ListenerCount returns the number of listeners registered for kind.
func (w *Watcher) ListenerCount(kind events.Kind) int {
	return w.registry.Count(kind)
}
