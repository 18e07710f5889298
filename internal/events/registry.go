package events

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/metrics"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/snapshot"
)

// ListenerID identifies one registration. Registering the same function
// twice yields two IDs.
type ListenerID uint64

type entry struct {
	id    ListenerID
	fn    Handler
	onErr ErrorHandler
	once  bool
	fired atomic.Bool
}

// claim reports whether the entry may run. Once entries succeed a single time.
func (e *entry) claim() bool {
	if !e.once {
		return true
	}
	return e.fired.CompareAndSwap(false, true)
}

// Registry maps each kind to its listeners.
type Registry struct {
	mu        sync.Mutex
	listeners [numKinds][]*entry
	nextID    ListenerID

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(logger *zap.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger, metrics: m}
}

// On registers fn for kind. onErr, if set, receives fetch failures of the
// resource behind kind. The returned func removes the registration.
func (r *Registry) On(kind Kind, fn Handler, onErr ErrorHandler) (ListenerID, func()) {
	return r.add(kind, fn, onErr, false)
}

// Once is like On but the listener is removed before its first invocation,
// whether that is fn or onErr.
func (r *Registry) Once(kind Kind, fn Handler, onErr ErrorHandler) (ListenerID, func()) {
	return r.add(kind, fn, onErr, true)
}

func (r *Registry) add(kind Kind, fn Handler, onErr ErrorHandler, once bool) (ListenerID, func()) {
	if !kind.Valid() {
		panic(fmt.Sprintf("invalid events.Kind: %d", int(kind)))
	}
	if fn == nil {
		panic("events: nil handler")
	}

	r.mu.Lock()
	r.nextID++
	e := &entry{id: r.nextID, fn: fn, onErr: onErr, once: once}
	r.listeners[kind] = append(r.listeners[kind], e)
	count := len(r.listeners[kind])
	r.mu.Unlock()

	r.setGauge(kind, count)
	r.logger.Debug("listener registered",
		zap.String("kind", kind.String()),
		zap.Uint64("listener", uint64(e.id)),
		zap.Bool("once", once),
	)

	id := e.id
	return id, func() { r.Off(kind, id) }
}

// Off removes the listener with the given ID. It reports whether one was removed.
func (r *Registry) Off(kind Kind, id ListenerID) bool {
	if !kind.Valid() {
		return false
	}

	r.mu.Lock()
	removed := r.removeLocked(kind, id)
	count := len(r.listeners[kind])
	r.mu.Unlock()

	if removed {
		r.setGauge(kind, count)
	}
	return removed
}

func (r *Registry) removeLocked(kind Kind, id ListenerID) bool {
	list := r.listeners[kind]
	for i, e := range list {
		if e.id != id {
			continue
		}
		next := make([]*entry, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		r.listeners[kind] = next
		return true
	}
	return false
}

// Clear removes every listener of the given kinds, or of all kinds when none are given.
func (r *Registry) Clear(kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = Kinds[:]
	}

	r.mu.Lock()
	for _, k := range kinds {
		if k.Valid() {
			r.listeners[k] = nil
		}
	}
	r.mu.Unlock()

	for _, k := range kinds {
		if k.Valid() {
			r.setGauge(k, 0)
		}
	}
}

// Count returns the number of listeners registered for kind.
func (r *Registry) Count(kind Kind) int {
	if !kind.Valid() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners[kind])
}

// Demanded returns the resources that at least one registered kind depends on.
func (r *Registry) Demanded() map[snapshot.Resource]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[snapshot.Resource]bool)
	for _, k := range Kinds {
		if len(r.listeners[k]) > 0 {
			out[k.Resource()] = true
		}
	}
	return out
}

// Emit delivers ev to every listener of ev.Kind and returns how many ran.
// Each listener receives its own copy of the payload.
// Listeners run outside the lock, so they may register or unregister freely.
func (r *Registry) Emit(ev Event) int {
	if !ev.Kind.Valid() {
		return 0
	}
	if r.metrics != nil {
		r.metrics.EventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	}

	ran := 0
	for _, e := range r.snapshot(ev.Kind) {
		if !e.claim() {
			continue
		}
		if e.once {
			r.Off(ev.Kind, e.id)
		}
		own := ev.Clone()
		r.invoke(ev.Kind, e.id, func() { e.fn(own) })
		ran++
	}
	return ran
}

// EmitError delivers err to the error handlers of kind. Listeners without
// an error handler are skipped and, if registered with Once, stay registered.
func (r *Registry) EmitError(kind Kind, err error) int {
	if !kind.Valid() {
		return 0
	}

	ran := 0
	for _, e := range r.snapshot(kind) {
		if e.onErr == nil || !e.claim() {
			continue
		}
		if e.once {
			r.Off(kind, e.id)
		}
		r.invoke(kind, e.id, func() { e.onErr(err) })
		ran++
	}
	return ran
}

func (r *Registry) snapshot(kind Kind) []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entry(nil), r.listeners[kind]...)
}

// invoke runs one listener, recovering a panic so the remaining listeners
// and the current tick continue.
func (r *Registry) invoke(kind Kind, id ListenerID, call func()) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("listener panicked",
				zap.String("kind", kind.String()),
				zap.Uint64("listener", uint64(id)),
				zap.Any("panic", p),
			)
			if r.metrics != nil {
				r.metrics.ListenerPanics.WithLabelValues(kind.String()).Inc()
			}
		}
	}()
	call()
}

func (r *Registry) setGauge(kind Kind, count int) {
	if r.metrics != nil {
		r.metrics.Listeners.WithLabelValues(kind.String()).Set(float64(count))
	}
}
