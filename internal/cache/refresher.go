package cache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// StalePolicy decides what happens to a result whose refresh was superseded
// by a newer one before it completed.
type StalePolicy int

const (
	// DropStale discards superseded results.
	DropStale StalePolicy = iota
	// AcceptStale lets every completed fetch overwrite the slot (last write wins).
	AcceptStale
)

// ParseStalePolicy maps "drop" and "accept" to a policy.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch s {
	case "", "drop":
		return DropStale, nil
	case "accept":
		return AcceptStale, nil
	default:
		return DropStale, fmt.Errorf("unknown stale policy %q", s)
	}
}

func (p StalePolicy) String() string {
	if p == AcceptStale {
		return "accept"
	}
	return "drop"
}

// StaleRecorder observes dropped results. metrics.Registry implements it.
type StaleRecorder interface {
	RecordStaleDropped(resource string)
}

// FetchFunc loads the value for key. It must not fail: transport errors
// resolve to a default value inside the fetcher.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) V

// Options configures a Refresher.
type Options struct {
	Logger   *zap.Logger
	Policy   StalePolicy
	Recorder StaleRecorder
}

// Refresher fetches values for keys in the background and stores them in a Slot.
// No retry, no backoff; each refresh takes exactly one result.
type Refresher[K comparable, V any] struct {
	name  string
	slot  *Slot[V]
	fetch FetchFunc[K, V]
	opts  Options

	// storeMu spans the staleness check and the slot write so an older
	// result can never land after a newer one.
	storeMu sync.Mutex
	// beforeSet runs under storeMu just before the slot write. Tests only.
	beforeSet func()

	mu         sync.Mutex
	generation uint64
	key        K
	closed     bool
	wg         sync.WaitGroup
}

// NewRefresher creates a refresher writing into a slot initialised with initial.
func NewRefresher[K comparable, V any](name string, initial V, fetch FetchFunc[K, V], opts Options) *Refresher[K, V] {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Refresher[K, V]{
		name:  name,
		slot:  NewSlot(initial),
		fetch: fetch,
		opts:  opts,
	}
}

// Slot returns the slot results are written to.
func (r *Refresher[K, V]) Slot() *Slot[V] {
	return r.slot
}

// Value returns the last stored value.
func (r *Refresher[K, V]) Value() V {
	return r.slot.Get()
}

// Key returns the key of the most recent refresh.
func (r *Refresher[K, V]) Key() K {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

// Refresh starts a fetch for key. It returns immediately.
func (r *Refresher[K, V]) Refresh(ctx context.Context, key K) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.generation++
	gen := r.generation
	r.key = key
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		v := r.fetch(ctx, key)
		r.store(gen, key, v)
	}()
}

func (r *Refresher[K, V]) store(gen uint64, key K, v V) {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()

	r.mu.Lock()
	closed := r.closed
	stale := gen != r.generation
	r.mu.Unlock()

	if closed {
		return
	}
	if stale && r.opts.Policy == DropStale {
		r.opts.Logger.Debug("dropping superseded result",
			zap.String("resource", r.name),
			zap.Any("key", key),
		)
		if r.opts.Recorder != nil {
			r.opts.Recorder.RecordStaleDropped(r.name)
		}
		return
	}

	if r.beforeSet != nil {
		r.beforeSet()
	}
	r.slot.Set(v)
}

// Wait blocks until every started fetch has completed.
func (r *Refresher[K, V]) Wait() {
	r.wg.Wait()
}

// Close stops accepting refreshes; results still in flight are dropped.
func (r *Refresher[K, V]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
