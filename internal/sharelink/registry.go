// Package sharelink holds the current shareable {title, url} pair and the
// policy for building reproducible share URLs.
package sharelink

import (
	"sync"

	"go.uber.org/zap"
)

// Link is a shareable title and URL. Both fields are always replaced together.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Empty is the sentinel written when the owning page is torn down.
var Empty = Link{}

// IsEmpty reports whether l is the sentinel.
func (l Link) IsEmpty() bool {
	return l == Empty
}

type subscriber struct {
	id int
	fn func(Link)
}

// Registry is a single slot holding the current share link. Writes replace
// the whole value; the last writer wins.
type Registry struct {
	mu        sync.Mutex
	current   Link
	lease     uint64
	owner     string
	nextLease uint64
	subs      []subscriber
	nextSub   int
	logger    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Current returns the current link.
func (r *Registry) Current() Link {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Owner returns the name of the current lease holder, or "".
func (r *Registry) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// Update replaces the current link.
func (r *Registry) Update(l Link) {
	r.mu.Lock()
	r.current = l
	subs := r.snapshotSubs()
	r.mu.Unlock()

	r.notify(subs, l)
}

// Subscribe registers fn for future updates and returns a cancel func.
func (r *Registry) Subscribe(fn func(Link)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSub++
	id := r.nextSub
	r.subs = append(r.subs, subscriber{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, sub := range r.subs {
			if sub.id == id {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

// Acquire makes owner the single writer of the registry. A previous lease
// stops being able to write or reset the slot.
func (r *Registry) Acquire(owner string) *Lease {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextLease++
	if r.owner != "" {
		r.logger.Debug("share link ownership transferred",
			zap.String("from", r.owner),
			zap.String("to", owner),
		)
	}
	r.lease = r.nextLease
	r.owner = owner

	return &Lease{registry: r, id: r.nextLease, owner: owner}
}

// write replaces the link only while lease id is current.
func (r *Registry) write(id uint64, l Link, release bool) bool {
	r.mu.Lock()
	if r.lease != id {
		r.mu.Unlock()
		return false
	}
	r.current = l
	if release {
		r.lease = 0
		r.owner = ""
	}
	subs := r.snapshotSubs()
	r.mu.Unlock()

	r.notify(subs, l)
	return true
}

func (r *Registry) snapshotSubs() []subscriber {
	subs := make([]subscriber, len(r.subs))
	copy(subs, r.subs)
	return subs
}

func (r *Registry) notify(subs []subscriber, l Link) {
	for _, sub := range subs {
		sub.fn(l)
	}
}

// Lease is a page's write handle on a Registry.
type Lease struct {
	registry *Registry
	id       uint64
	owner    string

	mu       sync.Mutex
	released bool
}

// Owner returns the name the lease was acquired with.
func (l *Lease) Owner() string {
	return l.owner
}

// Update writes link if the lease still owns the registry.
func (l *Lease) Update(link Link) bool {
	l.mu.Lock()
	released := l.released
	l.mu.Unlock()
	if released {
		return false
	}
	return l.registry.write(l.id, link, false)
}

// Release writes the Empty sentinel if the lease still owns the registry.
// It is safe to call more than once.
func (l *Lease) Release() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	l.mu.Unlock()

	l.registry.write(l.id, Empty, true)
}
