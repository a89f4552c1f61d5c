package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/page"
	"go.uber.org/zap"
)

// Factory builds the controller for a new session id.
type Factory func(id string) *page.Controller

// ActiveRecorder reports the live session count.
type ActiveRecorder interface {
	SetSessionsActive(count int)
}

type entry struct {
	ctrl      *page.Controller
	createdAt time.Time
	lastSeen  time.Time
}

// Info describes a live session.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Store holds page sessions. It is bounded by maxSize, evicting the oldest
// session first, and drops sessions idle longer than ttl. Evicted sessions
// are closed, which resets their share link.
type Store struct {
	entries map[string]*entry
	order   []string // Track insertion order for eviction
	maxSize int
	ttl     time.Duration
	factory Factory
	now     func() time.Time

	recorder ActiveRecorder
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewStore creates a new session store.
func NewStore(maxSize int, ttl time.Duration, factory Factory, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[string]*entry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
		logger:  logger,
	}
}

// SetRecorder attaches a gauge for the live session count.
func (s *Store) SetRecorder(r ActiveRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
	s.report()
}

// Create starts a new session and returns its controller.
func (s *Store) Create() *page.Controller {
	id := uuid.New().String()
	ctrl := s.factory(id)
	now := s.now()

	s.mu.Lock()
	evicted := s.expiredLocked(now)

	// Evict oldest if at capacity
	for len(s.entries) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		evicted = append(evicted, s.removeLocked(oldest))
	}

	s.entries[id] = &entry{ctrl: ctrl, createdAt: now, lastSeen: now}
	s.order = append(s.order, id)
	s.report()
	s.mu.Unlock()

	s.closeAll(evicted, "evicted")
	return ctrl
}

// Get returns the controller for id and marks the session as seen.
func (s *Store) Get(id string) (*page.Controller, error) {
	now := s.now()

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return nil, core.WrapError(core.ErrSessionNotFound, fmt.Errorf("session %s", id))
	}
	if s.expired(e, now) {
		ctrl := s.removeLocked(id)
		s.report()
		s.mu.Unlock()
		s.closeAll([]*page.Controller{ctrl}, "expired")
		return nil, core.WrapError(core.ErrSessionNotFound, fmt.Errorf("session %s expired", id))
	}
	e.lastSeen = now
	s.mu.Unlock()

	return e.ctrl, nil
}

// Delete closes and removes the session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.entries[id]; !ok {
		s.mu.Unlock()
		return core.WrapError(core.ErrSessionNotFound, fmt.Errorf("session %s", id))
	}
	ctrl := s.removeLocked(id)
	s.report()
	s.mu.Unlock()

	ctrl.Close()
	return nil
}

// List returns all live sessions in creation order.
func (s *Store) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Info, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		result = append(result, Info{ID: id, CreatedAt: e.createdAt, LastSeen: e.lastSeen})
	}
	return result
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	expired := s.expiredLocked(s.now())
	s.report()
	s.mu.Unlock()

	s.closeAll(expired, "expired")
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}

// Close closes every session.
func (s *Store) Close() {
	s.mu.Lock()
	all := make([]*page.Controller, 0, len(s.entries))
	for _, id := range append([]string(nil), s.order...) {
		all = append(all, s.removeLocked(id))
	}
	s.report()
	s.mu.Unlock()

	s.closeAll(all, "shutdown")
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}

func (s *Store) expiredLocked(now time.Time) []*page.Controller {
	var out []*page.Controller
	for _, id := range append([]string(nil), s.order...) {
		if s.expired(s.entries[id], now) {
			out = append(out, s.removeLocked(id))
		}
	}
	return out
}

func (s *Store) removeLocked(id string) *page.Controller {
	e := s.entries[id]
	delete(s.entries, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return e.ctrl
}

func (s *Store) report() {
	if s.recorder != nil {
		s.recorder.SetSessionsActive(len(s.entries))
	}
}

func (s *Store) closeAll(ctrls []*page.Controller, reason string) {
	for _, c := range ctrls {
		c.Close()
		s.logger.Debug("session closed", zap.String("session", c.ID()), zap.String("reason", reason))
	}
}
