package viewstate

import "sync"

type subscriber struct {
	id int
	fn func(ViewParams)
}

// Store holds the current ViewParams and notifies subscribers when a new
// value replaces it.
type Store struct {
	mu      sync.Mutex
	current ViewParams
	subs    []subscriber
	nextID  int
}

// NewStore creates a store holding initial.
func NewStore(initial ViewParams) *Store {
	return &Store{current: initial}
}

// Get returns the current value.
func (s *Store) Get() ViewParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the current value and notifies subscribers in subscription
// order. Setting an equal value is a no-op and returns false.
func (s *Store) Set(p ViewParams) bool {
	s.mu.Lock()
	if p == s.current {
		s.mu.Unlock()
		return false
	}
	s.current = p
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(p)
	}
	return true
}

// Subscribe registers fn for future changes and returns a cancel func.
func (s *Store) Subscribe(fn func(ViewParams)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
