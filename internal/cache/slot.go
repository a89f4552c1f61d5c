// Package cache keeps the last fetched value per logical resource and
// refreshes it when the view state changes.
package cache

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Slot holds one value. Set always replaces the whole value.
type Slot[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   []subscriber[T]
	nextID int
}

// NewSlot creates a slot holding initial.
func NewSlot[T any](initial T) *Slot[T] {
	return &Slot[T]{value: initial}
}

// Get returns the current value.
func (s *Slot[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn for future values and returns a cancel func.
func (s *Slot[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})

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
