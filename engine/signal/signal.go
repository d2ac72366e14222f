// Package signal implements typed change notifications. A Signal fans a value out
// to every connected slot; a Connection detaches its slot again.
package signal

import (
	"sync"

	"github.com/google/uuid"
)

// Signal is a typed notification channel. The zero value is ready to use.
// Slots run synchronously on the emitting goroutine, outside the signal's lock,
// so a slot may connect or disconnect other slots.
type Signal[T any] struct {
	mu    sync.Mutex
	slots map[uuid.UUID]func(T)
	order []uuid.UUID
}

// Connection identifies one connected slot.
type Connection struct {
	id         uuid.UUID
	disconnect func(uuid.UUID)
}

// ID returns the unique identifier of the connection.
func (c Connection) ID() uuid.UUID {
	return c.id
}

// Connected reports whether the connection was produced by Connect.
func (c Connection) Connected() bool {
	return c.disconnect != nil
}

// Disconnect detaches the slot. Calling it more than once, or on the zero
// Connection, is a no-op.
func (c Connection) Disconnect() {
	if c.disconnect != nil {
		c.disconnect(c.id)
	}
}

// Connect registers fn to be called on every Emit.
//
// Parameters:
//   - fn: the slot
//
// Returns:
//   - Connection: handle used to disconnect the slot
func (s *Signal[T]) Connect(fn func(T)) Connection {
	if fn == nil {
		panic("signal: Connect requires a non-nil slot")
	}
	id := uuid.New()

	s.mu.Lock()
	if s.slots == nil {
		s.slots = make(map[uuid.UUID]func(T))
	}
	s.slots[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return Connection{id: id, disconnect: s.disconnect}
}

func (s *Signal[T]) disconnect(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; !ok {
		return
	}
	delete(s.slots, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Emit calls every connected slot with v, in connection order.
//
// Parameters:
//   - v: the value passed to each slot
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	slots := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		slots = append(slots, s.slots[id])
	}
	s.mu.Unlock()

	for _, fn := range slots {
		fn(v)
	}
}

// Len returns the number of connected slots.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
