// Package history implements the bounded, deduplicated clipboard
// history shared by the poller and the command server. Index 0 is the
// most recently used entry; the entry at the highest index is evicted
// when the store is full.
package history

import (
	"errors"
	"sync"

	"github.com/clipv/clipv/internal/types"
)

var (
	// ErrIndexOutOfBounds is returned by Promote and Delete when the
	// index does not name an entry. The store is left unchanged.
	ErrIndexOutOfBounds = errors.New("history: index out of bounds")

	// ErrNotFound is returned by DeleteValue when no entry equals the
	// given item.
	ErrNotFound = errors.New("history: no matching entry")
)

// Outcome reports what InsertOrPromote did with the item.
type Outcome int

const (
	Inserted Outcome = iota
	Promoted

	// Dropped means the store holds nothing: a zero-capacity store
	// discards every item without changing state.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Promoted:
		return "promoted"
	case Dropped:
		return "dropped"
	default:
		return "inserted"
	}
}

// Store is the shared clipboard history. All methods serialize through
// a single internal mutex; the lock is held only for the duration of
// one operation, never across clipboard or socket I/O.
type Store struct {
	mu       sync.Mutex
	entries  []types.Item
	capacity int
}

// New returns an empty store bounded by capacity. A negative capacity
// is treated as zero.
func New(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		entries:  make([]types.Item, 0, capacity),
		capacity: capacity,
	}
}

// InsertOrPromote records item as the most recently used entry. If an
// equal entry already exists it is moved to index 0 without changing
// the length; otherwise the item is pushed at index 0 and, if the
// store now exceeds its capacity, the oldest entry is evicted. A
// zero-capacity store drops the item without touching any state.
func (s *Store) InsertOrPromote(item types.Item) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity == 0 {
		return Dropped
	}

	if pos := s.indexOf(item); pos >= 0 {
		s.moveToFront(pos)
		return Promoted
	}

	s.entries = append([]types.Item{item}, s.entries...)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}
	return Inserted
}

// Promote moves the entry at index to index 0, preserving the relative
// order of all other entries, and returns the promoted item.
func (s *Store) Promote(index int) (types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.entries) {
		return types.Item{}, ErrIndexOutOfBounds
	}
	s.moveToFront(index)
	return s.entries[0], nil
}

// Delete removes the entry at index; entries behind it shift down.
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfBounds
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return nil
}

// DeleteValue removes the entry equal to item, if any.
func (s *Store) DeleteValue(item types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.indexOf(item)
	if pos < 0 {
		return ErrNotFound
	}
	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	return nil
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}

// Snapshot returns a copy of the ordered history, most recent first.
// It never mutates the store.
func (s *Store) Snapshot() []types.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Item, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// indexOf returns the index of the entry equal to item, or -1.
// Callers must hold s.mu.
func (s *Store) indexOf(item types.Item) int {
	for i, e := range s.entries {
		if e.Equal(item) {
			return i
		}
	}
	return -1
}

// moveToFront rotates entries[0:pos+1] so the entry at pos lands at
// index 0. Callers must hold s.mu and guarantee pos is in range.
func (s *Store) moveToFront(pos int) {
	if pos == 0 {
		return
	}
	item := s.entries[pos]
	copy(s.entries[1:pos+1], s.entries[:pos])
	s.entries[0] = item
}
