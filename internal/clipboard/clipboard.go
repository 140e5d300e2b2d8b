// Package clipboard adapts the platform clipboard to the daemon's
// typed item model. The primary backend is golang.design/x/clipboard
// (text and PNG images); hosts where its display initialization fails
// fall back to the text-only atotto backend.
package clipboard

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/clipv/clipv/internal/types"
)

var (
	// ErrEmpty is returned by Read when the clipboard holds nothing
	// the daemon can represent. Callers treat it as a skip, not a
	// failure.
	ErrEmpty = errors.New("clipboard: empty")

	// ErrUnavailable is returned when no backend can reach the
	// platform clipboard at all (e.g. a headless host without a
	// display server).
	ErrUnavailable = errors.New("clipboard: unavailable")

	// ErrUnsupported is returned by Write for content the backend
	// cannot offer to the platform (e.g. images on the text-only
	// fallback).
	ErrUnsupported = errors.New("clipboard: unsupported content")
)

// Backend is the platform clipboard capability consumed by the daemon:
// read the current content as a typed item, write a typed item back.
type Backend interface {
	Name() string
	Read() (types.Item, error)
	Write(types.Item) error
}

// New selects a backend for this host. The golang.design backend is
// preferred; if its display initialization fails the text-only atotto
// backend is used instead.
func New(logger *zap.Logger) Backend {
	b, err := newDesignBackend()
	if err == nil {
		return b
	}
	logger.Warn("native clipboard unavailable, falling back to text-only backend",
		zap.Error(err))
	return newAtottoBackend()
}

// WriteTracker wraps a Backend and remembers the last item this
// process wrote. The poller compares each observed clipboard value
// against it so a client-triggered promote is not re-recorded as a
// fresh copy event.
type WriteTracker struct {
	backend Backend

	mu      sync.Mutex
	last    types.Item
	hasLast bool
}

// NewWriteTracker wraps backend.
func NewWriteTracker(backend Backend) *WriteTracker {
	return &WriteTracker{backend: backend}
}

// Name returns the wrapped backend's name.
func (t *WriteTracker) Name() string { return t.backend.Name() }

// Read passes through to the wrapped backend.
func (t *WriteTracker) Read() (types.Item, error) {
	return t.backend.Read()
}

// Write offers item to the platform clipboard and records it as the
// last value written by this process.
func (t *WriteTracker) Write(item types.Item) error {
	if err := t.backend.Write(item); err != nil {
		return err
	}
	t.mu.Lock()
	t.last = item
	t.hasLast = true
	t.mu.Unlock()
	return nil
}

// Matches reports whether item equals the last value this process
// wrote to the clipboard.
func (t *WriteTracker) Matches(item types.Item) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasLast && t.last.Equal(item)
}
