package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipv/clipv/internal/types"
)

type memoryBackend struct {
	item types.Item
}

func (m *memoryBackend) Name() string { return "memory" }

func (m *memoryBackend) Read() (types.Item, error) {
	if m.item.Empty() {
		return types.Item{}, ErrEmpty
	}
	return m.item, nil
}

func (m *memoryBackend) Write(item types.Item) error {
	m.item = item
	return nil
}

func TestWriteTrackerMatchesLastWrite(t *testing.T) {
	tracker := NewWriteTracker(&memoryBackend{})

	// Nothing written yet: nothing matches.
	assert.False(t, tracker.Matches(types.NewText("x")))

	require.NoError(t, tracker.Write(types.NewText("promoted")))
	assert.True(t, tracker.Matches(types.NewText("promoted")))
	assert.False(t, tracker.Matches(types.NewText("other")))

	// A newer write replaces the tracked value.
	require.NoError(t, tracker.Write(types.NewText("newer")))
	assert.False(t, tracker.Matches(types.NewText("promoted")))
	assert.True(t, tracker.Matches(types.NewText("newer")))
}

func TestWriteTrackerPassesThroughReads(t *testing.T) {
	backend := &memoryBackend{item: types.NewText("content")}
	tracker := NewWriteTracker(backend)

	item, err := tracker.Read()
	require.NoError(t, err)
	assert.Equal(t, "content", item.Text)

	// Reads do not affect echo tracking.
	assert.False(t, tracker.Matches(item))
}

func TestAtottoBackendRejectsImages(t *testing.T) {
	b := newAtottoBackend()
	err := b.Write(types.NewImage(1, 1, "png", []byte{1}))
	assert.ErrorIs(t, err, ErrUnsupported)
}
