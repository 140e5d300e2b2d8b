package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipv/clipv/internal/types"
)

func TestRequestRoundTrip(t *testing.T) {
	img := types.NewImage(4, 4, "png", []byte{0xde, 0xad})
	commands := []Command{
		{Op: OpSnapshot},
		{Op: OpPromote, Index: 3},
		{Op: OpDelete, Index: 0},
		{Op: OpDeleteValue, Item: ptr(types.NewText("stale entry"))},
		{Op: OpDeleteValue, Item: &img},
		{Op: OpClear},
		{Op: OpStop},
	}

	for _, cmd := range commands {
		t.Run(string(cmd.Op), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRequest(&buf, &Request{Command: cmd}))

			got, err := ReadRequest(&buf)
			require.NoError(t, err)
			assert.Equal(t, cmd.Op, got.Command.Op)
			assert.Equal(t, cmd.Index, got.Command.Index)
			if cmd.Item == nil {
				assert.Nil(t, got.Command.Item)
			} else {
				require.NotNil(t, got.Command.Item)
				assert.True(t, cmd.Item.Equal(*got.Command.Item))
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := SnapshotResponse([]types.Item{
		types.NewText("first"),
		types.NewImage(8, 8, "png", []byte{1, 2, 3}),
	})

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp))

	got, err := ReadResponse(&buf)
	require.NoError(t, err)
	assert.True(t, got.HasHistory)
	require.Len(t, got.History, 2)
	assert.Equal(t, "first", got.History[0].Text)
	assert.True(t, resp.History[1].Equal(got.History[1]))
}

func TestEmptySnapshotSurvivesRoundTrip(t *testing.T) {
	// A Clear response carries a present-but-empty history; it must
	// not decay into "no snapshot" on the wire.
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, SnapshotResponse(nil)))

	got, err := ReadResponse(&buf)
	require.NoError(t, err)
	assert.True(t, got.HasHistory)
	assert.Empty(t, got.History)
}

func TestDeterministicEncoding(t *testing.T) {
	resp := SnapshotResponse([]types.Item{types.NewText("same")})

	var a, b bytes.Buffer
	require.NoError(t, WriteResponse(&a, resp))
	require.NoError(t, WriteResponse(&b, resp))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestReadPayloadErrors(t *testing.T) {
	t.Run("clean EOF between frames", func(t *testing.T) {
		_, err := ReadPayload(bytes.NewReader(nil))
		assert.Equal(t, io.EOF, err)
	})

	t.Run("truncated length prefix", func(t *testing.T) {
		_, err := ReadPayload(bytes.NewReader([]byte{0, 0}))
		assert.Error(t, err)
	})

	t.Run("truncated body", func(t *testing.T) {
		frame := []byte{0, 0, 0, 10, 0xa1}
		_, err := ReadPayload(bytes.NewReader(frame))
		assert.Error(t, err)
	})

	t.Run("oversize frame rejected before allocation", func(t *testing.T) {
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], MaxFrameSize+1)
		_, err := ReadPayload(bytes.NewReader(prefix[:]))
		assert.ErrorContains(t, err, "exceeds limit")
	})

	t.Run("garbage body", func(t *testing.T) {
		frame := append([]byte{0, 0, 0, 4}, 0xff, 0xff, 0xff, 0xff)
		_, err := ReadPayload(bytes.NewReader(frame))
		assert.Error(t, err)
	})
}

func TestReadRequestRejectsResponsePayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, MessageResponse("not a request")))

	_, err := ReadRequest(&buf)
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestCommandValidate(t *testing.T) {
	assert.NoError(t, Command{Op: OpSnapshot}.Validate())
	assert.NoError(t, Command{Op: OpPromote, Index: 2}.Validate())
	assert.Error(t, Command{Op: OpPromote, Index: -1}.Validate())
	assert.Error(t, Command{Op: OpDeleteValue}.Validate())
	assert.Error(t, Command{Op: "bogus"}.Validate())
}

func ptr(item types.Item) *types.Item { return &item }
