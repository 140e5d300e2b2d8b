// Package protocol defines the binary request/response envelope spoken
// over the daemon's Unix socket. The envelope is symmetric: the same
// framing carries requests and responses in both directions over one
// connection.
package protocol

import (
	"errors"
	"fmt"

	"github.com/clipv/clipv/internal/types"
)

// Op names a daemon command.
type Op string

const (
	OpSnapshot    Op = "snapshot"
	OpPromote     Op = "promote"
	OpDelete      Op = "delete"
	OpDeleteValue Op = "delete_value"
	OpClear       Op = "clear"
	OpStop        Op = "stop"
)

// ErrBadPayload is returned when a decoded envelope does not carry the
// expected variant (e.g. a server reading a Response).
var ErrBadPayload = errors.New("protocol: unexpected payload variant")

// Command is one daemon operation. Index is meaningful for promote and
// delete; Item for delete_value.
type Command struct {
	Op    Op          `cbor:"op"`
	Index int         `cbor:"index,omitempty"`
	Item  *types.Item `cbor:"item,omitempty"`
}

// Validate rejects commands the daemon cannot apply before they reach
// the history store.
func (c Command) Validate() error {
	switch c.Op {
	case OpSnapshot, OpClear, OpStop:
		return nil
	case OpPromote, OpDelete:
		if c.Index < 0 {
			return fmt.Errorf("protocol: negative index %d for %s", c.Index, c.Op)
		}
		return nil
	case OpDeleteValue:
		if c.Item == nil {
			return fmt.Errorf("protocol: %s requires an item", c.Op)
		}
		return nil
	default:
		return fmt.Errorf("protocol: unknown op %q", c.Op)
	}
}

// Request wraps exactly one command.
type Request struct {
	Command Command `cbor:"command"`
}

// Response carries an optional history snapshot and an optional
// human-readable message; at least one is populated.
type Response struct {
	History []types.Item `cbor:"history,omitempty"`
	Message string       `cbor:"message,omitempty"`

	// HasHistory distinguishes an empty snapshot from an absent one,
	// so a Clear response can carry a zero-length history.
	HasHistory bool `cbor:"has_history"`
}

// SnapshotResponse builds a response carrying a history snapshot.
func SnapshotResponse(history []types.Item) *Response {
	return &Response{History: history, HasHistory: true}
}

// MessageResponse builds a response carrying only a message.
func MessageResponse(format string, args ...any) *Response {
	return &Response{Message: fmt.Sprintf(format, args...)}
}

// Payload is the symmetric envelope. Exactly one field is set.
type Payload struct {
	Request  *Request  `cbor:"request,omitempty"`
	Response *Response `cbor:"response,omitempty"`
}
