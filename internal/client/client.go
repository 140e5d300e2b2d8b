// Package client implements the protocol-client side used by the CLI
// and other local tools: dial the daemon socket, frame one request,
// decode one response.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/clipv/clipv/internal/protocol"
	"github.com/clipv/clipv/internal/types"
)

const (
	dialTimeout = 2 * time.Second
	maxRetries  = 3
	retryDelay  = 200 * time.Millisecond
)

// Client talks to a running daemon over its Unix socket. A fresh
// connection is dialed per command; the daemon happily serves many
// requests per connection, but one-shot CLI invocations have no reason
// to hold one open.
type Client struct {
	socketPath string
}

// New returns a client for the daemon listening at socketPath.
func New(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Do sends one command and returns the daemon's response. Only
// connection establishment is retried, to ride out a daemon that is
// still binding its socket. Once the command is on the wire the
// exchange is never replayed: commands such as delete are not
// idempotent, and a lost response must not apply them twice.
func (c *Client) Do(cmd protocol.Command) (*protocol.Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("client: daemon not reachable at %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := protocol.WriteRequest(conn, &protocol.Request{Command: cmd}); err != nil {
		return nil, fmt.Errorf("client: send command: %w", err)
	}
	resp, err := protocol.ReadResponse(conn)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}
	return resp, nil
}

func (c *Client) dial() (net.Conn, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Snapshot fetches the current history.
func (c *Client) Snapshot() (*protocol.Response, error) {
	return c.Do(protocol.Command{Op: protocol.OpSnapshot})
}

// Promote moves the entry at index to the front and makes it the
// active clipboard content.
func (c *Client) Promote(index int) (*protocol.Response, error) {
	return c.Do(protocol.Command{Op: protocol.OpPromote, Index: index})
}

// Delete removes the entry at index.
func (c *Client) Delete(index int) (*protocol.Response, error) {
	return c.Do(protocol.Command{Op: protocol.OpDelete, Index: index})
}

// DeleteThis removes the entry equal to item.
func (c *Client) DeleteThis(item types.Item) (*protocol.Response, error) {
	return c.Do(protocol.Command{Op: protocol.OpDeleteValue, Item: &item})
}

// Clear empties the history.
func (c *Client) Clear() (*protocol.Response, error) {
	return c.Do(protocol.Command{Op: protocol.OpClear})
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*protocol.Response, error) {
	return c.Do(protocol.Command{Op: protocol.OpStop})
}
