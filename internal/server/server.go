// Package server implements the command server: a Unix domain socket
// listener that decodes framed requests, applies them to the shared
// history store, and replies with snapshots or diagnostics.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/clipv/clipv/internal/clipboard"
	"github.com/clipv/clipv/internal/history"
	"github.com/clipv/clipv/internal/protocol"
)

// Server accepts client connections and applies their commands. Every
// handler goroutine serializes store access through the store's single
// lock; no handler observes a half-applied state relative to another
// handler or the poller.
type Server struct {
	store       *history.Store
	clip        *clipboard.WriteTracker
	logger      *zap.Logger
	listener    net.Listener
	socketPath  string
	requestStop func()

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	handlers sync.WaitGroup
}

// New binds the Unix socket at socketPath, removing a stale socket
// file left by an unclean shutdown first. requestStop is invoked when
// a client issues the stop command; it must be safe to call more than
// once.
func New(socketPath string, store *history.Store, clip *clipboard.WriteTracker, requestStop func(), logger *zap.Logger) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("server: create socket directory: %w", err)
	}

	// The singleton guard already holds the lock, so a leftover
	// socket file belongs to a dead daemon.
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("server: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("server: bind %s: %w", socketPath, err)
	}

	return &Server{
		store:       store,
		clip:        clip,
		logger:      logger,
		listener:    ln,
		socketPath:  socketPath,
		requestStop: requestStop,
		conns:       make(map[net.Conn]struct{}),
	}, nil
}

// Serve accepts connections until the listener is closed. Each
// connection is handled on its own goroutine and may carry any number
// of request/response exchanges.
func (s *Server) Serve(ctx context.Context) {
	s.logger.Info("command server listening", zap.String("socket", s.socketPath))

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("command server stopped")
				return
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
			}()
			s.handleConn(conn)
		}()
	}
}

// Close unblocks Serve, closes every live connection, waits for the
// connection handlers to finish their final writes, and removes the
// socket file. No acknowledgement in flight is cut off.
func (s *Server) Close() {
	_ = s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.handlers.Wait()
	_ = os.Remove(s.socketPath)
}

// handleConn serves one client. A protocol or I/O error closes this
// connection only; the daemon and other connections are unaffected.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		req, err := protocol.ReadRequest(conn)
		if err != nil {
			switch {
			case err == io.EOF:
				return
			case errors.Is(err, protocol.ErrBadPayload):
				_ = protocol.WriteResponse(conn, protocol.MessageResponse(
					"expected a request payload"))
				return
			default:
				s.logger.Warn("dropping connection after bad request", zap.Error(err))
				_ = protocol.WriteResponse(conn, protocol.MessageResponse(
					"malformed request: %v", err))
				return
			}
		}

		resp, stop := s.apply(req.Command)
		if err := protocol.WriteResponse(conn, resp); err != nil {
			s.logger.Warn("response write failed", zap.Error(err))
			return
		}
		if stop {
			// The acknowledgement is on the wire; only now may the
			// daemon begin tearing down.
			s.requestStop()
			return
		}
	}
}

// apply executes one command against the store and builds the reply.
// Successful state changes answer with a fresh snapshot so clients
// stay synchronized without a second round trip. The stop result asks
// the caller to trigger shutdown after the reply has been written.
func (s *Server) apply(cmd protocol.Command) (resp *protocol.Response, stop bool) {
	if err := cmd.Validate(); err != nil {
		return protocol.MessageResponse("invalid command: %v", err), false
	}

	switch cmd.Op {
	case protocol.OpSnapshot:
		return protocol.SnapshotResponse(s.store.Snapshot()), false

	case protocol.OpPromote:
		item, err := s.store.Promote(cmd.Index)
		if err != nil {
			return protocol.MessageResponse("cannot promote %d: index out of bounds", cmd.Index), false
		}
		// Make the selected content active on the platform clipboard.
		// The tracker records it so the poller does not re-record the
		// echo as a new copy event.
		if werr := s.clip.Write(item); werr != nil {
			s.logger.Warn("clipboard write after promote failed", zap.Error(werr))
		}
		return protocol.SnapshotResponse(s.store.Snapshot()), false

	case protocol.OpDelete:
		if err := s.store.Delete(cmd.Index); err != nil {
			return protocol.MessageResponse("cannot delete %d: index out of bounds", cmd.Index), false
		}
		return protocol.SnapshotResponse(s.store.Snapshot()), false

	case protocol.OpDeleteValue:
		if err := s.store.DeleteValue(*cmd.Item); err != nil {
			return protocol.MessageResponse("cannot delete item: no matching entry"), false
		}
		return protocol.SnapshotResponse(s.store.Snapshot()), false

	case protocol.OpClear:
		s.store.Clear()
		return protocol.SnapshotResponse(s.store.Snapshot()), false

	case protocol.OpStop:
		s.logger.Info("stop requested by client")
		return protocol.MessageResponse("stop signal received"), true

	default:
		return protocol.MessageResponse("unknown command %q", cmd.Op), false
	}
}
