// Package daemon wires the core together: it enforces single-instance
// execution through a lock file, owns the shared history store, and
// coordinates startup and shutdown of the poller and command server.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/clipv/clipv/internal/clipboard"
	"github.com/clipv/clipv/internal/config"
	"github.com/clipv/clipv/internal/history"
	"github.com/clipv/clipv/internal/poller"
	"github.com/clipv/clipv/internal/server"
)

// ErrAlreadyRunning means another live daemon holds the lock file.
var ErrAlreadyRunning = errors.New("daemon: another instance is already running")

// Daemon owns the shared state and the two long-running workers.
type Daemon struct {
	cfg    *config.Config
	logger *zap.Logger

	store *history.Store
	clip  *clipboard.WriteTracker
	lock  *flock.Flock
}

// New builds a daemon from config. The platform clipboard backend is
// selected here so a headless host degrades once, loudly, at startup.
func New(cfg *config.Config, logger *zap.Logger) *Daemon {
	backend := clipboard.New(logger)
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		store:  history.New(cfg.HistorySize),
		clip:   clipboard.NewWriteTracker(backend),
		lock:   flock.New(cfg.LockPath),
	}
}

// Run acquires the singleton lock, starts the poller and the command
// server, and blocks until ctx is canceled or a client issues stop.
// On return the socket and lock files are removed.
//
// The lock is a flock(2) lock, so a lock file left by a crashed daemon
// is reclaimed automatically: the kernel released the lock when the
// owner died. A lock held by a live process fails fast.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.acquireLock(); err != nil {
		return err
	}
	defer d.releaseLock()

	// Shared stop signal. Canceled by the stop command, a
	// termination signal through ctx, or a worker failure.
	runCtx, requestStop := context.WithCancel(ctx)
	defer requestStop()

	srv, err := server.New(d.cfg.SocketPath, d.store, d.clip, requestStop, d.logger)
	if err != nil {
		return err
	}

	p := poller.New(d.store, d.clip, d.cfg.PollingInterval.Std(), d.logger)

	d.logger.Info("daemon started",
		zap.String("device", d.cfg.DeviceName),
		zap.String("device_id", d.cfg.DeviceID),
		zap.Int("history_size", d.cfg.HistorySize),
		zap.String("socket", d.cfg.SocketPath),
		zap.String("lock", d.cfg.LockPath))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		srv.Serve(runCtx)
	}()

	<-runCtx.Done()

	// Closing the listener unblocks the accept loop; the poller
	// observes the canceled context within one interval.
	srv.Close()
	wg.Wait()

	d.logger.Info("daemon stopped")
	return nil
}

// acquireLock takes the exclusive lock file and records our PID in it
// so status tooling can identify the owner.
func (d *Daemon) acquireLock() error {
	if err := os.MkdirAll(filepath.Dir(d.cfg.LockPath), 0o700); err != nil {
		return fmt.Errorf("daemon: create lock directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("daemon: acquire lock %s: %w", d.cfg.LockPath, err)
	}
	if !ok {
		if pid, perr := ReadLockPID(d.cfg.LockPath); perr == nil {
			return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		return ErrAlreadyRunning
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(d.cfg.LockPath, []byte(pid), 0o644); err != nil {
		d.logger.Warn("could not record pid in lock file", zap.Error(err))
	}
	return nil
}

// releaseLock drops the lock and removes the lock file.
func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("could not release lock file", zap.Error(err))
	}
	if err := os.Remove(d.cfg.LockPath); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("could not remove lock file", zap.Error(err))
	}
}
