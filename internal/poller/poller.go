// Package poller samples the platform clipboard on a fixed interval
// and feeds observed content into the shared history store.
package poller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clipv/clipv/internal/clipboard"
	"github.com/clipv/clipv/internal/history"
	"github.com/clipv/clipv/internal/types"
)

// Poller owns the sampling loop. It holds the same lock-guarded store
// handle as the command server and the same write tracker, so a value
// the daemon itself just wrote to the clipboard is never re-recorded.
type Poller struct {
	store    *history.Store
	clip     *clipboard.WriteTracker
	interval time.Duration
	logger   *zap.Logger

	// last mirrors the previous sample so an unchanged clipboard does
	// not hammer the store every cycle. Purely an optimization: the
	// store deduplicates regardless.
	last    types.Item
	hasLast bool
}

// New returns a poller over the shared store and clipboard handle.
func New(store *history.Store, clip *clipboard.WriteTracker, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		store:    store,
		clip:     clip,
		interval: interval,
		logger:   logger,
	}
}

// Run samples the clipboard until ctx is canceled. The stop signal is
// observed with latency bounded by one interval. Run never returns a
// clipboard error; read failures are transient and logged.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("clipboard poller started",
		zap.Duration("interval", p.interval),
		zap.String("backend", p.clip.Name()))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("clipboard poller stopped")
			return
		case <-ticker.C:
			p.sample()
		}
	}
}

// sample runs one poll cycle. The store lock is only taken inside
// InsertOrPromote, never across the clipboard read.
func (p *Poller) sample() {
	item, err := p.clip.Read()
	if err != nil {
		if !errors.Is(err, clipboard.ErrEmpty) {
			p.logger.Warn("clipboard read failed", zap.Error(err))
		}
		return
	}
	if item.Empty() {
		return
	}
	if p.hasLast && p.last.Equal(item) {
		return
	}
	p.last = item
	p.hasLast = true

	if p.clip.Matches(item) {
		p.logger.Debug("skipping self-written clipboard content")
		return
	}

	outcome := p.store.InsertOrPromote(item)
	p.logger.Info("clipboard content recorded",
		zap.String("kind", string(item.Kind)),
		zap.Stringer("outcome", outcome),
		zap.Int("history_len", p.store.Len()))
}
