// Package flush runs the periodic and final persistence of the tally store.
package flush

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/fingers/internal/tally"
)

// DefaultInterval is the persist cadence used when none is configured.
const DefaultInterval = 60 * time.Second

// ErrFinalTimeout is returned when the shutdown persist does not finish in time.
var ErrFinalTimeout = errors.New("final persist timed out")

// Source is the part of the tally store the flusher needs.
type Source interface {
	Persist() error
	Snapshot() tally.Aggregate
	Now() time.Time
}

// Archive receives a snapshot after every successful persist.
type Archive interface {
	Sync(ctx context.Context, agg tally.Aggregate, now time.Time) error
}

// Flusher persists the store on a fixed interval.
type Flusher struct {
	src      Source
	archive  Archive
	interval time.Duration
	logger   *zap.Logger
}

// New returns a flusher. archive may be nil.
func New(src Source, archive Archive, interval time.Duration, logger *zap.Logger) *Flusher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flusher{
		src:      src,
		archive:  archive,
		interval: interval,
		logger:   logger.With(zap.String("mod", "flush")),
	}
}

// Run flushes every interval until ctx is done. Failures are logged and
// retried on the next tick.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Flush(ctx); err != nil {
				f.logger.Error("periodic flush failed", zap.Error(err))
			}
		}
	}
}

// Flush persists the store and then archives a snapshot of it.
func (f *Flusher) Flush(ctx context.Context) error {
	if err := f.src.Persist(); err != nil {
		return fmt.Errorf("failed to persist stats: %w", err)
	}
	if f.archive == nil {
		return nil
	}
	if err := f.archive.Sync(ctx, f.src.Snapshot(), f.src.Now()); err != nil {
		return fmt.Errorf("failed to archive stats: %w", err)
	}
	return nil
}

// Final runs one last flush bounded by timeout. On timeout the write keeps
// running in the background and ErrFinalTimeout is returned.
func (f *Flusher) Final(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- f.Flush(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			f.logger.Error("final flush failed", zap.Error(err))
			return err
		}
		f.logger.Info("final flush complete")
		return nil
	case <-ctx.Done():
		f.logger.Warn("final flush timed out", zap.Duration("timeout", timeout))
		return ErrFinalTimeout
	}
}
