package input

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Recorder receives normalized activity. *tally.Store satisfies it. A zero
// time stamps the event with the recorder's own clock.
type Recorder interface {
	RecordKeyAt(label string, at time.Time)
	RecordClickAt(label string, at time.Time)
	RecordMovementAt(distance float64, at time.Time)
	RecordScroll(delta int64)
	SetAdapterActive(active bool)
	SetAdapterError(msg string)
}

// Adapter feeds events from a Source into a Recorder. It owns the last
// cursor position and must only be driven from one goroutine.
type Adapter struct {
	rec    Recorder
	logger *zap.Logger

	lastX  float64
	lastY  float64
	hasPos bool
}

// NewAdapter returns an adapter writing to rec.
func NewAdapter(rec Recorder, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		rec:    rec,
		logger: logger.With(zap.String("mod", "input")),
	}
}

// Handle applies a single event at its own timestamp. Key releases are
// ignored and the first cursor position only establishes the baseline.
func (a *Adapter) Handle(ev Event) {
	switch ev.Kind {
	case KeyPress:
		if ev.Label != "" {
			a.rec.RecordKeyAt(ev.Label, ev.Time)
		}
	case KeyRelease:
	case MouseClick:
		if ev.Label != "" {
			a.rec.RecordClickAt(ev.Label, ev.Time)
		}
	case MouseMove:
		if a.hasPos {
			if dist := math.Hypot(ev.X-a.lastX, ev.Y-a.lastY); dist > 0 {
				a.rec.RecordMovementAt(dist, ev.Time)
			}
		}
		a.lastX, a.lastY = ev.X, ev.Y
		a.hasPos = true
	case Scroll:
		if ev.Delta != 0 {
			a.rec.RecordScroll(ev.Delta)
		}
	}
}

// Run attaches to src and blocks until it ends. Cancellation is a normal
// detach; any other failure marks the adapter dead and stores the message.
func (a *Adapter) Run(ctx context.Context, src Source) error {
	a.hasPos = false
	a.rec.SetAdapterActive(true)
	a.logger.Info("input source attached")

	err := src.Stream(ctx, func(ev Event) error {
		a.Handle(ev)
		return nil
	})
	a.rec.SetAdapterActive(false)

	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		a.logger.Info("input source detached")
		return nil
	}
	a.rec.SetAdapterError(err.Error())
	a.logger.Error("input source failed", zap.Error(err))
	return fmt.Errorf("input source failed: %w", err)
}
