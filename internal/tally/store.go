package tally

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Options configures a Store.
type Options struct {
	DedupWindow time.Duration
	Clock       func() time.Time
	Logger      *zap.Logger
}

// Store is the shared owner of the aggregate. It is safe for use by the
// input goroutine, the flusher and the display at the same time.
type Store struct {
	path   string
	clock  func() time.Time
	logger *zap.Logger

	mu  sync.RWMutex
	agg Aggregate

	keys   *Gate
	clicks *Gate

	active atomic.Bool

	errMu   sync.Mutex
	lastErr string
	hasErr  bool

	persistMu sync.Mutex
}

// Open loads prior stats from path and returns a ready store. A missing or
// corrupt file yields an empty aggregate.
func Open(path string, opts Options) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	window := opts.DedupWindow
	if window <= 0 {
		window = DefaultDedupWindow
	}

	agg, err := LoadFile(path, clock())
	switch {
	case err == nil:
		logger.Info("loaded stats", zap.String("path", path), zap.Int("days", len(agg.DailyStats)))
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no stats file yet, starting empty", zap.String("path", path))
	default:
		logger.Warn("failed to load stats, starting empty", zap.String("path", path), zap.Error(err))
	}

	return &Store{
		path:   path,
		clock:  clock,
		logger: logger,
		agg:    agg,
		keys:   NewGate(window),
		clicks: NewGate(window),
	}
}

// Path returns the stats file location.
func (s *Store) Path() string {
	return s.path
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock()
}

// RecordKey counts a key press unless it duplicates the previous one.
func (s *Store) RecordKey(label string) {
	s.RecordKeyAt(label, time.Time{})
}

// RecordKeyAt is RecordKey for an event that happened at at. A zero time
// means now.
func (s *Store) RecordKeyAt(label string, at time.Time) {
	now := s.stamp(at)
	if !s.keys.Allow(label, now) {
		return
	}
	s.mutate(func(a *Aggregate) {
		a.RecordKey(label, now)
	})
}

// RecordClick counts a button press unless it duplicates the previous one.
func (s *Store) RecordClick(label string) {
	s.RecordClickAt(label, time.Time{})
}

// RecordClickAt is RecordClick for an event that happened at at.
func (s *Store) RecordClickAt(label string, at time.Time) {
	now := s.stamp(at)
	if !s.clicks.Allow(label, now) {
		return
	}
	s.mutate(func(a *Aggregate) {
		a.RecordClick(label, now)
	})
}

// RecordMovement adds cursor travel distance.
func (s *Store) RecordMovement(distance float64) {
	s.RecordMovementAt(distance, time.Time{})
}

// RecordMovementAt is RecordMovement for an event that happened at at.
func (s *Store) RecordMovementAt(distance float64, at time.Time) {
	now := s.stamp(at)
	s.mutate(func(a *Aggregate) {
		a.RecordMovement(distance, now)
	})
}

func (s *Store) stamp(at time.Time) time.Time {
	if at.IsZero() {
		return s.clock()
	}
	return at
}

// RecordScroll adds a wheel delta.
func (s *Store) RecordScroll(delta int64) {
	s.mutate(func(a *Aggregate) {
		a.RecordScroll(delta)
	})
}

// mutate applies fn under the write lock. A panic inside fn drops the event;
// the lock is released and later writers are unaffected.
func (s *Store) mutate(fn func(*Aggregate)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("dropped event after failed mutation", zap.Any("panic", r))
		}
	}()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.agg)
}

// Snapshot returns an independent copy of the current aggregate.
func (s *Store) Snapshot() (snap Aggregate) {
	defer func() {
		if r := recover(); r != nil {
			snap = New(s.clock())
		}
	}()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.Clone()
}

// Persist writes the aggregate to disk. Encoding happens under the read
// lock; the file write happens after it is released.
func (s *Store) Persist() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	return nil
}

func (s *Store) encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Encode(s.agg)
}

// SetAdapterActive records whether the input source is attached.
func (s *Store) SetAdapterActive(active bool) {
	s.active.Store(active)
}

// AdapterActive reports whether the input source is attached.
func (s *Store) AdapterActive() bool {
	return s.active.Load()
}

// SetAdapterError replaces the last adapter error message.
func (s *Store) SetAdapterError(msg string) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.lastErr = msg
	s.hasErr = true
}

// AdapterError returns the last adapter error message, if any.
func (s *Store) AdapterError() (string, bool) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr, s.hasErr
}
