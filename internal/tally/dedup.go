package tally

import (
	"sync"
	"time"
)

// DefaultDedupWindow is the coalescing window for repeated labels.
const DefaultDedupWindow = 50 * time.Millisecond

// Gate suppresses a label reported again within the window of its last
// accepted occurrence. It remembers only the most recently accepted event.
type Gate struct {
	window time.Duration

	mu    sync.Mutex
	label string
	at    time.Time
	seen  bool
}

// NewGate returns a gate with the given coalescing window.
func NewGate(window time.Duration) *Gate {
	return &Gate{window: window}
}

// Allow reports whether the event should be counted. Rejected events leave
// the gate untouched.
func (g *Gate) Allow(label string, at time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen && g.label == label && at.Sub(g.at) < g.window {
		return false
	}
	g.label = label
	g.at = at
	g.seen = true
	return true
}
