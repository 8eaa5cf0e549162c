// Package input normalizes global keyboard and mouse events for the tally store.
package input

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates input events.
type Kind int

// Event kinds delivered by a Source.
const (
	KeyPress Kind = iota + 1
	KeyRelease
	MouseClick
	MouseMove
	Scroll
)

var kindNames = map[Kind]string{
	KeyPress:   "key_press",
	KeyRelease: "key_release",
	MouseClick: "mouse_click",
	MouseMove:  "mouse_move",
	Scroll:     "scroll",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range kindNames {
		if name == want {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", string(text))
}

// Event is a single normalized input notification.
type Event struct {
	Kind  Kind      `json:"kind"`
	Label string    `json:"label,omitempty"`
	X     float64   `json:"x,omitempty"`
	Y     float64   `json:"y,omitempty"`
	Delta int64     `json:"delta,omitempty"`
	Time  time.Time `json:"time,omitzero"`
}

// String renders the event as a JSON line, used by the replay log.
func (e Event) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return e.Kind.String()
	}
	return string(data)
}

// Source emits input events until ctx is done or the underlying hook fails.
type Source interface {
	Stream(ctx context.Context, emit func(Event) error) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, emit func(Event) error) error

// Stream calls the underlying function.
func (f SourceFunc) Stream(ctx context.Context, emit func(Event) error) error {
	return f(ctx, emit)
}
