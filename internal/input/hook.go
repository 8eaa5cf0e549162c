//go:build cgo

package input

import (
	"context"
	"sort"
	"sync"

	hook "github.com/robotn/gohook"
)

// wheelHorizontal is the hook's direction value for horizontal scrolling.
const wheelHorizontal = 4

var (
	keycodeNamesOnce sync.Once
	keycodeNames     map[uint16]string
)

type hookSource struct{}

// NewHookSource returns a Source backed by the process-wide gohook listener.
func NewHookSource() Source {
	return hookSource{}
}

func (hookSource) Stream(ctx context.Context, emit func(Event) error) error {
	events := hook.Start()
	defer hook.End()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrHookClosed
			}
			out, ok := convertHookEvent(ev)
			if !ok {
				continue
			}
			if err := emit(out); err != nil {
				return err
			}
		}
	}
}

func convertHookEvent(ev hook.Event) (Event, bool) {
	switch ev.Kind {
	// KeyHold is the physical press; KeyDown only fires for typed characters.
	case hook.KeyHold:
		return Event{Kind: KeyPress, Label: hookKeyLabel(ev), Time: ev.When}, true
	case hook.KeyUp:
		return Event{Kind: KeyRelease, Label: hookKeyLabel(ev), Time: ev.When}, true
	case hook.MouseHold:
		return Event{Kind: MouseClick, Label: ButtonLabel(ev.Button), Time: ev.When}, true
	case hook.MouseMove, hook.MouseDrag:
		return Event{Kind: MouseMove, X: float64(ev.X), Y: float64(ev.Y), Time: ev.When}, true
	case hook.MouseWheel:
		if ev.Direction == wheelHorizontal {
			return Event{}, false
		}
		return Event{Kind: Scroll, Delta: int64(ev.Rotation), Time: ev.When}, true
	default:
		return Event{}, false
	}
}

func hookKeyLabel(ev hook.Event) string {
	if name := keycodeName(ev.Keycode); name != "" {
		return KeyLabel(name)
	}
	if name := hook.RawcodetoKeychar(ev.Rawcode); name != "" {
		return KeyLabel(name)
	}
	return UnknownKeyLabel(ev.Rawcode)
}

// keycodeName inverts hook.Keycode. Several names can share a code; the
// shortest, then alphabetically first, wins so labels stay stable.
func keycodeName(code uint16) string {
	keycodeNamesOnce.Do(func() {
		names := make([]string, 0, len(hook.Keycode))
		for name := range hook.Keycode {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) == len(names[j]) {
				return names[i] < names[j]
			}
			return len(names[i]) < len(names[j])
		})
		keycodeNames = make(map[uint16]string, len(names))
		for _, name := range names {
			c := hook.Keycode[name]
			if _, ok := keycodeNames[c]; !ok {
				keycodeNames[c] = name
			}
		}
	})
	return keycodeNames[code]
}
