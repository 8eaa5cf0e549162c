package input

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var keyNames = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"esc":       "Esc",
	"escape":    "Esc",
	"backspace": "Backspace",
	"tab":       "Tab",
	"space":     "Space",
	"capslock":  "CapsLock",
	"caps_lock": "CapsLock",
	"delete":    "Delete",
	"del":       "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"page_up":   "PageUp",
	"pagedown":  "PageDown",
	"page_down": "PageDown",
	"up":        "↑",
	"down":      "↓",
	"left":      "←",
	"right":     "→",
	"shift":     "Shift",
	"lshift":    "Shift",
	"rshift":    "Shift",
	"ctrl":      "Ctrl",
	"lctrl":     "Ctrl",
	"rctrl":     "Ctrl",
	"control":   "Ctrl",
	"alt":       "Alt",
	"lalt":      "Alt",
	"ralt":      "AltGr",
	"altgr":     "AltGr",
	"cmd":       "Meta",
	"lcmd":      "Meta",
	"rcmd":      "Meta",
	"command":   "Meta",
	"meta":      "Meta",
	"super":     "Meta",
	"win":       "Meta",
	"comma":     ",",
	"period":    ".",
	"dot":       ".",
	"slash":     "/",
	"semicolon": ";",
	"quote":     "'",
	"backslash": "\\",
	"minus":     "-",
	"equal":     "=",
	"grave":     "`",
}

// KeyLabel normalizes a hook key name to the label used in the stats file,
// e.g. "a" -> "A", "return" -> "Enter", "up" -> "↑". Unknown multi-letter
// names are title-cased.
func KeyLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if utf8.RuneCountInString(name) == 1 {
		return strings.ToUpper(name)
	}
	lower := strings.ToLower(name)
	if label, ok := keyNames[lower]; ok {
		return label
	}
	if isFunctionKey(lower) {
		return strings.ToUpper(lower)
	}
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}

// UnknownKeyLabel labels a key the hook could not name.
func UnknownKeyLabel(code uint16) string {
	return fmt.Sprintf("Key(%d)", code)
}

// ButtonLabel names a hook mouse button (1 left, 2 right, 3 middle).
func ButtonLabel(button uint16) string {
	switch button {
	case 1:
		return "Left"
	case 2:
		return "Right"
	case 3:
		return "Middle"
	default:
		return fmt.Sprintf("Button(%d)", button)
	}
}

func isFunctionKey(name string) bool {
	if len(name) < 2 || len(name) > 3 || name[0] != 'f' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
