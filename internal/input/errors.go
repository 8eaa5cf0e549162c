package input

import "errors"

// ErrHookUnavailable indicates the binary was built without the global input hook.
var ErrHookUnavailable = errors.New("global input hook not available in this build (requires cgo)")

// ErrHookClosed indicates the hook stopped delivering events.
var ErrHookClosed = errors.New("global input hook closed its event channel")
