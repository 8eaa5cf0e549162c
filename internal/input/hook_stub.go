//go:build !cgo

package input

import "context"

type hookSource struct{}

// NewHookSource returns a Source that always fails: the global hook needs cgo.
func NewHookSource() Source {
	return hookSource{}
}

func (hookSource) Stream(_ context.Context, _ func(Event) error) error {
	return ErrHookUnavailable
}
