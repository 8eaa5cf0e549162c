package input

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// maxReplayGap caps the pause between paced replay events.
const maxReplayGap = 5 * time.Second

// ReplaySource streams events from a JSON-lines file, one Event per line.
// Blank lines and lines starting with '#' are skipped.
type ReplaySource struct {
	Path string
	// Pace sleeps between events according to their timestamps.
	Pace bool
}

// Stream implements Source.
func (r ReplaySource) Stream(ctx context.Context, emit func(Event) error) error {
	file, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("failed to open replay file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only replay file.
			_ = cerr
		}
	}()
	return streamLines(ctx, file, r.Pace, emit)
}

func streamLines(ctx context.Context, rd io.Reader, pace bool, emit func(Event) error) error {
	scanner := bufio.NewScanner(rd)
	lineNo := 0
	var prev time.Time
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return fmt.Errorf("replay line %d: %w", lineNo, err)
		}
		if ev.Kind == 0 {
			return fmt.Errorf("replay line %d: missing event kind", lineNo)
		}
		if pace && !prev.IsZero() && !ev.Time.IsZero() {
			if err := sleepCtx(ctx, clampGap(ev.Time.Sub(prev))); err != nil {
				return err
			}
		}
		if !ev.Time.IsZero() {
			prev = ev.Time
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read replay file: %w", err)
	}
	return nil
}

func clampGap(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > maxReplayGap {
		return maxReplayGap
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
