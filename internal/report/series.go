// Package report renders activity statistics as plain text.
package report

import (
	"math"
	"strings"
)

// sparkRunes are ordered from empty to full.
var sparkRunes = []rune(" ▁▂▃▄▅▆▇█")

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// MovingAverage computes a rolling mean over the provided window size. The
// first window-1 points average over what is available so far.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders one block rune per value, scaled from zero to the
// series maximum. An all-zero series renders as blanks.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	var b strings.Builder
	top := len(sparkRunes) - 1
	for _, v := range values {
		idx := 0
		if maxVal > 0 && v > 0 {
			idx = int(math.Ceil(v / maxVal * float64(top)))
		}
		if idx > top {
			idx = top
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// resample fits values into width columns. Longer series are averaged per
// bucket, shorter ones repeat each value.
func resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	n := len(values)
	if n <= width {
		for i := range out {
			out[i] = values[i*n/width]
		}
		return out
	}
	for i := range out {
		start := i * n / width
		end := (i + 1) * n / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func seriesMax(values []float64) float64 {
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}
