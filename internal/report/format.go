package report

import (
	"fmt"
	"time"
)

// The tracker stores raw pixels; the display treats 1000 px as a metre.
const (
	pixelsPerMeter     = 1000.0
	pixelsPerKilometer = 1000.0 * pixelsPerMeter
)

// Meters formats a pixel distance in metres.
func Meters(px float64) string {
	return fmt.Sprintf("%.2f m", px/pixelsPerMeter)
}

// Kilometers formats a pixel distance in kilometres.
func Kilometers(px float64) string {
	return fmt.Sprintf("%.2f km", px/pixelsPerKilometer)
}

// Compact shortens large counts, e.g. 1500 -> "1.5k", 2300000 -> "2.3M".
func Compact(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%dk", n/1000)
	case n >= 1000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Clock formats a duration as HH:MM:SS.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// Share formats part as a percentage of total.
func Share(part, total uint64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}
