// Package tally aggregates keyboard and mouse activity into durable counters.
package tally

import (
	"math"
	"sort"
	"time"
)

const (
	// TypingWindow is the trailing window used for the typing rate.
	TypingWindow = 60 * time.Second
	charsPerWord = 5.0
	dateLayout   = "2006-01-02"
	hoursPerDay  = 24
)

// DayTotals holds the per-day totals.
type DayTotals struct {
	TotalKeys     uint64  `json:"total_keys"`
	TotalClicks   uint64  `json:"total_clicks"`
	TotalDistance float64 `json:"total_distance"`
}

// KeyCount pairs a key label with its press count.
type KeyCount struct {
	Label string
	Count uint64
}

// Aggregate holds every counter for one accounting period. SessionStart and
// RecentKeys are transient and never persisted.
type Aggregate struct {
	KeyCounts         map[string]uint64    `json:"key_counts"`
	MouseClicks       map[string]uint64    `json:"mouse_clicks"`
	MouseDistance     float64              `json:"mouse_distance"`
	ScrollDistance    int64                `json:"scroll_distance"`
	HourlyKeyCounts   map[uint8]uint64     `json:"hourly_key_counts"`
	HourlyClickCounts map[uint8]uint64     `json:"hourly_click_counts"`
	DailyStats        map[string]DayTotals `json:"daily_stats"`

	SessionStart time.Time   `json:"-"`
	RecentKeys   []time.Time `json:"-"`
}

// New returns an empty aggregate whose session starts at now.
func New(now time.Time) Aggregate {
	agg := Aggregate{SessionStart: now}
	agg.ensureMaps()
	return agg
}

// DateKey formats the calendar date of t (in t's location) as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// RecordKey counts a key press at now.
func (a *Aggregate) RecordKey(label string, now time.Time) {
	a.ensureMaps()
	a.KeyCounts[label]++
	a.HourlyKeyCounts[uint8(now.Hour())]++

	date := DateKey(now)
	day := a.DailyStats[date]
	day.TotalKeys++
	a.DailyStats[date] = day

	a.pruneRecent(now)
	a.RecentKeys = append(a.RecentKeys, now)
}

// RecordClick counts a mouse button press at now.
func (a *Aggregate) RecordClick(label string, now time.Time) {
	a.ensureMaps()
	a.MouseClicks[label]++
	a.HourlyClickCounts[uint8(now.Hour())]++

	date := DateKey(now)
	day := a.DailyStats[date]
	day.TotalClicks++
	a.DailyStats[date] = day
}

// RecordMovement adds a cursor travel distance in pixels. Negative and
// non-finite distances are ignored.
func (a *Aggregate) RecordMovement(distance float64, now time.Time) {
	if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return
	}
	a.ensureMaps()
	a.MouseDistance += distance

	date := DateKey(now)
	day := a.DailyStats[date]
	day.TotalDistance += distance
	a.DailyStats[date] = day
}

// RecordScroll adds the magnitude of a wheel delta.
func (a *Aggregate) RecordScroll(delta int64) {
	if delta < 0 {
		delta = -delta
	}
	if delta < 0 {
		// math.MinInt64 has no positive counterpart.
		return
	}
	a.ScrollDistance += delta
}

// TypingRate estimates words per minute from the keys pressed in the
// trailing TypingWindow, assuming five characters per word.
func (a *Aggregate) TypingRate(now time.Time) float64 {
	count := 0
	for _, t := range a.RecentKeys {
		if now.Sub(t) < TypingWindow {
			count++
		}
	}
	return float64(count) / charsPerWord
}

// Day returns the totals for a YYYY-MM-DD date, zero-valued if absent.
func (a *Aggregate) Day(date string) DayTotals {
	return a.DailyStats[date]
}

// TodayKeys returns the key presses recorded on now's date.
func (a *Aggregate) TodayKeys(now time.Time) uint64 {
	return a.Day(DateKey(now)).TotalKeys
}

// TodayClicks returns the clicks recorded on now's date.
func (a *Aggregate) TodayClicks(now time.Time) uint64 {
	return a.Day(DateKey(now)).TotalClicks
}

// TodayDistance returns the cursor distance recorded on now's date.
func (a *Aggregate) TodayDistance(now time.Time) float64 {
	return a.Day(DateKey(now)).TotalDistance
}

// TopKeys returns the n most pressed keys, highest count first. Ties are
// ordered by label.
func (a *Aggregate) TopKeys(n int) []KeyCount {
	if n <= 0 || len(a.KeyCounts) == 0 {
		return nil
	}
	items := make([]KeyCount, 0, len(a.KeyCounts))
	for label, count := range a.KeyCounts {
		items = append(items, KeyCount{Label: label, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Label < items[j].Label
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// SessionDuration returns the time elapsed since the session started.
func (a *Aggregate) SessionDuration(now time.Time) time.Duration {
	if a.SessionStart.IsZero() {
		return 0
	}
	d := now.Sub(a.SessionStart)
	if d < 0 {
		return 0
	}
	return d
}

// TotalKeys sums every key press.
func (a *Aggregate) TotalKeys() uint64 {
	var total uint64
	for _, c := range a.KeyCounts {
		total += c
	}
	return total
}

// TotalClicks sums every mouse button press.
func (a *Aggregate) TotalClicks() uint64 {
	var total uint64
	for _, c := range a.MouseClicks {
		total += c
	}
	return total
}

// Dates returns the recorded dates in ascending order.
func (a *Aggregate) Dates() []string {
	dates := make([]string, 0, len(a.DailyStats))
	for date := range a.DailyStats {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// PeakHour returns the hour with the most combined keys and clicks, or -1
// when nothing has been recorded.
func (a *Aggregate) PeakHour() int {
	peak := -1
	var best uint64
	for h := 0; h < hoursPerDay; h++ {
		total := a.HourlyKeyCounts[uint8(h)] + a.HourlyClickCounts[uint8(h)]
		if total > best {
			best = total
			peak = h
		}
	}
	return peak
}

// Clone returns a deep copy.
func (a *Aggregate) Clone() Aggregate {
	out := Aggregate{
		KeyCounts:         make(map[string]uint64, len(a.KeyCounts)),
		MouseClicks:       make(map[string]uint64, len(a.MouseClicks)),
		MouseDistance:     a.MouseDistance,
		ScrollDistance:    a.ScrollDistance,
		HourlyKeyCounts:   make(map[uint8]uint64, len(a.HourlyKeyCounts)),
		HourlyClickCounts: make(map[uint8]uint64, len(a.HourlyClickCounts)),
		DailyStats:        make(map[string]DayTotals, len(a.DailyStats)),
		SessionStart:      a.SessionStart,
	}
	for k, v := range a.KeyCounts {
		out.KeyCounts[k] = v
	}
	for k, v := range a.MouseClicks {
		out.MouseClicks[k] = v
	}
	for k, v := range a.HourlyKeyCounts {
		out.HourlyKeyCounts[k] = v
	}
	for k, v := range a.HourlyClickCounts {
		out.HourlyClickCounts[k] = v
	}
	for k, v := range a.DailyStats {
		out.DailyStats[k] = v
	}
	if len(a.RecentKeys) > 0 {
		out.RecentKeys = append([]time.Time(nil), a.RecentKeys...)
	}
	return out
}

func (a *Aggregate) pruneRecent(now time.Time) {
	keep := 0
	for keep < len(a.RecentKeys) && now.Sub(a.RecentKeys[keep]) >= TypingWindow {
		keep++
	}
	if keep == 0 {
		return
	}
	n := copy(a.RecentKeys, a.RecentKeys[keep:])
	a.RecentKeys = a.RecentKeys[:n]
}

func (a *Aggregate) ensureMaps() {
	if a.KeyCounts == nil {
		a.KeyCounts = map[string]uint64{}
	}
	if a.MouseClicks == nil {
		a.MouseClicks = map[string]uint64{}
	}
	if a.HourlyKeyCounts == nil {
		a.HourlyKeyCounts = map[uint8]uint64{}
	}
	if a.HourlyClickCounts == nil {
		a.HourlyClickCounts = map[uint8]uint64{}
	}
	if a.DailyStats == nil {
		a.DailyStats = map[string]DayTotals{}
	}
}
