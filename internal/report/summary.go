package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/fingers/internal/model"
	"github.com/verte-zerg/fingers/internal/tally"
)

const hoursPerDay = 24

// Hourly holds per-hour totals indexed by local hour.
type Hourly struct {
	Keys   [hoursPerDay]uint64
	Clicks [hoursPerDay]uint64
}

// HourlyFromAggregate copies the hourly histograms out of agg.
func HourlyFromAggregate(agg tally.Aggregate) Hourly {
	var h Hourly
	for hour, n := range agg.HourlyKeyCounts {
		if int(hour) < hoursPerDay {
			h.Keys[hour] = n
		}
	}
	for hour, n := range agg.HourlyClickCounts {
		if int(hour) < hoursPerDay {
			h.Clicks[hour] = n
		}
	}
	return h
}

// HourlyFromRecords builds the histograms from archived hour rows.
func HourlyFromRecords(records []model.HourRecord) Hourly {
	var h Hourly
	for _, rec := range records {
		if rec.Hour < 0 || rec.Hour >= hoursPerDay {
			continue
		}
		h.Keys[rec.Hour] = rec.Keys
		h.Clicks[rec.Hour] = rec.Clicks
	}
	return h
}

// Peak returns the hour with the most key presses, or -1 when empty.
func (h Hourly) Peak() int {
	peak := -1
	var best uint64
	for hour, n := range h.Keys {
		if n > best {
			best = n
			peak = hour
		}
	}
	return peak
}

func floats(counts [hoursPerDay]uint64) []float64 {
	out := make([]float64, len(counts))
	for i, n := range counts {
		out[i] = float64(n)
	}
	return out
}

// RenderSummary prints today's and all-time totals for agg.
func RenderSummary(w io.Writer, agg tally.Aggregate, now time.Time) error {
	if agg.TotalKeys() == 0 && agg.TotalClicks() == 0 && agg.MouseDistance == 0 {
		_, err := fmt.Fprintln(w, "No activity recorded yet.")
		return err
	}
	today := tally.DateKey(now)
	peak := "-"
	if hour := agg.PeakHour(); hour >= 0 {
		peak = fmt.Sprintf("%02d:00", hour)
	}
	rows := [][]string{
		{"Today (" + today + ")", ""},
		{"  Keys", strconv.FormatUint(agg.TodayKeys(now), 10)},
		{"  Clicks", strconv.FormatUint(agg.TodayClicks(now), 10)},
		{"  Distance", Meters(agg.TodayDistance(now))},
		{"All time", ""},
		{"  Keys", strconv.FormatUint(agg.TotalKeys(), 10)},
		{"  Clicks", strconv.FormatUint(agg.TotalClicks(), 10)},
		{"  Distance", Kilometers(agg.MouseDistance)},
		{"  Scroll", strconv.FormatInt(agg.ScrollDistance, 10)},
		{"  Days tracked", strconv.Itoa(len(agg.DailyStats))},
		{"  Peak hour", peak},
	}
	lines := formatTable(nil, rows, map[int]bool{1: true})
	lines = append(lines, "")
	if buttons := buttonSummary(agg.MouseClicks); buttons != "" {
		lines = append(lines, "Buttons: "+buttons, "")
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func buttonSummary(clicks map[string]uint64) string {
	labels := make([]string, 0, len(clicks))
	for label := range clicks {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if clicks[labels[i]] == clicks[labels[j]] {
			return labels[i] < labels[j]
		}
		return clicks[labels[i]] > clicks[labels[j]]
	})
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = fmt.Sprintf("%s %d", label, clicks[label])
	}
	return strings.Join(parts, ", ")
}

// RenderTopKeys prints a ranked table of keys with their share of total.
func RenderTopKeys(w io.Writer, keys []tally.KeyCount, total uint64) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "No keys recorded yet.")
		return err
	}
	rows := make([][]string, 0, len(keys))
	for i, k := range keys {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			k.Label,
			strconv.FormatUint(k.Count, 10),
			Share(k.Count, total),
		})
	}
	lines := []string{"Top Keys"}
	lines = append(lines, formatTable([]string{"#", "Key", "Count", "Share"}, rows, map[int]bool{0: true, 2: true, 3: true})...)
	lines = append(lines, "")
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// RenderHourly prints one sparkline per histogram with an hour ruler.
// currentHour is marked under the ruler when it is in range.
func RenderHourly(w io.Writer, h Hourly, currentHour int) error {
	const labelWidth = 8
	ruler := "0     6     12    18   23"
	lines := []string{
		"Hourly Activity",
		fmt.Sprintf("%-*s%s", labelWidth, "Keys", Sparkline(floats(h.Keys))),
		fmt.Sprintf("%-*s%s", labelWidth, "Clicks", Sparkline(floats(h.Clicks))),
		fmt.Sprintf("%-*s%s", labelWidth, "", ruler),
	}
	if currentHour >= 0 && currentHour < hoursPerDay {
		lines = append(lines, fmt.Sprintf("%-*s%s^ now", labelWidth, "", strings.Repeat(" ", currentHour)))
	}
	if peak := h.Peak(); peak >= 0 {
		lines = append(lines, fmt.Sprintf("Peak hour: %02d:00 (%d keys)", peak, h.Keys[peak]))
	}
	lines = append(lines, "")
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
