package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/fingers/internal/model"
	"github.com/verte-zerg/fingers/internal/tally"
)

const dateLayout = "2006-01-02"

// Archive is the read side of the history store.
type Archive interface {
	ListDays(ctx context.Context, filter model.HistoryFilter) ([]model.DayRecord, error)
	ListHours(ctx context.Context) ([]model.HourRecord, error)
	TopKeys(ctx context.Context, n int) ([]model.KeyRecord, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Days   []model.DayRecord
	Hourly Hourly
	Keys   []model.KeyRecord
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, archive Archive, filter model.HistoryFilter, topKeys int) (Report, error) {
	days, err := archive.ListDays(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list days: %w", err)
	}
	hours, err := archive.ListHours(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list hours: %w", err)
	}
	keys, err := archive.TopKeys(ctx, topKeys)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list keys: %w", err)
	}
	return Report{
		Days:   days,
		Hourly: HourlyFromRecords(hours),
		Keys:   keys,
	}, nil
}

// RenderDays prints per-day totals, oldest first.
func RenderDays(w io.Writer, days []model.DayRecord) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "No days archived yet.")
		return err
	}
	rows := make([][]string, 0, len(days)+1)
	var keys, clicks uint64
	var dist float64
	for _, d := range days {
		rows = append(rows, []string{
			d.Date.Format(dateLayout),
			strconv.FormatUint(d.TotalKeys, 10),
			strconv.FormatUint(d.TotalClicks, 10),
			Meters(d.TotalDistance),
		})
		keys += d.TotalKeys
		clicks += d.TotalClicks
		dist += d.TotalDistance
	}
	rows = append(rows, []string{
		fmt.Sprintf("Total (%d days)", len(days)),
		strconv.FormatUint(keys, 10),
		strconv.FormatUint(clicks, 10),
		Meters(dist),
	})
	lines := []string{"Daily Totals"}
	lines = append(lines, formatTable([]string{"Date", "Keys", "Clicks", "Distance"}, rows, map[int]bool{1: true, 2: true, 3: true})...)
	lines = append(lines, "")
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// RenderDayCurves plots keys and clicks per day smoothed over window days.
func RenderDayCurves(w io.Writer, days []model.DayRecord, window, width, height int, useColor bool) error {
	if len(days) == 0 {
		return nil
	}
	keys := make([]float64, len(days))
	clicks := make([]float64, len(days))
	for i, d := range days {
		keys[i] = float64(d.TotalKeys)
		clicks[i] = float64(d.TotalClicks)
	}
	title := "Daily Activity"
	if window > 1 {
		title = fmt.Sprintf("Daily Activity (%d-day average)", window)
	}
	return PlotSeries(w, title, []Series{
		{Name: "Keys/day", Values: MovingAverage(keys, window)},
		{Name: "Clicks/day", Values: MovingAverage(clicks, window)},
	}, width, height, useColor)
}

// RenderArchivedKeys prints the archived keys with their share of the
// listed keys.
func RenderArchivedKeys(w io.Writer, keys []model.KeyRecord) error {
	counts := make([]tally.KeyCount, 0, len(keys))
	var total uint64
	for _, k := range keys {
		total += k.Count
		counts = append(counts, tally.KeyCount{Label: k.Label, Count: k.Count})
	}
	return RenderTopKeys(w, counts, total)
}
