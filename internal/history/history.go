// Package history archives daily activity in SQLite so it outlives the
// JSON stats file.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/fingers/internal/model"
	"github.com/verte-zerg/fingers/internal/tally"

	_ "modernc.org/sqlite" // SQLite driver.
)

const dateLayout = "2006-01-02"

// Store wraps SQLite access for archived activity.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS days (
			date TEXT PRIMARY KEY,
			total_keys INTEGER NOT NULL,
			total_clicks INTEGER NOT NULL,
			total_distance REAL NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hours (
			hour INTEGER PRIMARY KEY,
			keys INTEGER NOT NULL,
			clicks INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS keys (
			label TEXT PRIMARY KEY,
			count INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Sync upserts every day, hour and key counter from agg in one transaction.
// Archived values never decrease, so syncing a reset stats file keeps the
// history intact.
func (s *Store) Sync(ctx context.Context, agg tally.Aggregate, now time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	updatedAt := now.Format(time.RFC3339Nano)
	if err = execEach(ctx, tx,
		`INSERT INTO days (date, total_keys, total_clicks, total_distance, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			total_keys = MAX(total_keys, excluded.total_keys),
			total_clicks = MAX(total_clicks, excluded.total_clicks),
			total_distance = MAX(total_distance, excluded.total_distance),
			updated_at = excluded.updated_at`,
		len(agg.DailyStats), func(exec func(args ...any) error) error {
			for _, date := range agg.Dates() {
				day := agg.DailyStats[date]
				if err := exec(date, int64(day.TotalKeys), int64(day.TotalClicks), day.TotalDistance, updatedAt); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return fmt.Errorf("failed to sync days: %w", err)
	}

	hours := hourSet(agg)
	if err = execEach(ctx, tx,
		`INSERT INTO hours (hour, keys, clicks) VALUES (?, ?, ?)
		 ON CONFLICT(hour) DO UPDATE SET
			keys = MAX(keys, excluded.keys),
			clicks = MAX(clicks, excluded.clicks)`,
		len(hours), func(exec func(args ...any) error) error {
			for _, hour := range hours {
				if err := exec(int(hour), int64(agg.HourlyKeyCounts[hour]), int64(agg.HourlyClickCounts[hour])); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return fmt.Errorf("failed to sync hours: %w", err)
	}

	if err = execEach(ctx, tx,
		`INSERT INTO keys (label, count) VALUES (?, ?)
		 ON CONFLICT(label) DO UPDATE SET count = MAX(count, excluded.count)`,
		len(agg.KeyCounts), func(exec func(args ...any) error) error {
			for label, count := range agg.KeyCounts {
				if err := exec(label, int64(count)); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return fmt.Errorf("failed to sync keys: %w", err)
	}

	return tx.Commit()
}

func execEach(ctx context.Context, tx *sql.Tx, query string, n int, fill func(exec func(args ...any) error) error) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	return fill(func(args ...any) error {
		_, err := stmt.ExecContext(ctx, args...)
		return err
	})
}

func hourSet(agg tally.Aggregate) []uint8 {
	seen := map[uint8]struct{}{}
	for h := range agg.HourlyKeyCounts {
		seen[h] = struct{}{}
	}
	for h := range agg.HourlyClickCounts {
		seen[h] = struct{}{}
	}
	hours := make([]uint8, 0, len(seen))
	for h := range seen {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })
	return hours
}

// ListDays returns archived days in ascending date order. Since keeps days
// on or after the given local date; Last keeps only the most recent N.
func (s *Store) ListDays(ctx context.Context, filter model.HistoryFilter) ([]model.DayRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Since != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.Since.Format(dateLayout))
	}
	query := fmt.Sprintf(`SELECT date, total_keys, total_clicks, total_distance, updated_at
		FROM days
		WHERE %s
		ORDER BY date DESC`, strings.Join(clauses, " AND "))
	if filter.Last > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var days []model.DayRecord
	for rows.Next() {
		var rec model.DayRecord
		var date, updatedAt string
		if err := rows.Scan(&date, &rec.TotalKeys, &rec.TotalClicks, &rec.TotalDistance, &updatedAt); err != nil {
			return nil, err
		}
		parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			return nil, err
		}
		rec.Date = parsed
		if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, err
		}
		days = append(days, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days, nil
}

// ListHours returns the archived hourly totals ordered by hour.
func (s *Store) ListHours(ctx context.Context) ([]model.HourRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT hour, keys, clicks FROM hours ORDER BY hour ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var hours []model.HourRecord
	for rows.Next() {
		var rec model.HourRecord
		if err := rows.Scan(&rec.Hour, &rec.Keys, &rec.Clicks); err != nil {
			return nil, err
		}
		hours = append(hours, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hours, nil
}

// TopKeys returns the n most pressed archived keys, ties broken by label.
// n <= 0 returns every key.
func (s *Store) TopKeys(ctx context.Context, n int) ([]model.KeyRecord, error) {
	query := `SELECT label, count FROM keys ORDER BY count DESC, label ASC`
	args := []any{}
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var keys []model.KeyRecord
	for rows.Next() {
		var rec model.KeyRecord
		if err := rows.Scan(&rec.Label, &rec.Count); err != nil {
			return nil, err
		}
		keys = append(keys, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
