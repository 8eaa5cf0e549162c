// Package model defines shared data structures.
package model

import "time"

// Settings holds the resolved runtime configuration after merging the
// config file with CLI flags.
type Settings struct {
	DedupWindow time.Duration
	DataPath    string
	HistoryPath string
	Refresh     time.Duration
	Persist     time.Duration
	Shutdown    time.Duration
	TopKeys     int
	LogLevel    string
	LogPath     string
}

// HistoryFilter defines filters and options for history output.
type HistoryFilter struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// DayRecord is one archived day of activity.
type DayRecord struct {
	Date          time.Time
	TotalKeys     uint64
	TotalClicks   uint64
	TotalDistance float64
	UpdatedAt     time.Time
}

// HourRecord is the all-time activity for one local hour of the day.
type HourRecord struct {
	Hour   int
	Keys   uint64
	Clicks uint64
}

// KeyRecord is the archived all-time count for one key label.
type KeyRecord struct {
	Label string
	Count uint64
}
