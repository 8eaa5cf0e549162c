package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/fingers/internal/report"
	"github.com/verte-zerg/fingers/internal/tally"
)

type sourceStub struct {
	agg    tally.Aggregate
	now    time.Time
	active bool
	errMsg string
	polls  int
}

func (s *sourceStub) Snapshot() tally.Aggregate {
	s.polls++
	return s.agg.Clone()
}
func (s *sourceStub) Now() time.Time      { return s.now }
func (s *sourceStub) AdapterActive() bool { return s.active }
func (s *sourceStub) Path() string        { return "/tmp/stats.json" }

func (s *sourceStub) AdapterError() (string, bool) {
	return s.errMsg, s.errMsg != ""
}

func newStub() *sourceStub {
	now := time.Date(2026, 6, 1, 14, 0, 0, 0, time.Local)
	agg := tally.New(now.Add(-90 * time.Second))
	agg.RecordKey("A", now)
	agg.RecordKey("A", now)
	agg.RecordKey("Space", now)
	agg.RecordClick("Left", now)
	return &sourceStub{agg: agg, now: now, active: true}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(*Model)
}

func TestTickPollsSnapshot(t *testing.T) {
	src := newStub()
	m := sized(t, NewModel(src, Options{Refresh: time.Millisecond}))
	before := src.polls

	src.agg.RecordKey("B", src.now)
	updated, cmd := m.Update(tickMsg(src.now))
	if cmd == nil {
		t.Fatalf("expected the next tick to be scheduled")
	}
	m = updated.(*Model)
	if src.polls != before+1 {
		t.Fatalf("expected one poll per tick")
	}
	if m.snap.KeyCounts["B"] != 1 {
		t.Fatalf("expected refreshed snapshot")
	}
}

func TestHeaderShowsLiveness(t *testing.T) {
	src := newStub()
	m := sized(t, NewModel(src, Options{}))
	view := m.View()
	if !strings.Contains(view, "LIVE") || !strings.Contains(view, "00:01:30") {
		t.Fatalf("expected live status and session time:\n%s", view)
	}

	src.active = false
	src.errMsg = "permission denied"
	m.Update(tickMsg(src.now))
	view = m.View()
	if !strings.Contains(view, "OFFLINE") || !strings.Contains(view, "permission denied") {
		t.Fatalf("expected offline status with error:\n%s", view)
	}
}

func TestTabNavigation(t *testing.T) {
	m := sized(t, NewModel(newStub(), Options{}))

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabKeyboard {
		t.Fatalf("expected keyboard tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabActivity {
		t.Fatalf("expected wrap to activity tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if m.activeTab != tabTopKeys || !m.keyTable.Focused() {
		t.Fatalf("expected focused top keys tab")
	}
	if !strings.Contains(m.View(), "Space") {
		t.Fatalf("expected key table rows in view")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestKeyRows(t *testing.T) {
	rows := keyRows(newStub().agg, 1)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][1] != "A" || rows[0][2] != "2" || rows[0][3] != "66.7%" {
		t.Fatalf("unexpected row %v", rows[0])
	}
}

func TestHeatLevel(t *testing.T) {
	cases := []struct {
		count, peak uint64
		want        int
	}{
		{0, 100, 0},
		{0, 0, 0},
		{10, 100, 1},
		{30, 100, 2},
		{60, 100, 3},
		{100, 100, 4},
	}
	for _, tc := range cases {
		if got := heatLevel(tc.count, tc.peak); got != tc.want {
			t.Fatalf("heatLevel(%d, %d) = %d, want %d", tc.count, tc.peak, got, tc.want)
		}
	}
}

func TestRenderHeatmap(t *testing.T) {
	out := renderHeatmap(map[string]uint64{"A": 1500, "Q": 3}, 5)
	for _, want := range []string{"Bksp", "Caps", "1.5k", "Usage:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in heatmap:\n%s", want, out)
		}
	}
}

func TestRenderActivity(t *testing.T) {
	var h report.Hourly
	if got := renderActivity(h, 3); !strings.Contains(got, "No activity") {
		t.Fatalf("expected empty message, got %q", got)
	}
	h.Keys[9] = 10
	h.Clicks[9] = 2
	out := renderActivity(h, 9)
	if lines := strings.Split(out, "\n"); len(lines) != activityHeight+2 {
		t.Fatalf("expected %d lines, got %d", activityHeight+2, len(lines))
	}
	if !strings.Contains(out, "23") {
		t.Fatalf("expected hour axis")
	}
}
