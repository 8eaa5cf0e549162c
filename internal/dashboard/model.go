// Package dashboard provides the live Bubble Tea activity dashboard.
package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fingers/internal/report"
	"github.com/verte-zerg/fingers/internal/tally"
)

const (
	tabOverview = iota
	tabKeyboard
	tabTopKeys
	tabActivity
)

const (
	defaultRefresh = 100 * time.Millisecond
	defaultTopKeys = 20
	activityHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	keyBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4AB8A8"))
	clickBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0B050"))
	nowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#E07050")).Bold(true)
)

// Source is the read side of the tally store.
type Source interface {
	Snapshot() tally.Aggregate
	Now() time.Time
	AdapterActive() bool
	AdapterError() (string, bool)
	Path() string
}

// Options configures the dashboard.
type Options struct {
	Refresh time.Duration
	TopKeys int
}

type tickMsg time.Time

// Model implements the Bubble Tea dashboard.
type Model struct {
	src     Source
	refresh time.Duration
	topN    int

	snap   tally.Aggregate
	now    time.Time
	active bool
	errMsg string

	tabs      []string
	activeTab int
	keyTable  table.Model

	width  int
	height int
}

// NewModel constructs a dashboard reading from src.
func NewModel(src Source, opts Options) *Model {
	if opts.Refresh <= 0 {
		opts.Refresh = defaultRefresh
	}
	if opts.TopKeys <= 0 {
		opts.TopKeys = defaultTopKeys
	}
	m := &Model{
		src:     src,
		refresh: opts.Refresh,
		topN:    opts.TopKeys,
		tabs:    []string{"Overview", "Keyboard", "Top Keys", "Activity"},
	}
	m.keyTable = table.New(
		table.WithColumns(keyColumns()),
		table.WithHeight(opts.TopKeys),
	)
	m.keyTable.SetStyles(keyTableStyles())
	m.poll()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// poll takes a fresh snapshot and liveness reading from the store.
func (m *Model) poll() {
	m.snap = m.src.Snapshot()
	m.now = m.src.Now()
	m.active = m.src.AdapterActive()
	m.errMsg = ""
	if msg, ok := m.src.AdapterError(); ok {
		m.errMsg = msg
	}
	m.keyTable.SetRows(keyRows(m.snap, m.topN))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.poll()
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		_, bodyHeight, _ := m.layoutHeights()
		m.keyTable.SetWidth(msg.Width)
		m.keyTable.SetHeight(max(1, min(m.topN, bodyHeight-1)))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, nil
		case "right", "l", "tab":
			m.moveTab(1)
			return m, nil
		case "1", "2", "3", "4":
			idx, _ := strconv.Atoi(msg.String())
			m.activeTab = idx - 1
			m.syncFocus()
			return m, nil
		}
		if m.activeTab == tabTopKeys {
			var cmd tea.Cmd
			m.keyTable, cmd = m.keyTable.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = ((m.activeTab+delta)%count + count) % count
	m.syncFocus()
}

func (m *Model) syncFocus() {
	if m.activeTab == tabTopKeys {
		m.keyTable.Focus()
	} else {
		m.keyTable.Blur()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 2
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	status := offlineStyle.Render("OFFLINE")
	if m.active {
		status = liveStyle.Render("LIVE")
	}
	line := fmt.Sprintf("%s  Session %s", status, report.Clock(m.snap.SessionDuration(m.now)))
	if m.errMsg != "" {
		line += "  " + errorStyle.Render(truncateLine("Input error: "+m.errMsg, max(m.width-30, 10)))
	}
	return m.renderTabs() + "\n" + line
}

func (m *Model) renderFooter() string {
	totals := fmt.Sprintf("Keys %d  Clicks %d  WPM %.0f  Data %s",
		m.snap.TotalKeys(), m.snap.TotalClicks(), m.snap.TypingRate(m.now), m.src.Path())
	help := "Nav: left/right/tab  Tabs: 1-4  Quit: q"
	return headerStyle.Render(truncateLine(totals, m.width)) + "\n" + headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabKeyboard:
		unit := 6
		if m.width > 0 && m.width < 95 {
			unit = 4
		}
		return renderHeatmap(m.snap.KeyCounts, unit)
	case tabTopKeys:
		if len(m.snap.KeyCounts) == 0 {
			return "No keys recorded yet."
		}
		return m.keyTable.View()
	case tabActivity:
		return renderActivity(report.HourlyFromAggregate(m.snap), m.now.Hour())
	default:
		return m.renderOverview()
	}
}

func (m *Model) renderOverview() string {
	snap, now := m.snap, m.now
	today := []string{
		metricCard("Keys Today", strconv.FormatUint(snap.TodayKeys(now), 10)),
		metricCard("Clicks Today", strconv.FormatUint(snap.TodayClicks(now), 10)),
		metricCard("Distance", report.Meters(snap.TodayDistance(now))),
		metricCard("WPM", fmt.Sprintf("%.0f", snap.TypingRate(now))),
	}
	total := []string{
		metricCard("Total Keys", strconv.FormatUint(snap.TotalKeys(), 10)),
		metricCard("Total Clicks", strconv.FormatUint(snap.TotalClicks(), 10)),
		metricCard("Total Distance", report.Kilometers(snap.MouseDistance)),
		metricCard("Scroll", strconv.FormatInt(snap.ScrollDistance, 10)),
	}
	buttons := make([]string, 0, 3)
	for _, label := range []string{"Left", "Right", "Middle"} {
		buttons = append(buttons, fmt.Sprintf("%s %d", label, snap.MouseClicks[label]))
	}
	mouse := headerStyle.Render("Mouse buttons: " + strings.Join(buttons, "  "))

	if m.width > 0 && m.width < 80 {
		return strings.Join(append(append(today, total...), mouse), "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, today...),
		lipgloss.JoinHorizontal(lipgloss.Top, total...),
		mouse,
	)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Width(18).Render(content)
}

func keyColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Key", Width: 12},
		{Title: "Count", Width: 10},
		{Title: "Share", Width: 7},
	}
}

func keyRows(snap tally.Aggregate, n int) []table.Row {
	total := snap.TotalKeys()
	top := snap.TopKeys(n)
	rows := make([]table.Row, 0, len(top))
	for i, k := range top {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			k.Label,
			strconv.FormatUint(k.Count, 10),
			report.Share(k.Count, total),
		})
	}
	return rows
}

func keyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// renderActivity draws one column pair per hour: keys then clicks, each
// scaled to its own peak, with the current hour highlighted.
func renderActivity(h report.Hourly, currentHour int) string {
	var keyPeak, clickPeak uint64
	for hour := range h.Keys {
		keyPeak = max(keyPeak, h.Keys[hour])
		clickPeak = max(clickPeak, h.Clicks[hour])
	}
	if keyPeak == 0 && clickPeak == 0 {
		return "No activity recorded yet."
	}

	lines := make([]string, 0, activityHeight+3)
	lines = append(lines, keyBarStyle.Render("█ keys")+"  "+clickBarStyle.Render("█ clicks")+
		headerStyle.Render(fmt.Sprintf("  peak %s keys / %s clicks", report.Compact(keyPeak), report.Compact(clickPeak))))
	for row := activityHeight; row >= 1; row-- {
		var b strings.Builder
		for hour := range h.Keys {
			b.WriteString(keyBarStyle.Render(barCell(h.Keys[hour], keyPeak, row)))
			b.WriteString(clickBarStyle.Render(barCell(h.Clicks[hour], clickPeak, row)))
			b.WriteByte(' ')
		}
		lines = append(lines, b.String())
	}
	var axis strings.Builder
	for hour := range h.Keys {
		label := fmt.Sprintf("%02d ", hour)
		if hour == currentHour {
			label = nowStyle.Render(fmt.Sprintf("%02d", hour)) + " "
		}
		axis.WriteString(label)
	}
	lines = append(lines, axis.String())
	return strings.Join(lines, "\n")
}

func barCell(count, peak uint64, row int) string {
	if peak == 0 || count == 0 {
		return " "
	}
	height := max(int(float64(count)/float64(peak)*activityHeight+0.5), 1)
	if height >= row {
		return "█"
	}
	return " "
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
