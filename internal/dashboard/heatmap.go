package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/fingers/internal/report"
)

// keyCap is one key on the rendered board. width is in standard key units.
type keyCap struct {
	label string
	width float64
}

var keyboardRows = [][]keyCap{
	{{"`", 1}, {"1", 1}, {"2", 1}, {"3", 1}, {"4", 1}, {"5", 1}, {"6", 1}, {"7", 1}, {"8", 1}, {"9", 1}, {"0", 1}, {"-", 1}, {"=", 1}, {"Backspace", 2}},
	{{"Tab", 1.5}, {"Q", 1}, {"W", 1}, {"E", 1}, {"R", 1}, {"T", 1}, {"Y", 1}, {"U", 1}, {"I", 1}, {"O", 1}, {"P", 1}, {"[", 1}, {"]", 1}, {"\\", 1.5}},
	{{"CapsLock", 1.75}, {"A", 1}, {"S", 1}, {"D", 1}, {"F", 1}, {"G", 1}, {"H", 1}, {"J", 1}, {"K", 1}, {"L", 1}, {";", 1}, {"'", 1}, {"Enter", 2.25}},
	{{"Shift", 2.25}, {"Z", 1}, {"X", 1}, {"C", 1}, {"V", 1}, {"B", 1}, {"N", 1}, {"M", 1}, {",", 1}, {".", 1}, {"/", 1}, {"Shift", 2.75}},
	{{"Ctrl", 1.25}, {"Meta", 1.25}, {"Alt", 1.25}, {"Space", 6.25}, {"AltGr", 1.25}, {"Meta", 1.25}, {"Ctrl", 1.25}},
}

var capNames = map[string]string{
	"Backspace": "Bksp",
	"CapsLock":  "Caps",
	"Space":     "",
}

// heatLevels run from unused to very high usage.
var heatLevels = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A9A")).Background(lipgloss.Color("#2A2A3A")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#4A6AA8")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#4AB8A8")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#E0B050")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#E07050")),
}

// heatLevel buckets count relative to peak: <1% unused, then quarters.
func heatLevel(count, peak uint64) int {
	if peak == 0 || count == 0 {
		return 0
	}
	ratio := float64(count) / float64(peak)
	switch {
	case ratio < 0.01:
		return 0
	case ratio < 0.25:
		return 1
	case ratio < 0.5:
		return 2
	case ratio < 0.75:
		return 3
	default:
		return 4
	}
}

// renderHeatmap draws the board with unitWidth cells per key unit. Each key
// shows its label on the first line and a compact count on the second.
func renderHeatmap(counts map[string]uint64, unitWidth int) string {
	var peak uint64
	for _, n := range counts {
		peak = max(peak, n)
	}

	rows := make([]string, 0, len(keyboardRows))
	for _, row := range keyboardRows {
		caps := make([]string, 0, len(row))
		for _, k := range row {
			width := max(int(k.width*float64(unitWidth))-1, 1)
			name, ok := capNames[k.label]
			if !ok {
				name = k.label
			}
			count := counts[k.label]
			value := ""
			if count > 0 {
				value = report.Compact(count)
			}
			style := heatLevels[heatLevel(count, peak)]
			face := centerCell(name, width) + "\n" + centerCell(value, width)
			caps = append(caps, style.Render(face))
		}
		rows = append(rows, joinWithGap(caps))
	}
	legend := make([]string, 0, len(heatLevels)+1)
	legend = append(legend, "Usage:")
	for i, label := range []string{"none", "low", "medium", "high", "peak"} {
		legend = append(legend, heatLevels[i].Render(" "+label+" "))
	}
	rows = append(rows, strings.Join(legend, " "))
	return strings.Join(rows, "\n")
}

func joinWithGap(cells []string) string {
	parts := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			parts = append(parts, " ")
		}
		parts = append(parts, c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func centerCell(s string, width int) string {
	s = runewidth.Truncate(s, width, "")
	pad := width - runewidth.StringWidth(s)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
