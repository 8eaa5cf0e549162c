package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 6
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	// eighths of a cell per block rune step
	cellSteps = 8
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

// PlotSeries renders each series as a column chart of the given size. A
// width of 0 fits the terminal; color is used when forced or when w is a
// terminal, unless NO_COLOR is set.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)
	useColor := shouldUseColor(w, forceColor)

	var lines []string
	if title != "" {
		lines = append(lines, title)
	}
	drawn := 0
	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		color := ""
		if useColor {
			color = colorPalette[i%len(colorPalette)]
		}
		lines = append(lines, plotColumns(s, width, height, color)...)
		drawn++
	}
	if drawn == 0 {
		return nil
	}
	lines = append(lines, "")
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func plotColumns(s Series, width, height int, color string) []string {
	values := resample(s.Values, width)
	peak := seriesMax(values)
	lines := make([]string, 0, height+1)
	lines = append(lines, fmt.Sprintf("%s (max %.1f)", s.Name, peak))

	full := height * cellSteps
	for row := height - 1; row >= 0; row-- {
		label := ""
		switch row {
		case height - 1:
			label = fmt.Sprintf("%.0f", peak)
		case 0:
			label = "0"
		}
		var b strings.Builder
		b.WriteString(runewidth.FillLeft(runewidth.Truncate(label, axisLabelWidth, ""), axisLabelWidth))
		b.WriteString(axisSeparator)
		if color != "" {
			b.WriteString(color)
		}
		for _, v := range values {
			level := 0
			if peak > 0 && v > 0 {
				level = max(1, int(v/peak*float64(full)+0.5))
			}
			fill := min(max(level-row*cellSteps, 0), cellSteps)
			b.WriteRune(sparkRunes[fill])
		}
		if color != "" {
			b.WriteString(colorReset)
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisLabelWidth-runewidth.StringWidth(axisSeparator), minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
