package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/autosense/senseboard/internal/api"
)

// RetryHint is appended to inline fetch errors.
const RetryHint = "press r to retry"

// placeholder returns the line to show instead of tag's content when there
// is nothing usable yet: a loading line, or the error of the first fetch.
func placeholder(s *Store, tag string) (string, bool) {
	e, ok := s.Get(tag)
	if !ok {
		return MutedStyle.Render(SpinnerFrames[0] + " loading…"), true
	}
	if e.Value == nil {
		if e.Err != nil {
			return ErrorLine(e.Err), true
		}
		return MutedStyle.Render("no data"), true
	}
	return "", false
}

// staleLine warns that the value shown is older than the last failed refresh.
func staleLine(s *Store, tag string) string {
	if err := s.Err(tag); err != nil {
		return WarningStyle.Render("⚠ refresh failed: " + api.Message(err) + " · " + RetryHint)
	}
	return ""
}

// ErrorLine renders err inline with the retry hint.
func ErrorLine(err error) string {
	return ErrorStyle.Render("✗ "+api.Message(err)) + MutedStyle.Render(" · "+RetryHint)
}

// FormatMB renders a size given in megabytes.
func FormatMB(mb float64) string {
	if mb < 0 {
		mb = 0
	}
	return humanize.IBytes(uint64(mb * 1024 * 1024))
}

// FormatGB renders a size given in gigabytes.
func FormatGB(gb float64) string {
	return FormatMB(gb * 1024)
}

// truncate cuts s to width display cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// listWindow returns the [start, end) range of a list of n items that
// keeps selected visible in rows lines.
func listWindow(n, selected, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := selected - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

// row renders one selectable list line.
func row(text string, selected bool, width int) string {
	text = padRight(truncate(text, width-2), width-2)
	if selected {
		return SelectedStyle.Render("▸ " + text)
	}
	return "  " + text
}

func percent(v float64) string {
	return fmt.Sprintf("%5.1f%%", v)
}

// contentWidth is the inner width of a Section of the given outer width.
func contentWidth(width int) int {
	if width < 8 {
		return 4
	}
	return width - 4
}
