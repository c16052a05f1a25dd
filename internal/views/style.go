package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/ui"
)

// Dashboard color palette - Gen Z Electric Synthwave
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for metrics - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	ColorGraph       = lipgloss.Color("#00FFFF") // Neon cyan
	ColorGraphUpload = lipgloss.Color("#BF40FF")
)

// Thresholds for metric severity levels, shared with the CLI.
const (
	WarningThreshold  = ui.WarningThreshold
	CriticalThreshold = ui.CriticalThreshold
)

// HealthWarningBelow is the health score under which Home nags for a boost.
const HealthWarningBelow = 70.0

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	OKStyle = lipgloss.NewStyle().
		Foreground(ColorHealthy)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorBorder).
			Bold(true)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorWarning).
			Bold(true).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// SpinnerFrames is the braille spinner used by loading placeholders.
var SpinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// MetricColor returns the color for a percentage-based metric:
// green below 70%, amber up to 90%, red above.
func MetricColor(percent float64) lipgloss.Color {
	return levelColor(ui.UsageLevel(percent))
}

func levelColor(l ui.Level) lipgloss.Color {
	switch l {
	case ui.LevelCritical:
		return ColorCritical
	case ui.LevelElevated:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// HealthColor inverts MetricColor: a high health score is good.
func HealthColor(score float64) lipgloss.Color {
	return levelColor(ui.HealthLevel(score))
}

// MetricStyle returns a style with the appropriate foreground color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// RiskColor maps an AI risk level to a color.
func RiskColor(level string) lipgloss.Color {
	switch strings.ToUpper(level) {
	case "CRITICAL":
		return ColorCritical
	case "WARNING":
		return ColorWarning
	case "STABLE":
		return ColorHealthy
	}
	return ColorTextMuted
}

// Badge renders text as a filled pill in the given color.
func Badge(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().
		Foreground(ColorDarkBg).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(text)
}

// ProgressBar renders a progress bar with threshold-based coloring.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	percent = clampPercent(percent)

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	return lipgloss.NewStyle().
		Foreground(MetricColor(percent)).
		Render(strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled))
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		TitleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

// Section renders a titled box around body, one content line per body line.
func Section(title, value, body string, width int) string {
	lines := []string{SectionHeader(title, value, width)}
	for _, l := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		lines = append(lines, SectionContentLine(l, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}
