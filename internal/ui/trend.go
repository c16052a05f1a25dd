package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// trendBlocks are the eight bar heights, lowest first.
var trendBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderTrend draws percentage samples as a one-line bar chart on a fixed
// 0-100 scale, so a flat 20% line sits low instead of mid-height. Values
// outside the scale are clamped. The line takes the color of the newest
// sample's level; grade is UsageLevel or HealthLevel.
func RenderTrend(samples []float64, width int, grade func(float64) Level) string {
	if len(samples) == 0 || width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	if grade == nil {
		grade = UsageLevel
	}

	var sb strings.Builder
	top := len(trendBlocks) - 1
	for _, v := range samples {
		sb.WriteRune(trendBlocks[int(clampPercent(v)/100*float64(top)+0.5)])
	}

	newest := samples[len(samples)-1]
	return lipgloss.NewStyle().Foreground(grade(newest).Color()).Render(sb.String())
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
