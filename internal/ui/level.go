package ui

import "github.com/charmbracelet/lipgloss"

// Thresholds shared by every usage reading (CPU, RAM, disk). The
// dashboard palette maps the same levels to its own colors.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Level grades a reading.
type Level int

const (
	LevelOK Level = iota
	LevelElevated
	LevelCritical
)

// UsageLevel grades a usage percentage: higher is worse.
func UsageLevel(percent float64) Level {
	switch {
	case percent >= CriticalThreshold:
		return LevelCritical
	case percent >= WarningThreshold:
		return LevelElevated
	default:
		return LevelOK
	}
}

// HealthLevel grades a 0-100 health score: higher is better.
func HealthLevel(score float64) Level {
	return UsageLevel(100 - score)
}

func (l Level) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelElevated:
		return "elevated"
	default:
		return "ok"
	}
}

func (l Level) Color() lipgloss.Color {
	switch l {
	case LevelCritical:
		return ColorError
	case LevelElevated:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

func (l Level) Symbol() string {
	switch l {
	case LevelCritical:
		return SymbolFail
	case LevelElevated:
		return SymbolProgress
	default:
		return SymbolSuccess
	}
}
