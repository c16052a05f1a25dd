// Package ui provides the styled output used by senseboard's one-shot
// commands (status, login, config). The full-screen dashboard has its own
// palette in package views.
//
// # Components Overview
//
//	Spinner - Animated status indicator for network round trips
//	Table   - Non-interactive Bubbles table for metric listings
//	Trend   - One-line bar chart of recent percentage samples
//	Level   - OK / elevated / critical grading of usage and health
//
// # Color Scheme
//
// Colors are ANSI codes so output follows the terminal theme:
//
//	ColorSuccess   (green)  - Successful operations, healthy values
//	ColorError     (red)    - Failures, critical values
//	ColorWarning   (yellow) - Warnings, elevated values
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - In-progress indicators
//
// Use DisableColors() to switch to monochrome output.
//
// # Spinner Usage
//
//	s := ui.NewSpinner(os.Stdout, "Signing in")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail(reason)
package ui
