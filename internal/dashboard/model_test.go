package dashboard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/views"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func startedModel(t *testing.T, token string) (Model, testApp) {
	t.Helper()
	a := newTestApp(t, fakeAPI(t, nil), token)
	a.Start()
	m := NewModel(a.App)
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	return m, a
}

func TestDigitKeysJumpToPages(t *testing.T) {
	m, a := startedModel(t, "tok")

	tests := []struct {
		key  string
		want router.ID
	}{
		{"2", router.Cleaner},
		{"3", router.Apps},
		{"4", router.Security},
		{"5", router.Optimizer},
		{"6", router.Disk},
		{"1", router.Home},
		{"9", router.Home}, // out of range is ignored
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, _ = press(t, m, runes(tt.key))
			assert.Equal(t, tt.want, a.Router().Active())
		})
	}
}

func TestTabCyclesPages(t *testing.T) {
	m, a := startedModel(t, "tok")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, router.Cleaner, a.Router().Active())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, router.Disk, a.Router().Active(), "shift+tab wraps to the last page")

	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, router.Home, a.Router().Active())
}

func TestHelpToggle(t *testing.T) {
	m, _ := startedModel(t, "tok")

	m, _ = press(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	assert.Contains(t, m.View(), "quick boost", "page bindings are listed")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			m, _ := startedModel(t, "tok")
			m, cmd := press(t, m, msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.True(t, m.quitting)
			assert.Empty(t, m.View())
		})
	}
}

func TestLoginPageCapturesKeys(t *testing.T) {
	m, a := startedModel(t, "")
	require.Equal(t, router.Login, a.Router().Active())

	// q and digits are typed into the form, not handled globally.
	m, _ = press(t, m, runes("q"))
	assert.False(t, m.quitting)
	m, _ = press(t, m, runes("2"))
	assert.Equal(t, router.Login, a.Router().Active())

	// ctrl+c still quits.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.quitting)
}

func TestLogoutKey(t *testing.T) {
	m, a := startedModel(t, "tok")

	_, _ = press(t, m, runes("L"))
	assert.False(t, a.Guard().HasSession())
	assert.Equal(t, router.Login, a.Router().Active())
	assert.False(t, a.Widgets().Running())
}

func TestConfirmationTakesKeysFirst(t *testing.T) {
	m, a := startedModel(t, "tok")

	m, _ = press(t, m, runes("2"))
	require.Equal(t, router.Cleaner, a.Router().Active())
	a.Router().Wait()
	a.Queue().Drain()
	a.Store().Put(views.TagJunk, api.JunkScan{FileCount: 2, TotalSizeMB: 3})

	m, _ = press(t, m, runes("c"))
	assert.Contains(t, m.View(), "Delete 2 junk files")

	// "3" answers the prompt (no) instead of switching pages.
	m, _ = press(t, m, runes("3"))
	assert.Equal(t, router.Cleaner, a.Router().Active())
	assert.NotContains(t, m.View(), "[y/N]")
}

func TestDashboardView(t *testing.T) {
	m, a := startedModel(t, "tok")
	drainUntil(t, a, func() bool {
		_, ok := views.Value[api.Status](a.Store(), views.TagStatus)
		return ok
	})

	out := m.View()
	for _, want := range []string{"AutoSense", "Dashboard", "Cleaner", "Disk", "System", "Network", "AI Risk", "Security", "LIVE"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "OFFLINE")
}

func TestLoginViewIsFullScreen(t *testing.T) {
	m, _ := startedModel(t, "")

	out := m.View()
	assert.Contains(t, out, "sign in to continue")
	assert.NotContains(t, out, "AI Risk")
}

func TestNoticeShownAfterRefresh(t *testing.T) {
	m, _ := startedModel(t, "tok")

	m, _ = press(t, m, runes("r"))
	assert.Contains(t, m.View(), "Refreshing Dashboard")
}

func TestCardLayout(t *testing.T) {
	tests := []struct {
		width     int
		wantWidth int
		wantRow   int
	}{
		{200, 50, 4},
		{160, 40, 4},
		{100, 50, 2},
		{60, 60, 1},
		{0, 40, 2},
	}
	for _, tt := range tests {
		w, n := cardLayout(tt.width)
		assert.Equal(t, tt.wantWidth, w, "width %d", tt.width)
		assert.Equal(t, tt.wantRow, n, "width %d", tt.width)
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("CPU usage is high because a background indexer is running", 20, 2)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "…")

	assert.Len(t, wrap("short", 20, 2), 1)
	assert.Empty(t, wrap("", 20, 2))
}
