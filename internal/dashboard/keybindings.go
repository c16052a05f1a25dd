package dashboard

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/views"
)

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyRefresh    = "r"
	KeyNextView   = "tab"
	KeyPrevView   = "shift+tab"
	KeyLogout     = "L"
	KeyToggleHelp = "?"
	KeyCollapse   = "esc"
)

// prompter is implemented by pages that can hold a pending confirmation.
type prompter interface {
	Prompting() bool
}

// HandleKeyMsg processes keyboard input. Returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyQuitAlt {
		m.quitting = true
		return true, tea.Quit
	}

	page := m.app.router.ActiveView()

	// Text inputs and confirmations get every key first.
	if c, ok := page.(views.InputCapturer); ok && c.CapturesInput() {
		return m.forward(page, msg)
	}
	if p, ok := page.(prompter); ok && p.Prompting() {
		return m.forward(page, msg)
	}

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	// If help is showing, Esc closes it
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		if m.app.ReloadActive() > 0 {
			m.app.store.SetNotice("Refreshing "+m.app.router.Active().Title(), false)
		}
		return true, nil

	case KeyNextView:
		m.cycleView(1)
		return true, nil

	case KeyPrevView:
		m.cycleView(-1)
		return true, nil

	case KeyLogout:
		m.showHelp = false
		m.app.Logout()
		return true, nil
	}

	if id, ok := m.viewForDigit(key); ok {
		m.app.Navigate(id)
		return true, nil
	}

	return m.forward(page, msg)
}

func (m *Model) forward(page router.View, msg tea.KeyMsg) (bool, tea.Cmd) {
	if h, ok := page.(views.KeyHandler); ok {
		return h.HandleKey(msg)
	}
	return false, nil
}

// viewForDigit maps "1".."9" to the sidebar entry with that number.
func (m *Model) viewForDigit(key string) (router.ID, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return "", false
	}
	ids := m.app.router.Views()
	if n < 1 || n > len(ids) {
		return "", false
	}
	return ids[n-1], true
}

func (m *Model) cycleView(delta int) {
	ids := m.app.router.Views()
	if len(ids) == 0 {
		return
	}
	cur := 0
	active := m.app.router.Active()
	for i, id := range ids {
		if id == active {
			cur = i
			break
		}
	}
	next := (cur + delta + len(ids)) % len(ids)
	m.app.Navigate(ids[next])
}
