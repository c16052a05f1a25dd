package views

import "github.com/charmbracelet/bubbles/key"

// Page-level bindings. Global navigation lives in the dashboard keymap.
var (
	keyUp = key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	)
	keyDown = key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	)
	keyLeft = key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev"),
	)
	keyRight = key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next"),
	)
	keyYes = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	)
	keyEnter = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	)
	keyEsc = key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	)

	keyBoost = key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "quick boost"),
	)
	keyScan = key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "rescan"),
	)
	keyClean = key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clean junk"),
	)
	keyDelete = key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete file"),
	)
	keyKill = key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "kill"),
	)
	keyToggle = key.NewBinding(
		key.WithKeys("t", " "),
		key.WithHelp("t", "toggle"),
	)
	keyUninstall = key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "uninstall"),
	)
	keyFilter = key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	)
	keyFirewall = key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "enable firewall"),
	)
	keyAutoMode = key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "auto mode"),
	)
	keyOptimize = key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "optimize now"),
	)

	keyNextField = key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	)
	keyPrevField = key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "prev field"),
	)
	keyNextMode = key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next method"),
	)
	keyPrevMode = key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "prev method"),
	)
)

// cursor is a clamped selection index into a list.
type cursor int

func (c cursor) index(n int) int {
	if n == 0 {
		return 0
	}
	i := int(c)
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (c *cursor) move(delta, n int) {
	*c = cursor(cursor(c.index(n) + delta).index(n))
}
