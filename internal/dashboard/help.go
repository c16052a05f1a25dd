package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/views"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines the global shortcuts shown in the help overlay.
var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Refresh this page"},
	{Key: "Tab", Desc: "Next page"},
	{Key: "Shift+Tab", Desc: "Previous page"},
	{Key: "1-6", Desc: "Jump to page"},
	{Key: "L", Desc: "Log out"},
	{Key: "Esc", Desc: "Close / cancel"},
	{Key: "?", Desc: "Toggle this help"},
}

// footerKeys are the global bindings listed in the footer after the page's own.
var footerKeys = []key.Binding{
	key.NewBinding(key.WithKeys(KeyNextView), key.WithHelp("tab", "pages")),
	key.NewBinding(key.WithKeys(KeyRefresh), key.WithHelp("r", "refresh")),
	key.NewBinding(key.WithKeys(KeyToggleHelp), key.WithHelp("?", "help")),
	key.NewBinding(key.WithKeys(KeyQuit), key.WithHelp("q", "quit")),
}

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(views.ColorAccent).
			Background(views.ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(views.ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(views.ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(views.ColorTextSecondary)
)

// renderHelpOverlay renders a centered help box with the global shortcuts
// followed by the active page's own.
func (m Model) renderHelpOverlay() string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, binding := range helpBindings {
		line := helpKeyStyle.Render(binding.Key) + helpDescStyle.Render(binding.Desc)
		lines = append(lines, line)
	}

	if page := m.pageBindings(); len(page) > 0 {
		lines = append(lines, "")
		lines = append(lines, helpTitleStyle.Render(m.app.router.Active().Title()))
		for _, b := range page {
			h := b.Help()
			lines = append(lines, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
		}
	}

	lines = append(lines, "")
	lines = append(lines, views.LabelStyle.Render("Press ? to close"))

	helpBox := helpBoxStyle.Render(strings.Join(lines, "\n"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(views.ColorDarkBg),
	)
}

// pageBindings returns the active page's own key bindings.
func (m Model) pageBindings() []key.Binding {
	if h, ok := m.app.router.ActiveView().(views.Helper); ok {
		return h.Bindings()
	}
	return nil
}

// renderFooter renders the short help line: page keys first, then global ones.
func (m Model) renderFooter() string {
	bindings := append(m.pageBindings(), footerKeys...)
	h := m.help
	h.Width = m.width
	return h.ShortHelpView(bindings)
}
