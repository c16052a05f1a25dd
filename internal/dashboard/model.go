package dashboard

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/views"
)

// Layout constants
const (
	sidebarWidth = 18
	noticeTTL    = 6 * time.Second
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(views.ColorTextPrimary).
			Background(views.ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(views.ColorTextMuted).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(views.ColorBorder).
			Width(sidebarWidth - 1)
)

// Model is the Bubble Tea model for the dashboard. All shared state lives
// in the App; the model only keeps what the terminal needs.
type Model struct {
	app      *App
	help     help.Model
	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewModel creates the dashboard model for a started App.
func NewModel(app *App) Model {
	return Model{app: app, help: help.New()}
}

// Init waits for the first queued continuation.
func (m Model) Init() tea.Cmd {
	return m.app.queue.Wait()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postedMsg:
		m.app.queue.Drain()
		return m, m.app.queue.Wait()

	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		// Keys may post work (navigation does); run it before redrawing.
		m.app.queue.Drain()
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.app.router.Active() == router.Login {
		return m.renderPage(m.app.router.ActiveView(), m.width, m.height)
	}
	return m.renderDashboard()
}

// renderDashboard renders header, widgets, sidebar and page, and footer.
func (m Model) renderDashboard() string {
	header := m.renderHeader()
	cards := m.app.widgets.RenderCards(m.width)
	footer := m.renderNotice() + "\n" + footerStyle.Render(m.renderFooter())

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(cards) - lipgloss.Height(footer)
	if bodyHeight < 6 {
		bodyHeight = 6
	}
	pageWidth := m.width - sidebarWidth
	if pageWidth < 20 {
		pageWidth = 20
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Height(bodyHeight).Render(m.renderSidebar()),
		" ",
		m.renderPage(m.app.router.ActiveView(), pageWidth-1, bodyHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, cards, body, footer)
}

// renderHeader renders the title bar with the API address and connection state.
func (m Model) renderHeader() string {
	title := views.TitleStyle.Render("AutoSense")
	stats := lipgloss.NewStyle().
		Foreground(views.ColorTextSecondary).
		Render(fmt.Sprintf(" | %s | %s", m.app.router.Active().Title(), m.app.client.BaseURL()))

	state := views.Badge("LIVE", views.ColorHealthy)
	if m.app.client.Offline() {
		state = views.Badge("OFFLINE", views.ColorCritical)
	}
	return headerStyle.Render(title+stats) + " " + state
}

// renderSidebar lists the pages with their jump keys.
func (m Model) renderSidebar() string {
	active := m.app.router.Active()
	var lines []string
	for i, id := range m.app.router.Views() {
		label := fmt.Sprintf(" %d %s", i+1, id.Title())
		if id == active {
			lines = append(lines, views.SelectedStyle.Width(sidebarWidth-2).Render(label))
		} else {
			lines = append(lines, views.LabelStyle.Render(label))
		}
	}
	lines = append(lines, "", views.MutedStyle.Render(" L log out"))
	return strings.Join(lines, "\n")
}

// renderPage draws the page, or a note when nothing is mounted.
func (m Model) renderPage(page router.View, width, height int) string {
	if err := m.app.router.LastError(); err != nil {
		return views.ErrorLine(err)
	}
	if r, ok := page.(views.Renderer); ok {
		return r.Render(width, height)
	}
	return views.MutedStyle.Render("nothing to show")
}

// renderNotice shows the latest action outcome while it is fresh.
func (m Model) renderNotice() string {
	n := m.app.store.Notice(noticeTTL)
	switch {
	case n.Text == "":
		return ""
	case n.Err:
		return views.ErrorStyle.Render(" ✗ " + n.Text)
	default:
		return views.OKStyle.Render(" ✓ " + n.Text)
	}
}

// Run starts the app and blocks until the user quits. Log output goes to
// logPath so it never lands on the screen; an empty path discards it.
func Run(app *App, logPath string) error {
	log.SetOutput(io.Discard)
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
			if f, err := tea.LogToFile(logPath, "senseboard"); err == nil {
				defer f.Close()
			}
		}
	}

	app.Start()
	defer app.Close()

	p := tea.NewProgram(NewModel(app), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
