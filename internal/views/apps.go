package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
)

// AppsSection is one tab of the Apps page.
type AppsSection int

const (
	SectionProcesses AppsSection = iota
	SectionStartup
	SectionInstalled
)

var appsSections = []string{"Processes", "Startup", "Installed"}

func (s AppsSection) String() string {
	if int(s) < len(appsSections) {
		return appsSections[s]
	}
	return "unknown"
}

// Apps manages running processes, startup entries and installed programs.
type Apps struct {
	Base
	section  AppsSection
	selected [3]cursor

	filter    textinput.Model
	filtering bool
}

func NewApps(d Deps) router.View {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter installed apps"
	ti.CharLimit = 64
	return &Apps{Base: Base{Deps: d}, filter: ti}
}

func (v *Apps) Resources() []router.Resource {
	return []router.Resource{
		{Tag: TagProcesses, Load: loader(v.Store, TagProcesses, v.Client.Processes)},
		{Tag: TagStartup, Load: loader(v.Store, TagStartup, v.Client.StartupApps)},
		{Tag: TagInstalled, Load: loader(v.Store, TagInstalled, v.Client.InstalledApps)},
	}
}

// Section returns the visible tab.
func (v *Apps) Section() AppsSection {
	return v.section
}

func (v *Apps) CapturesInput() bool {
	return v.filtering
}

func (v *Apps) Bindings() []key.Binding {
	b := []key.Binding{keyLeft, keyRight, keyUp, keyDown}
	switch v.section {
	case SectionProcesses:
		b = append(b, keyKill)
	case SectionStartup:
		b = append(b, keyToggle)
	case SectionInstalled:
		b = append(b, keyFilter, keyUninstall)
	}
	return b
}

// processes returns the process list sorted by CPU, busiest first.
func (v *Apps) processes() []api.Process {
	procs, _ := Value[[]api.Process](v.Store, TagProcesses)
	out := make([]api.Process, len(procs))
	copy(out, procs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CPU > out[j].CPU })
	return out
}

func (v *Apps) startup() []api.StartupApp {
	apps, _ := Value[[]api.StartupApp](v.Store, TagStartup)
	return apps
}

// installed returns installed apps matching the filter, case-insensitively.
func (v *Apps) installed() []api.InstalledApp {
	apps, _ := Value[[]api.InstalledApp](v.Store, TagInstalled)
	q := strings.ToLower(strings.TrimSpace(v.filter.Value()))
	if q == "" {
		return apps
	}
	var out []api.InstalledApp
	for _, a := range apps {
		if strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, a)
		}
	}
	return out
}

func (v *Apps) count() int {
	switch v.section {
	case SectionProcesses:
		return len(v.processes())
	case SectionStartup:
		return len(v.startup())
	default:
		return len(v.installed())
	}
}

func (v *Apps) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.filtering {
		switch {
		case key.Matches(msg, keyEnter):
			v.filtering = false
			v.filter.Blur()
		case key.Matches(msg, keyEsc):
			v.filtering = false
			v.filter.Blur()
			v.filter.SetValue("")
		default:
			var cmd tea.Cmd
			v.filter, cmd = v.filter.Update(msg)
			v.selected[SectionInstalled] = 0
			return true, cmd
		}
		return true, nil
	}
	if v.HandleConfirm(msg) {
		return true, nil
	}

	cur := &v.selected[v.section]
	switch {
	case key.Matches(msg, keyLeft):
		v.section = AppsSection((int(v.section) + len(appsSections) - 1) % len(appsSections))
	case key.Matches(msg, keyRight):
		v.section = AppsSection((int(v.section) + 1) % len(appsSections))
	case key.Matches(msg, keyUp):
		cur.move(-1, v.count())
	case key.Matches(msg, keyDown):
		cur.move(1, v.count())
	case v.section == SectionProcesses && key.Matches(msg, keyKill):
		procs := v.processes()
		if len(procs) == 0 {
			return true, nil
		}
		p := procs[cur.index(len(procs))]
		v.Confirm(fmt.Sprintf("Kill %s (pid %d)?", p.Name, p.PID), func() {
			v.Action("Kill "+p.Name, func(ctx context.Context) (api.ActionResult, error) {
				return v.Client.KillProcess(ctx, p.PID)
			}, TagProcesses)
		})
	case v.section == SectionStartup && key.Matches(msg, keyToggle):
		apps := v.startup()
		if len(apps) == 0 {
			return true, nil
		}
		a := apps[cur.index(len(apps))]
		if !a.CanToggle {
			v.Store.SetNotice(a.Name+" cannot be toggled", true)
			return true, nil
		}
		verb := "Enable "
		if a.Enabled {
			verb = "Disable "
		}
		v.Action(verb+a.Name, func(ctx context.Context) (api.ActionResult, error) {
			return v.Client.ToggleStartup(ctx, a.Name, !a.Enabled)
		}, TagStartup)
	case v.section == SectionInstalled && key.Matches(msg, keyFilter):
		v.filtering = true
		return true, v.filter.Focus()
	case v.section == SectionInstalled && key.Matches(msg, keyUninstall):
		apps := v.installed()
		if len(apps) == 0 {
			return true, nil
		}
		a := apps[cur.index(len(apps))]
		if a.UninstallString == "" {
			v.Store.SetNotice(a.Name+" has no uninstaller", true)
			return true, nil
		}
		v.Confirm("Uninstall "+a.Name+"?", func() {
			v.Action("Uninstall "+a.Name, func(ctx context.Context) (api.ActionResult, error) {
				return v.Client.Uninstall(ctx, a.UninstallString)
			}, TagInstalled)
		})
	default:
		return false, nil
	}
	return true, nil
}

func (v *Apps) Render(width, height int) string {
	inner := contentWidth(width)
	rows := height - 6

	tabs := make([]string, len(appsSections))
	for i, name := range appsSections {
		if AppsSection(i) == v.section {
			tabs[i] = SelectedStyle.Render(" " + name + " ")
		} else {
			tabs[i] = MutedStyle.Render(" " + name + " ")
		}
	}

	var body, tag string
	switch v.section {
	case SectionProcesses:
		tag = TagProcesses
		procs := v.processes()
		body = v.list(len(procs), rows, inner, func(i int) string {
			p := procs[i]
			return fmt.Sprintf("%7d  %-28s %s  %9s", p.PID, truncate(p.Name, 28), percent(p.CPU), FormatMB(p.RAMMB))
		})
	case SectionStartup:
		tag = TagStartup
		apps := v.startup()
		body = v.list(len(apps), rows, inner, func(i int) string {
			a := apps[i]
			state := "off"
			if a.Enabled {
				state = "on "
			}
			lock := ""
			if !a.CanToggle {
				lock = " (locked)"
			}
			return fmt.Sprintf("[%s] %-28s %s%s", state, truncate(a.Name, 28), a.Location, lock)
		})
	case SectionInstalled:
		tag = TagInstalled
		apps := v.installed()
		body = v.list(len(apps), rows-1, inner, func(i int) string {
			a := apps[i]
			return fmt.Sprintf("%-36s %s", truncate(a.Name, 36), a.Version)
		})
		if v.filtering || v.filter.Value() != "" {
			body = v.filter.View() + "\n" + body
		}
	}
	if line, missing := placeholder(v.Store, tag); missing {
		body = line
	} else if s := staleLine(v.Store, tag); s != "" {
		body += "\n" + s
	}

	out := strings.Join(tabs, " ") + "\n" + Section(v.section.String(), fmt.Sprintf("%d", v.count()), body, width)
	if p := v.PromptLine(); p != "" {
		out += "\n" + p
	}
	return out
}

func (v *Apps) list(n, rows, width int, line func(i int) string) string {
	if n == 0 {
		return MutedStyle.Render("nothing here")
	}
	sel := v.selected[v.section].index(n)
	start, end := listWindow(n, sel, rows)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, row(line(i), i == sel, width))
	}
	return strings.Join(out, "\n")
}
