package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/ui"
)

// Security shows the firewall state, listening ports and the last scan.
type Security struct {
	Base
}

func NewSecurity(d Deps) router.View {
	return &Security{Base: Base{Deps: d}}
}

func (v *Security) Resources() []router.Resource {
	return []router.Resource{
		{Tag: TagFirewall, Load: loader(v.Store, TagFirewall, v.Client.FirewallStatus)},
		{Tag: TagPorts, Load: loader(v.Store, TagPorts, v.Client.OpenPorts)},
	}
}

func (v *Security) Bindings() []key.Binding {
	return []key.Binding{keyFirewall}
}

func (v *Security) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.HandleConfirm(msg) {
		return true, nil
	}
	if key.Matches(msg, keyFirewall) {
		if fw, ok := Value[api.FirewallStatus](v.Store, TagFirewall); ok && fw.Enabled {
			v.Store.SetNotice("Firewall is already enabled", false)
			return true, nil
		}
		v.Action("Enable firewall", v.Client.EnableFirewall, TagFirewall)
		return true, nil
	}
	return false, nil
}

func (v *Security) Render(width, height int) string {
	var parts []string

	var scan string
	if line, missing := placeholder(v.Store, TagSecurity); missing {
		scan = line
	} else {
		sc, _ := Value[api.SecurityScan](v.Store, TagSecurity)
		if sc.Clean() {
			scan = OKStyle.Render("✓ No threats detected")
		} else {
			scan = ErrorStyle.Render("⚠ " + sc.Status)
			for _, t := range sc.Threats {
				scan += "\n" + WarningStyle.Render("• "+t)
			}
		}
	}
	parts = append(parts, Section("Threat Scan", "", scan, width))

	var fw string
	if line, missing := placeholder(v.Store, TagFirewall); missing {
		fw = line
	} else {
		st, _ := Value[api.FirewallStatus](v.Store, TagFirewall)
		if st.Enabled {
			fw = Badge("ENABLED", ColorHealthy)
		} else {
			fw = Badge("DISABLED", ColorCritical) + " " + MutedStyle.Render("press f to enable")
		}
		if s := staleLine(v.Store, TagFirewall); s != "" {
			fw += "\n" + s
		}
	}
	parts = append(parts, Section("Firewall", "", fw, width))

	var ports string
	if line, missing := placeholder(v.Store, TagPorts); missing {
		ports = line
	} else {
		list, _ := Value[[]api.OpenPort](v.Store, TagPorts)
		ports = portsTable(list, height-14)
		if s := staleLine(v.Store, TagPorts); s != "" {
			ports += "\n" + s
		}
	}
	list, _ := Value[[]api.OpenPort](v.Store, TagPorts)
	parts = append(parts, Section("Open Ports", fmt.Sprintf("%d", len(list)), ports, width))

	if p := v.PromptLine(); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, "\n")
}

func portsTable(ports []api.OpenPort, rows int) string {
	if len(ports) == 0 {
		return OKStyle.Render("✓ No listening ports")
	}
	if rows < 3 {
		rows = 3
	}
	if len(ports) > rows {
		ports = ports[:rows]
	}
	out := make([][]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, []string{strconv.Itoa(p.Port), p.Service, p.Risk})
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "Port", Width: 7},
		{Title: "Service", Width: 20},
		{Title: "Risk", Width: 10},
	}, out)
}
