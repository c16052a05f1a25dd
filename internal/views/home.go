package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/ui"
)

// maxRecords caps the history table on Home.
const maxRecords = 8

// RecordsPollInterval is how often Home refreshes the recent samples
// while it is the active page.
const RecordsPollInterval = 5 * time.Second

// loader adapts a client call into a router resource loader that fills the store.
func loader[T any](s *Store, tag string, fetch func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		return fetchInto(ctx, s, tag, fetch, func() bool { return ctx.Err() == nil })
	}
}

// fetchInto runs fetch and stores the outcome while alive holds. A result
// that arrives after its owner went away is dropped.
func fetchInto[T any](ctx context.Context, s *Store, tag string, fetch func(context.Context) (T, error), alive func() bool) error {
	res := api.Fetch(ctx, fetch)
	if !res.OK() {
		s.FailIf(alive, tag, res.Err)
		return res.Err
	}
	if !s.PutIf(alive, tag, res.Value) {
		return context.Canceled
	}
	return nil
}

// Home is the overview page: health score, system specs, recent samples.
type Home struct {
	Base
}

func NewHome(d Deps) router.View {
	return &Home{Base: Base{Deps: d}}
}

// Mount starts the records poll. It lives exactly as long as the page.
func (v *Home) Mount(ctx context.Context, c router.Container) error {
	if err := v.Base.Mount(ctx, c); err != nil {
		return err
	}
	// The mount-time resource load already covers the first run.
	first := true
	v.Every("home:records", RecordsPollInterval, func(ctx context.Context) {
		if first {
			first = false
			return
		}
		v.pollRecords(ctx)
	})
	return nil
}

func (v *Home) pollRecords(ctx context.Context) {
	alive := func() bool { return ctx.Err() == nil && v.Alive() }
	if err := fetchInto(ctx, v.Store, TagRecords, v.Client.LastRecords, alive); err != nil {
		if alive() {
			v.Log.Debug("home records: %v", err)
		}
		return
	}
	v.Post(func() {})
}

func (v *Home) Resources() []router.Resource {
	return []router.Resource{
		{Tag: TagSpecs, Load: loader(v.Store, TagSpecs, v.Client.SystemSpecs)},
		{Tag: TagRecords, Load: loader(v.Store, TagRecords, v.Client.LastRecords)},
	}
}

func (v *Home) Bindings() []key.Binding {
	return []key.Binding{keyBoost}
}

func (v *Home) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.HandleConfirm(msg) {
		return true, nil
	}
	if key.Matches(msg, keyBoost) {
		v.Action("Quick boost", v.Client.BoostRAM)
		return true, nil
	}
	return false, nil
}

func (v *Home) Render(width, height int) string {
	inner := contentWidth(width)
	var parts []string

	var health strings.Builder
	if line, missing := placeholder(v.Store, TagStatus); missing {
		health.WriteString(line)
	} else {
		st, _ := Value[api.Status](v.Store, TagStatus)
		score := st.HealthScore
		bar := RenderGradientBar(inner-12, score)
		fmt.Fprintf(&health, "%s %s", bar, ValueStyle.Render(fmt.Sprintf("%5.1f/100", score)))
		if score < HealthWarningBelow {
			health.WriteString("\n" + WarningStyle.Render("⚠ System health is low. Press b for a quick boost."))
		} else {
			health.WriteString("\n" + OKStyle.Render("✓ System is running smoothly"))
		}
	}
	parts = append(parts, Section("System Health", "", health.String(), width))

	var specs string
	if line, missing := placeholder(v.Store, TagSpecs); missing {
		specs = line
	} else {
		sp, _ := Value[api.SystemSpecs](v.Store, TagSpecs)
		specs = strings.Join([]string{
			LabelStyle.Render("OS        ") + ValueStyle.Render(truncate(sp.OS, inner-10)),
			LabelStyle.Render("Processor ") + ValueStyle.Render(truncate(sp.Processor, inner-10)),
			LabelStyle.Render("Memory    ") + ValueStyle.Render(FormatGB(sp.RAMTotalGB)),
		}, "\n")
		if s := staleLine(v.Store, TagSpecs); s != "" {
			specs += "\n" + s
		}
	}
	parts = append(parts, Section("System Specs", "", specs, width))

	var history string
	if line, missing := placeholder(v.Store, TagRecords); missing {
		history = line
	} else {
		recs, _ := Value[[]api.Record](v.Store, TagRecords)
		history = recordsTable(recs)
		if s := staleLine(v.Store, TagRecords); s != "" {
			history += "\n" + s
		}
	}
	parts = append(parts, Section("Recent Samples", fmt.Sprintf("%d", countRecords(v.Store)), history, width))

	if p := v.PromptLine(); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, "\n")
}

func countRecords(s *Store) int {
	recs, _ := Value[[]api.Record](s, TagRecords)
	return len(recs)
}

func recordsTable(recs []api.Record) string {
	if len(recs) == 0 {
		return MutedStyle.Render("no samples recorded yet")
	}
	if len(recs) > maxRecords {
		recs = recs[len(recs)-maxRecords:]
	}
	rows := make([][]string, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		rows = append(rows, []string{r.Timestamp, r.CPU, r.RAM, r.Disk, r.HealthScore})
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "Time", Width: 20},
		{Title: "CPU %", Width: 7},
		{Title: "RAM %", Width: 7},
		{Title: "Disk %", Width: 7},
		{Title: "Health", Width: 7},
	}, rows)
}
