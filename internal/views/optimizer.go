package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/ui"
)

// Optimizer drives the backend's AI optimizer and shows its CPU forecast.
type Optimizer struct {
	Base
	report []api.LogEntry
}

func NewOptimizer(d Deps) router.View {
	return &Optimizer{Base: Base{Deps: d}}
}

func (v *Optimizer) Resources() []router.Resource {
	return []router.Resource{
		{Tag: TagForecast, Load: loader(v.Store, TagForecast, v.Client.Forecast)},
	}
}

func (v *Optimizer) Bindings() []key.Binding {
	return []key.Binding{keyAutoMode, keyOptimize}
}

// AutoMode reports whether auto mode was last switched on from this client.
func AutoMode(s *Store) bool {
	on, _ := Value[bool](s, TagAutoMode)
	return on
}

func (v *Optimizer) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.HandleConfirm(msg) {
		return true, nil
	}
	switch {
	case key.Matches(msg, keyAutoMode):
		v.toggleAuto()
	case key.Matches(msg, keyOptimize):
		v.optimize()
	default:
		return false, nil
	}
	return true, nil
}

func (v *Optimizer) toggleAuto() {
	if v.busy != "" {
		return
	}
	want := !AutoMode(v.Store)
	label := "Auto mode off"
	if want {
		label = "Auto mode on"
	}
	v.busy = label
	client, store := v.Client, v.Store
	v.Go(func(ctx context.Context) func() {
		res, err := client.SetAutoMode(ctx, want)
		switch {
		case err != nil:
			store.SetNotice(label+": "+api.Message(err), true)
		case res.Failure() != "":
			store.SetNotice(label+": "+res.Failure(), true)
		default:
			store.Put(TagAutoMode, want)
			store.SetNotice(label, false)
		}
		return func() { v.busy = "" }
	})
}

func (v *Optimizer) optimize() {
	if v.busy != "" {
		return
	}
	v.busy = "Optimizing"
	client, store := v.Client, v.Store
	v.Go(func(ctx context.Context) func() {
		res := api.Fetch(ctx, client.OptimizeNow)
		if !res.OK() {
			store.SetNotice("Optimize: "+api.Message(res.Err), true)
			return func() { v.busy = "" }
		}
		msg := res.Value.Message
		if msg == "" {
			msg = "done"
		}
		if res.Value.FreedMB > 0 {
			msg += fmt.Sprintf(" (freed %s)", FormatMB(res.Value.FreedMB))
		}
		if f := res.Value.Failure(); f != "" {
			store.SetNotice("Optimize: "+f, true)
		} else {
			store.SetNotice("Optimize: "+msg, false)
		}
		return func() {
			v.busy = ""
			v.report = res.Value.Log
		}
	})
}

func (v *Optimizer) Render(width, height int) string {
	inner := contentWidth(width)
	var parts []string

	auto := Badge("AUTO OFF", ColorTextMuted)
	if AutoMode(v.Store) {
		auto = Badge("AUTO ON", ColorHealthy)
	}
	parts = append(parts, Section("AI Optimizer", "", auto+" "+MutedStyle.Render("a to toggle · o to optimize now"), width))

	var fc string
	if line, missing := placeholder(v.Store, TagForecast); missing {
		fc = line
	} else {
		f, _ := Value[api.Forecast](v.Store, TagForecast)
		fc = renderForecast(f, inner)
		if s := staleLine(v.Store, TagForecast); s != "" {
			fc += "\n" + s
		}
	}
	parts = append(parts, Section("CPU Forecast", "", fc, width))

	if len(v.report) > 0 {
		lines := v.report
		if limit := height - 16; limit > 0 && len(lines) > limit {
			lines = lines[len(lines)-limit:]
		}
		body := make([]string, len(lines))
		for i, l := range lines {
			status := OKStyle.Render("✓")
			if !strings.EqualFold(l.Status, "success") {
				status = WarningStyle.Render("•")
			}
			body[i] = status + " " + ValueStyle.Render(l.Action) + " " + MutedStyle.Render(truncate(l.Details, inner-lipgloss.Width(l.Action)-4))
		}
		parts = append(parts, Section("Last Run", "", strings.Join(body, "\n"), width))
	}

	if p := v.PromptLine(); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, "\n")
}

func renderForecast(f api.Forecast, width int) string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render("Trend ") + ValueStyle.Render(f.CurrentTrend))
	if len(f.Forecast) > 0 {
		values := make([]float64, len(f.Forecast))
		for i, p := range f.Forecast {
			values[i] = p.PredictedCPU
		}
		sw := width - 8
		if sw > 2*len(values) {
			sw = 2 * len(values)
		}
		b.WriteString("\n" + RenderColoredMiniSparkline(values, sw))

		rows := make([][]string, 0, len(f.Forecast))
		for _, p := range f.Forecast {
			rows = append(rows, []string{p.Time, fmt.Sprintf("%.1f%%", p.PredictedCPU), p.RiskLevel, p.Confidence})
		}
		b.WriteString("\n" + ui.RenderSimpleTable([]ui.TableColumn{
			{Title: "Time", Width: 10},
			{Title: "CPU", Width: 8},
			{Title: "Risk", Width: 10},
			{Title: "Conf.", Width: 6},
		}, rows))
	}
	if f.Recommendation != "" {
		b.WriteString("\n" + WarningStyle.Render("💡 "+truncate(f.Recommendation, width-3)))
	}
	return b.String()
}
