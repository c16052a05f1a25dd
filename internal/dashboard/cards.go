package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/util"
	"github.com/autosense/senseboard/internal/views"
)

// Card layout constants
const (
	cardGraphHeight = 1  // braille rows per network series
	cardMinWidth    = 38 // below this cards stack
	cardBarWidth    = 10
	cardTrendWidth  = 10
)

// widgetPending returns the line shown in place of a widget's content when
// it has no usable value yet.
func widgetPending(s *views.Store, tag string) (string, bool) {
	e, ok := s.Get(tag)
	if !ok {
		return views.MutedStyle.Render(views.SpinnerFrames[0] + " loading…"), true
	}
	if e.Value == nil {
		if e.Err != nil {
			return views.ErrorLine(e.Err), true
		}
		return views.MutedStyle.Render("no data"), true
	}
	return "", false
}

// card draws one bordered widget.
func card(title, body string, width int) string {
	return views.CardStyle.Width(width - 2).Render(views.TitleStyle.Render(title) + "\n" + body)
}

// RenderCards draws the always-live widgets for a terminal width.
func (w *Widgets) RenderCards(width int) string {
	cardWidth, perRow := cardLayout(width)
	cards := []string{
		w.renderGauges(cardWidth),
		w.renderNetwork(cardWidth),
		w.renderRisk(cardWidth),
		w.renderSecurity(cardWidth),
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// cardLayout fits four cards on one row when possible, else two, else one.
func cardLayout(width int) (cardWidth, perRow int) {
	if width <= 0 {
		width = 80
	}
	for _, n := range []int{4, 2} {
		if width/n >= cardMinWidth {
			return width / n, n
		}
	}
	return width, 1
}

func (w *Widgets) renderGauges(width int) string {
	if line, missing := widgetPending(w.store, views.TagStatus); missing {
		return card("System", line, width)
	}
	s, _ := views.Value[api.Status](w.store, views.TagStatus)

	gauge := func(label string, name string, v float64) string {
		trend := views.RenderColoredMiniSparkline(w.gauges.Snapshot(name), cardTrendWidth)
		return fmt.Sprintf("%s %s %s %s",
			views.LabelStyle.Render(fmt.Sprintf("%-4s", label)),
			views.ProgressBar(cardBarWidth, v),
			views.MetricStyle(v).Render(fmt.Sprintf("%5.1f%%", v)),
			trend)
	}
	lines := []string{
		gauge("CPU", SeriesCPU, s.CPU),
		gauge("RAM", SeriesRAM, s.RAM),
		gauge("Disk", SeriesDisk, s.Disk),
		views.LabelStyle.Render("Health ") +
			lipgloss.NewStyle().Foreground(views.HealthColor(s.HealthScore)).Bold(true).
				Render(fmt.Sprintf("%.0f/100", s.HealthScore)),
	}
	return card("System", strings.Join(append(lines, w.staleNote(views.TagStatus)...), "\n"), width)
}

func (w *Widgets) renderNetwork(width int) string {
	if line, missing := widgetPending(w.store, views.TagNetwork); missing {
		return card("Network", line, width)
	}
	n, _ := views.Value[api.NetworkSample](w.store, views.TagNetwork)
	graphWidth := width - 6
	if graphWidth < 4 {
		graphWidth = 4
	}

	// Both series share one scale so their heights are comparable.
	up := w.network.Snapshot(SeriesUpload)
	down := w.network.Snapshot(SeriesDownload)
	ceiling := 0.0
	for _, v := range append(append([]float64{}, up...), down...) {
		if v > ceiling {
			ceiling = v
		}
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(views.ColorGraphUpload).Render(fmt.Sprintf("↑ %.2f Mbps", n.UploadMbps)),
		views.RenderScaledBraille(up, graphWidth, cardGraphHeight, ceiling, views.ColorGraphUpload),
		lipgloss.NewStyle().Foreground(views.ColorGraph).Render(fmt.Sprintf("↓ %.2f Mbps", n.DownloadMbps)),
		views.RenderScaledBraille(down, graphWidth, cardGraphHeight, ceiling, views.ColorGraph),
	}
	return card("Network", strings.Join(append(lines, w.staleNote(views.TagNetwork)...), "\n"), width)
}

func (w *Widgets) renderRisk(width int) string {
	if line, missing := widgetPending(w.store, views.TagPredict); missing {
		return card("AI Risk", line, width)
	}
	p, _ := views.Value[api.Prediction](w.store, views.TagPredict)

	head := views.Badge(p.RiskLevel, views.RiskColor(p.RiskLevel)) +
		views.LabelStyle.Render(fmt.Sprintf(" score %.0f", p.RiskScore))
	if p.IsAnomaly {
		head += " " + views.WarningStyle.Render("anomaly")
	}
	lines := []string{head}
	if p.Explanation != "" {
		lines = append(lines, wrap(p.Explanation, width-6, 2)...)
	}
	return card("AI Risk", strings.Join(append(lines, w.staleNote(views.TagPredict)...), "\n"), width)
}

func (w *Widgets) renderSecurity(width int) string {
	if line, missing := widgetPending(w.store, views.TagSecurity); missing {
		return card("Security", line, width)
	}
	s, _ := views.Value[api.SecurityScan](w.store, views.TagSecurity)

	var lines []string
	if s.Clean() {
		lines = append(lines, views.Badge("SECURE", views.ColorHealthy))
	} else {
		lines = append(lines, views.Badge(s.Status, views.ColorCritical)+
			views.ErrorStyle.Render(fmt.Sprintf(" %d %s", len(s.Threats), util.Pluralize(len(s.Threats), "threat", "threats"))))
		for i, t := range s.Threats {
			if i == 2 {
				break
			}
			lines = append(lines, views.MutedStyle.Render("• "+t))
		}
	}
	return card("Security", strings.Join(append(lines, w.staleNote(views.TagSecurity)...), "\n"), width)
}

// staleNote flags a widget whose last refresh failed while an older value is shown.
func (w *Widgets) staleNote(tag string) []string {
	if err := w.store.Err(tag); err != nil {
		return []string{views.WarningStyle.Render("⚠ " + api.Message(err))}
	}
	return nil
}

// wrap splits s into at most maxLines lines of width cells, ellipsizing the rest.
func wrap(s string, width, maxLines int) []string {
	if width < 8 {
		width = 8
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && lipgloss.Width(cur.String())+1+lipgloss.Width(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		for len(last) > 0 && lipgloss.Width(string(last))+1 > width {
			last = last[:len(last)-1]
		}
		lines[maxLines-1] = string(last) + "…"
	}
	for i, l := range lines {
		lines[i] = views.LabelStyle.Render(l)
	}
	return lines
}
