package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/history"
	"github.com/autosense/senseboard/internal/ui"
)

// trendWidth is how many recent CPU readings the trend line shows.
const trendWidth = 30

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-shot system snapshot",
	Long: `Fetch CPU, RAM, disk and health from the backend, along with the AI
risk assessment and the quick security scan.

When signed in, the recent CPU trend is shown as well.

Examples:
  senseboard status
  senseboard status --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

// StatusOutput represents the JSON output for the status command.
type StatusOutput struct {
	BaseURL    string            `json:"base_url"`
	SignedIn   bool              `json:"signed_in"`
	User       string            `json:"user,omitempty"`
	Status     api.Status        `json:"status"`
	Prediction *api.Prediction   `json:"prediction,omitempty"`
	Security   *api.SecurityScan `json:"security,omitempty"`
	CPUTrend   []float64         `json:"cpu_trend,omitempty"`
	Warnings   map[string]string `json:"warnings,omitempty"`
}

func statusCommand(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	guard, _ := newGuard(cfg)
	client, err := newClient(cfg, guard)
	if err != nil {
		return err
	}

	var spinner *ui.Spinner
	if !statusJSON && term.IsTerminal(int(os.Stdout.Fd())) {
		spinner = ui.NewSpinner(w, "Fetching status from "+client.BaseURL())
		spinner.Start()
	}

	out, err := CollectStatus(ctx, client, guard.HasSession())
	if spinner != nil {
		if err != nil {
			spinner.Fail(api.Message(err))
		} else {
			spinner.Success()
		}
	}

	if statusJSON {
		if err != nil {
			return WriteJSONFromError(w, err)
		}
		return WriteJSONSuccess(w, out)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, RenderStatus(out))
	return err
}

// CollectStatus fetches everything the status command shows. Only the
// headline status is required; the rest degrade to warnings.
func CollectStatus(ctx context.Context, client *api.Client, signedIn bool) (StatusOutput, error) {
	out := StatusOutput{
		BaseURL:  client.BaseURL(),
		SignedIn: signedIn,
		Warnings: map[string]string{},
	}

	var (
		statusErr, predictErr, securityErr, recordsErr, meErr error
		prediction                                            api.Prediction
		security                                              api.SecurityScan
		records                                               []api.Record
		me                                                    api.Me
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Status, statusErr = client.Status(gctx)
		return nil
	})
	g.Go(func() error {
		prediction, predictErr = client.Predict(gctx)
		return nil
	})
	g.Go(func() error {
		security, securityErr = client.SecurityScan(gctx)
		return nil
	})
	if signedIn {
		g.Go(func() error {
			me, meErr = client.Me(gctx)
			return nil
		})
		g.Go(func() error {
			records, recordsErr = client.LastRecords(gctx)
			return nil
		})
	}
	_ = g.Wait()

	if statusErr != nil {
		return out, errors.WrapWithCode(statusErr, errors.ErrAPI,
			"Couldn't fetch status: "+api.Message(statusErr),
			"Check the backend is running at "+client.BaseURL())
	}

	if predictErr == nil {
		out.Prediction = &prediction
	} else {
		out.Warnings["prediction"] = api.Message(predictErr)
	}
	if securityErr == nil {
		out.Security = &security
	} else {
		out.Warnings["security"] = api.Message(securityErr)
	}

	if signedIn {
		switch {
		case api.IsUnauthorized(meErr) || api.IsUnauthorized(recordsErr):
			// The 401 already dropped the stored session.
			out.SignedIn = false
			out.Warnings["session"] = "session expired, run 'senseboard login'"
		default:
			if meErr == nil {
				out.User = me.Username
			}
			if recordsErr == nil {
				out.CPUTrend = cpuTrend(records, trendWidth)
			} else {
				out.Warnings["records"] = api.Message(recordsErr)
			}
		}
	}

	if len(out.Warnings) == 0 {
		out.Warnings = nil
	}
	return out, nil
}

// cpuTrend parses the CPU column and keeps the newest n readings.
// Unparseable values are skipped.
func cpuTrend(records []api.Record, n int) []float64 {
	buf := history.NewRingBuffer[float64](n)
	for _, r := range records {
		v, err := strconv.ParseFloat(strings.TrimSpace(r.CPU), 64)
		if err != nil {
			continue
		}
		buf.Push(v)
	}
	return buf.Snapshot()
}

// RenderStatus formats a snapshot for humans.
func RenderStatus(out StatusOutput) string {
	mutedStyle := ui.MutedStyle()
	errorStyle := ui.ErrorStyle()

	var b strings.Builder

	who := "not signed in"
	if out.SignedIn {
		who = "signed in"
		if out.User != "" {
			who += " as " + out.User
		}
	}
	b.WriteString(mutedStyle.Render(out.BaseURL+" · "+who) + "\n\n")

	rows := [][]string{
		{ui.UsageLevel(out.Status.CPU).Symbol(), "CPU", formatPercent(out.Status.CPU)},
		{ui.UsageLevel(out.Status.RAM).Symbol(), "RAM", formatPercent(out.Status.RAM)},
		{ui.UsageLevel(out.Status.Disk).Symbol(), "Disk", formatPercent(out.Status.Disk)},
		{ui.HealthLevel(out.Status.HealthScore).Symbol(), "Health", fmt.Sprintf("%.0f / 100", out.Status.HealthScore)},
	}
	b.WriteString(ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "", Width: 2},
		{Title: "Metric", Width: 8},
		{Title: "Value", Width: 12},
	}, rows))
	b.WriteString("\n\n")

	if p := out.Prediction; p != nil {
		line := fmt.Sprintf("AI risk: %s (%.0f%%)", p.RiskLevel, p.RiskScore)
		if p.IsAnomaly {
			line += " · anomaly"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(riskColor(p.RiskLevel)).Render(line) + "\n")
		if p.Explanation != "" {
			b.WriteString(mutedStyle.Render("  "+p.Explanation) + "\n")
		}
	}

	if s := out.Security; s != nil {
		if s.Clean() {
			b.WriteString(ui.SuccessStyle().Render(ui.SymbolSuccess+" Security: clean") + "\n")
		} else {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s Security: %s", ui.SymbolFail, s.Status)) + "\n")
			for _, t := range s.Threats {
				b.WriteString(errorStyle.Render("  - "+t) + "\n")
			}
		}
	}

	if len(out.CPUTrend) > 0 {
		b.WriteString("CPU trend: " + ui.RenderTrend(out.CPUTrend, trendWidth, ui.UsageLevel) + "\n")
	}

	for _, name := range sortedKeys(out.Warnings) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s: %s", ui.SymbolSkipped, name, out.Warnings[name])) + "\n")
	}

	return b.String()
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func riskColor(level string) lipgloss.Color {
	switch strings.ToUpper(level) {
	case api.RiskCritical:
		return ui.ColorError
	case api.RiskWarning:
		return ui.ColorWarning
	default:
		return ui.ColorSuccess
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
