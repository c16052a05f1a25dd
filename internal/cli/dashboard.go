package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/autosense/senseboard/internal/config"
	"github.com/autosense/senseboard/internal/dashboard"
	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/refresh"
)

// dashboardCmd starts the TUI
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live dashboard (default)",
	Long: `Start the interactive dashboard.

Keyboard shortcuts:
  1-6         Jump to a page
  Tab         Next page
  r           Refresh the page
  L           Log out
  ?           Show help
  q / Ctrl+C  Quit

Examples:
  senseboard
  senseboard dashboard --view security
  senseboard --api http://10.0.0.5:8000 --interval 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(dashboardIntervalFlag, dashboardViewFlag)
	},
}

func init() {
	addDashboardFlags(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func dashboardCommand(intervalFlag, viewFlag string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrUI,
			"The dashboard needs an interactive terminal",
			"Use 'senseboard status' or 'senseboard status --json' for scripted output")
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

	opts, err := dashboardOptions(cfg, intervalFlag, viewFlag)
	if err != nil {
		return err
	}
	opts.Client = client
	opts.Guard = guard

	logger.SetDefault(logger.NewEnvLogger("[senseboard]"))
	return dashboard.Run(dashboard.New(opts), cfg.Log.File)
}

// dashboardOptions maps config and flags onto dashboard.Options. Flags win
// over the config file.
func dashboardOptions(cfg *config.Config, intervalFlag, viewFlag string) (dashboard.Options, error) {
	interval, err := ParseInterval(intervalFlag)
	if err != nil {
		return dashboard.Options{}, err
	}

	view := viewFlag
	if view == "" {
		view = cfg.Dashboard.View
	}
	initial, err := ParseView(view)
	if err != nil {
		return dashboard.Options{}, err
	}

	intervals := dashboard.Intervals{
		Status:    cfg.Poll.Status,
		Predict:   cfg.Poll.Predict,
		Security:  cfg.Poll.Security,
		Heartbeat: cfg.Poll.Heartbeat,
	}
	if interval > 0 {
		intervals.Status = interval
	}

	return dashboard.Options{
		Policy: refresh.Policy{
			Default: cfg.Refresh.DefaultTTL,
			PerTag:  cfg.Refresh.TTL,
		},
		Intervals:     intervals,
		GaugePoints:   cfg.History.GaugePoints,
		NetworkPoints: cfg.History.NetworkPoints,
		InitialView:   initial,
		Logger:        logger.NewEnvLogger("[dashboard]"),
	}, nil
}
