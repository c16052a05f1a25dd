package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/autosense/senseboard/internal/config"
	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/router"
)

// MinInterval keeps the status poll from hammering the backend.
const MinInterval = 500 * time.Millisecond

// Dashboard flags, shared by the root command and `dashboard`.
var (
	dashboardIntervalFlag string
	dashboardViewFlag     string
)

// addDashboardFlags registers --interval and --view on a command.
func addDashboardFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dashboardIntervalFlag, "interval", "", "status poll interval (e.g., 3s, 1m)")
	cmd.Flags().StringVar(&dashboardViewFlag, "view", "", "page to open: "+strings.Join(config.Views, ", "))
}

// ParseInterval parses an --interval value. Returns zero duration if the
// flag is empty.
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 3s, 10s, or 1m.")
	}
	if duration < MinInterval {
		return 0, errors.New(errors.ErrConfig,
			"Interval too short",
			fmt.Sprintf("Minimum interval is %v to avoid overwhelming the backend", MinInterval))
	}
	return duration, nil
}

// ParseView maps a --view or dashboard.view value to a page. Empty means
// the default page.
func ParseView(name string) (router.ID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return router.DefaultView, nil
	}
	if !config.IsView(name) {
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown page '%s'", name),
			"Use one of: "+strings.Join(config.Views, ", "))
	}
	return router.ID(name), nil
}
