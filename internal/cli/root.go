package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/config"
	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/session"
	"github.com/autosense/senseboard/internal/ui"
)

// Global flags
var (
	cfgFile string
	apiFlag string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "senseboard",
	Short: "Terminal dashboard for the AutoSense metrics service",
	Long: `senseboard is a terminal client for an AutoSense backend.

Run it without a command to open the live dashboard: CPU and RAM gauges,
network throughput, AI risk, security scan, and pages for cleaning,
apps, security, optimization and disk usage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.EnableDebug(verbose)
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(dashboardIntervalFlag, dashboardViewFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.senseboard.yaml, then ~/.config/senseboard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "backend base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// The bare command opens the dashboard, so it takes the dashboard flags too.
	addDashboardFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// formatError renders structured errors as-is and prefixes anything else.
func formatError(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Error()
	}
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return "✗ " + msg
}

// loadConfig finds, loads and validates the config, then applies --api.
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Default().Debug("config: loaded %s", path)
	}
	applyOverrides(cfg, apiFlag)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides folds command-line overrides into cfg.
func applyOverrides(cfg *config.Config, apiURL string) {
	if apiURL = strings.TrimSpace(apiURL); apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(apiURL, "/")
	}
}

// newGuard restores the saved session from the configured file.
func newGuard(cfg *config.Config) (*session.Guard, *session.FileStore) {
	store := session.NewFileStore(cfg.Session.File)
	guard := session.NewGuard(store, logger.NewEnvLogger("[session]"))
	// An unreadable session file is not fatal: the user just logs in again.
	if err := guard.Load(); err != nil {
		ui.PrintWarning(fmt.Sprintf("Ignoring unreadable session file %s; run 'senseboard login'", store.Path()))
	}
	return guard, store
}

// newClient builds an API client that authenticates through guard and
// drops the session on a 401.
func newClient(cfg *config.Config, guard *session.Guard) (*api.Client, error) {
	opts := api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		MaxRPS:  cfg.API.MaxRPS,
		Logger:  logger.NewEnvLogger("[api]"),
	}
	if guard != nil {
		opts.Token = guard.Token
		opts.OnUnauthorized = guard.ClearSession
	}
	client, err := api.NewClient(opts)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't build the API client",
			"Check api.base_url in your config or the --api flag")
	}
	return client, nil
}
