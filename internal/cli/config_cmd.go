package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autosense/senseboard/internal/config"
	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration senseboard would run with: defaults, then the
config file, then SENSEBOARD_* environment variables, then flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, _ := config.Find(cfgFile)
		return showConfig(cmd.OutOrStdout(), cfg, path)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Write one setting to the config file, keeping the rest of it intact.

The file is the one given by --config, else ./.senseboard.yaml when it
exists, else ~/.config/senseboard/config.yaml (created if missing).

Keys: ` + strings.Join(config.Keys, ", ") + `, refresh.ttl.<tag>

Examples:
  senseboard config set api.base_url http://10.0.0.5:8000
  senseboard config set poll.status 5s
  senseboard config set refresh.ttl.ports 1m`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			path = config.GlobalConfigPath()
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file to write",
				"Pass --config with a path")
		}
		return setConfig(cmd.OutOrStdout(), path, args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func showConfig(w io.Writer, cfg *config.Config, path string) error {
	source := "defaults (no config file found)"
	if path != "" {
		source = path
	}
	fmt.Fprintln(w, ui.MutedStyle().Render("# "+source))

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to print config",
			"This is unexpected - please report it")
	}
	return enc.Close()
}

func setConfig(w io.Writer, path, key, value string) error {
	if err := config.Set(path, key, value); err != nil {
		return err
	}
	ok := ui.SuccessStyle().Render(ui.SymbolSuccess)
	fmt.Fprintf(w, "%s %s = %s (%s)\n", ok, key, value, path)
	return nil
}
