// Package cli implements the senseboard command-line interface.
//
// The package is organized around Cobra commands. Each command loads the
// config, restores the session, builds an API client, and hands off to
// the package that does the work.
//
// # Command Structure
//
// The root command is "senseboard"; run bare, it opens the dashboard:
//
//	senseboard                 - Live dashboard (same as "dashboard")
//	senseboard login           - Sign in and store the session
//	senseboard logout          - Forget the stored session
//	senseboard status [--json] - One-shot system snapshot
//	senseboard config show     - Print the effective configuration
//	senseboard config set k v  - Change one setting in the config file
//	senseboard version         - Build information
//
// # Flag Handling
//
// Global flags (--config, --api, --verbose, --no-color) are defined on the root
// command and available to all subcommands. --api overrides api.base_url
// after the config file and SENSEBOARD_* environment variables are
// applied. The dashboard flags (--interval, --view) are registered on
// both the root and the dashboard command.
package cli
