package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/autosense/senseboard/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".senseboard.yaml"
	// GlobalConfigDir is the directory for global config, relative to home.
	GlobalConfigDir = ".config/senseboard"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides: SENSEBOARD_API_BASE_URL
	// overrides api.base_url.
	EnvPrefix = "SENSEBOARD"
)

// Load reads config from path, layered over the defaults and under
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found: "+path,
					"Check the path passed to --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .senseboard.yaml in current directory
// 3. ~/.config/senseboard/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Global config
	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalConfigPath returns ~/.config/senseboard/config.yaml, or "" when the
// home directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault finds the config file (honoring explicit) and loads it,
// falling back to defaults when there is none. Returns the path used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax and duration values in "+where)
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	cfg.Session.File = ExpandPath(cfg.Session.File)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	if cfg.Refresh.TTL == nil {
		cfg.Refresh.TTL = make(map[string]time.Duration)
	}

	return cfg, nil
}

// setDefaults registers every known key so environment overrides apply to
// keys that are absent from the file.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout.String())
	v.SetDefault("api.max_rps", d.API.MaxRPS)
	v.SetDefault("poll.status", d.Poll.Status.String())
	v.SetDefault("poll.predict", d.Poll.Predict.String())
	v.SetDefault("poll.security", d.Poll.Security.String())
	v.SetDefault("poll.heartbeat", d.Poll.Heartbeat.String())
	v.SetDefault("refresh.default_ttl", d.Refresh.DefaultTTL.String())
	v.SetDefault("history.network_points", d.History.NetworkPoints)
	v.SetDefault("history.gauge_points", d.History.GaugePoints)
	v.SetDefault("session.file", d.Session.File)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("dashboard.view", d.Dashboard.View)
}

// Keys lists the scalar settings accepted by Set, in display order.
// refresh.ttl.<tag> is accepted as well.
var Keys = []string{
	"api.base_url",
	"api.timeout",
	"api.max_rps",
	"poll.status",
	"poll.predict",
	"poll.security",
	"poll.heartbeat",
	"refresh.default_ttl",
	"history.network_points",
	"history.gauge_points",
	"session.file",
	"log.file",
	"log.debug",
	"dashboard.view",
}

// IsKnownKey reports whether key names a setting.
func IsKnownKey(key string) bool {
	if tag, ok := strings.CutPrefix(key, "refresh.ttl."); ok {
		return tag != "" && !strings.Contains(tag, ".")
	}
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
