package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/autosense/senseboard/internal/errors"
)

// Bounds for the chart buffers.
const (
	MinHistoryPoints = 2
	MaxHistoryPoints = 3600
)

// Views are the page names accepted by dashboard.view.
var Views = []string{"home", "cleaner", "apps", "security", "optimizer", "disk"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but senseboard only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade senseboard or lower the version field.")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section of your config.")
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'poll' section of your config.")
	}

	if err := validateRefresh(cfg.Refresh); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'refresh' section of your config.")
	}

	if err := validateHistory(cfg.History); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'history' section of your config.")
	}

	if cfg.Dashboard.View != "" && !IsView(cfg.Dashboard.View) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.view '%s' isn't a page", cfg.Dashboard.View),
			"Use one of: "+strings.Join(Views, ", "))
	}

	return nil
}

// IsView reports whether name is a navigable page.
func IsView(name string) bool {
	for _, v := range Views {
		if v == name {
			return true
		}
	}
	return false
}

func validateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty - point it at the backend, like %s", DefaultBaseURL)
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url '%s' isn't a valid URL: %v", api.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url '%s' needs an http:// or https:// scheme", api.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url '%s' has no host", api.BaseURL)
	}
	if api.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive (got %v)", api.Timeout)
	}
	if api.MaxRPS < 0 {
		return fmt.Errorf("api.max_rps can't be negative - use 0 to disable the limit")
	}
	return nil
}

func validatePoll(p PollConfig) error {
	intervals := []struct {
		name string
		d    time.Duration
	}{
		{"poll.status", p.Status},
		{"poll.predict", p.Predict},
		{"poll.security", p.Security},
		{"poll.heartbeat", p.Heartbeat},
	}
	for _, iv := range intervals {
		if iv.d <= 0 {
			return fmt.Errorf("%s must be positive (got %v) - try something like '3s' or '1m'", iv.name, iv.d)
		}
	}
	return nil
}

func validateRefresh(r RefreshConfig) error {
	if r.DefaultTTL < 0 {
		return fmt.Errorf("refresh.default_ttl can't be negative")
	}
	for tag, ttl := range r.TTL {
		if ttl < 0 {
			return fmt.Errorf("refresh.ttl.%s can't be negative", tag)
		}
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	check := func(name string, n int) error {
		if n < MinHistoryPoints || n > MaxHistoryPoints {
			return fmt.Errorf("history.%s needs to be %d-%d (got %d)", name, MinHistoryPoints, MaxHistoryPoints, n)
		}
		return nil
	}
	if err := check("network_points", h.NetworkPoints); err != nil {
		return err
	}
	return check("gauge_points", h.GaugePoints)
}
