package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"https", func(c *Config) { c.API.BaseURL = "https://metrics.example.com" }, ""},
		{"future version", func(c *Config) { c.Version = CurrentConfigVersion + 1 }, "from the future"},
		{"empty url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url is empty"},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }, "http:// or https://"},
		{"no host", func(c *Config) { c.API.BaseURL = "http://" }, "has no host"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout must be positive"},
		{"negative rps", func(c *Config) { c.API.MaxRPS = -1 }, "api.max_rps"},
		{"zero rps disables the limit", func(c *Config) { c.API.MaxRPS = 0 }, ""},
		{"zero poll", func(c *Config) { c.Poll.Predict = 0 }, "poll.predict must be positive"},
		{"negative default ttl", func(c *Config) { c.Refresh.DefaultTTL = -time.Second }, "refresh.default_ttl"},
		{"negative tag ttl", func(c *Config) { c.Refresh.TTL["ports"] = -time.Second }, "refresh.ttl.ports"},
		{"zero tag ttl", func(c *Config) { c.Refresh.TTL["ports"] = 0 }, ""},
		{"too few points", func(c *Config) { c.History.NetworkPoints = 1 }, "history.network_points"},
		{"too many points", func(c *Config) { c.History.GaugePoints = MaxHistoryPoints + 1 }, "history.gauge_points"},
		{"known view", func(c *Config) { c.Dashboard.View = "disk" }, ""},
		{"unknown view", func(c *Config) { c.Dashboard.View = "login" }, "isn't a page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
