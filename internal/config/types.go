package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Defaults for values the user did not set.
const (
	DefaultBaseURL         = "http://127.0.0.1:8000"
	DefaultTimeout         = 10 * time.Second
	DefaultMaxRPS          = 20.0
	DefaultStatusPoll      = 3 * time.Second
	DefaultPredictPoll     = 15 * time.Second
	DefaultSecurityPoll    = 30 * time.Second
	DefaultHeartbeatPoll   = 60 * time.Second
	DefaultRefreshTTL      = 5 * time.Minute
	DefaultNetworkPoints   = 20
	DefaultGaugePoints     = 60
	DefaultSessionFileName = "session.yaml"
	DefaultLogFileName     = "senseboard.log"
)

// Config represents the complete senseboard configuration.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Poll      PollConfig      `yaml:"poll" mapstructure:"poll"`
	Refresh   RefreshConfig   `yaml:"refresh" mapstructure:"refresh"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// APIConfig says where the AutoSense backend lives and how hard to hit it.
type APIConfig struct {
	// BaseURL is the backend root, e.g. http://127.0.0.1:8000.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds every request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxRPS caps outgoing requests per second. Zero disables the limit.
	MaxRPS float64 `yaml:"max_rps" mapstructure:"max_rps"`
}

// PollConfig sets the cadence of the always-live widgets.
type PollConfig struct {
	Status    time.Duration `yaml:"status" mapstructure:"status"`
	Predict   time.Duration `yaml:"predict" mapstructure:"predict"`
	Security  time.Duration `yaml:"security" mapstructure:"security"`
	Heartbeat time.Duration `yaml:"heartbeat" mapstructure:"heartbeat"`
}

// RefreshConfig controls how long page data stays fresh.
type RefreshConfig struct {
	// DefaultTTL applies to every tag without its own entry.
	DefaultTTL time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`

	// TTL overrides DefaultTTL per resource tag (e.g. "ports": 1m).
	TTL map[string]time.Duration `yaml:"ttl,omitempty" mapstructure:"ttl"`
}

// HistoryConfig sizes the chart buffers.
type HistoryConfig struct {
	NetworkPoints int `yaml:"network_points" mapstructure:"network_points"`
	GaugePoints   int `yaml:"gauge_points" mapstructure:"gauge_points"`
}

// SessionConfig locates the stored session token.
type SessionConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig controls where the TUI writes its log.
type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// DashboardConfig holds TUI preferences.
type DashboardConfig struct {
	// View is the page opened after start, e.g. "security". Empty means home.
	View string `yaml:"view" mapstructure:"view"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
			MaxRPS:  DefaultMaxRPS,
		},
		Poll: PollConfig{
			Status:    DefaultStatusPoll,
			Predict:   DefaultPredictPoll,
			Security:  DefaultSecurityPoll,
			Heartbeat: DefaultHeartbeatPoll,
		},
		Refresh: RefreshConfig{
			DefaultTTL: DefaultRefreshTTL,
			TTL:        make(map[string]time.Duration),
		},
		History: HistoryConfig{
			NetworkPoints: DefaultNetworkPoints,
			GaugePoints:   DefaultGaugePoints,
		},
		Session: SessionConfig{
			File: "~/" + GlobalConfigDir + "/" + DefaultSessionFileName,
		},
		Log: LogConfig{
			File: "~/" + GlobalConfigDir + "/" + DefaultLogFileName,
		},
	}
}
