package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, Set(path, "poll.status", "5s"))
	require.NoError(t, Set(path, "refresh.ttl.ports", "1m"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Poll.Status)
	assert.Equal(t, time.Minute, cfg.Refresh.TTL["ports"])
}

func TestSetPreservesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `# my settings
api:
  base_url: http://a.local:1
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, Set(path, "api.timeout", "30s"))
	require.NoError(t, Set(path, "dashboard.view", "apps"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# my settings")
	assert.Contains(t, string(data), "timeout: 30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://a.local:1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "apps", cfg.Dashboard.View)
}

func TestSetRejects(t *testing.T) {
	tests := []struct {
		name, key, value, wantErr string
	}{
		{"unknown key", "hosts.mini", "x", "Unknown config key"},
		{"bad duration", "poll.status", "soon", "Invalid value"},
		{"bad count", "history.gauge_points", "many", "Invalid value"},
		{"fails validation", "api.base_url", "ftp://nope", "http:// or https://"},
		{"unknown view", "dashboard.view", "settings", "isn't a page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			original := []byte("api:\n  timeout: 3s\n")
			require.NoError(t, os.WriteFile(path, original, 0644))

			err := Set(path, tt.key, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, original, data, "file untouched")
		})
	}
}

func TestSetRejectsScalarSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: oops\n"), 0644))

	err := Set(path, "api.timeout", "3s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a section")
}
