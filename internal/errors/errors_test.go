package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrAPI,
		ErrAuth,
		ErrSession,
		ErrUI,
	}

	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .senseboard.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "api error",
			code:       ErrAPI,
			message:    "AutoSense API is unreachable",
			suggestion: "Make sure the backend is running on the configured address",
		},
		{
			name:       "auth error",
			code:       ErrAuth,
			message:    "Login failed",
			suggestion: "Double-check your email and password",
		},
		{
			name:       "session error",
			code:       ErrSession,
			message:    "Session file is unreadable",
			suggestion: "Run 'senseboard logout' and log in again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, "Failed to fetch status")

	require.NotNil(t, err)
	assert.Equal(t, ErrAPI, err.Code)
	assert.Equal(t, "Failed to fetch status", err.Message)
	assert.Equal(t, cause, err.Cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapWithCode(cause, ErrSession, "Can't save session", "Check ~/.config/senseboard permissions")

	assert.Equal(t, ErrSession, err.Code)
	assert.Equal(t, "Can't save session", err.Message)
	assert.Equal(t, "Check ~/.config/senseboard permissions", err.Suggestion)
	assert.True(t, errors.Is(err, cause))
}

func TestErrorFormat(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := New(ErrConfig, "Bad config", "")
		assert.Equal(t, "✗ Bad config\n", err.Error())
	})

	t.Run("message cause and suggestion", func(t *testing.T) {
		err := WrapWithCode(errors.New("dial tcp: refused"), ErrAPI, "API unreachable", "Start the backend")
		out := err.Error()

		lines := strings.Split(out, "\n")
		assert.Equal(t, "✗ API unreachable", lines[0])
		assert.Contains(t, out, "  dial tcp: refused")
		assert.Contains(t, out, "  Start the backend")
		assert.Less(t, strings.Index(out, "refused"), strings.Index(out, "Start the backend"))
	})
}

func TestIsCode(t *testing.T) {
	err := New(ErrAuth, "Login failed", "")

	assert.True(t, IsCode(err, ErrAuth))
	assert.False(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(nil, ErrAuth))
	assert.False(t, IsCode(errors.New("plain"), ErrAuth))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, ErrAuth))
}
