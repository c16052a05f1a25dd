package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/errors"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeAuthRequired   = "AUTH_REQUIRED"
	ErrCodeAuthFailed     = "AUTH_FAILED"
	ErrCodeSession        = "SESSION_ERROR"
	ErrCodeAPIOffline     = "API_OFFLINE"
	ErrCodeAPIUnreachable = "API_UNREACHABLE"
	ErrCodeAPIError       = "API_ERROR"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts an error to a JSONError.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	// API failures carry more detail than the code they were wrapped with.
	if code, details := apiErrorCode(err); code != "" {
		msg := err.Error()
		suggestion := ""
		var e *errors.Error
		if stderrors.As(err, &e) {
			msg, suggestion = e.Message, e.Suggestion
		}
		return &JSONError{Code: code, Message: msg, Suggestion: suggestion, Details: details}
	}

	var e *errors.Error
	if stderrors.As(err, &e) {
		return &JSONError{
			Code:       mapErrorCode(e.Code, e.Message),
			Message:    e.Message,
			Suggestion: e.Suggestion,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// apiErrorCode classifies errors coming out of the API client. Returns ""
// for anything else.
func apiErrorCode(err error) (string, interface{}) {
	if api.IsUnauthorized(err) {
		return ErrCodeAuthRequired, nil
	}
	var apiErr *api.Error
	if !stderrors.As(err, &apiErr) {
		return "", nil
	}
	details := map[string]interface{}{"status": apiErr.Status, "reason": apiErr.Reason}
	switch {
	case apiErr.Offline:
		return ErrCodeAPIOffline, details
	case apiErr.Status == 0:
		return ErrCodeAPIUnreachable, details
	case apiErr.Status == 401 || apiErr.Status == 403:
		return ErrCodeAuthFailed, details
	}
	return ErrCodeAPIError, details
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrAuth:
		return ErrCodeAuthFailed
	case errors.ErrSession:
		return ErrCodeSession
	case errors.ErrAPI:
		return ErrCodeAPIError
	}

	return ErrCodeUnknown
}
