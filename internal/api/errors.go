package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnauthorized means the session token was rejected. The caller must
// drop the session and must not retry.
var ErrUnauthorized = stderrors.New("unauthorized")

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Error is a failed call that is not an authorization failure.
type Error struct {
	// Status is the HTTP status, or 0 when no response arrived.
	Status int
	// Reason is a short human description, from the response body when
	// the backend supplied one.
	Reason string
	// Offline is set when the circuit breaker refused the call.
	Offline bool
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Status != 0 {
		fmt.Fprintf(&b, "%d ", e.Status)
	}
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newStatusError builds an Error from a non-2xx response, pulling the
// reason out of the usual {"detail": ...}, {"message": ...} or
// {"error": ...} bodies.
func newStatusError(resp *http.Response) *Error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	reason := http.StatusText(resp.StatusCode)
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		switch {
		case len(body.Detail) > 0:
			var s string
			if json.Unmarshal(body.Detail, &s) == nil {
				reason = s
			} else {
				// validation errors come back as a list of objects
				reason = string(body.Detail)
			}
		case body.Message != "":
			reason = body.Message
		case body.Error != "":
			reason = body.Error
		}
	}
	return &Error{Status: resp.StatusCode, Reason: reason}
}

// IsUnauthorized reports whether err is (or wraps) ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return stderrors.Is(err, ErrUnauthorized)
}

// IsOffline reports whether err came from an open circuit breaker.
func IsOffline(err error) bool {
	var apiErr *Error
	return stderrors.As(err, &apiErr) && apiErr.Offline
}

// isTransient reports whether err says something about backend health:
// transport failures and 5xx responses. Client errors and cancellations
// do not count against the breaker.
func isTransient(err error) bool {
	if err == nil || IsUnauthorized(err) {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Status == 0 || apiErr.Status >= 500
	}
	return false
}

// Message renders err for an inline widget error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnauthorized(err):
		return "session expired"
	case IsOffline(err):
		return "OFFLINE"
	}
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		if apiErr.Status == 0 {
			return "backend unreachable"
		}
		return apiErr.Reason
	}
	return err.Error()
}
