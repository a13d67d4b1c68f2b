package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionExpired is returned for HTTP 401/403. The client has
	// already cleared the session store by the time callers see it, so
	// they must not report it as an ordinary failure.
	ErrSessionExpired = errors.New("session expired")

	// ErrNetwork is returned when no HTTP response was received at all.
	ErrNetwork = errors.New("network unavailable")
)

// APIError carries a non-2xx response that is not an auth failure. Message
// is the server-provided error when one could be extracted.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// errorMessage extracts the most useful message from an error body: the
// JSON "message" or "error" field when present, else the raw text, else a
// generic fallback.
func errorMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 0 && (text[0] == '{' || text[0] == '[') {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	if text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
