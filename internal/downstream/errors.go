package downstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrTimeout      = errors.New("downstream_timeout")
	ErrUnavailable  = errors.New("downstream_unavailable")
	ErrNotFound     = errors.New("resource_not_found")
	ErrUnauthorized = errors.New("unauthorized")
)

type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// decodeError maps a non-2xx response. 401/403 and 404 become sentinels so
// callers can branch with errors.Is.
func decodeError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case http.StatusNotFound:
		return ErrNotFound
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var nested struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Code != "" {
		return &StatusError{StatusCode: resp.StatusCode, Code: nested.Error.Code, Message: nested.Error.Message}
	}

	var flat struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && (flat.Message != "" || flat.Error != "") {
		msg := flat.Message
		if msg == "" {
			msg = flat.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Code: "backend_error", Message: msg}
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Code:       "backend_error",
		Message:    fmt.Sprintf("unexpected status: %d", resp.StatusCode),
	}
}
