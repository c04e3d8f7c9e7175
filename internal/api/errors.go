package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the API
type Error struct {
	StatusCode int
	Message    string // backend-provided message, may be empty
	Method     string
	Path       string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// decodeError reads the {message} (or {error}) payload of a failed response
func decodeError(resp *http.Response, method, path string) error {
	apiErr := &Error{StatusCode: resp.StatusCode, Method: method, Path: path}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	} else if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// Message returns the backend message carried by err, or fallback
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, 0 when err is not an *Error
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401 response
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports a 404 response
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
