package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func newAPIError(resp *Response) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if strings.TrimSpace(msg) == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg, Body: resp.Body}
}

// StatusCode extracts the backend status from err, or 0 if err is not an APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if dasherrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	return StatusCode(err) == status
}

// Message returns the server-provided message when err is an APIError
func Message(err error) string {
	var apiErr *APIError
	if dasherrors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
