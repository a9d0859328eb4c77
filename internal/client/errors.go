package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cirrus/internal/domain"
)

// APIError is a non-2xx response decoded from its {"error": ...} body.
// Kind is the domain sentinel the status maps to, if any.
type APIError struct {
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is allows errors.Is() to match the mapped sentinel
func (e *APIError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// StatusCode implements domain.HTTPError
func (e *APIError) StatusCode() int { return e.Status }

func newAPIError(status int, body []byte) *APIError {
	var decoded struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		message = decoded.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &APIError{Status: status, Message: message, Kind: kindForStatus(status)}
}

// kindForStatus maps the statuses the client's operations can receive.
// The client only creates folders and uploads, so 409 is always a name collision.
func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrNameCollision
	default:
		return nil
	}
}
