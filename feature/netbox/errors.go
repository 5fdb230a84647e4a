package netbox

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned by lookups that match no object.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from NetBox.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("netbox %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Is matches ErrNotFound for 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 answer or a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// isClientError reports 4xx answers, which say nothing about NetBox health.
func isClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
