package client

import (
	"errors"
	"fmt"
)

// APIError is returned for every failed provider call. Transient is decided
// here, once, from the transport error or HTTP status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a provider failure worth retrying
// (timeout, connection error, throttling or upstream unavailability).
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient
	}
	return false
}
