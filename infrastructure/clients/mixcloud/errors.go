package mixcloud

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidShowURL       = errors.New("invalid Mixcloud show URL")
	ErrShowNotFound         = errors.New("show not found on Mixcloud")
	ErrAuthenticationFailed = errors.New("Mixcloud authentication failed")
	ErrRateLimited          = errors.New("Mixcloud API rate limit exceeded")
	ErrAPIRequestFailed     = errors.New("Mixcloud API request failed")
)

// APIError carries the HTTP context of a failed Mixcloud call.
type APIError struct {
	Operation  string
	URL        string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed for %s (HTTP %d): %v", e.Operation, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.URL, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
