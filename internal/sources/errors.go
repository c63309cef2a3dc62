package sources

import (
	"errors"
	"fmt"
)

// Common errors returned by metadata source clients.
var (
	// ErrNotFound indicates the DOI is unknown to the source.
	ErrNotFound = errors.New("not found")

	// ErrAuthError indicates a missing or rejected credential.
	ErrAuthError = errors.New("authentication error")

	// ErrRateLimited indicates the source's rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrAPIError indicates a general API error.
	ErrAPIError = errors.New("API error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error")

	// ErrInvalidResponse indicates an unexpected response shape.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrNoTitleSearch indicates the registry has no title search backend
	// configured, so guessed metadata cannot be validated.
	ErrNoTitleSearch = errors.New("no title search source configured")
)

// APIError represents an error reported by a metadata source API.
type APIError struct {
	Source     string // source name, e.g. "crossref"
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPIError }

// IsNotFound returns true if the error indicates the DOI was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates a credential problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
