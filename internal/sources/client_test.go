package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// jsonServer returns a test server that answers every request with the
// given status and body.
func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestGetJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"404 maps to not found", http.StatusNotFound, IsNotFound},
		{"401 maps to auth error", http.StatusUnauthorized, IsAuthError},
		{"403 maps to auth error", http.StatusForbidden, IsAuthError},
		{"429 maps to rate limited", http.StatusTooManyRequests, IsRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := jsonServer(t, tt.status, `{}`)
			defer ts.Close()

			src := NewCrossref(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
			_, err := src.Lookup(context.Background(), "10.1234/alpha")
			if err == nil {
				t.Fatal("Lookup() should fail")
			}
			if !tt.check(err) {
				t.Errorf("Lookup() error = %v, classified wrong", err)
			}
		})
	}
}

func TestGetJSON_ServerError(t *testing.T) {
	ts := jsonServer(t, http.StatusInternalServerError, `{}`)
	defer ts.Close()

	src := NewCrossref(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	_, err := src.Lookup(context.Background(), "10.1234/alpha")
	if err == nil {
		t.Fatal("Lookup() should fail on HTTP 500")
	}
	if !errors.Is(err, ErrAPIError) {
		t.Errorf("Lookup() error = %v, want ErrAPIError", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Lookup() error = %v, want *APIError", err)
	}
	if apiErr.Source != NameCrossref {
		t.Errorf("APIError.Source = %q, want %q", apiErr.Source, NameCrossref)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("APIError.StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestGetJSON_MalformedBody(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `not json at all`)
	defer ts.Close()

	src := NewCrossref(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	_, err := src.Lookup(context.Background(), "10.1234/alpha")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Lookup() error = %v, want ErrInvalidResponse", err)
	}
}

func TestGetJSON_NetworkError(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{}`)
	ts.Close() // nothing listens anymore

	src := NewCrossref(WithBaseURL(ts.URL))
	_, err := src.Lookup(context.Background(), "10.1234/alpha")
	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("Lookup() error = %v, want ErrNetworkError", err)
	}
}

func TestUserAgent(t *testing.T) {
	if got := userAgent(""); got != "litsort/1.0" {
		t.Errorf("userAgent(\"\") = %q", got)
	}
	if got := userAgent("lib@example.org"); got != "litsort/1.0 (mailto:lib@example.org)" {
		t.Errorf("userAgent(email) = %q", got)
	}
}
