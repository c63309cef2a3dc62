package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testClient builds a client pointed at ts with an unthrottled limiter.
func testClient(ts *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{
		WithHTTPClient(ts.Client()),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	}, opts...)
	return NewClient("test-key", opts...)
}

// swapAPIURL points the package at a test server for the test's duration.
func swapAPIURL(t *testing.T, url string) {
	t.Helper()
	old := apiURL
	apiURL = url
	t.Cleanup(func() { apiURL = old })
}

func textResponse(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := messagesResponse{Content: []contentBlock{{Type: "text", Text: text}}}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestExtract(t *testing.T) {
	var gotKey, gotVersion string
	var gotReq messagesRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		textResponse(t, w, `{"title": "Example Study", "authors": ["Smith, J.", "Doe, A."], "year": "2021"}`)
	}))
	defer ts.Close()
	swapAPIURL(t, ts.URL)

	c := testClient(ts, WithModel("test-model"))
	guess, err := c.Extract(context.Background(), "Example Study\nJ. Smith, A. Doe\n2021")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != apiVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, "Example Study") {
		t.Error("prompt should embed the page text")
	}

	if guess.Title != "Example Study" {
		t.Errorf("Title = %q", guess.Title)
	}
	if want := []string{"Smith, J.", "Doe, A."}; !reflect.DeepEqual(guess.Authors, want) {
		t.Errorf("Authors = %v, want %v", guess.Authors, want)
	}
	if guess.Year != "2021" {
		t.Errorf("Year = %q", guess.Year)
	}
}

func TestExtract_TruncatesPromptText(t *testing.T) {
	var gotPrompt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		textResponse(t, w, `{"title": "T", "authors": ["A"], "year": ""}`)
	}))
	defer ts.Close()
	swapAPIURL(t, ts.URL)

	text := strings.Repeat("a", MaxPromptChars) + "OVERFLOW"
	if _, err := testClient(ts).Extract(context.Background(), text); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if strings.Contains(gotPrompt, "OVERFLOW") {
		t.Error("prompt should not contain text beyond MaxPromptChars")
	}
}

func TestExtract_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "The title appears to be Example Study."},
		{"empty title", `{"title": "  ", "authors": ["Smith"], "year": "2021"}`},
		{"no authors", `{"title": "Example Study", "authors": [], "year": "2021"}`},
		{"blank authors", `{"title": "Example Study", "authors": ["  "], "year": "2021"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				textResponse(t, w, tt.text)
			}))
			defer ts.Close()
			swapAPIURL(t, ts.URL)

			_, err := testClient(ts).Extract(context.Background(), "some page text")
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("Extract() error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestExtract_RetriesTransientFailures(t *testing.T) {
	oldBackoff := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = oldBackoff }()

	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": "rate limited"}`)
			return
		}
		textResponse(t, w, `{"title": "Example Study", "authors": ["Smith"], "year": "2021"}`)
	}))
	defer ts.Close()
	swapAPIURL(t, ts.URL)

	guess, err := testClient(ts).Extract(context.Background(), "some page text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls)
	}
	if guess.Title != "Example Study" {
		t.Errorf("Title = %q", guess.Title)
	}
}

func TestExtract_NoRetryOnClientError(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "bad request"}`)
	}))
	defer ts.Close()
	swapAPIURL(t, ts.URL)

	if _, err := testClient(ts).Extract(context.Background(), "some page text"); err == nil {
		t.Fatal("Extract() should fail on HTTP 400")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on client error)", calls)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()
	swapAPIURL(t, ts.URL)

	if _, err := testClient(ts).Extract(context.Background(), "   \n  "); err == nil {
		t.Fatal("Extract() should fail on empty text")
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
