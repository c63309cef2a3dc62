// Package ai extracts bibliographic guesses from page text through a
// Messages-style generative API. It is the fallback when no DOI could be
// found; its guesses are validated elsewhere before being trusted.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultRequestsPerMinute sizes the shared limiter for the service's
	// entry-tier budget.
	DefaultRequestsPerMinute = 50

	// MaxPromptChars caps the page text embedded in a prompt.
	MaxPromptChars = 6000

	// DefaultTimeout bounds every extraction request.
	DefaultTimeout = 60 * time.Second

	maxTokens  = 1024
	apiVersion = "2023-06-01"
)

// apiURL is the Messages API endpoint. Package-level var for test
// substitution.
var apiURL = "https://api.anthropic.com/v1/messages"

// backoffBase controls the retry delay. Tests override this to avoid real
// sleeps.
var backoffBase = time.Second

// ErrMalformedResponse indicates the service answered but its content could
// not be parsed into a usable guess. A malformed response is never
// partially trusted.
var ErrMalformedResponse = errors.New("malformed extraction response")

// Guess is the model's reading of a document's bibliographic identity.
// Year may be empty; title and authors never are.
type Guess struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    string   `json:"year"`
}

// Client is a rate-limited extraction client. One client is shared by all
// workers so the limiter spans the whole batch.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	model      string
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter replaces the default request limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithRequestsPerMinute resizes the limiter for a different request budget.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

// NewClient creates an extraction client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/DefaultRequestsPerMinute), 1),
		apiKey:     apiKey,
		model:      DefaultModel,
		maxRetries: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// retryableError marks failures worth one more attempt (429, 5xx, network).
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Extract asks the model for the bibliographic identity of the document
// whose first-page text is given. The text is truncated to MaxPromptChars
// before prompting.
func (c *Client) Extract(ctx context.Context, text string) (*Guess, error) {
	text = truncate(text, MaxPromptChars)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to extract from")
	}

	prompt, err := renderPrompt(text)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseGuess(raw)
}

// callWithRetry performs the API call, retrying transient failures with
// exponential backoff.
func (c *Client) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := c.call(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var transient *retryableError
		if !errors.As(err, &transient) {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// call performs one Messages API round trip and returns the first text
// block of the response.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("calling extraction API: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("extraction API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", &retryableError{err: apiErr}
		}
		return "", apiErr
	}

	var mResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrMalformedResponse, err)
	}
	for _, block := range mResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content", ErrMalformedResponse)
}

// parseGuess parses the model's reply strictly: it must be a bare JSON
// object with a non-empty title and author list.
func parseGuess(raw string) (*Guess, error) {
	var g Guess
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	g.Title = strings.TrimSpace(g.Title)

	authors := g.Authors[:0]
	for _, a := range g.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	g.Authors = authors
	g.Year = strings.TrimSpace(g.Year)

	if g.Title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrMalformedResponse)
	}
	if len(g.Authors) == 0 {
		return nil, fmt.Errorf("%w: empty author list", ErrMalformedResponse)
	}
	return &g, nil
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
