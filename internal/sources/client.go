package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every metadata lookup request.
const DefaultTimeout = 10 * time.Second

// Per-source request budgets in requests per second, sized for the public
// unauthenticated tiers. Semantic Scholar's shared pool is by far the
// tightest.
const (
	openalexRate        = 10
	crossrefRate        = 10
	dataciteRate        = 10
	europepmcRate       = 10
	semanticScholarRate = 1
	scopusRate          = 5
	unpaywallRate       = 10
)

// client carries the HTTP plumbing shared by all source implementations.
type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	email      string
}

// Option configures a source client.
type Option func(*client)

// WithAPIKey sets the API key for sources that authenticate requests.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithEmail sets the contact email for sources with polite-pool or
// email-keyed access.
func WithEmail(email string) Option {
	return func(c *client) {
		c.email = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *client) {
		c.baseURL = url
	}
}

func newClient(baseURL string, perSecond float64, opts ...Option) client {
	c := client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// getJSON performs one rate-limited GET against url and decodes the body
// into out.
func (c *client) getJSON(ctx context.Context, source, url string, header http.Header, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(source, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s body: %v", ErrInvalidResponse, source, err)
	}
	return nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(source string, resp *http.Response) error {
	switch {
	case resp.StatusCode == 404:
		return fmt.Errorf("%s: %w", source, ErrNotFound)
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("%s: %w (status %d)", source, ErrAuthError, resp.StatusCode)
	case resp.StatusCode == 429:
		return fmt.Errorf("%s: %w", source, ErrRateLimited)
	case resp.StatusCode >= 400:
		return &APIError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// userAgent builds the identifying User-Agent string the bibliographic APIs
// ask automated clients to send; an email joins the polite pools.
func userAgent(email string) string {
	if email == "" {
		return "litsort/1.0"
	}
	return fmt.Sprintf("litsort/1.0 (mailto:%s)", email)
}
