package audnexus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Audnexus instance.
const DefaultBaseURL = "https://api.audnex.us"

// ErrNotFound marks a lookup whose ASIN is not in the catalog. Terminal;
// callers must not retry it.
var ErrNotFound = errors.New("audnexus: asin not found")

// StatusError reports a non-2xx response that is not a not-found, with
// the server's error envelope when it sent one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("audnexus: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("audnexus: status %d", e.Code)
}

// Client defines the catalog operations used by resolution.
type Client interface {
	// GetBook looks up a title by ASIN.
	GetBook(ctx context.Context, asin string) (*Book, error)
	// GetChapters fetches the chapter list for an ASIN.
	GetChapters(ctx context.Context, asin string) (*ChapterList, error)
}

// ClientOption configures the catalog client.
type ClientOption func(*client)

// WithHTTPClient overrides the default HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit overrides the default outbound rate (requests/second).
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *client) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		} else {
			c.limiter = nil
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

type client struct {
	baseURL string
	region  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Audnexus client. Outbound calls are throttled to
// 10 req/s by default; the limiter serializes permit acquisition across
// concurrent resolutions sharing this client.
func NewClient(baseURL string, opts ...ClientOption) Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *client) GetBook(ctx context.Context, asin string) (*Book, error) {
	var book Book
	if err := c.get(ctx, "/books/"+url.PathEscape(asin), &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *client) GetChapters(ctx context.Context, asin string) (*ChapterList, error) {
	var chapters ChapterList
	if err := c.get(ctx, "/books/"+url.PathEscape(asin)+"/chapters", &chapters); err != nil {
		return nil, err
	}
	return &chapters, nil
}

func (c *client) get(ctx context.Context, path string, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "audnexus: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "audnexus: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "audnexus: get %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		var envelope apiError
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return &StatusError{Code: resp.StatusCode, Message: envelope.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "audnexus: decode %s", path)
	}
	return nil
}
