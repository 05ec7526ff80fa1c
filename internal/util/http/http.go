// Package http provides HTTP utilities for fetching remote resources.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jmylchreest/glazecat/internal/security"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent mimics a desktop browser; product CDNs commonly reject bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	// DefaultAccept is the Accept header sent with image requests.
	DefaultAccept = "image/webp,image/apng,image/*,*/*;q=0.8"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// FetchError describes a failed fetch. StatusCode is zero for transport errors.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchOptions configures HTTP fetch behavior.
type FetchOptions struct {
	// Timeout specifies the HTTP request timeout.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Delay is the minimum interval between the starts of successive
	// requests made through the client, across all goroutines. Zero
	// disables rate limiting.
	Delay time.Duration

	// Headers specifies additional HTTP headers to send with the request.
	Headers map[string]string
}

// Response is the body and content type of a successful fetch.
type Response struct {
	Body        []byte
	ContentType string
}

// Client fetches resources with fixed headers and timeout. It never retries.
// A Client is safe for concurrent use and its rate limit is shared by all
// callers.
type Client struct {
	http *resty.Client
}

// NewClient creates a Client from opts.
func NewClient(opts FetchOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", DefaultAccept)
	client.SetHeaders(opts.Headers)

	if opts.Delay > 0 {
		// burst of one: requests never start closer together than Delay
		limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &Client{http: client}
}

// Fetch retrieves url. Non-2xx responses and transport failures are returned
// as *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := security.ValidateImageURL(url); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if !res.IsSuccess() {
		return nil, &FetchError{
			URL:        url,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("%s", http.StatusText(res.StatusCode())),
		}
	}

	return &Response{
		Body:        res.Body(),
		ContentType: res.Header().Get("Content-Type"),
	}, nil
}
