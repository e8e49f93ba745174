// Package edgarindex retrieves the SEC EDGAR filing index, either as the
// single full master index or as a date-bounded aggregation of daily indices
// assembled by walking the archive's directory tree.
package edgarindex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultFTPAddress is the archive host serving directory listings and
// daily index files
const DefaultFTPAddress = "ftp.sec.gov:21"

// FullIndexURL is the fixed location of the full master index archive
const FullIndexURL = "https://www.sec.gov/Archives/edgar/full-index/master.zip"

// dailyIndexRoot is the fixed root of the daily index directory tree
const dailyIndexRoot = "edgar/daily-index"

// Client is a client for retrieving EDGAR index data
type Client struct {
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      zerolog.Logger

	ftpAddr     string
	timeout     time.Duration
	concurrency int
	dialSession func(ctx context.Context) (Session, error)
}

// ClientOption allows for customization of the client
type ClientOption func(*Client)

// NewClient creates a new EDGAR index client
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		userAgent:   "CompanyName <contact@email.com>",
		rateLimiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:      zerolog.Nop(),
		ftpAddr:     DefaultFTPAddress,
		timeout:     30 * time.Second,
		concurrency: 4,
	}
	client.dialSession = func(ctx context.Context) (Session, error) {
		return dialFTP(ctx, client.ftpAddr, client.userAgent, client.timeout)
	}

	for _, option := range options {
		option(client)
	}
	return client
}

// WithHTTPClient allows custom HTTP client configuration
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets a custom user agent string. The SEC requires a contact
// user agent; it also doubles as the anonymous FTP password.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for walk and fetch progress
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithFTPAddress points the client at a different archive host, e.g. a
// mirror or a test server
func WithFTPAddress(addr string) ClientOption {
	return func(c *Client) {
		c.ftpAddr = addr
	}
}

// WithTimeout sets the per-operation deadline for archive sessions. Values
// of zero or less are ignored, keeping the default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithFetchConcurrency bounds the worker pool that fetches matched daily
// index files. A value of 1 fetches strictly sequentially.
func WithFetchConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithSessionDialer replaces how listing sessions are established
func WithSessionDialer(dial func(ctx context.Context) (Session, error)) ClientOption {
	return func(c *Client) {
		c.dialSession = dial
	}
}

// FileContents retrieves the contents of a file at the specified URL
func (c *Client) FileContents(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
