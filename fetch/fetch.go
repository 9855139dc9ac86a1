// Package fetch downloads survey module sources over HTTP.
//
// Modules are addressed by name relative to a base URL, which defaults to the
// production directory of the public questionnaire repository:
//
//	c, _ := fetch.New()
//	text, err := c.Get(ctx, "module1.txt")
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/klauspost/readahead"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/qmod/log"
)

const (
	// DefaultBaseURL is the directory module names are resolved against.
	DefaultBaseURL = "https://raw.githubusercontent.com/episphere/questionnaire/refs/heads/main/prod/"

	// DefaultTimeout bounds each request made by a Client.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of parallel requests made by GetAll.
	DefaultConcurrency = 4

	// MaxBodyBytes is the largest response body accepted.
	MaxBodyBytes = 16 << 20
)

// Client fetches module sources.
type Client struct {
	base        string
	http        *http.Client
	timeout     time.Duration
	concurrency int
	logger      log.Logger

	baseURL *url.URL
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the URL that module names are resolved against.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = max(d, 0) }
}

// WithConcurrency sets the number of parallel requests made by GetAll.
func WithConcurrency(n int) Option {
	return func(c *Client) { c.concurrency = max(n, 1) }
}

// WithLogger sets the logger for request records.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client configured by opts.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		base:        DefaultBaseURL,
		http:        http.DefaultClient,
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	u, err := url.Parse(c.base)
	if err != nil {
		return nil, ErrInvalidBase.Wrap(err).With(slog.String("base", c.base))
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidBase.With(slog.String("base", c.base))
	}

	c.baseURL = u

	return c, nil
}

// URL returns the address of the named module.
func (c *Client) URL(name string) (string, error) {
	clean := path.Clean("/" + name)
	if name == "" || strings.HasSuffix(name, "/") || clean == "/" ||
		strings.Contains(name, "..") {
		return "", ErrInvalidName.With(slog.String("name", name))
	}

	return c.baseURL.JoinPath(clean).String(), nil
}

// Get downloads the named module and returns its text.
func (c *Client) Get(ctx context.Context, name string) (string, error) {
	addr, err := c.URL(name)
	if err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return "", ErrTransport.Wrap(err).With(slog.String("url", addr))
	}

	start := time.Now()

	c.logger.DebugContext(ctx, "fetch", slog.String("url", addr))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", ErrTransport.Wrap(err).With(slog.String("url", addr))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

		return "", ErrStatus.With(
			slog.String("url", addr),
			slog.Int("status", resp.StatusCode),
		)
	}

	ra := readahead.NewReader(io.LimitReader(resp.Body, MaxBodyBytes+1))
	defer ra.Close()

	body, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrTransport.Wrap(err).With(slog.String("url", addr))
	}

	if len(body) > MaxBodyBytes {
		return "", ErrTooLarge.With(
			slog.String("url", addr),
			slog.Int("limit", MaxBodyBytes),
		)
	}

	c.logger.DebugContext(ctx, "fetched",
		slog.String("url", addr),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	return string(body), nil
}

// Result is one module downloaded by GetAll.
type Result struct {
	Name string
	Text string
}

// GetAll downloads the named modules concurrently and returns them in the
// order of names. The first failure cancels the outstanding requests.
func (c *Client) GetAll(ctx context.Context, names ...string) ([]Result, error) {
	results := make([]Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, name := range names {
		g.Go(func() error {
			text, err := c.Get(gctx, name)
			if err != nil {
				return err
			}

			results[i] = Result{Name: name, Text: text}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
