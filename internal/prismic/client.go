// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prismic is a small client for the Prismic REST API v2. It covers
// what the site needs: predicate queries, lookups by UID, and following the
// next_page cursor returned with every search response.
package prismic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// refTTL bounds how long the master ref is reused before the API root is
// fetched again. New publications become visible after at most this long.
const refTTL = 30 * time.Second

// maxErrorBody caps how much of an error response is kept in APIError.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	Endpoint    string // e.g. https://repo.cdn.prismic.io/api/v2
	AccessToken string
	MaxRetries  int
	Timeout     time.Duration
	Logger      *slog.Logger
	// Transport overrides the pooled transport (tests).
	Transport http.RoundTripper
}

// QueryOptions tunes a document search.
type QueryOptions struct {
	PageSize  int
	Page      int
	Orderings []Ordering
}

// Client talks to a single Prismic repository. It is safe for concurrent use.
type Client struct {
	endpoint *url.URL
	token    string
	http     *http.Client
	refs     *expirable.LRU[string, string]
}

// New creates a client for the repository at opts.Endpoint.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("prismic endpoint must be an absolute http(s) URL: %q", opts.Endpoint)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	if opts.Transport != nil {
		retryClient.HTTPClient.Transport = opts.Transport
	}
	retryClient.RetryMax = opts.MaxRetries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: logger.With("subsystem", "prismic")})
	retryClient.CheckRetry = retryPolicy
	// Hand the final response back to the caller instead of a generic
	// "giving up" error, so status codes still reach APIError.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := retryClient.StandardClient()
	client.Timeout = timeout

	return &Client{
		endpoint: u,
		token:    opts.AccessToken,
		http:     client,
		refs:     expirable.NewLRU[string, string](1, nil, refTTL),
	}, nil
}

// Endpoint returns the repository API endpoint the client was built with.
func (c *Client) Endpoint() *url.URL {
	u := *c.endpoint
	return &u
}

// Ref returns the repository's current master ref.
func (c *Client) Ref(ctx context.Context) (string, error) {
	if ref, ok := c.refs.Get("master"); ok {
		return ref, nil
	}

	u := c.Endpoint()
	if c.token != "" {
		q := u.Query()
		q.Set("access_token", c.token)
		u.RawQuery = q.Encode()
	}

	var root apiRoot
	if err := c.getJSON(ctx, u.String(), &root); err != nil {
		return "", fmt.Errorf("fetch api root: %w", err)
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			c.refs.Add("master", r.Ref)
			return r.Ref, nil
		}
	}
	return "", fmt.Errorf("prismic: api root has no master ref")
}

// Query searches documents matching every predicate.
func (c *Client) Query(ctx context.Context, preds []Predicate, opts QueryOptions) (*Response, error) {
	ref, err := c.Ref(ctx)
	if err != nil {
		return nil, err
	}

	u := c.Endpoint()
	u.Path += "/documents/search"
	q := url.Values{}
	q.Set("ref", ref)
	if len(preds) > 0 {
		q.Set("q", query(preds))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if len(opts.Orderings) > 0 {
		q.Set("orderings", orderings(opts.Orderings))
	}
	if c.token != "" {
		q.Set("access_token", c.token)
	}
	u.RawQuery = q.Encode()

	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	resp.stripToken()
	return &resp, nil
}

// GetByUID returns the document of docType with the given UID, or
// ErrNotFound when the repository has none.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (*Document, error) {
	resp, err := c.Query(ctx, []Predicate{UID(docType, uid)}, QueryOptions{PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

// Fetch follows a next_page cursor URL. Cursors handed out by the client
// carry no access token; it is added back here.
func (c *Client) Fetch(ctx context.Context, cursor string) (*Response, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if c.token != "" {
		q := u.Query()
		q.Set("access_token", c.token)
		u.RawQuery = q.Encode()
	}

	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	resp.stripToken()
	return &resp, nil
}

// getJSON issues a GET and decodes a JSON body into dst.
func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, URL: redact(rawURL), Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryPolicy wraps the default policy, treating 429 as final so the
// caller decides how to handle rate limiting.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// withoutToken removes the access token the repository echoes back in
// page cursors. Unparseable cursors are dropped.
func withoutToken(cursor *string) *string {
	if cursor == nil {
		return nil
	}
	u, err := url.Parse(*cursor)
	if err != nil {
		return nil
	}
	q := u.Query()
	if !q.Has("access_token") {
		return cursor
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	out := u.String()
	return &out
}

// redact strips the access token from URLs that end up in errors and logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// leveledSlog adapts slog to retryablehttp, downgrading ERROR to WARN
// since intermediate failures are retried.
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l leveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}
