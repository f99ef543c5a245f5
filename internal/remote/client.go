// Package remote wraps the generation API. Every call is one request and one
// response: non-2xx replies come back as a Response with OK=false, and only
// transport failures are returned as errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultGenerateTimeout = 10 * time.Minute
	defaultKeyHeader       = "X-API-Key"
	maxResponseBytes       = 8 << 20
	userAgent              = "mediagate/1.0"
)

// Client calls the remote generation API. It is safe for concurrent use.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	apiKey          string
	keyHeader       string
	timeout         time.Duration
	generateTimeout time.Duration
	pricing         *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAPIKey sets the static API key and the header that carries it.
func WithAPIKey(header, key string) Option {
	return func(c *Client) {
		if header != "" {
			c.keyHeader = header
		}
		c.apiKey = key
	}
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithGenerateTimeout sets the upper bound for synchronous generation.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.generateTimeout = d
		}
	}
}

// WithPricingTTL sets how long a successful pricing response is reused.
// Zero disables caching.
func WithPricingTTL(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.pricing = nil
			return
		}
		c.pricing = cache.New(d, 0)
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: base url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("remote: base url has no host")
	}

	c := &Client{
		baseURL:         u,
		httpClient:      &http.Client{},
		keyHeader:       defaultKeyHeader,
		timeout:         defaultTimeout,
		generateTimeout: defaultGenerateTimeout,
		pricing:         cache.New(5*time.Minute, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HasAPIKey reports whether a key is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Request describes one outbound call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is JSON-encoded when non-nil.
	Body any
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// Response is the outcome of a call that reached the server.
type Response struct {
	OK     bool
	Status int
	// Body is the parsed JSON body, or the raw text when it is not JSON.
	Body any
	Raw  []byte
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if len(r.Raw) == 0 {
		return errors.New("remote: empty response body")
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

// Do performs req. A non-2xx status is not an error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("remote: encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.endpoint(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set(c.keyHeader, c.apiKey)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, newTransportError(ctx, method, req.Path, time.Since(start), err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, newTransportError(ctx, method, req.Path, time.Since(start), err)
	}
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("remote: %s %s: %w", method, req.Path, ErrResponseTooLarge)
	}

	return &Response{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Body:   parseBody(raw),
		Raw:    raw,
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func parseBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(trimmed)
}
