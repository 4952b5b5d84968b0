package shopapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/media"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL   = "http://localhost:5000"
	defaultUserAgent = "shopdesk/0.1"
	defaultTimeout   = 15 * time.Second
	defaultRetries   = 2
	defaultRetryWait = time.Second

	requestIDHeader = "X-Request-ID"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Options configure a Client. Zero values use package defaults; a negative
// RetryCount disables retries.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
	Tokens     TokenSource
	Logger     logrus.FieldLogger
	UserAgent  string
}

// Client talks to the storefront REST API.
type Client struct {
	baseURL *url.URL
	http    *resty.Client
	tokens  TokenSource
	log     logrus.FieldLogger
	retries int
}

// Request describes one logical API call. Body is JSON-encoded; Form, when
// set, takes precedence and is sent as multipart/form-data.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
	Form    *media.Form
}

// NewClient builds a Client for opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.RetryCount
	switch {
	case retries == 0:
		retries = defaultRetries
	case retries < 0:
		retries = 0
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = defaultRetryWait
	}
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(nopWriter{})
		logger = discard
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		baseURL: base,
		tokens:  opts.Tokens,
		log:     logger,
		retries: retries,
	}
	// Equal wait bounds give a fixed delay between attempts.
	c.http = resty.New().
		SetBaseURL(base.String()).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(delay).
		SetRetryMaxWaitTime(delay).
		SetLogger(logger).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		AddRetryHook(c.logRetry)
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes req and returns the raw 2xx response body. Failures are always
// *Error values.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := "/" + strings.TrimLeft(req.Path, "/")
	requestID := uuid.NewString()

	r := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if _, ok := req.Headers["Authorization"]; !ok && c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			r.SetAuthToken(token)
		}
	}

	switch {
	case req.Form != nil:
		if err := req.Form.Apply(r); err != nil {
			return nil, &Error{Kind: KindClient, Method: method, Path: path, Message: err.Error(), Err: err}
		}
		defer func() { _ = req.Form.Close() }()
	case req.Body != nil:
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	r.AddRetryCondition(func(resp *resty.Response, err error) bool {
		return shouldRetry(ctx, method, resp, err)
	})

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	started := time.Now()
	resp, err := r.Execute(method, path)
	if err != nil {
		apiErr := transportError(method, path, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			apiErr = transportError(method, path, ctxErr)
		}
		log.WithError(err).WithField("kind", apiErr.Kind.String()).Warn("request failed")
		return nil, apiErr
	}

	status := resp.StatusCode()
	log.WithFields(logrus.Fields{
		"status":   status,
		"attempt":  resp.Request.Attempt,
		"duration": time.Since(started).Round(time.Millisecond),
	}).Debug("request completed")

	if status < 200 || status >= 300 {
		return nil, statusError(method, path, status, resp.Body())
	}
	return resp.Body(), nil
}

// ResolveMedia turns a relative media path into an absolute URL. Absolute
// URLs and data: URIs pass through untouched.
func (c *Client) ResolveMedia(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return trimmed
	}
	rel, err := url.Parse("/" + strings.TrimLeft(strings.ReplaceAll(trimmed, `\`, "/"), "/"))
	if err != nil {
		return trimmed
	}
	return c.baseURL.ResolveReference(rel).String()
}

func (c *Client) logRetry(resp *resty.Response, err error) {
	fields := logrus.Fields{}
	if resp != nil && resp.Request != nil {
		fields["method"] = resp.Request.Method
		fields["url"] = resp.Request.URL
		fields["attempt"] = resp.Request.Attempt
		fields["request_id"] = resp.Request.Header.Get(requestIDHeader)
		if resp.RawResponse != nil {
			fields["status"] = resp.StatusCode()
		}
	}
	entry := c.log.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("retrying request")
}

// shouldRetry limits retries to idempotent methods failing transiently, and
// never retries once the caller has given up.
func shouldRetry(ctx context.Context, method string, resp *resty.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode() >= 500
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if strings.HasSuffix(u.Path, "/api") {
		u.Path = strings.TrimSuffix(u.Path, "/api")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
