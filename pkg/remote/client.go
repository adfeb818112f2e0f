// Package remote talks to the newsletter JSON API with a session cookie attached to every request.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/umputun/postbook/pkg/domain"
)

// DefaultCookieName is the session cookie used by substack-hosted newsletters
const DefaultCookieName = "substack.sid"

// maxErrorBody limits how much of a failed response goes into the error message
const maxErrorBody = 512

// Config holds remote client settings
type Config struct {
	BaseURL    string
	SessionID  string
	CookieName string
	UserAgent  string
	Timeout    time.Duration
}

// Client is an authenticated HTTP client bound to one newsletter
type Client struct {
	baseURL   *url.URL
	userAgent string
	client    *http.Client
}

// New creates a client with the session cookie stored in a jar scoped to the base url
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if cfg.SessionID != "" {
		name := cfg.CookieName
		if name == "" {
			name = DefaultCookieName
		}
		jar.SetCookies(base, []*http.Cookie{{Name: name, Value: cfg.SessionID, Path: "/"}})
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// BaseURL returns the normalized base url with a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetJSON requests path relative to the base url and decodes the json response into dst.
// Network failures, non-200 statuses and undecodable bodies are reported as domain.ErrTransport,
// callers re-classify decode failures if their contract needs it.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dst any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	addBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %v", domain.ErrTransport, u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: u.Redacted(), Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &DecodeError{URL: u.Redacted(), Err: err}
	}
	return nil
}

// StatusError is returned for non-200 responses
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
	}
	return fmt.Sprintf("unexpected status code %d for %s: %s", e.Code, e.URL, e.Body)
}

// Unwrap makes errors.Is(err, domain.ErrTransport) hold
func (e *StatusError) Unwrap() error { return domain.ErrTransport }

// DecodeError is returned when the response body is not the expected json
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

// Unwrap exposes both the transport classification and the decoder error
func (e *DecodeError) Unwrap() []error { return []error{domain.ErrTransport, e.Err} }
