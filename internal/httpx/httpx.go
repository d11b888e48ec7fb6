package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"pricr/internal/provider"
	"pricr/internal/provider/cache"
)

//go:generate mockgen -destination=../provider/providermock/doer.go -package=providermock pricr/internal/httpx Doer

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a small wrapper around an HTTP doer with sane defaults.
type Client struct {
	HTTP      Doer
	UserAgent string
	Headers   map[string]string
}

const (
	DefaultUserAgent = "pricr/1.0"
	maxBodyBytes     = 8 << 20
)

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: DefaultUserAgent}
}

func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req)
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Get fetches rawURL and returns the body. Network failures and non-2xx
// statuses come back as transport errors attributed to providerName.
func (c *Client) Get(ctx context.Context, providerName, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, provider.Transport(providerName, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, provider.Transport(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, provider.Transport(providerName, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, provider.Transport(providerName, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)})
	}
	return body, nil
}

// GetJSON is Get followed by decoding into v; decode failures are parse errors.
func (c *Client) GetJSON(ctx context.Context, providerName, rawURL string, headers map[string]string, v any) error {
	body, err := c.Get(ctx, providerName, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return provider.Parse(providerName, "response", err)
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// CachedGet serves rawURL from store while the entry is younger than ttl and
// otherwise fetches it and stores the body under key. Only successful
// responses are cached.
func (c *Client) CachedGet(ctx context.Context, store *cache.Store, namespace, key string, ttl time.Duration, providerName, rawURL string, headers map[string]string) ([]byte, error) {
	if body, ok := cache.Read[string](store, namespace, key, ttl); ok {
		return []byte(body), nil
	}
	body, err := c.Get(ctx, providerName, rawURL, headers)
	if err != nil {
		return nil, err
	}
	store.Write(namespace, key, string(body))
	return body, nil
}
