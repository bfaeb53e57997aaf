// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/arisyntek/bridggy/log"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Wire protocol header names and values.
const (
	SourceHeader    = "gg-x-source"
	TokenHeader     = "gg-x-token"
	TimestampHeader = "gg-x-timestamp"

	// ErrorHeader is set by the proxy on responses that failed at the application level.
	ErrorHeader = "gg-x-error"
	// StatusHeader carries the upstream status code of a failed response.
	StatusHeader = "gg-x-status"

	SourceClient = "client"
)

// maxAttempts bounds the dispatch loop, the first attempt plus a single retry.
const maxAttempts = 2

// Client sends requests through the bridggy proxy.
// It exchanges the configured proxy token for short-lived access tokens as needed.
// Client is safe for concurrent use.
type Client struct {
	config  ClientConfig
	rt      http.RoundTripper
	log     log.Logger
	metrics *clientMetrics
	limiter *rate.Limiter
	sf      singleflight.Group

	mu     sync.RWMutex
	token  string
	retry  bool
	access string
}

// NewClient creates a new Client, it must be configured with Configure before use.
// If rt is nil, a transport created from DefaultHTTPTransportConfig is used.
func NewClient(cfg *ClientConfig, rt http.RoundTripper, log log.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if rt == nil {
		log.Debugf("HTTP transport not configured, using default")
		tr, err := NewHTTPTransport(DefaultHTTPTransportConfig())
		if err != nil {
			return nil, err
		}
		rt = tr
	}

	c := &Client{
		config:  *cfg,
		rt:      rt,
		log:     log,
		metrics: newClientMetrics(cfg.PromRegistry, cfg.PromNamespace),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	return c, nil
}

// Configure sets the proxy token and retry policy, it replaces any previous configuration.
// The access token obtained for the previous proxy token is dropped.
func (c *Client) Configure(opts Options) {
	retry := true
	if opts.Retry != nil {
		retry = *opts.Retry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = opts.Token
	c.retry = retry
	c.access = ""
}

// Configured reports whether a proxy token is set.
func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// AccessToken returns the currently held access token, it may be empty or expired.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

func (c *Client) state() (token, access string, retry bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.access, c.retry
}

// IsExpired reports whether the held access token must be exchanged before use.
// It returns true if no access token is held.
// An access token without a numeric exp claim is an error, not an expired token.
func (c *Client) IsExpired() (bool, error) {
	_, access, _ := c.state()
	return c.isExpired(access)
}

func (c *Client) isExpired(access string) (bool, error) {
	if access == "" {
		return true, nil
	}
	claims, err := DecodeClaims(access)
	if err != nil {
		return false, err
	}
	return claims.Expired(c.config.now(), c.config.ExpiryLeeway)
}

// ensureFresh returns a non-expired access token, exchanging the proxy token if needed.
// Concurrent callers share a single in-flight exchange.
func (c *Client) ensureFresh(ctx context.Context) (string, error) {
	_, access, _ := c.state()
	expired, err := c.isExpired(access)
	if err != nil {
		return "", err
	}
	if !expired {
		return access, nil
	}

	v, err, _ := c.sf.Do("exchange", func() (any, error) {
		return c.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil //nolint:forcetypeassert // exchange returns string
}

// Fetch sends a request through the proxy and returns the proxy response.
//
// The input can be an absolute URL string, a *url.URL or url.URL,
// a *Request or an *http.Request. The init options, if not nil, are applied on top of the input.
//
// The response is returned as is unless the proxy reports an error with the ErrorHeader,
// in that case a *ProxyError is returned.
// GET requests failed with proxy status 502 are retried once if retry is enabled.
func (c *Client) Fetch(ctx context.Context, input any, init *RequestInit) (res *http.Response, err error) {
	id := ulid.Make().String()
	defer func() {
		c.metrics.fetch(err)
		if err != nil {
			c.log.Debugf("[%s] fetch failed: %s", id, err)
		}
	}()

	token, _, retry := c.state()
	if token == "" {
		return nil, ErrNotConfigured
	}

	access, err := c.ensureFresh(ctx)
	if err != nil {
		return nil, err
	}

	d, err := normalize(input, init)
	if err != nil {
		return nil, err
	}

	p, err := c.rewrite(ctx, d, access)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("[%s] %s %s via %s", id, d.method, d.dst.Redacted(), p.url.Host)

	if d.body != nil && retry && d.method == http.MethodGet {
		if err := p.bufferBody(); err != nil {
			return nil, err
		}
	}

	return c.dispatch(ctx, id, p, retry)
}

func (c *Client) dispatch(ctx context.Context, id string, p *proxyRequest, retry bool) (*http.Response, error) {
	hc := &http.Client{
		Transport:     c.rt,
		CheckRedirect: p.redirect.checkRedirect(),
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		req, err := p.newRequest(ctx)
		if err != nil {
			return nil, err
		}
		res, err := hc.Do(req)
		if err != nil {
			return nil, err
		}

		perr, ok := proxyErrorFrom(res)
		if !ok {
			return res, nil
		}
		closeBody(res)
		c.metrics.proxyError(perr.Status)

		if attempt == 1 && retry && p.method == http.MethodGet && perr.Status == "502" {
			c.log.Debugf("[%s] proxy error %q, retrying in %s", id, perr, c.config.RetryDelay)
			c.metrics.retry()
			if err := sleep(ctx, c.config.RetryDelay); err != nil {
				return nil, err
			}
			continue
		}

		return nil, perr
	}

	panic("bridggy: dispatch loop exhausted without a result")
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// RoundTrip implements http.RoundTripper, it sends req through the proxy with Fetch.
// Redirects are not followed, an http.Client using the Client as transport handles them.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := c.Fetch(req.Context(), req, &RequestInit{Close: req.Close, Redirect: RedirectManual})
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	res.Request = req
	return res, nil
}

func proxyErrorFrom(res *http.Response) (*ProxyError, bool) {
	text := res.Header.Get(ErrorHeader)
	if text == "" {
		return nil, false
	}
	return &ProxyError{
		Status: res.Header.Get(StatusHeader),
		Text:   text,
	}, true
}

func closeBody(res *http.Response) {
	io.Copy(io.Discard, io.LimitReader(res.Body, 4096)) //nolint:errcheck // best effort
	res.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// IsRetryable reports whether err is a proxy error that the client would retry for a GET request.
func IsRetryable(err error) bool {
	var perr *ProxyError
	return errors.As(err, &perr) && perr.Status == "502"
}
