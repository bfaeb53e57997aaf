// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	// DefaultProxyDomain is the parent domain of proxy hosts, the scope claim is prepended to it.
	DefaultProxyDomain = "bridggy.com"

	// DefaultRetryDelay is the time to wait before retrying a GET request that failed with a proxy 502.
	DefaultRetryDelay = 2 * time.Second

	// DefaultExpiryLeeway is the margin before the exp claim at which an access token is considered expired.
	DefaultExpiryLeeway = time.Minute
)

// Options is the configuration set with Client.Configure.
type Options struct {
	// Token is the long-lived proxy token exchanged for short-lived access tokens.
	Token string

	// Retry enables a single retry of GET requests the proxy failed with status 502.
	// If nil, retry is enabled.
	Retry *bool
}

// ClientConfig holds the settings of a Client that do not change between Configure calls.
type ClientConfig struct {
	// ProxyDomain is the domain the proxy hosts live under,
	// requests are sent to https://<scope>.<ProxyDomain>/proxy.
	ProxyDomain string

	// RetryDelay is the time to wait before a retry.
	RetryDelay time.Duration

	// ExpiryLeeway is subtracted from the exp claim when checking expiry.
	ExpiryLeeway time.Duration

	// Origin is the caller origin sent in the Origin header.
	// An origin attached to the request context with ContextWithOrigin takes precedence.
	Origin string

	// RateLimit limits the number of requests per second sent to the proxy,
	// including retries. Zero means no limit.
	RateLimit rate.Limit

	// RateBurst is the maximum burst size when RateLimit is set.
	RateBurst int

	// Now returns the current time, if nil time.Now is used.
	Now func() time.Time

	PromNamespace string
	PromRegistry  prometheus.Registerer
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ProxyDomain:   DefaultProxyDomain,
		RetryDelay:    DefaultRetryDelay,
		ExpiryLeeway:  DefaultExpiryLeeway,
		RateBurst:     1,
		PromNamespace: "bridggy",
	}
}

func (c *ClientConfig) Validate() error {
	if c.ProxyDomain == "" {
		return errors.New("proxy domain is required")
	}
	if strings.ContainsAny(c.ProxyDomain, "/?#@") {
		return errors.New("proxy domain must be a host name")
	}
	if c.RetryDelay < 0 {
		return errors.New("retry delay must be non-negative")
	}
	if c.ExpiryLeeway < 0 {
		return errors.New("expiry leeway must be non-negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must be non-negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return errors.New("rate burst must be at least 1 when rate limit is set")
	}
	return nil
}

func (c *ClientConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
