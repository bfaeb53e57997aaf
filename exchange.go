// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const exchangePath = "/token/exchange"

// maxExchangeResponseSize limits the size of the exchange response body.
const maxExchangeResponseSize = 1 << 20

type exchangeRequest struct {
	Token string `json:"token"`
}

type exchangeResponse struct {
	Token string `json:"token"`
}

// Exchange exchanges the configured proxy token for a new access token and stores it.
// It is called by Fetch when the held access token is missing or expired,
// it can be called directly to obtain an access token upfront.
func (c *Client) Exchange(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	v, err, _ := c.sf.Do("exchange", func() (any, error) {
		return c.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil //nolint:forcetypeassert // exchange returns string
}

func (c *Client) exchange(ctx context.Context) (access string, err error) {
	defer func() {
		c.metrics.exchange(err)
	}()

	token, _, _ := c.state()

	claims, err := DecodeClaims(token)
	if err != nil {
		return "", err
	}
	aud, err := claims.Audience()
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimSuffix(aud, "/") + exchangePath

	body, err := json.Marshal(exchangeRequest{Token: token})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SourceHeader, SourceClient)
	req.Header.Set(TimestampHeader, strconv.FormatInt(c.config.now().UnixMilli(), 10))

	c.log.Debugf("exchanging token at %s", endpoint)
	res, err := c.rt.RoundTrip(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &ExchangeError{StatusCode: res.StatusCode}
	}

	var r exchangeResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxExchangeResponseSize)).Decode(&r); err != nil {
		return "", fmt.Errorf("token exchange: decode response: %w", err)
	}
	if r.Token == "" {
		return "", ErrEmptyExchangeResponse
	}

	c.mu.Lock()
	if c.token == token {
		c.access = r.Token
	}
	c.mu.Unlock()

	c.log.Infof("access token obtained for %s", scopeOf(r.Token))

	return r.Token, nil
}

func scopeOf(access string) string {
	claims, err := DecodeClaims(access)
	if err != nil {
		return "unknown scope"
	}
	s, err := claims.Scope()
	if err != nil {
		return "unknown scope"
	}
	return "scope " + s
}
