// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the decoded claims segment of a compact token.
// The signature is never verified, claims are only used for routing and expiry bookkeeping.
type Claims struct {
	jwt.MapClaims
}

// DecodeClaims decodes the second, dot separated, segment of token.
func DecodeClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return Claims{}, fmt.Errorf("%w: missing claims segment", ErrInvalidTokenFormat)
	}

	b, err := decodeURLSafe(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrInvalidTokenFormat, err)
	}

	var m jwt.MapClaims
	if err := json.Unmarshal(b, &m); err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrInvalidTokenFormat, err)
	}
	if m == nil {
		return Claims{}, fmt.Errorf("%w: claims are not an object", ErrInvalidTokenFormat)
	}

	return Claims{m}, nil
}

// ExpiresAt returns the exp claim, it fails with ErrMalformedToken if exp is missing or not a number.
func (c Claims) ExpiresAt() (time.Time, error) {
	exp, err := c.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: exp: %s", ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: exp is missing", ErrMalformedToken)
	}
	return exp.Time, nil
}

// Audience returns the first aud claim value, it is the base URL of the token exchange endpoint.
func (c Claims) Audience() (string, error) {
	aud, err := c.GetAudience()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingAudience, err)
	}
	for _, a := range aud {
		if a != "" {
			return a, nil
		}
	}
	return "", ErrMissingAudience
}

// Scope returns the scope claim used to build the proxy host name.
func (c Claims) Scope() (string, error) {
	s, ok := c.MapClaims["scope"].(string)
	if !ok || s == "" {
		return "", ErrMissingScope
	}
	return s, nil
}

// Expired reports whether a token with the given claims is expired at now,
// tokens are treated as expired leeway before their exp.
func (c Claims) Expired(now time.Time, leeway time.Duration) (bool, error) {
	exp, err := c.ExpiresAt()
	if err != nil {
		return false, err
	}
	return !now.Before(exp.Add(-leeway)), nil
}
