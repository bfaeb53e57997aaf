// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured         = errors.New("bridggy: client is not configured, call Configure with a proxy token first")
	ErrInvalidTokenFormat    = errors.New("invalid token format")
	ErrMalformedToken        = errors.New("invalid or malformed token")
	ErrMissingScope          = errors.New("token has no scope claim")
	ErrMissingAudience       = errors.New("token has no aud claim")
	ErrEmptyExchangeResponse = errors.New("token exchange response has no token")
	ErrUnsupportedInputType  = errors.New("unsupported input type")
)

// ExchangeError is returned when the token exchange endpoint responds with a non-2xx status.
type ExchangeError struct {
	StatusCode int
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: HTTP %d", e.StatusCode)
}

// InvalidInputError is returned when a string input is not an absolute URL.
type InvalidInputError struct {
	Input string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid URL %q", e.Input)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// ProxyError is an application-level error reported by the proxy
// through the ErrorHeader and StatusHeader response headers.
type ProxyError struct {
	// Status is the upstream status as reported by the proxy, it may be empty.
	Status string
	// Text is the human-readable error text.
	Text string
}

func (e *ProxyError) Error() string {
	return "status: " + e.Status + " " + e.Text
}
