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
	"net"
	"net/http"

	"github.com/arisyntek/bridggy/middleware"
)

// GatewayErrorHeader is set on gateway error responses with the error message.
const GatewayErrorHeader = "X-Bridggy-Error"

func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	handlers := []errorHandler{
		handleProxyError,
		handleExchangeError,
		handleInputError,
		handleTokenError,
		handleNetError,
		handleContextError,
	}

	var (
		code int
		msg  string
	)
	for _, h := range handlers {
		code, msg = h(err)
		if code != 0 {
			break
		}
	}
	if code == 0 {
		code = http.StatusInternalServerError
		msg = "An unexpected error occurred"
	}

	g.log.Errorf("[%s] %s %s: %s", middleware.RequestIDFromContext(r.Context()), r.Method, r.URL.Redacted(), err)

	w.Header().Set(GatewayErrorHeader, err.Error())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintf(w, "%s\n%s\n", msg, err)
}

type errorHandler func(error) (int, string)

func handleProxyError(err error) (code int, msg string) {
	var perr *ProxyError
	if errors.As(err, &perr) {
		code = http.StatusBadGateway
		msg = "Proxy reported an error"
	}
	return
}

func handleExchangeError(err error) (code int, msg string) {
	var eerr *ExchangeError
	if errors.As(err, &eerr) {
		code = http.StatusBadGateway
		msg = fmt.Sprintf("Token exchange failed with HTTP %d", eerr.StatusCode)
	}
	return
}

func handleInputError(err error) (code int, msg string) {
	var ierr *InvalidInputError
	if errors.As(err, &ierr) || errors.Is(err, ErrUnsupportedInputType) || errors.Is(err, errNoDestination) {
		code = http.StatusBadRequest
		msg = "Invalid destination"
	}
	return
}

func handleTokenError(err error) (code int, msg string) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		code = http.StatusServiceUnavailable
		msg = "Proxy token is not configured"
	case errors.Is(err, ErrInvalidTokenFormat),
		errors.Is(err, ErrMalformedToken),
		errors.Is(err, ErrMissingScope),
		errors.Is(err, ErrMissingAudience),
		errors.Is(err, ErrEmptyExchangeResponse):
		code = http.StatusBadGateway
		msg = "Invalid token"
	}
	return
}

func handleNetError(err error) (code int, msg string) {
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			code = http.StatusGatewayTimeout
			msg = "Timed out connecting to proxy"
		} else {
			code = http.StatusBadGateway
			msg = "Failed to connect to proxy"
		}
	}
	return
}

func handleContextError(err error) (code int, msg string) {
	if errors.Is(err, context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
		msg = "Timed out"
	}
	return
}
