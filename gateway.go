// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/arisyntek/bridggy/header"
	"github.com/arisyntek/bridggy/log"
	"github.com/arisyntek/bridggy/middleware"
)

// DestinationParam is the query parameter holding the destination URL
// when the gateway receives an origin-form request.
const DestinationParam = "url"

// hopHeaders are not forwarded in either direction.
var hopHeaders = append(header.RemoveAll( //nolint:gochecknoglobals // immutable
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
), header.Header{Name: "Gg-X-", Action: header.RemoveByPrefix})

var errNoDestination = errors.New("missing destination, use an absolute request URI or the url query parameter")

// Gateway is an http.Handler that forwards requests through the proxy with a Client.
// The destination is the absolute-form request URI, as sent to an HTTP proxy,
// or the url query parameter.
// The Origin header of the incoming request is used as the caller origin.
type Gateway struct {
	client *Client
	log    log.Logger
}

func NewGateway(c *Client, log log.Logger) *Gateway {
	return &Gateway{
		client: c,
		log:    log,
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dst, err := destination(r)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	h := r.Header.Clone()
	hopHeaders.Apply(h)
	h.Del("Origin")

	var body io.Reader
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		body = r.Body
	}

	ctx := r.Context()
	if origin := r.Header.Get("Origin"); origin != "" {
		ctx = ContextWithOrigin(ctx, origin)
	}

	res, err := g.client.Fetch(ctx, &Request{
		URL:      dst,
		Method:   r.Method,
		Header:   h,
		Body:     body,
		Redirect: RedirectManual,
	}, nil)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	defer res.Body.Close()

	hopHeaders.Apply(res.Header)
	for k, v := range res.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(res.StatusCode)
	if _, err := io.Copy(w, res.Body); err != nil {
		g.log.Debugf("[%s] copy response body: %s", middleware.RequestIDFromContext(r.Context()), err)
	}
}

func destination(r *http.Request) (string, error) {
	if isAbsoluteForm(r) {
		return r.URL.String(), nil
	}
	if v := r.URL.Query().Get(DestinationParam); v != "" {
		return v, nil
	}
	return "", errNoDestination
}

func isAbsoluteForm(r *http.Request) bool {
	return r.URL.IsAbs() && !strings.HasPrefix(r.RequestURI, "/")
}
