// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/arisyntek/bridggy/header"
)

const proxyPath = "/proxy"

// privacyHeaders are removed from every proxied request.
var privacyHeaders = append(header.RemoveAll( //nolint:gochecknoglobals // immutable
	"User-Agent",
	"X-Forwarded-For",
	"Cookie",
	"Connection",
	"Keep-Alive",
	"Transfer-Encoding",
	"Upgrade-Insecure-Requests",
	"Priority",
), header.Header{Name: "Sec-", Action: header.RemoveByPrefix})

type originKey struct{}

// ContextWithOrigin returns a context carrying the caller origin,
// it is sent in the Origin header of requests dispatched with the context.
func ContextWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFromContext returns the caller origin set with ContextWithOrigin.
func OriginFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(originKey{}).(string)
	return v, ok && v != ""
}

// ProxyURL returns the proxy URL for the destination href and the scope.
func ProxyURL(scope, domain, href string) *url.URL {
	return &url.URL{
		Scheme:   "https",
		Host:     scope + "." + domain,
		Path:     proxyPath,
		RawQuery: "u=" + EncodeDestination(href),
	}
}

// proxyRequest is the outgoing form of a descriptor, it can produce a fresh *http.Request per attempt.
type proxyRequest struct {
	url      *url.URL
	method   string
	header   http.Header
	body     io.Reader
	buf      []byte
	buffered bool
	redirect RedirectPolicy
	close    bool
}

func (c *Client) rewrite(ctx context.Context, d *descriptor, access string) (*proxyRequest, error) {
	claims, err := DecodeClaims(access)
	if err != nil {
		return nil, err
	}
	scope, err := claims.Scope()
	if err != nil {
		return nil, err
	}

	h := make(http.Header, len(d.header)+3)
	for k, v := range d.header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	h.Set(SourceHeader, SourceClient)
	h.Set(TokenHeader, access)
	if origin, ok := OriginFromContext(ctx); ok {
		h.Set("Origin", origin)
	} else if c.config.Origin != "" {
		h.Set("Origin", c.config.Origin)
	}
	privacyHeaders.Apply(h)

	return &proxyRequest{
		url:      ProxyURL(scope, c.config.ProxyDomain, d.dst.String()),
		method:   d.method,
		header:   h,
		body:     d.body,
		redirect: d.redirect,
		close:    d.close,
	}, nil
}

// bufferBody reads the body into memory so that the request can be sent again.
func (p *proxyRequest) bufferBody() error {
	if p.body == nil {
		return nil
	}
	b, err := io.ReadAll(p.body)
	if rc, ok := p.body.(io.Closer); ok {
		rc.Close()
	}
	if err != nil {
		return err
	}
	p.buf = b
	p.buffered = true
	return nil
}

func (p *proxyRequest) newRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if p.buffered {
		body = bytes.NewReader(p.buf)
	} else {
		body = p.body
	}

	req, err := http.NewRequestWithContext(ctx, p.method, "https://"+proxyPlaceholderHost, body)
	if err != nil {
		return nil, err
	}
	req.URL = p.url
	req.Host = p.url.Host
	req.Header = p.header.Clone()
	// An empty value stops net/http from sending its default User-Agent.
	req.Header["User-Agent"] = []string{""}
	req.Close = p.close

	return req, nil
}

// proxyPlaceholderHost is replaced with the proxy URL after the request is created,
// scope values may not form valid URLs when parsed.
const proxyPlaceholderHost = "proxy.invalid"
