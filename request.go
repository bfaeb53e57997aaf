// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RedirectPolicy controls how redirects returned by the proxy are handled.
type RedirectPolicy string

const (
	// RedirectFollow follows redirects, this is the default.
	RedirectFollow RedirectPolicy = "follow"
	// RedirectError fails the request when a redirect is returned.
	RedirectError RedirectPolicy = "error"
	// RedirectManual returns the redirect response to the caller.
	RedirectManual RedirectPolicy = "manual"
)

var ErrRedirect = errors.New("redirect not allowed")

func (p RedirectPolicy) String() string {
	if p == "" {
		return string(RedirectFollow)
	}
	return string(p)
}

func (p RedirectPolicy) checkRedirect() func(*http.Request, []*http.Request) error {
	switch p {
	case RedirectError:
		return func(*http.Request, []*http.Request) error {
			return ErrRedirect
		}
	case RedirectManual:
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	default:
		return nil
	}
}

// Request describes a request to be sent through the proxy.
// It is one of the input shapes accepted by Client.Fetch,
// when used, its Method, Header, Body and Redirect take precedence over RequestInit.
type Request struct {
	URL      string
	Method   string
	Header   http.Header
	Body     io.Reader
	Redirect RedirectPolicy
}

// RequestInit holds request options applied on top of the Fetch input.
type RequestInit struct {
	Method   string
	Header   http.Header
	Body     io.Reader
	Redirect RedirectPolicy

	// Close indicates to close the connection after the response is read.
	Close bool
}

// descriptor is the canonical form of a Fetch call.
type descriptor struct {
	dst      *url.URL
	method   string
	header   http.Header
	body     io.Reader
	redirect RedirectPolicy
	close    bool
}

// normalize resolves the Fetch input and init into a descriptor.
// Values from a request description input win over init, other init options are passed through.
func normalize(input any, init *RequestInit) (*descriptor, error) {
	if init == nil {
		init = new(RequestInit)
	}

	d := &descriptor{
		method:   init.Method,
		header:   init.Header,
		body:     init.Body,
		redirect: init.Redirect,
		close:    init.Close,
	}

	switch v := input.(type) {
	case string:
		u, err := parseAbsURL(v)
		if err != nil {
			return nil, err
		}
		d.dst = u
	case *url.URL:
		if v == nil {
			return nil, fmt.Errorf("%w: nil *url.URL", ErrUnsupportedInputType)
		}
		d.dst = normalizeURL(v)
	case url.URL:
		d.dst = normalizeURL(&v)
	case *Request:
		if v == nil {
			return nil, fmt.Errorf("%w: nil *Request", ErrUnsupportedInputType)
		}
		u, err := parseAbsURL(v.URL)
		if err != nil {
			return nil, err
		}
		d.dst = u
		d.method = v.Method
		d.header = v.Header
		d.body = v.Body
		d.redirect = v.Redirect
	case *http.Request:
		if v == nil || v.URL == nil {
			return nil, fmt.Errorf("%w: nil *http.Request", ErrUnsupportedInputType)
		}
		if !v.URL.IsAbs() {
			return nil, &InvalidInputError{Input: v.URL.String()}
		}
		d.dst = normalizeURL(v.URL)
		d.method = v.Method
		d.header = v.Header
		d.body = v.Body
		if v.Body == http.NoBody {
			d.body = nil
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedInputType, input)
	}

	if d.method == "" {
		d.method = http.MethodGet
	}
	d.method = strings.ToUpper(d.method)
	if d.redirect == "" {
		d.redirect = RedirectFollow
	}

	return d, nil
}

func parseAbsURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, &InvalidInputError{Input: s, Err: err}
	}
	if !u.IsAbs() {
		return nil, &InvalidInputError{Input: s}
	}
	if isSpecialScheme(u.Scheme) && u.Host == "" {
		return nil, &InvalidInputError{Input: s}
	}
	return normalizeURL(u), nil
}

// normalizeURL returns a copy of u in the form a browser would serialize it.
func normalizeURL(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		ui := *u.User
		c.User = &ui
	}
	c.Scheme = strings.ToLower(c.Scheme)
	if isSpecialScheme(c.Scheme) {
		c.Host = strings.ToLower(c.Host)
		if c.Path == "" && c.Opaque == "" {
			c.Path = "/"
		}
	}
	return &c
}

func isSpecialScheme(scheme string) bool {
	switch scheme {
	case "http", "https", "ws", "wss":
		return true
	default:
		return false
	}
}
