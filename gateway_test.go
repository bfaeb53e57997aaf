// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arisyntek/bridggy/log"
	"github.com/arisyntek/bridggy/middleware"
	"github.com/arisyntek/bridggy/utils/promutil"
	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
)

func newGatewayExpect(t *testing.T, c *Client) *httpexpect.Expect {
	t.Helper()

	h := middleware.RequestID(NewGateway(c, log.NopLogger))
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  "http://gateway.local",
		Reporter: httpexpect.NewAssertReporter(t),
		Client: &http.Client{
			Transport: httpexpect.NewBinder(h),
		},
	})
}

func TestGatewayForward(t *testing.T) {
	var got *http.Request
	var body string
	rt := &roundTripFunc{fn: func(req *http.Request, _ int) (*http.Response, error) {
		got = req
		if req.Body != nil {
			b, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			body = string(b)
		}
		return response(http.StatusCreated, "hello",
			"X-Upstream", "1",
			"Connection", "close",
			StatusHeader, "201",
		), nil
	}}
	c := configuredClient(t, nil, rt, "eu")
	e := newGatewayExpect(t, c)

	res := e.POST("/").
		WithQuery("url", "https://example.com/items?id=1").
		WithHeader("Origin", "https://app.example.com").
		WithHeader("User-Agent", "browser").
		WithHeader("X-Custom", "value").
		WithText("payload").
		Expect()

	res.Status(http.StatusCreated)
	res.Body().IsEqual("hello")
	res.Header("X-Upstream").IsEqual("1")
	res.Header("Gg-X-Status").IsEmpty()
	res.Header(middleware.RequestIDHeader).NotEmpty()

	if got == nil {
		t.Fatal("request not forwarded")
	}
	if got.Method != http.MethodPost {
		t.Errorf("method = %s", got.Method)
	}
	href, err := DecodeDestination(got.URL.Query().Get("u"))
	if err != nil {
		t.Fatal(err)
	}
	if href != "https://example.com/items?id=1" {
		t.Errorf("destination = %q", href)
	}
	if v := got.Header.Get("Origin"); v != "https://app.example.com" {
		t.Errorf("Origin = %q", v)
	}
	if v := got.Header.Get("User-Agent"); v != "" {
		t.Errorf("User-Agent = %q, should be removed", v)
	}
	if v := got.Header.Get("X-Custom"); v != "value" {
		t.Errorf("X-Custom = %q", v)
	}
	if body != "payload" {
		t.Errorf("body = %q", body)
	}
}

func TestGatewayAbsoluteForm(t *testing.T) {
	rt := &roundTripFunc{fn: func(*http.Request, int) (*http.Response, error) {
		return response(http.StatusOK, "ok"), nil
	}}
	c := configuredClient(t, nil, rt, "eu")

	req := httptest.NewRequest(http.MethodGet, "http://example.com/abs?q=1", http.NoBody)
	w := httptest.NewRecorder()
	NewGateway(c, log.NopLogger).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	href, err := DecodeDestination(rt.requests()[0].URL.Query().Get("u"))
	if err != nil {
		t.Fatal(err)
	}
	if href != "http://example.com/abs?q=1" {
		t.Fatalf("destination = %q", href)
	}
}

func TestGatewayErrors(t *testing.T) {
	tests := []struct {
		name   string
		rt     func(req *http.Request, n int) (*http.Response, error)
		setup  func(c *Client)
		query  string
		status int
		header string
		body   string
	}{
		{
			name: "proxy error",
			rt: func(*http.Request, int) (*http.Response, error) {
				return response(http.StatusOK, "", ErrorHeader, "Proxy error occurred", StatusHeader, "500"), nil
			},
			query:  "https://example.com/",
			status: http.StatusBadGateway,
			header: "status: 500 Proxy error occurred",
		},
		{
			name:   "missing destination",
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid destination",
			query:  "nope",
			status: http.StatusBadRequest,
			header: `invalid URL "nope"`,
		},
		{
			name: "exchange failed",
			rt: func(*http.Request, int) (*http.Response, error) {
				return response(http.StatusForbidden, ""), nil
			},
			setup: func(c *Client) {
				c.access = ""
			},
			query:  "https://example.com/",
			status: http.StatusBadGateway,
			header: "token exchange failed: HTTP 403",
			body:   "HTTP 403",
		},
		{
			name: "not configured",
			setup: func(c *Client) {
				c.Configure(Options{})
			},
			query:  "https://example.com/",
			status: http.StatusServiceUnavailable,
		},
	}

	for i := range tests {
		tc := &tests[i]
		t.Run(tc.name, func(t *testing.T) {
			fn := tc.rt
			if fn == nil {
				fn = func(*http.Request, int) (*http.Response, error) {
					t.Fatal("unexpected request")
					return nil, nil
				}
			}
			c := configuredClient(t, nil, &roundTripFunc{fn: fn}, "eu")
			if tc.setup != nil {
				tc.setup(c)
			}
			e := newGatewayExpect(t, c)

			req := e.GET("/")
			if tc.query != "" {
				req = req.WithQuery("url", tc.query)
			}
			res := req.Expect()
			res.Status(tc.status)
			res.Header(GatewayErrorHeader).NotEmpty()
			if tc.header != "" {
				res.Header(GatewayErrorHeader).IsEqual(tc.header)
			}
			if tc.body != "" {
				res.Body().Contains(tc.body)
			}
		})
	}
}

func TestAPIHandler(t *testing.T) {
	r := prometheus.NewRegistry()
	cfg := testClientConfig()
	cfg.PromRegistry = r
	c := configuredClient(t, cfg, &roundTripFunc{}, "eu")
	s := &fakeServer{addr: "localhost:8787"}
	h := NewAPIHandler(r, s, c, "proxy-domain: bridggy.com\n")

	e := httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  "http://api.local",
		Reporter: httpexpect.NewAssertReporter(t),
		Client:   &http.Client{Transport: httpexpect.NewBinder(h)},
	})

	e.GET("/healthz").Expect().Status(http.StatusOK).Body().IsEqual("OK")
	e.GET("/readyz").Expect().Status(http.StatusOK)
	e.GET("/configz").Expect().Status(http.StatusOK).Body().Contains("bridggy.com")
	e.GET("/version").Expect().Status(http.StatusOK).JSON().Object().ContainsKey("version")
	metrics := e.GET("/metrics").Expect().Status(http.StatusOK).Body().Raw()
	g, err := promutil.ParseMetricFamilies(strings.NewReader(metrics))
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := g.Value("bridggy_retries_total", nil); !ok || v != 0 {
		t.Errorf("bridggy_retries_total = %v, %v", v, ok)
	}

	s.addr = ""
	e.GET("/readyz").Expect().Status(http.StatusServiceUnavailable)
}

type fakeServer struct {
	addr string
}

func (s *fakeServer) Addr() string {
	return s.addr
}
