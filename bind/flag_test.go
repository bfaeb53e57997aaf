// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/arisyntek/bridggy"
	"github.com/arisyntek/bridggy/header"
	"github.com/arisyntek/bridggy/log"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

func newFlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("test", pflag.ContinueOnError)
}

func TestOptionsToken(t *testing.T) {
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"aud":"https://auth.example.com"}`))
	token := "eyJhbGciOiJub25lIn0." + claims + ".signature"

	var (
		got     string
		noRetry bool
	)
	fs := newFlagSet()
	Options(fs, &got, &noRetry)

	if err := fs.Parse([]string{"--token", " " + token + " ", "--no-retry"}); err != nil {
		t.Fatal(err)
	}
	if got != token {
		t.Errorf("token = %q", got)
	}
	if !noRetry {
		t.Error("no-retry not set")
	}
	if s := fs.Lookup("token").Value.String(); strings.Contains(s, "signature") {
		t.Errorf("token not redacted: %q", s)
	}

	fs = newFlagSet()
	Options(fs, &got, &noRetry)
	if err := fs.Parse([]string{"--token", "garbage"}); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestClientConfig(t *testing.T) {
	cfg := bridggy.DefaultClientConfig()
	fs := newFlagSet()
	ClientConfig(fs, cfg)

	if err := fs.Parse([]string{
		"--proxy-domain", "proxy.example.com",
		"--retry-delay", "500ms",
		"--rate-limit", "2.5",
		"--origin", "https://app.example.com",
	}); err != nil {
		t.Fatal(err)
	}

	if cfg.ProxyDomain != "proxy.example.com" {
		t.Errorf("proxy domain = %q", cfg.ProxyDomain)
	}
	if cfg.RetryDelay.String() != "500ms" {
		t.Errorf("retry delay = %s", cfg.RetryDelay)
	}
	if cfg.RateLimit != rate.Limit(2.5) {
		t.Errorf("rate limit = %v", cfg.RateLimit)
	}
	if cfg.Origin != "https://app.example.com" {
		t.Errorf("origin = %q", cfg.Origin)
	}

	if err := fs.Parse([]string{"--rate-limit", "-1"}); err == nil {
		t.Error("expected error for negative rate limit")
	}
}

func TestRequestHeaders(t *testing.T) {
	var hh []header.Header
	fs := newFlagSet()
	RequestHeaders(fs, &hh)

	if err := fs.Parse([]string{"-H", "Accept: text/html", "-H", "-X-*"}); err != nil {
		t.Fatal(err)
	}

	v := "text/html"
	want := []header.Header{
		{Name: "Accept", Action: header.Add, Value: &v},
		{Name: "X-", Action: header.RemoveByPrefix},
	}
	if diff := cmp.Diff(want, hh); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestLogConfig(t *testing.T) {
	cfg := log.DefaultConfig()
	fs := newFlagSet()
	LogConfig(fs, cfg)

	if err := fs.Parse([]string{"--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Level != log.DebugLevel {
		t.Errorf("level = %s", cfg.Level)
	}
	if s := fs.Lookup("log-file").Value.String(); s != "" {
		t.Errorf("log-file = %q, want empty", s)
	}
	if err := fs.Parse([]string{"--log-level", "trace"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestHTTPServerConfig(t *testing.T) {
	cfg := bridggy.DefaultHTTPServerConfig()
	fs := newFlagSet()
	HTTPServerConfig(fs, cfg, "api")

	if v := fs.Lookup("api-protocol").Value.String(); v != "http" {
		t.Errorf("default protocol = %q, want http", v)
	}
	if err := fs.Parse([]string{"--api-address", ":10000", "--api-protocol", "https"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":10000" || cfg.Protocol != bridggy.HTTPSScheme {
		t.Fatalf("cfg = %+v", cfg)
	}
	if v := fs.Lookup("api-protocol").Value.String(); v != "https" {
		t.Errorf("protocol flag = %q, want https", v)
	}
	if err := fs.Parse([]string{"--api-protocol", "h3"}); err == nil {
		t.Error("expected error for unknown protocol")
	}
}
