// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package header

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr(s string) *string {
	return &s
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		input    string
		expected Header
	}{
		{
			input: "-RemoveMe",
			expected: Header{
				Name:   "RemoveMe",
				Action: Remove,
			},
		},
		{
			input: "-Sec-*",
			expected: Header{
				Name:   "Sec-",
				Action: RemoveByPrefix,
			},
		},
		{
			input: "EmptyMe;",
			expected: Header{
				Name:   "EmptyMe",
				Action: Empty,
			},
		},
		{
			input: "AddMe:value",
			expected: Header{
				Name:   "AddMe",
				Action: Add,
				Value:  ptr("value"),
			},
		},
		{
			input: "AddMe: value",
			expected: Header{
				Name:   "AddMe",
				Action: Add,
				Value:  ptr("value"),
			},
		},
		{
			input: "AddMe: value: value",
			expected: Header{
				Name:   "AddMe",
				Action: Add,
				Value:  ptr("value: value"),
			},
		},
		{
			input: "AddMe: value\r\n",
			expected: Header{
				Name:   "AddMe",
				Action: Add,
				Value:  ptr("value"),
			},
		},
	}
	for i := range tests {
		tc := &tests[i]
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseHeader(tc.input)
			if err != nil {
				t.Fatalf("ParseHeader() error = %v", err)
			}
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("ParseHeader() diff = %v", diff)
			}
		})
	}
}

func TestParseHeaderError(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "remove invalid name",
			input: "-(@Me)",
		},
		{
			name:  "add invalid name",
			input: "@Me: value",
		},
		{
			name:  "add multiline value",
			input: "AddMe: value\nvalue2",
		},
	}

	for i := range tests {
		tc := &tests[i]
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseHeader(tc.input); err == nil {
				t.Errorf("ParseHeader(%q) expected error", tc.input)
			}
		})
	}
}

func TestHeadersApply(t *testing.T) {
	tests := []struct {
		name     string
		headers  Headers
		header   http.Header
		expected http.Header
	}{
		{
			name:    "remove is case insensitive",
			headers: RemoveAll("User-Agent", "cookie"),
			header: http.Header{
				"user-agent": {"curl"},
				"Cookie":     {"a=b"},
				"X-Custom":   {"v"},
			},
			expected: http.Header{
				"X-Custom": {"v"},
			},
		},
		{
			name:    "remove by prefix",
			headers: Headers{{Name: "sec-", Action: RemoveByPrefix}},
			header: http.Header{
				"Sec-Fetch-Mode": {"cors"},
				"sec-ch-ua":      {"x"},
				"Sec":            {"kept"},
				"Secret":         {"kept"},
			},
			expected: http.Header{
				"Sec":    {"kept"},
				"Secret": {"kept"},
			},
		},
		{
			name: "add and empty",
			headers: Headers{
				{Name: "X-Foo", Action: Add, Value: ptr("bar")},
				{Name: "X-Empty", Action: Empty},
			},
			header: http.Header{
				"X-Foo": {"baz"},
			},
			expected: http.Header{
				"X-Foo":   {"baz", "bar"},
				"X-Empty": {""},
			},
		},
	}

	for i := range tests {
		tc := &tests[i]
		t.Run(tc.name, func(t *testing.T) {
			h := tc.header.Clone()
			tc.headers.Apply(h)
			if diff := cmp.Diff(tc.expected, h); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestRemoveHeadersByPrefix(t *testing.T) {
	h := http.Header{
		http.CanonicalHeaderKey("Remo"):             nil,
		http.CanonicalHeaderKey("RemoveMeByPrefix"): nil,
		http.CanonicalHeaderKey("RemoveMeBy"):       nil,
		http.CanonicalHeaderKey("RemoveMe"):         nil,
		http.CanonicalHeaderKey("DontRemoveMe"):     nil,
	}
	expected := http.Header{
		http.CanonicalHeaderKey("Remo"):         nil,
		http.CanonicalHeaderKey("DontRemoveMe"): nil,
	}

	removeHeadersByPrefix(h, "removeme")

	if diff := cmp.Diff(expected, h); diff != "" {
		t.Fatal(diff)
	}
}

func TestHeaderString(t *testing.T) {
	for _, s := range []string{"-X-Foo", "-Sec-*", "X-Empty;", "X-Foo:bar"} {
		h, err := ParseHeader(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := h.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}
