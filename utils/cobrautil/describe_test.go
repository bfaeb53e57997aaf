// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func TestDescribeFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("proxy-domain", "bridggy.com", "")
	fs.Bool("no-retry", true, "")
	fs.StringSlice("header", []string{"a: b", "-c"}, "")
	fs.String("secret", "hidden", "")
	if err := fs.MarkHidden("secret"); err != nil {
		t.Fatal(err)
	}

	t.Run("plain", func(t *testing.T) {
		got, err := DescribeFlags(fs, Plain)
		if err != nil {
			t.Fatal(err)
		}
		want := "header=a: b,-c\nno-retry=true\nproxy-domain=bridggy.com\n"
		if got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	want := map[string]any{
		"header":       []any{"a: b", "-c"},
		"no-retry":     true,
		"proxy-domain": "bridggy.com",
	}

	tests := []struct {
		format    DescribeFormat
		unmarshal func([]byte, any) error
	}{
		{JSON, json.Unmarshal},
		{YAML, yaml.Unmarshal},
	}
	for i := range tests {
		tc := &tests[i]
		t.Run(tc.format.String(), func(t *testing.T) {
			s, err := DescribeFlags(fs, tc.format)
			if err != nil {
				t.Fatal(err)
			}
			var got map[string]any
			if err := tc.unmarshal([]byte(s), &got); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescribeFlagsExclude(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("a", "1", "")
	fs.String("b", "2", "")

	got, err := FlagsDescriber{Format: Plain, Exclude: []string{"b"}}.DescribeFlags(fs)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a=1\n" {
		t.Fatalf("got %q", got)
	}
}
