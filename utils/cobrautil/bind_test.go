// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

type testBindStruct struct {
	Name    string
	Strings []string
	Count   int
}

func newTestCommand(v *testBindStruct) *cobra.Command {
	cmd := &cobra.Command{}
	fs := cmd.Flags()
	fs.String("config-file", "testdata/bind.yaml", "")
	fs.StringVar(&v.Name, "name", "", "")
	fs.StringSliceVar(&v.Strings, "strings", nil, "")
	fs.IntVar(&v.Count, "count", 0, "")
	return cmd
}

func TestBindAllConfigFile(t *testing.T) {
	var v testBindStruct
	if err := BindAll(newTestCommand(&v), "test", "config-file"); err != nil {
		t.Fatal(err)
	}

	expected := testBindStruct{
		Name:    "from-file",
		Strings: []string{"a", "b", "c"},
		Count:   3,
	}
	if diff := cmp.Diff(expected, v); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestBindAllPrecedence(t *testing.T) {
	t.Setenv("TEST_NAME", "from-env")
	t.Setenv("TEST_COUNT", "5")

	var v testBindStruct
	cmd := newTestCommand(&v)
	if err := cmd.Flags().Set("count", "7"); err != nil {
		t.Fatal(err)
	}
	if err := BindAll(cmd, "test", "config-file"); err != nil {
		t.Fatal(err)
	}

	expected := testBindStruct{
		Name:    "from-env",
		Strings: []string{"a", "b", "c"},
		Count:   7,
	}
	if diff := cmp.Diff(expected, v); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestBindAllInvalidValue(t *testing.T) {
	t.Setenv("TEST_COUNT", "many")

	var v testBindStruct
	cmd := newTestCommand(&v)
	cmd.SetErr(new(discard))
	if err := BindAll(cmd, "test", "config-file"); err == nil {
		t.Fatal("expected error")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) {
	return len(p), nil
}
