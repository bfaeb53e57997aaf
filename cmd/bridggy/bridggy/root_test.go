// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	cmd := Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %s\n%s", args, err, out.String())
	}
	return out.String()
}

func testToken() string {
	h := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	c := base64.RawURLEncoding.EncodeToString([]byte(`{"aud":"https://auth.example.com","exp":4102444800}`))
	return h + "." + c + ".sig"
}

func TestEnvBinding(t *testing.T) {
	t.Setenv("BRIDGGY_FORMAT", "json")

	out := execute(t, "token", "decode", testToken())
	if !json.Valid([]byte(out)) {
		t.Fatalf("expected JSON output, got:\n%s", out)
	}
}

func TestConfigFileBinding(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bridggy.yaml")
	if err := os.WriteFile(name, []byte("format: json\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "--config-file", name, "token", "decode", testToken())
	if !json.Valid([]byte(out)) {
		t.Fatalf("expected JSON output, got:\n%s", out)
	}
}

func TestHelpFlagGroups(t *testing.T) {
	out := execute(t, "serve", "--help")

	groups := []string{
		"Proxy options:",
		"Server options:",
		"HTTP client options:",
		"API server options:",
		"Logging options:",
	}
	last := -1
	for _, g := range groups {
		i := strings.Index(out, "\n"+g+"\n")
		if i < 0 {
			t.Fatalf("help does not contain group %q:\n%s", g, out)
		}
		if i < last {
			t.Errorf("group %q out of order", g)
		}
		last = i
	}

	if !strings.Contains(out, "($BRIDGGY_PROXY_DOMAIN)") {
		t.Errorf("help does not contain env variable names:\n%s", out)
	}
	if strings.Contains(out, "--goleak") {
		t.Errorf("help contains hidden flag")
	}
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	if !strings.Contains(out, "Version:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
