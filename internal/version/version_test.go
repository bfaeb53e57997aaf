// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	Version = "v0.0.1"
	Commit = "1223423321234sdf"
	t.Cleanup(func() {
		Version = "devel"
		Commit = "unknown"
	})

	s := Get().String()
	for _, w := range []string{"v0.0.1", "1223423321234sdf"} {
		if !strings.Contains(s, w) {
			t.Errorf("String() = %q, expected to contain %q", s, w)
		}
	}
}
