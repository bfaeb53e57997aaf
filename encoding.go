// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"encoding/base64"
	"strings"
)

var urlSafeReplacer = strings.NewReplacer("-", "+", "_", "/") //nolint:gochecknoglobals // immutable

// EncodeDestination encodes href with the URL-safe base64 alphabet without padding.
// It is used to embed the destination URL in the proxy URL query.
func EncodeDestination(href string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(href))
}

// DecodeDestination reverses EncodeDestination.
func DecodeDestination(s string) (string, error) {
	b, err := decodeURLSafe(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeURLSafe maps the URL-safe alphabet to the standard one and decodes.
// Padding is optional and characters of the standard alphabet are accepted as well.
func decodeURLSafe(s string) ([]byte, error) {
	s = urlSafeReplacer.Replace(s)
	s = strings.TrimRight(s, "=")
	return base64.RawStdEncoding.DecodeString(s)
}
