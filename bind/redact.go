// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"fmt"

	"github.com/arisyntek/bridggy/header"
	"github.com/arisyntek/bridggy/log"
)

func RedactHeader(h header.Header) string {
	return fmt.Sprintf("%q", h.String())
}

func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	return log.RedactToken(token)
}
