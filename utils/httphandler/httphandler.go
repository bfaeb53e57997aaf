// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package httphandler

import (
	"encoding/json"
	"net/http"
)

func SendFile(contentType string, content []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(content)
	})
}

func SendFileString(contentType, content string) http.Handler {
	return SendFile(contentType, []byte(content))
}

// SendJSON encodes v once and serves it as application/json.
// It panics if v cannot be encoded.
func SendJSON(v any) http.Handler {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return SendFile("application/json", append(b, '\n'))
}

// Status writes the status code and its text.
func Status(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(code)
		w.Write([]byte(http.StatusText(code)))
	})
}
