// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bridggy sends HTTP requests through the bridggy proxy.
//
// A Client is configured with a long-lived proxy token.
// The token is exchanged for short-lived access tokens at the endpoint named by its aud claim.
// Each request is rewritten to https://<scope>.bridggy.com/proxy with the destination URL
// encoded in the u query parameter, privacy sensitive headers are stripped.
// Application-level failures reported by the proxy in the gg-x-error and gg-x-status headers
// are returned as *ProxyError, GET requests failed with status 502 are retried once.
//
// The package also provides a Gateway http.Handler that exposes a Client to
// local HTTP clients, and an APIHandler with metrics and health endpoints.
package bridggy
