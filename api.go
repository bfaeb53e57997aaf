// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"net/http"
	"net/http/pprof"

	"github.com/arisyntek/bridggy/internal/version"
	"github.com/arisyntek/bridggy/utils/httphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type server interface {
	Addr() string
}

// APIHandler serves API endpoints.
// It provides health and readiness endpoints, prometheus metrics, and pprof debug endpoints.
type APIHandler struct {
	mux    *http.ServeMux
	server server
	client *Client
}

func NewAPIHandler(r prometheus.Gatherer, s server, c *Client, config string) *APIHandler {
	m := http.NewServeMux()
	a := &APIHandler{
		mux:    m,
		server: s,
		client: c,
	}
	m.HandleFunc("/metrics", promhttp.HandlerFor(r, promhttp.HandlerOpts{}).ServeHTTP)
	m.Handle("/healthz", httphandler.Status(http.StatusOK))
	m.HandleFunc("/readyz", a.readyz)
	m.Handle("/configz", httphandler.SendFileString("text/plain", config))
	m.Handle("/version", httphandler.SendJSON(version.Get()))

	m.HandleFunc("/debug/pprof/", pprof.Index)
	m.HandleFunc("/debug/pprof/profile", pprof.Profile)
	m.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	m.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return a
}

// readyz reports ready when the gateway is listening and the client has a proxy token.
func (h *APIHandler) readyz(w http.ResponseWriter, r *http.Request) {
	code := http.StatusServiceUnavailable
	if h.server.Addr() != "" && h.client.Configured() {
		code = http.StatusOK
	}
	httphandler.Status(code).ServeHTTP(w, r)
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}
