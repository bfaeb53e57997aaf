// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var objectives = map[float64]float64{ //nolint:gochecknoglobals // immutable
	0.5:  0.01,
	0.9:  0.01,
	0.99: 0.001,
}

// Prometheus is a middleware that collects metrics about the HTTP requests and responses.
// It partitions the metrics by HTTP status code and HTTP method.
type Prometheus struct {
	requestsInFlight *prometheus.GaugeVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.SummaryVec
}

func NewPrometheus(r prometheus.Registerer, namespace string) *Prometheus {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &Prometheus{
		requestsInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being served.",
		}, []string{"method"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"code", "method"}),
		requestDuration: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "http_request_duration_seconds",
			Help:       "The HTTP request latencies in seconds.",
			Objectives: objectives,
		}, []string{"code", "method"}),
	}
}

func (p *Prometheus) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requestsInFlight.WithLabelValues(r.Method).Inc()
		defer p.requestsInFlight.WithLabelValues(r.Method).Dec()

		d := newDelegator(w)

		start := time.Now()
		h.ServeHTTP(d, r)
		elapsed := time.Since(start).Seconds()

		code := strconv.Itoa(d.Status())
		p.requestsTotal.WithLabelValues(code, r.Method).Inc()
		p.requestDuration.WithLabelValues(code, r.Method).Observe(elapsed)
	})
}
