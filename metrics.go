// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type clientMetrics struct {
	exchanges   *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	retries     prometheus.Counter
	proxyErrors *prometheus.CounterVec
}

func newClientMetrics(r prometheus.Registerer, namespace string) *clientMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &clientMetrics{
		exchanges: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "exchanges_total",
			Namespace: namespace,
			Help:      "Number of token exchanges",
		}, []string{"result"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "fetches_total",
			Namespace: namespace,
			Help:      "Number of proxied fetch calls",
		}, []string{"result"}),
		retries: f.NewCounter(prometheus.CounterOpts{
			Name:      "retries_total",
			Namespace: namespace,
			Help:      "Number of retried proxy requests",
		}),
		proxyErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "proxy_errors_total",
			Namespace: namespace,
			Help:      "Number of responses carrying a proxy error",
		}, []string{"status"}),
	}
}

func (m *clientMetrics) exchange(err error) {
	m.exchanges.WithLabelValues(resultLabel(err)).Inc()
}

func (m *clientMetrics) fetch(err error) {
	m.fetches.WithLabelValues(resultLabel(err)).Inc()
}

func (m *clientMetrics) retry() {
	m.retries.Inc()
}

func (m *clientMetrics) proxyError(status string) {
	if status == "" {
		status = "unknown"
	}
	m.proxyErrors.WithLabelValues(status).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
