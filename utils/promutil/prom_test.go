// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package promutil

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func testRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	f := promauto.With(r)

	f.NewCounter(prometheus.CounterOpts{ //nolint:promlinter // For test purposes
		Name: "test_counter",
		Help: "Test counter",
	}).Add(2)
	cv := f.NewCounterVec(prometheus.CounterOpts{ //nolint:promlinter // For test purposes
		Name: "test_counter_vec",
		Help: "Test counter vec",
	}, []string{"result"})
	cv.WithLabelValues("ok").Inc()
	cv.WithLabelValues("error").Add(3)
	f.NewGauge(prometheus.GaugeOpts{
		Name: "other_gauge",
		Help: "Other gauge",
	}).Set(5)

	return r
}

func TestDumpPrometheusMetrics(t *testing.T) {
	got, err := DumpPrometheusMetrics(testRegistry(), WithName("test_counter"))
	if err != nil {
		t.Fatal(err)
	}

	want := "# HELP test_counter Test counter\n" +
		"# TYPE test_counter counter\n" +
		"test_counter 2\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected dump (-want +got):\n%s", diff)
	}
}

func TestDumpPrometheusMetricsPrefix(t *testing.T) {
	got, err := DumpPrometheusMetrics(testRegistry(), WithPrefix("test_"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "other_gauge") {
		t.Errorf("filtered family in dump:\n%s", got)
	}
	if !strings.Contains(got, `test_counter_vec{result="error"} 3`) {
		t.Errorf("missing sample in dump:\n%s", got)
	}
}

func TestParseMetricFamilies(t *testing.T) {
	s, err := DumpPrometheusMetrics(testRegistry())
	if err != nil {
		t.Fatal(err)
	}

	g, err := ParseMetricFamilies(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
		ok     bool
	}{
		{"test_counter", nil, 2, true},
		{"test_counter_vec", map[string]string{"result": "ok"}, 1, true},
		{"test_counter_vec", map[string]string{"result": "error"}, 3, true},
		{"test_counter_vec", map[string]string{"result": "other"}, 0, false},
		{"other_gauge", nil, 5, true},
		{"missing", nil, 0, false},
	}
	for i := range tests {
		tc := &tests[i]
		got, ok := g.Value(tc.name, tc.labels)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Value(%s, %v) = %v, %v want %v, %v", tc.name, tc.labels, got, ok, tc.want, tc.ok)
		}
	}

	again, err := DumpPrometheusMetrics(g, WithName("test_counter"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(again, "test_counter 2\n") {
		t.Errorf("unexpected dump:\n%s", again)
	}
}
