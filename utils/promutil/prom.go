// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package promutil dumps and parses Prometheus metrics in the text exposition format.
package promutil

import (
	"bytes"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// DumpPrometheusMetrics gathers metrics from p and encodes the families accepted by all filters.
func DumpPrometheusMetrics(p prometheus.Gatherer, filters ...func(*dto.MetricFamily) bool) (string, error) {
	got, err := p.Gather()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range got {
		if !accept(mf, filters) {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}

func accept(mf *dto.MetricFamily, filters []func(*dto.MetricFamily) bool) bool {
	for _, f := range filters {
		if !f(mf) {
			return false
		}
	}
	return true
}

// WithName accepts metric families with one of the given names.
func WithName(names ...string) func(*dto.MetricFamily) bool {
	return func(mf *dto.MetricFamily) bool {
		for _, n := range names {
			if mf.GetName() == n {
				return true
			}
		}
		return false
	}
}

// WithPrefix accepts metric families whose name starts with prefix.
func WithPrefix(prefix string) func(*dto.MetricFamily) bool {
	return func(mf *dto.MetricFamily) bool {
		return strings.HasPrefix(mf.GetName(), prefix)
	}
}

// ParseMetricFamilies reads metrics in the text format, the result can be dumped again or queried with Gatherer.
func ParseMetricFamilies(reader io.Reader) (*Gatherer, error) {
	var parser expfmt.TextParser
	mf, err := parser.TextToMetricFamilies(reader)
	if err != nil {
		return nil, err
	}

	return &Gatherer{mf: mf}, nil
}

type Gatherer struct {
	mf map[string]*dto.MetricFamily
}

var _ prometheus.Gatherer = (*Gatherer)(nil)

func (g *Gatherer) Gather() ([]*dto.MetricFamily, error) {
	res := make([]*dto.MetricFamily, 0, len(g.mf))
	for _, mf := range g.mf {
		res = append(res, mf)
	}
	return res, nil
}

// Value returns the value of a counter or gauge sample with the given labels.
// The second return value is false if no such sample exists.
func (g *Gatherer) Value(name string, labels map[string]string) (float64, bool) {
	mf, ok := g.mf[name]
	if !ok {
		return 0, false
	}

	for _, m := range mf.GetMetric() {
		if !matchLabels(m.GetLabel(), labels) {
			continue
		}
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue(), true
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue(), true
		case m.GetUntyped() != nil:
			return m.GetUntyped().GetValue(), true
		}
	}

	return 0, false
}

func matchLabels(lp []*dto.LabelPair, labels map[string]string) bool {
	if len(lp) != len(labels) {
		return false
	}
	for _, l := range lp {
		if v, ok := labels[l.GetName()]; !ok || v != l.GetValue() {
			return false
		}
	}
	return true
}
