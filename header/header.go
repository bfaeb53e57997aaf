// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package header implements header modifications applied to outgoing requests.
package header

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

type Action int

const (
	Remove Action = iota
	RemoveByPrefix
	Empty
	Add
)

type Header struct {
	Name   string
	Action Action
	Value  *string
}

// ParseHeader supports the following syntax:
// - "<name>: <value>" to add a header,
// - "<name>;" to set a header to empty,
// - "-<name>" to remove a header,
// - "-<name>*" to remove a header by prefix.
func ParseHeader(val string) (Header, error) {
	var h Header

	switch {
	case strings.HasPrefix(val, "-"):
		if strings.HasSuffix(val, "*") {
			h.Name = val[1 : len(val)-1]
			h.Action = RemoveByPrefix
		} else {
			h.Name = val[1:]
			h.Action = Remove
		}
	case strings.HasSuffix(val, ";"):
		h.Name = val[0 : len(val)-1]
		h.Action = Empty
	default:
		name, value, ok := strings.Cut(val, ":")
		if !ok {
			return Header{}, errors.New("invalid header value")
		}
		value = strings.TrimSuffix(value, "\n")
		value = strings.TrimSuffix(value, "\r")
		value = strings.TrimLeft(value, " \t")
		if !httpguts.ValidHeaderFieldValue(value) {
			return Header{}, errors.New("invalid header value")
		}
		h.Name = name
		h.Value = &value
		h.Action = Add
	}

	if !httpguts.ValidHeaderFieldName(h.Name) {
		return Header{}, errors.New("invalid header name")
	}

	return h, nil
}

// Apply modifies hh according to the header action.
// Remove actions match header names case-insensitively,
// so that non-canonical keys set directly in the map are removed as well.
func (h *Header) Apply(hh http.Header) {
	switch h.Action {
	case Remove:
		removeHeaders(hh, h.Name)
	case RemoveByPrefix:
		removeHeadersByPrefix(hh, h.Name)
	case Empty:
		hh.Set(h.Name, "")
	case Add:
		hh.Add(h.Name, *h.Value)
	}
}

func removeHeaders(h http.Header, name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

func removeHeadersByPrefix(h http.Header, prefix string) {
	for k := range h {
		if len(k) < len(prefix) {
			continue
		}
		if strings.EqualFold(k[0:len(prefix)], prefix) {
			delete(h, k)
		}
	}
}

func (h *Header) String() string {
	switch h.Action {
	case Remove:
		return "-" + h.Name
	case RemoveByPrefix:
		return "-" + h.Name + "*"
	case Empty:
		return h.Name + ";"
	case Add:
		return h.Name + ":" + *h.Value
	default:
		return ""
	}
}

type Headers []Header

func (s Headers) Apply(hh http.Header) {
	for i := range s {
		s[i].Apply(hh)
	}
}

// ModifyRequest applies the headers to the request headers.
func (s Headers) ModifyRequest(req *http.Request) error {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	s.Apply(req.Header)
	return nil
}

// RemoveAll returns headers removing each of names.
func RemoveAll(names ...string) Headers {
	s := make(Headers, 0, len(names))
	for _, n := range names {
		s = append(s, Header{Name: n, Action: Remove})
	}
	return s
}
