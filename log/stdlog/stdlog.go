// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stdlog

import (
	"io"
	"log"
	"os"

	blog "github.com/arisyntek/bridggy/log"
)

func Default() *Logger {
	return New(blog.DefaultConfig())
}

func New(cfg *blog.Config, opts ...Option) *Logger {
	var w io.Writer = os.Stdout
	if cfg.File != nil {
		w = cfg.File
	}
	return NewWriter(w, cfg.Level, opts...)
}

// NewWriter returns a logger writing to w, it is handy in tests.
func NewWriter(w io.Writer, level blog.Level, opts ...Option) *Logger {
	l := &Logger{
		log:   log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC),
		level: level,
	}
	l.setPrefixes("")

	for _, opt := range opts {
		opt(l)
	}

	return l
}

var _ blog.Logger = &Logger{}

// Logger implements the bridggy.Logger interface using the standard log package.
type Logger struct {
	log   *log.Logger
	name  string
	level blog.Level

	errorPfx string
	infoPfx  string
	debugPfx string

	decorate func(string) string
}

// Named returns a copy of the logger that prefixes messages with name.
func (sl Logger) Named(name string, opts ...Option) *Logger { //nolint:gocritic // we pass by value to get a copy
	sl.name = name
	sl.setPrefixes(name)

	for _, opt := range opts {
		opt(&sl)
	}

	return &sl
}

func (sl *Logger) setPrefixes(name string) {
	if name != "" {
		name = "[" + name + "] "
	}
	sl.errorPfx = name + "[ERROR] "
	sl.infoPfx = name + "[INFO] "
	sl.debugPfx = name + "[DEBUG] "
}

func (sl *Logger) Errorf(format string, args ...any) {
	sl.printf(blog.ErrorLevel, sl.errorPfx, format, args...)
}

func (sl *Logger) Infof(format string, args ...any) {
	sl.printf(blog.InfoLevel, sl.infoPfx, format, args...)
}

func (sl *Logger) Debugf(format string, args ...any) {
	sl.printf(blog.DebugLevel, sl.debugPfx, format, args...)
}

func (sl *Logger) printf(level blog.Level, pfx, format string, args ...any) {
	if sl.level < level {
		return
	}
	if sl.decorate != nil {
		format = sl.decorate(format)
	}
	sl.log.Printf(pfx+format, args...)
}

// Unwrap returns the underlying log.Logger pointer.
func (sl *Logger) Unwrap() *log.Logger {
	return sl.log
}
