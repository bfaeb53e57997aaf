// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/arisyntek/bridggy/log"
)

type Scheme string

const (
	HTTPScheme  Scheme = "http"
	HTTPSScheme Scheme = "https"
)

func (s Scheme) String() string {
	return string(s)
}

type HTTPServerConfig struct {
	Protocol        Scheme        `json:"protocol"`
	Addr            string        `json:"addr"`
	CertFile        string        `json:"cert_file"`
	KeyFile         string        `json:"key_file"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

func DefaultHTTPServerConfig() *HTTPServerConfig {
	return &HTTPServerConfig{
		Protocol:        HTTPScheme,
		Addr:            "localhost:8787",
		ReadTimeout:     5 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

func (c *HTTPServerConfig) Validate() error {
	switch c.Protocol {
	case HTTPScheme:
	case HTTPSScheme:
		if c.CertFile == "" {
			return errors.New("cert_file cannot be empty when using HTTPS")
		}
		if c.KeyFile == "" {
			return errors.New("key_file cannot be empty when using HTTPS")
		}
	default:
		return fmt.Errorf("invalid protocol %q", c.Protocol)
	}
	return nil
}

type HTTPServer struct {
	config HTTPServerConfig
	log    log.Logger
	srv    *http.Server

	mu       sync.Mutex
	listener net.Listener
}

func NewHTTPServer(cfg *HTTPServerConfig, h http.Handler, log log.Logger) (*HTTPServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hs := &HTTPServer{
		config: *cfg,
		log:    log,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
		},
	}

	if cfg.Protocol == HTTPSScheme {
		if err := hs.configureHTTPS(); err != nil {
			return nil, err
		}
	}

	return hs, nil
}

func (hs *HTTPServer) configureHTTPS() error {
	if _, err := os.Stat(hs.config.CertFile); os.IsNotExist(err) {
		return fmt.Errorf("cannot find SSL cert_file at %q", hs.config.CertFile)
	}
	if _, err := os.Stat(hs.config.KeyFile); os.IsNotExist(err) {
		return fmt.Errorf("cannot find SSL key_file at %q", hs.config.KeyFile)
	}

	hs.srv.TLSConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"h2", "http/1.1"},
	}

	return nil
}

// Listen opens the listener, it is called by Run if not called before.
func (hs *HTTPServer) Listen() error {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", hs.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to open listener on address %s: %w", hs.srv.Addr, err)
	}
	hs.listener = l

	return nil
}

// Addr returns the address the server is listening on, or an empty string if it is not listening yet.
func (hs *HTTPServer) Addr() string {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.listener == nil {
		return ""
	}
	return hs.listener.Addr().String()
}

func (hs *HTTPServer) Run(ctx context.Context) error {
	if err := hs.Listen(); err != nil {
		return err
	}
	hs.mu.Lock()
	listener := hs.listener
	hs.mu.Unlock()

	hs.log.Infof("HTTP server listen address=%s protocol=%s", listener.Addr(), hs.config.Protocol)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	defer wg.Wait()
	defer close(done)

	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-done:
			return
		}

		sctx := context.Background()
		if hs.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, hs.config.ShutdownTimeout)
			defer cancel()
		}
		if err := hs.srv.Shutdown(sctx); err != nil {
			hs.log.Errorf("failed to shutdown server error=%s", err)
		}
	}()

	var err error
	if hs.config.Protocol == HTTPSScheme {
		err = hs.srv.ServeTLS(listener, hs.config.CertFile, hs.config.KeyFile)
	} else {
		err = hs.srv.Serve(listener)
	}
	if errors.Is(err, http.ErrServerClosed) {
		hs.log.Debugf("server was shutdown gracefully")
		return nil
	}
	return err
}
