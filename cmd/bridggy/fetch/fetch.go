// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/arisyntek/bridggy"
	"github.com/arisyntek/bridggy/bind"
	"github.com/arisyntek/bridggy/header"
	"github.com/arisyntek/bridggy/log"
	"github.com/arisyntek/bridggy/log/stdlog"
	"github.com/arisyntek/bridggy/runctx"
	"github.com/spf13/cobra"
)

type command struct {
	token               string
	noRetry             bool
	clientConfig        *bridggy.ClientConfig
	httpTransportConfig *bridggy.HTTPTransportConfig
	method              string
	headers             []header.Header
	data                string
	include             bool
	timeout             time.Duration
	logConfig           *log.Config

	// rt replaces the HTTP transport when set.
	rt http.RoundTripper
}

func (c *command) runE(cmd *cobra.Command, args []string) error {
	if f := c.logConfig.File; f != nil {
		defer f.Close()
	}

	// Logs go to stderr unless a file is set, stdout is for the response.
	var logger *stdlog.Logger
	if c.logConfig.File != nil {
		logger = stdlog.New(c.logConfig)
	} else {
		logger = stdlog.NewWriter(cmd.ErrOrStderr(), c.logConfig.Level)
	}

	rt := c.rt
	if rt == nil {
		t, err := bridggy.NewHTTPTransport(c.httpTransportConfig)
		if err != nil {
			return err
		}
		defer t.CloseIdleConnections()
		rt = t
	}

	client, err := bridggy.NewClient(c.clientConfig, rt, logger.Named("client"))
	if err != nil {
		return err
	}
	retry := !c.noRetry
	client.Configure(bridggy.Options{Token: c.token, Retry: &retry})

	req, err := c.request(cmd, args[0])
	if err != nil {
		return err
	}

	return runctx.Single(func(ctx context.Context) error {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		res, err := client.Fetch(ctx, req, nil)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		return c.writeResponse(cmd.OutOrStdout(), res)
	})
}

func (c *command) request(cmd *cobra.Command, href string) (*bridggy.Request, error) {
	h := make(http.Header)
	header.Headers(c.headers).Apply(h)

	req := &bridggy.Request{
		URL:    href,
		Method: c.method,
		Header: h,
	}

	if cmd.Flags().Changed("data") {
		body, err := readData(c.data)
		if err != nil {
			return nil, err
		}
		req.Body = body
		if !cmd.Flags().Changed("request") {
			req.Method = http.MethodPost
		}
	}

	return req, nil
}

// readData returns the request body, a value starting with @ names a file to read it from.
func readData(data string) (io.Reader, error) {
	if name, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		return bytes.NewReader(b), nil
	}
	return strings.NewReader(data), nil
}

func (c *command) writeResponse(w io.Writer, res *http.Response) error {
	if c.include {
		b, err := httputil.DumpResponse(res, false)
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}

	_, err := io.Copy(w, res.Body)
	return err
}

func Command() *cobra.Command {
	return newCommand(nil)
}

func newCommand(rt http.RoundTripper) *cobra.Command {
	c := command{
		clientConfig:        bridggy.DefaultClientConfig(),
		httpTransportConfig: bridggy.DefaultHTTPTransportConfig(),
		method:              http.MethodGet,
		logConfig:           log.DefaultConfig(),
		rt:                  rt,
	}
	c.logConfig.Level = log.ErrorLevel

	cmd := &cobra.Command{
		Use:     "fetch --token <token> [-X <method>] [-H <header>]... [-d <data>] <url>",
		Short:   "Send a request through the proxy and print the response",
		Long:    long,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Options(fs, &c.token, &c.noRetry)
	bind.ClientConfig(fs, c.clientConfig)
	bind.HTTPTransportConfig(fs, c.httpTransportConfig)
	bind.RequestHeaders(fs, &c.headers)
	bind.LogConfig(fs, c.logConfig)

	fs.StringVarP(&c.method, "request", "X", c.method, "<method>"+
		"HTTP method to use. ")
	fs.StringVarP(&c.data, "data", "d", c.data, "<data>"+
		"Request body, prefix with @ to read it from a file. "+
		"Implies POST unless the method is set. ")
	fs.BoolVarP(&c.include, "include", "i", c.include,
		"Print the response status line and headers. ")
	fs.DurationVar(&c.timeout, "timeout", c.timeout,
		"Time limit for the whole operation including token exchange and retry. "+
			"Zero means no limit. ")

	bind.MarkFlagRequired(cmd, "token")
	bind.AutoMarkFlagFilename(cmd)

	return cmd
}

const long = `The token is exchanged for an access token, the request is rewritten to the proxy endpoint of the access token scope.
Privacy sensitive headers are removed, GET requests the proxy failed with status 502 are retried once.
Proxy reported errors are returned as errors.
`

const example = `  # Fetch a page
  bridggy fetch --token $TOKEN https://example.com/

  # Post JSON and print response headers
  bridggy fetch --token $TOKEN -i -H "Content-Type: application/json" -d '{"a":1}' https://example.com/api
`
