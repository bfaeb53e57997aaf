// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serve

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arisyntek/bridggy"
	"github.com/arisyntek/bridggy/bind"
	"github.com/arisyntek/bridggy/internal/version"
	"github.com/arisyntek/bridggy/log"
	"github.com/arisyntek/bridggy/log/stdlog"
	"github.com/arisyntek/bridggy/middleware"
	"github.com/arisyntek/bridggy/runctx"
	"github.com/arisyntek/bridggy/utils/cobrautil"
	"github.com/arisyntek/bridggy/utils/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
)

type command struct {
	promReg             *prometheus.Registry
	token               string
	noRetry             bool
	clientConfig        *bridggy.ClientConfig
	httpTransportConfig *bridggy.HTTPTransportConfig
	serverConfig        *bridggy.HTTPServerConfig
	apiServerConfig     *bridggy.HTTPServerConfig
	apiUnixSocket       string
	logConfig           *log.Config
	goleak              bool
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	if f := c.logConfig.File; f != nil {
		defer f.Close()
	}
	logger := stdlog.New(c.logConfig)

	defer func() {
		if cmdErr != nil {
			logger.Errorf("fatal error exiting: %s", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	logger.Infof("Bridggy %s (%s)", version.Version, version.Commit)

	cfg, err := cobrautil.FlagsDescriber{
		Format: cobrautil.Plain,
	}.DescribeFlags(cmd.Flags())
	if err != nil {
		return err
	}
	logger.Infof("configuration\n%s", cfg)

	rt, err := bridggy.NewHTTPTransport(c.httpTransportConfig)
	if err != nil {
		return err
	}
	defer rt.CloseIdleConnections()

	c.clientConfig.PromRegistry = c.promReg
	client, err := bridggy.NewClient(c.clientConfig, rt, logger.Named("client"))
	if err != nil {
		return err
	}
	retry := !c.noRetry
	client.Configure(bridggy.Options{Token: c.token, Retry: &retry})

	g := runctx.NewGroup()

	gw, err := bridggy.NewHTTPServer(c.serverConfig, c.gatewayHandler(client, logger), logger.Named("gateway"))
	if err != nil {
		return err
	}
	g.Add(gw.Run)

	if c.apiServerConfig.Addr != "" || c.apiUnixSocket != "" {
		if err := c.registerProcMetrics(); err != nil {
			return fmt.Errorf("register process metrics: %w", err)
		}
		h := bridggy.NewAPIHandler(c.promReg, gw, client, cfg)

		if c.apiUnixSocket != "" {
			g.Add(func(ctx context.Context) error {
				logger.Named("api").Infof("HTTP server listen socket path=%s", c.apiUnixSocket)
				return httpx.ServeUnixSocket(ctx, h, c.apiUnixSocket)
			})
		}

		if c.apiServerConfig.Addr != "" {
			a, err := bridggy.NewHTTPServer(c.apiServerConfig, h, logger.Named("api"))
			if err != nil {
				return err
			}
			g.Add(a.Run)
		}
	}

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
			}
		}()
	}

	return g.Run()
}

func (c *command) gatewayHandler(client *bridggy.Client, logger *stdlog.Logger) http.Handler {
	var h http.Handler = bridggy.NewGateway(client, logger.Named("gateway"))
	h = middleware.NewPrometheus(c.promReg, c.clientConfig.PromNamespace).Wrap(h)

	accessLog := logger.Named("access")
	h = middleware.Logger(func(e middleware.LogEntry) {
		accessLog.Infof("%s %s %s status=%d written=%d duration=%s",
			e.RequestID, e.Request.Method, e.Request.URL.Redacted(), e.Status, e.Written, e.Duration)
	}).Wrap(h)

	return middleware.RequestID(h)
}

func (c *command) registerProcMetrics() error {
	// Note that ProcessCollector is only available in Linux and Windows.
	if err := c.promReg.Register(collectors.NewProcessCollector(
		collectors.ProcessCollectorOpts{Namespace: c.clientConfig.PromNamespace})); err != nil {
		return err
	}
	return c.promReg.Register(collectors.NewGoCollector())
}

func Command() *cobra.Command {
	c := command{
		promReg:             prometheus.NewRegistry(),
		clientConfig:        bridggy.DefaultClientConfig(),
		httpTransportConfig: bridggy.DefaultHTTPTransportConfig(),
		serverConfig:        bridggy.DefaultHTTPServerConfig(),
		apiServerConfig:     bridggy.DefaultHTTPServerConfig(),
		logConfig:           log.DefaultConfig(),
	}
	c.apiServerConfig.Addr = "localhost:10000"

	cmd := &cobra.Command{
		Use:     "serve --token <token> [--address <host:port>] [--api-address <host:port>]",
		Short:   "Start a local HTTP gateway that sends requests through the proxy",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.Options(fs, &c.token, &c.noRetry)
	bind.ClientConfig(fs, c.clientConfig)
	bind.HTTPTransportConfig(fs, c.httpTransportConfig)
	bind.HTTPServerConfig(fs, c.serverConfig, "")
	bind.HTTPServerConfig(fs, c.apiServerConfig, "api")
	fs.StringVar(&c.apiUnixSocket, "api-unix-socket", c.apiUnixSocket, "<path>"+
		"Serve the API on a Unix socket in addition to the API address. ")
	bind.PromNamespace(fs, &c.clientConfig.PromNamespace)
	bind.LogConfig(fs, c.logConfig)
	bind.MarkFlagRequired(cmd, "token")
	bind.AutoMarkFlagFilename(cmd)

	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")
	bind.MarkFlagHidden(cmd, "goleak")

	return cmd
}

const long = `The gateway forwards each request through the proxy.
The destination is taken from an absolute-form request URI, so the gateway can be used as an HTTP proxy for plain HTTP,
or from the url query parameter, e.g. GET /?url=https://example.com/.
The Origin header of the request is sent as the caller origin.
Proxy reported errors are returned with status 502 and the error in the X-Bridggy-Error header.
`

const example = `  # Start gateway on localhost:8787 and API server on localhost:10000
  bridggy serve --token $TOKEN

  # Send a request through the gateway
  curl "http://localhost:8787/?url=https://example.com/"

  # Use the gateway as an HTTP proxy
  curl -x http://localhost:8787 http://example.com/
`
