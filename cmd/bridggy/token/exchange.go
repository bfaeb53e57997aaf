// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package token

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arisyntek/bridggy"
	"github.com/arisyntek/bridggy/bind"
	"github.com/arisyntek/bridggy/log"
	"github.com/arisyntek/bridggy/log/stdlog"
	"github.com/arisyntek/bridggy/runctx"
	"github.com/spf13/cobra"
)

type exchanger struct {
	token               string
	clientConfig        *bridggy.ClientConfig
	httpTransportConfig *bridggy.HTTPTransportConfig
	logConfig           *log.Config

	// rt replaces the HTTP transport when set.
	rt http.RoundTripper
}

func (c *exchanger) runE(cmd *cobra.Command, _ []string) error {
	if f := c.logConfig.File; f != nil {
		defer f.Close()
	}

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
	client.Configure(bridggy.Options{Token: c.token})

	return runctx.Single(func(ctx context.Context) error {
		access, err := client.Exchange(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), access)
		return err
	})
}

func exchangeCommand() *cobra.Command {
	return newExchangeCommand(nil)
}

func newExchangeCommand(rt http.RoundTripper) *cobra.Command {
	c := exchanger{
		rt:                  rt,
		clientConfig:        bridggy.DefaultClientConfig(),
		httpTransportConfig: bridggy.DefaultHTTPTransportConfig(),
		logConfig:           log.DefaultConfig(),
	}
	c.logConfig.Level = log.ErrorLevel

	cmd := &cobra.Command{
		Use:   "exchange --token <token>",
		Short: "Exchange a proxy token for an access token and print it",
		Args:  cobra.NoArgs,
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	bind.Options(fs, &c.token, new(bool))
	bind.ClientConfig(fs, c.clientConfig)
	bind.HTTPTransportConfig(fs, c.httpTransportConfig)
	bind.LogConfig(fs, c.logConfig)
	bind.MarkFlagHidden(cmd, "no-retry")
	bind.MarkFlagRequired(cmd, "token")
	bind.AutoMarkFlagFilename(cmd)

	return cmd
}
