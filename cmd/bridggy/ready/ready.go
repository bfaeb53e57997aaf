// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ready

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/spf13/cobra"
)

type command struct {
	apiAddr string
	timeout time.Duration
}

func (c *command) runE(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.apiAddr+"/readyz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, err := httputil.DumpResponse(resp, true)
		if err != nil {
			return err
		}
		if _, err := cmd.ErrOrStderr().Write(b); err != nil {
			return err
		}

		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

func Command() *cobra.Command {
	c := command{
		apiAddr: "localhost:10000",
		timeout: 5 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "ready [--api-address <host:port>]",
		Short: "Readiness probe for the gateway",
		Long:  long,
		Args:  cobra.NoArgs,
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	fs.StringVar(&c.apiAddr, "api-address", c.apiAddr, "<host:port>"+
		"The API server address. ")
	fs.DurationVar(&c.timeout, "timeout", c.timeout,
		"Time limit for the probe. ")

	return cmd
}

const long = `Readiness probe for the gateway started with serve.
This is equivalent to calling /readyz endpoint on the API server.
The gateway is ready when it is listening and has a proxy token.
`
