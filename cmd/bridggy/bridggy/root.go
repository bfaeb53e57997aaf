// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridggy

import (
	"github.com/arisyntek/bridggy/bind"
	"github.com/arisyntek/bridggy/cmd/bridggy/fetch"
	"github.com/arisyntek/bridggy/cmd/bridggy/ready"
	"github.com/arisyntek/bridggy/cmd/bridggy/serve"
	"github.com/arisyntek/bridggy/cmd/bridggy/token"
	"github.com/arisyntek/bridggy/cmd/bridggy/version"
	"github.com/arisyntek/bridggy/utils/cobrautil"
	"github.com/arisyntek/bridggy/utils/cobrautil/templates"
	"github.com/spf13/cobra"
)

const (
	EnvPrefix          = "BRIDGGY"
	ConfigFileFlagName = "config-file"
)

func FlagGroups() templates.FlagGroups {
	return templates.FlagGroups{
		{
			Name:   "Options",
			Prefix: []string{""},
		},
		{
			Name: "Proxy options",
			Prefix: []string{
				"token",
				"no-retry",
				"proxy-domain",
				"retry-delay",
				"expiry-leeway",
				"origin",
				"rate-",
			},
		},
		{
			Name: "Server options",
			Prefix: []string{
				"address",
				"protocol",
				"tls-",
				"read-timeout",
				"shutdown-timeout",
			},
		},
		{
			Name: "HTTP client options",
			Prefix: []string{
				"http",
				"cacert-file",
				"insecure",
			},
		},
		{
			Name: "API server options",
			Prefix: []string{
				"api",
				"prom",
			},
		},
		{
			Name:   "Logging options",
			Prefix: []string{"log"},
		},
	}
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridggy",
		Short: "Send HTTP requests through the bridggy proxy",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName)
		},
		SilenceUsage: true,
	}
	bind.ConfigFile(cmd.PersistentFlags(), new(string))

	cmd.AddCommand(
		fetch.Command(),
		token.Command(),
		serve.Command(),
		ready.Command(),
		version.Command(),
	)

	templates.ActsAsRootCommand(cmd, FlagGroups(), EnvPrefix)
	cobrautil.NoHelpSubcommand(cmd)
	setDefaultLong(cmd)

	return cmd
}

func setDefaultLong(cmd *cobra.Command) {
	cobrautil.DefaultLong(cmd)
	for _, c := range cmd.Commands() {
		setDefaultLong(c)
	}
}
