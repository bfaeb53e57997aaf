// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // false positive

// BindAll updates the given command flags with values from the environment variables and config file.
// The supported formats are: JSON, YAML, TOML, HCL, and Java properties.
// The file format is determined by the file extension, if not specified the default format is YAML.
// The following precedence order of configuration sources is used: command flags, environment variables, config file, default values.
func BindAll(cmd *cobra.Command, envPrefix, configFileFlagName string) error {
	v := viper.New()

	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	v.SetEnvKeyReplacer(envReplacer)
	v.SetEnvPrefix(EnvPrefix(envPrefix))
	v.AutomaticEnv()

	if configFileFlagName != "" {
		if f := v.GetString(configFileFlagName); f != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(f)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if err := updateFlagSet(cmd, v, cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("persistent flags: %w", err)
	}
	if err := updateFlagSet(cmd, v, cmd.Flags()); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	return nil
}

// updateFlagSet sets flags that were not set on the command line to values known to viper.
// All errors are printed, the first one is returned.
func updateFlagSet(cmd *cobra.Command, v *viper.Viper, fs *pflag.FlagSet) error {
	var firstErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := fs.Set(f.Name, viperValueString(v.Get(f.Name))); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// viperValueString formats a value read by viper so that it can be parsed by a pflag.Value,
// lists are joined with commas.
func viperValueString(val any) string {
	s := fmt.Sprintf("%v", val)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.NewReplacer(", ", ",", " ", ",").Replace(s)
}

// EnvPrefix normalizes a command name to an environment variable prefix.
func EnvPrefix(name string) string {
	return envReplacer.Replace(strings.ToUpper(name))
}
