// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package templates renders command usage with flags printed in groups.
package templates

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultWrapLimit = 80

// ActsAsRootCommand sets the usage function of cmd, subcommands inherit it.
func ActsAsRootCommand(cmd *cobra.Command, g FlagGroups, envPrefix string) {
	cmd.SetUsageFunc(UsageFunc(g, envPrefix, defaultWrapLimit))
}

func UsageFunc(g FlagGroups, envPrefix string, wrapLimit uint) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		return writeUsage(cmd.OutOrStderr(), cmd, g, envPrefix, wrapLimit)
	}
}

func writeUsage(w io.Writer, cmd *cobra.Command, g FlagGroups, envPrefix string, wrapLimit uint) error {
	var sb strings.Builder

	sb.WriteString("Usage:\n")
	if cmd.Runnable() {
		fmt.Fprintf(&sb, "  %s\n", cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&sb, "  %s [command]\n", cmd.CommandPath())
	}

	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&sb, "\nAliases:\n  %s\n", strings.Join(append([]string{cmd.Name()}, cmd.Aliases...), ", "))
	}

	if cmd.HasExample() {
		fmt.Fprintf(&sb, "\nExamples:\n%s\n", cmd.Example)
	}

	if cmd.HasAvailableSubCommands() {
		sb.WriteString("\nCommands:\n")
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() {
				continue
			}
			fmt.Fprintf(&sb, "  %-*s %s\n", cmd.NamePadding(), c.Name(), c.Short)
		}
	}

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.AddFlagSet(cmd.LocalFlags())
	fs.AddFlagSet(cmd.InheritedFlags())

	p := NewHelpFlagPrinter(&sb, envPrefix, wrapLimit)
	for i, gfs := range SplitFlagSet(g, fs) {
		if !hasVisibleFlags(gfs) {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", g[i].Name)
		gfs.VisitAll(func(f *pflag.Flag) {
			if !f.Hidden {
				p.PrintHelpFlag(f)
			}
		})
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&sb, "\nUse \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func hasVisibleFlags(fs *pflag.FlagSet) bool {
	ok := false
	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			ok = true
		}
	})
	return ok
}
