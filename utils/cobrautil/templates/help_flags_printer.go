// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/pflag"
)

const offset = 10

// HelpFlagPrinter prints flags in the command help.
// Each flag is followed by its environment variable and the usage wrapped to the limit.
type HelpFlagPrinter struct {
	envPrefix string
	wrapLimit uint
	out       io.Writer
}

func NewHelpFlagPrinter(out io.Writer, envPrefix string, wrapLimit uint) *HelpFlagPrinter {
	return &HelpFlagPrinter{
		envPrefix: envPrefix,
		wrapLimit: wrapLimit,
		out:       out,
	}
}

func (p *HelpFlagPrinter) PrintHelpFlag(f *pflag.Flag) {
	var buf bytes.Buffer
	writeFlag(&buf, f, p.envPrefix)

	head, usage, _ := strings.Cut(buf.String(), "\n")
	if usage != "" {
		usage = wordwrap.WrapString(usage, p.wrapLimit-offset)
	}
	s := head + "\n" + usage
	s = strings.ReplaceAll(s, "\n", "\n\t")

	fmt.Fprint(p.out, s+"\n\n")
}

func writeFlag(out io.Writer, f *pflag.Flag, envPrefix string) {
	name, usage := flagNameAndUsage(f)

	def := f.DefValue
	if def == "[]" || (f.Value.Type() == "bool" && def == "false") {
		def = ""
	}
	if def != "" {
		if f.Value.Type() == "string" {
			def = fmt.Sprintf(" (default '%s')", def)
		} else {
			def = fmt.Sprintf(" (default %s)", def)
		}
	}

	env := ""
	if envPrefix != "" {
		env = fmt.Sprintf(" ($%s)", envName(envPrefix, f.Name))
	}

	deprecated := ""
	if f.Deprecated != "" {
		deprecated = fmt.Sprintf(" (DEPRECATED: %s)", f.Deprecated)
	}

	if f.Shorthand != "" && f.ShorthandDeprecated == "" {
		fmt.Fprintf(out, "  -%s, --%s%s%s%s:\n%s%s", f.Shorthand, f.Name, name, def, env, usage, deprecated)
	} else {
		fmt.Fprintf(out, "  --%s%s%s%s:\n%s%s", f.Name, name, def, env, usage, deprecated)
	}
}

// flagNameAndUsage splits the value name from the usage.
// A usage may start with a value name in angle or square brackets, e.g. "<path>Path to the file".
func flagNameAndUsage(f *pflag.Flag) (name, usage string) {
	name, usage = pflag.UnquoteUsage(f)

	if vt := findValueType(usage); vt > 0 {
		name = usage[:vt]
		usage = strings.TrimSpace(usage[vt:])
	} else if f.Value.Type() == "bool" {
		name = ""
	} else {
		if name == "" || name == "string" {
			name = "value"
		}
		name = fmt.Sprintf("<%s>", name)
	}
	if name != "" {
		name = " " + name
	}

	return name, usage
}

// findValueType returns the byte index right after the bracketed value names at the start of usage,
// or 0 if there are none.
func findValueType(usage string) int {
	if usage == "" || usage[0] != '<' && usage[0] != '[' {
		return 0
	}

	var stack []rune
	for i, r := range usage {
		switch r {
		case '<', '[':
			stack = append(stack, r)
		case '>', ']':
			if len(stack) == 0 {
				return 0
			}
			stack = stack[:len(stack)-1]
		default:
			if len(stack) == 0 && unicode.IsUpper(r) {
				return i
			}
		}
	}

	return 0
}

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // false positive

func envName(envPrefix, flagName string) string {
	s := fmt.Sprintf("%s_%s", envPrefix, flagName)
	s = strings.ToUpper(s)
	s = envReplacer.Replace(s)
	return s
}
