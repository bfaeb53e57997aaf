// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package token

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arisyntek/bridggy"
	"github.com/mmatczuk/anyflag"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	YAMLFormat Format = "yaml"
	JSONFormat Format = "json"
)

func (f Format) String() string {
	return string(f)
}

type decoder struct {
	format Format
	leeway time.Duration
	now    func() time.Time
}

// decoded is the printed form of a token, claims are printed as they are.
type decoded struct {
	Claims    map[string]any `json:"claims" yaml:"claims"`
	ExpiresAt string         `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   *bool          `json:"expired,omitempty" yaml:"expired,omitempty"`
	Audience  string         `json:"audience,omitempty" yaml:"audience,omitempty"`
	Scope     string         `json:"scope,omitempty" yaml:"scope,omitempty"`
}

func (c *decoder) runE(cmd *cobra.Command, args []string) error {
	claims, err := bridggy.DecodeClaims(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	d := decoded{
		Claims: claims.MapClaims,
	}
	if exp, err := claims.ExpiresAt(); err == nil {
		d.ExpiresAt = exp.UTC().Format(time.RFC3339)
		expired, _ := claims.Expired(c.now(), c.leeway)
		d.Expired = &expired
	}
	if aud, err := claims.Audience(); err == nil {
		d.Audience = aud
	}
	if scope, err := claims.Scope(); err == nil {
		d.Scope = scope
	}

	return write(cmd.OutOrStdout(), c.format, d)
}

func write(w io.Writer, f Format, v any) error {
	switch f {
	case JSONFormat:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAMLFormat:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func decodeCommand() *cobra.Command {
	c := decoder{
		format: YAMLFormat,
		leeway: bridggy.DefaultExpiryLeeway,
		now:    time.Now,
	}

	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Print token claims without verifying the signature",
		Long:  decodeLong,
		Args:  cobra.ExactArgs(1),
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	formats := []Format{YAMLFormat, JSONFormat}
	fs.VarP(anyflag.NewValue[Format](c.format, &c.format, anyflag.EnumParser[Format](formats...)),
		"format", "o", "<yaml|json>"+
			"Output format. ")
	fs.DurationVar(&c.leeway, "expiry-leeway", c.leeway,
		"Tokens are reported as expired this long before their exp claim. ")

	return cmd
}

const decodeLong = `The claims segment of the token is decoded and printed along with the expiry status.
The signature is not verified.
`
