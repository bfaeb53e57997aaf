// Copyright 2024 Arisyntek. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"fmt"
	"os"
	"strings"

	"github.com/arisyntek/bridggy"
	"github.com/arisyntek/bridggy/header"
	"github.com/arisyntek/bridggy/log"
	"github.com/mmatczuk/anyflag"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The supported formats are: JSON, YAML, TOML, HCL, and Java properties. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

func Options(fs *pflag.FlagSet, token *string, noRetry *bool) {
	fs.VarP(anyflag.NewValueWithRedact[string](*token, token, parseToken, RedactToken),
		"token", "t", "<token>"+
			"Long-lived proxy token, it is exchanged for short-lived access tokens at the endpoint named by its aud claim. ")

	fs.BoolVar(noRetry,
		"no-retry", *noRetry,
		"Do not retry GET requests the proxy failed with status 502. ")
}

func parseToken(val string) (string, error) {
	val = strings.TrimSpace(val)
	if _, err := bridggy.DecodeClaims(val); err != nil {
		return "", err
	}
	return val, nil
}

func ClientConfig(fs *pflag.FlagSet, cfg *bridggy.ClientConfig) {
	fs.StringVar(&cfg.ProxyDomain,
		"proxy-domain", cfg.ProxyDomain, "<domain>"+
			"Parent domain of the proxy hosts, requests are sent to https://<scope>.<domain>/proxy. ")

	fs.DurationVar(&cfg.RetryDelay,
		"retry-delay", cfg.RetryDelay,
		"Time to wait before retrying a GET request the proxy failed with status 502. ")

	fs.DurationVar(&cfg.ExpiryLeeway,
		"expiry-leeway", cfg.ExpiryLeeway,
		"Access tokens are exchanged this long before they expire. ")

	fs.StringVar(&cfg.Origin,
		"origin", cfg.Origin, "<origin>"+
			"Origin header sent with proxied requests. ")

	fs.Var(anyflag.NewValue[rate.Limit](cfg.RateLimit, &cfg.RateLimit, parseRateLimit),
		"rate-limit", "<requests per second>"+
			"Maximum number of requests per second sent to the proxy, including retries. "+
			"Zero means no limit. ")

	fs.IntVar(&cfg.RateBurst,
		"rate-burst", cfg.RateBurst,
		"Maximum burst of requests when rate limit is set. ")
}

func parseRateLimit(val string) (rate.Limit, error) {
	var f float64
	if _, err := fmt.Sscanf(val, "%g", &f); err != nil {
		return 0, fmt.Errorf("invalid rate limit %q", val)
	}
	if f < 0 {
		return 0, fmt.Errorf("rate limit must be non-negative")
	}
	return rate.Limit(f), nil
}

func RequestHeaders(fs *pflag.FlagSet, headers *[]header.Header) {
	fs.VarP(anyflag.NewSliceValueWithRedact[header.Header](*headers, headers, header.ParseHeader, RedactHeader),
		"header", "H", "<header>"+
			"Add or remove HTTP request headers. "+
			"Use the format \"name: value\" to add a header, "+
			"\"name;\" to set the header to empty value, "+
			"\"-name\" to remove the header, "+
			"\"-name*\" to remove headers by prefix. "+
			"Privacy sensitive headers are removed regardless. "+
			"The flag can be specified multiple times. "+
			"Example: -H \"Accept: application/json\" -H \"-X-*\". ")
}

func HTTPTransportConfig(fs *pflag.FlagSet, cfg *bridggy.HTTPTransportConfig) {
	fs.DurationVar(&cfg.DialTimeout,
		"http-dial-timeout", cfg.DialTimeout,
		"The maximum amount of time a dial will wait for a connect to complete. "+
			"With or without a timeout, the operating system may impose its own earlier timeout. For instance, TCP timeouts are often around 3 minutes. ")

	fs.DurationVar(&cfg.TLSHandshakeTimeout,
		"http-tls-handshake-timeout", cfg.TLSHandshakeTimeout,
		"The maximum amount of time waiting to wait for a TLS handshake. Zero means no limit.")

	fs.DurationVar(&cfg.IdleConnTimeout,
		"http-idle-conn-timeout", cfg.IdleConnTimeout,
		"The maximum amount of time an idle (keep-alive) connection will remain idle before closing itself. "+
			"Zero means no limit. ")

	fs.DurationVar(&cfg.ResponseHeaderTimeout,
		"http-response-header-timeout", cfg.ResponseHeaderTimeout,
		"The amount of time to wait for a server's response headers after fully writing the request (including its body, if any). "+
			"This time does not include the time to read the response body. "+
			"Zero means no limit. ")

	fs.StringSliceVar(&cfg.CAFiles,
		"cacert-file", cfg.CAFiles, "<path>"+
			"Additional CA certificate bundle used to verify the proxy. "+
			"The flag can be specified multiple times. ")

	fs.BoolVar(&cfg.InsecureSkipVerify, "insecure", cfg.InsecureSkipVerify,
		"Don't verify the server's certificate chain and host name. "+
			"Enable to work with self-signed certificates. ")
}

func HTTPServerConfig(fs *pflag.FlagSet, cfg *bridggy.HTTPServerConfig, prefix string) {
	namePrefix := prefix
	if namePrefix != "" {
		namePrefix += "-"
	}

	fs.StringVarP(&cfg.Addr,
		namePrefix+"address", "", cfg.Addr, "<host:port>"+
			"The server address to listen on. "+
			"If the host is empty, the server will listen on all available interfaces. ")

	schemes := []bridggy.Scheme{
		bridggy.HTTPScheme,
		bridggy.HTTPSScheme,
	}
	fs.VarP(anyflag.NewValue[bridggy.Scheme](cfg.Protocol, &cfg.Protocol,
		anyflag.EnumParser[bridggy.Scheme](schemes...)),
		namePrefix+"protocol", "", "<http|https>"+
			"The server protocol. ")

	fs.StringVar(&cfg.CertFile,
		namePrefix+"tls-cert-file", cfg.CertFile, "<path>"+
			"TLS certificate to use if the server protocol is https. ")

	fs.StringVar(&cfg.KeyFile,
		namePrefix+"tls-key-file", cfg.KeyFile, "<path>"+
			"TLS private key to use if the server protocol is https. ")

	fs.DurationVar(&cfg.ReadTimeout,
		namePrefix+"read-timeout", cfg.ReadTimeout,
		"The maximum duration for reading the entire request, including the body. ")

	fs.DurationVar(&cfg.ShutdownTimeout,
		namePrefix+"shutdown-timeout", cfg.ShutdownTimeout,
		"The maximum amount of time to wait for active connections to finish on shutdown. ")
}

func PromNamespace(fs *pflag.FlagSet, promNamespace *string) {
	fs.StringVar(promNamespace,
		"prom-namespace", *promNamespace, "<namespace>"+
			"Prometheus namespace to use for metrics. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.Var(NewFileFlag(&cfg.File, OpenFileParser(os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600, 0o700)),
		"log-file", "<path>"+
			"Path to the log file, if empty, logs to stdout. ")

	logLevel := []log.Level{
		log.ErrorLevel,
		log.InfoLevel,
		log.DebugLevel,
	}
	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, anyflag.EnumParser[log.Level](logLevel...)),
		"log-level", "<error|info|debug>"+
			"Log level. ")
}

func MarkFlagHidden(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			panic(err)
		}
	}
}

func MarkFlagRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func AutoMarkFlagFilename(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.HasPrefix(f.Usage, "<path") ||
			strings.HasSuffix(f.Name, "-file") ||
			strings.HasSuffix(f.Name, "-dir") {
			MarkFlagFilename(cmd, f.Name)
		}
	})
}

func MarkFlagFilename(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagFilename(name); err != nil {
			panic(err)
		}
	}
}
