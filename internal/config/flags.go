// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// Flags is the command-line layer of the configuration. Register it on a
// flag set, let the set parse, then hand it to [GetClientConfig] or
// [GetServerConfig]. Unset flags keep their zero value and never override
// other layers.
type Flags struct {
	cfg     StructuredConfig
	address NetAddress
	server  bool
}

// RegisterClientFlags binds the client flags to fs.
//
// Flags:
//
//	-c/--config JSON config file path
//	-d/--dsn local store DSN ("memory" for the in-process store)
//	-a/--address remote sync endpoint in format [host]:[port]
//	--client-id device id
//	-k/--hash-key request signing key
//	--max-page-size page cap on fast connections
//	--request-timeout remote call timeout (e.g. "15s")
//	--sync-interval background sync period
//	--exchange-timeout timeout of a single queue entry exchange
//	--max-attempts retry ceiling per queue entry
//	--batch-delay pause between sub-batches under data saver
//	--cache-budget / --data-saver-cache-budget read cache budgets in bytes
//	--settle-delay / --probe-interval / --probe-timeout connectivity tuning
//	--data-saver force data saver mode
//	--log-level / --log-file logging
func RegisterClientFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	f.registerCommon(fs)

	fs.VarP(&f.address, "address", "a", "Remote sync endpoint host:port")
	fs.StringVar(&f.cfg.App.ClientID, "client-id", "", "Device id stamped on every write")
	fs.IntVar(&f.cfg.App.MaxPageSize, "max-page-size", 0, "Page cap on fast connections")
	fs.DurationVar(&f.cfg.Adapter.RequestTimeout, "request-timeout", 0, "Remote call timeout (e.g., 15s)")
	fs.DurationVar(&f.cfg.Sync.Interval, "sync-interval", 0, "Background sync period (e.g., 1m)")
	fs.DurationVar(&f.cfg.Sync.ExchangeTimeout, "exchange-timeout", 0, "Timeout of a single exchange")
	fs.IntVar(&f.cfg.Sync.MaxAttempts, "max-attempts", 0, "Retry ceiling per queue entry")
	fs.DurationVar(&f.cfg.Sync.BatchDelay, "batch-delay", 0, "Pause between sub-batches under data saver")
	fs.Int64Var(&f.cfg.Cache.BudgetBytes, "cache-budget", 0, "Read cache budget in bytes")
	fs.Int64Var(&f.cfg.Cache.DataSaverBudgetBytes, "data-saver-cache-budget", 0, "Read cache budget in bytes under data saver")
	fs.DurationVar(&f.cfg.Network.SettleDelay, "settle-delay", 0, "Delay before resuming sync after reconnect")
	fs.DurationVar(&f.cfg.Network.ProbeInterval, "probe-interval", 0, "Connectivity probe period")
	fs.DurationVar(&f.cfg.Network.ProbeTimeout, "probe-timeout", 0, "Connectivity probe timeout")
	fs.BoolVar(&f.cfg.Network.DataSaver, "data-saver", false, "Force data saver mode")
	fs.StringVar(&f.cfg.Logging.File, "log-file", "", "Log file path")

	return f
}

// RegisterServerFlags binds the reference server flags to fs.
//
// Flags:
//
//	-c/--config JSON config file path
//	-d/--dsn server store DSN
//	-a/--address listen address in format [host]:[port]
//	-k/--hash-key request verification key
//	--request-timeout inbound request timeout
//	--log-level logging
func RegisterServerFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{server: true}
	f.registerCommon(fs)

	fs.VarP(&f.address, "address", "a", "Listen address host:port")
	fs.DurationVar(&f.cfg.Server.RequestTimeout, "request-timeout", 0, "Inbound request timeout (e.g., 30s)")

	return f
}

func (f *Flags) registerCommon(fs *pflag.FlagSet) {
	fs.StringVarP(&f.cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&f.cfg.Storage.DSN, "dsn", "d", "", "Store DSN")
	fs.StringVarP(&f.cfg.App.HashKey, "hash-key", "k", "", "Request signing key")
	fs.StringVar(&f.cfg.Logging.Level, "log-level", "", "Log level (debug, info, warn, error)")
}

// config returns the flag layer with the address routed to its section.
func (f *Flags) config() *StructuredConfig {
	cfg := f.cfg
	if f.server {
		cfg.Server.HTTPAddress = f.address.String()
	} else {
		cfg.Adapter.HTTPAddress = f.address.String()
	}
	return &cfg
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are
// invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
