// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the JSON config file.
type StructuredJSONConfig struct {
	App struct {
		ClientID    string `json:"client_id"`
		HashKey     string `json:"hash_key"`
		MaxPageSize int    `json:"max_page_size"`
		Version     string `json:"version"`
	} `json:"app,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DSN string `json:"dsn"`
	} `json:"storage,omitempty"`

	Sync struct {
		Interval        Duration `json:"interval"`
		ExchangeTimeout Duration `json:"exchange_timeout"`
		MaxAttempts     int      `json:"max_attempts"`
		BatchDelay      Duration `json:"batch_delay"`
	} `json:"sync,omitempty"`

	Cache struct {
		BudgetBytes          int64 `json:"budget_bytes"`
		DataSaverBudgetBytes int64 `json:"data_saver_budget_bytes"`
	} `json:"cache,omitempty"`

	Network struct {
		SettleDelay   Duration `json:"settle_delay"`
		ProbeInterval Duration `json:"probe_interval"`
		ProbeTimeout  Duration `json:"probe_timeout"`
		DataSaver     bool     `json:"data_saver"`
	} `json:"network,omitempty"`

	Logging struct {
		Level string `json:"level"`
		File  string `json:"file"`
	} `json:"logging,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			ClientID:    jsonCfg.App.ClientID,
			HashKey:     jsonCfg.App.HashKey,
			MaxPageSize: jsonCfg.App.MaxPageSize,
			Version:     jsonCfg.App.Version,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Storage: Storage{
			DSN: jsonCfg.Storage.DSN,
		},
		Sync: Sync{
			Interval:        time.Duration(jsonCfg.Sync.Interval),
			ExchangeTimeout: time.Duration(jsonCfg.Sync.ExchangeTimeout),
			MaxAttempts:     jsonCfg.Sync.MaxAttempts,
			BatchDelay:      time.Duration(jsonCfg.Sync.BatchDelay),
		},
		Cache: Cache{
			BudgetBytes:          jsonCfg.Cache.BudgetBytes,
			DataSaverBudgetBytes: jsonCfg.Cache.DataSaverBudgetBytes,
		},
		Network: Network{
			SettleDelay:   time.Duration(jsonCfg.Network.SettleDelay),
			ProbeInterval: time.Duration(jsonCfg.Network.ProbeInterval),
			ProbeTimeout:  time.Duration(jsonCfg.Network.ProbeTimeout),
			DataSaver:     jsonCfg.Network.DataSaver,
		},
		Logging: Logging{
			Level: jsonCfg.Logging.Level,
			File:  jsonCfg.Logging.File,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as raw nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
