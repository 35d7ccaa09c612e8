// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration file. Command-line flags
// override anything set here.
type fileConfig struct {
	DevicePath string `yaml:"device"`
	SerialPort string `yaml:"serial"`
	BaudRate   int    `yaml:"baud"`
	ScanPeriod string `yaml:"scan_period"`
	Debug      bool   `yaml:"debug"`
	Beep       bool   `yaml:"beep"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyFile merges file settings into cfg for every field the flags left at
// its default.
func (cfg *config) applyFile(fc *fileConfig) error {
	if cfg.devicePath == "" {
		cfg.devicePath = fc.DevicePath
	}
	if cfg.serialPort == "" {
		cfg.serialPort = fc.SerialPort
	}
	if cfg.baudRate == 0 && fc.BaudRate != 0 {
		cfg.baudRate = fc.BaudRate
	}
	if fc.ScanPeriod != "" && cfg.scanPeriod == defaultScanPeriod {
		period, err := time.ParseDuration(fc.ScanPeriod)
		if err != nil {
			return fmt.Errorf("scan_period: %w", err)
		}
		cfg.scanPeriod = period
	}
	cfg.debug = cfg.debug || fc.Debug
	cfg.beep = cfg.beep || fc.Beep
	return nil
}
