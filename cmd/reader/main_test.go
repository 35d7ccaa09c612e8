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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "reader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"serial: /dev/ttyACM0\nbaud: 9600\nscan_period: 250ms\nbeep: true\n"), 0o600))

	fc, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", fc.SerialPort)
	assert.Equal(t, 9600, fc.BaudRate)
	assert.Equal(t, "250ms", fc.ScanPeriod)
	assert.True(t, fc.Beep)
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Parallel()
	_, err := loadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [\n"), 0o600))
	_, err = loadConfigFile(path)
	require.Error(t, err)
}

func TestApplyFilePrecedence(t *testing.T) {
	t.Parallel()
	cfg := &config{
		serialPort: "/dev/ttyUSB3", // set by flag, must win
		scanPeriod: defaultScanPeriod,
	}
	fc := &fileConfig{
		SerialPort: "/dev/ttyACM0",
		BaudRate:   9600,
		ScanPeriod: "2s",
		Debug:      true,
	}
	require.NoError(t, cfg.applyFile(fc))

	assert.Equal(t, "/dev/ttyUSB3", cfg.serialPort)
	assert.Equal(t, 9600, cfg.baudRate)
	assert.Equal(t, 2*time.Second, cfg.scanPeriod)
	assert.True(t, cfg.debug)
}

func TestApplyFileBadScanPeriod(t *testing.T) {
	t.Parallel()
	cfg := &config{scanPeriod: defaultScanPeriod}
	err := cfg.applyFile(&fileConfig{ScanPeriod: "soon"})
	require.Error(t, err)
}
