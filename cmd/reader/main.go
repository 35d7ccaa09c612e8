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

// Command reader is a demo client for the UHF-U1-CU-71: it scans for tags
// continuously, printing each EPC as it appears, or writes hex data to the
// tag in the field and exits.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uhf "github.com/ZaparooProject/go-uhf"
	"github.com/ZaparooProject/go-uhf/transport/hid"
	"github.com/ZaparooProject/go-uhf/transport/serial"
)

const defaultScanPeriod = 500 * time.Millisecond

type config struct {
	devicePath string
	serialPort string
	configPath string
	writeHex   string
	scanPeriod time.Duration
	baudRate   int
	writeBank  int
	writeAddr  int
	debug      bool
	beep       bool
}

// Package-level flag variables
var (
	flagDevicePath string
	flagSerialPort string
	flagConfigPath string
	flagWriteHex   string
	flagScanPeriod time.Duration
	flagBaudRate   int
	flagWriteBank  int
	flagWriteAddr  int
	flagDebug      bool
	flagBeep       bool
)

func init() {
	flag.StringVar(&flagDevicePath, "device", "", "HID device path (first detected reader if empty)")
	flag.StringVar(&flagSerialPort, "serial", "", "Serial port (use the serial interface instead of HID)")
	flag.StringVar(&flagConfigPath, "config", "", "YAML configuration file")
	flag.StringVar(&flagWriteHex, "write", "", "Hex data to write to the tag in the field (exits after write)")
	flag.DurationVar(&flagScanPeriod, "scan-period", defaultScanPeriod, "Delay between inventory scans")
	flag.IntVar(&flagBaudRate, "baud", 0, "Serial baud rate (default 115200)")
	flag.IntVar(&flagWriteBank, "bank", int(uhf.BankUser), "Memory bank for -write (1=EPC 2=TID 3=USER 4=reserved)")
	flag.IntVar(&flagWriteAddr, "addr", 0, "Word address for -write")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
	flag.BoolVar(&flagBeep, "beep", false, "Beep when a new tag appears")
}

func parseConfig() (*config, error) {
	cfg := &config{
		devicePath: flagDevicePath,
		serialPort: flagSerialPort,
		configPath: flagConfigPath,
		writeHex:   flagWriteHex,
		scanPeriod: flagScanPeriod,
		baudRate:   flagBaudRate,
		writeBank:  flagWriteBank,
		writeAddr:  flagWriteAddr,
		debug:      flagDebug,
		beep:       flagBeep,
	}

	if cfg.configPath != "" {
		fc, err := loadConfigFile(cfg.configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, err
		}
	}

	if cfg.debug {
		uhf.SetDebugEnabled(true)
	}
	return cfg, nil
}

// newTransport opens the serial port when one is configured, otherwise the
// HID interface.
func newTransport(cfg *config) (uhf.Transport, error) {
	if cfg.serialPort != "" {
		if cfg.baudRate != 0 {
			return serial.NewWithBaudRate(cfg.serialPort, cfg.baudRate)
		}
		return serial.New(cfg.serialPort)
	}

	if cfg.devicePath != "" {
		return hid.Open(cfg.devicePath)
	}

	if cfg.debug {
		devices, err := hid.Detect()
		if err == nil {
			for _, dev := range devices {
				_, _ = fmt.Printf("Found reader: %s (%s)\n", dev.Product, dev.Path)
			}
		}
	}
	return hid.New()
}

func runScanMode(ctx context.Context, reader *uhf.Reader, cfg *config) error {
	_, _ = fmt.Println("Scanning for tags. Press Ctrl+C to stop...")

	seen := make(map[string]bool)
	ticker := time.NewTicker(cfg.scanPeriod)
	defer ticker.Stop()

	for {
		records, err := reader.Inventory()
		if err != nil {
			if uhf.IsFatal(err) {
				return fmt.Errorf("inventory scan: %w", err)
			}
			// Transient failures just skip one scan cycle.
			if cfg.debug {
				_, _ = fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			}
		}

		for _, rec := range records {
			key := string(rec.EPC)
			if seen[key] {
				continue
			}
			seen[key] = true
			_, _ = fmt.Printf("Tag: %s\n", rec)
			if cfg.beep {
				if err := reader.Beep(100 * time.Millisecond); err != nil && cfg.debug {
					_, _ = fmt.Fprintf(os.Stderr, "Beep failed: %v\n", err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func runWriteMode(reader *uhf.Reader, cfg *config) error {
	data, err := hex.DecodeString(cfg.writeHex)
	if err != nil {
		return fmt.Errorf("-write expects hex data: %w", err)
	}

	bank := uhf.Bank(cfg.writeBank)
	_, _ = fmt.Printf("Writing %d bytes to %s bank at word %d...\n", len(data), bank, cfg.writeAddr)
	if err := reader.Write(bank, cfg.writeAddr, data); err != nil {
		if code, ok := uhf.IsDeviceError(err); ok {
			return fmt.Errorf("reader rejected the write (status 0x%02X): %w", code, err)
		}
		return fmt.Errorf("write failed: %w", err)
	}

	// Verify by reading the words back.
	got, err := reader.Read(bank, cfg.writeAddr, len(data)/uhf.WordSize)
	if err != nil {
		return fmt.Errorf("verify read failed: %w", err)
	}
	_, _ = fmt.Printf("Wrote and verified: %X\n", got)

	if cfg.beep {
		_ = reader.Beep(200 * time.Millisecond)
	}
	return nil
}

func run(ctx context.Context, cfg *config) error {
	transport, err := newTransport(cfg)
	if err != nil {
		return fmt.Errorf("open transport: %w", err)
	}

	reader, err := uhf.New(transport)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close reader: %v\n", err)
		}
	}()

	if cfg.debug {
		if settings, settingsErr := reader.USBSettings(); settingsErr == nil {
			_, _ = fmt.Printf("USB settings: keyboard=%v tab=%v enter=%v delay=%v\n",
				settings.USBKeyboard, settings.AddTab, settings.AddEnter, settings.KeyDelayDuration())
		}
	}

	if cfg.writeHex != "" {
		return runWriteMode(reader, cfg)
	}
	return runScanMode(ctx, reader, cfg)
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_, _ = fmt.Print("\nShutting down gracefully...\n")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
