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

// Package hid implements the uhf.Transport interface over the reader's
// USB custom-HID interface, using github.com/sstallion/go-hid as the
// HIDAPI layer.
package hid

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/sstallion/go-hid"

	uhf "github.com/ZaparooProject/go-uhf"
	"github.com/ZaparooProject/go-uhf/internal/frame"
	"github.com/ZaparooProject/go-uhf/internal/syncutil"
)

// USB identifiers of the UHF-U1-CU-71 (Megawin Technology HID bridge).
const (
	VendorID  = 0x0E6A
	ProductID = 0x0317
)

// DeviceInfo describes one detected reader.
type DeviceInfo struct {
	Path    string
	Product string
	Serial  string
}

// Detect enumerates connected readers by VID/PID.
func Detect() ([]DeviceInfo, error) {
	var devices []DeviceInfo
	err := hid.Enumerate(VendorID, ProductID, func(info *hid.DeviceInfo) error {
		devices = append(devices, DeviceInfo{
			Path:    info.Path,
			Product: info.ProductStr,
			Serial:  info.SerialNbr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate HID devices: %w", err)
	}
	return devices, nil
}

// Transport implements uhf.Transport over a hidraw device. The mutex
// serializes raw report I/O; exchange-level serialization is the
// Reader's job.
type Transport struct {
	dev       *hid.Device
	path      string
	mu        syncutil.Mutex
	connected bool
}

// New opens the first connected reader matching the well-known VID/PID.
func New() (*Transport, error) {
	dev, err := hid.OpenFirst(VendorID, ProductID)
	if err != nil {
		return nil, uhf.NewTransportError("Open", "", uhf.ErrDeviceNotFound, uhf.ErrorTypePermanent)
	}
	return &Transport{dev: dev, path: "first", connected: true}, nil
}

// Open opens a reader by platform device path (e.g. /dev/hidraw3).
func Open(path string) (*Transport, error) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, uhf.NewTransportError("Open", path, err, uhf.ErrorTypePermanent)
	}
	return &Transport{dev: dev, path: path, connected: true}, nil
}

// Send writes one 64-byte frame as an output report. HIDAPI wants the
// report number first; the reader uses unnumbered reports, so it is 0.
func (t *Transport) Send(pkt []byte) error {
	if len(pkt) != frame.Size {
		return uhf.NewTransportError("Send", t.path,
			fmt.Errorf("frame must be %d bytes, got %d", frame.Size, len(pkt)),
			uhf.ErrorTypePermanent)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return uhf.NewTransportError("Send", t.path, uhf.ErrTransportClosed, uhf.ErrorTypePermanent)
	}

	report := make([]byte, 1+frame.Size)
	copy(report[1:], pkt)
	if _, err := t.dev.Write(report); err != nil {
		return uhf.NewTransportError("Send", t.path, err, uhf.ErrorTypeTransient)
	}
	return nil
}

// Receive reads one input report, waiting at most timeout. Interrupted
// reads are resumed until the deadline passes; hidraw reads on Linux are
// restartable after signals.
func (t *Transport) Receive(timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, uhf.NewTransportError("Receive", t.path, uhf.ErrTransportClosed, uhf.ErrorTypePermanent)
	}

	buf := make([]byte, frame.Size)
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, uhf.NewTimeoutError("Receive", t.path)
		}

		n, err := t.dev.ReadWithTimeout(buf, remaining)
		if err != nil {
			if interrupted(err) {
				continue
			}
			return nil, uhf.NewTransportError("Receive", t.path, err, uhf.ErrorTypeTransient)
		}
		if n == 0 {
			return nil, uhf.NewTimeoutError("Receive", t.path)
		}
		return buf[:n], nil
	}
}

// interrupted reports whether a read failed with EINTR. The hidapi C
// layer usually flattens errno into the strerror message text, so the
// typed check alone is not enough.
func interrupted(err error) bool {
	return errors.Is(err, syscall.EINTR) ||
		strings.Contains(err.Error(), "Interrupted system call")
}

// Close closes the hidraw device.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if err := t.dev.Close(); err != nil {
		return fmt.Errorf("close HID device %s: %w", t.path, err)
	}
	return nil
}

// IsConnected reports whether the device is open.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type implements uhf.Transport.
func (*Transport) Type() uhf.TransportType {
	return uhf.TransportHID
}
