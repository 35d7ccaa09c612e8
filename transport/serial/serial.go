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

// Package serial implements the uhf.Transport interface over the reader's
// CDC/COM serial mode. Frames keep the same fixed 64-byte packet layout
// as the HID interface; frame boundaries on the inbound side are found by
// an inter-byte gap.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	uhf "github.com/ZaparooProject/go-uhf"
	"github.com/ZaparooProject/go-uhf/internal/frame"
	"github.com/ZaparooProject/go-uhf/internal/syncutil"
)

// DefaultBaudRate matches the reader's factory COM configuration.
const DefaultBaudRate = 115200

// interByteGap is how long a silent line must stay silent before a short
// inbound frame is considered complete.
const interByteGap = 20 * time.Millisecond

// Transport implements uhf.Transport for serial communication.
type Transport struct {
	port      serial.Port
	portName  string
	mu        syncutil.Mutex
	connected bool
}

// New opens a serial transport on the named port at the default baud rate.
func New(portName string) (*Transport, error) {
	return NewWithBaudRate(portName, DefaultBaudRate)
}

// NewWithBaudRate opens a serial transport with an explicit baud rate
// (9600-115200 per the SDK manual).
func NewWithBaudRate(portName string, baudRate int) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, uhf.NewTransportError("Open", portName, err, uhf.ErrorTypePermanent)
	}
	return &Transport{port: port, portName: portName, connected: true}, nil
}

// Send writes one 64-byte frame to the port.
func (t *Transport) Send(pkt []byte) error {
	if len(pkt) != frame.Size {
		return uhf.NewTransportError("Send", t.portName,
			fmt.Errorf("frame must be %d bytes, got %d", frame.Size, len(pkt)),
			uhf.ErrorTypePermanent)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return uhf.NewTransportError("Send", t.portName, uhf.ErrTransportClosed, uhf.ErrorTypePermanent)
	}

	for written := 0; written < len(pkt); {
		n, err := t.port.Write(pkt[written:])
		if err != nil {
			return uhf.NewTransportError("Send", t.portName, err, uhf.ErrorTypeTransient)
		}
		written += n
	}
	return nil
}

// Receive reads one inbound frame. The first byte may take up to timeout
// to arrive; after that, bytes are collected until the frame is full or
// the line goes quiet, which marks a short final frame.
func (t *Transport) Receive(timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, uhf.NewTransportError("Receive", t.portName, uhf.ErrTransportClosed, uhf.ErrorTypePermanent)
	}

	if err := t.port.SetReadTimeout(timeout); err != nil {
		return nil, uhf.NewTransportError("Receive", t.portName, err, uhf.ErrorTypeTransient)
	}

	buf := make([]byte, frame.Size)
	n, err := t.port.Read(buf)
	if err != nil {
		return nil, uhf.NewTransportError("Receive", t.portName, err, uhf.ErrorTypeTransient)
	}
	if n == 0 {
		return nil, uhf.NewTimeoutError("Receive", t.portName)
	}

	if err := t.port.SetReadTimeout(interByteGap); err != nil {
		return nil, uhf.NewTransportError("Receive", t.portName, err, uhf.ErrorTypeTransient)
	}
	for n < frame.Size {
		more, err := t.port.Read(buf[n:])
		if err != nil {
			return nil, uhf.NewTransportError("Receive", t.portName, err, uhf.ErrorTypeTransient)
		}
		if more == 0 {
			break
		}
		n += more
	}
	return buf[:n], nil
}

// Close closes the serial port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("close serial port %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected reports whether the port is open.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type implements uhf.Transport.
func (*Transport) Type() uhf.TransportType {
	return uhf.TransportSerial
}
