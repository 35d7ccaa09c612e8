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

package uhf

import (
	"sync"
	"time"

	"github.com/ZaparooProject/go-uhf/internal/frame"
)

// Transport defines the raw packet channel to a UHF reader. Implementations
// exist for the reader's USB custom-HID interface and its serial CDC mode.
//
// Both calls block; the codec never issues more than one outstanding
// send/receive pair at a time per transport.
type Transport interface {
	// Send writes one outbound frame of exactly 64 bytes.
	Send(pkt []byte) error

	// Receive reads one inbound frame of up to 64 bytes, waiting at most
	// timeout for it to arrive.
	Receive(timeout time.Duration) ([]byte, error)

	// Close closes the transport connection.
	Close() error

	// IsConnected returns true if the transport is connected.
	IsConnected() bool

	// Type returns the transport type.
	Type() TransportType
}

// TransportType represents the type of transport.
type TransportType string

const (
	// TransportHID represents the USB custom-HID interface.
	TransportHID TransportType = "hid"
	// TransportSerial represents the serial CDC/COM interface.
	TransportSerial TransportType = "serial"
	// TransportMock represents a mock transport for testing.
	TransportMock TransportType = "mock"
)

// MockTransport provides a scripted implementation of Transport for testing.
// Inbound frames are queued ahead of time; outbound frames are recorded.
type MockTransport struct {
	sendErr    error
	receiveErr error
	inbound    [][]byte
	sent       [][]byte
	mu         sync.Mutex
	connected  bool
}

// NewMockTransport creates a connected mock transport with no queued frames.
func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

// Send implements Transport. Frames are recorded for later inspection.
func (m *MockTransport) Send(pkt []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return NewTransportError("Send", "mock", ErrTransportClosed, ErrorTypePermanent)
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	cp := make([]byte, len(pkt))
	copy(cp, pkt)
	m.sent = append(m.sent, cp)
	return nil
}

// Receive implements Transport, returning the next queued inbound frame.
// An empty queue behaves like a read timeout.
func (m *MockTransport) Receive(_ time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil, NewTransportError("Receive", "mock", ErrTransportClosed, ErrorTypePermanent)
	}
	if m.receiveErr != nil {
		return nil, m.receiveErr
	}
	if len(m.inbound) == 0 {
		return nil, NewTimeoutError("Receive", "mock")
	}
	pkt := m.inbound[0]
	m.inbound = m.inbound[1:]
	return pkt, nil
}

// Close implements Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

// IsConnected implements Transport.
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Type implements Transport.
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// QueueFrame appends one inbound frame to the receive queue. Frames shorter
// than the packet size are delivered as-is, like a final short frame.
func (m *MockTransport) QueueFrame(pkt []byte) {
	m.mu.Lock()
	cp := make([]byte, len(pkt))
	copy(cp, pkt)
	m.inbound = append(m.inbound, cp)
	m.mu.Unlock()
}

// QueueResponse pads pkt to a full frame and queues it, the common case of
// a single-packet device response.
func (m *MockTransport) QueueResponse(pkt []byte) {
	full := make([]byte, frame.Size)
	copy(full, pkt)
	m.QueueFrame(full)
}

// SetSendError injects an error for subsequent Send calls.
func (m *MockTransport) SetSendError(err error) {
	m.mu.Lock()
	m.sendErr = err
	m.mu.Unlock()
}

// SetReceiveError injects an error for subsequent Receive calls.
func (m *MockTransport) SetReceiveError(err error) {
	m.mu.Lock()
	m.receiveErr = err
	m.mu.Unlock()
}

// Sent returns copies of all frames written so far.
func (m *MockTransport) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset clears queues, injected errors and reconnects the mock.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.inbound = nil
	m.sent = nil
	m.sendErr = nil
	m.receiveErr = nil
	m.connected = true
	m.mu.Unlock()
}
