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

// Package uhf is a protocol codec for the UHF-U1-CU-71 RFID reader: it
// translates tag memory reads and writes, indicator control, security
// operations, inventory scans and USB-level configuration into the fixed
// 64-byte packets the device speaks, and decodes the raw responses back
// into typed results. Transports for the reader's USB HID and serial
// interfaces live in the transport subpackages.
package uhf

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-uhf/internal/frame"
	"github.com/ZaparooProject/go-uhf/internal/syncutil"
)

// DefaultTimeout is the per-frame receive timeout used unless WithTimeout
// overrides it. Matches the vendor SDK's 2 second transfer timeout.
const DefaultTimeout = 2 * time.Second

// Reader drives one UHF reader over a transport.
//
// The device has no correlation IDs, so exchanges cannot interleave: the
// Reader serializes operations on its handle and runs each response
// assembly to completion before the transport is reused. Separate readers
// on separate transports are independent and may run in parallel.
type Reader struct {
	transport Transport
	timeout   time.Duration
	mu        syncutil.Mutex
}

// Option configures a Reader.
type Option func(*Reader)

// WithTimeout sets the per-frame receive timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reader) {
		r.timeout = timeout
	}
}

// New creates a Reader over an open transport.
func New(transport Transport, opts ...Option) (*Reader, error) {
	if transport == nil {
		return nil, errors.New("nil transport")
	}
	r := &Reader{
		transport: transport,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Transport returns the underlying transport.
func (r *Reader) Transport() Transport {
	return r.transport
}

// Close closes the underlying transport.
func (r *Reader) Close() error {
	if err := r.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// exchange performs one command/response cycle: encode, send the frames,
// then assemble inbound frames until the response completes. A transport
// failure mid-assembly surfaces as ErrIncompleteResponse; the codec never
// retries on its own.
func (r *Reader) exchange(req Request) ([]byte, error) {
	frames, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pkt := range frames {
		Debugf("%s TX %s", req.op(), formatHexBytes(pkt))
		if err := r.transport.Send(pkt); err != nil {
			return nil, fmt.Errorf("%s: %w", req.op(), err)
		}
	}

	asm := frame.NewAssembler()
	for {
		pkt, err := r.transport.Receive(r.timeout)
		if err != nil {
			asm.Fail(err)
			return nil, fmt.Errorf("%s: %w: %w", req.op(), ErrIncompleteResponse, err)
		}
		Debugf("%s RX %s", req.op(), formatHexBytes(pkt))

		done, err := asm.Push(pkt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", req.op(), ErrIncompleteResponse, err)
		}
		if done {
			break
		}
	}

	buf, err := asm.Response()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", req.op(), ErrIncompleteResponse, err)
	}
	return buf, nil
}

// Read reads words*2 bytes of tag memory from the given bank and address.
func (r *Reader) Read(bank Bank, address, words int) ([]byte, error) {
	buf, err := r.exchange(ReadRequest{Bank: bank, Address: address, Words: words})
	if err != nil {
		return nil, err
	}
	return DecodeReadResponse(buf)
}

// Write writes data to tag memory at the given bank and address. The data
// length must be a whole number of words (multiples of 2 bytes).
func (r *Reader) Write(bank Bank, address int, data []byte) error {
	if len(data)%WordSize != 0 {
		return fmt.Errorf("write: %w: %d data bytes is not a whole word count",
			ErrEncoding, len(data))
	}
	buf, err := r.exchange(WriteRequest{
		Bank:    bank,
		Address: address,
		Words:   len(data) / WordSize,
		Data:    data,
	})
	if err != nil {
		return err
	}
	return DecodeWriteResponse(buf)
}

// Indicate drives the buzzer and LEDs for the given duration. The device
// resolves durations in 10ms steps from 10ms to 2.55s.
func (r *Reader) Indicate(action Action, duration time.Duration) error {
	units := int(duration / (10 * time.Millisecond))
	buf, err := r.exchange(IndicatorRequest{Action: action, Duration: units})
	if err != nil {
		return err
	}
	return DecodeIndicatorResponse(buf)
}

// Beep sounds the buzzer for the given duration.
func (r *Reader) Beep(duration time.Duration) error {
	return r.Indicate(ActionBeep, duration)
}

// SetAccessPassword programs the access password of the tag in the field.
// This alters the tag's reserved bank; test on disposable tags first.
func (r *Reader) SetAccessPassword(password AccessPassword) error {
	buf, err := r.exchange(SetAccessPasswordRequest{Password: password})
	if err != nil {
		return err
	}
	return DecodeSetAccessPasswordResponse(buf)
}

// LockMemory applies a lock setting to the tag in the field. Permalock
// bits are irreversible.
func (r *Reader) LockMemory(setting LockSetting) error {
	buf, err := r.exchange(LockMemoryRequest{Setting: setting})
	if err != nil {
		return err
	}
	return DecodeLockMemoryResponse(buf)
}

// Inventory enumerates the tags currently in the reader's field: one init
// query for the count, then one follow-up query per counted tag.
func (r *Reader) Inventory() ([]TagRecord, error) {
	buf, err := r.exchange(InventoryInitRequest{})
	if err != nil {
		return nil, err
	}
	count, err := DecodeInventoryInitResponse(buf)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	records := make([]TagRecord, 0, count)
	for range count {
		buf, err := r.exchange(InventoryNextRequest{})
		if err != nil {
			return nil, err
		}
		recs, err := DecodeInventoryNextResponse(buf)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// USBSettings queries the reader's USB-level settings.
func (r *Reader) USBSettings() (USBSettings, error) {
	buf, err := r.exchange(GetUSBSettingsRequest{})
	if err != nil {
		return USBSettings{}, err
	}
	return DecodeGetUSBSettingsResponse(buf)
}

// SetUSBSettings reconfigures the reader's USB-level settings and returns
// the settings the device reports back.
func (r *Reader) SetUSBSettings(settings USBSettings) (USBSettings, error) {
	buf, err := r.exchange(SetUSBSettingsRequest{Settings: settings})
	if err != nil {
		return USBSettings{}, err
	}
	return DecodeSetUSBSettingsResponse(buf)
}
