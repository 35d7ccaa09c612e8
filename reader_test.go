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
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	t.Parallel()
	_, err := New(nil)
	require.Error(t, err)

	mock := NewMockTransport()
	reader, err := New(mock, WithTimeout(500*time.Millisecond))
	require.NoError(t, err)
	assert.Same(t, Transport(mock), reader.Transport())
	require.NoError(t, reader.Close())
	assert.False(t, mock.IsConnected())
}

func TestReaderRead(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x08, 0x02, 0x41, 0x00, 0x52, '1', '2', 'A', 'B'})

	reader, err := New(mock)
	require.NoError(t, err)

	data, err := reader.Read(BankTID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0xAB}, data)

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{0x08, 0x02, 'A', 'R', '2', ',', '0', ',', '1'}, sent[0][:9])
}

func TestReaderWrite(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x08, 0x02, 0x41, 0x00, 0x57, 0x3C, 0x4F, 0x4B})

	reader, err := New(mock)
	require.NoError(t, err)
	require.NoError(t, reader.Write(BankUser, 0x10, []byte{0xCA, 0xFE}))

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t,
		[]byte{0x0E, 0x02, 'A', 'W', '3', ',', '1', '0', ',', '1', ',', 'C', 'A', 'F', 'E'},
		sent[0][:15])
}

func TestReaderWriteOddLength(t *testing.T) {
	t.Parallel()
	reader, err := New(NewMockTransport())
	require.NoError(t, err)

	err = reader.Write(BankUser, 0, []byte{0x01, 0x02, 0x03})
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestReaderIndicate(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x04, 0x02, 0x55, 0x00, 0x00})

	reader, err := New(mock)
	require.NoError(t, err)
	require.NoError(t, reader.Beep(100*time.Millisecond))

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{0x04, 0x02, 0x55, 0x01, 0x0A}, sent[0][:5])
}

func TestReaderIndicateDeviceError(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x04, 0x02, 0x55, 0x30, 0x39})

	reader, err := New(mock)
	require.NoError(t, err)

	err = reader.Indicate(ActionRedLED, time.Second)
	code, ok := IsDeviceError(err)
	require.True(t, ok, "expected a DeviceError, got %v", err)
	assert.Equal(t, uint16(0x3039), code)
}

func TestReaderInventory(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x04, 0x02, 0x55, 0x00, 0x02})
	mock.QueueResponse([]byte{0x09, 0x02, 0xA0, 0x00, 0x01, 0x03, 0x05, 0xAA, 0xBB})
	mock.QueueResponse([]byte{0x09, 0x02, 0xA0, 0x00, 0x01, 0x03, 0x01, 0xCC, 0xDD})

	reader, err := New(mock)
	require.NoError(t, err)

	records, err := reader.Inventory()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []byte{0xAA, 0xBB}, records[0].EPC)
	assert.Equal(t, byte(5), records[0].ReadCount)
	assert.Equal(t, []byte{0xCC, 0xDD}, records[1].EPC)

	// One init query plus one follow-up per counted tag.
	sent := mock.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, []byte{0x03, 0x02, 0x55, 0x80}, sent[0][:4])
	assert.Equal(t, []byte{0x03, 0x02, 0x55, 0x91}, sent[1][:4])
	assert.Equal(t, []byte{0x03, 0x02, 0x55, 0x91}, sent[2][:4])
}

func TestReaderInventoryEmptyField(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x04, 0x02, 0x55, 0x00, 0x00})

	reader, err := New(mock)
	require.NoError(t, err)

	records, err := reader.Inventory()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Len(t, mock.Sent(), 1, "no follow-up queries for an empty field")
}

func TestReaderInventoryMultiFrameResponse(t *testing.T) {
	t.Parallel()
	// Five 12-byte EPCs make a 75-byte logical response, which the device
	// delivers as one continuation packet and one short final packet.
	logical := []byte{74, 0x02, 0xA0, 0x00, 0x05}
	for i := range 5 {
		rec := append([]byte{0x0D, byte(i + 1)}, make([]byte, 12)...)
		rec[2] = 0xE2
		rec[13] = byte(i)
		logical = append(logical, rec...)
	}
	require.Len(t, logical, 75)

	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x04, 0x02, 0x55, 0x00, 0x01})
	mock.QueueFrame(append([]byte{0x3F}, logical[:63]...))
	mock.QueueFrame(logical[63:])

	reader, err := New(mock)
	require.NoError(t, err)

	records, err := reader.Inventory()
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, byte(i+1), rec.ReadCount)
		assert.Equal(t, byte(0xE2), rec.EPC[0])
		assert.Equal(t, byte(i), rec.EPC[11])
	}
}

func TestReaderSecurityOperations(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x08, 0x02, 0x41, 0x00, 0x53, 0x3C, 0x4F, 0x4B})
	mock.QueueResponse([]byte{0x08, 0x02, 0x41, 0x00, 0x4C, 0x3C, 0x4F, 0x4B})

	reader, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, reader.SetAccessPassword(PasswordFromWords(0, 0x12345678)))
	require.NoError(t, reader.LockMemory(LockSetting{Mask: 0x002, Action: 0x002}))

	sent := mock.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t,
		[]byte{0x0B, 0x02, 'A', 'S', 0x78, 0x56, 0x34, 0x12, 0, 0, 0, 0},
		sent[0][:12])
	assert.Equal(t,
		[]byte{0x0A, 0x02, 'A', 'L', '0', '0', '2', '0', '0', '2', 0x00},
		sent[1][:11])
}

func TestReaderUSBSettings(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.QueueResponse([]byte{0x07, 0x02, 0x92, 0x00, 0x00, 0x01, 0x01, 0x00})
	mock.QueueResponse([]byte{0x07, 0x02, 0x92, 0x00, 0x00, 0x02, 0xC1, 0x03})

	reader, err := New(mock)
	require.NoError(t, err)

	settings, err := reader.USBSettings()
	require.NoError(t, err)
	assert.True(t, settings.USBKeyboard)
	assert.False(t, settings.AddEnter)

	settings.AddTab = true
	settings.AddEnter = true
	settings.KeyDelay = 3
	echoed, err := reader.SetUSBSettings(settings)
	require.NoError(t, err)
	assert.Equal(t, settings, echoed)

	sent := mock.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, []byte{0x06, 0x02, 0x92, 0x00, 0x02, 0xC1, 0x03}, sent[1][:7])
}

func TestReaderReceiveTimeout(t *testing.T) {
	t.Parallel()
	reader, err := New(NewMockTransport(), WithTimeout(time.Millisecond))
	require.NoError(t, err)

	_, err = reader.Read(BankEPC, 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteResponse)
	assert.ErrorIs(t, err, ErrTransportTimeout)
	assert.True(t, IsRetryable(err), "a timed-out exchange is retryable as a whole")
}

func TestReaderSendFailure(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	mock.SetSendError(NewTransportError("Send", "mock", ErrTransportWrite, ErrorTypePermanent))

	reader, err := New(mock)
	require.NoError(t, err)

	err = reader.Beep(50 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTransportWrite)
	assert.True(t, IsFatal(err))
}

func TestReaderFailureMidAssembly(t *testing.T) {
	t.Parallel()
	// A continuation packet arrives, then the transport goes quiet. The
	// partial response must be dropped, not decoded.
	logical := make([]byte, 80)
	logical[0] = 79
	logical[1] = 0x02

	mock := NewMockTransport()
	mock.QueueFrame(append([]byte{0x3F}, logical[:63]...))

	reader, err := New(mock, WithTimeout(time.Millisecond))
	require.NoError(t, err)

	_, err = reader.Read(BankEPC, 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteResponse)
}

func TestRetryWithConfigRecovers(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	reader, err := New(mock, WithTimeout(time.Millisecond))
	require.NoError(t, err)

	attempts := 0
	err = RetryWithConfig(context.Background(), &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
	}, func() error {
		attempts++
		if attempts == 2 {
			mock.QueueResponse([]byte{0x04, 0x02, 0x55, 0x00, 0x00})
		}
		return reader.Beep(50 * time.Millisecond)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithConfigStopsOnFatal(t *testing.T) {
	t.Parallel()
	fatal := NewTransportError("Send", "mock", ErrTransportClosed, ErrorTypePermanent)
	attempts := 0
	err := RetryWithConfig(context.Background(), DefaultRetryConfig(), func() error {
		attempts++
		return fmt.Errorf("beep: %w", fatal)
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.Is(err, ErrTransportClosed))
}
