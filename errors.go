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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-uhf/internal/bytecodec"
)

// Error categories for error handling and retry decisions. Every encode and
// decode entry point returns one of these kinds (possibly wrapped), so
// callers can branch with errors.Is/As instead of string matching.
var (
	// Encoding errors - caller-supplied value out of protocol range.
	// Always local; nothing is sent to the device.
	ErrEncoding = errors.New("request out of protocol range")

	// Decoding errors - device returned bytes inconsistent with the
	// documented format. Not retried by the codec.
	ErrMalformedHex      = bytecodec.ErrMalformedHex
	ErrProtocolViolation = errors.New("response violates protocol format")

	// Assembly errors - transport-level short read or timeout mid-response.
	ErrIncompleteResponse = errors.New("incomplete response")
	ErrTruncatedInventory = errors.New("inventory shorter than declared tag count")

	// Transport errors - potentially retryable.
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportClosed  = errors.New("transport is closed")

	// Device errors.
	ErrDeviceNotFound = errors.New("device not found")
)

// ErrorType represents the category of error for retry logic.
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error.
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error.
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout error (special handling).
	ErrorTypeTimeout
)

// TransportError wraps transport-level errors with additional context.
type TransportError struct {
	Err       error     // Underlying error
	Op        string    // Operation that failed
	Port      string    // Port or device identifier
	Type      ErrorType // Error category
	Retryable bool      // Whether the error is retryable
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error with consistent formatting.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a timeout error for transport operations.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// DeviceError is a well-formed negative acknowledgement from the reader.
// The code is the raw non-zero status reported for the operation; most code
// meanings are undocumented in the SDK manual, so no interpretation is
// attempted here.
type DeviceError struct {
	Op   string // Operation that the device rejected
	Code uint16 // Raw status value, operation-specific width
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: device error 0x%02X", e.Op, e.Code)
}

// IsDeviceError reports whether err is a device-reported failure and
// extracts the raw status code if so.
func IsDeviceError(err error) (uint16, bool) {
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return 0, false
}

// IsRetryable returns true if the error is potentially retryable. Device
// errors and format violations are not: resending the same bytes produces
// the same answer.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrIncompleteResponse):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the device or connection is
// gone and the handle should not be reused.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrorTypePermanent
	}

	switch {
	case errors.Is(err, ErrTransportClosed),
		errors.Is(err, ErrDeviceNotFound):
		return true
	default:
		return false
	}
}
