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

// Package bytecodec provides the byte-level primitives shared by the UHF
// command encoder and response decoder: ASCII-hex conversion as the reader
// speaks it, big/little-endian integer packing, and fixed-width padding.
//
// The reader's ASCII-hex dialect is stricter than encoding/hex: output is
// always uppercase, a lone field digit can stand for a whole value (see
// HexDigit), and decoding rejects odd-length input rather than truncating.
package bytecodec

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHex indicates an ASCII-hex field with an odd length or a
	// character outside [0-9A-Fa-f].
	ErrMalformedHex = errors.New("malformed hex field")
	// ErrOverflow indicates input that does not fit the requested width.
	ErrOverflow = errors.New("value exceeds field width")
)

// HexDigit returns the single uppercase ASCII hex digit for v (0-15).
// The reader uses this for one-character fields such as the read/write
// word count, where 10 is sent as 'A'.
func HexDigit(v byte) byte {
	if v >= 10 {
		return v - 10 + 'A'
	}
	return v + '0'
}

// hexNibble converts one ASCII hex character to its value.
func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, fmt.Errorf("%w: invalid character 0x%02X", ErrMalformedHex, c)
	}
}

// HexToBytes interprets pairs of ASCII hex digits as bytes.
func HexToBytes(chars []byte) ([]byte, error) {
	if len(chars)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrMalformedHex, len(chars))
	}
	out := make([]byte, len(chars)/2)
	for i := range out {
		hi, err := hexNibble(chars[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(chars[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// BytesToHex renders data as uppercase ASCII hex, two characters per byte.
func BytesToHex(data []byte) []byte {
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[2*i] = HexDigit(b >> 4)
		out[2*i+1] = HexDigit(b & 0x0F)
	}
	return out
}

// PackBE packs n into width bytes, most significant byte first.
func PackBE(n uint64, width int) ([]byte, error) {
	if width < 8 && n>>(8*width) != 0 {
		return nil, fmt.Errorf("%w: %d in %d bytes", ErrOverflow, n, width)
	}
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}
	return out, nil
}

// UnpackBE interprets b as a big-endian unsigned integer.
func UnpackBE(b []byte) uint64 {
	var n uint64
	for _, v := range b {
		n = n<<8 | uint64(v)
	}
	return n
}

// PackLE packs n into width bytes, least significant byte first. The reader
// uses this for the two 4-byte halves of an access password.
func PackLE(n uint64, width int) ([]byte, error) {
	if width < 8 && n>>(8*width) != 0 {
		return nil, fmt.Errorf("%w: %d in %d bytes", ErrOverflow, n, width)
	}
	out := make([]byte, width)
	for i := range out {
		out[i] = byte(n)
		n >>= 8
	}
	return out, nil
}

// UnpackLE interprets b as a little-endian unsigned integer.
func UnpackLE(b []byte) uint64 {
	var n uint64
	for i := len(b) - 1; i >= 0; i-- {
		n = n<<8 | uint64(b[i])
	}
	return n
}

// PadTo returns b extended to width bytes with fill. Input longer than
// width is an error, never truncated.
func PadTo(b []byte, width int, fill byte) ([]byte, error) {
	if len(b) > width {
		return nil, fmt.Errorf("%w: %d bytes into %d", ErrOverflow, len(b), width)
	}
	out := make([]byte, width)
	copy(out, b)
	if fill != 0 {
		for i := len(b); i < width; i++ {
			out[i] = fill
		}
	}
	return out, nil
}
