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

package bytecodec

import (
	"bytes"
	"errors"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"single byte", []byte{0xFF}},
		{"epc-like", []byte{0xE2, 0x00, 0x34, 0x12, 0x01, 0x39, 0x0F, 0x00, 0x03, 0x14, 0x15, 0x92}},
		{"all zeros", []byte{0x00, 0x00, 0x00, 0x00}},
		{"mixed", []byte{0x00, 0x0F, 0xF0, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hex := BytesToHex(tt.data)
			if len(hex) != len(tt.data)*2 {
				t.Fatalf("BytesToHex length = %d, want %d", len(hex), len(tt.data)*2)
			}
			back, err := HexToBytes(hex)
			if err != nil {
				t.Fatalf("HexToBytes failed: %v", err)
			}
			if !bytes.Equal(back, tt.data) {
				t.Errorf("round trip = %x, want %x", back, tt.data)
			}
		})
	}
}

func TestHexToBytesAcceptsLowercase(t *testing.T) {
	t.Parallel()
	got, err := HexToBytes([]byte("ab12Cd"))
	if err != nil {
		t.Fatalf("HexToBytes failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0xAB, 0x12, 0xCD}) {
		t.Errorf("HexToBytes = %x, want ab12cd", got)
	}
}

func TestHexToBytesErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{"odd length", "123"},
		{"invalid character", "12G4"},
		{"separator leaks in", "12,4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := HexToBytes([]byte(tt.input))
			if !errors.Is(err, ErrMalformedHex) {
				t.Errorf("HexToBytes(%q) error = %v, want ErrMalformedHex", tt.input, err)
			}
		})
	}
}

func TestHexDigit(t *testing.T) {
	t.Parallel()
	for v, want := range map[byte]byte{0: '0', 9: '9', 10: 'A', 15: 'F'} {
		if got := HexDigit(v); got != want {
			t.Errorf("HexDigit(%d) = %c, want %c", v, got, want)
		}
	}
}

func TestPackUnpackBE(t *testing.T) {
	t.Parallel()
	b, err := PackBE(0x1234, 2)
	if err != nil {
		t.Fatalf("PackBE failed: %v", err)
	}
	if !bytes.Equal(b, []byte{0x12, 0x34}) {
		t.Errorf("PackBE = %x, want 1234", b)
	}
	if got := UnpackBE(b); got != 0x1234 {
		t.Errorf("UnpackBE = %#x, want 0x1234", got)
	}
	if _, err := PackBE(0x10000, 2); !errors.Is(err, ErrOverflow) {
		t.Errorf("PackBE overflow error = %v, want ErrOverflow", err)
	}
}

func TestPackUnpackLE(t *testing.T) {
	t.Parallel()
	b, err := PackLE(0x12345678, 4)
	if err != nil {
		t.Fatalf("PackLE failed: %v", err)
	}
	if !bytes.Equal(b, []byte{0x78, 0x56, 0x34, 0x12}) {
		t.Errorf("PackLE = %x, want 78563412", b)
	}
	if got := UnpackLE(b); got != 0x12345678 {
		t.Errorf("UnpackLE = %#x, want 0x12345678", got)
	}
}

func TestPadTo(t *testing.T) {
	t.Parallel()
	out, err := PadTo([]byte{1, 2, 3}, 5, 0)
	if err != nil {
		t.Fatalf("PadTo failed: %v", err)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 0, 0}) {
		t.Errorf("PadTo = %v", out)
	}
	if _, err := PadTo([]byte{1, 2, 3}, 2, 0); !errors.Is(err, ErrOverflow) {
		t.Errorf("PadTo overflow error = %v, want ErrOverflow", err)
	}
}
