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
	"bytes"
	"errors"
	"testing"
)

func TestLockSettingEncodeASCII(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		want    string
		setting LockSetting
	}{
		{
			// The SDK manual's own example: write-protect the user bank.
			name:    "lock user bank",
			setting: LockSetting{Mask: 0x002, Action: 0x002},
			want:    "002002",
		},
		{
			name:    "zero setting",
			setting: LockSetting{},
			want:    "000000",
		},
		{
			name:    "all fields selected",
			setting: LockSetting{Mask: 0x3FF, Action: 0x2AA},
			want:    "3FF2AA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.setting.encodeASCII()
			if err != nil {
				t.Fatalf("encodeASCII failed: %v", err)
			}
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("encodeASCII = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLockSettingReservedBits(t *testing.T) {
	t.Parallel()
	_, err := LockSetting{Mask: 0x400}.encodeASCII()
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("reserved mask bit error = %v, want ErrEncoding", err)
	}
	_, err = LockSetting{Action: 0x800}.encodeASCII()
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("reserved action bit error = %v, want ErrEncoding", err)
	}
}

func TestLockSettingFields(t *testing.T) {
	t.Parallel()
	var s LockSetting
	s.SetField(LockUser, 0x3, LockBitWrite)
	s.SetField(LockKillPassword, 0x3, LockBitWrite|LockBitPermanent)

	if s.Mask != 0x303 {
		t.Errorf("Mask = %03X, want 303", s.Mask)
	}
	if s.Action != 0x302 {
		t.Errorf("Action = %03X, want 302", s.Action)
	}

	mask, action := s.Field(LockKillPassword)
	if mask != 0x3 || action != LockBitWrite|LockBitPermanent {
		t.Errorf("Field(kill) = %x/%x", mask, action)
	}
	mask, action = s.Field(LockEPC)
	if mask != 0 || action != 0 {
		t.Errorf("Field(epc) = %x/%x, want untouched", mask, action)
	}
}

func TestParseLockSetting(t *testing.T) {
	t.Parallel()
	s, err := ParseLockSetting([]byte("002002"))
	if err != nil {
		t.Fatalf("ParseLockSetting failed: %v", err)
	}
	if s.Mask != 0x002 || s.Action != 0x002 {
		t.Errorf("ParseLockSetting = %03X/%03X", s.Mask, s.Action)
	}
	mask, action := s.Field(LockUser)
	if mask != LockBitWrite || action != LockBitWrite {
		t.Errorf("user field = %x/%x, want write-protect pair", mask, action)
	}

	if _, err := ParseLockSetting([]byte("00200")); !errors.Is(err, ErrMalformedHex) {
		t.Errorf("short setting error = %v, want ErrMalformedHex", err)
	}
	if _, err := ParseLockSetting([]byte("00G002")); !errors.Is(err, ErrMalformedHex) {
		t.Errorf("bad digit error = %v, want ErrMalformedHex", err)
	}
	if _, err := ParseLockSetting([]byte("C00002")); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("reserved bits error = %v, want ErrProtocolViolation", err)
	}
}

func TestUSBSettingsByteRoundTrip(t *testing.T) {
	t.Parallel()
	in := USBSettings{USBKeyboard: true, COMAuto: true, AddEnter: true}
	b := in.settingsByte()
	if b != 0x85 {
		t.Fatalf("settingsByte = 0x%02X, want 0x85", b)
	}
	out, err := decodeUSBSettingsByte(b)
	if err != nil {
		t.Fatalf("decodeUSBSettingsByte failed: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestUSBSettingsReservedBits(t *testing.T) {
	t.Parallel()
	for _, bit := range []byte{0x08, 0x10, 0x20} {
		if _, err := decodeUSBSettingsByte(bit); !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("reserved bit 0x%02X error = %v, want ErrProtocolViolation", bit, err)
		}
	}
}

func TestActionString(t *testing.T) {
	t.Parallel()
	if got := (ActionBeep | ActionGreenLED).String(); got != "beep+green" {
		t.Errorf("Action.String() = %q", got)
	}
	if got := Action(0).String(); got != "none" {
		t.Errorf("Action(0).String() = %q", got)
	}
}
