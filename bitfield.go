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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/go-uhf/internal/bytecodec"
)

// Action selects the reader's indicators for an Indicate command. Values
// combine with bitwise OR.
type Action byte

// Indicator action bits.
const (
	ActionBeep      Action = 0x01
	ActionRedLED    Action = 0x02
	ActionGreenLED  Action = 0x04
	ActionYellowLED Action = 0x08

	actionAllowed Action = 0x0F
)

var actionNames = []struct {
	name string
	bit  Action
}{
	{"beep", ActionBeep},
	{"red", ActionRedLED},
	{"green", ActionGreenLED},
	{"yellow", ActionYellowLED},
}

func (a Action) String() string {
	var parts []string
	for _, f := range actionNames {
		if a&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// LockTarget names one of the five lockable regions of a Gen2 tag. Each
// target owns a 2-bit field in both the lock mask and the lock action.
type LockTarget uint8

// Lockable regions, low field first.
const (
	LockUser LockTarget = iota
	LockTID
	LockEPC
	LockAccessPassword
	LockKillPassword
)

// lockFields is the fixed bit layout of the 12-bit mask and action values.
// Bits 0-9 carry the five 2-bit fields; bits 10-11 are reserved and must
// be zero. The per-pair semantics below follow the published table; they
// are reverse-engineered and only the encode direction is exercised by
// the reader operations.
var lockFields = []struct {
	name   string
	target LockTarget
	shift  uint
}{
	{"user", LockUser, 0},
	{"tid", LockTID, 2},
	{"epc", LockEPC, 4},
	{"access-password", LockAccessPassword, 6},
	{"kill-password", LockKillPassword, 8},
}

// Bits within one 2-bit lock field.
const (
	// LockBitWrite write-protects the region (password required).
	LockBitWrite byte = 0x2
	// LockBitPermanent makes the current state permanent. Permalock is
	// irreversible; see the SDK manual before setting it.
	LockBitPermanent byte = 0x1
)

// lockReservedMask covers bits 10-11 of a mask or action value.
const lockReservedMask = 0xC00

func (t LockTarget) String() string {
	for _, f := range lockFields {
		if f.target == t {
			return f.name
		}
	}
	return fmt.Sprintf("lock-target(%d)", uint8(t))
}

func (t LockTarget) shift() (uint, bool) {
	for _, f := range lockFields {
		if f.target == t {
			return f.shift, true
		}
	}
	return 0, false
}

// LockSetting is the mask/action pair of a Lock Memory command. Mask bits
// select which fields the command touches; action bits give the new state.
type LockSetting struct {
	Mask   uint16
	Action uint16
}

// SetField sets the mask and action pair for one target. Only the low two
// bits of each argument are used.
func (s *LockSetting) SetField(t LockTarget, maskBits, actionBits byte) {
	shift, ok := t.shift()
	if !ok {
		return
	}
	s.Mask = s.Mask&^(0x3<<shift) | uint16(maskBits&0x3)<<shift
	s.Action = s.Action&^(0x3<<shift) | uint16(actionBits&0x3)<<shift
}

// Field returns the mask and action pair for one target.
func (s LockSetting) Field(t LockTarget) (maskBits, actionBits byte) {
	shift, ok := t.shift()
	if !ok {
		return 0, 0
	}
	return byte(s.Mask>>shift) & 0x3, byte(s.Action>>shift) & 0x3
}

// encodeASCII renders the setting as the six ASCII hex characters the wire
// format carries: three digits of mask, three of action.
func (s LockSetting) encodeASCII() ([]byte, error) {
	if s.Mask&lockReservedMask != 0 || s.Action&lockReservedMask != 0 {
		return nil, fmt.Errorf("%w: lock setting uses reserved bits (mask %03X action %03X)",
			ErrEncoding, s.Mask, s.Action)
	}
	out := make([]byte, 0, 6)
	for _, v := range []uint16{s.Mask, s.Action} {
		out = append(out,
			bytecodec.HexDigit(byte(v>>8)&0xF),
			bytecodec.HexDigit(byte(v>>4)&0xF),
			bytecodec.HexDigit(byte(v)&0xF),
		)
	}
	return out, nil
}

// ParseLockSetting decodes six ASCII hex characters back into a mask and
// action pair. The reader never sends lock settings back; this exists for
// diagnostics and log inspection.
func ParseLockSetting(ascii []byte) (LockSetting, error) {
	if len(ascii) != 6 {
		return LockSetting{}, fmt.Errorf("%w: lock setting needs 6 characters, got %d",
			ErrMalformedHex, len(ascii))
	}
	var vals [2]uint16
	for i := range vals {
		v, err := strconv.ParseUint(string(ascii[i*3:i*3+3]), 16, 16)
		if err != nil {
			return LockSetting{}, fmt.Errorf("%w: %q", ErrMalformedHex, ascii[i*3:i*3+3])
		}
		vals[i] = uint16(v)
	}
	s := LockSetting{Mask: vals[0], Action: vals[1]}
	if s.Mask&lockReservedMask != 0 || s.Action&lockReservedMask != 0 {
		return LockSetting{}, fmt.Errorf("%w: reserved lock bits set (mask %03X action %03X)",
			ErrProtocolViolation, s.Mask, s.Action)
	}
	return s, nil
}

// USB settings byte layout. Bits 3-5 are reserved and must read as zero.
const (
	usbBitKeyboard   byte = 1 << 0
	usbBitHIDCDCAuto byte = 1 << 1
	usbBitCOMAuto    byte = 1 << 2
	usbBitAddTab     byte = 1 << 6
	usbBitAddEnter   byte = 1 << 7

	usbReservedMask byte = 0x38
)

// USBSettings is the reader's USB-level behavior: how scanned tags are
// typed out over the emulated keyboard and which interfaces auto-attach.
type USBSettings struct {
	USBKeyboard bool // emulate a USB keyboard
	HIDCDCAuto  bool // auto-select between HID and CDC
	COMAuto     bool // auto-attach the virtual COM port
	AddTab      bool // append Tab after each tag
	AddEnter    bool // append Enter after each tag
	KeyDelay    byte // inter-key delay, units of 10ms
}

// KeyDelayDuration returns the inter-key delay as a duration.
func (s USBSettings) KeyDelayDuration() time.Duration {
	return time.Duration(s.KeyDelay) * 10 * time.Millisecond
}

func (s USBSettings) settingsByte() byte {
	var b byte
	if s.USBKeyboard {
		b |= usbBitKeyboard
	}
	if s.HIDCDCAuto {
		b |= usbBitHIDCDCAuto
	}
	if s.COMAuto {
		b |= usbBitCOMAuto
	}
	if s.AddTab {
		b |= usbBitAddTab
	}
	if s.AddEnter {
		b |= usbBitAddEnter
	}
	return b
}

func decodeUSBSettingsByte(b byte) (USBSettings, error) {
	if b&usbReservedMask != 0 {
		return USBSettings{}, fmt.Errorf("%w: reserved USB settings bits set (0x%02X)",
			ErrProtocolViolation, b)
	}
	return USBSettings{
		USBKeyboard: b&usbBitKeyboard != 0,
		HIDCDCAuto:  b&usbBitHIDCDCAuto != 0,
		COMAuto:     b&usbBitCOMAuto != 0,
		AddTab:      b&usbBitAddTab != 0,
		AddEnter:    b&usbBitAddEnter != 0,
	}, nil
}
