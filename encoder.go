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

	"github.com/ZaparooProject/go-uhf/internal/bytecodec"
	"github.com/ZaparooProject/go-uhf/internal/frame"
)

// Command bytes. Tag memory commands are the ASCII 'A' class with an
// operation letter; reader-local commands use the 0x55 class; USB settings
// use 0x92 with a get/set subcommand. Addresses and lengths travel as
// ASCII hex, passwords as raw binary - the mix is the documented protocol,
// not an accident.
const (
	cmdTagClass    = 0x41 // 'A'
	cmdOpRead      = 0x52 // 'R'
	cmdOpWrite     = 0x57 // 'W'
	cmdOpPassword  = 0x53 // 'S'
	cmdOpLock      = 0x4C // 'L'
	cmdReaderClass = 0x55
	cmdOpInvInit   = 0x80
	cmdOpInvNext   = 0x91
	cmdUSBClass    = 0x92

	usbSubGet = 0x01
	usbSubSet = 0x02

	fieldSep = 0x2C // ','
)

// Bank is one of the four logical tag memory regions.
type Bank int

// Tag memory banks, numbered as the protocol sends them.
const (
	BankEPC      Bank = 1
	BankTID      Bank = 2
	BankUser     Bank = 3
	BankReserved Bank = 4
)

func (b Bank) String() string {
	switch b {
	case BankEPC:
		return "EPC"
	case BankTID:
		return "TID"
	case BankUser:
		return "USER"
	case BankReserved:
		return "reserved"
	default:
		return fmt.Sprintf("bank(%d)", int(b))
	}
}

// Limits fixed by the single-character wire fields.
const (
	maxAddress  = 0xFF // two ASCII hex digits
	minWords    = 1
	maxWords    = 10 // single length character, 10 sent as 'A'
	maxDuration = 0xFF
)

// WordSize is the number of bytes one word-count unit covers in read and
// write payloads.
const WordSize = 2

// A Request is one fully-constructed reader operation, ready to encode.
// Requests are value types; nothing mutates them after EncodeRequest.
type Request interface {
	// op names the operation for error context.
	op() string
	// payload builds the logical command payload, excluding the length
	// byte and frame padding.
	payload() ([]byte, error)
}

// EncodeRequest builds the ordered outbound frame sequence for a request.
// All documented commands fit one frame; oversized payloads split per the
// continuation framing rule.
func EncodeRequest(r Request) ([][]byte, error) {
	p, err := r.payload()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.op(), err)
	}
	frames, err := frame.Chunk(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.op(), ErrEncoding, err)
	}
	return frames, nil
}

func checkBank(b Bank) error {
	if b < BankEPC || b > BankReserved {
		return fmt.Errorf("%w: bank %d not in 1-4", ErrEncoding, b)
	}
	return nil
}

// appendTagHeader appends the shared read/write prefix: class byte,
// operation letter, bank digit, and the ASCII-hex address (one digit
// below 0x10, two otherwise).
func appendTagHeader(p []byte, opLetter byte, bank Bank, address int) ([]byte, error) {
	if err := checkBank(bank); err != nil {
		return nil, err
	}
	if address < 0 || address > maxAddress {
		return nil, fmt.Errorf("%w: address 0x%X needs more than 2 hex digits", ErrEncoding, address)
	}
	p = append(p, cmdTagClass, opLetter, '0'+byte(bank), fieldSep)
	if address >= 0x10 {
		p = append(p, bytecodec.HexDigit(byte(address)>>4))
	}
	p = append(p, bytecodec.HexDigit(byte(address)&0xF), fieldSep)
	return p, nil
}

func lengthChar(words int) (byte, error) {
	if words < minWords || words > maxWords {
		return 0, fmt.Errorf("%w: word count %d not in %d-%d", ErrEncoding, words, minWords, maxWords)
	}
	return bytecodec.HexDigit(byte(words)), nil
}

// ReadRequest reads Words words of tag memory starting at Address.
// Each word yields two data bytes in the decoded response.
type ReadRequest struct {
	Bank    Bank
	Address int
	Words   int
}

func (ReadRequest) op() string { return "read" }

func (r ReadRequest) payload() ([]byte, error) {
	p, err := appendTagHeader([]byte{frame.Marker}, cmdOpRead, r.Bank, r.Address)
	if err != nil {
		return nil, err
	}
	lc, err := lengthChar(r.Words)
	if err != nil {
		return nil, err
	}
	return append(p, lc), nil
}

// WriteRequest writes Data to tag memory starting at Address. Data must be
// exactly Words*2 bytes; it is sent ASCII-hex encoded.
type WriteRequest struct {
	Data    []byte
	Bank    Bank
	Address int
	Words   int
}

func (WriteRequest) op() string { return "write" }

func (r WriteRequest) payload() ([]byte, error) {
	p, err := appendTagHeader([]byte{frame.Marker}, cmdOpWrite, r.Bank, r.Address)
	if err != nil {
		return nil, err
	}
	lc, err := lengthChar(r.Words)
	if err != nil {
		return nil, err
	}
	if len(r.Data) != r.Words*WordSize {
		return nil, fmt.Errorf("%w: %d data bytes for %d words (want %d)",
			ErrEncoding, len(r.Data), r.Words, r.Words*WordSize)
	}
	p = append(p, lc, fieldSep)
	return append(p, bytecodec.BytesToHex(r.Data)...), nil
}

// IndicatorRequest drives the buzzer and LEDs for Duration units of 10ms.
type IndicatorRequest struct {
	Action   Action
	Duration int // units of 10ms, 1-255
}

func (IndicatorRequest) op() string { return "indicate" }

func (r IndicatorRequest) payload() ([]byte, error) {
	if r.Action == 0 || r.Action&^actionAllowed != 0 {
		return nil, fmt.Errorf("%w: action bits 0x%02X", ErrEncoding, byte(r.Action))
	}
	if r.Duration < 1 || r.Duration > maxDuration {
		return nil, fmt.Errorf("%w: duration %d not in 1-%d", ErrEncoding, r.Duration, maxDuration)
	}
	return []byte{frame.Marker, cmdReaderClass, byte(r.Action), byte(r.Duration)}, nil
}

// AccessPassword is a tag access password as the reader sends it: two
// 4-byte little-endian halves. Passwords are opaque to the codec.
type AccessPassword [8]byte

// PasswordFromWords packs a password from its two 32-bit words, low word
// first, each little-endian.
func PasswordFromWords(high, low uint32) AccessPassword {
	var pw AccessPassword
	lo, _ := bytecodec.PackLE(uint64(low), 4)
	hi, _ := bytecodec.PackLE(uint64(high), 4)
	copy(pw[:4], lo)
	copy(pw[4:], hi)
	return pw
}

// SetAccessPasswordRequest programs the tag's access password.
type SetAccessPasswordRequest struct {
	Password AccessPassword
}

func (SetAccessPasswordRequest) op() string { return "set access password" }

func (r SetAccessPasswordRequest) payload() ([]byte, error) {
	p := []byte{frame.Marker, cmdTagClass, cmdOpPassword}
	return append(p, r.Password[:]...), nil
}

// LockMemoryRequest applies a lock setting to the tag.
type LockMemoryRequest struct {
	Setting LockSetting
}

func (LockMemoryRequest) op() string { return "lock memory" }

func (r LockMemoryRequest) payload() ([]byte, error) {
	ascii, err := r.Setting.encodeASCII()
	if err != nil {
		return nil, err
	}
	p := []byte{frame.Marker, cmdTagClass, cmdOpLock}
	p = append(p, ascii...)
	// The device counts one NUL terminator after the setting characters;
	// without it the declared length is off by one and the command is
	// ignored.
	return append(p, 0x00), nil
}

// InventoryInitRequest starts an inventory scan; the response carries the
// number of tags in the field.
type InventoryInitRequest struct{}

func (InventoryInitRequest) op() string { return "inventory init" }

func (InventoryInitRequest) payload() ([]byte, error) {
	return []byte{frame.Marker, cmdReaderClass, cmdOpInvInit}, nil
}

// InventoryNextRequest fetches tag records after an inventory init; the
// caller issues one per tag the init response counted.
type InventoryNextRequest struct{}

func (InventoryNextRequest) op() string { return "inventory next" }

func (InventoryNextRequest) payload() ([]byte, error) {
	return []byte{frame.Marker, cmdReaderClass, cmdOpInvNext}, nil
}

// GetUSBSettingsRequest queries the reader's USB-level settings.
type GetUSBSettingsRequest struct{}

func (GetUSBSettingsRequest) op() string { return "get usb settings" }

func (GetUSBSettingsRequest) payload() ([]byte, error) {
	return []byte{frame.Marker, cmdUSBClass, 0x00, usbSubGet}, nil
}

// SetUSBSettingsRequest reconfigures the reader's USB-level settings.
type SetUSBSettingsRequest struct {
	Settings USBSettings
}

func (SetUSBSettingsRequest) op() string { return "set usb settings" }

func (r SetUSBSettingsRequest) payload() ([]byte, error) {
	return []byte{
		frame.Marker, cmdUSBClass, 0x00, usbSubSet,
		r.Settings.settingsByte(), r.Settings.KeyDelay,
	}, nil
}
