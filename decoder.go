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

// Assembled response layout constants.
const (
	respStatusOff = 3 // status byte for single-status operations
	respOpOff     = 4 // echoed operation letter for tag commands
	respDataOff   = 5 // first payload byte (read data, inventory records)

	// invNextHeader is the class byte of inventory follow-up responses.
	invNextHeader = 0xA0
)

// ackTrailer is the literal the reader appends to successful
// acknowledgement-only responses.
var ackTrailer = []byte{'<', 'O', 'K'}

// TagRecord is one tag reported by an inventory follow-up query.
type TagRecord struct {
	EPC       []byte
	ReadCount byte
}

func (r TagRecord) String() string {
	return fmt.Sprintf("%X (reads=%d)", r.EPC, r.ReadCount)
}

// checkHeader validates the marker and class bytes shared by all decoded
// responses, then the status byte. A non-zero status is returned as a
// DeviceError before any payload interpretation.
func checkHeader(buf []byte, op string, class byte) error {
	if len(buf) <= respStatusOff {
		return fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	if buf[1] != frame.Marker || buf[2] != class {
		return fmt.Errorf("%s: %w: header % X", op, ErrProtocolViolation, buf[1:3])
	}
	if buf[respStatusOff] != 0x00 {
		return &DeviceError{Op: op, Code: uint16(buf[respStatusOff])}
	}
	return nil
}

// decodeAck handles the acknowledgement-only operations (write, set access
// password, lock memory): a success status must be followed by the echoed
// operation letter and the "<OK" trailer.
func decodeAck(buf []byte, op string, opLetter byte) error {
	if err := checkHeader(buf, op, cmdTagClass); err != nil {
		return err
	}
	if len(buf) < respDataOff+len(ackTrailer) {
		return fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	if buf[respOpOff] != opLetter {
		return fmt.Errorf("%s: %w: echoed op 0x%02X", op, ErrProtocolViolation, buf[respOpOff])
	}
	for i, c := range ackTrailer {
		if buf[respDataOff+i] != c {
			return fmt.Errorf("%s: %w: missing OK trailer (% X)",
				op, ErrProtocolViolation, buf[respDataOff:respDataOff+len(ackTrailer)])
		}
	}
	return nil
}

// DecodeReadResponse extracts the data bytes of a read response. The
// declared length (byte 0) fixes how many ASCII-hex characters follow the
// five-byte header; an odd count is malformed.
func DecodeReadResponse(buf []byte) ([]byte, error) {
	const op = "read"
	if err := checkHeader(buf, op, cmdTagClass); err != nil {
		return nil, err
	}
	if len(buf) <= respOpOff {
		return nil, fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	if buf[respOpOff] != cmdOpRead {
		return nil, fmt.Errorf("%s: %w: echoed op 0x%02X", op, ErrProtocolViolation, buf[respOpOff])
	}

	hexLen := int(buf[0]) - (respDataOff - 1)
	if hexLen < 0 {
		return nil, fmt.Errorf("%s: %w: declared length %d", op, ErrProtocolViolation, buf[0])
	}
	if hexLen%2 != 0 {
		return nil, fmt.Errorf("%s: %w: odd data length %d", op, ErrMalformedHex, hexLen)
	}
	if len(buf) < respDataOff+hexLen {
		return nil, fmt.Errorf("%s: %w: %d of %d data characters",
			op, ErrIncompleteResponse, len(buf)-respDataOff, hexLen)
	}

	data, err := bytecodec.HexToBytes(buf[respDataOff : respDataOff+hexLen])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// DecodeWriteResponse checks a write acknowledgement.
func DecodeWriteResponse(buf []byte) error {
	return decodeAck(buf, "write", cmdOpWrite)
}

// DecodeSetAccessPasswordResponse checks a set-access-password
// acknowledgement.
func DecodeSetAccessPasswordResponse(buf []byte) error {
	return decodeAck(buf, "set access password", cmdOpPassword)
}

// DecodeLockMemoryResponse checks a lock-memory acknowledgement.
func DecodeLockMemoryResponse(buf []byte) error {
	return decodeAck(buf, "lock memory", cmdOpLock)
}

// DecodeIndicatorResponse checks a buzzer/LED response. Unlike the tag
// commands this operation reports a two-byte big-endian status word and
// carries no OK trailer.
func DecodeIndicatorResponse(buf []byte) error {
	const op = "indicate"
	if len(buf) < respStatusOff+2 {
		return fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	if buf[1] != frame.Marker || buf[2] != cmdReaderClass {
		return fmt.Errorf("%s: %w: header % X", op, ErrProtocolViolation, buf[1:3])
	}
	code := uint16(bytecodec.UnpackBE(buf[respStatusOff : respStatusOff+2]))
	if code != 0 {
		return &DeviceError{Op: op, Code: code}
	}
	return nil
}

// DecodeInventoryInitResponse returns the number of tags the reader found
// in its field. Zero means no follow-up queries should be issued.
func DecodeInventoryInitResponse(buf []byte) (int, error) {
	const op = "inventory init"
	if err := checkHeader(buf, op, cmdReaderClass); err != nil {
		return 0, err
	}
	if len(buf) <= respOpOff {
		return 0, fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	return int(buf[respOpOff]), nil
}

// DecodeInventoryNextResponse walks the tag records of an inventory
// follow-up response. Each record is a length byte (EPC length + 1), a
// read count, and the EPC itself. A buffer that runs out before the
// declared record count is a truncated inventory.
func DecodeInventoryNextResponse(buf []byte) ([]TagRecord, error) {
	const op = "inventory next"
	if len(buf) < respDataOff {
		return nil, fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	if buf[1] != frame.Marker {
		return nil, fmt.Errorf("%s: %w: header % X", op, ErrProtocolViolation, buf[1:3])
	}
	// A failed follow-up comes back as a short reader-class status frame
	// instead of a record frame.
	if buf[2] == cmdReaderClass {
		if buf[respStatusOff] != 0x00 {
			return nil, &DeviceError{Op: op, Code: uint16(buf[respStatusOff])}
		}
		return nil, fmt.Errorf("%s: %w: header % X", op, ErrProtocolViolation, buf[1:3])
	}
	if buf[2] != invNextHeader {
		return nil, fmt.Errorf("%s: %w: header % X", op, ErrProtocolViolation, buf[1:3])
	}

	count := int(bytecodec.UnpackBE(buf[3:5]))
	records := make([]TagRecord, 0, count)
	off := respDataOff
	for len(records) < count {
		if off+2 > len(buf) {
			return nil, fmt.Errorf("%s: %w: %d of %d records",
				op, ErrTruncatedInventory, len(records), count)
		}
		recLen := int(buf[off])
		if recLen < 1 {
			return nil, fmt.Errorf("%s: %w: record length 0", op, ErrProtocolViolation)
		}
		end := off + recLen + 1
		if end > len(buf) {
			return nil, fmt.Errorf("%s: %w: %d of %d records",
				op, ErrTruncatedInventory, len(records), count)
		}
		epc := make([]byte, recLen-1)
		copy(epc, buf[off+2:end])
		records = append(records, TagRecord{EPC: epc, ReadCount: buf[off+1]})
		off = end
	}
	return records, nil
}

// usbHeaderLen is the fixed header preceding the settings and key-delay
// bytes of a USB settings response.
const usbHeaderLen = 6

// decodeUSBSettingsResponse decodes a get or set USB settings response;
// both echo the effective settings.
func decodeUSBSettingsResponse(buf []byte, op string, sub byte) (USBSettings, error) {
	if err := checkHeader(buf, op, cmdUSBClass); err != nil {
		return USBSettings{}, err
	}
	if len(buf) < usbHeaderLen+2 {
		return USBSettings{}, fmt.Errorf("%s: %w: %d bytes", op, ErrIncompleteResponse, len(buf))
	}
	if buf[4] != 0x00 || buf[5] != sub {
		return USBSettings{}, fmt.Errorf("%s: %w: header % X", op, ErrProtocolViolation, buf[4:6])
	}

	settings, err := decodeUSBSettingsByte(buf[usbHeaderLen])
	if err != nil {
		return USBSettings{}, fmt.Errorf("%s: %w", op, err)
	}
	settings.KeyDelay = buf[usbHeaderLen+1]
	return settings, nil
}

// DecodeGetUSBSettingsResponse decodes a get-USB-settings response.
func DecodeGetUSBSettingsResponse(buf []byte) (USBSettings, error) {
	return decodeUSBSettingsResponse(buf, "get usb settings", usbSubGet)
}

// DecodeSetUSBSettingsResponse decodes a set-USB-settings response.
func DecodeSetUSBSettingsResponse(buf []byte) (USBSettings, error) {
	return decodeUSBSettingsResponse(buf, "set usb settings", usbSubSet)
}
