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

// Package readersim provides a simulated UHF reader behind the
// uhf.Transport interface. It parses command frames with its own
// independent implementation of the wire format and answers from a
// configurable tag population, so integration tests exercise the real
// encoder and decoder against byte-accurate device behavior.
package readersim

import (
	"fmt"
	"sync"
	"time"

	uhf "github.com/ZaparooProject/go-uhf"
)

const frameSize = 64

// Tag is one simulated tag in the reader's field.
type Tag struct {
	// Banks maps bank number (1-4) to that bank's memory image.
	Banks     map[int][]byte
	EPC       []byte
	ReadCount byte
}

// Simulator implements uhf.Transport as a virtual reader.
type Simulator struct {
	// ForceStatus, when non-zero, is reported as the status byte of the
	// next status-carrying response and then cleared.
	forceStatus byte

	tags     []Tag
	nextTag  int
	settings byte
	keyDelay byte

	pending [][]byte
	mu      sync.Mutex
	closed  bool

	// TruncateInventory drops the tag records from follow-up responses
	// while keeping the declared count, to simulate a short read.
	TruncateInventory bool
}

// New creates a simulator with the given tags in the field.
func New(tags ...Tag) *Simulator {
	return &Simulator{tags: tags, keyDelay: 2}
}

// ForceStatus makes the next response report a device error code.
func (s *Simulator) ForceStatus(code byte) {
	s.mu.Lock()
	s.forceStatus = code
	s.mu.Unlock()
}

// Send implements uhf.Transport by interpreting the command frame and
// queueing the reply frames.
func (s *Simulator) Send(pkt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return uhf.NewTransportError("Send", "sim", uhf.ErrTransportClosed, uhf.ErrorTypePermanent)
	}
	if len(pkt) != frameSize {
		return uhf.NewTransportError("Send", "sim",
			fmt.Errorf("frame must be %d bytes, got %d", frameSize, len(pkt)), uhf.ErrorTypePermanent)
	}

	declared := int(pkt[0])
	if declared < 2 || declared >= frameSize || pkt[1] != 0x02 {
		return nil // not a command the device understands; it stays silent
	}
	cmd := pkt[1 : declared+1]
	s.queueLogical(s.dispatch(cmd))
	return nil
}

// Receive implements uhf.Transport, returning the next queued frame.
func (s *Simulator) Receive(_ time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, uhf.NewTransportError("Receive", "sim", uhf.ErrTransportClosed, uhf.ErrorTypePermanent)
	}
	if len(s.pending) == 0 {
		return nil, uhf.NewTimeoutError("Receive", "sim")
	}
	pkt := s.pending[0]
	s.pending = s.pending[1:]
	return pkt, nil
}

// Close implements uhf.Transport.
func (s *Simulator) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// IsConnected implements uhf.Transport.
func (s *Simulator) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Type implements uhf.Transport.
func (*Simulator) Type() uhf.TransportType {
	return uhf.TransportMock
}

// queueLogical splits a logical response into inbound frames: one padded
// frame when it fits, otherwise 0x3F continuation frames with a short
// final frame, exactly as the hardware streams long read responses.
func (s *Simulator) queueLogical(logical []byte) {
	if logical == nil {
		return
	}
	if len(logical) <= frameSize {
		full := make([]byte, frameSize)
		copy(full, logical)
		s.pending = append(s.pending, full)
		return
	}
	rest := logical
	for len(rest)+1 > frameSize {
		pkt := make([]byte, frameSize)
		pkt[0] = 0x3F
		copy(pkt[1:], rest[:frameSize-1])
		rest = rest[frameSize-1:]
		s.pending = append(s.pending, pkt)
	}
	final := make([]byte, len(rest))
	copy(final, rest)
	s.pending = append(s.pending, final)
}

func (s *Simulator) status() byte {
	st := s.forceStatus
	s.forceStatus = 0
	return st
}

func (s *Simulator) dispatch(cmd []byte) []byte {
	switch cmd[1] {
	case 0x41: // tag memory class
		return s.tagCommand(cmd)
	case 0x55:
		if len(cmd) == 3 && (cmd[2] == 0x80 || cmd[2] == 0x91) {
			return s.inventoryCommand(cmd[2])
		}
		return s.indicatorCommand()
	case 0x92:
		return s.usbCommand(cmd)
	default:
		return nil
	}
}

func response(body ...byte) []byte {
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(len(body)))
	return append(out, body...)
}

func (s *Simulator) tagCommand(cmd []byte) []byte {
	if len(cmd) < 3 {
		return nil
	}
	op := cmd[2]
	if st := s.status(); st != 0 {
		return response(0x02, 0x41, st, op)
	}

	switch op {
	case 'R':
		bank, addr, words, _, ok := parseTagArgs(cmd[3:])
		if !ok || len(s.tags) == 0 {
			return response(0x02, 0x41, 0x06, op)
		}
		mem := s.tags[0].Banks[bank]
		start := addr * 2
		end := start + words*2
		if start > len(mem) {
			start = len(mem)
		}
		if end > len(mem) {
			end = len(mem)
		}
		body := []byte{0x02, 0x41, 0x00, 'R'}
		for _, b := range mem[start:end] {
			body = append(body, hexChar(b>>4), hexChar(b&0xF))
		}
		return response(body...)
	case 'W':
		bank, addr, _, data, ok := parseTagArgs(cmd[3:])
		if !ok || len(s.tags) == 0 {
			return response(0x02, 0x41, 0x06, op)
		}
		mem := s.tags[0].Banks[bank]
		for i, b := range data {
			if pos := addr*2 + i; pos < len(mem) {
				mem[pos] = b
			}
		}
		return response(0x02, 0x41, 0x00, 'W', '<', 'O', 'K')
	case 'S', 'L':
		return response(0x02, 0x41, 0x00, op, '<', 'O', 'K')
	default:
		return nil
	}
}

func (s *Simulator) indicatorCommand() []byte {
	if st := s.status(); st != 0 {
		return response(0x02, 0x55, 0x00, st)
	}
	return response(0x02, 0x55, 0x00, 0x00)
}

func (s *Simulator) inventoryCommand(op byte) []byte {
	if op == 0x80 {
		s.nextTag = 0
		if st := s.status(); st != 0 {
			return response(0x02, 0x55, st, 0x00)
		}
		return response(0x02, 0x55, 0x00, byte(len(s.tags)))
	}

	// Follow-up failures are short 0x55-class status frames.
	if st := s.status(); st != 0 {
		return response(0x02, 0x55, st, 0x00)
	}

	// Follow-up: one record per query, count 1.
	body := []byte{0x02, 0xA0, 0x00, 0x01}
	if s.TruncateInventory {
		return response(body...)
	}
	if s.nextTag >= len(s.tags) {
		return response(0x02, 0xA0, 0x00, 0x00)
	}
	tag := s.tags[s.nextTag]
	s.nextTag++
	body = append(body, byte(len(tag.EPC)+1), tag.ReadCount)
	body = append(body, tag.EPC...)
	return response(body...)
}

func (s *Simulator) usbCommand(cmd []byte) []byte {
	if len(cmd) < 4 {
		return nil
	}
	sub := cmd[3]
	if sub == 0x02 && len(cmd) >= 6 {
		s.settings = cmd[4]
		s.keyDelay = cmd[5]
	}
	if st := s.status(); st != 0 {
		return response(0x02, 0x92, st, 0x00, sub, 0x00, 0x00)
	}
	return response(0x02, 0x92, 0x00, 0x00, sub, s.settings, s.keyDelay)
}

// parseTagArgs parses "bank,addr,words[,hexdata]" as ASCII fields.
func parseTagArgs(args []byte) (bank, addr, words int, data []byte, ok bool) {
	fields := split(args, ',')
	if len(fields) < 3 {
		return 0, 0, 0, nil, false
	}
	if len(fields[0]) != 1 || fields[0][0] < '1' || fields[0][0] > '4' {
		return 0, 0, 0, nil, false
	}
	bank = int(fields[0][0] - '0')

	addr, ok = parseHex(fields[1])
	if !ok {
		return 0, 0, 0, nil, false
	}
	words, ok = parseHex(fields[2])
	if !ok {
		return 0, 0, 0, nil, false
	}

	if len(fields) >= 4 {
		raw := fields[3]
		if len(raw)%2 != 0 {
			return 0, 0, 0, nil, false
		}
		data = make([]byte, len(raw)/2)
		for i := range data {
			hi, okH := hexVal(raw[2*i])
			lo, okL := hexVal(raw[2*i+1])
			if !okH || !okL {
				return 0, 0, 0, nil, false
			}
			data[i] = hi<<4 | lo
		}
	}
	return bank, addr, words, data, true
}

func split(b []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i, c := range b {
		if c == sep {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	return append(out, b[start:])
}

func parseHex(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	v := 0
	for _, c := range b {
		n, ok := hexVal(c)
		if !ok {
			return 0, false
		}
		v = v<<4 | int(n)
	}
	return v, true
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

func hexChar(v byte) byte {
	if v >= 10 {
		return v - 10 + 'A'
	}
	return v + '0'
}
