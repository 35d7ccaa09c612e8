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

package frame

import "errors"

// Assembler errors.
var (
	ErrIncomplete = errors.New("response assembly incomplete")
	ErrEmptyFrame = errors.New("empty inbound frame")
	ErrDone       = errors.New("assembler already complete")
)

// State is the assembler's position in a response exchange.
type State int

// Assembler states.
const (
	AwaitingFirst State = iota
	Accumulating
	Complete
	Failed
)

// Assembler folds inbound frames into one logical response buffer.
// Frames arrive strictly in send order; there is no reordering. A full
// frame starting with ContinueIn accumulates (marker stripped); any
// other frame, or a short one, completes the response. The assembler
// is single-use: one response per instance.
type Assembler struct {
	err   error
	buf   []byte
	state State
}

// NewAssembler returns an assembler awaiting the first frame of a response.
func NewAssembler() *Assembler {
	return &Assembler{state: AwaitingFirst}
}

// State reports the current assembly state.
func (a *Assembler) State() State {
	return a.state
}

// Push consumes one inbound frame. It reports done=true once the frame
// completed the response; the caller should then stop reading from the
// transport and call Response.
func (a *Assembler) Push(pkt []byte) (done bool, err error) {
	switch a.state {
	case Complete, Failed:
		return a.state == Complete, ErrDone
	case AwaitingFirst, Accumulating:
	}

	if len(pkt) == 0 {
		a.fail(ErrEmptyFrame)
		return false, ErrEmptyFrame
	}

	if pkt[0] == ContinueIn {
		if len(pkt) == Size {
			a.buf = append(a.buf, pkt[1:]...)
			a.state = Accumulating
			return false, nil
		}
		// A short continuation frame ends the response too.
		a.buf = append(a.buf, pkt[1:]...)
		a.state = Complete
		return true, nil
	}

	// Plain length byte: the frame carries the rest of the message,
	// length byte included for a single-frame response.
	a.buf = append(a.buf, pkt...)
	a.state = Complete
	return true, nil
}

// Fail records a transport failure mid-assembly. Response will report
// the recorded error afterwards.
func (a *Assembler) Fail(err error) {
	a.fail(err)
}

func (a *Assembler) fail(err error) {
	if a.state != Complete {
		a.state = Failed
		a.err = err
	}
}

// Response returns the assembled buffer with zero padding beyond the
// declared length discarded. It errors unless the assembler is Complete.
func (a *Assembler) Response() ([]byte, error) {
	switch a.state {
	case Complete:
	case Failed:
		if a.err != nil {
			return nil, a.err
		}
		return nil, ErrIncomplete
	case AwaitingFirst, Accumulating:
		return nil, ErrIncomplete
	}

	if len(a.buf) == 0 {
		return nil, ErrIncomplete
	}

	// Byte 0 of the assembled buffer declares how many bytes follow it;
	// anything past that is report padding.
	declared := int(a.buf[0]) + 1
	if len(a.buf) > declared {
		return a.buf[:declared], nil
	}
	return a.buf, nil
}
