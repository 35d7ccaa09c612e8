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

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLarge indicates a command payload longer than a single
// length byte can declare.
var ErrPayloadTooLarge = errors.New("payload too large for length byte")

// Chunk builds the outbound frame sequence for a command payload. The
// logical message is the payload length followed by the payload itself.
// Messages that fit in one packet become a single zero-padded frame.
// Longer messages are split across frames prefixed with ContinueOut,
// the last with FinalOut.
//
// No documented command currently needs more than one frame; the split
// path follows the documented framing rule but is untested against
// real hardware.
func Chunk(payload []byte) ([][]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	logical := make([]byte, 0, len(payload)+1)
	logical = append(logical, byte(len(payload)))
	logical = append(logical, payload...)

	if len(logical) <= Size {
		out := make([]byte, Size)
		copy(out, logical)
		return [][]byte{out}, nil
	}

	var frames [][]byte
	for off := 0; off < len(logical); off += Size - 1 {
		end := off + Size - 1
		marker := byte(ContinueOut)
		if end >= len(logical) {
			end = len(logical)
			marker = FinalOut
		}
		out := make([]byte, Size)
		out[0] = marker
		copy(out[1:], logical[off:end])
		frames = append(frames, out)
	}
	return frames, nil
}
