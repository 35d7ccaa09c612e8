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

// Package frame implements the fixed-size packet layer of the UHF reader
// protocol: 64-byte HID reports whose first byte is either the payload
// length or a continuation marker. Outbound messages are chunked into one
// or more frames; inbound frames are reassembled into one logical response.
package frame

// Size is the fixed packet size. Outbound frames are always exactly this
// long; inbound frames may be shorter only as the final frame of a response.
const Size = 64

// Byte-0 marker values.
const (
	// Marker is the protocol marker that starts every command payload.
	Marker = 0x02

	// ContinueOut flags an outbound frame with more frames to follow.
	ContinueOut = 0x82
	// FinalOut flags the last frame of a multi-frame outbound message.
	FinalOut = 0x02

	// ContinueIn flags an inbound frame with more data pending.
	ContinueIn = 0x3F
)

// MaxPayload is the largest logical payload a single length byte can declare.
const MaxPayload = 0xFF
