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
	"os"
	"strings"
)

// debugEnabled controls whether debug logging is active.
var debugEnabled = false

func init() {
	if os.Getenv("UHF_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// Debugf prints debug information when debug mode is enabled.
func Debugf(format string, args ...any) {
	if debugEnabled {
		_, _ = fmt.Printf("DEBUG: %s\n", fmt.Sprintf(format, args...))
	}
}

// SetDebugEnabled allows programmatic control of debug logging.
// Useful for testing or application-controlled debug modes.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// formatHexBytes formats a byte slice as space-separated hex values,
// truncating long buffers for readability.
func formatHexBytes(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	limit := len(data)
	truncated := false
	if limit > 32 {
		limit = 32
		truncated = true
	}
	parts := make([]string, limit)
	for i := range limit {
		parts[i] = fmt.Sprintf("%02X", data[i])
	}
	s := strings.Join(parts, " ")
	if truncated {
		s += fmt.Sprintf(" ... (%d bytes total)", len(data))
	}
	return s
}
