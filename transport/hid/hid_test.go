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

package hid

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestInterrupted(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "wrapped EINTR",
			err:  fmt.Errorf("hid_read_timeout: %w", syscall.EINTR),
			want: true,
		},
		{
			name: "hidapi message text",
			err:  errors.New("hid_read_timeout: Interrupted system call"),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("hid_read_timeout: No such device"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := interrupted(tt.err); got != tt.want {
				t.Errorf("interrupted(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
