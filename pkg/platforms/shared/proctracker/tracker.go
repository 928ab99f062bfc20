// Tadoku
// Copyright (c) 2025 The Tadoku Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Tadoku.
//
// Tadoku is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Tadoku is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Tadoku.  If not, see <http://www.gnu.org/licenses/>.

// Package proctracker waits for a process to exit. On Linux 5.3+ it uses
// pidfd_open and falls back to polling elsewhere.
package proctracker

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// PollInterval is how often the polling fallback checks the process table.
const PollInterval = 250 * time.Millisecond

// Wait blocks until pid is gone or ctx is done. A pid that does not exist
// returns nil immediately.
func Wait(ctx context.Context, pid int32) error {
	return wait(ctx, pid)
}

func waitPoll(ctx context.Context, pid int32) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		exists, err := process.PidExistsWithContext(ctx, pid)
		if err != nil {
			return fmt.Errorf("check pid %d: %w", pid, err)
		}
		if !exists {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for pid %d: %w", pid, ctx.Err())
		case <-ticker.C:
		}
	}
}
