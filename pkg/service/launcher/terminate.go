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

package launcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/platforms/shared/proctracker"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// DefaultTerminateTimeout is how long a terminated game gets to exit before
// it is killed.
const DefaultTerminateTimeout = 5 * time.Second

type Terminator interface {
	Terminate(ctx context.Context, pid int32) error
}

// ProcessTerminator asks the process to exit, waits for it, and kills it
// if it is still around after Timeout.
type ProcessTerminator struct {
	Timeout time.Duration
}

func (t ProcessTerminator) Terminate(ctx context.Context, pid int32) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	if err := proc.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTerminateTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := proctracker.Wait(waitCtx, pid); err == nil {
		return nil
	}

	log.Warn().Int32("pid", pid).Msg("game did not exit after terminate, killing")
	if err := proc.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	return nil
}
