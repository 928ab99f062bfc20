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

// Package command starts external programs behind an interface so launch
// logic can be tested without spawning real processes.
package command

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// StartOptions configures how a program is started.
type StartOptions struct {
	// Dir is the working directory of the new process. Empty means the
	// current directory.
	Dir string
	// HideWindow prevents a console window from appearing (Windows-only).
	HideWindow bool
}

// Executor starts programs that outlive the request that started them.
type Executor interface {
	// Spawn starts name with args and returns the PID of the new process.
	// It does not wait for the process to exit.
	Spawn(opts StartOptions, name string, args ...string) (int, error)
}

// RealExecutor starts real processes with os/exec.
type RealExecutor struct{}

// Spawn starts the process detached from the caller's context, then reaps
// it in the background so an exited child does not stay in the process
// table as a zombie.
func (*RealExecutor) Spawn(opts StartOptions, name string, args ...string) (int, error) {
	//nolint:gosec // launching user configured game executables is the point
	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	cmd.SysProcAttr = sysProcAttr(opts)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", name, err)
	}

	pid := cmd.Process.Pid
	go func() {
		err := cmd.Wait()
		log.Debug().Err(err).Int("pid", pid).Msg("spawned process exited")
	}()

	return pid, nil
}
