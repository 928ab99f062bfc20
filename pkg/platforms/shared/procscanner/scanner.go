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

// Package procscanner finds the OS process belonging to a launched game by
// scanning the live process table.
package procscanner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

var ErrProcessNotFound = errors.New("couldn't find game process")

const (
	// LocateAttempts and LocateInterval bound how long a launched game may
	// take to show up in the process table.
	LocateAttempts = 60
	LocateInterval = time.Second
)

// ProcessInfo is the part of a process table entry used for matching.
type ProcessInfo struct {
	Exe     string
	Cmdline string
	PID     int32
}

// Matcher decides whether a process is the one being looked for.
type Matcher interface {
	Match(proc ProcessInfo) bool
}

type MatcherFunc func(proc ProcessInfo) bool

func (f MatcherFunc) Match(proc ProcessInfo) bool {
	return f(proc)
}

// Source is a snapshot of the OS process table.
type Source interface {
	Processes(ctx context.Context) ([]ProcessInfo, error)
	Exists(ctx context.Context, pid int32) (bool, error)
}

// GopsutilSource reads the process table with gopsutil. Processes whose
// executable can't be read, usually because they belong to another user,
// are still returned so their command line can be matched.
type GopsutilSource struct{}

func (GopsutilSource) Processes(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		info := ProcessInfo{PID: p.Pid}
		if exe, err := p.ExeWithContext(ctx); err == nil {
			info.Exe = exe
		}
		if args, err := p.CmdlineSliceWithContext(ctx); err == nil {
			info.Cmdline = strings.Join(args, " ")
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (GopsutilSource) Exists(ctx context.Context, pid int32) (bool, error) {
	exists, err := process.PidExistsWithContext(ctx, pid)
	if err != nil {
		return false, fmt.Errorf("failed to check pid %d: %w", pid, err)
	}
	return exists, nil
}

// Locator resolves an executable path to the PID of a running process.
type Locator struct {
	source Source
	// matchCmdline also accepts processes whose command line contains the
	// path. Off on Windows, where the executable path is reliable.
	matchCmdline bool
}

func NewLocator(source Source) *Locator {
	return &Locator{
		source:       source,
		matchCmdline: runtime.GOOS != "windows",
	}
}

// WithCmdlineMatch overrides the platform default for command line matching.
func (l *Locator) WithCmdlineMatch(enabled bool) *Locator {
	l.matchCmdline = enabled
	return l
}

func (l *Locator) matcher(path string) Matcher {
	if l.matchCmdline {
		return NewOrMatcher(NewExeMatcher(path), NewCmdlineContainsMatcher(path))
	}
	return NewExeMatcher(path)
}

// Locate scans the process table once and returns the first process that
// matches path.
func (l *Locator) Locate(ctx context.Context, path string) (int32, bool, error) {
	procs, err := l.source.Processes(ctx)
	if err != nil {
		return 0, false, err
	}

	m := l.matcher(path)
	for _, proc := range procs {
		if m.Match(proc) {
			return proc.PID, true, nil
		}
	}
	return 0, false, nil
}

// Exists reports whether pid is still in the process table.
func (l *Locator) Exists(ctx context.Context, pid int32) (bool, error) {
	return l.source.Exists(ctx, pid)
}

// LocateWithRetry probes for path up to attempts times, waiting interval
// between probes. Scan errors count as a failed probe.
func (l *Locator) LocateWithRetry(
	ctx context.Context,
	clock clockwork.Clock,
	path string,
	attempts int,
	interval time.Duration,
) (int32, error) {
	for attempt := 1; attempt <= attempts; attempt++ {
		pid, found, err := l.Locate(ctx, path)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("attempt", attempt).Msg("process scan failed")
		case found:
			log.Debug().Int32("pid", pid).Int("attempt", attempt).Str("path", path).
				Msg("located game process")
			return pid, nil
		}

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("locate cancelled: %w", ctx.Err())
		case <-clock.After(interval):
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, path)
}
