//go:build deadlock

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

// Package syncutil holds the mutex types used across the service. Building
// with -tags=deadlock swaps them for go-deadlock instrumented versions.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock instrumentation is compiled in.
const DeadlockEnabled = true

// LockTimeout is how long a lock may be waited on before go-deadlock reports
// it. Locks in this codebase are never held across I/O, so anything close to
// this is a bug.
const LockTimeout = 10 * time.Second

func init() {
	deadlock.Opts.DeadlockTimeout = LockTimeout
}

// Mutex is a go-deadlock mutex in instrumented builds.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a go-deadlock reader/writer mutex in instrumented builds.
type RWMutex struct {
	deadlock.RWMutex
}
