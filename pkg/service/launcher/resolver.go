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
	"fmt"
	"os"
)

// Target is what actually gets spawned for a game.
type Target struct {
	Exe  string
	Args []string
}

// Resolver turns a stored executable path into a direct executable and
// its arguments, e.g. by reading a shortcut file.
type Resolver interface {
	Resolve(ctx context.Context, exePath string) (Target, error)
}

// PassthroughResolver launches the stored path as is.
type PassthroughResolver struct{}

func (PassthroughResolver) Resolve(_ context.Context, exePath string) (Target, error) {
	if exePath == "" {
		return Target{}, ErrNoExecutable
	}
	if _, err := os.Stat(exePath); err != nil {
		return Target{}, fmt.Errorf("executable not available: %w", err)
	}
	return Target{Exe: exePath}, nil
}
