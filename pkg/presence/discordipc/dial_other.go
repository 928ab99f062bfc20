//go:build !windows

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

package discordipc

import (
	"context"
	"fmt"
	"net"
	"path/filepath"

	"github.com/Eroge-Abyss/tadoku/pkg/helpers"
)

// sandboxed clients put their socket in a subdirectory of the runtime dir
var socketSubdirs = []string{"", "app/com.discordapp.Discord", "snap.discord"}

// Dial connects to the first discord-ipc-N socket found.
func Dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	for _, dir := range helpers.RuntimeDirs() {
		for _, sub := range socketSubdirs {
			for n := range 10 {
				path := filepath.Join(dir, sub, fmt.Sprintf("discord-ipc-%d", n))
				conn, err := d.DialContext(ctx, "unix", path)
				if err == nil {
					return conn, nil
				}
			}
		}
	}
	return nil, ErrNotRunning
}
