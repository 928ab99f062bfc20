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

package proctracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

func wait(ctx context.Context, pid int32) error {
	fd, err := unix.PidfdOpen(int(pid), 0)
	if errors.Is(err, unix.ESRCH) {
		return nil
	} else if err != nil {
		log.Debug().Err(err).Int32("pid", pid).Msg("pidfd_open failed, using poll fallback")
		return waitPoll(ctx, pid)
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	pollFds := []unix.PollFd{
		{Fd: int32(fd), Events: unix.POLLIN}, //nolint:gosec // pidfd is always small
	}
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for pid %d: %w", pid, ctx.Err())
		default:
		}

		// short timeout so cancellation is noticed
		n, err := unix.Poll(pollFds, 100)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll pidfd for %d: %w", pid, err)
		}
		if n > 0 && pollFds[0].Revents&unix.POLLIN != 0 {
			return nil
		}
	}
}
