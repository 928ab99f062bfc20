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

package playtime

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/notifications"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/rs/zerolog/log"
)

// ExternalReport attributes time measured by an external reporter. It has
// no way of noticing the game exit, so its sessions only end when tracking
// is stopped.
type ExternalReport struct {
	state   *State
	store   Store
	locator ProcessLocator
	ns      chan<- models.Notification
}

func NewExternalReport(
	state *State,
	store Store,
	locator ProcessLocator,
	ns chan<- models.Notification,
) *ExternalReport {
	return &ExternalReport{
		state:   state,
		store:   store,
		locator: locator,
		ns:      ns,
	}
}

func (*ExternalReport) Mode() config.PlaytimeMode {
	return config.PlaytimeModeReport
}

func (*ExternalReport) TickInterval() time.Duration {
	return 0
}

func (*ExternalReport) Tick(context.Context, Session) (bool, error) {
	return true, nil
}

// HandleReport flushes r immediately if its process path resolves to the
// session's process. Reports about other processes are expected when the
// reporter watches several and are dropped without logging.
func (e *ExternalReport) HandleReport(ctx context.Context, sess Session, r Report) error {
	pid, found, err := e.locator.Locate(ctx, r.ProcessPath)
	if err != nil {
		log.Warn().Err(err).Str("path", r.ProcessPath).Msg("error resolving reported process")
		return nil
	}
	if !found || pid != sess.PID {
		return nil
	}

	seconds := int64(math.Round(r.Time))
	res, err := e.state.Report(ctx, sess.ID, pid, seconds)
	switch {
	case errors.Is(err, ErrPIDMismatch), errors.Is(err, ErrModeMismatch):
		return nil
	case err != nil:
		return err
	}

	// a report under half a second rounds to nothing
	if res.Flush == 0 {
		return nil
	}
	flush(ctx, e.state, e.store, sess.ID, sess.GameID, res.Flush)
	notifications.Playtime(e.ns, res.Elapsed)
	return nil
}
