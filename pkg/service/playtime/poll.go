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
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/notifications"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/platforms/shared/foreground"
	"github.com/rs/zerolog/log"
)

const PollInterval = time.Second

// ForegroundPoll checks the tracked process once per tick and attributes a
// second whenever it owns the foreground window.
type ForegroundPoll struct {
	state   *State
	store   Store
	procs   ProcessLocator
	checker foreground.Checker
	ns      chan<- models.Notification
}

func NewForegroundPoll(
	state *State,
	store Store,
	procs ProcessLocator,
	checker foreground.Checker,
	ns chan<- models.Notification,
) *ForegroundPoll {
	if checker == nil {
		checker = foreground.AlwaysForeground{}
	}
	return &ForegroundPoll{
		state:   state,
		store:   store,
		procs:   procs,
		checker: checker,
		ns:      ns,
	}
}

func (*ForegroundPoll) Mode() config.PlaytimeMode {
	return config.PlaytimeModeForeground
}

func (*ForegroundPoll) TickInterval() time.Duration {
	return PollInterval
}

func (p *ForegroundPoll) Tick(ctx context.Context, sess Session) (bool, error) {
	alive, err := p.procs.Exists(ctx, sess.PID)
	if err != nil {
		// unknown is not gone, try again next tick
		log.Warn().Err(err).Int32("pid", sess.PID).Msg("error checking game process")
		return true, nil
	}
	if !alive {
		log.Info().Int32("pid", sess.PID).Str("gameID", sess.GameID).Msg("game process exited")
		return false, nil
	}

	fg, err := p.checker.IsForeground(sess.PID)
	if err != nil {
		log.Debug().Err(err).Int32("pid", sess.PID).Msg("foreground check failed, counting as paused")
		fg = false
	}

	res, err := p.state.Tick(ctx, sess.ID, fg)
	if err != nil {
		return false, err
	}

	if !fg {
		notifications.PlaytimePaused(p.ns)
		return true, nil
	}

	if res.Flush > 0 {
		flush(ctx, p.state, p.store, sess.ID, sess.GameID, res.Flush)
	}
	notifications.Playtime(p.ns, res.Elapsed)
	return true, nil
}

// HandleReport ignores reports; this mode measures time itself.
func (*ForegroundPoll) HandleReport(context.Context, Session, Report) error {
	return nil
}
