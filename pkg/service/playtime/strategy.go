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

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Report is one time delta pushed by an external reporter.
type Report struct {
	ProcessPath string  `json:"process_path"`
	Time        float64 `json:"time"`
}

// Strategy decides when time is attributed to a session. The tracker owns
// the loop and calls Tick every TickInterval (never, if zero) and
// HandleReport for every report received while the session is active. All
// calls for one session happen on the same goroutine.
type Strategy interface {
	Mode() config.PlaytimeMode
	TickInterval() time.Duration
	// Tick returns false once the tracked process is gone.
	Tick(ctx context.Context, sess Session) (bool, error)
	HandleReport(ctx context.Context, sess Session, r Report) error
}

// Store is the persistence a strategy needs. Every write is keyed by game
// ID and is a read-modify-write inside the store.
type Store interface {
	UpdatePlaytime(id string, seconds int64) error
	UpdateLastPlayed(id string) error
	SetFirstPlayed(id string) error
}

// ProcessLocator is the process table access a strategy needs.
type ProcessLocator interface {
	Locate(ctx context.Context, path string) (int32, bool, error)
	Exists(ctx context.Context, pid int32) (bool, error)
}

// flush writes seconds for sess, handing them back to the state on failure
// so the next flush retries them.
func flush(ctx context.Context, state *State, store Store, sessID uuid.UUID, gameID string, seconds int64) {
	if err := store.UpdatePlaytime(gameID, seconds); err != nil {
		log.Error().Err(err).Str("gameID", gameID).Int64("seconds", seconds).
			Msg("error flushing playtime, will retry")
		if seconds == 0 {
			return
		}
		if err := state.Restore(ctx, sessID, seconds); err != nil {
			log.Error().Err(err).Str("gameID", gameID).Msg("error restoring unflushed playtime")
		}
		return
	}
	log.Debug().Str("gameID", gameID).Int64("seconds", seconds).Msg("flushed playtime")
}
