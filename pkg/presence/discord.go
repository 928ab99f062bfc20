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

package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/syncutil"
	"github.com/Eroge-Abyss/tadoku/pkg/presence/discordipc"
	"github.com/rs/zerolog/log"
)

const (
	appIcon      = "app_icon"
	appName      = "Tadoku"
	idleState    = "In Menus"
	playingLabel = "Playing"
	detailsLabel = "Game Details"
	detailsURL   = "https://vndb.org/%s"

	ipcTimeout = 5 * time.Second
)

// ActivityClient is the part of the Discord IPC client the adapter uses.
type ActivityClient interface {
	SetActivity(ctx context.Context, activity *discordipc.Activity) error
	ClearActivity(ctx context.Context) error
	Close() error
}

// Discord shows the session as Discord rich presence.
type Discord struct {
	client ActivityClient
	mode   config.PresenceMode
	mu     syncutil.Mutex
}

// NewDiscord creates the adapter and applies the idle state for mode. A
// failure to reach Discord is logged; the client reconnects on the next
// update.
func NewDiscord(client ActivityClient, mode config.PresenceMode) *Discord {
	d := &Discord{
		client: client,
		mode:   mode,
	}
	if err := d.Reset(); err != nil {
		log.Warn().Err(err).Msg("error setting initial discord presence")
	}
	return d
}

func idleActivity() *discordipc.Activity {
	return &discordipc.Activity{
		State: idleState,
		Assets: &discordipc.Assets{
			LargeImage: appIcon,
			LargeText:  appName,
		},
	}
}

func gameActivity(id Identity, suppressed bool) *discordipc.Activity {
	activity := &discordipc.Activity{
		State:   id.Title,
		Details: playingLabel,
		Timestamps: &discordipc.Timestamps{
			Start: id.Started.Unix(),
		},
	}
	// nothing identifying the game may leave the machine when suppressed
	if suppressed {
		activity.State = appName
		activity.Assets = &discordipc.Assets{
			LargeImage: appIcon,
			LargeText:  appName,
		}
		return activity
	}
	activity.Assets = &discordipc.Assets{
		LargeImage: id.ImageURL,
		LargeText:  id.Title,
	}
	activity.Buttons = []discordipc.Button{{
		Label: detailsLabel,
		URL:   fmt.Sprintf(detailsURL, id.GameID),
	}}
	return activity
}

func (d *Discord) currentMode() config.PresenceMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *Discord) Set(id Identity, suppressed bool) error {
	if d.currentMode() == config.PresenceModeNone {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ipcTimeout)
	defer cancel()
	if err := d.client.SetActivity(ctx, gameActivity(id, suppressed)); err != nil {
		return fmt.Errorf("failed to set discord activity: %w", err)
	}
	log.Debug().Str("gameID", id.GameID).Bool("suppressed", suppressed).Msg("set discord activity")
	return nil
}

func (d *Discord) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), ipcTimeout)
	defer cancel()
	if d.currentMode() == config.PresenceModeAll {
		if err := d.client.SetActivity(ctx, idleActivity()); err != nil {
			return fmt.Errorf("failed to set idle discord activity: %w", err)
		}
		return nil
	}
	if err := d.client.ClearActivity(ctx); err != nil {
		return fmt.Errorf("failed to clear discord activity: %w", err)
	}
	return nil
}

func (d *Discord) SetMode(mode config.PresenceMode) error {
	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()
	log.Info().Str("mode", string(mode)).Msg("presence mode changed")
	return d.Reset()
}

func (d *Discord) Close() error {
	if err := d.client.Close(); err != nil {
		return fmt.Errorf("failed to close discord client: %w", err)
	}
	return nil
}
