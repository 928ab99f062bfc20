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

package methods

import (
	"fmt"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models/requests"
	"github.com/Eroge-Abyss/tadoku/pkg/api/validation"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleSettings(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings request")

	return models.SettingsResponse{
		PlaytimeMode:          string(env.Config.PlaytimeMode()),
		PresenceMode:          string(env.Config.PresenceMode()),
		ReportAddress:         env.Config.ReportAddress(),
		DisablePresenceOnNSFW: env.Config.DisablePresenceOnNSFW(),
		DebugLogging:          env.Config.DebugLogging(),
	}, nil
}

// HandleSettingsUpdate changes settings and saves them. A new playtime mode
// applies to the next session; a new presence mode applies immediately.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}

	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if params.PlaytimeMode != nil {
		log.Info().Str("playtimeMode", *params.PlaytimeMode).Msg("update")
		env.Config.SetPlaytimeMode(config.PlaytimeMode(*params.PlaytimeMode))
	}

	presenceChanged := false
	if params.PresenceMode != nil {
		log.Info().Str("presenceMode", *params.PresenceMode).Msg("update")
		mode := config.PresenceMode(*params.PresenceMode)
		presenceChanged = mode != env.Config.PresenceMode()
		env.Config.SetPresenceMode(mode)
	}

	if params.DisablePresenceOnNSFW != nil {
		log.Info().Bool("disablePresenceOnNsfw", *params.DisablePresenceOnNSFW).Msg("update")
		env.Config.SetDisablePresenceOnNSFW(*params.DisablePresenceOnNSFW)
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
		if *params.DebugLogging {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}

	if err := env.Config.Save(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	if presenceChanged && env.Presence != nil {
		if err := env.Presence.SetMode(env.Config.PresenceMode()); err != nil {
			log.Warn().Err(err).Msg("error applying presence mode")
		}
	}
	return NoContent{}, nil
}
