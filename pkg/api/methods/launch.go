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
	"errors"
	"fmt"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models/requests"
	"github.com/Eroge-Abyss/tadoku/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

var ErrNotAllowed = errors.New("not allowed")

//nolint:gocritic // single-use parameter in API handler
func HandleLaunch(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received launch request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}

	var params models.LaunchParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	result, err := env.Launcher.Launch(env.Context, params.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", params.GameID, err)
	}
	if !params.Wait {
		return NoContent{}, nil
	}

	select {
	case err := <-result:
		if err != nil {
			return nil, fmt.Errorf("game %s started but is not tracked: %w", params.GameID, err)
		}
	case <-env.Context.Done():
		return nil, fmt.Errorf("waiting for game process: %w", env.Context.Err())
	}
	return HandleSession(env)
}

//nolint:gocritic // single-use parameter in API handler
func HandleClose(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received close request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}
	if err := env.Launcher.Close(env.Context); err != nil {
		return nil, fmt.Errorf("failed to close game: %w", err)
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStop(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received stop tracking request")

	if err := env.Launcher.StopTracking(env.Context); err != nil {
		return nil, fmt.Errorf("failed to stop tracking: %w", err)
	}
	return NoContent{}, nil
}
