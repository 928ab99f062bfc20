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
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models/requests"
	"github.com/Eroge-Abyss/tadoku/pkg/api/validation"
	"github.com/Eroge-Abyss/tadoku/pkg/database"
	"github.com/rs/zerolog/log"
)

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func gameResponse(g *database.Game) models.GameResponse {
	return models.GameResponse{
		ID:            g.ID,
		Title:         g.Title,
		ImageURL:      g.ImageURL,
		ExePath:       g.ExePath,
		ProcessPath:   g.TrackedPath(),
		IsNSFW:        g.IsNSFW,
		Playtime:      g.Playtime,
		TodayPlaytime: g.TodayPlaytime,
		LastPlayDate:  g.LastPlayDate,
		LastPlayed:    formatTime(g.LastPlayed),
		FirstPlayed:   formatTime(g.FirstPlayed),
	}
}

//nolint:gocritic // single-use parameter in API handler
func HandleGames(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games request")

	var params models.GamesParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	game, err := env.Games.GetGame(params.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return gameResponse(game), nil
}

// HandleGamesSave creates or updates a game's metadata. Playtime fields are
// never written here.
//
//nolint:gocritic // single-use parameter in API handler
func HandleGamesSave(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games save request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}

	var params models.SaveGameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	err := env.Games.SaveGame(&database.Game{
		ID:          params.ID,
		Title:       params.Title,
		ImageURL:    params.ImageURL,
		ExePath:     params.ExePath,
		ProcessPath: params.ProcessPath,
		IsNSFW:      params.IsNSFW,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	game, err := env.Games.GetGame(params.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved game: %w", err)
	}
	return gameResponse(game), nil
}
