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

package requests

import (
	"context"
	"encoding/json"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/database"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/Eroge-Abyss/tadoku/pkg/service/playtime"
	"github.com/google/uuid"
)

// Launcher is the session control surface exposed over the API.
type Launcher interface {
	Launch(ctx context.Context, gameID string) (<-chan error, error)
	Close(ctx context.Context) error
	StopTracking(ctx context.Context) error
	Session(ctx context.Context) (playtime.Session, bool, error)
}

type RequestEnv struct {
	Context  context.Context
	Config   *config.Instance
	Games    database.GamesDBI
	Launcher Launcher
	Presence presence.Presence
	Params   json.RawMessage
	ID       uuid.UUID
	IsLocal  bool
}
