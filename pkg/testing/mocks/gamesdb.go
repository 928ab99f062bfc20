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

package mocks

import (
	"github.com/Eroge-Abyss/tadoku/pkg/database"
	"github.com/stretchr/testify/mock"
)

// MockGamesDB is a testify mock for database.GamesDBI.
type MockGamesDB struct {
	mock.Mock
}

func (m *MockGamesDB) GetGame(id string) (*database.Game, error) {
	args := m.Called(id)
	game, _ := args.Get(0).(*database.Game)
	//nolint:wrapcheck // mock return
	return game, args.Error(1)
}

func (m *MockGamesDB) SaveGame(game *database.Game) error {
	//nolint:wrapcheck // mock return
	return m.Called(game).Error(0)
}

func (m *MockGamesDB) UpdatePlaytime(id string, seconds int64) error {
	//nolint:wrapcheck // mock return
	return m.Called(id, seconds).Error(0)
}

func (m *MockGamesDB) UpdateLastPlayed(id string) error {
	//nolint:wrapcheck // mock return
	return m.Called(id).Error(0)
}

func (m *MockGamesDB) SetFirstPlayed(id string) error {
	//nolint:wrapcheck // mock return
	return m.Called(id).Error(0)
}

func (m *MockGamesDB) MigrateUp() error {
	//nolint:wrapcheck // mock return
	return m.Called().Error(0)
}

func (m *MockGamesDB) Close() error {
	//nolint:wrapcheck // mock return
	return m.Called().Error(0)
}
