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
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
//
// Example:
//
//	exec := &MockCommandExecutor{}
//	exec.On("Spawn", command.StartOptions{Dir: "/games"}, "/games/game.exe", []string(nil)).
//		Return(4242, nil)
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Spawn(opts command.StartOptions, name string, args ...string) (int, error) {
	called := m.Called(opts, name, args)
	//nolint:wrapcheck // mock return
	return called.Int(0), called.Error(1)
}
