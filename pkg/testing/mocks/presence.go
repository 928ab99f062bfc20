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
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/stretchr/testify/mock"
)

// MockPresence is a testify mock for presence.Presence.
type MockPresence struct {
	mock.Mock
}

func (m *MockPresence) Set(id presence.Identity, suppressed bool) error {
	//nolint:wrapcheck // mock return
	return m.Called(id, suppressed).Error(0)
}

func (m *MockPresence) Reset() error {
	//nolint:wrapcheck // mock return
	return m.Called().Error(0)
}

func (m *MockPresence) SetMode(mode config.PresenceMode) error {
	//nolint:wrapcheck // mock return
	return m.Called(mode).Error(0)
}

func (m *MockPresence) Close() error {
	//nolint:wrapcheck // mock return
	return m.Called().Error(0)
}
