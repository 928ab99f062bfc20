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
	"encoding/json"
	"testing"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/presence/discordipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockActivityClient struct {
	mock.Mock
}

func (m *mockActivityClient) SetActivity(ctx context.Context, activity *discordipc.Activity) error {
	//nolint:wrapcheck // mock return
	return m.Called(ctx, activity).Error(0)
}

func (m *mockActivityClient) ClearActivity(ctx context.Context) error {
	//nolint:wrapcheck // mock return
	return m.Called(ctx).Error(0)
}

func (m *mockActivityClient) Close() error {
	//nolint:wrapcheck // mock return
	return m.Called().Error(0)
}

func isIdle(a *discordipc.Activity) bool {
	return a != nil && a.State == idleState && a.Assets != nil && a.Assets.LargeImage == appIcon
}

var testIdentity = Identity{
	Started:  time.Unix(1740859200, 0),
	GameID:   "v17",
	Title:    "Ever17",
	ImageURL: "https://t.vndb.org/cv/88/1.jpg",
}

func TestNewDiscord_InitialState(t *testing.T) {
	t.Parallel()

	t.Run("all shows idle", func(t *testing.T) {
		t.Parallel()
		client := &mockActivityClient{}
		client.On("SetActivity", mock.Anything, mock.MatchedBy(isIdle)).Return(nil).Once()
		NewDiscord(client, config.PresenceModeAll)
		client.AssertExpectations(t)
	})

	t.Run("in game clears", func(t *testing.T) {
		t.Parallel()
		client := &mockActivityClient{}
		client.On("ClearActivity", mock.Anything).Return(nil).Once()
		NewDiscord(client, config.PresenceModeInGame)
		client.AssertExpectations(t)
		client.AssertNotCalled(t, "SetActivity", mock.Anything, mock.Anything)
	})

	t.Run("unreachable discord is not fatal", func(t *testing.T) {
		t.Parallel()
		client := &mockActivityClient{}
		client.On("SetActivity", mock.Anything, mock.Anything).Return(discordipc.ErrNotRunning)
		d := NewDiscord(client, config.PresenceModeAll)
		assert.NotNil(t, d)
	})
}

func TestDiscord_Set(t *testing.T) {
	t.Parallel()
	client := &mockActivityClient{}
	client.On("ClearActivity", mock.Anything).Return(nil)
	var got *discordipc.Activity
	client.On("SetActivity", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got, _ = args.Get(1).(*discordipc.Activity)
	}).Return(nil)

	d := NewDiscord(client, config.PresenceModeInGame)
	require.NoError(t, d.Set(testIdentity, false))

	require.NotNil(t, got)
	assert.Equal(t, "Ever17", got.State)
	assert.Equal(t, "Playing", got.Details)
	assert.Equal(t, int64(1740859200), got.Timestamps.Start)
	assert.Equal(t, testIdentity.ImageURL, got.Assets.LargeImage)
	assert.Equal(t, "Ever17", got.Assets.LargeText)
	require.Len(t, got.Buttons, 1)
	assert.Equal(t, "Game Details", got.Buttons[0].Label)
	assert.Equal(t, "https://vndb.org/v17", got.Buttons[0].URL)
}

func TestDiscord_SetSuppressed(t *testing.T) {
	t.Parallel()
	client := &mockActivityClient{}
	var got *discordipc.Activity
	client.On("SetActivity", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got, _ = args.Get(1).(*discordipc.Activity)
	}).Return(nil)

	d := NewDiscord(client, config.PresenceModeAll)
	require.NoError(t, d.Set(testIdentity, true))

	require.NotNil(t, got)
	assert.Equal(t, appIcon, got.Assets.LargeImage)
	assert.Equal(t, appName, got.Assets.LargeText)
	assert.Empty(t, got.Buttons)
}

func TestGameActivity_SuppressedHidesGame(t *testing.T) {
	t.Parallel()

	got := gameActivity(testIdentity, true)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), testIdentity.Title)
	assert.NotContains(t, string(encoded), testIdentity.ImageURL)
	assert.NotContains(t, string(encoded), testIdentity.GameID)
	assert.Equal(t, appName, got.State)
	assert.Equal(t, playingLabel, got.Details)
}

func TestDiscord_SetModeNone(t *testing.T) {
	t.Parallel()
	client := &mockActivityClient{}
	client.On("ClearActivity", mock.Anything).Return(nil)

	d := NewDiscord(client, config.PresenceModeNone)
	require.NoError(t, d.Set(testIdentity, false))
	require.NoError(t, d.Reset())
	client.AssertNotCalled(t, "SetActivity", mock.Anything, mock.Anything)
}

func TestDiscord_SetModeAppliesIdle(t *testing.T) {
	t.Parallel()
	client := &mockActivityClient{}
	client.On("ClearActivity", mock.Anything).Return(nil).Once()
	client.On("SetActivity", mock.Anything, mock.MatchedBy(isIdle)).Return(nil).Once()

	d := NewDiscord(client, config.PresenceModeNone)
	require.NoError(t, d.SetMode(config.PresenceModeAll))
	client.AssertExpectations(t)
}

func TestDiscord_SetError(t *testing.T) {
	t.Parallel()
	client := &mockActivityClient{}
	client.On("ClearActivity", mock.Anything).Return(nil)
	client.On("SetActivity", mock.Anything, mock.Anything).Return(discordipc.ErrNotRunning)

	d := NewDiscord(client, config.PresenceModeInGame)
	require.ErrorIs(t, d.Set(testIdentity, false), discordipc.ErrNotRunning)
}
