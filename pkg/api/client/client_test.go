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

package client

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/testing/helpers"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unusedPort returns a port with nothing listening on it.
func unusedPort(t *testing.T) int {
	t.Helper()
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestLocalClient_ValidRequest(t *testing.T) {
	t.Parallel()

	var gotParams json.RawMessage
	received := make(chan struct{})
	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		var req models.RequestObject
		if err := json.Unmarshal(msg, &req); err == nil {
			gotParams = req.Params
			close(received)
		}
		helpers.RespondOK(map[string]any{"status": "ok"})(session, msg)
	})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, 0, models.MethodSession, `{"id":"v17"}`)
	require.NoError(t, err)
	<-received

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, "ok", parsed["status"])
	assert.JSONEq(t, `{"id":"v17"}`, string(gotParams))
}

func TestLocalClient_EmptyParamsOmitted(t *testing.T) {
	t.Parallel()

	paramsSeen := make(chan bool, 1)
	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		var raw map[string]any
		_ = json.Unmarshal(msg, &raw)
		_, ok := raw["params"]
		paramsSeen <- ok
		helpers.RespondOK(nil)(session, msg)
	})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, 0, models.MethodVersion, "")
	require.NoError(t, err)
	assert.Equal(t, "null", result)
	assert.False(t, <-paramsSeen)
}

func TestLocalClient_InvalidParams(t *testing.T) {
	t.Parallel()

	cfg := helpers.NewTestConfig(t, unusedPort(t))
	_, err := LocalClient(context.Background(), cfg, 0, models.MethodLaunch, `{not json`)
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestLocalClient_ErrorResponse(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		var req models.RequestObject
		if err := json.Unmarshal(msg, &req); err != nil || req.ID == nil {
			return
		}
		data, _ := json.Marshal(models.ResponseObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Error:   &models.ErrorObject{Code: -32000, Message: "no active session"},
		})
		_ = session.Write(data)
	})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	_, err := LocalClient(context.Background(), cfg, 0, models.MethodStop, "")
	require.EqualError(t, err, "no active session")
}

func TestLocalClient_IgnoresOtherMessages(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		_ = session.Write([]byte(`{"jsonrpc":"2.0","method":"playtime","params":5}`))
		_ = session.Write([]byte(`garbage`))
		helpers.RespondOK("done")(session, msg)
	})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, 0, models.MethodClose, "")
	require.NoError(t, err)
	assert.Equal(t, `"done"`, result)
}

func TestLocalClient_Timeout(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, func(*melody.Session, []byte) {})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	_, err := LocalClient(context.Background(), cfg, 50*time.Millisecond, models.MethodVersion, "")
	require.ErrorIs(t, err, ErrRequestTimeout)
}

func TestLocalClient_Cancelled(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, func(*melody.Session, []byte) {})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := LocalClient(ctx, cfg, -1, models.MethodVersion, "")
	require.ErrorIs(t, err, ErrRequestCancelled)
}

func TestLocalClient_ServiceNotRunning(t *testing.T) {
	t.Parallel()

	cfg := helpers.NewTestConfig(t, unusedPort(t))
	_, err := LocalClient(context.Background(), cfg, 0, models.MethodVersion, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to api")
}

func TestWaitNotification(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, nil)
	server.Melody.HandleConnect(func(session *melody.Session) {
		_ = session.Write([]byte(`{"jsonrpc":"2.0","method":"playtime","params":60}`))
		_ = session.Write([]byte(`{"jsonrpc":"2.0","method":"current_game","params":{"id":"v17","status":"playing"}}`))
	})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	params, err := WaitNotification(context.Background(), cfg, time.Second, models.NotificationCurrentGame)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"v17","status":"playing"}`, params)
}

func TestWaitNotification_NullParams(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, nil)
	server.Melody.HandleConnect(func(session *melody.Session) {
		_ = session.Write([]byte(`{"jsonrpc":"2.0","method":"current_game","params":null}`))
	})
	cfg := helpers.NewTestConfig(t, server.Port(t))

	params, err := WaitNotification(context.Background(), cfg, time.Second, models.NotificationCurrentGame)
	require.NoError(t, err)
	assert.Equal(t, "null", params)
}

func TestWaitNotification_Timeout(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, nil)
	cfg := helpers.NewTestConfig(t, server.Port(t))

	_, err := WaitNotification(context.Background(), cfg, 50*time.Millisecond, models.NotificationPlaytime)
	require.ErrorIs(t, err, ErrRequestTimeout)
}
