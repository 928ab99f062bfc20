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

// Package helpers provides shared test utilities: a WebSocket JSON-RPC
// test server, test configs and an on-disk sqlite games database.
package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/require"
)

// WebSocketTestServer serves handler on /api over a melody session hub.
type WebSocketTestServer struct {
	Server *httptest.Server
	Melody *melody.Melody
}

// NewWebSocketTestServer starts a server calling handler for every text
// message. It is closed when the test ends.
func NewWebSocketTestServer(t *testing.T, handler func(*melody.Session, []byte)) *WebSocketTestServer {
	t.Helper()

	m := melody.New()
	if handler != nil {
		m.HandleMessage(handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		_ = m.HandleRequest(w, r)
	})

	wsts := &WebSocketTestServer{
		Server: httptest.NewServer(mux),
		Melody: m,
	}
	t.Cleanup(wsts.Close)
	return wsts
}

func (wsts *WebSocketTestServer) Close() {
	_ = wsts.Melody.Close()
	wsts.Server.Close()
}

// Port returns the port the server listens on.
func (wsts *WebSocketTestServer) Port(t *testing.T) int {
	t.Helper()
	u, err := url.Parse(wsts.Server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

// Dial opens a WebSocket client to the server's /api endpoint.
func (wsts *WebSocketTestServer) Dial() (*websocket.Conn, error) {
	return DialWebSocket(wsts.Server.URL)
}

// DialWebSocket opens a WebSocket client to /api on the http base URL.
func DialWebSocket(baseURL string) (*websocket.Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL: %w", err)
	}
	u.Scheme = "ws"
	u.Path = "/api"

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial WebSocket: %w", err)
	}
	return conn, nil
}

// SendJSONRPCRequest sends a request and reads messages until the matching
// response arrives.
func SendJSONRPCRequest(conn *websocket.Conn, method string, params any) (*models.ResponseObject, error) {
	id := uuid.New()
	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = raw
	}

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		var resp models.ResponseObject
		if err := json.Unmarshal(msg, &resp); err != nil {
			continue
		}
		if resp.ID == id {
			return &resp, nil
		}
	}
}

// RespondOK answers every JSON-RPC request with result.
func RespondOK(result any) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		var req models.RequestObject
		if err := json.Unmarshal(msg, &req); err != nil || req.ID == nil {
			return
		}
		data, _ := json.Marshal(models.ResponseObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Result:  result,
		})
		_ = session.Write(data)
	}
}
