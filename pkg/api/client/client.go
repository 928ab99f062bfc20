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
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api"

func apiURL(cfg *config.Instance) string {
	u := url.URL{
		Scheme: "ws",
		Host:   cfg.APIListen(),
		Path:   APIPath,
	}
	return u.String()
}

func dial(ctx context.Context, cfg *config.Instance) (*websocket.Conn, error) {
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, apiURL(cfg), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to api: %w", err)
	}
	return c, nil
}

func closeConn(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		log.Debug().Err(err).Msg("error closing websocket")
	}
}

// readUntil reads messages from c until match accepts one. The returned
// channel is closed when reading stops.
func readUntil[T any](c *websocket.Conn, match func(T) bool) (<-chan T, <-chan struct{}) {
	found := make(chan T, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("error reading message")
				return
			}
			var m T
			if err := json.Unmarshal(message, &m); err != nil {
				continue
			}
			if match(m) {
				found <- m
				return
			}
		}
	}()
	return found, done
}

func timeoutChan(timeout time.Duration) (<-chan time.Time, func()) {
	switch {
	case timeout == 0:
		timeout = config.APIRequestTimeout
	case timeout < 0:
		return nil, func() {}
	}
	timer := time.NewTimer(timeout)
	return timer.C, func() { timer.Stop() }
}

// LocalClient sends a single method with params to the local running
// service, waits for a response until timeout then disconnects. A zero
// timeout uses the default request timeout and a negative one waits
// forever.
func LocalClient(
	ctx context.Context,
	cfg *config.Instance,
	timeout time.Duration,
	method string,
	params string,
) (string, error) {
	id := uuid.New()
	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != "" {
		if !json.Valid([]byte(params)) {
			return "", ErrInvalidParams
		}
		req.Params = json.RawMessage(params)
	}

	c, err := dial(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeConn(c)

	found, done := readUntil(c, func(m models.ResponseObject) bool {
		return m.JSONRPC == "2.0" && m.ID == id
	})

	if err := c.WriteJSON(req); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	timer, stop := timeoutChan(timeout)
	defer stop()

	var resp models.ResponseObject
	select {
	case resp = <-found:
	case <-done:
		select {
		case resp = <-found:
		default:
			return "", errors.New("connection closed before response")
		}
	case <-timer:
		return "", ErrRequestTimeout
	case <-ctx.Done():
		return "", ErrRequestCancelled
	}

	if resp.Error != nil {
		return "", errors.New(resp.Error.Message)
	}

	b, err := json.Marshal(resp.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(b), nil
}

// WaitNotification blocks until a notification with the given method is
// pushed by the service and returns its params.
func WaitNotification(
	ctx context.Context,
	cfg *config.Instance,
	timeout time.Duration,
	method string,
) (string, error) {
	c, err := dial(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeConn(c)

	found, done := readUntil(c, func(m models.RequestObject) bool {
		return m.JSONRPC == "2.0" && m.ID == nil && m.Method == method
	})

	timer, stop := timeoutChan(timeout)
	defer stop()

	var notif models.RequestObject
	select {
	case notif = <-found:
	case <-done:
		select {
		case notif = <-found:
		default:
			return "", errors.New("connection closed before notification")
		}
	case <-timer:
		return "", ErrRequestTimeout
	case <-ctx.Done():
		return "", ErrRequestCancelled
	}

	if notif.Params == nil {
		return "null", nil
	}
	return string(notif.Params), nil
}
