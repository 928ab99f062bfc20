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

package playtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

type fakeStore struct {
	fail        func(seconds int64) bool
	updates     []int64
	lastPlayed  []string
	firstPlayed []string
	mu          sync.Mutex
}

func (s *fakeStore) UpdatePlaytime(_ string, seconds int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil && s.fail(seconds) {
		return errStoreDown
	}
	s.updates = append(s.updates, seconds)
	return nil
}

func (s *fakeStore) UpdateLastPlayed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlayed = append(s.lastPlayed, id)
	return nil
}

func (s *fakeStore) SetFirstPlayed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firstPlayed = append(s.firstPlayed, id)
	return nil
}

func (s *fakeStore) flushed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.updates...)
}

func (s *fakeStore) lastPlayedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastPlayed)
}

type fakeProcs struct {
	alive map[int32]bool
	paths map[string]int32
	mu    sync.Mutex
}

func newFakeProcs() *fakeProcs {
	return &fakeProcs{
		alive: make(map[int32]bool),
		paths: make(map[string]int32),
	}
}

func (p *fakeProcs) add(path string, pid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths[path] = pid
	p.alive[pid] = true
}

func (p *fakeProcs) kill(pid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[pid] = false
}

func (p *fakeProcs) Locate(_ context.Context, path string) (int32, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pid, ok := p.paths[path]
	if !ok || !p.alive[pid] {
		return 0, false, nil
	}
	return pid, true, nil
}

func (p *fakeProcs) Exists(_ context.Context, pid int32) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive[pid], nil
}

func newTestState(t *testing.T) (context.Context, *State) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, NewState(ctx)
}

func testSession(mode config.PlaytimeMode, pid int32) Session {
	return Session{
		ID:      uuid.New(),
		GameID:  "v17",
		PID:     pid,
		Mode:    mode,
		Started: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
	}
}

func recvNotification(t *testing.T, ns <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case n := <-ns:
		return n
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for notification")
		return models.Notification{}
	}
}

func requireNoNotification(t *testing.T, ns <-chan models.Notification) {
	t.Helper()
	select {
	case n := <-ns:
		require.FailNow(t, "unexpected notification", "%s %s", n.Method, n.Params)
	default:
	}
}

func requirePlaytime(t *testing.T, n models.Notification, want int64) {
	t.Helper()
	require.Equal(t, models.NotificationPlaytime, n.Method)
	var got int64
	require.NoError(t, json.Unmarshal(n.Params, &got), "params: %s", n.Params)
	require.Equal(t, want, got)
}

func requirePaused(t *testing.T, n models.Notification) {
	t.Helper()
	require.Equal(t, models.NotificationPlaytime, n.Method)
	var got string
	require.NoError(t, json.Unmarshal(n.Params, &got))
	require.Equal(t, models.PlaytimePaused, got)
}

func requireGameEnded(t *testing.T, n models.Notification) {
	t.Helper()
	require.Equal(t, models.NotificationCurrentGame, n.Method)
	require.JSONEq(t, "null", string(n.Params))
}
