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
	"sync"
	"testing"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/platforms/shared/foreground"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/Eroge-Abyss/tadoku/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const gamePath = "C:/Games/Sakura/sakura.exe"

type trackerEnv struct {
	ctx     context.Context
	clock   *clockwork.FakeClock
	state   *State
	store   *fakeStore
	procs   *fakeProcs
	ns      chan models.Notification
	tracker *Tracker
}

func newTrackerEnv(t *testing.T, checker foreground.Checker, pres presence.Presence) *trackerEnv {
	t.Helper()
	ctx, state := newTestState(t)
	env := &trackerEnv{
		ctx:   ctx,
		clock: clockwork.NewFakeClock(),
		state: state,
		store: &fakeStore{},
		procs: newFakeProcs(),
		ns:    make(chan models.Notification, 1024),
	}
	env.procs.add(gamePath, 42)
	env.tracker = NewTracker(
		env.clock,
		state,
		env.store,
		pres,
		env.ns,
		NewForegroundPoll(state, env.store, env.procs, checker, env.ns),
		NewExternalReport(state, env.store, env.procs, env.ns),
	)
	t.Cleanup(func() {
		_ = env.tracker.Stop(context.Background())
	})
	return env
}

func (e *trackerEnv) start(t *testing.T, mode config.PlaytimeMode) Session {
	t.Helper()
	sess := testSession(mode, 42)
	require.NoError(t, e.tracker.Start(e.ctx, sess, nil))
	if mode == config.PlaytimeModeForeground {
		require.NoError(t, e.clock.BlockUntilContext(e.ctx, 1))
	}
	return sess
}

// tick advances one poll interval and returns the notification it caused.
func (e *trackerEnv) tick(t *testing.T) models.Notification {
	t.Helper()
	e.clock.Advance(PollInterval)
	return recvNotification(t, e.ns)
}

func (e *trackerEnv) waitDone(t *testing.T) {
	t.Helper()
	active := e.tracker.current()
	if active == nil {
		return
	}
	select {
	case <-active.done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "session loop did not exit")
	}
}

func TestTracker_ProcessExitFlushesRemainder(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	env.start(t, config.PlaytimeModeForeground)

	for i := int64(1); i <= 59; i++ {
		requirePlaytime(t, env.tick(t), i)
	}
	assert.Empty(t, env.store.flushed(), "nothing flushed before the interval")

	env.procs.kill(42)
	requireGameEnded(t, env.tick(t))
	env.waitDone(t)

	assert.Equal(t, []int64{59}, env.store.flushed())
	assert.Equal(t, 1, env.store.lastPlayedCalls())
	_, ok, err := env.tracker.Active(env.ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.ErrorIs(t, env.tracker.Stop(env.ctx), ErrNoSession)
}

func TestTracker_PeriodicFlushAndStop(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	env.start(t, config.PlaytimeModeForeground)

	for i := int64(1); i <= 180; i++ {
		requirePlaytime(t, env.tick(t), i)
	}
	assert.Equal(t, []int64{60, 60, 60}, env.store.flushed())

	require.NoError(t, env.tracker.Stop(env.ctx))
	requireGameEnded(t, recvNotification(t, env.ns))

	assert.Equal(t, []int64{60, 60, 60, 0}, env.store.flushed())
	assert.Equal(t, 1, env.store.lastPlayedCalls())
}

func TestTracker_BackgroundTicksPause(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	focused := true
	checker := foreground.CheckerFunc(func(int32) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		return focused, nil
	})
	env := newTrackerEnv(t, checker, nil)
	env.start(t, config.PlaytimeModeForeground)

	requirePlaytime(t, env.tick(t), 1)
	requirePlaytime(t, env.tick(t), 2)

	mu.Lock()
	focused = false
	mu.Unlock()
	requirePaused(t, env.tick(t))
	requirePaused(t, env.tick(t))

	mu.Lock()
	focused = true
	mu.Unlock()
	requirePlaytime(t, env.tick(t), 3)

	require.NoError(t, env.tracker.Stop(env.ctx))
	requireGameEnded(t, recvNotification(t, env.ns))
	assert.Equal(t, []int64{3}, env.store.flushed())
}

func TestTracker_FailedFlushIsRetried(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	failures := 1
	env.store.fail = func(int64) bool {
		if failures > 0 {
			failures--
			return true
		}
		return false
	}
	env.start(t, config.PlaytimeModeForeground)

	for i := int64(1); i <= 61; i++ {
		requirePlaytime(t, env.tick(t), i)
	}
	assert.Equal(t, []int64{60}, env.store.flushed())

	require.NoError(t, env.tracker.Stop(env.ctx))
	requireGameEnded(t, recvNotification(t, env.ns))
	assert.Equal(t, []int64{60, 1}, env.store.flushed())
}

func TestTracker_ExternalReports(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, nil, nil)
	env.procs.add("C:/Games/Other/other.exe", 7)
	env.start(t, config.PlaytimeModeReport)

	env.tracker.HandleReport(Report{ProcessPath: gamePath, Time: 12.6})
	requirePlaytime(t, recvNotification(t, env.ns), 13)

	env.tracker.HandleReport(Report{ProcessPath: "C:/Games/Other/other.exe", Time: 30})
	env.tracker.HandleReport(Report{ProcessPath: "C:/Games/Missing/missing.exe", Time: 30})
	env.tracker.HandleReport(Report{ProcessPath: gamePath, Time: 4.4})
	requirePlaytime(t, recvNotification(t, env.ns), 17)

	assert.Equal(t, []int64{13, 4}, env.store.flushed())

	require.NoError(t, env.tracker.Stop(env.ctx))
	requireGameEnded(t, recvNotification(t, env.ns))
	assert.Equal(t, []int64{13, 4, 0}, env.store.flushed())
}

func TestTracker_SubSecondReportWritesNothing(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, nil, nil)
	env.start(t, config.PlaytimeModeReport)

	env.tracker.HandleReport(Report{ProcessPath: gamePath, Time: 0.3})
	env.tracker.HandleReport(Report{ProcessPath: gamePath, Time: 2})

	// reports are handled in order, so the first event is the 2s one
	requirePlaytime(t, recvNotification(t, env.ns), 2)
	requireNoNotification(t, env.ns)
	assert.Equal(t, []int64{2}, env.store.flushed())
}

func TestTracker_ReportsIgnoredInForegroundMode(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	env.start(t, config.PlaytimeModeForeground)

	env.tracker.HandleReport(Report{ProcessPath: gamePath, Time: 500})
	requirePlaytime(t, env.tick(t), 1)
	assert.Empty(t, env.store.flushed())
}

func TestTracker_ReportWithoutSessionDropped(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, nil, nil)

	env.tracker.HandleReport(Report{ProcessPath: gamePath, Time: 10})
	requireNoNotification(t, env.ns)
	assert.Empty(t, env.store.flushed())
}

func TestTracker_StartRejectsSecondSession(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	env.start(t, config.PlaytimeModeForeground)

	err := env.tracker.Start(env.ctx, testSession(config.PlaytimeModeForeground, 43), nil)
	require.ErrorIs(t, err, ErrSessionActive)
}

func TestTracker_StartUnknownMode(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, nil, nil)

	err := env.tracker.Start(env.ctx, testSession("turbo", 42), nil)
	require.Error(t, err)
	_, ok, err := env.tracker.Active(env.ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_OnInstalledRunsBeforeTracking(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	sess := testSession(config.PlaytimeModeForeground, 42)

	var seen Session
	require.NoError(t, env.tracker.Start(env.ctx, sess, func(s Session) {
		seen = s
		active, ok, err := env.tracker.Active(env.ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, active.Elapsed)
	}))
	assert.Equal(t, sess.ID, seen.ID)
}

func TestTracker_ConcurrentStopEndsOnce(t *testing.T) {
	t.Parallel()
	pres := &mocks.MockPresence{}
	pres.On("Reset").Return(nil).Once()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, pres)
	env.start(t, config.PlaytimeModeForeground)
	requirePlaytime(t, env.tick(t), 1)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.tracker.Stop(env.ctx)
			if err != nil {
				assert.ErrorIs(t, err, ErrNoSession)
			}
		}()
	}
	wg.Wait()

	requireGameEnded(t, recvNotification(t, env.ns))
	requireNoNotification(t, env.ns)
	assert.Equal(t, []int64{1}, env.store.flushed())
	assert.Equal(t, 1, env.store.lastPlayedCalls())
	pres.AssertExpectations(t)
	pres.AssertNumberOfCalls(t, "Reset", 1)
}

func TestTracker_ExitRacingStop(t *testing.T) {
	t.Parallel()
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, nil)
	env.start(t, config.PlaytimeModeForeground)
	requirePlaytime(t, env.tick(t), 1)

	env.procs.kill(42)
	env.clock.Advance(PollInterval)
	err := env.tracker.Stop(env.ctx)
	if err != nil {
		require.ErrorIs(t, err, ErrNoSession)
	}
	requireGameEnded(t, recvNotification(t, env.ns))
	env.waitDone(t)

	assert.Equal(t, []int64{1}, env.store.flushed())
	assert.Equal(t, 1, env.store.lastPlayedCalls())
}

func TestTracker_PresenceResetOnEnd(t *testing.T) {
	t.Parallel()
	pres := &mocks.MockPresence{}
	pres.On("Reset").Return(assert.AnError)
	env := newTrackerEnv(t, foreground.AlwaysForeground{}, pres)
	env.start(t, config.PlaytimeModeForeground)

	require.NoError(t, env.tracker.Stop(env.ctx))
	requireGameEnded(t, recvNotification(t, env.ns))
	pres.AssertCalled(t, "Reset")
	pres.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}
