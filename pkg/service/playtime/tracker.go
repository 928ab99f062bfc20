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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/notifications"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/syncutil"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const reportBuffer = 16

// run is the goroutine tracking one session.
type run struct {
	sess     Session
	strategy Strategy
	stop     chan struct{}
	done     chan struct{}
	reports  chan Report
	stopOnce sync.Once
}

func (r *run) signalStop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Tracker runs the strategy of the active session and performs its exit
// branch: final flush, last played, state cleared, presence reset and the
// session end notification.
type Tracker struct {
	clock      clockwork.Clock
	state      *State
	store      Store
	presence   presence.Presence
	ns         chan<- models.Notification
	strategies map[config.PlaytimeMode]Strategy
	active     *run
	mu         syncutil.Mutex
}

func NewTracker(
	clock clockwork.Clock,
	state *State,
	store Store,
	pres presence.Presence,
	ns chan<- models.Notification,
	strategies ...Strategy,
) *Tracker {
	if pres == nil {
		pres = presence.Noop{}
	}
	t := &Tracker{
		clock:      clock,
		state:      state,
		store:      store,
		presence:   pres,
		ns:         ns,
		strategies: make(map[config.PlaytimeMode]Strategy, len(strategies)),
	}
	for _, s := range strategies {
		t.strategies[s.Mode()] = s
	}
	return t
}

// State returns the session state the tracker drives.
func (t *Tracker) State() *State {
	return t.state
}

// Start installs sess and starts tracking it with the strategy for
// sess.Mode. onInstalled runs after the session is installed and before
// the first tick, so start side effects are ordered before any tracking.
func (t *Tracker) Start(ctx context.Context, sess Session, onInstalled func(Session)) error {
	strategy, ok := t.strategies[sess.Mode]
	if !ok {
		return fmt.Errorf("no strategy for playtime mode %q", sess.Mode)
	}

	t.mu.Lock()
	if t.active != nil {
		t.mu.Unlock()
		return ErrSessionActive
	}
	if err := t.state.Install(ctx, sess); err != nil {
		t.mu.Unlock()
		return err
	}
	r := &run{
		sess:     sess,
		strategy: strategy,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		reports:  make(chan Report, reportBuffer),
	}
	t.active = r
	t.mu.Unlock()

	log.Info().
		Str("gameID", sess.GameID).
		Int32("pid", sess.PID).
		Str("mode", string(sess.Mode)).
		Msg("tracking session started")

	if onInstalled != nil {
		onInstalled(sess)
	}

	go t.loop(r)
	return nil
}

func (t *Tracker) loop(r *run) {
	defer close(r.done)
	defer t.clearActive(r)

	// the tracker outlives requests, so the loop uses its own context
	ctx := context.Background()

	var tick <-chan time.Time
	if interval := r.strategy.TickInterval(); interval > 0 {
		ticker := t.clock.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.Chan()
	}

	for {
		select {
		case <-r.stop:
			log.Debug().Str("gameID", r.sess.GameID).Msg("tracking stop requested")
			t.finish(ctx, r.sess)
			return
		case <-tick:
			alive, err := r.strategy.Tick(ctx, r.sess)
			if err != nil {
				t.abort(r.sess, err)
				return
			}
			if !alive {
				t.finish(ctx, r.sess)
				return
			}
		case rep := <-r.reports:
			if err := r.strategy.HandleReport(ctx, r.sess, rep); err != nil {
				t.abort(r.sess, err)
				return
			}
		}
	}
}

// abort ends a loop that can no longer reach the session state. A stale
// session means someone else already ended it.
func (*Tracker) abort(sess Session, err error) {
	if errors.Is(err, ErrStaleSession) {
		log.Debug().Str("gameID", sess.GameID).Msg("session already ended")
		return
	}
	log.Error().Err(err).Str("gameID", sess.GameID).Msg("tracking aborted")
}

// finish is the exit branch of a session. State.End only succeeds once per
// session, so the final flush can't happen twice.
func (t *Tracker) finish(ctx context.Context, sess Session) {
	ended, err := t.state.End(ctx, sess.ID)
	if err != nil {
		t.abort(sess, err)
		return
	}

	flush(ctx, t.state, t.store, ended.ID, ended.GameID, ended.Unflushed)
	if err := t.store.UpdateLastPlayed(ended.GameID); err != nil {
		log.Error().Err(err).Str("gameID", ended.GameID).Msg("error updating last played")
	}
	if err := t.presence.Reset(); err != nil {
		log.Warn().Err(err).Msg("error resetting presence")
	}
	notifications.CurrentGameEnded(t.ns)

	log.Info().
		Str("gameID", ended.GameID).
		Int64("elapsed", ended.Elapsed).
		Int64("flushed", ended.Unflushed).
		Msg("tracking session ended")
}

func (t *Tracker) clearActive(r *run) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == r {
		t.active = nil
	}
}

func (t *Tracker) current() *run {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// HandleReport queues r for the active session. Without a session it is
// dropped; whether it counts is up to the session's strategy.
func (t *Tracker) HandleReport(r Report) {
	active := t.current()
	if active == nil {
		return
	}
	select {
	case active.reports <- r:
	default:
		log.Warn().Str("path", r.ProcessPath).Msg("report queue full, dropping report")
	}
}

// Stop ends tracking of the active session and waits for its exit branch
// to finish. It returns ErrNoSession if nothing is being tracked.
func (t *Tracker) Stop(ctx context.Context) error {
	active := t.current()
	if active == nil {
		return ErrNoSession
	}
	active.signalStop()
	select {
	case <-active.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for session to end: %w", ctx.Err())
	}
}

// Active returns a snapshot of the tracked session.
func (t *Tracker) Active(ctx context.Context) (Session, bool, error) {
	return t.state.Snapshot(ctx)
}
