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
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/google/uuid"
)

// FlushInterval is the number of attributed seconds batched into one
// periodic write by the foreground poll strategy.
const FlushInterval = 60

var (
	ErrStateClosed   = errors.New("session state is closed")
	ErrSessionActive = errors.New("a game session is already active")
	ErrNoSession     = errors.New("no active game session")
	// ErrStaleSession is returned for a session that has already ended,
	// for example a tick that raced a close.
	ErrStaleSession = errors.New("session has ended")
	ErrModeMismatch = errors.New("session is not using external reports")
	ErrPIDMismatch  = errors.New("report is for a different process")
)

// Session is the in-memory record of the game currently being tracked.
// Copies handed out by State are snapshots.
type Session struct {
	Started time.Time
	GameID  string
	Mode    config.PlaytimeMode
	// Elapsed is every second attributed to this session, flushed or not.
	Elapsed int64
	// Unflushed is attributed time not yet written to the store.
	Unflushed int64
	PID       int32
	ID        uuid.UUID
}

type TickResult struct {
	// Flush is the amount the caller must write now, zero or FlushInterval.
	Flush   int64
	Elapsed int64
}

type ReportResult struct {
	Flush   int64
	Elapsed int64
}

type op struct {
	apply func(cur *Session) *Session
	done  chan struct{}
}

// State owns the current Session. All reads and writes run on a single
// goroutine fed by a command channel, so callers never hold a lock while
// they write to the store or talk to presence.
type State struct {
	ops  chan op
	done chan struct{}
}

// NewState starts the state goroutine. It stops when ctx is done, after
// which every method returns ErrStateClosed.
func NewState(ctx context.Context) *State {
	s := &State{
		ops:  make(chan op),
		done: make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *State) run(ctx context.Context) {
	defer close(s.done)
	var cur *Session
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-s.ops:
			cur = o.apply(cur)
			close(o.done)
		}
	}
}

// Done is closed once the state goroutine has exited.
func (s *State) Done() <-chan struct{} {
	return s.done
}

func (s *State) exec(ctx context.Context, apply func(cur *Session) *Session) error {
	// select picks at random, so a cancelled caller must not race the send
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // plain cancellation
	}
	o := op{apply: apply, done: make(chan struct{})}
	select {
	case s.ops <- o:
	case <-s.done:
		return ErrStateClosed
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // plain cancellation
	}
	<-o.done
	return nil
}

// Install makes sess the active session. Only one session may exist.
func (s *State) Install(ctx context.Context, sess Session) error {
	var err error
	execErr := s.exec(ctx, func(cur *Session) *Session {
		if cur != nil {
			err = ErrSessionActive
			return cur
		}
		installed := sess
		return &installed
	})
	if execErr != nil {
		return execErr
	}
	return err
}

// Snapshot returns a copy of the active session, if there is one.
func (s *State) Snapshot(ctx context.Context) (Session, bool, error) {
	var snap Session
	var ok bool
	err := s.exec(ctx, func(cur *Session) *Session {
		if cur != nil {
			snap = *cur
			ok = true
		}
		return cur
	})
	return snap, ok, err
}

func current(cur *Session, id uuid.UUID) error {
	if cur == nil || cur.ID != id {
		return ErrStaleSession
	}
	return nil
}

// Tick records one poll of session id. A foreground tick attributes one
// second; each time FlushInterval seconds are pending, exactly that many
// are handed back to be flushed.
func (s *State) Tick(ctx context.Context, id uuid.UUID, foreground bool) (TickResult, error) {
	var res TickResult
	var err error
	execErr := s.exec(ctx, func(cur *Session) *Session {
		if err = current(cur, id); err != nil {
			return cur
		}
		if foreground {
			cur.Elapsed++
			cur.Unflushed++
			if cur.Unflushed >= FlushInterval {
				res.Flush = FlushInterval
				cur.Unflushed -= FlushInterval
			}
		}
		res.Elapsed = cur.Elapsed
		return cur
	})
	if execErr != nil {
		return TickResult{}, execErr
	}
	return res, err
}

// Report attributes an externally measured delta to session id if pid is
// the tracked process. The delta, plus anything left over from a failed
// flush, is handed back to be flushed immediately.
func (s *State) Report(
	ctx context.Context,
	id uuid.UUID,
	pid int32,
	seconds int64,
) (ReportResult, error) {
	var res ReportResult
	var err error
	execErr := s.exec(ctx, func(cur *Session) *Session {
		if err = current(cur, id); err != nil {
			return cur
		}
		switch {
		case cur.Mode != config.PlaytimeModeReport:
			err = ErrModeMismatch
		case cur.PID != pid:
			err = ErrPIDMismatch
		default:
			cur.Elapsed += seconds
			res.Flush = cur.Unflushed + seconds
			res.Elapsed = cur.Elapsed
			cur.Unflushed = 0
		}
		return cur
	})
	if execErr != nil {
		return ReportResult{}, execErr
	}
	return res, err
}

// Restore puts back seconds whose flush failed so they are retried by the
// next flush of the same session.
func (s *State) Restore(ctx context.Context, id uuid.UUID, seconds int64) error {
	var err error
	execErr := s.exec(ctx, func(cur *Session) *Session {
		if err = current(cur, id); err != nil {
			return cur
		}
		cur.Unflushed += seconds
		return cur
	})
	if execErr != nil {
		return execErr
	}
	return err
}

// End removes session id and returns its final snapshot. Only the first
// call for a session succeeds, which is what makes the exit flush happen
// once.
func (s *State) End(ctx context.Context, id uuid.UUID) (Session, error) {
	var ended Session
	var err error
	execErr := s.exec(ctx, func(cur *Session) *Session {
		if err = current(cur, id); err != nil {
			return cur
		}
		ended = *cur
		return nil
	})
	if execErr != nil {
		return Session{}, execErr
	}
	return ended, err
}
