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

// Package launcher starts games and connects the resulting process to a
// tracked playtime session.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/notifications"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/database"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/command"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/syncutil"
	"github.com/Eroge-Abyss/tadoku/pkg/platforms/shared/procscanner"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/Eroge-Abyss/tadoku/pkg/service/playtime"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoExecutable = errors.New("game has no executable path")
	ErrLaunchActive = errors.New("a game is already launching")
)

type Store interface {
	GetGame(id string) (*database.Game, error)
	SetFirstPlayed(id string) error
}

type ProcessLocator interface {
	LocateWithRetry(
		ctx context.Context,
		clock clockwork.Clock,
		path string,
		attempts int,
		interval time.Duration,
	) (int32, error)
}

type SessionTracker interface {
	Start(ctx context.Context, sess playtime.Session, onInstalled func(playtime.Session)) error
	Stop(ctx context.Context) error
	Active(ctx context.Context) (playtime.Session, bool, error)
}

type Deps struct {
	Config     *config.Instance
	Clock      clockwork.Clock
	Store      Store
	Executor   command.Executor
	Locator    ProcessLocator
	Resolver   Resolver
	Terminator Terminator
	Tracker    SessionTracker
	Presence   presence.Presence
	// Notifications receives current_game events.
	Notifications chan<- models.Notification
}

// pendingLaunch is a spawned game whose process is still being located.
type pendingLaunch struct {
	cancel context.CancelFunc
}

// Launcher spawns games and hands the located process to the tracker.
type Launcher struct {
	Deps
	pending *pendingLaunch
	mu      syncutil.Mutex
}

func NewLauncher(deps Deps) *Launcher {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Resolver == nil {
		deps.Resolver = PassthroughResolver{}
	}
	if deps.Terminator == nil {
		deps.Terminator = ProcessTerminator{}
	}
	if deps.Presence == nil {
		deps.Presence = presence.Noop{}
	}
	return &Launcher{Deps: deps}
}

// Launch starts game gameID. Spawn errors are returned directly; finding
// the game process happens in the background and its outcome is sent on
// the returned channel: nil once tracking started, otherwise the error.
func (l *Launcher) Launch(ctx context.Context, gameID string) (<-chan error, error) {
	_, active, err := l.Tracker.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}
	if active {
		return nil, playtime.ErrSessionActive
	}

	game, err := l.Store.GetGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	target, err := l.Resolver.Resolve(ctx, game.ExePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable: %w", err)
	}

	// locating outlives the request that started the launch
	locateCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	pending := &pendingLaunch{cancel: cancel}
	l.mu.Lock()
	if l.pending != nil {
		l.mu.Unlock()
		cancel()
		return nil, ErrLaunchActive
	}
	l.pending = pending
	l.mu.Unlock()

	spawned, err := l.Executor.Spawn(
		command.StartOptions{Dir: filepath.Dir(target.Exe)},
		target.Exe,
		target.Args...,
	)
	if err != nil {
		l.locateDone(pending)
		return nil, fmt.Errorf("failed to launch game: %w", err)
	}

	mode := l.Config.PlaytimeMode()
	log.Info().
		Str("gameID", game.ID).
		Str("exe", target.Exe).
		Int("spawnedPID", spawned).
		Str("mode", string(mode)).
		Msg("launched game")

	result := make(chan error, 1)
	go func() {
		defer l.locateDone(pending)
		err := l.track(locateCtx, pending, game, mode)
		if err != nil {
			log.Error().Err(err).Str("gameID", game.ID).Msg("game tracking not started")
		}
		result <- err
	}()
	return result, nil
}

func (l *Launcher) locateDone(p *pendingLaunch) {
	p.cancel()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == p {
		l.pending = nil
	}
}

func (l *Launcher) track(
	ctx context.Context,
	pending *pendingLaunch,
	game *database.Game,
	mode config.PlaytimeMode,
) error {
	pid, err := l.Locator.LocateWithRetry(
		ctx,
		l.Clock,
		game.TrackedPath(),
		procscanner.LocateAttempts,
		procscanner.LocateInterval,
	)
	if err != nil {
		return err //nolint:wrapcheck // ErrProcessNotFound is the outcome
	}

	sess := playtime.Session{
		ID:      uuid.New(),
		GameID:  game.ID,
		PID:     pid,
		Mode:    mode,
		Started: l.Clock.Now(),
	}

	// a close either abandons the launch before this point or finds the
	// installed session after it
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("launch abandoned: %w", err)
	}
	if l.pending == pending {
		l.pending = nil
	}
	return l.Tracker.Start(ctx, sess, func(s playtime.Session) {
		l.sessionStarted(game, s)
	})
}

func (l *Launcher) sessionStarted(game *database.Game, sess playtime.Session) {
	if err := l.Store.SetFirstPlayed(game.ID); err != nil {
		log.Error().Err(err).Str("gameID", game.ID).Msg("error setting first played")
	}
	notifications.CurrentGameStarted(l.Notifications, game.ID)

	suppressed := game.IsNSFW && l.Config.DisablePresenceOnNSFW()
	err := l.Presence.Set(presence.Identity{
		Started:  sess.Started,
		GameID:   game.ID,
		Title:    game.Title,
		ImageURL: game.ImageURL,
	}, suppressed)
	if err != nil {
		log.Warn().Err(err).Msg("error setting presence")
	}
}

// Close terminates the tracked game and ends its session. A launch still
// looking for its process is abandoned instead.
func (l *Launcher) Close(ctx context.Context) error {
	if l.abandonLocate() {
		return nil
	}

	sess, ok, err := l.Tracker.Active(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}
	if !ok {
		return playtime.ErrNoSession
	}

	if err := l.Terminator.Terminate(ctx, sess.PID); err != nil {
		log.Warn().Err(err).Int32("pid", sess.PID).Msg("error terminating game")
	}
	err = l.StopTracking(ctx)
	if errors.Is(err, playtime.ErrNoSession) {
		// the game exited while being terminated and tracking already ended it
		log.Debug().Str("gameID", sess.GameID).Msg("session ended before stop")
		return nil
	}
	return err
}

// StopTracking ends the session without touching the game process.
func (l *Launcher) StopTracking(ctx context.Context) error {
	l.abandonLocate()
	if err := l.Tracker.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop tracking: %w", err)
	}
	return nil
}

func (l *Launcher) abandonLocate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return false
	}
	log.Info().Msg("abandoning pending game launch")
	l.pending.cancel()
	l.pending = nil
	return true
}

// Session returns the tracked session, if any.
func (l *Launcher) Session(ctx context.Context) (playtime.Session, bool, error) {
	sess, ok, err := l.Tracker.Active(ctx)
	if err != nil {
		return playtime.Session{}, false, fmt.Errorf("failed to read session state: %w", err)
	}
	return sess, ok, nil
}
