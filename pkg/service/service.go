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

// Package service wires the playtime tracker, launcher, presence, report
// listener, API and publishers into one running process.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/database/gamesdb"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/command"
	"github.com/Eroge-Abyss/tadoku/pkg/platforms/shared/foreground"
	"github.com/Eroge-Abyss/tadoku/pkg/platforms/shared/procscanner"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/Eroge-Abyss/tadoku/pkg/presence/discordipc"
	"github.com/Eroge-Abyss/tadoku/pkg/service/broker"
	"github.com/Eroge-Abyss/tadoku/pkg/service/launcher"
	"github.com/Eroge-Abyss/tadoku/pkg/service/playtime"
	"github.com/Eroge-Abyss/tadoku/pkg/service/publishers"
	"github.com/Eroge-Abyss/tadoku/pkg/service/reports"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	notificationQueueSize = 64
	subscriberBufferSize  = 100
	stopTimeout           = 10 * time.Second
)

// Options override the real platform pieces. Zero values use the defaults.
type Options struct {
	Clock      clockwork.Clock
	Presence   presence.Presence
	Foreground foreground.Checker
	Executor   command.Executor
	Source     procscanner.Source
	DataDir    string
}

func (o *Options) setDefaults(cfg *config.Instance) {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Presence == nil {
		client := discordipc.NewClient(cfg.DiscordClientID(), nil)
		o.Presence = presence.NewDiscord(client, cfg.PresenceMode())
	}
	if o.Foreground == nil {
		o.Foreground = foreground.Default()
	}
	if o.Executor == nil {
		o.Executor = &command.RealExecutor{}
	}
	if o.Source == nil {
		o.Source = procscanner.GopsutilSource{}
	}
	if o.DataDir == "" {
		o.DataDir = helpers.DataDir()
	}
}

// applyConfigChange reacts to config.toml being edited while running.
// The playtime mode needs nothing here since it is read per session.
//
//nolint:gocritic // values are small and copied by the watcher anyway
func applyConfigChange(pres presence.Presence, prev, next config.Values) {
	if next.DebugLogging != prev.DebugLogging {
		if next.DebugLogging {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	if next.Presence.Mode != prev.Presence.Mode && next.Presence.Mode.Valid() {
		if err := pres.SetMode(next.Presence.Mode); err != nil {
			log.Warn().Err(err).Msg("error applying presence mode")
		}
	}
}

func startPublishers(cfg *config.Instance, b *broker.Broker) []*publishers.MQTTPublisher {
	var active []*publishers.MQTTPublisher
	for _, pc := range cfg.GetMQTTPublishers() {
		if pc.Enabled != nil && !*pc.Enabled {
			continue
		}
		ch, id := b.Subscribe(subscriberBufferSize, pc.Filter...)
		p := publishers.NewMQTTPublisher(pc.Broker, pc.Topic)
		if err := p.Start(ch); err != nil {
			log.Error().Err(err).Str("broker", pc.Broker).Msg("failed to start mqtt publisher")
			b.Unsubscribe(id)
			continue
		}
		active = append(active, p)
	}
	return active
}

// Start runs the service in the background. stop ends any tracked session
// and shuts everything down; done is closed once shutdown has finished,
// including when the service stops itself after a fatal error.
func Start(cfg *config.Instance, opts Options) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Str("version", config.AppVersion).Msg("starting service")
	opts.setDefaults(cfg)

	if err := os.MkdirAll(opts.DataDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	// coreCtx outlives ctx so the session can be flushed and announced
	// after the listeners have gone.
	coreCtx, coreCancel := context.WithCancel(context.Background())
	ctx, cancel := context.WithCancel(coreCtx)

	log.Info().Msg("opening games database")
	db, err := gamesdb.OpenGamesDB(coreCtx, opts.DataDir)
	if err != nil {
		cancel()
		coreCancel()
		return nil, nil, fmt.Errorf("failed to open games database: %w", err)
	}

	ns := make(chan models.Notification, notificationQueueSize)
	notifBroker := broker.NewBroker(coreCtx, ns, models.NotificationCurrentGame)
	notifBroker.Start()

	locator := procscanner.NewLocator(opts.Source)
	state := playtime.NewState(coreCtx)
	tracker := playtime.NewTracker(
		opts.Clock,
		state,
		db,
		opts.Presence,
		ns,
		playtime.NewForegroundPoll(state, db, locator, opts.Foreground, ns),
		playtime.NewExternalReport(state, db, locator, ns),
	)
	if !foreground.Precise() {
		log.Info().Msg("foreground detection unavailable, all running time counts")
	}

	gameLauncher := launcher.NewLauncher(launcher.Deps{
		Config:        cfg,
		Clock:         opts.Clock,
		Store:         db,
		Executor:      opts.Executor,
		Locator:       locator,
		Tracker:       tracker,
		Presence:      opts.Presence,
		Notifications: ns,
	})

	var wg sync.WaitGroup

	log.Info().Msg("starting API service")
	apiNotifications, _ := notifBroker.Subscribe(subscriberBufferSize)
	wg.Add(1)
	go func() {
		defer wg.Done()
		apiErr := api.Start(ctx, api.Deps{
			Config:   cfg,
			Games:    db,
			Launcher: gameLauncher,
			Presence: opts.Presence,
		}, apiNotifications)
		if apiErr != nil {
			log.Error().Err(apiErr).Msg("api server stopped, shutting down service")
			cancel()
		}
	}()

	log.Info().Str("addr", cfg.ReportAddress()).Msg("starting report listener")
	wg.Add(1)
	go func() {
		defer wg.Done()
		if reportErr := reports.Start(ctx, cfg.ReportAddress(), tracker); reportErr != nil {
			log.Error().Err(reportErr).Msg("report listener stopped")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		watchErr := cfg.Watch(ctx, func(prev, next config.Values) {
			applyConfigChange(opts.Presence, prev, next)
		})
		if watchErr != nil {
			log.Warn().Err(watchErr).Msg("config live reload unavailable")
		}
	}()

	log.Info().Msg("starting publishers")
	activePublishers := startPublishers(cfg, notifBroker)

	var stopOnce sync.Once
	var stopErr error
	shutdown := func() {
		stopOnce.Do(func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
			defer stopCancel()
			if err := gameLauncher.StopTracking(stopCtx); err != nil && !errors.Is(err, playtime.ErrNoSession) {
				log.Error().Err(err).Msg("error ending session on shutdown")
				stopErr = err
			}

			cancel()
			wg.Wait()

			for _, p := range activePublishers {
				p.Stop()
			}
			if err := opts.Presence.Close(); err != nil {
				log.Debug().Err(err).Msg("error closing presence")
			}
			coreCancel()
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("error closing games database")
				stopErr = errors.Join(stopErr, err)
			}
			notifBroker.Stop()
			log.Info().Msg("service stopped")
		})
	}

	doneCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdown()
		close(doneCh)
	}()

	stop = func() error {
		shutdown()
		<-doneCh
		return stopErr
	}
	return stop, doneCh, nil
}
