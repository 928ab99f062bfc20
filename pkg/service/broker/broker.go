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

// Package broker fans session notifications out to the API server and
// publishers without letting a slow consumer stall playtime tracking.
package broker

import (
	"context"
	"slices"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

type subscriber struct {
	ch      chan models.Notification
	methods []string
}

func (s subscriber) wants(method string) bool {
	return len(s.methods) == 0 || slices.Contains(s.methods, method)
}

// Broker reads notifications from a source channel and copies each one to
// every interested subscriber using non-blocking sends. The most recent
// notification of each retained method is kept so late subscribers can be
// told the current state, e.g. which game is running.
type Broker struct {
	ctx         context.Context
	source      <-chan models.Notification
	subscribers map[int]subscriber
	retained    map[string]models.Notification
	retain      []string
	mu          syncutil.RWMutex
	nextID      int
}

// NewBroker creates a broker for source. Notifications whose method is in
// retain are remembered and replayed to new subscribers.
func NewBroker(ctx context.Context, source <-chan models.Notification, retain ...string) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]subscriber),
		retained:    make(map[string]models.Notification),
		retain:      retain,
	}
}

// Start runs the broadcast loop until the source closes or the context is
// cancelled, then closes every subscriber channel.
func (b *Broker) Start() {
	go func() {
		for {
			select {
			case notif, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(notif)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
}

func (b *Broker) broadcast(notif models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slices.Contains(b.retain, notif.Method) {
		b.retained[notif.Method] = notif
	}

	for id, sub := range b.subscribers {
		if !sub.wants(notif.Method) {
			continue
		}
		select {
		case sub.ch <- notif:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("method", notif.Method).
				Msg("subscriber channel full, dropping notification")
		}
	}
}

// Subscribe registers a new subscriber. With no methods given every
// notification is delivered, otherwise only the listed methods are.
// Retained notifications matching the filter are queued immediately.
func (b *Broker) Subscribe(
	bufferSize int,
	methods ...string,
) (notifChan <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	sub := subscriber{
		ch:      make(chan models.Notification, bufferSize),
		methods: methods,
	}
	b.subscribers[id] = sub

	for _, method := range b.retain {
		notif, ok := b.retained[method]
		if !ok || !sub.wants(method) {
			continue
		}
		select {
		case sub.ch <- notif:
		default:
		}
	}

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Strs("methods", methods).
		Msg("new subscriber registered")

	return sub.ch, id
}

// Retained returns the last notification seen for a retained method.
func (b *Broker) Retained(method string) (models.Notification, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	notif, ok := b.retained[method]
	return notif, ok
}

// Unsubscribe removes a subscription and closes its channel. Unknown IDs
// are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
		log.Debug().Int("subscriber_id", id).Msg("subscriber unsubscribed")
	}
}

func (b *Broker) Stop() {
	b.closeAllSubscribers()
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		close(sub.ch)
		log.Debug().Int("subscriber_id", id).Msg("closed subscriber channel on shutdown")
	}
	b.subscribers = make(map[int]subscriber)
}
