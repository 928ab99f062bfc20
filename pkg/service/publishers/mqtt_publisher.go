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

// Package publishers forwards session notifications to external message
// brokers.
package publishers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250
)

var ErrPublishTimeout = errors.New("publish timed out")

// MQTTPublisher publishes notifications to an MQTT broker. Each method
// goes to its own subtopic, "<topic>/<method>", with the notification
// params as the payload. current_game is published retained so late
// subscribers see what is being played.
type MQTTPublisher struct {
	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	broker    string
	topic     string
}

func NewMQTTPublisher(broker, topic string) *MQTTPublisher {
	return &MQTTPublisher{
		broker:    broker,
		topic:     strings.TrimSuffix(topic, "/"),
		newClient: mqtt.NewClient,
		stopCh:    make(chan struct{}),
	}
}

// Topic returns the topic a notification method is published to.
func (p *MQTTPublisher) Topic(method string) string {
	return p.topic + "/" + method
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// Start connects to the broker and forwards notifications until Stop is
// called or the channel is closed.
func (p *MQTTPublisher) Start(notifications <-chan models.Notification) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(p.broker))
	opts.SetClientID("tadoku-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", p.broker).Msg("mqtt publisher connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", p.broker).Msg("mqtt publisher connection lost")
	}

	p.client = p.newClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Warn().Str("broker", p.broker).Msg("mqtt broker not reachable yet, retrying in background")
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	p.wg.Add(1)
	go p.publishNotifications(notifications)
	return nil
}

// Stop ends publishing and disconnects. Safe to call more than once.
func (p *MQTTPublisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()
		if p.client != nil && p.client.IsConnected() {
			p.client.Disconnect(disconnectQuiesce)
		}
	})
}

func (p *MQTTPublisher) publish(notif models.Notification) error {
	payload := []byte(notif.Params)
	if payload == nil {
		payload = []byte("null")
	}
	retained := notif.Method == models.NotificationCurrentGame
	token := p.client.Publish(p.Topic(notif.Method), 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", notif.Method, err)
	}
	return nil
}

func (p *MQTTPublisher) publishNotifications(notifications <-chan models.Notification) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case notif, ok := <-notifications:
			if !ok {
				log.Debug().Msg("mqtt publisher notification channel closed")
				return
			}
			if err := p.publish(notif); err != nil {
				log.Error().Err(err).Str("broker", p.broker).Msg("mqtt publish failed")
				continue
			}
			log.Debug().Str("method", notif.Method).Msg("published notification to mqtt")
		}
	}
}
