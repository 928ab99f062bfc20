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

package publishers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWithMock(t *testing.T, client *mockMQTTClient, topic string) (*MQTTPublisher, chan models.Notification) {
	t.Helper()
	p := NewMQTTPublisher("localhost:1883", topic)
	var opts *mqtt.ClientOptions
	p.newClient = func(o *mqtt.ClientOptions) mqtt.Client {
		opts = o
		return client
	}
	ns := make(chan models.Notification, 8)
	require.NoError(t, p.Start(ns))
	require.NotNil(t, opts)
	t.Cleanup(p.Stop)
	return p, ns
}

func nextPublished(t *testing.T, client *mockMQTTClient) publishedMessage {
	t.Helper()
	select {
	case msg := <-client.published:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
		return publishedMessage{}
	}
}

func TestBrokerURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tcp://localhost:1883", brokerURL("localhost:1883"))
	assert.Equal(t, "ssl://mqtt.example.com:8883", brokerURL("ssl://mqtt.example.com:8883"))
}

func TestTopic(t *testing.T) {
	t.Parallel()

	p := NewMQTTPublisher("localhost:1883", "tadoku/notifications/")
	assert.Equal(t, "tadoku/notifications/playtime", p.Topic(models.NotificationPlaytime))
}

func TestPublish_PlaytimeAndCurrentGame(t *testing.T) {
	t.Parallel()

	client := newMockMQTTClient()
	_, ns := startWithMock(t, client, "tadoku")

	ns <- models.Notification{Method: models.NotificationPlaytime, Params: json.RawMessage("60")}
	msg := nextPublished(t, client)
	assert.Equal(t, "tadoku/playtime", msg.topic)
	assert.Equal(t, "60", string(msg.payload))
	assert.False(t, msg.retained)

	ns <- models.Notification{Method: models.NotificationCurrentGame, Params: json.RawMessage(`{"id":"v17","status":"playing"}`)}
	msg = nextPublished(t, client)
	assert.Equal(t, "tadoku/current_game", msg.topic)
	assert.JSONEq(t, `{"id":"v17","status":"playing"}`, string(msg.payload))
	assert.True(t, msg.retained)
}

func TestPublish_NilParamsSendsNull(t *testing.T) {
	t.Parallel()

	client := newMockMQTTClient()
	_, ns := startWithMock(t, client, "tadoku")

	ns <- models.Notification{Method: models.NotificationCurrentGame}
	assert.Equal(t, "null", string(nextPublished(t, client).payload))
}

func TestPublish_ErrorKeepsRunning(t *testing.T) {
	t.Parallel()

	client := newMockMQTTClient()
	client.publishError = assert.AnError
	p, ns := startWithMock(t, client, "tadoku")

	err := p.publish(models.Notification{Method: models.NotificationPlaytime, Params: json.RawMessage("1")})
	require.ErrorIs(t, err, assert.AnError)

	ns <- models.Notification{Method: models.NotificationPlaytime, Params: json.RawMessage("1")}
	p.Stop()
	assert.Equal(t, 1, client.disconnects())
}

func TestStart_ConnectError(t *testing.T) {
	t.Parallel()

	client := newMockMQTTClient()
	client.connectError = assert.AnError
	p := NewMQTTPublisher("localhost:1883", "tadoku")
	p.newClient = func(*mqtt.ClientOptions) mqtt.Client { return client }

	err := p.Start(make(chan models.Notification))
	require.ErrorIs(t, err, assert.AnError)
	p.Stop()
}

func TestStop_Idempotent(t *testing.T) {
	t.Parallel()

	client := newMockMQTTClient()
	p, _ := startWithMock(t, client, "tadoku")

	p.Stop()
	p.Stop()
	assert.Equal(t, 1, client.disconnects())
	assert.False(t, client.IsConnected())
}

func TestPublishNotifications_ChannelClosed(t *testing.T) {
	t.Parallel()

	client := newMockMQTTClient()
	p, ns := startWithMock(t, client, "tadoku")

	close(ns)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not exit after channel close")
	}
}
