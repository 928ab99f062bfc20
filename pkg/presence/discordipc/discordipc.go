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

// Package discordipc speaks the local Discord RPC protocol over the
// client's IPC socket or named pipe.
package discordipc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	opHandshake uint32 = 0
	opFrame     uint32 = 1
	opClose     uint32 = 2

	headerSize = 8
	// maxFrameSize bounds what a misbehaving peer can make us allocate.
	maxFrameSize = 64 * 1024
)

var (
	ErrNotRunning   = errors.New("discord is not running")
	ErrFrameTooBig  = errors.New("ipc frame exceeds size limit")
	ErrClosedByPeer = errors.New("discord closed the ipc connection")
)

// DialFunc opens a connection to the Discord client.
type DialFunc func(ctx context.Context) (net.Conn, error)

type Timestamps struct {
	Start int64 `json:"start,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
}

type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Activity struct {
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	State      string      `json:"state,omitempty"`
	Details    string      `json:"details,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

type handshake struct {
	ClientID string `json:"client_id"`
	V        int    `json:"v"`
}

type activityArgs struct {
	Activity *Activity `json:"activity"`
	PID      int       `json:"pid"`
}

type command struct {
	Args  any    `json:"args"`
	Cmd   string `json:"cmd"`
	Nonce string `json:"nonce"`
}

type response struct {
	Data  json.RawMessage `json:"data"`
	Cmd   string          `json:"cmd"`
	Evt   string          `json:"evt"`
	Nonce string          `json:"nonce"`
}

type errorData struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Client is a single IPC connection. It connects lazily and reconnects
// once per call if Discord was restarted in between.
type Client struct {
	conn     net.Conn
	dial     DialFunc
	clientID string
	pid      int
	mu       syncutil.Mutex
}

// NewClient returns a client for the Discord application clientID. A nil
// dial uses the platform default.
func NewClient(clientID string, dial DialFunc) *Client {
	if dial == nil {
		dial = Dial
	}
	return &Client{
		clientID: clientID,
		dial:     dial,
		pid:      os.Getpid(),
	}
}

func writeFrame(w io.Writer, op uint32, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal ipc payload: %w", err)
	}
	buf := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], op)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body))) //nolint:gosec // bounded by marshal size
	copy(buf[headerSize:], body)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write ipc frame: %w", err)
	}
	return nil
}

func readFrame(r io.Reader) (uint32, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("failed to read ipc header: %w", err)
	}
	op := binary.LittleEndian.Uint32(header[0:4])
	size := binary.LittleEndian.Uint32(header[4:8])
	if size > maxFrameSize {
		return 0, nil, ErrFrameTooBig
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("failed to read ipc body: %w", err)
	}
	return op, body, nil
}

func (c *Client) connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	if err := writeFrame(conn, opHandshake, handshake{V: 1, ClientID: c.clientID}); err != nil {
		_ = conn.Close()
		return err
	}
	if _, err := c.readResponse(conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("discord handshake failed: %w", err)
	}
	c.conn = conn
	log.Debug().Msg("connected to discord ipc")
	return nil
}

func (*Client) readResponse(conn net.Conn) (response, error) {
	op, body, err := readFrame(conn)
	if err != nil {
		return response{}, err
	}
	if op == opClose {
		var data errorData
		_ = json.Unmarshal(body, &data)
		return response{}, fmt.Errorf("%w: %s", ErrClosedByPeer, data.Message)
	}
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return response{}, fmt.Errorf("failed to decode ipc response: %w", err)
	}
	if resp.Evt == "ERROR" {
		var data errorData
		_ = json.Unmarshal(resp.Data, &data)
		return resp, fmt.Errorf("discord rejected %s: %s (%d)", resp.Cmd, data.Message, data.Code)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, cmd command) error {
	if c.conn == nil {
		if err := c.connect(ctx); err != nil {
			return err
		}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
		defer func() {
			if c.conn != nil {
				_ = c.conn.SetDeadline(time.Time{})
			}
		}()
	}
	if err := writeFrame(c.conn, opFrame, cmd); err != nil {
		c.drop()
		return err
	}
	if _, err := c.readResponse(c.conn); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, ErrClosedByPeer) {
			c.drop()
		}
		return err
	}
	return nil
}

func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// SetActivity replaces the rich presence activity. A nil activity clears
// it.
func (c *Client) SetActivity(ctx context.Context, activity *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := command{
		Cmd:   "SET_ACTIVITY",
		Nonce: uuid.NewString(),
		Args:  activityArgs{PID: c.pid, Activity: activity},
	}
	hadConn := c.conn != nil
	err := c.send(ctx, cmd)
	if err == nil || !hadConn || c.conn != nil {
		return err
	}
	// connection was dropped, Discord may have restarted
	log.Debug().Err(err).Msg("discord ipc write failed, reconnecting")
	cmd.Nonce = uuid.NewString()
	return c.send(ctx, cmd)
}

// ClearActivity removes the activity.
func (c *Client) ClearActivity(ctx context.Context) error {
	return c.SetActivity(ctx, nil)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = writeFrame(c.conn, opClose, struct{}{})
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close discord ipc: %w", err)
	}
	return nil
}
