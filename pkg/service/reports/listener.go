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

// Package reports accepts playtime reports pushed over WebSocket by an
// external reading tracker and hands them to the session tracker.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/middleware"
	"github.com/Eroge-Abyss/tadoku/pkg/api/validation"
	"github.com/Eroge-Abyss/tadoku/pkg/service/playtime"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxConnections = 4
	DefaultReportsPerSec  = 20
	DefaultReportBurst    = 40
	maxMessageSize        = 4096
)

// Sink receives every well-formed report.
type Sink interface {
	HandleReport(r playtime.Report)
}

// A single delta over a day is a broken reporter, not reading time.
type wireReport struct {
	Time        *float64 `json:"time" validate:"required,gte=0,lte=86400"`
	ProcessPath string   `json:"process_path" validate:"required"`
}

// ParseReport decodes and validates one report message.
func ParseReport(msg []byte) (playtime.Report, error) {
	var w wireReport
	if err := json.Unmarshal(msg, &w); err != nil {
		return playtime.Report{}, fmt.Errorf("malformed report: %w", err)
	}
	if err := validation.DefaultValidator.Validate(&w); err != nil {
		return playtime.Report{}, fmt.Errorf("invalid report: %w", err)
	}
	return playtime.Report{
		ProcessPath: w.ProcessPath,
		Time:        *w.Time,
	}, nil
}

// Listener is an http.Handler upgrading every request to a report stream.
type Listener struct {
	sink     Sink
	sem      *semaphore.Weighted
	upgrader websocket.Upgrader
	limit    rate.Limit
	burst    int
}

type Option func(*Listener)

// WithMaxConnections bounds concurrently open report streams.
func WithMaxConnections(n int64) Option {
	return func(l *Listener) {
		l.sem = semaphore.NewWeighted(n)
	}
}

// WithRateLimit sets the per-connection report rate.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(l *Listener) {
		l.limit = limit
		l.burst = burst
	}
}

func NewListener(sink Sink, opts ...Option) *Listener {
	l := &Listener{
		sink:  sink,
		sem:   semaphore.NewWeighted(DefaultMaxConnections),
		limit: DefaultReportsPerSec,
		burst: DefaultReportBurst,
		upgrader: websocket.Upgrader{
			// reporters run as browser userscripts on arbitrary pages
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !l.sem.TryAcquire(1) {
		log.Warn().Str("addr", r.RemoteAddr).Msg("too many report connections")
		http.Error(w, "Too Many Connections", http.StatusServiceUnavailable)
		return
	}
	defer l.sem.Release(1)

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("report connection upgrade failed")
		return
	}
	stop := context.AfterFunc(r.Context(), func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		_ = conn.Close()
	}()

	log.Info().Str("addr", r.RemoteAddr).Msg("report client connected")
	l.readLoop(conn)
	log.Info().Str("addr", r.RemoteAddr).Msg("report client disconnected")
}

func (l *Listener) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	limiter := rate.NewLimiter(l.limit, l.burst)
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("report connection read ended")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if !limiter.Allow() {
			log.Warn().Msg("report rate limit exceeded, dropping report")
			continue
		}
		report, err := ParseReport(msg)
		if err != nil {
			log.Warn().Err(err).Msg("dropping report")
			continue
		}
		l.sink.HandleReport(report)
	}
}

// Serve accepts report connections on ln until ctx is done. Open streams
// are closed on shutdown.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           middleware.LoopbackOnly(l),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("report listener started")

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("report listener failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("report listener shutdown: %w", err)
	}
	return nil
}

// Start listens on addr and serves until ctx is done.
func Start(ctx context.Context, addr string, sink Sink, opts ...Option) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return NewListener(sink, opts...).Serve(ctx, ln)
}
