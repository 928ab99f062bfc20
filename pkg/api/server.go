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

// Package api is the local JSON-RPC 2.0 API used by the desktop frontend
// and the CLI. Requests arrive over WebSocket or HTTP POST; session
// notifications are pushed to every WebSocket client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/methods"
	apimiddleware "github.com/Eroge-Abyss/tadoku/pkg/api/middleware"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models/requests"
	"github.com/Eroge-Abyss/tadoku/pkg/api/validation"
	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/Eroge-Abyss/tadoku/pkg/database"
	"github.com/Eroge-Abyss/tadoku/pkg/helpers/syncutil"
	"github.com/Eroge-Abyss/tadoku/pkg/presence"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const maxRequestSize = 1 << 20

var (
	JSONRPCErrorParseError = models.ErrorObject{
		Code:    -32700,
		Message: "Parse error",
	}
	JSONRPCErrorInvalidRequest = models.ErrorObject{
		Code:    -32600,
		Message: "Invalid Request",
	}
	JSONRPCErrorMethodNotFound = models.ErrorObject{
		Code:    -32601,
		Message: "Method not found",
	}
	JSONRPCErrorInvalidParams = models.ErrorObject{
		Code:    -32602,
		Message: "Invalid params",
	}
)

type MethodFunc func(requests.RequestEnv) (any, error)

// MethodMap is the registry of callable API methods.
type MethodMap struct {
	methods map[string]MethodFunc
	mu      syncutil.RWMutex
}

// NewMethodMap returns a map with every built-in method registered.
func NewMethodMap() *MethodMap {
	m := &MethodMap{methods: make(map[string]MethodFunc)}
	defaults := map[string]MethodFunc{
		models.MethodLaunch:         methods.HandleLaunch,
		models.MethodClose:          methods.HandleClose,
		models.MethodStop:           methods.HandleStop,
		models.MethodSession:        methods.HandleSession,
		models.MethodGames:          methods.HandleGames,
		models.MethodGamesSave:      methods.HandleGamesSave,
		models.MethodSettings:       methods.HandleSettings,
		models.MethodSettingsUpdate: methods.HandleSettingsUpdate,
		models.MethodVersion:        methods.HandleVersion,
	}
	for name, fn := range defaults {
		m.methods[name] = fn
	}
	return m
}

func (m *MethodMap) AddMethod(name string, fn MethodFunc) error {
	name = strings.ToLower(name)
	if name == "" || fn == nil {
		return errors.New("method name and handler are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[name]; ok {
		return fmt.Errorf("method already registered: %s", name)
	}
	m.methods[name] = fn
	return nil
}

func (m *MethodMap) GetMethod(name string) (MethodFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.methods[strings.ToLower(name)]
	return fn, ok
}

// Deps are the services API methods act on.
type Deps struct {
	Config   *config.Instance
	Games    database.GamesDBI
	Launcher requests.Launcher
	Presence presence.Presence
}

func errorFor(err error) models.ErrorObject {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return models.ErrorObject{Code: JSONRPCErrorInvalidParams.Code, Message: verr.Error()}
	case errors.Is(err, validation.ErrMissingParams), errors.Is(err, validation.ErrInvalidParams):
		return models.ErrorObject{Code: JSONRPCErrorInvalidParams.Code, Message: err.Error()}
	default:
		return models.ErrorObject{Code: -32000, Message: err.Error()}
	}
}

// processRequest runs one request and returns its response. Requests
// without an ID are notifications and get no response.
func processRequest(
	ctx context.Context,
	methodMap *MethodMap,
	deps Deps,
	req models.RequestObject,
	isLocal bool,
) *models.ResponseObject {
	if req.ID == nil {
		log.Debug().Str("method", req.Method).Msg("received notification, ignoring")
		return nil
	}

	resp := &models.ResponseObject{JSONRPC: "2.0", ID: *req.ID}
	if req.JSONRPC != "2.0" {
		log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
		errObj := JSONRPCErrorInvalidRequest
		resp.Error = &errObj
		return resp
	}

	fn, ok := methodMap.GetMethod(req.Method)
	if !ok {
		log.Warn().Str("method", req.Method).Msg("unknown method")
		errObj := JSONRPCErrorMethodNotFound
		resp.Error = &errObj
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, config.APIRequestTimeout)
	defer cancel()

	result, err := fn(requests.RequestEnv{
		Context:  ctx,
		Config:   deps.Config,
		Games:    deps.Games,
		Launcher: deps.Launcher,
		Presence: deps.Presence,
		Params:   req.Params,
		ID:       *req.ID,
		IsLocal:  isLocal,
	})
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Msg("error handling request")
		errObj := errorFor(err)
		resp.Error = &errObj
		return resp
	}
	resp.Result = result
	return resp
}

func parseRequest(msg []byte) (models.RequestObject, *models.ErrorObject) {
	if !json.Valid(msg) {
		return models.RequestObject{}, &JSONRPCErrorParseError
	}
	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil || req.Method == "" {
		return models.RequestObject{}, &JSONRPCErrorInvalidRequest
	}
	return req, nil
}

func errorResponse(errObj models.ErrorObject) models.ResponseObject {
	return models.ResponseObject{
		JSONRPC: "2.0",
		ID:      uuid.Nil,
		Error:   &errObj,
	}
}

func handlePostRequest(methodMap *MethodMap, deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		var resp *models.ResponseObject
		req, errObj := parseRequest(body)
		if errObj != nil {
			e := errorResponse(*errObj)
			resp = &e
		} else {
			resp = processRequest(r.Context(), methodMap, deps, req, apimiddleware.IsLoopbackAddr(r.RemoteAddr))
		}

		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error().Err(err).Msg("error writing response")
		}
	}
}

func writeSession(session *melody.Session, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("error marshalling response")
		return
	}
	if err := session.Write(data); err != nil {
		log.Error().Err(err).Msg("error sending response")
	}
}

func handleWSMessage(ctx context.Context, methodMap *MethodMap, deps Deps) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		// heartbeat
		if string(msg) == "ping" {
			if err := session.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
			return
		}

		req, errObj := parseRequest(msg)
		if errObj != nil {
			log.Error().Int("code", errObj.Code).Msg("invalid websocket message")
			writeSession(session, errorResponse(*errObj))
			return
		}

		isLocal := apimiddleware.IsLoopbackAddr(session.Request.RemoteAddr)
		// slow methods like launch with wait must not block the session
		go func() {
			if resp := processRequest(ctx, methodMap, deps, req, isLocal); resp != nil {
				writeSession(session, resp)
			}
		}()
	}
}

// broadcastNotifications pushes every notification to all WebSocket
// clients as a JSON-RPC notification.
func broadcastNotifications(ctx context.Context, session *melody.Melody, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			})
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification")
				continue
			}
			if err := session.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// Server is the HTTP server hosting the API.
type Server struct {
	deps      Deps
	methods   *MethodMap
	session   *melody.Melody
	limiter   *apimiddleware.KeyedRateLimiter
	wsLimiter *apimiddleware.KeyedRateLimiter
}

func NewServer(deps Deps, methodMap *MethodMap) *Server {
	if methodMap == nil {
		methodMap = NewMethodMap()
	}
	session := melody.New()
	session.Config.MaxMessageSize = maxRequestSize
	session.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	return &Server{
		deps:      deps,
		methods:   methodMap,
		session:   session,
		limiter:   apimiddleware.NewKeyedRateLimiter(nil),
		wsLimiter: apimiddleware.NewKeyedRateLimiter(nil),
	}
}

// Handler builds the router. ctx bounds requests handled over WebSocket.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(apimiddleware.LoopbackOnly)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*", "tauri://*", "http://tauri.localhost"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.session.HandleMessage(apimiddleware.WebSocketRateLimit(s.wsLimiter, handleWSMessage(ctx, s.methods, s.deps)))
	s.session.HandleDisconnect(func(session *melody.Session) {
		s.wsLimiter.Forget(session.Request.RemoteAddr)
	})

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})
	r.With(apimiddleware.HTTPRateLimit(s.limiter)).Post("/api", handlePostRequest(s.methods, s.deps))
	return r
}

// Serve runs the API on ln and pushes notifications to WebSocket clients
// until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener, notifications <-chan models.Notification) error {
	s.limiter.StartCleanup(ctx)
	s.wsLimiter.StartCleanup(ctx)
	go broadcastNotifications(ctx, s.session, notifications)

	srv := &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("api server listening")

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.session.Close(); err != nil {
		log.Debug().Err(err).Msg("error closing websocket sessions")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

// Start listens on the configured API address and serves until ctx is
// done.
func Start(ctx context.Context, deps Deps, notifications <-chan models.Notification) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", deps.Config.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", deps.Config.APIListen(), err)
	}
	return NewServer(deps, nil).Serve(ctx, ln, notifications)
}
