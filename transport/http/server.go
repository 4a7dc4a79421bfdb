// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package http implements the optional distributed-bus network surface:
// a push/notify HTTP+WebSocket front door onto a Bus, letting a remote
// peer push descriptors in and subscribe to every descriptor accepted by
// the bus, as if the bus ran in its own process.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/dev-pro-jma/rebus/cache"
	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

func encodeValue(v []byte) string { return base64.StdEncoding.EncodeToString(v) }

func decodeValue(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// BusClient is the slice of the bus the HTTP transport depends on.
type BusClient interface {
	Push(agentID string, d *descriptor.Descriptor) bool
	Get(domain, selector string) (*descriptor.Descriptor, bool)
	Join(agent interface {
		Name() string
		FullConfigFingerprint() string
		OutputConfigFingerprint() string
		OnNewDescriptor(fromID, domain, uuid, selector string, requestID int) error
		OnIdle() bool
	}, domain string) string
}

// transportAgentID identifies descriptors pushed over HTTP when no
// per-connection identity is available.
const transportAgentID = "transport-http"

// pushRequest is the wire shape for POST /v1/descriptors.
type pushRequest struct {
	Domain     string   `json:"domain"`
	Selector   string   `json:"selector"`
	UUID       string   `json:"uuid"`
	Label      string   `json:"label"`
	ValueB64   string   `json:"value_b64"`
	Precursors []string `json:"precursors"`
}

// Server is the HTTP push/notify front door.
type Server struct {
	bus    BusClient
	logger logging.Logger
	router *mux.Router
	http   http.Handler

	// descCache fronts repeated GET /v1/descriptors/{domain}/{selector}
	// lookups from the same remote peer; a Descriptor never changes once
	// pushed, so there is no invalidation to worry about beyond TTL.
	descCache *cache.DescriptorCache

	notifyAgent *notifyAgent

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	upgrade websocket.Upgrader
}

// NewServer builds a Server bound to bus. Join must be called once before
// serving requests so the server can observe every descriptor the bus
// accepts.
func NewServer(bus BusClient, logger logging.Logger, allowedOrigins []string) *Server {
	s := &Server{
		bus:       bus,
		logger:    logger,
		descCache: cache.NewDescriptorCache(cache.NewMemoryCache(cache.DefaultCacheConfig()), cache.DefaultDescriptorCacheConfig()),
		clients:   make(map[*websocket.Conn]struct{}),
		upgrade: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.notifyAgent = &notifyAgent{broadcast: s.broadcast, get: bus.Get}

	// SkipClean keeps the "//" of a decoded selector such as "/raw/%AAAA"
	// from being collapsed into a redirect.
	r := mux.NewRouter().SkipClean(true)
	r.HandleFunc("/v1/descriptors", s.handlePush).Methods(http.MethodPost)
	r.HandleFunc("/v1/descriptors/{domain}/{selector:.*}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/v1/ws", s.handleWebsocket).Methods(http.MethodGet)
	s.router = r

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	s.http = c.Handler(r)

	return s
}

// Join registers the server's internal broadcast agent with the bus so
// every accepted descriptor fans out to connected WebSocket clients.
func (s *Server) Join(domain string) string {
	id := s.bus.Join(s.notifyAgent, domain)
	s.notifyAgent.setID(id)
	return id
}

// Handler returns the composed, CORS-wrapped http.Handler.
func (s *Server) Handler() http.Handler { return s.http }

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	value, err := decodeValue(req.ValueB64)
	if err != nil {
		http.Error(w, "invalid value_b64", http.StatusBadRequest)
		return
	}

	// A remote peer starting a fresh lineage (no precursors) may omit UUID
	// and let the server mint one, rather than coordinate ID generation
	// across processes.
	lineageUUID := req.UUID
	if lineageUUID == "" && len(req.Precursors) == 0 {
		lineageUUID = uuid.NewString()
	}

	d := descriptor.NewDescriptor(req.Domain, req.Selector, lineageUUID, req.Label, value, req.Precursors)
	accepted := s.bus.Push(transportAgentID, d)

	w.Header().Set("Content-Type", "application/json")
	if !accepted {
		w.WriteHeader(http.StatusConflict)
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"accepted": accepted})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	domain, selector := vars["domain"], vars["selector"]

	ctx := r.Context()
	d, ok := s.descCache.Get(ctx, domain, selector)
	if !ok {
		d, ok = s.bus.Get(domain, selector)
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = s.descCache.Set(ctx, d)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toWireDescriptor(d))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	go s.readLoop(conn)
}

// readLoop drains and discards client frames only to detect disconnects;
// this is a notify-only stream, not a duplex protocol.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcast(d *descriptor.Descriptor) {
	msg := toWireDescriptor(d)

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

type wireDescriptor struct {
	Domain     string   `json:"domain"`
	Selector   string   `json:"selector"`
	UUID       string   `json:"uuid"`
	Label      string   `json:"label"`
	ValueB64   string   `json:"value_b64"`
	Precursors []string `json:"precursors"`
}

func toWireDescriptor(d *descriptor.Descriptor) wireDescriptor {
	return wireDescriptor{
		Domain:     d.Domain,
		Selector:   d.Selector,
		UUID:       d.UUID,
		Label:      d.Label,
		ValueB64:   encodeValue(d.Value),
		Precursors: d.Precursors,
	}
}

// notifyAgent is a bus.Agent whose sole purpose is observing every
// descriptor the bus accepts and relaying it to broadcast. It never
// processes anything; OnNewDescriptor always reports the notification as
// handled.
type notifyAgent struct {
	mu        sync.Mutex
	id        string
	broadcast func(*descriptor.Descriptor)
	get       func(domain, selector string) (*descriptor.Descriptor, bool)
}

func (a *notifyAgent) setID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.id = id
}

func (a *notifyAgent) Name() string                   { return "transport-http-notify" }
func (a *notifyAgent) FullConfigFingerprint() string   { return "transport-http-notify" }
func (a *notifyAgent) OutputConfigFingerprint() string { return "transport-http-notify" }
func (a *notifyAgent) OnIdle() bool                    { return false }

func (a *notifyAgent) OnNewDescriptor(_, domain, _, selector string, _ int) error {
	if d, ok := a.get(domain, selector); ok {
		a.broadcast(d)
	}
	return nil
}

// Shutdown closes every connected WebSocket client.
func (s *Server) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	return nil
}
