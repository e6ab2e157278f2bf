package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradesignal/internal/cache"
	"github.com/sawpanic/tradesignal/internal/metrics"
	"github.com/sawpanic/tradesignal/internal/state"
)

// snapshotCacheKey namespaces the /snapshot read cache entry; one entry
// covers the whole store since Snapshot() is already a single value.
const snapshotCacheKey = "snapshot"

// snapshotCacheTTL bounds how stale a /snapshot response may be. It's
// shorter than one poll cycle so a cache hit never outlives the state it
// was read from by more than a fraction of a cycle.
const snapshotCacheTTL = 2 * time.Second

// Server is the WebSocket boundary for spec §4.J, structured after the
// teacher's internal/interfaces/http Server: a mux.Router, a wrapped
// http.Server, and the same request-ID + logging middleware pair. The
// teacher's timeout/CORS/JSON-content-type middleware don't carry over —
// they assume a short-lived request/response cycle, not a long-lived
// upgraded connection.
type Server struct {
	router    *mux.Router
	server    *http.Server
	hub       *Hub
	store     *state.Store
	readCache *cache.Cache // optional; nil disables /snapshot response caching
	config    ServerConfig
}

// ServerConfig holds the broadcast server's run-time tunables.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig mirrors the teacher's local-only, env-overridable
// default (BROADCAST_PORT here rather than HTTP_PORT, since both servers
// may run side by side).
func DefaultServerConfig() ServerConfig {
	port := 8090
	if portStr := os.Getenv("BROADCAST_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || hostOnly(origin) == "localhost" || hostOnly(origin) == "127.0.0.1"
	},
}

func hostOnly(origin string) string {
	h, _, err := net.SplitHostPort(origin)
	if err != nil {
		return origin
	}
	return h
}

// NewServer builds a broadcast Server backed by hub and store, checking
// port availability the same way the teacher's NewServer does before
// committing to the listener.
func NewServer(config ServerConfig, hub *Hub, store *state.Store) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	s := &Server{
		router: mux.NewRouter(),
		hub:    hub,
		store:  store,
		config: config,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s, nil
}

// SetReadCache wires a Redis-backed response cache in front of /snapshot
// (spec §6 table: "quote/technicals read cache for the broadcast shell's
// HTTP handlers"). Nil disables caching and every /snapshot request reads
// the store directly, matching the nil-safe optional-dependency pattern
// used for the orchestrator's earnings cache.
func (s *Server) SetReadCache(c *cache.Cache) {
	s.readCache = c
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
	s.router.HandleFunc("/ws", s.handleSubscribe).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// handleSnapshot serves the current full state over plain HTTP for callers
// that don't want a persistent websocket. A hit in readCache is served
// as-is; a miss falls through to the store and repopulates the cache.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.readCache != nil {
		if raw, found, err := s.readCache.Get(r.Context(), snapshotCacheKey); err != nil {
			log.Warn().Err(err).Msg("snapshot read cache unavailable")
		} else if found {
			w.Write(raw)
			return
		}
	}

	snap := s.store.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"encode failed"}`)
		return
	}

	if s.readCache != nil {
		if err := s.readCache.Set(r.Context(), snapshotCacheKey, raw, snapshotCacheTTL); err != nil {
			log.Warn().Err(err).Msg("snapshot read cache write failed")
		}
	}

	w.Write(raw)
}

// handleSubscribe upgrades the request and registers the connection with
// the hub, which immediately queues a full_state snapshot (spec §4.J).
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	cancel := s.hub.Register(conn, s.store.Snapshot())
	defer cancel()

	// The connection is write-only from the server's perspective; read in a
	// loop purely to detect client-initiated close per gorilla/websocket's
	// documented pattern, discarding anything received.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","subscribers":%d}`, s.hub.SubscriberCount())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `{"error":"not found"}`)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).Str("remote", r.RemoteAddr).Msg("broadcast request")
	})
}

// Start runs the server; it blocks until Shutdown is called or the listener
// errors.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("broadcast server listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops accepting new connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
