// Package server exposes the thin HTTP surface around the room core:
// room allocation, the websocket endpoint, health and debug routes.
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/minqi/rush24/internal/game"
	"github.com/minqi/rush24/internal/room"
	"github.com/minqi/rush24/internal/stats"
)

type Server struct {
	dir       *room.Directory
	log       zerolog.Logger
	version   string
	buildTime string

	upgrader websocket.Upgrader

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

func New(dir *room.Directory, version, buildTime string, log zerolog.Logger) *Server {
	return &Server{
		dir:       dir,
		log:       log,
		version:   version,
		buildTime: buildTime,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/create-room", s.handleCreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/stats/daily", s.handleDailyStats).Methods(http.MethodGet)
	r.HandleFunc("/debug/rooms", s.handleDebugRooms).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if !s.allow(clientIP(r)) {
		http.Error(w, "too many rooms", http.StatusTooManyRequests)
		return
	}
	code := s.dir.Allocate()
	s.log.Info().Str("room", code).Str("from", r.RemoteAddr).Msg("room allocated")
	writeJSON(w, map[string]string{"room": code})
}

// handleWS upgrades the connection and hands it to the room directory.
// The room code is required and normalized; the display name defaults to
// Guest and is truncated like everywhere else.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("room")))
	if code == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}
	name := game.TruncateName(r.URL.Query().Get("name"))
	if name == "" {
		name = "Guest"
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("from", r.RemoteAddr).Msg("ws upgrade failed")
		return
	}
	id := s.dir.Join(code, name, conn)
	s.log.Info().Str("room", code).Str("player", id).Str("name", name).Str("from", r.RemoteAddr).Msg("ws connected")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"version": s.version, "time": s.buildTime})
}

func (s *Server) handleDailyStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, stats.Get())
}

func (s *Server) handleDebugRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"active": s.dir.Active(),
		"codes":  s.dir.Codes(),
	})
}

// allow applies a small per-IP budget to room allocation.
func (s *Server) allow(ip string) bool {
	s.limiterMu.Lock()
	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Second), 5)
		s.limiters[ip] = lim
	}
	s.limiterMu.Unlock()
	return lim.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
