// Package stream serves a running world over HTTP. A chi router exposes the
// bodies and accepts forces; every step is pushed to websocket subscribers as
// a JSON frame.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server owns a world and steps it on a ticker. World is not safe for
// concurrent use, so every access goes through mu.
type Server struct {
	mu       sync.Mutex
	world    *world.World
	pool     *sim.FramePool
	hub      *Hub
	logger   *slog.Logger
	interval time.Duration
	forces   *rate.Limiter
}

const (
	defaultForceRate  = 120
	defaultForceBurst = 30
)

// NewServer wraps w. interval is the wall-clock time between steps.
func NewServer(w *world.World, interval time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Server{
		world:    w,
		pool:     sim.NewFramePool(w.Len()),
		hub:      NewHub(),
		logger:   logger,
		interval: interval,
		forces:   rate.NewLimiter(defaultForceRate, defaultForceBurst),
	}
}

// SetForceLimit bounds accepted force requests to perSecond with the given
// burst. Requests over the limit get 429. Call it before serving.
func (s *Server) SetForceLimit(perSecond float64, burst int) {
	s.forces = rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (s *Server) Hub() *Hub { return s.hub }

// Router returns the HTTP API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/bodies", s.handleBodies)
	r.Get("/bodies/{id}", s.handleBody)
	r.Post("/bodies/{id}/force", s.handleForce)
	r.Get("/ws", s.handleWS)
	return r
}

// Run starts the hub and steps the world until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run()
	defer s.hub.Stop()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step advances the world once and broadcasts the resulting frame.
func (s *Server) Step() sim.Frame {
	s.mu.Lock()
	start := time.Now()
	stats := s.world.Advance()
	bodies := s.world.SnapshotInto(s.pool.Get())
	frame := sim.Frame{
		Step:     s.world.Steps(),
		Time:     s.world.Time(),
		Bodies:   bodies,
		Stats:    stats,
		Energy:   s.world.TotalKineticEnergy(),
		Momentum: s.world.TotalMomentum(),
		Elapsed:  time.Since(start),
	}
	s.mu.Unlock()

	data, err := json.Marshal(frame)
	out := frame.Clone()
	s.pool.Put(bodies)
	if err != nil {
		s.logger.Error("encode frame", "step", frame.Step, "err", err)
		return out
	}
	s.hub.Broadcast(data)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

type healthResponse struct {
	Status  string  `json:"status"`
	Steps   int     `json:"steps"`
	Time    float64 `json:"time"`
	Bodies  int     `json:"bodies"`
	Clients int     `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := healthResponse{
		Status: "ok",
		Steps:  s.world.Steps(),
		Time:   s.world.Time(),
		Bodies: s.world.Len(),
	}
	s.mu.Unlock()
	resp.Clients = s.hub.ClientCount()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	bodies := s.world.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, bodies)
}

func bodyID(r *http.Request) (world.BodyID, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return world.BodyID(id), err
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	id, err := bodyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "body id must be an integer")
		return
	}

	s.mu.Lock()
	body, err := s.world.Body(id)
	s.mu.Unlock()
	if err != nil {
		s.writeWorldError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// handleForce applies a force to a body for the next step.
func (s *Server) handleForce(w http.ResponseWriter, r *http.Request) {
	id, err := bodyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "body id must be an integer")
		return
	}

	if !s.forces.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many force requests")
		return
	}

	var f vecmath.Vec2
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be {\"x\":..,\"y\":..}")
		return
	}
	if !f.IsFinite() {
		writeError(w, http.StatusBadRequest, "invalid_force", "force must be finite")
		return
	}

	s.mu.Lock()
	err = s.world.ApplyExternalForce(id, f)
	s.mu.Unlock()
	if err != nil {
		s.writeWorldError(w, err)
		return
	}
	s.logger.Debug("force applied", "body", id, "x", f.X, "y", f.Y)
	writeJSON(w, http.StatusAccepted, map[string]any{"body": id, "force": f})
}

func (s *Server) writeWorldError(w http.ResponseWriter, err error) {
	if errors.Is(err, world.ErrUnknownBody) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", err.Error())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}

	c := newClient(conn)
	if !s.hub.Register(c) {
		conn.Close()
		return
	}
	s.logger.Info("client connected", "client", c.ID, "remote", r.RemoteAddr)

	go s.hub.writePump(c)
	go s.hub.readPump(c)
}
