// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package server exposes simulation sessions over HTTP.
//
// Each session owns a Circuit, a host.Session to drive it and a background
// runner, which starts paused. Commands are posted as JSON to the exec
// endpoint, or sent as JSON frames over the session's websocket stream,
// which also carries the runner's step results.
//
//	POST   /v1/sessions                      create a session
//	DELETE /v1/sessions/:id                  delete a session
//	POST   /v1/sessions/:id/exec             run a host.Command
//	POST   /v1/sessions/:id/load             add a YAML netlist to the circuit
//	GET    /v1/sessions/:id/netlist          capture the circuit as YAML
//	POST   /v1/sessions/:id/run              resume the runner
//	POST   /v1/sessions/:id/pause            pause the runner
//	GET    /v1/sessions/:id/stream           websocket stream
//	PUT    /v1/sessions/:id/snapshots/:name  save the circuit to the store
//	POST   /v1/sessions/:id/snapshots/:name  load a stored snapshot
//	GET    /v1/snapshots                     list stored snapshots
//	GET    /v1/types                         describe the gate types
//	GET    /metrics                          prometheus metrics
//	GET    /healthz                          liveness
//
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/host"
	"github.com/db47h/cedarsim/runner"
	"github.com/db47h/cedarsim/store"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cedarsim_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cedarsim_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"route"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cedarsim_sessions_active",
		Help: "Number of live simulation sessions",
	})
)

// ErrTooManySessions is returned when the session limit is reached.
//
var ErrTooManySessions = errors.New("too many sessions")

// Config configures a Server.
//
type Config struct {
	// Catalog of gate types available to sessions. Required.
	Catalog *cs.Catalog
	// Store is an optional snapshot store.
	Store         *store.Store
	StepInterval  time.Duration
	StepsPerTick  int
	MaxSlotEvents int
	MaxSessions   int
	// CommandRate is the number of commands per second a session accepts,
	// with bursts of up to CommandBurst. Zero means unlimited.
	CommandRate  float64
	CommandBurst int
	Logger       *slog.Logger
}

type session struct {
	id     string
	host   *host.Session
	run    *runner.Runner
	limit  *rate.Limiter
	cancel context.CancelFunc
	done   chan struct{}
}

// Server manages simulation sessions.
//
type Server struct {
	cfg    Config
	log    *slog.Logger
	engine *gin.Engine

	mu       sync.Mutex
	sessions map[string]*session
	ctx      context.Context
	cancel   context.CancelFunc
}

// New returns a new server.
//
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = 10 * time.Millisecond
	}
	if cfg.MaxSlotEvents <= 0 {
		cfg.MaxSlotEvents = cs.DefaultMaxSlotEvents
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		log:      cfg.Logger.With("component", "server"),
		sessions: make(map[string]*session),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.engine = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
//
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware("cedarsim"), s.observe)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/types", s.handleTypes)
	v1.GET("/snapshots", s.handleListSnapshots)
	v1.POST("/sessions", s.handleCreate)

	ss := v1.Group("/sessions/:id", s.lookup)
	ss.DELETE("", s.handleDelete)
	ss.POST("/exec", s.handleExec)
	ss.POST("/load", s.handleLoad)
	ss.GET("/netlist", s.handleNetlist)
	ss.POST("/run", s.handleRun)
	ss.POST("/pause", s.handlePause)
	ss.GET("/stream", s.handleStream)
	ss.PUT("/snapshots/:name", s.handleSave)
	ss.POST("/snapshots/:name", s.handleRestore)
	return r
}

func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
}

// NewSession creates a new session and starts its runner, paused.
//
func (s *Server) NewSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return "", ErrTooManySessions
	}
	id := uuid.NewString()
	log := s.cfg.Logger.With("session", id)
	c := cs.NewCircuit(s.cfg.Catalog, cs.WithLogger(log), cs.WithMaxSlotEvents(s.cfg.MaxSlotEvents))
	ctx, cancel := context.WithCancel(s.ctx)
	ss := &session{
		id:     id,
		host:   host.NewSession(c, log),
		run:    runner.New(c, s.cfg.StepInterval, s.cfg.StepsPerTick, runner.WithLogger(log), runner.Paused()),
		limit:  rate.NewLimiter(rate.Inf, 0),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if s.cfg.CommandRate > 0 {
		burst := s.cfg.CommandBurst
		if burst < 1 {
			burst = 1
		}
		ss.limit = rate.NewLimiter(rate.Limit(s.cfg.CommandRate), burst)
	}
	go func() {
		defer close(ss.done)
		_ = ss.run.Run(ctx)
	}()
	s.sessions[id] = ss
	sessionsActive.Inc()
	s.log.Info("session created", "session", id)
	return id, nil
}

// DeleteSession stops and removes a session.
//
func (s *Server) DeleteSession(id string) bool {
	s.mu.Lock()
	ss := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ss == nil {
		return false
	}
	ss.cancel()
	<-ss.done
	sessionsActive.Dec()
	s.log.Info("session deleted", "session", id)
	return true
}

func (s *Server) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Close stops every session.
//
func (s *Server) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.DeleteSession(id)
	}
	s.cancel()
}
