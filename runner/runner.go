// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package runner steps a circuit in the background on a wall-clock cadence.
//
// Every tick, the runner calls StepN on the circuit. Since the circuit
// serializes all its public methods, edits made by the host between ticks
// never interleave with a time slot. Step results are published to
// subscribers.
//
// When a slot stalls, the runner pauses itself and publishes the error. It
// is up to the host to fix the circuit (or call DestroyAllEvents) and
// Resume.
//
package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	cs "github.com/db47h/cedarsim"
)

var (
	stepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cedarsim_runner_steps_total",
		Help: "Total simulation steps run by background runners",
	})

	eventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cedarsim_runner_events_total",
		Help: "Total events processed by background runners",
	})

	stallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cedarsim_runner_stalls_total",
		Help: "Total stalled time slots seen by background runners",
	})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cedarsim_runner_dropped_updates_total",
		Help: "Updates dropped because a subscriber was not keeping up",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cedarsim_runner_tick_duration_seconds",
		Help:    "Duration of a runner tick in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
	})
)

// SubscriberBuffer is the channel capacity of a subscription. Updates sent
// to a full subscription are dropped.
//
const SubscriberBuffer = 64

// Update is published after every tick that processed events.
//
type Update struct {
	cs.StepResult
	// Err is non-nil if the tick stalled.
	Err error
}

// Runner steps a circuit in the background.
//
type Runner struct {
	c        *cs.Circuit
	interval time.Duration
	steps    int
	log      *slog.Logger

	mu     sync.Mutex
	paused bool
	subs   map[int]chan Update
	nextID int
}

// Option configures a Runner.
//
type Option func(*Runner)

// WithLogger sets the logger of the runner.
//
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// Paused makes the runner start paused.
//
func Paused() Option {
	return func(r *Runner) { r.paused = true }
}

// New returns a runner that calls c.StepN(stepsPerTick) every interval.
// stepsPerTick values below 1 are treated as 1.
//
func New(c *cs.Circuit, interval time.Duration, stepsPerTick int, opts ...Option) *Runner {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	r := &Runner{
		c:        c,
		interval: interval,
		steps:    stepsPerTick,
		log:      slog.New(slog.DiscardHandler),
		subs:     make(map[int]chan Update),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run runs the runner until ctx is done. It always returns ctx.Err().
// Subscriptions are closed when Run returns.
//
func (r *Runner) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	defer r.closeAll()

	r.log.Info("runner started", "interval", r.interval, "steps_per_tick", r.steps)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("runner stopped")
			return ctx.Err()
		case <-t.C:
			r.Tick()
		}
	}
}

// Tick runs one tick right away, unless the runner is paused. It returns
// the published update, if any.
//
func (r *Runner) Tick() (Update, bool) {
	if r.IsPaused() {
		return Update{}, false
	}
	start := time.Now()
	before := r.c.Stats()
	res, err := r.c.StepN(r.steps)
	tickDuration.Observe(time.Since(start).Seconds())
	after := r.c.Stats()
	stepsTotal.Add(float64(after.Steps - before.Steps))
	eventsTotal.Add(float64(res.Events))

	if err != nil {
		stallsTotal.Inc()
		r.Pause()
		r.log.Warn("runner paused", "time", res.Time, "err", err)
	}
	if res.Events == 0 && err == nil {
		return Update{}, false
	}
	u := Update{StepResult: res, Err: err}
	r.publish(u)
	return u, true
}

// Pause suspends stepping.
//
func (r *Runner) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

// Resume resumes stepping.
//
func (r *Runner) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
}

// IsPaused returns true if the runner is paused.
//
func (r *Runner) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Subscribe returns a channel on which updates are published and a function
// that cancels the subscription. The channel is closed on cancel or when Run
// returns.
//
func (r *Runner) Subscribe() (<-chan Update, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	ch := make(chan Update, SubscriberBuffer)
	r.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

func (r *Runner) publish(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- u:
		default:
			droppedTotal.Inc()
		}
	}
}

func (r *Runner) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
