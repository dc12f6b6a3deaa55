package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/chroniclehub/ligature"
)

type (
	// Transport reports how long the transport has been running. ok is false
	// when it is stopped.
	Transport interface {
		Elapsed() (elapsed time.Duration, ok bool)
	}

	// ClockTick is sent by a running Clock. The model converts the elapsed
	// time to a step with the timing of the track it has, so a tempo change
	// never races with the clock goroutine.
	ClockTick struct {
		Elapsed time.Duration
		Running bool
	}

	// Clock polls a transport. The tracker grid uses a fine poll interval for
	// the active row, the arrangement a coarse one for its playhead.
	Clock struct {
		Transport    Transport
		PollInterval time.Duration
	}

	// Stopwatch is a Transport measuring time since Start. It is safe to use
	// from multiple goroutines.
	Stopwatch struct {
		mu      sync.Mutex
		started time.Time
		running bool
		now     func() time.Time
	}
)

// Tick reads the transport once.
func (c Clock) Tick() ClockTick {
	if c.Transport == nil {
		return ClockTick{}
	}
	d, ok := c.Transport.Elapsed()
	return ClockTick{Elapsed: d, Running: ok}
}

// Step returns the current step: floor(elapsed seconds * bpm / 60 * grid).
// ok is false when the transport is not running.
func (c Clock) Step(timing ligature.Timing) (step int, ok bool) {
	tick := c.Tick()
	if !tick.Running {
		return 0, false
	}
	return timing.DurationToStep(tick.Elapsed), true
}

// Run polls the transport every PollInterval until ctx is done, sending the
// ticks to out without blocking. Ticks are sent only while the transport is
// running, plus one tick when it stops.
func (c Clock) Run(ctx context.Context, out chan<- ClockTick) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	wasRunning := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick := c.Tick()
			if tick.Running || wasRunning {
				TrySend(out, tick)
			}
			wasRunning = tick.Running
		}
	}
}

// NewStopwatch returns a stopped Stopwatch. now is the time source; nil means
// time.Now.
func NewStopwatch(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now}
}

// Start (re)starts the stopwatch from zero.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = s.now()
	s.running = true
}

func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *Stopwatch) Elapsed() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0, false
	}
	return s.now().Sub(s.started), true
}
