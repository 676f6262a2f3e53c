// Package animation drives the engine's per-frame callback.
package animation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/h2scape/internal/logging"
)

// ErrFramePanic is returned by Step when the frame function panics.
var ErrFramePanic = errors.New("frame panicked")

// FrameFunc is called once per frame with the seconds elapsed since the scheduler first started.
type FrameFunc func(t float32)

// Clock supplies the time frames are measured against. time.Time values from time.Now carry a
// monotonic reading, so wall clock jumps never move animations backwards.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Scheduler runs a single recurring frame callback on its own goroutine.
type Scheduler interface {
	// Start spawns the frame loop. Does nothing when already running.
	Start()

	// Stop cancels the frame loop and waits for an in-flight frame to finish. No frame runs
	// after Stop returns. Safe to call more than once and before Start. Must not be called
	// from inside the frame function.
	Stop()

	// Step runs one frame synchronously on the caller's goroutine, for hosts that own their
	// display loop.
	//
	// Returns:
	//   - error: ErrFramePanic (wrapped) if the frame function panicked
	Step() error

	// SetFrameRate changes the loop's target rate. Takes effect immediately when running.
	//
	// Parameters:
	//   - fps: frames per second (defaults to 60 if <= 0)
	SetFrameRate(fps float64)

	// Running reports whether the frame loop is active.
	Running() bool

	// Frames returns the number of frames completed since construction.
	Frames() uint64
}

type scheduler struct {
	mu *sync.Mutex

	frame    FrameFunc
	interval time.Duration
	clock    Clock
	log      logging.Logger

	rateChannel chan time.Duration

	started time.Time
	running bool
	quit    chan struct{}
	wg      sync.WaitGroup

	// frameMu keeps Step and the loop from running frames concurrently
	frameMu sync.Mutex
	frames  atomic.Uint64
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a stopped scheduler running at 60 frames per second.
//
// Parameters:
//   - frame: the per-frame callback
//   - options: functional options
//
// Returns:
//   - Scheduler: the scheduler
func NewScheduler(frame FrameFunc, options ...SchedulerOption) Scheduler {
	s := &scheduler{
		mu:          &sync.Mutex{},
		frame:       frame,
		interval:    time.Second / 60,
		clock:       ClockFunc(time.Now),
		log:         logging.Noop(),
		rateChannel: make(chan time.Duration, 1),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	if s.started.IsZero() {
		s.started = s.clock.Now()
	}
	s.running = true
	s.quit = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.quit, s.interval)
}

func (s *scheduler) Stop() {
	s.signalQuit()
	s.wg.Wait()
}

func (s *scheduler) Step() error {
	s.mu.Lock()
	if s.started.IsZero() {
		s.started = s.clock.Now()
	}
	s.mu.Unlock()
	return s.runFrame()
}

func (s *scheduler) SetFrameRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	rate := time.Duration(float64(time.Second) / fps)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = rate
	if !s.running {
		return
	}
	// replace any pending update
	select {
	case s.rateChannel <- rate:
	default:
		select {
		case <-s.rateChannel:
		default:
		}
		s.rateChannel <- rate
	}
}

func (s *scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *scheduler) Frames() uint64 {
	return s.frames.Load()
}

// signalQuit closes the current quit channel once per Start.
func (s *scheduler) signalQuit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.quit)
}

// loop fires the frame at the configured rate until quit is closed. A panicking frame stops
// the scheduler.
func (s *scheduler) loop(quit <-chan struct{}, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case rate := <-s.rateChannel:
			ticker.Reset(rate)
		case <-ticker.C:
			// quit may have been closed while this tick was pending
			select {
			case <-quit:
				return
			default:
			}
			if err := s.runFrame(); err != nil {
				s.log.Error(context.Background(), "frame loop stopped", logging.Err(err))
				s.signalQuit()
				return
			}
		}
	}
}

func (s *scheduler) runFrame() (err error) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFramePanic, r)
		}
	}()

	s.mu.Lock()
	t := float32(s.clock.Now().Sub(s.started).Seconds())
	s.mu.Unlock()

	if s.frame != nil {
		s.frame(t)
	}
	s.frames.Add(1)
	return nil
}
