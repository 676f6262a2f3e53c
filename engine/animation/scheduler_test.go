package animation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStepPassesElapsedSeconds(t *testing.T) {
	clock := newFakeClock()
	var got []float32
	s := NewScheduler(func(t float32) { got = append(got, t) }, WithClock(clock))

	require.NoError(t, s.Step())
	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, s.Step())

	assert.Equal(t, []float32{0, 1.5}, got)
	assert.Equal(t, uint64(2), s.Frames())
	assert.False(t, s.Running())
}

func TestStopIsSynchronous(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler(func(float32) {
		calls.Add(1)
		time.Sleep(time.Millisecond)
	}, WithFrameRate(500))

	s.Start()
	s.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())
	stopped := calls.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())

	s.Stop()
}

func TestStopBeforeStart(t *testing.T) {
	s := NewScheduler(nil)
	s.Stop()
	assert.False(t, s.Running())
}

func TestRestartKeepsTimeOrigin(t *testing.T) {
	clock := newFakeClock()
	var last atomic.Value
	s := NewScheduler(func(t float32) { last.Store(t) }, WithClock(clock), WithFrameRate(500))

	s.Start()
	s.Stop()
	clock.Advance(2 * time.Second)

	require.NoError(t, s.Step())
	assert.Equal(t, float32(2), last.Load())
}

func TestPanickingFrameStopsLoop(t *testing.T) {
	s := NewScheduler(func(float32) { panic("boom") }, WithFrameRate(500))

	s.Start()
	require.Eventually(t, func() bool { return !s.Running() }, 2*time.Second, time.Millisecond)
	s.Stop()
	assert.Zero(t, s.Frames())
}

func TestStepRecoversPanic(t *testing.T) {
	s := NewScheduler(func(float32) { panic("boom") })
	err := s.Step()
	assert.ErrorIs(t, err, ErrFramePanic)
	assert.Contains(t, err.Error(), "boom")
}

func TestSetFrameRateWhileRunning(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler(func(float32) { calls.Add(1) }, WithFrameRate(1))
	s.Start()
	defer s.Stop()

	s.SetFrameRate(1000)
	require.Eventually(t, func() bool { return calls.Load() >= 5 }, 2*time.Second, time.Millisecond)
}
