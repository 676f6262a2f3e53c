// Package engine ties the facility builder, orbit camera, animation scheduler and renderer
// into a mountable visualization with a single disposer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/h2scape/engine/animation"
	"github.com/Carmen-Shannon/h2scape/engine/camera"
	"github.com/Carmen-Shannon/h2scape/engine/facility"
	"github.com/Carmen-Shannon/h2scape/engine/input"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/Carmen-Shannon/h2scape/engine/profiler"
	"github.com/Carmen-Shannon/h2scape/engine/renderer"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/Carmen-Shannon/h2scape/internal/logging"
)

var (
	// ErrNotMounted is returned by RenderFrame when the engine has nothing mounted.
	ErrNotMounted = errors.New("engine: not mounted")

	// ErrAlreadyMounted is returned by Mount while a previous mount is still live.
	ErrAlreadyMounted = errors.New("engine: already mounted")

	// ErrNoRendererFactory is returned by Mount when no renderer factory was configured.
	ErrNoRendererFactory = errors.New("engine: no renderer factory")
)

// Disposer releases everything a Mount acquired. Safe to call more than once.
type Disposer func()

// MountTarget is the surface the engine draws into and listens on.
type MountTarget interface {
	input.Surface

	// Size returns the drawable size in pixels or cells.
	Size() (width, height int)
}

// RendererFactory creates the renderer for a mount target.
type RendererFactory func(target MountTarget) (renderer.Renderer, error)

// Metrics receives the engine's frame and rebuild measurements.
// *observability.EngineCollector satisfies it.
type Metrics interface {
	ObserveFrame(backend string, d time.Duration, err error)
	ObserveRebuild(profile string, d time.Duration)
	SetInstanceCount(kind string, n int)
	SetDrawStats(drawn, culled int)
}

// Engine is the lifecycle manager of one facility visualization.
// Every mutation (parameter change, resize, frame) is serialized, so a frame never observes a
// half-applied change. Thread-safe.
type Engine interface {
	// Mount creates the renderer, the orbit camera controller, the lighting and the first
	// facility generation, then starts the animation scheduler and listens for resizes.
	// A nil target defers the build: it is logged and a no-op disposer is returned.
	//
	// Parameters:
	//   - target: the surface to draw into and receive input from
	//
	// Returns:
	//   - Disposer: unmounts the engine
	//   - error: ErrAlreadyMounted, ErrNoRendererFactory, or a renderer or build error
	Mount(target MountTarget) (Disposer, error)

	// SetParameters changes the facility counts. When the clamped counts differ from the live
	// generation's, the generation is disposed and rebuilt from scratch before SetParameters
	// returns. Before mount the counts are stored for the first build.
	//
	// Parameters:
	//   - ctx: cancels the rebuild
	//   - params: the requested counts
	//
	// Returns:
	//   - error: a build error
	SetParameters(ctx context.Context, params facility.Params) error

	// Resize updates the renderer output size and the camera aspect. Ignored before mount,
	// after unmount, and for non-positive sizes.
	//
	// Parameters:
	//   - width: new width
	//   - height: new height
	Resize(width, height int)

	// Unmount stops the scheduler, detaches every listener, disposes the generation, removes
	// the lights and releases the renderer. Safe to call more than once.
	Unmount()

	// RenderFrame runs one frame synchronously, for hosts that own their display loop.
	//
	// Returns:
	//   - error: ErrNotMounted, a frame panic, or the frame's render error
	RenderFrame() error

	// Generation returns the live facility generation, or nil.
	Generation() *facility.Generation

	// Camera returns the mounted camera, or nil.
	Camera() camera.Camera

	// Parameters returns the effective (clamped) counts.
	Parameters() facility.Params

	// Mounted reports whether the engine is mounted.
	Mounted() bool
}

type engine struct {
	// lifecycle serializes Mount and Unmount; mu guards everything a frame touches
	lifecycle *sync.Mutex
	mu        *sync.Mutex

	log         logging.Logger
	metrics     Metrics
	profile     facility.Profile
	params      facility.Params
	frameRate   float64
	maxUnits    int
	seed        int64
	seeded      bool
	workers     int
	clock       animation.Clock
	newRenderer RendererFactory
	profiling   bool

	mounted      bool
	scene        scene.Scene
	lights       []light.Light
	builder      facility.Builder
	controller   camera.CameraController
	camera       camera.Camera
	renderer     renderer.Renderer
	scheduler    animation.Scheduler
	profiler     *profiler.Profiler
	removeResize func()
	frameErr     error
}

var _ Engine = &engine{}

// NewEngine creates an unmounted engine for the wind profile with one unit of each kind.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Engine: the engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		lifecycle: &sync.Mutex{},
		mu:        &sync.Mutex{},
		log:       logging.Noop(),
		profile:   facility.WindProfile(),
		params:    facility.Params{PrimaryUnitCount: 1, ElectrolysisUnitCount: 1},
		frameRate: 60,
		maxUnits:  64,
		clock:     animation.ClockFunc(time.Now),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Mount(target MountTarget) (Disposer, error) {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := context.Background()
	if e.mounted {
		return nil, ErrAlreadyMounted
	}
	if target == nil {
		e.log.Warn(ctx, "mount target missing; facility build deferred")
		return func() {}, nil
	}
	if e.newRenderer == nil {
		return nil, ErrNoRendererFactory
	}

	r, err := e.newRenderer(target)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	width, height := target.Size()
	r.Resize(width, height)

	e.lights = facility.Lights()
	e.scene = scene.NewScene("h2scape", scene.WithLights(e.lights...))

	e.controller = camera.NewCameraController()
	e.controller.Attach(target)
	e.camera = camera.NewCamera(camera.WithController(e.controller))
	if width > 0 && height > 0 {
		e.camera.SetAspect(float32(width) / float32(height))
	}
	e.renderer = r

	builderOptions := []facility.BuilderOption{
		facility.WithProfile(e.profile),
		facility.WithLogger(e.log),
		facility.WithMaxUnitCount(e.maxUnits),
	}
	if e.seeded {
		builderOptions = append(builderOptions, facility.WithSeed(e.seed))
	}
	if e.workers > 0 {
		builderOptions = append(builderOptions, facility.WithWorkers(e.workers))
	}
	e.builder = facility.NewBuilder(e.scene, builderOptions...)

	if err := e.rebuild(ctx); err != nil {
		e.teardown()
		return nil, err
	}

	e.removeResize = target.AddListener(func(ev input.Event) {
		if ev.Type == input.Resize {
			e.Resize(ev.Width, ev.Height)
		}
	})

	if e.profiling {
		e.profiler = profiler.NewProfiler(e.log)
	}
	e.scheduler = animation.NewScheduler(e.frame,
		animation.WithFrameRate(e.frameRate),
		animation.WithClock(e.clock),
		animation.WithLogger(e.log),
	)
	e.scheduler.Start()
	e.mounted = true

	e.log.Info(ctx, "engine mounted",
		logging.String("profile", e.profile.Name),
		logging.String("backend", r.Type().String()),
		logging.Int("width", width),
		logging.Int("height", height),
	)
	return e.Unmount, nil
}

func (e *engine) SetParameters(ctx context.Context, params facility.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params = params
	if !e.mounted {
		return nil
	}
	effective, _ := params.Clamp(e.maxUnits)
	if g := e.builder.Current(); g != nil && g.Params() == effective {
		return nil
	}
	return e.rebuild(ctx)
}

func (e *engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted || width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	e.camera.SetAspect(float32(width) / float32(height))
}

func (e *engine) Unmount() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return
	}
	// frames that reach the lock from here on see an unmounted engine and return
	e.mounted = false
	sched := e.scheduler
	e.mu.Unlock()

	// Stop waits for the in-flight frame, which needs mu
	sched.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardown()
	e.log.Info(context.Background(), "engine unmounted")
}

// teardown releases every mounted resource in reverse order of construction. Caller must hold
// the mutex.
func (e *engine) teardown() {
	if e.removeResize != nil {
		e.removeResize()
		e.removeResize = nil
	}
	if e.controller != nil {
		e.controller.Dispose()
		e.controller = nil
	}
	if e.builder != nil {
		e.builder.Close()
		e.builder = nil
	}
	if e.scene != nil {
		for _, l := range e.lights {
			e.scene.RemoveLight(l)
		}
		e.scene.Clear()
		e.scene = nil
	}
	e.lights = nil
	if e.renderer != nil {
		e.renderer.Release()
		e.renderer = nil
	}
	e.camera = nil
	e.scheduler = nil
	e.profiler = nil
	e.frameErr = nil
}

func (e *engine) RenderFrame() error {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return ErrNotMounted
	}
	sched := e.scheduler
	e.mu.Unlock()

	if err := sched.Step(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameErr
}

func (e *engine) Generation() *facility.Generation {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.builder == nil {
		return nil
	}
	return e.builder.Current()
}

func (e *engine) Camera() camera.Camera {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera
}

func (e *engine) Parameters() facility.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, _ := e.params.Clamp(e.maxUnits)
	return p
}

func (e *engine) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// rebuild replaces the live generation with one built from the current parameters. Caller
// must hold the mutex.
func (e *engine) rebuild(ctx context.Context) error {
	start := e.clock.Now()
	g, err := e.builder.Build(ctx, e.params)
	if err != nil {
		return fmt.Errorf("rebuild facility: %w", err)
	}

	if e.metrics != nil {
		e.metrics.ObserveRebuild(e.profile.Name, e.clock.Now().Sub(start))
		for _, kind := range facility.Kinds() {
			e.metrics.SetInstanceCount(kind.String(), g.Count(kind))
		}
	}
	return nil
}

// frame is the scheduler callback: advance the generation, update the camera, draw one
// snapshot.
func (e *engine) frame(t float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted {
		return
	}

	start := e.clock.Now()
	if g := e.builder.Current(); g != nil {
		g.Animate(t)
	}
	e.camera.Update()

	err := e.renderer.Render(e.scene.Snapshot(), e.camera)
	e.frameErr = err
	if err != nil {
		e.log.Warn(context.Background(), "frame render failed", logging.Err(err))
	}

	if e.metrics != nil {
		e.metrics.ObserveFrame(e.renderer.Type().String(), e.clock.Now().Sub(start), err)
		stats := e.renderer.Stats()
		e.metrics.SetDrawStats(stats.Drawn, stats.Culled)
	}
	if e.profiler != nil {
		e.profiler.Tick()
	}
}
