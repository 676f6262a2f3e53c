package engine

import (
	"github.com/Carmen-Shannon/h2scape/engine/animation"
	"github.com/Carmen-Shannon/h2scape/engine/facility"
	"github.com/Carmen-Shannon/h2scape/internal/logging"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfile selects the facility variant.
//
// Parameters:
//   - p: the facility profile
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfile(p facility.Profile) EngineBuilderOption {
	return func(e *engine) {
		if p.Unit != nil {
			e.profile = p
		}
	}
}

// WithParameters sets the counts of the first build.
//
// Parameters:
//   - p: the requested counts; clamped at build time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithParameters(p facility.Params) EngineBuilderOption {
	return func(e *engine) {
		e.params = p
	}
}

// WithFrameRate sets the animation rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.frameRate = fps
	}
}

// WithMaxUnitCount caps both facility counts to protect frame time. 0 disables the cap.
func WithMaxUnitCount(n int) EngineBuilderOption {
	return func(e *engine) {
		e.maxUnits = max(n, 0)
	}
}

// WithRendererFactory sets how Mount creates its renderer.
//
// Parameters:
//   - f: called once per Mount with the mount target
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererFactory(f RendererFactory) EngineBuilderOption {
	return func(e *engine) {
		e.newRenderer = f
	}
}

// WithLogger sets the engine's logger. It is passed on to the builder, scheduler and profiler.
func WithLogger(l logging.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.log = logging.OrNoop(l)
	}
}

// WithMetrics sets where frame and rebuild measurements are reported.
func WithMetrics(m Metrics) EngineBuilderOption {
	return func(e *engine) {
		e.metrics = m
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, frame rate and memory stats are logged at debug level
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profiling = enabled
	}
}

// WithSeed makes particle speeds and bubble motion reproducible.
func WithSeed(seed int64) EngineBuilderOption {
	return func(e *engine) {
		e.seed = seed
		e.seeded = true
	}
}

// WithClock replaces the scheduler's time source, for tests.
func WithClock(c animation.Clock) EngineBuilderOption {
	return func(e *engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithWorkers sets how many workers tessellate conduits during a build.
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.workers = n
	}
}
