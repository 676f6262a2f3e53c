package facility

import (
	"math/rand"

	"github.com/Carmen-Shannon/h2scape/internal/logging"
	"go.opentelemetry.io/otel/trace"
)

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*builder)

// WithProfile selects the facility variant.
//
// Parameters:
//   - p: the profile
//
// Returns:
//   - BuilderOption: option function to apply
func WithProfile(p Profile) BuilderOption {
	return func(b *builder) {
		if p.Unit != nil {
			b.profile = p
		}
	}
}

// WithRand sets the random source for particle speeds and bubble motion.
func WithRand(rng *rand.Rand) BuilderOption {
	return func(b *builder) {
		b.rng = rng
	}
}

// WithSeed seeds a fresh random source, making builds reproducible.
func WithSeed(seed int64) BuilderOption {
	return func(b *builder) {
		b.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the builder's logger.
func WithLogger(l logging.Logger) BuilderOption {
	return func(b *builder) {
		b.log = logging.OrNoop(l)
	}
}

// WithTracer replaces the global tracer builds and disposals are traced with.
func WithTracer(t trace.Tracer) BuilderOption {
	return func(b *builder) {
		if t != nil {
			b.tracer = t
		}
	}
}

// WithWorkers sets how many workers tessellate conduit tubes in parallel.
// Defaults to one less than the CPU count.
func WithWorkers(n int) BuilderOption {
	return func(b *builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithMaxUnitCount caps both facility counts. 0 disables the cap.
func WithMaxUnitCount(n int) BuilderOption {
	return func(b *builder) {
		b.maxUnits = max(n, 0)
	}
}

// WithBubblesPerUnit sets how many bubbles rise in each electrolysis tank. Defaults to 30.
func WithBubblesPerUnit(n int) BuilderOption {
	return func(b *builder) {
		if n >= 0 {
			b.bubblesPerUnit = n
		}
	}
}
