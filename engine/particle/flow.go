// Package particle animates the decorative motion of a facility: glowing flow particles that
// travel along connection paths, and bubbles rising inside the electrolysis tanks.
package particle

import (
	"math/rand"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/chewxy/math32"
)

const (
	minSpeed   = 0.005
	speedRange = 0.005

	waveAmplitude = 0.2
	waveCycles    = 4 * math32.Pi

	emissiveBase      = 0.3
	emissiveAmplitude = 0.2
)

// PathID identifies a path registered with a FlowSystem.
type PathID int

// Path is a parametric curve over [0, 1]. *common.CatmullRom satisfies it.
type Path interface {
	Point(t float32) common.Vec3
}

// Particle is one flow particle. Position and Emissive are derived on every Tick.
type Particle struct {
	Path     PathID
	Progress float32 // [0, 1)
	Speed    float32 // progress per tick, [0.005, 0.010)
	Emissive float32
	Color    common.Color
	Position common.Vec3
}

// FlowSystem owns the flow particles of one scene generation. It is not safe for concurrent use;
// the frame goroutine is its only caller.
type FlowSystem struct {
	rng       *rand.Rand
	paths     []Path
	particles []Particle
}

// NewFlowSystem creates an empty flow system. A nil rng falls back to a time-independent
// fixed seed so tests stay deterministic.
//
// Parameters:
//   - rng: random source for particle speeds
//
// Returns:
//   - *FlowSystem: the flow system
func NewFlowSystem(rng *rand.Rand) *FlowSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &FlowSystem{rng: rng}
}

// AddPath registers a path and spawns count particles evenly spread along it, particle i at
// progress i/count.
//
// Parameters:
//   - path: the curve the particles follow
//   - count: number of particles
//   - color: particle color
//
// Returns:
//   - PathID: the new path's identifier
func (f *FlowSystem) AddPath(path Path, count int, color common.Color) PathID {
	id := PathID(len(f.paths))
	f.paths = append(f.paths, path)
	for i := 0; i < count; i++ {
		p := Particle{
			Path:     id,
			Progress: float32(i) / float32(count),
			Speed:    minSpeed + f.rng.Float32()*speedRange,
			Color:    color,
		}
		p.Position = f.position(p, 0)
		p.Emissive = emissive(p.Progress, 0)
		f.particles = append(f.particles, p)
	}
	return id
}

// Tick advances every particle by its speed, wrapping progress fractionally so a particle
// that overshoots the end keeps its excess, then recomputes position and glow.
//
// Parameters:
//   - t: seconds since the animation started
func (f *FlowSystem) Tick(t float32) {
	for i := range f.particles {
		p := &f.particles[i]
		p.Progress = Wrap(p.Progress + p.Speed)
		p.Position = f.position(*p, t)
		p.Emissive = emissive(p.Progress, t)
	}
}

// Particles returns the live particles. The slice must not be modified.
func (f *FlowSystem) Particles() []Particle {
	return f.particles
}

// Len returns the number of particles.
func (f *FlowSystem) Len() int {
	return len(f.particles)
}

// PathCount returns the number of registered paths.
func (f *FlowSystem) PathCount() int {
	return len(f.paths)
}

// Position returns the derived position of particle i at time t without advancing it.
//
// Parameters:
//   - i: particle index
//   - t: seconds since the animation started
//
// Returns:
//   - common.Vec3: the position, curve point plus vertical wave offset
func (f *FlowSystem) Position(i int, t float32) common.Vec3 {
	return f.position(f.particles[i], t)
}

func (f *FlowSystem) position(p Particle, t float32) common.Vec3 {
	pos := f.paths[p.Path].Point(p.Progress)
	pos.Y += math32.Sin(p.Progress*waveCycles+t) * waveAmplitude
	return pos
}

// Wrap returns the fractional part of a non-negative progress value, so 1.003 becomes 0.003.
func Wrap(progress float32) float32 {
	return progress - math32.Floor(progress)
}

func emissive(progress, t float32) float32 {
	return emissiveBase + math32.Sin(t*5+progress*10)*emissiveAmplitude
}
