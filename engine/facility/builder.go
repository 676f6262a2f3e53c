package facility

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/model"
	"github.com/Carmen-Shannon/h2scape/engine/particle"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/Carmen-Shannon/h2scape/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Carmen-Shannon/h2scape/engine/facility"

var (
	// ErrNilScene is returned by Build when the builder has no host scene to insert into.
	ErrNilScene = errors.New("facility: nil host scene")

	// ErrClosed is returned by Build after Close.
	ErrClosed = errors.New("facility: builder closed")
)

// Builder constructs facility generations into a host scene, one at a time. Builds and
// disposals are serialized; a build disposes the previous generation before constructing the
// next, so two generations never coexist. Thread-safe.
type Builder interface {
	// Build disposes the current generation, then constructs a new one for params and inserts
	// it into the host scene. Counts are clamped, never rejected.
	//
	// Parameters:
	//   - ctx: cancels the build between stages
	//   - params: requested facility counts
	//
	// Returns:
	//   - *Generation: the new generation
	//   - error: ErrNilScene, ErrClosed, a context error, or a host scene error
	Build(ctx context.Context, params Params) (*Generation, error)

	// Dispose removes the current generation from the host scene and releases it.
	// Safe to call when nothing is built.
	//
	// Parameters:
	//   - ctx: carries the trace span
	Dispose(ctx context.Context)

	// Current returns the live generation, or nil.
	Current() *Generation

	// Profile returns the facility profile the builder builds.
	Profile() Profile

	// Close disposes the current generation and stops the tessellation workers.
	// Safe to call more than once.
	Close()
}

type builder struct {
	mu *sync.Mutex

	host    scene.Scene
	profile Profile
	rng     *rand.Rand
	log     logging.Logger
	tracer  trace.Tracer

	pool    worker.DynamicWorkerPool
	workers int

	maxUnits       int
	bubblesPerUnit int

	current *Generation
	closed  bool
}

var _ Builder = &builder{}

// NewBuilder creates a builder for the wind profile inserting into host.
//
// Parameters:
//   - host: the scene generations are inserted into
//   - options: functional options
//
// Returns:
//   - Builder: the builder
func NewBuilder(host scene.Scene, options ...BuilderOption) Builder {
	b := &builder{
		mu:             &sync.Mutex{},
		host:           host,
		profile:        WindProfile(),
		log:            logging.Noop(),
		tracer:         otel.Tracer(tracerName),
		workers:        max(runtime.NumCPU()-1, 1),
		bubblesPerUnit: 30,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	return b
}

func (b *builder) Build(ctx context.Context, params Params) (*Generation, error) {
	ctx, span := b.tracer.Start(ctx, "facility.Build", trace.WithAttributes(
		attribute.String("profile", b.profile.Name),
		attribute.Int("primary_requested", params.PrimaryUnitCount),
		attribute.Int("electrolysis_requested", params.ElectrolysisUnitCount),
	))
	defer span.End()

	g, err := b.build(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("nodes", g.NodeCount()))
	return g, nil
}

func (b *builder) build(ctx context.Context, params Params) (*Generation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.host == nil {
		return nil, ErrNilScene
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build facility: %w", err)
	}

	effective, capped := params.Clamp(b.maxUnits)
	if capped {
		b.log.Warn(ctx, "facility counts capped",
			logging.Int("primary_requested", params.PrimaryUnitCount),
			logging.Int("electrolysis_requested", params.ElectrolysisUnitCount),
			logging.Int("max_units", b.maxUnits),
		)
	}

	b.dispose()

	start := time.Now()
	g, err := b.assemble(ctx, effective)
	if err != nil {
		return nil, fmt.Errorf("build facility: %w", err)
	}
	if err := b.host.Add(g.root); err != nil {
		g.release()
		return nil, fmt.Errorf("insert facility: %w", err)
	}
	b.current = g

	b.log.Info(ctx, "facility built",
		logging.String("profile", b.profile.Name),
		logging.Int("primary", effective.PrimaryUnitCount),
		logging.Int("electrolysis", effective.ElectrolysisUnitCount),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("particles", g.flow.Len()),
		logging.Float("elapsed_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return g, nil
}

func (b *builder) Dispose(ctx context.Context) {
	_, span := b.tracer.Start(ctx, "facility.Dispose")
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispose()
}

func (b *builder) Current() *Generation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *builder) Profile() Profile {
	return b.profile
}

func (b *builder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.dispose()
	b.pool.Stop()
	b.closed = true
}

// dispose removes the current generation. Caller must hold the mutex.
func (b *builder) dispose() {
	if b.current == nil {
		return
	}
	if b.host != nil {
		b.host.Remove(b.current.root)
	}
	b.current.release()
	b.current = nil
}

// assemble constructs every node of a generation in build order without touching the host
// scene.
func (b *builder) assemble(ctx context.Context, p Params) (*Generation, error) {
	profile := b.profile
	kit := newKit(profile.Materials)
	g := &Generation{
		params:  p,
		profile: profile.Name,
		kit:     kit,
		root:    scene.NewGroup("facility_" + profile.Name),
	}

	sources := scene.NewGroup("power_sources")
	for i := 0; i < p.PrimaryUnitCount; i++ {
		u := profile.Unit(kit, i)
		u.Root.Position = profile.Source.Place(p.PrimaryUnitCount, i)
		sources.Add(u.Root)
		g.arena.add(PowerSource, u.Root)

		switch {
		case u.Moving == nil:
		case profile.Motion == MotionRotor:
			g.rotors = append(g.rotors, u.Moving)
		case profile.Motion == MotionPanel:
			g.panels = append(g.panels, u.Moving)
		}
	}

	grid := substation(kit, profile.GridZ)
	g.arena.add(Substation, grid)

	units := scene.NewGroup("electrolysis")
	for i := 0; i < p.ElectrolysisUnitCount; i++ {
		u := electrolysisUnit(kit, i, electrolysisX(p.ElectrolysisUnitCount, i), profile.SiteZ)
		units.Add(u)
		g.arena.add(Electrolysis, u)
	}

	storage := scene.NewGroup("storage")
	for i := 0; i < storageTanks; i++ {
		t := storageTank(kit, i, profile.SiteZ)
		storage.Add(t)
		g.arena.add(Storage, t)
	}

	distribution := scene.NewGroup("distribution")
	d := depot(kit, profile.SiteZ)
	distribution.Add(d)
	g.arena.add(Distribution, d)
	for i := 0; i < trucks; i++ {
		t := truck(kit, i, profile.SiteZ)
		distribution.Add(t)
		g.arena.add(Distribution, t)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	specs := conduits(profile, p)
	curves := make([]*common.CatmullRom, len(specs))
	for i, c := range specs {
		curves[i] = common.NewCatmullRom(c.points...)
	}
	tubes, err := b.tessellate(ctx, specs, curves)
	if err != nil {
		return nil, err
	}

	lines := scene.NewGroup("conduits")
	g.flow = particle.NewFlowSystem(b.rng)
	for i, c := range specs {
		lines.Add(scene.NewMeshNode(fmt.Sprintf("%s_%d", c.kind, i), tubes[i], c.material))
		id := g.flow.AddPath(curves[i], c.particles, c.particleColor)
		g.paths = append(g.paths, ConnectionPath{ID: id, Kind: c.kind, Points: c.points, Curve: curves[i]})
	}

	particles := scene.NewGroup("particles")
	dot := kit.Sphere(0.02, 8, 8)
	for _, pt := range g.flow.Particles() {
		n := scene.NewMeshNode("particle", dot, common.Glowing(pt.Color, pt.Emissive, 0.8))
		n.Position = pt.Position
		particles.Add(n)
		g.particleNodes = append(g.particleNodes, n)
	}

	g.bubbles = particle.NewBubbleField(b.rng)
	for i := 0; i < p.ElectrolysisUnitCount; i++ {
		g.bubbles.Spawn(electrolysisX(p.ElectrolysisUnitCount, i), profile.SiteZ, b.bubblesPerUnit)
	}
	bubbles := scene.NewGroup("bubbles")
	ball := kit.Sphere(1, 8, 8)
	for _, bub := range g.bubbles.Bubbles() {
		n := scene.NewMeshNode("bubble", ball, common.Material{Color: bub.Color, Opacity: bub.Opacity, Roughness: 0.1}).
			Scaled(bub.Size)
		n.Position = bub.Position
		bubbles.Add(n)
		g.bubbleNodes = append(g.bubbleNodes, n)
	}

	g.root.Add(sources, grid, units, storage, distribution, lines, particles, bubbles)
	return g, nil
}

// tessellate builds the conduit tubes on the worker pool and joins them with a barrier.
// pool.Wait() blocks until workers idle out, so a WaitGroup marks this batch's completion.
func (b *builder) tessellate(ctx context.Context, specs []conduit, curves []*common.CatmullRom) ([]*model.Mesh, error) {
	tubes := make([]*model.Mesh, len(specs))
	var wg sync.WaitGroup
	for i, c := range specs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: c.kind,
			Do: func() (any, error) {
				defer wg.Done()
				tube := model.Tube(curves[i], c.segments, c.radius, c.radialSegments)
				tube.Name = fmt.Sprintf("%s_%d", c.kind, i)
				tubes[i] = tube
				return tube, nil
			},
		})
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tubes, nil
}
