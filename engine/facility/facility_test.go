package facility

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/layout"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T, host scene.Scene, options ...BuilderOption) Builder {
	t.Helper()
	b := NewBuilder(host, append([]BuilderOption{WithSeed(42), WithWorkers(2)}, options...)...)
	t.Cleanup(b.Close)
	return b
}

func TestBuildCounts(t *testing.T) {
	host := scene.NewScene("test")
	b := newTestBuilder(t, host)

	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 3, ElectrolysisUnitCount: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Count(PowerSource))
	assert.Equal(t, 1, g.Count(Substation))
	assert.Equal(t, 2, g.Count(Electrolysis))
	assert.Equal(t, 3, g.Count(Storage))
	assert.Equal(t, 3, g.Count(Distribution))

	assert.Equal(t, 1, g.PathCount(SourceToGrid))
	assert.Equal(t, 2, g.PathCount(GridToElectrolysis))
	assert.Equal(t, 2, g.PathCount(ElectrolysisToStorage))
	assert.Equal(t, 1, g.PathCount(StorageToDistribution))

	assert.Equal(t, 30+2*25+2*30+20, g.Flow().Len())
	assert.Equal(t, 2*30, g.Bubbles().Len())
	assert.Len(t, g.Rotors(), 3)
	assert.Empty(t, g.Panels())
	assert.Same(t, g, b.Current())
	assert.Equal(t, g.NodeCount(), host.NodeCount())
}

func TestPowerSourcesOnLine(t *testing.T) {
	b := newTestBuilder(t, scene.NewScene("test"))
	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 3, ElectrolysisUnitCount: 1})
	require.NoError(t, err)

	for i, inst := range g.Instances(PowerSource) {
		assert.Equal(t, i, inst.Index)
		assert.Equal(t, common.V3(-16+float32(i)*8, 0, -10), inst.Position)
	}

	// three turbines anchor the power line at their midpoint
	assert.Equal(t, common.V3(-8, 8, -10), g.Paths()[0].Points[0])
}

func TestRebuildIntoGrid(t *testing.T) {
	host := scene.NewScene("test")
	b := newTestBuilder(t, host)
	ctx := context.Background()

	_, err := b.Build(ctx, Params{PrimaryUnitCount: 3, ElectrolysisUnitCount: 2})
	require.NoError(t, err)
	g, err := b.Build(ctx, Params{PrimaryUnitCount: 8, ElectrolysisUnitCount: 2})
	require.NoError(t, err)

	require.Len(t, host.Roots(), 1)
	assert.Equal(t, 8, g.Count(PowerSource))
	assert.Equal(t, 3, layout.Columns(8))

	seen := map[common.Vec3]bool{}
	for _, inst := range g.Instances(PowerSource) {
		assert.False(t, seen[inst.Position], "duplicate position %v", inst.Position)
		seen[inst.Position] = true
	}
	assert.Equal(t, common.V3(-16, 8, -10), g.Paths()[0].Points[0])
}

func TestRebuildSameParamsKeepsNodeCount(t *testing.T) {
	host := scene.NewScene("test")
	b := newTestBuilder(t, host)
	ctx := context.Background()
	p := Params{PrimaryUnitCount: 4, ElectrolysisUnitCount: 3}

	_, err := b.Build(ctx, p)
	require.NoError(t, err)
	once := host.NodeCount()

	_, err = b.Build(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, once, host.NodeCount())
}

func TestProfilesProduceSameCounts(t *testing.T) {
	p := Params{PrimaryUnitCount: 6, ElectrolysisUnitCount: 2}
	wind, err := newTestBuilder(t, scene.NewScene("wind")).Build(context.Background(), p)
	require.NoError(t, err)
	solar, err := newTestBuilder(t, scene.NewScene("solar"), WithProfile(SolarProfile())).Build(context.Background(), p)
	require.NoError(t, err)

	for _, k := range Kinds() {
		assert.Equal(t, wind.Count(k), solar.Count(k), k.String())
	}
	assert.Equal(t, len(wind.Paths()), len(solar.Paths()))
	assert.Len(t, solar.Panels(), 6)
	assert.Empty(t, solar.Rotors())
	assert.Equal(t, "solar", solar.Profile())
}

func TestCountsAreClamped(t *testing.T) {
	b := newTestBuilder(t, scene.NewScene("test"), WithMaxUnitCount(4))

	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 0, ElectrolysisUnitCount: -3})
	require.NoError(t, err)
	assert.Equal(t, Params{PrimaryUnitCount: 1, ElectrolysisUnitCount: 1}, g.Params())

	g, err = b.Build(context.Background(), Params{PrimaryUnitCount: 10, ElectrolysisUnitCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, g.Count(PowerSource))
	assert.Equal(t, 2, g.Count(Electrolysis))
}

func TestClamp(t *testing.T) {
	p, capped := Params{PrimaryUnitCount: 100, ElectrolysisUnitCount: 0}.Clamp(64)
	assert.True(t, capped)
	assert.Equal(t, Params{PrimaryUnitCount: 64, ElectrolysisUnitCount: 1}, p)

	p, capped = Params{PrimaryUnitCount: 100, ElectrolysisUnitCount: 3}.Clamp(0)
	assert.False(t, capped)
	assert.Equal(t, 100, p.PrimaryUnitCount)
}

func TestBuildErrors(t *testing.T) {
	b := newTestBuilder(t, nil)
	_, err := b.Build(context.Background(), Params{})
	assert.ErrorIs(t, err, ErrNilScene)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	host := scene.NewScene("test")
	b = newTestBuilder(t, host)
	_, err = b.Build(ctx, Params{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, host.NodeCount())

	b.Close()
	_, err = b.Build(context.Background(), Params{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDisposeRemovesGeneration(t *testing.T) {
	host := scene.NewScene("test")
	b := newTestBuilder(t, host)
	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 2, ElectrolysisUnitCount: 2})
	require.NoError(t, err)

	b.Dispose(context.Background())
	b.Dispose(context.Background())

	assert.Nil(t, b.Current())
	assert.Zero(t, host.NodeCount())
	assert.Zero(t, g.Count(PowerSource))
}

func TestParticlesFollowConduits(t *testing.T) {
	b := newTestBuilder(t, scene.NewScene("test"))
	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 1, ElectrolysisUnitCount: 1})
	require.NoError(t, err)

	paths := g.Paths()
	for i, p := range g.Flow().Particles() {
		onCurve := paths[p.Path].Curve.Point(p.Progress)
		pos := g.Flow().Position(i, 0)
		assert.InDelta(t, onCurve.X, pos.X, 1e-5)
		assert.InDelta(t, onCurve.Z, pos.Z, 1e-5)
		assert.InDelta(t, onCurve.Y, pos.Y, 0.2+1e-5)
	}
}

func TestAnimateMovesOwnedNodes(t *testing.T) {
	b := newTestBuilder(t, scene.NewScene("test"))
	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 2, ElectrolysisUnitCount: 1})
	require.NoError(t, err)

	before := g.Rotors()[0].Rotation.X
	g.Animate(0)
	assert.InDelta(t, before+0.02, g.Rotors()[0].Rotation.X, 1e-6)
	// the second rotor gusts with a phase offset of 0.5 rad
	assert.Greater(t, g.Rotors()[1].Rotation.X, float32(0.02))

	g.Animate(0.5)
	for i, p := range g.Flow().Particles() {
		assert.Equal(t, p.Position, g.particleNodes[i].Position)
		assert.Equal(t, p.Emissive, g.particleNodes[i].Material.EmissiveIntensity)
	}
	for i, bub := range g.Bubbles().Bubbles() {
		assert.Equal(t, bub.Position, g.bubbleNodes[i].Position)
		assert.Equal(t, bub.Opacity, g.bubbleNodes[i].Material.Opacity)
	}
}

func TestPanelsSway(t *testing.T) {
	b := newTestBuilder(t, scene.NewScene("test"), WithProfile(SolarProfile()))
	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 2, ElectrolysisUnitCount: 1})
	require.NoError(t, err)

	g.Animate(10)
	for _, p := range g.Panels() {
		assert.LessOrEqual(t, p.Rotation.Y, float32(0.05))
		assert.GreaterOrEqual(t, p.Rotation.Y, float32(-0.05))
		assert.NotZero(t, p.Rotation.Y)
	}
}

func TestSharedMeshes(t *testing.T) {
	b := newTestBuilder(t, scene.NewScene("test"))
	g, err := b.Build(context.Background(), Params{PrimaryUnitCount: 5, ElectrolysisUnitCount: 5})
	require.NoError(t, err)

	towers := map[any]bool{}
	for _, inst := range g.Instances(PowerSource) {
		towers[inst.Node.Children()[0].Mesh] = true
	}
	assert.Len(t, towers, 1)
}

func TestProfileLookup(t *testing.T) {
	assert.Equal(t, []string{"solar", "wind"}, ProfileNames())
	p, ok := ProfileByName("solar")
	require.True(t, ok)
	assert.Equal(t, MotionPanel, p.Motion)
	_, ok = ProfileByName("hydro")
	assert.False(t, ok)
}

func TestLights(t *testing.T) {
	lights := Lights()
	require.Len(t, lights, 3)
	assert.Equal(t, light.LightTypeDirectional, lights[0].Type())
	assert.Equal(t, common.Color(0xfff4e6), lights[0].Color())
	assert.Equal(t, light.LightTypeAmbient, lights[2].Type())
}
