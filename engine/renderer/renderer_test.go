package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/camera"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/Carmen-Shannon/h2scape/engine/model"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	frames     []Frame
	configured [][2]int
	err        error
	released   int
}

func (f *fakeBackend) Type() RendererBackendType { return BackendTypeTerminal }

func (f *fakeBackend) Configure(width, height int) {
	f.configured = append(f.configured, [2]int{width, height})
}

func (f *fakeBackend) Draw(frame *Frame) error {
	if f.err != nil {
		return f.err
	}
	cp := *frame
	cp.Items = append([]scene.Item(nil), frame.Items...)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeBackend) Release() { f.released++ }

// newTestCamera looks from (25,15,25) at (0,2,0).
func newTestCamera(aspect float32) camera.Camera {
	return camera.NewCamera(
		camera.WithAspect(aspect),
		camera.WithController(camera.NewCameraController()),
	)
}

func testScene() scene.Scene {
	s := scene.NewScene("test", scene.WithLights(light.NewLight(light.LightTypeAmbient)))
	box := model.Box(1, 1, 1)
	ball := model.Sphere(1, 8, 8)
	s.Add(scene.NewGroup("site").Add(
		scene.NewMeshNode("near_glass", ball, common.Material{Color: 0x88ccff, Opacity: 0.3}).At(10, 8, 10),
		scene.NewMeshNode("box", box, common.Opaque(0xff0000)).At(0, 2, 0),
		scene.NewMeshNode("far_glass", ball, common.Material{Color: 0x88ccff, Opacity: 0.3}).At(-10, 0, -10),
		scene.NewMeshNode("behind", box, common.Opaque(0x00ff00)).At(50, 28, 50),
		scene.NewMeshNode("invisible", box, common.Material{Color: 0xffffff}).At(0, 2, 0),
	))
	return s
}

func names(items []scene.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestRenderCullsAndOrders(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRenderer(fb, 800, 600)
	snap := testScene().Snapshot()

	require.NoError(t, r.Render(snap, newTestCamera(4.0/3)))
	require.Len(t, fb.frames, 1)

	assert.Equal(t, []string{"box", "far_glass", "near_glass"}, names(fb.frames[0].Items))
	assert.Len(t, fb.frames[0].Lights, 1)
	assert.Equal(t, FrameStats{Frames: 1, Drawn: 3, Culled: 2}, r.Stats())
}

func TestRenderWrapsBackendError(t *testing.T) {
	lost := errors.New("surface lost")
	fb := &fakeBackend{err: lost}
	r := NewRenderer(fb, 10, 10)

	err := r.Render(scene.Snapshot{}, newTestCamera(1))
	assert.ErrorIs(t, err, lost)
	assert.Zero(t, r.Stats().Frames)

	assert.Error(t, r.Render(scene.Snapshot{}, nil))
}

func TestResize(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRenderer(fb, 0, 0)
	assert.Empty(t, fb.configured)

	r.Resize(640, 480)
	r.Resize(640, 480)
	r.Resize(-1, 480)
	r.Resize(320, 0)

	assert.Equal(t, [][2]int{{640, 480}}, fb.configured)
	w, h := r.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestRelease(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRenderer(fb, 10, 10)
	r.Release()
	r.Release()

	assert.Equal(t, 1, fb.released)
	assert.ErrorIs(t, r.Render(scene.Snapshot{}, newTestCamera(1)), ErrReleased)
	r.Resize(20, 20)
	assert.Len(t, fb.configured, 1)
}

func TestInstanceOf(t *testing.T) {
	it := scene.Item{
		Material: common.Material{Color: 0xff0000, Emissive: 0x00ff00, EmissiveIntensity: 2, Opacity: 0.5, Metalness: 0.8, Roughness: 0.3},
	}
	common.Identity(it.World[:])

	inst := instanceOf(it)
	assert.Equal(t, [4]float32{1, 0, 0, 0.5}, inst.Color)
	assert.Equal(t, [4]float32{0, 1, 0, 2}, inst.Emissive)
	assert.Equal(t, [4]float32{0.8, 0.3, 0, 0}, inst.Surface)
	assert.Equal(t, it.World, inst.Model)
}

func TestParseBackendType(t *testing.T) {
	bt, ok := ParseBackendType("terminal")
	assert.True(t, ok)
	assert.Equal(t, BackendTypeTerminal, bt)
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())

	_, ok = ParseBackendType("vulkan")
	assert.False(t, ok)
}

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func TestTerminalDrawsVisibleItems(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	r := NewTerminalRenderer(screen)

	s := scene.NewScene("test")
	s.Add(scene.NewMeshNode("box", model.Box(1, 1, 1), common.Opaque(0xff0000)).At(0, 2, 0))
	s.Add(scene.NewMeshNode("behind", model.Box(1, 1, 1), common.Opaque(0x00ff00)).At(50, 28, 50))

	require.NoError(t, r.Render(s.Snapshot(), newTestCamera(80.0/48)))

	glyph, _, style, _ := screen.GetContent(40, 12)
	assert.Equal(t, '█', glyph)
	fg, _, _ := style.Decompose()
	red, green, _ := fg.RGB()
	assert.Greater(t, red, int32(0))
	assert.Zero(t, green)

	corner, _, _, _ := screen.GetContent(0, 0)
	assert.Equal(t, ' ', corner)
	assert.Equal(t, 1, r.Stats().Culled)
}

func TestTerminalDepthTest(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	r := NewTerminalRenderer(screen)

	// the glowing dot sits between the camera and the box
	s := scene.NewScene("test")
	s.Add(scene.NewMeshNode("box", model.Box(1, 1, 1), common.Opaque(0xff0000)).At(0, 2, 0))
	s.Add(scene.NewMeshNode("dot", model.Sphere(0.2, 8, 8), common.Glowing(0x00ffff, 2, 1)).At(12.5, 8.5, 12.5))

	require.NoError(t, r.Render(s.Snapshot(), newTestCamera(80.0/48)))

	glyph, _, _, _ := screen.GetContent(40, 12)
	assert.Equal(t, '*', glyph)
}

func TestTerminalResize(t *testing.T) {
	screen := newSimScreen(t, 40, 10)
	r := NewTerminalRenderer(screen)

	screen.SetSize(100, 30)
	r.Resize(screen.Size())
	w, h := r.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)
	assert.NoError(t, r.Render(testScene().Snapshot(), newTestCamera(100.0/60)))
}

func TestLightLevel(t *testing.T) {
	assert.InDelta(t, 0.35, lightLevel(nil), 1e-6)
	bright := []light.Light{
		light.NewLight(light.LightTypeDirectional, light.WithIntensity(10)),
		light.NewLight(light.LightTypeAmbient, light.WithEnabled(false)),
	}
	assert.InDelta(t, 1, lightLevel(bright), 1e-6)
}
