package renderer

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
)

const (
	// maxSplat bounds the half-extent in cells of one projected item.
	maxSplat = 12

	// cellAspect is the height-to-width ratio of a terminal cell.
	cellAspect = 2
)

// terminalRendererBackendImpl draws each item as a depth-tested splat of character cells
// around its projected bounding sphere.
type terminalRendererBackendImpl struct {
	mu     *sync.Mutex
	screen tcell.Screen

	width, height int
	depth         []float32
}

var _ RendererBackend = &terminalRendererBackendImpl{}

// NewTerminalRenderer creates a Renderer that previews the scene on a character grid. The
// screen must already be initialized; the renderer does not Fini it.
//
// Parameters:
//   - screen: the tcell screen to draw on
//
// Returns:
//   - Renderer: the renderer
func NewTerminalRenderer(screen tcell.Screen) Renderer {
	w, h := screen.Size()
	return NewRenderer(&terminalRendererBackendImpl{
		mu:     &sync.Mutex{},
		screen: screen,
	}, w, h)
}

func (t *terminalRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeTerminal
}

func (t *terminalRendererBackendImpl) Configure(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width, t.height = width, height
	t.depth = make([]float32, width*height)
}

func (t *terminalRendererBackendImpl) Draw(frame *Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bg := tcellColor(frame.Background, 1)
	t.screen.Fill(' ', tcell.StyleDefault.Background(bg))
	for i := range t.depth {
		t.depth[i] = math32.Inf(1)
	}

	vp := frame.Camera.ViewProj
	// The view rotation is orthonormal, so these row lengths are the projection's x and y scales.
	sx := common.V3(vp[0], vp[4], vp[8]).Len()
	sy := common.V3(vp[1], vp[5], vp[9]).Len()
	level := lightLevel(frame.Lights)

	for _, it := range frame.Items {
		clip, w := common.TransformPoint(vp[:], it.Center)
		if w <= 0 {
			continue
		}
		ndcZ := clip.Z / w
		cx := (clip.X/w + 1) / 2 * float32(t.width)
		cy := (1 - clip.Y/w) / 2 * float32(t.height)
		rx := min(it.Radius*sx/w*float32(t.width)/2, maxSplat)
		ry := min(it.Radius*sy/w*float32(t.height)/2, maxSplat/cellAspect)

		glyph, style := cellFor(it.Material, level, rx, bg)
		x0, x1 := int(math32.Floor(cx-rx)), int(math32.Floor(cx+rx))
		y0, y1 := int(math32.Floor(cy-ry)), int(math32.Floor(cy+ry))
		for y := max(y0, 0); y <= min(y1, t.height-1); y++ {
			for x := max(x0, 0); x <= min(x1, t.width-1); x++ {
				if rx >= 1 && ry >= 1 {
					dx, dy := (float32(x)+0.5-cx)/rx, (float32(y)+0.5-cy)/ry
					if dx*dx+dy*dy > 1 {
						continue
					}
				}
				idx := y*t.width + x
				if ndcZ >= t.depth[idx] {
					continue
				}
				t.depth[idx] = ndcZ
				t.screen.SetContent(x, y, glyph, nil, style)
			}
		}
	}

	t.screen.Show()
	return nil
}

func (t *terminalRendererBackendImpl) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depth = nil
}

// lightLevel folds the rig into one brightness factor in [0.35, 1].
func lightLevel(lights []light.Light) float32 {
	var sum float32
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		sum += l.Intensity() * l.Color().Luminance()
	}
	return common.Clamp(0.35+sum/8, 0.35, 1)
}

// cellFor picks the glyph and style of an item. Glowing items keep their emissive color
// regardless of lighting.
func cellFor(mat common.Material, level, radius float32, bg tcell.Color) (rune, tcell.Style) {
	style := tcell.StyleDefault.Background(bg)
	switch {
	case mat.Emissive != 0 && mat.EmissiveIntensity > 0:
		return '*', style.Foreground(tcellColor(mat.Emissive, 1))
	case mat.Opacity < 0.5:
		return '·', style.Foreground(tcellColor(mat.Color, level))
	case mat.Opacity < 1:
		return 'o', style.Foreground(tcellColor(mat.Color, level))
	case radius < 1:
		return '■', style.Foreground(tcellColor(mat.Color, level))
	default:
		return '█', style.Foreground(tcellColor(mat.Color, level))
	}
}

func tcellColor(c common.Color, level float32) tcell.Color {
	r, g, b := c.RGB()
	scale := func(v float32) int32 {
		return int32(math.Round(float64(common.Clamp(v*level, 0, 1) * 255)))
	}
	return tcell.NewRGBColor(scale(r), scale(g), scale(b))
}
