package renderer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/camera"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
)

// Frame is one culled, ordered draw list handed to a backend.
type Frame struct {
	// Camera is the uniform the backend uploads for this frame.
	Camera camera.GPUCameraUniform

	// Items are the visible draws: opaque items first in scene order, then transparent items
	// sorted back to front.
	Items []scene.Item

	Lights     []light.Light
	Background common.Color
}

// FrameStats reports what the most recent Render drew.
type FrameStats struct {
	Frames uint64
	Drawn  int
	Culled int
}

// Renderer turns scene snapshots into pixels on some output surface.
// Renderers are safe for concurrent use, though frames are expected from one goroutine.
type Renderer interface {
	// Render culls the snapshot against the camera frustum, orders the survivors for blending,
	// and draws them through the backend.
	//
	// Parameters:
	//   - snap: the frame's scene snapshot
	//   - cam: the camera to view it through
	//
	// Returns:
	//   - error: a wrapped backend error, e.g. a lost surface; the next frame may succeed
	Render(snap scene.Snapshot, cam camera.Camera) error

	// Resize reconfigures the output surface. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels or cells
	//   - height: the new height in pixels or cells
	Resize(width, height int)

	// Size returns the current output size.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// Stats returns the counters of the most recent frame.
	//
	// Returns:
	//   - FrameStats: frame counters
	Stats() FrameStats

	// Type returns the backend the renderer draws through.
	Type() RendererBackendType

	// Release frees the backend's resources. Render returns ErrReleased afterwards.
	Release()
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu          *sync.Mutex
	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	stats         FrameStats
	released      bool

	// items and blended are reused across frames.
	items   []scene.Item
	blended []scene.Item

	pendingMSAA          *MSAASampleCount
	pendingPresentMode   *PresentMode
	forceFallbackAdapter bool
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing through an existing backend.
//
// Parameters:
//   - backend: the backend that draws frames
//   - width: the initial output width
//   - height: the initial output height
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backend RendererBackend, width, height int) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backend.Type(),
		backend:     backend,
	}
	r.resize(width, height)
	return r
}

// NewWGPURenderer creates a Renderer that draws to a GPU surface through WebGPU.
// Panics if no adapter or device can be acquired.
//
// Parameters:
//   - surface: the window providing the native surface descriptor and its framebuffer size
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewWGPURenderer(surface GPUSurface, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: BackendTypeWGPU,
	}
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}
	mode := PresentModeVSync
	if r.pendingPresentMode != nil {
		mode = *r.pendingPresentMode
	}
	r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, mode)
	r.resize(surface.Size())
	return r
}

func (r *renderer) Render(snap scene.Snapshot, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if cam == nil {
		return fmt.Errorf("render %s frame: nil camera", r.backendType)
	}

	frame := r.cull(snap, cam)
	if err := r.backend.Draw(frame); err != nil {
		return fmt.Errorf("render %s frame: %w", r.backendType, err)
	}
	r.stats.Frames++
	return nil
}

// cull builds the frame's draw list. Caller must hold the mutex.
func (r *renderer) cull(snap scene.Snapshot, cam camera.Camera) *Frame {
	frustum := cam.Frustum()
	eye := cam.Eye()

	r.items = r.items[:0]
	r.blended = r.blended[:0]
	for _, it := range snap.Items {
		if it.Mesh == nil || len(it.Mesh.Indices) == 0 || it.Material.Opacity <= 0 {
			continue
		}
		if !frustum.ContainsSphere(it.Center, it.Radius) {
			continue
		}
		if it.Material.Opacity < 1 {
			r.blended = append(r.blended, it)
			continue
		}
		r.items = append(r.items, it)
	}

	slices.SortStableFunc(r.blended, func(a, b scene.Item) int {
		da, db := a.Center.DistanceTo(eye), b.Center.DistanceTo(eye)
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		return 0
	})
	r.items = append(r.items, r.blended...)

	r.stats.Drawn = len(r.items)
	r.stats.Culled = len(snap.Items) - len(r.items)

	return &Frame{
		Camera:     cam.Uniform(),
		Items:      r.items,
		Lights:     snap.Lights,
		Background: snap.Background,
	}
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.resize(width, height)
}

// resize configures the backend if the size is usable and changed. Caller must hold the mutex
// or be constructing the renderer.
func (r *renderer) resize(width, height int) {
	if width <= 0 || height <= 0 || (width == r.width && height == r.height) {
		return
	}
	r.width, r.height = width, height
	r.backend.Configure(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Type() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.backend.Release()
	r.items = nil
	r.blended = nil
}
