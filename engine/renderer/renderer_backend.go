package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrReleased is returned by Render after Release.
var ErrReleased = errors.New("renderer: released")

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeTerminal selects the character-cell backend drawing to a tcell screen.
	BackendTypeTerminal
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// ParseBackendType maps a config name to a backend type.
//
// Parameters:
//   - name: "wgpu" or "terminal"
//
// Returns:
//   - RendererBackendType: the backend type
//   - bool: false if the name is unknown
func ParseBackendType(name string) (RendererBackendType, bool) {
	switch name {
	case "wgpu":
		return BackendTypeWGPU, true
	case "terminal":
		return BackendTypeTerminal, true
	default:
		return 0, false
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// GPUSurface is a window that WebGPU can present to.
type GPUSurface interface {
	// SurfaceDescriptor returns the platform-specific descriptor for creating a wgpu surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the framebuffer size in pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)
}

// RendererBackend draws prepared frames to one kind of output.
type RendererBackend interface {
	// Type returns the backend's type.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	Type() RendererBackendType

	// Configure (re)creates size-dependent resources such as the swapchain and depth buffer.
	// Only called with positive sizes.
	//
	// Parameters:
	//   - width: the output width
	//   - height: the output height
	Configure(width, height int)

	// Draw renders and presents one frame.
	//
	// Parameters:
	//   - frame: the culled, ordered draw list
	//
	// Returns:
	//   - error: an error if the frame could not be drawn or presented
	Draw(frame *Frame) error

	// Release frees every resource the backend holds.
	Release()
}
