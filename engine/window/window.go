package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/h2scape/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a native window the engine mounts on. It is an input.Surface: pointer, wheel and
// framebuffer resize callbacks are translated into input events for every listener.
// All methods must be called from the goroutine that created the window.
type Window interface {
	input.Surface

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SurfaceDescriptor returns the platform-specific descriptor for creating a wgpu surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	//
	// Returns:
	//   - bool: true if running
	IsRunning() bool

	// Close destroys the window. Listeners are not notified.
	//
	// Returns:
	//   - error: error if the window is not initialized
	Close() error

	// ProcessMessages runs the message loop until the window closes, calling the update
	// callback once per iteration.
	ProcessMessages()

	// Size returns the framebuffer size in pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)
}

type engineWindow struct {
	input.Dispatcher

	title string

	minWidth, minHeight int
	maxWidth, maxHeight int

	width  int
	height int

	internalWindow any

	onUpdate func()
}

var _ Window = &engineWindow{}

// NewWindow creates a window and its native counterpart. Panics if the platform window cannot
// be created.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Window: the window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		Dispatcher: input.NewDispatcher(),
		title:      "h2scape",
		minWidth:   320,
		minHeight:  240,
		maxWidth:   3840,
		maxHeight:  2160,
		width:      1280,
		height:     720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Size() (int, int) {
	return w.width, w.height
}

// resized records a new framebuffer size and notifies listeners.
func (w *engineWindow) resized(width, height int) {
	w.width, w.height = width, height
	w.Dispatch(input.Event{Type: input.Resize, Width: width, Height: height})
}
