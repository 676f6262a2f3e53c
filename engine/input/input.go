// Package input defines the pointer, touch, wheel, and resize events the engine consumes, and the
// listener surface that windows and terminals expose them through.
package input

// EventType identifies the kind of input Event.
type EventType int

const (
	PointerDown EventType = iota
	PointerMove
	PointerUp
	PointerCancel
	TouchStart
	TouchMove
	TouchEnd
	Wheel
	Resize
)

func (t EventType) String() string {
	switch t {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case PointerCancel:
		return "pointercancel"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	case Wheel:
		return "wheel"
	case Resize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event is a single input occurrence in surface coordinates.
type Event struct {
	Type EventType

	// X and Y are the pointer or first-touch position in surface pixels (or cells).
	X, Y float32

	// DeltaY is the wheel delta; positive scrolls away from the user (zoom out).
	DeltaY float32

	// Touches is the number of active touch points for touch events.
	Touches int

	// Width and Height carry the new size for Resize events.
	Width, Height int
}

// Surface is anything that can deliver input events to listeners.
type Surface interface {
	// AddListener registers fn to receive every event delivered by the surface.
	//
	// Parameters:
	//   - fn: the listener callback
	//
	// Returns:
	//   - func(): removes the listener; safe to call more than once
	AddListener(fn func(Event)) (remove func())
}
