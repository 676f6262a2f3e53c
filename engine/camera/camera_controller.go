package camera

import (
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/input"
)

// CameraController is an orbit rig around a look-at target, driven by pointer drags, single
// touch drags, and the wheel. Controllers own positional state; the Camera reads from its
// controller and computes matrices. Safe for concurrent use: input listeners and the frame
// loop may call it from different goroutines.
type CameraController interface {
	// HandleEvent feeds one input event through the drag state machine and the wheel zoom.
	//
	// Parameters:
	//   - ev: the input event
	HandleEvent(ev input.Event)

	// Attach registers the controller as a listener on surface. Attaching an already attached
	// controller does nothing.
	//
	// Parameters:
	//   - surface: the input surface to listen on
	Attach(surface input.Surface)

	// Dispose removes every listener registered by Attach and resets the drag state.
	// Safe to call more than once.
	Dispose()

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: target plus the spherical offset
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// SetTarget moves the look-at point, keeping the spherical offset.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target common.Vec3)

	// Radius returns the current distance from the target.
	Radius() float32

	// Theta returns the azimuth around +Y in radians.
	Theta() float32

	// Phi returns the polar angle from +Y in radians.
	Phi() float32

	// State returns the current drag state.
	State() DragState

	// Rig returns a copy of the spherical rig.
	//
	// Returns:
	//   - Rig: radius, theta, phi, and target
	Rig() Rig
}

// Rig is the spherical camera state.
type Rig struct {
	Radius float32
	Theta  float32
	Phi    float32
	Target common.Vec3
}

// DragState is the drag state machine's state. The zero value is Idle.
type DragState struct {
	Dragging     bool
	LastX, LastY float32
}

// Idle is the state with no drag in progress.
var Idle = DragState{}

// Dragging returns the drag state anchored at (x, y).
func Dragging(x, y float32) DragState {
	return DragState{Dragging: true, LastX: x, LastY: y}
}

// Delta is the pointer movement produced by a transition.
type Delta struct {
	DX, DY float32
	Moved  bool
}

// Transition is the pure drag state machine. Wheel and resize events leave the state unchanged;
// touch events with more than one touch point are ignored.
//
// Parameters:
//   - state: the current state
//   - ev: the input event
//
// Returns:
//   - DragState: the next state
//   - Delta: pointer movement since the last position while dragging
func Transition(state DragState, ev input.Event) (DragState, Delta) {
	switch ev.Type {
	case input.PointerDown:
		return Dragging(ev.X, ev.Y), Delta{}
	case input.TouchStart:
		if ev.Touches != 1 {
			return state, Delta{}
		}
		return Dragging(ev.X, ev.Y), Delta{}
	case input.TouchMove:
		if ev.Touches != 1 {
			return state, Delta{}
		}
		fallthrough
	case input.PointerMove:
		if !state.Dragging {
			return state, Delta{}
		}
		d := Delta{DX: ev.X - state.LastX, DY: ev.Y - state.LastY, Moved: true}
		return Dragging(ev.X, ev.Y), d
	case input.PointerUp, input.PointerCancel, input.TouchEnd:
		return Idle, Delta{}
	}
	return state, Delta{}
}
