package camera

import (
	"sync"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/input"
	"github.com/chewxy/math32"
)

// cameraControllerImpl is the orbit implementation of CameraController. The camera position is
// always target + FromSpherical(radius, theta, phi).
type cameraControllerImpl struct {
	mu *sync.Mutex

	target  common.Vec3
	initial common.Vec3

	// Spherical coordinates (offset from target)
	radius float32
	theta  float32
	phi    float32

	minRadius float32
	maxRadius float32
	minPhi    float32
	maxPhi    float32

	sensitivity float32
	zoomOut     float32
	zoomIn      float32

	state  DragState
	detach func()
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller looking at (0, 2, 0) from (25, 15, 25).
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:      &sync.Mutex{},
		target:  common.V3(0, 2, 0),
		initial: common.V3(25, 15, 25),

		minRadius: 5,
		maxRadius: 80,
		minPhi:    0.1,
		maxPhi:    math32.Pi - 0.1,

		sensitivity: 0.01,
		zoomOut:     1.1,
		zoomIn:      0.9,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius, cc.theta, cc.phi = cc.initial.Sub(cc.target).Spherical()
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.phi = common.Clamp(cc.phi, cc.minPhi, cc.maxPhi)
	return cc
}

func (cc *cameraControllerImpl) HandleEvent(ev input.Event) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if ev.Type == input.Wheel {
		factor := cc.zoomIn
		if ev.DeltaY > 0 {
			factor = cc.zoomOut
		}
		cc.radius = common.Clamp(cc.radius*factor, cc.minRadius, cc.maxRadius)
		return
	}

	var d Delta
	cc.state, d = Transition(cc.state, ev)
	if !d.Moved {
		return
	}
	cc.theta -= d.DX * cc.sensitivity
	cc.phi = common.Clamp(cc.phi-d.DY*cc.sensitivity, cc.minPhi, cc.maxPhi)
}

func (cc *cameraControllerImpl) Attach(surface input.Surface) {
	if surface == nil {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.detach != nil {
		return
	}
	cc.detach = surface.AddListener(cc.HandleEvent)
}

func (cc *cameraControllerImpl) Dispose() {
	cc.mu.Lock()
	detach := cc.detach
	cc.detach = nil
	cc.state = Idle
	cc.mu.Unlock()

	// the surface may be mid-dispatch into HandleEvent, so remove outside the lock
	if detach != nil {
		detach()
	}
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position()
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Theta() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.theta
}

func (cc *cameraControllerImpl) Phi() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.phi
}

func (cc *cameraControllerImpl) State() DragState {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.state
}

func (cc *cameraControllerImpl) Rig() Rig {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return Rig{Radius: cc.radius, Theta: cc.theta, Phi: cc.phi, Target: cc.target}
}

// position recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) position() common.Vec3 {
	return cc.target.Add(common.FromSpherical(cc.radius, cc.theta, cc.phi))
}
