package camera

import (
	"github.com/Carmen-Shannon/h2scape/common"
)

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - x: X coordinate of the target
//   - y: Y coordinate of the target
//   - z: Z coordinate of the target
//
// Returns:
//   - CameraControllerOption: functional option to set the target
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = common.V3(x, y, z)
	}
}

// WithInitialPosition sets the starting camera position. It is converted to spherical
// coordinates relative to the target once all options are applied.
//
// Parameters:
//   - x, y, z: world-space camera position
//
// Returns:
//   - CameraControllerOption: functional option to set the initial position
func WithInitialPosition(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.initial = common.V3(x, y, z)
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - lo: closest allowed distance to the target
//   - hi: farthest allowed distance
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius, cc.maxRadius = lo, hi
	}
}

// WithPhiBounds sets the polar angle limits in radians.
//
// Parameters:
//   - lo: smallest polar angle (looking down from above)
//   - hi: largest polar angle
//
// Returns:
//   - CameraControllerOption: functional option to set the phi bounds
func WithPhiBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minPhi, cc.maxPhi = lo, hi
	}
}

// WithDragSensitivity sets the radians of rotation per pixel of drag.
func WithDragSensitivity(k float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = k
	}
}

// WithZoomFactors sets the radius multipliers for wheel-out and wheel-in steps.
//
// Parameters:
//   - out: multiplier applied when the wheel delta is positive
//   - in: multiplier applied otherwise
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom factors
func WithZoomFactors(out, in float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomOut, cc.zoomIn = out, in
	}
}
