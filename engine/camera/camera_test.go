package camera

import (
	"testing"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/input"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got common.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta)
	assert.InDelta(t, want.Y, got.Y, delta)
	assert.InDelta(t, want.Z, got.Z, delta)
}

func TestDefaultRigMatchesInitialPosition(t *testing.T) {
	cc := NewCameraController()

	assertVec(t, common.V3(0, 2, 0), cc.Target(), 1e-6)
	assertVec(t, common.V3(25, 15, 25), cc.Position(), 1e-3)
	assert.InDelta(t, math32.Sqrt(25*25+13*13+25*25), cc.Radius(), 1e-3)
	assert.Equal(t, Idle, cc.State())
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name  string
		state DragState
		ev    input.Event
		want  DragState
		delta Delta
	}{
		{"pointer down starts drag", Idle, input.Event{Type: input.PointerDown, X: 3, Y: 4}, Dragging(3, 4), Delta{}},
		{"move while idle is ignored", Idle, input.Event{Type: input.PointerMove, X: 9, Y: 9}, Idle, Delta{}},
		{"move while dragging", Dragging(3, 4), input.Event{Type: input.PointerMove, X: 5, Y: 1}, Dragging(5, 1), Delta{DX: 2, DY: -3, Moved: true}},
		{"pointer up ends drag", Dragging(3, 4), input.Event{Type: input.PointerUp}, Idle, Delta{}},
		{"cancel ends drag", Dragging(3, 4), input.Event{Type: input.PointerCancel}, Idle, Delta{}},
		{"single touch starts drag", Idle, input.Event{Type: input.TouchStart, X: 1, Y: 1, Touches: 1}, Dragging(1, 1), Delta{}},
		{"pinch start is ignored", Idle, input.Event{Type: input.TouchStart, X: 1, Y: 1, Touches: 2}, Idle, Delta{}},
		{"pinch move is ignored", Dragging(1, 1), input.Event{Type: input.TouchMove, X: 8, Y: 8, Touches: 2}, Dragging(1, 1), Delta{}},
		{"single touch move", Dragging(1, 1), input.Event{Type: input.TouchMove, X: 2, Y: 3, Touches: 1}, Dragging(2, 3), Delta{DX: 1, DY: 2, Moved: true}},
		{"touch end ends drag", Dragging(1, 1), input.Event{Type: input.TouchEnd}, Idle, Delta{}},
		{"wheel keeps drag", Dragging(1, 1), input.Event{Type: input.Wheel, DeltaY: 1}, Dragging(1, 1), Delta{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := Transition(tt.state, tt.ev)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.delta, d)
		})
	}
}

func TestDragRotates(t *testing.T) {
	cc := NewCameraController()
	theta, phi := cc.Theta(), cc.Phi()

	cc.HandleEvent(input.Event{Type: input.PointerDown, X: 100, Y: 100})
	cc.HandleEvent(input.Event{Type: input.PointerMove, X: 110, Y: 105})

	assert.InDelta(t, theta-0.1, cc.Theta(), 1e-5)
	assert.InDelta(t, phi-0.05, cc.Phi(), 1e-5)
	assert.True(t, cc.State().Dragging)

	cc.HandleEvent(input.Event{Type: input.PointerUp})
	cc.HandleEvent(input.Event{Type: input.PointerMove, X: 500, Y: 500})
	assert.InDelta(t, theta-0.1, cc.Theta(), 1e-5)
}

func TestPhiStaysInBounds(t *testing.T) {
	cc := NewCameraController()

	cc.HandleEvent(input.Event{Type: input.PointerDown})
	cc.HandleEvent(input.Event{Type: input.PointerMove, Y: -1000})
	assert.InDelta(t, math32.Pi-0.1, cc.Phi(), 1e-6)

	cc.HandleEvent(input.Event{Type: input.PointerMove, Y: 10000})
	assert.InDelta(t, 0.1, cc.Phi(), 1e-6)

	// the radius never changes while dragging
	assert.InDelta(t, math32.Sqrt(25*25+13*13+25*25), cc.Radius(), 1e-3)
}

func TestWheelZoomClamps(t *testing.T) {
	cc := NewCameraController()
	r := cc.Radius()

	cc.HandleEvent(input.Event{Type: input.Wheel, DeltaY: 1})
	assert.InDelta(t, r*1.1, cc.Radius(), 1e-4)
	cc.HandleEvent(input.Event{Type: input.Wheel, DeltaY: -1})
	assert.InDelta(t, r*1.1*0.9, cc.Radius(), 1e-4)

	for range 50 {
		cc.HandleEvent(input.Event{Type: input.Wheel, DeltaY: 120})
	}
	assert.Equal(t, float32(80), cc.Radius())

	for range 100 {
		cc.HandleEvent(input.Event{Type: input.Wheel, DeltaY: -120})
	}
	assert.Equal(t, float32(5), cc.Radius())
}

func TestMultiTouchDoesNotRotate(t *testing.T) {
	cc := NewCameraController()
	rig := cc.Rig()

	cc.HandleEvent(input.Event{Type: input.TouchStart, X: 10, Y: 10, Touches: 2})
	cc.HandleEvent(input.Event{Type: input.TouchMove, X: 90, Y: 90, Touches: 2})

	assert.Equal(t, rig, cc.Rig())
	assert.Equal(t, Idle, cc.State())
}

func TestAttachAndDispose(t *testing.T) {
	d := input.NewDispatcher()
	cc := NewCameraController()

	cc.Attach(d)
	cc.Attach(d)
	require.Equal(t, 1, d.Len())

	d.Dispatch(input.Event{Type: input.Wheel, DeltaY: 1})
	zoomed := cc.Radius()

	cc.Dispose()
	cc.Dispose()
	assert.Zero(t, d.Len())

	d.Dispatch(input.Event{Type: input.Wheel, DeltaY: 1})
	assert.Equal(t, zoomed, cc.Radius())
}

func TestCameraLooksAtTarget(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc), WithAspect(16.0/9))

	assertVec(t, cc.Position(), cam.Eye(), 1e-5)

	view := cam.ViewMatrix()
	p, _ := common.TransformPoint(view[:], cc.Target())
	assertVec(t, common.V3(0, 0, -cc.Radius()), p, 1e-3)

	assert.True(t, cam.Frustum().ContainsSphere(cc.Target(), 1))
	assert.False(t, cam.Frustum().ContainsSphere(cc.Position().Scale(3), 1))
}

func TestCameraFollowsControllerOnUpdate(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc))
	before := cam.Eye()

	cc.HandleEvent(input.Event{Type: input.Wheel, DeltaY: 1})
	assert.Equal(t, before, cam.Eye())

	cam.Update()
	assert.NotEqual(t, before, cam.Eye())
}

func TestSetAspectIgnoresInvalid(t *testing.T) {
	cam := NewCamera()
	assert.InDelta(t, 45*math32.Pi/180, cam.Fov(), 1e-6)
	assert.Equal(t, float32(1000), cam.Far())

	cam.SetAspect(2)
	cam.SetAspect(0)
	cam.SetAspect(-1)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestUniformLayout(t *testing.T) {
	cam := NewCamera(WithController(NewCameraController()))
	u := cam.Uniform()
	buf := u.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, cam.ViewProjectionMatrix(), u.ViewProj)
}
