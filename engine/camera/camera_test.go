package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraIsVisible(t *testing.T) {
	cam := NewCamera("main")
	unit := common.BoundingSphere{Radius: 1}

	tests := []struct {
		name      string
		transform mgl32.Mat4
		want      bool
	}{
		{"origin", mgl32.Ident4(), true},
		{"ahead within far plane", mgl32.Translate3D(0, 0, -50), true},
		{"beyond far plane", mgl32.Translate3D(0, 0, -200), false},
		{"behind eye", mgl32.Translate3D(0, 0, 20), false},
		{"far to the side", mgl32.Translate3D(1000, 0, 0), false},
		{"scaled into view", mgl32.Translate3D(0, 0, -95).Mul4(mgl32.Scale3D(10, 10, 10)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cam.IsVisible(unit, tt.transform))
		})
	}
}

func TestCameraSettersNotify(t *testing.T) {
	cam := NewCamera("main")
	var calls int
	cam.OnChanged().Connect(func(Camera) { calls++ })

	cam.SetAspect(2)
	cam.SetFov(1)
	cam.LookAt(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{})

	assert.Equal(t, 3, calls)
	assert.Equal(t, float32(2), cam.Viewport().Aspect)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, cam.Position())
	assert.Equal(t, cam.Viewport().Projection().Mul4(cam.ViewMatrix()), cam.ViewProjectionMatrix())
}

func TestCameraUpdateOnlyNotifiesOnMove(t *testing.T) {
	ctrl := NewCameraController(WithOrbit(10, 0, 0.5))
	cam := NewCamera("main", WithController(ctrl))
	require.True(t, cam.Position().ApproxEqual(ctrl.Position()))

	var calls int
	cam.OnChanged().Connect(func(Camera) { calls++ })

	cam.Update()
	assert.Equal(t, 0, calls)

	ctrl.OrbitLeft()
	cam.Update()
	assert.Equal(t, 1, calls)
	assert.True(t, cam.Position().ApproxEqual(ctrl.Position()))
}

func TestControllerClampsRadius(t *testing.T) {
	ctrl := NewCameraController(WithRadiusBounds(2, 8), WithOrbit(5, 0, 0))

	ctrl.SetRadius(100)
	assert.Equal(t, float32(8), ctrl.Radius())

	ctrl.Zoom(1000)
	assert.Equal(t, float32(2), ctrl.Radius())
	assert.InDelta(t, 2, ctrl.Position().Sub(ctrl.Target()).Len(), 1e-4)
}

func TestControllerPanKeepsOrbit(t *testing.T) {
	ctrl := NewCameraController(WithOrbit(10, 1, 0.3), WithTarget(mgl32.Vec3{1, 2, 3}))

	ctrl.PanRight(3)
	ctrl.PanUp(-2)
	ctrl.PanForward(1)

	assert.InDelta(t, 10, ctrl.Position().Sub(ctrl.Target()).Len(), 1e-4)
	assert.NotEqual(t, mgl32.Vec3{1, 2, 3}, ctrl.Target())
}

func TestControllerSetPositionDerivesOrbit(t *testing.T) {
	ctrl := NewCameraController()

	ctrl.SetPosition(mgl32.Vec3{0, 0, 12})

	assert.InDelta(t, 12, ctrl.Radius(), 1e-4)
	assert.InDelta(t, 0, ctrl.Elevation(), 1e-4)
	assert.InDelta(t, 0, ctrl.Azimuth(), 1e-4)
}

func TestControllerRatesKeepUnsetFields(t *testing.T) {
	ctrl := NewCameraController(WithRates(InputRates{Zoom: 4}))
	rates := ctrl.Rates()
	assert.Equal(t, float32(4), rates.Zoom)
	assert.Equal(t, float32(0.03), rates.Orbit)

	ctrl.SetRates(InputRates{Orbit: 0.5})
	assert.Equal(t, float32(0.5), ctrl.Rates().Orbit)
	assert.Equal(t, float32(4), ctrl.Rates().Zoom)

	before := ctrl.Azimuth()
	ctrl.OrbitRight()
	assert.InDelta(t, before+0.5, ctrl.Azimuth(), 1e-6)
}

func TestControllerElevationStaysInLimits(t *testing.T) {
	ctrl := NewCameraController(WithElevationBounds(-0.2, 0.4), WithOrbit(10, 0, 1.2))
	assert.Equal(t, float32(0.4), ctrl.Elevation())

	ctrl.Drag(0, -1000)
	assert.Equal(t, ctrl.Limits().MinElevation, ctrl.Elevation())
	ctrl.OrbitUp()
	assert.Greater(t, ctrl.Elevation(), float32(-0.2))
}
