package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Viewport holds the perspective parameters of a camera.
// Fov is the vertical field of view in radians.
type Viewport struct {
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultViewport returns a 45 degree viewport with a square aspect.
func DefaultViewport() Viewport {
	return Viewport{
		Fov:    45.0 * (math.Pi / 180.0),
		Aspect: 1.0,
		Near:   0.1,
		Far:    100.0,
	}
}

// Projection returns the OpenGL perspective matrix for the viewport.
func (v Viewport) Projection() mgl32.Mat4 {
	aspect := v.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(v.Fov, aspect, v.Near, v.Far)
}
