package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitLimits bounds the orbit radius and elevation of a CameraController.
type OrbitLimits struct {
	MinRadius    float32
	MaxRadius    float32
	MinElevation float32 // radians
	MaxElevation float32 // radians
}

// clampRadius returns r within [MinRadius, MaxRadius].
func (l OrbitLimits) clampRadius(r float32) float32 {
	return mgl32.Clamp(r, l.MinRadius, l.MaxRadius)
}

// clampElevation returns e within [MinElevation, MaxElevation].
func (l OrbitLimits) clampElevation(e float32) float32 {
	return mgl32.Clamp(e, l.MinElevation, l.MaxElevation)
}

// InputRates scales the input fed to a CameraController.
type InputRates struct {
	// Orbit is the angle in radians of one OrbitLeft/Right/Up/Down step.
	Orbit float32
	// Mouse converts Drag pixels to radians.
	Mouse float32
	// Zoom converts a scroll delta to a radius change.
	Zoom float32
	// Pan converts a pan delta to world units.
	Pan float32
}

// merge returns r with every non-positive field taken from fallback.
func (r InputRates) merge(fallback InputRates) InputRates {
	pick := func(v, d float32) float32 {
		if v > 0 {
			return v
		}
		return d
	}
	return InputRates{
		Orbit: pick(r.Orbit, fallback.Orbit),
		Mouse: pick(r.Mouse, fallback.Mouse),
		Zoom:  pick(r.Zoom, fallback.Zoom),
		Pan:   pick(r.Pan, fallback.Pan),
	}
}

// CameraController owns the eye and pivot of a camera and moves them from input.
// Orbit controls rotate the eye around the pivot in spherical coordinates
// (radius, azimuth around +Y, elevation above the horizontal plane). Pan controls
// shift eye and pivot together along the view axes, so the orbit is preserved.
// Cameras pull the eye and pivot on Update.
type CameraController interface {
	// Position returns the eye in world space.
	Position() mgl32.Vec3

	// SetPosition moves the eye and re-derives the orbit from its offset to the pivot.
	//
	// Parameters:
	//   - position: world-space coordinates
	SetPosition(position mgl32.Vec3)

	// Target returns the pivot.
	Target() mgl32.Vec3

	// SetTarget moves the pivot, keeping the orbit.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Radius returns the distance from eye to pivot.
	Radius() float32

	// SetRadius sets the distance from eye to pivot, clamped to the limits.
	SetRadius(radius float32)

	// Azimuth returns the horizontal orbit angle in radians; 0 looks down -Z.
	Azimuth() float32

	// SetAzimuth sets the horizontal orbit angle in radians.
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical orbit angle in radians.
	Elevation() float32

	// SetElevation sets the vertical orbit angle in radians, clamped to the limits.
	SetElevation(elevation float32)

	// Limits returns the orbit bounds.
	Limits() OrbitLimits

	// Rates returns the input scales.
	Rates() InputRates

	// SetRates replaces the input scales. Non-positive fields keep their current value.
	SetRates(rates InputRates)

	// Zoom moves the eye toward the pivot by delta scaled by the zoom rate.
	// Positive delta zooms in.
	Zoom(delta float32)

	// OrbitLeft, OrbitRight, OrbitUp and OrbitDown step the orbit by the orbit rate.
	OrbitLeft()
	OrbitRight()
	OrbitUp()
	OrbitDown()

	// Drag orbits by a cursor movement in pixels scaled by the mouse rate.
	//
	// Parameters:
	//   - dx: horizontal cursor movement
	//   - dy: vertical cursor movement
	Drag(dx, dy float32)

	// PanRight, PanUp and PanForward move eye and pivot along the view's right, up
	// and forward axes by delta scaled by the pan rate.
	PanRight(delta float32)
	PanUp(delta float32)
	PanForward(delta float32)
}
