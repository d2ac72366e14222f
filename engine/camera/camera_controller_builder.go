package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option applied by NewCameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithOrbit sets the initial orbit around the pivot.
//
// Parameters:
//   - radius: distance from the pivot
//   - azimuth: horizontal angle in radians
//   - elevation: vertical angle in radians
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithOrbit(radius, azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
		cc.azimuth = azimuth
		cc.elevation = elevation
	}
}

// WithTarget sets the initial pivot.
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds bounds the orbit radius. The initial radius is clamped into them.
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.limits.MinRadius = min
		cc.limits.MaxRadius = max
	}
}

// WithElevationBounds bounds the elevation, in radians.
func WithElevationBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.limits.MinElevation = min
		cc.limits.MaxElevation = max
	}
}

// WithRates sets the input scales. Zero fields keep the defaults.
//
// Parameters:
//   - rates: orbit, mouse, zoom and pan scales
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRates(rates InputRates) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rates = rates.merge(cc.rates)
	}
}
