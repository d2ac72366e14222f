package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
// Orbit methods modify spherical coordinates and recompute position; planar
// methods translate both position and target along local camera axes.
type cameraControllerImpl struct {
	mu sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32 // around +Y, 0 faces +Z
	elevation float32 // above the horizontal plane

	limits OrbitLimits
	rates  InputRates
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller with sensible defaults.
// The returned controller supports both orbit and planar controls simultaneously.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		radius:    25.0,
		elevation: float32(math.Pi / 6),

		limits: OrbitLimits{
			MinRadius:    1.0,
			MaxRadius:    500.0,
			MinElevation: -float32(math.Pi/2 - 0.1),
			MaxElevation: float32(math.Pi/2 - 0.1),
		},
		rates: InputRates{Orbit: 0.03, Mouse: 0.005, Zoom: 1.5, Pan: 1.0},
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = cc.limits.clampRadius(cc.radius)
	cc.elevation = cc.limits.clampElevation(cc.elevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	offset := mgl32.Vec3{cosElev * sinAzim, sinElev, cosElev * cosAzim}
	cc.position = cc.target.Add(offset.Mul(cc.radius))
}

// updateSpherical re-derives radius and angles from the position/target offset.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updateSpherical() {
	offset := cc.position.Sub(cc.target)
	r := offset.Len()
	if r < 1e-6 {
		return
	}
	cc.radius = r
	cc.elevation = float32(math.Asin(float64(mgl32.Clamp(offset.Y()/r, -1, 1))))
	cc.azimuth = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
}

// localAxes returns right, up and forward vectors consistent with mgl32.LookAtV
// using a +Y world up. All vectors are zero when position and target coincide.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}, back.Mul(-1)
	}
	right = right.Normalize()
	up = back.Cross(right)
	forward = back.Mul(-1)
	return
}

func (cc *cameraControllerImpl) pan(axis mgl32.Vec3, delta float32) {
	offset := axis.Mul(delta * cc.rates.Pan)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(position mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = position
	cc.updateSpherical()
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = cc.limits.clampRadius(cc.radius - delta*cc.rates.Zoom)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= cc.rates.Orbit
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += cc.rates.Orbit
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = min(cc.elevation+cc.rates.Orbit, cc.limits.MaxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = max(cc.elevation-cc.rates.Orbit, cc.limits.MinElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= dx * cc.rates.Mouse
	cc.elevation = cc.limits.clampElevation(cc.elevation + dy*cc.rates.Mouse)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = cc.limits.clampRadius(radius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = cc.limits.clampElevation(elevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _, _ := cc.localAxes()
	cc.pan(right, delta)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up, _ := cc.localAxes()
	cc.pan(up, delta)
}

func (cc *cameraControllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, _, forward := cc.localAxes()
	cc.pan(forward, delta)
}

func (cc *cameraControllerImpl) Limits() OrbitLimits {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.limits
}

func (cc *cameraControllerImpl) Rates() InputRates {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rates
}

func (cc *cameraControllerImpl) SetRates(rates InputRates) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rates = rates.merge(cc.rates)
}
