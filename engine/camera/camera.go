package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu sync.Mutex

	name     string
	up       mgl32.Vec3
	viewport Viewport

	position mgl32.Vec3
	target   mgl32.Vec3

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	frustum              common.Frustum

	controller CameraController
	onChanged  signal.Signal[Camera]
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices
// from an attached CameraController each frame via Update(). Every change that
// alters the matrices is announced through OnChanged.
type Camera interface {
	// Name returns the camera's identifier.
	Name() string

	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Viewport returns the perspective parameters of the camera.
	//
	// Returns:
	//   - Viewport: a copy of the current viewport
	Viewport() Viewport

	// Position returns the world-space eye position used for the last matrix update.
	Position() mgl32.Vec3

	// Target returns the world-space look-at point used for the last matrix update.
	Target() mgl32.Vec3

	// ViewMatrix returns the current view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined projection * view matrix.
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space frustum extracted from the view-projection matrix.
	Frustum() common.Frustum

	// IsVisible reports whether a local-space bounding sphere, moved by transform,
	// intersects the camera's frustum.
	//
	// Parameters:
	//   - sphere: the drawable's local-space bounding sphere
	//   - transform: the drawable's local-to-world transform
	//
	// Returns:
	//   - bool: true if any part of the sphere may be on screen
	IsVisible(sphere common.BoundingSphere, transform mgl32.Mat4) bool

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	Controller() CameraController

	// Update reads position/target from the controller and recomputes matrices.
	// Should be called once per frame. OnChanged fires only when the eye or target moved.
	Update()

	// SetUp sets the camera's up vector.
	SetUp(up mgl32.Vec3)

	// SetViewport replaces all perspective parameters at once.
	//
	// Parameters:
	//   - v: the new viewport
	SetViewport(v Viewport)

	// SetFov sets the field of view in radians.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height).
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// LookAt places the eye and target directly. An attached controller is left untouched
	// and will override the placement on the next Update.
	//
	// Parameters:
	//   - eye: world-space eye position
	//   - target: world-space look-at point
	LookAt(eye, target mgl32.Vec3)

	// SetController attaches a CameraController to the camera and refreshes the matrices.
	SetController(ctrl CameraController)

	// OnChanged returns the signal fired after the camera's matrices change.
	OnChanged() *signal.Signal[Camera]
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings looking down -Z
// from (0, 0, 10).
//
// Parameters:
//   - name: identifier of the camera
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(name string, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		name:     name,
		up:       mgl32.Vec3{0, 1, 0},
		viewport: DefaultViewport(),
		position: mgl32.Vec3{0, 0, 10},
	}
	for _, option := range options {
		option(c)
	}
	c.pullController()
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) IsVisible(sphere common.BoundingSphere, transform mgl32.Mat4) bool {
	world := sphere.Transform(transform)
	c.mu.Lock()
	f := c.frustum
	c.mu.Unlock()
	return f.IntersectsSphere(world)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	if c.controller == nil {
		c.mu.Unlock()
		return
	}
	oldPos, oldTarget := c.position, c.target
	c.pullController()
	moved := oldPos != c.position || oldTarget != c.target
	if moved {
		c.updateMatrices()
	}
	c.mu.Unlock()

	if moved {
		c.onChanged.Emit(c)
	}
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mutate(func() { c.up = up })
}

func (c *cameraImpl) SetViewport(v Viewport) {
	c.mutate(func() { c.viewport = v })
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mutate(func() { c.viewport.Fov = fov })
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mutate(func() { c.viewport.Aspect = aspect })
}

func (c *cameraImpl) SetNear(near float32) {
	c.mutate(func() { c.viewport.Near = near })
}

func (c *cameraImpl) SetFar(far float32) {
	c.mutate(func() { c.viewport.Far = far })
}

func (c *cameraImpl) LookAt(eye, target mgl32.Vec3) {
	c.mutate(func() {
		c.position = eye
		c.target = target
	})
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mutate(func() {
		c.controller = ctrl
		c.pullController()
	})
}

func (c *cameraImpl) OnChanged() *signal.Signal[Camera] {
	return &c.onChanged
}

// mutate applies fn under the lock, recomputes the matrices and notifies
// listeners once the lock is released.
func (c *cameraImpl) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.updateMatrices()
	c.mu.Unlock()
	c.onChanged.Emit(c)
}

// pullController copies eye and target from the controller. Caller must hold the mutex.
func (c *cameraImpl) pullController() {
	if c.controller == nil {
		return
	}
	c.position = c.controller.Position()
	c.target = c.controller.Target()
}

// updateMatrices recalculates the view, projection and view-projection matrices and the frustum.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = c.viewport.Projection()
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}
