package render_queue

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/google/uuid"
)

// State is the attachment state of a RenderQueue.
type State int

const (
	// StateUninitialised is a queue attached to no scene.
	StateUninitialised State = iota
	// StateAttachedNoCamera is a queue drawing its raw nodes.
	StateAttachedNoCamera
	// StateAttachedWithCamera is a queue drawing the nodes its camera sees.
	StateAttachedWithCamera
)

func (s State) String() string {
	switch s {
	case StateUninitialised:
		return "Uninitialised"
	case StateAttachedNoCamera:
		return "AttachedNoCamera"
	case StateAttachedWithCamera:
		return "AttachedWithCamera"
	default:
		return "Unknown"
	}
}

// renderQueue is the implementation of the RenderQueue interface.
type renderQueue struct {
	mu sync.Mutex

	id         uuid.UUID
	owner      Owner
	classifier *Classifier
	state      State

	scene    scene.Scene
	camera   camera.Camera
	raw      *SceneNodes
	prepared *SceneNodes

	sceneChanged  atomic.Bool
	cameraChanged atomic.Bool

	sceneConn     signal.Connection
	cameraConn    signal.Connection
	transformConn signal.Connection
}

// RenderQueue keeps the render nodes of one scene up to date for one render pass.
// Scene changes reclassify; camera and node transform changes only refilter.
// Notification handlers only set flags, so they may run on any goroutine;
// Update and RenderNodes belong to the render goroutine.
type RenderQueue interface {
	// ID returns the unique identifier of the queue.
	ID() uuid.UUID

	// State returns the attachment state.
	State() State

	// Scene returns the attached scene, or nil.
	Scene() scene.Scene

	// Camera returns the attached camera, or nil.
	Camera() camera.Camera

	// Initialise attaches a scene without a camera and schedules a classification.
	//
	// Parameters:
	//   - s: the scene to draw
	Initialise(s scene.Scene)

	// InitialiseWithCamera attaches a scene and its viewing camera and schedules a classification.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewing camera
	InitialiseWithCamera(s scene.Scene, cam camera.Camera)

	// Update reclassifies and/or refilters when a change was recorded since the last call.
	Update()

	// RenderNodes returns the nodes to draw: the filtered nodes with a camera, the
	// classified ones without. Nil before the queue is initialised.
	RenderNodes() *SceneNodes

	// OnSceneChanged records a scene change.
	OnSceneChanged(s scene.Scene)

	// OnCameraChanged records a camera change and keeps cam as the viewing camera.
	OnCameraChanged(cam camera.Camera)

	// Cleanup disconnects the queue from its scene and camera.
	Cleanup()
}

var _ RenderQueue = &renderQueue{}

// NewRenderQueue creates an uninitialised queue classifying for owner.
//
// Parameters:
//   - owner: the render pass the queue belongs to
//
// Returns:
//   - RenderQueue: the new queue
func NewRenderQueue(owner Owner) RenderQueue {
	if owner == nil {
		panic("render_queue: NewRenderQueue requires a non-nil Owner")
	}
	return &renderQueue{
		id:         uuid.New(),
		owner:      owner,
		classifier: NewClassifier(owner),
	}
}

func (q *renderQueue) ID() uuid.UUID {
	return q.id
}

func (q *renderQueue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *renderQueue) Scene() scene.Scene {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.scene
}

func (q *renderQueue) Camera() camera.Camera {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.camera
}

func (q *renderQueue) Initialise(s scene.Scene) {
	if s == nil {
		panic("render_queue: Initialise requires a non-nil Scene")
	}
	q.Cleanup()

	q.mu.Lock()
	q.scene = s
	q.raw = NewSceneNodes()
	q.state = StateAttachedNoCamera
	q.sceneConn = s.OnChanged().Connect(q.OnSceneChanged)
	q.mu.Unlock()

	q.sceneChanged.Store(true)
}

func (q *renderQueue) InitialiseWithCamera(s scene.Scene, cam camera.Camera) {
	if cam == nil {
		q.Initialise(s)
		return
	}
	q.Initialise(s)

	q.mu.Lock()
	q.camera = cam
	q.prepared = NewSceneNodes()
	q.state = StateAttachedWithCamera
	q.cameraConn = cam.OnChanged().Connect(q.OnCameraChanged)
	q.transformConn = s.OnTransformChanged().Connect(func(scene.Scene) { q.cameraChanged.Store(true) })
	q.mu.Unlock()

	q.cameraChanged.Store(true)
}

func (q *renderQueue) Update() {
	sceneChanged := q.sceneChanged.Swap(false)
	cameraChanged := q.cameraChanged.Swap(false)
	if !sceneChanged && !cameraChanged {
		return
	}

	q.mu.Lock()
	s, cam, raw, prepared := q.scene, q.camera, q.raw, q.prepared
	q.mu.Unlock()
	if s == nil {
		return
	}

	if sceneChanged {
		wantOpaque := q.owner.IsOpaque()
		failed := q.classifier.ClassifyGeometriesInto(s, wantOpaque, raw.Geometries)
		failed += q.classifier.ClassifyBillboardsInto(s, wantOpaque, raw.Billboards)
		if failed > 0 {
			// Retry next frame; the program may compile after a shader fix.
			q.sceneChanged.Store(true)
		}
	}
	if cam != nil && prepared != nil {
		FilterGeometries(cam, raw.Geometries, prepared.Geometries)
		FilterBillboards(cam, raw.Billboards, prepared.Billboards)
	}
}

func (q *renderQueue) RenderNodes() *SceneNodes {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.camera != nil {
		logger.Require(q.prepared != nil, "prepared render nodes missing", "queue", q.id)
		return q.prepared
	}
	return q.raw
}

func (q *renderQueue) OnSceneChanged(scene.Scene) {
	q.sceneChanged.Store(true)
}

func (q *renderQueue) OnCameraChanged(cam camera.Camera) {
	q.mu.Lock()
	if cam != nil && q.state == StateAttachedWithCamera {
		q.camera = cam
	}
	q.mu.Unlock()
	q.cameraChanged.Store(true)
}

func (q *renderQueue) Cleanup() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sceneConn.Disconnect()
	q.cameraConn.Disconnect()
	q.transformConn.Disconnect()
	q.sceneConn = signal.Connection{}
	q.cameraConn = signal.Connection{}
	q.transformConn = signal.Connection{}
	q.scene = nil
	q.camera = nil
	q.raw = nil
	q.prepared = nil
	q.state = StateUninitialised
	q.sceneChanged.Store(false)
	q.cameraChanged.Store(false)
}
