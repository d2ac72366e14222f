// Package scene implements the scene graph consumed by the renderer: a node hierarchy
// and name-indexed caches of geometries, billboard lists, particle systems and
// animated object groups. Every mutation that can change how objects are drawn is
// announced through OnChanged; node transform changes go through OnTransformChanged.
package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/go-gl/mathgl/mgl32"
)

// Flags toggles scene-wide rendering features.
type Flags uint8

const (
	// FlagShadows enables shadow receiving for receiver geometries.
	FlagShadows Flags = 1 << iota
	// FlagFogLinear enables linear distance fog.
	FlagFogLinear
	// FlagFogExponential enables exponential fog.
	FlagFogExponential
	// FlagFogSquared enables squared exponential fog.
	FlagFogSquared
)

// Has reports whether every bit of o is set.
func (f Flags) Has(o Flags) bool { return f&o == o }

// FogMode returns the shader fog mode: 0 none, 1 linear, 2 exponential, 3 squared.
func (f Flags) FogMode() int32 {
	switch {
	case f.Has(FlagFogSquared):
		return 3
	case f.Has(FlagFogExponential):
		return 2
	case f.Has(FlagFogLinear):
		return 1
	default:
		return 0
	}
}

// Scene defines the interface for a scene graph.
// Thread-safe for concurrent access; the object caches may be populated from loader
// goroutines while the render thread reads them.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// RootNode returns the root of the node hierarchy.
	RootNode() Node

	// CreateNode creates a node under parent, or under the root when parent is nil.
	//
	// Parameters:
	//   - name: unique node name
	//   - parent: the parent node or nil
	//
	// Returns:
	//   - Node: the created node
	//   - error: ErrDuplicateName if the name is taken
	CreateNode(name string, parent Node) (Node, error)

	// CreateGeometry places m in the scene under node, or under the root when node is nil.
	//
	// Parameters:
	//   - name: unique geometry name
	//   - node: the parent node or nil
	//   - m: the mesh to instantiate (must not be nil)
	//   - options: functional options to configure the geometry
	//
	// Returns:
	//   - Geometry: the created geometry
	//   - error: ErrDuplicateName if the name is taken
	CreateGeometry(name string, node Node, m mesh.Mesh, options ...GeometryBuilderOption) (Geometry, error)

	// RemoveGeometry removes a geometry and releases its materials.
	RemoveGeometry(name string) error

	// CreateBillboardList creates a billboard list under node, or under the root when node is nil.
	CreateBillboardList(name string, node Node, options ...BillboardBuilderOption) (BillboardList, error)

	// RemoveBillboardList removes a billboard list.
	RemoveBillboardList(name string) error

	// CreateParticleSystem creates a particle system under node, or under the root when node is nil.
	CreateParticleSystem(name string, node Node, options ...ParticleSystemBuilderOption) (ParticleSystem, error)

	// RemoveParticleSystem removes a particle system.
	RemoveParticleSystem(name string) error

	// CreateAnimatedObjectGroup creates an empty animation group.
	CreateAnimatedObjectGroup(name string) (AnimatedObjectGroup, error)

	// Nodes returns the node cache. The root node is not part of it.
	Nodes() *ObjectCache[Node]

	// Geometries returns the geometry cache.
	Geometries() *ObjectCache[Geometry]

	// BillboardLists returns the billboard list cache.
	BillboardLists() *ObjectCache[BillboardList]

	// ParticleSystems returns the particle system cache.
	ParticleSystems() *ObjectCache[ParticleSystem]

	// AnimatedObjectGroups returns the animation group cache.
	AnimatedObjectGroups() *ObjectCache[AnimatedObjectGroup]

	// FindAnimatedObject searches every animation group for the named object.
	//
	// Parameters:
	//   - name: e.g. "<geometry>_Skeleton"
	//
	// Returns:
	//   - AnimatedObject: the object, or nil when absent
	FindAnimatedObject(name string) AnimatedObject

	// Flags returns the scene feature flags.
	Flags() Flags

	// SetFlags replaces the feature flags and notifies OnChanged.
	SetFlags(f Flags)

	// HasShadows reports whether FlagShadows is set.
	HasShadows() bool

	// FogDensity returns the fog density.
	FogDensity() float32

	// SetFogDensity sets the fog density.
	SetFogDensity(density float32)

	// FogColour returns the fog colour.
	FogColour() mgl32.Vec3

	// BackgroundColour returns the clear colour.
	BackgroundColour() mgl32.Vec4

	// LightDirection returns the normalized direction of the scene's directional light.
	LightDirection() mgl32.Vec3

	// OnChanged is emitted after any mutation that requires reclassification.
	OnChanged() *signal.Signal[Scene]

	// OnTransformChanged is emitted after a node moves, rotates or scales.
	OnTransformChanged() *signal.Signal[Scene]

	// Initialise creates GPU resources for every object that has none yet.
	//
	// Parameters:
	//   - buffers: backend buffer factory
	//   - textures: backend texture uploader
	//   - instanceCapacity: instance slots per submesh, 0 to disable instancing
	//   - layout: per-instance payload layout
	//
	// Returns:
	//   - error: the joined errors of every object that failed
	Initialise(buffers buffer.Factory, textures material.TextureFactory, instanceCapacity int, layout buffer.InstanceLayout) error

	// Update advances animations and particle systems by dt seconds. Particle systems
	// are stepped in parallel on the scene worker pool.
	Update(dt float32)

	// Release deletes the GPU resources of every object.
	Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.RWMutex

	name       string
	root       *node
	flags      Flags
	fogDensity float32
	fogColour  mgl32.Vec3
	background mgl32.Vec4
	lightDir   mgl32.Vec3

	nodes           *ObjectCache[Node]
	geometries      *ObjectCache[Geometry]
	billboards      *ObjectCache[BillboardList]
	particleSystems *ObjectCache[ParticleSystem]
	animatedGroups  *ObjectCache[AnimatedObjectGroup]

	changed          signal.Signal[Scene]
	transformChanged signal.Signal[Scene]

	updatePool    worker.DynamicWorkerPool
	updateWorkers int
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:          name,
		fogDensity:    0.02,
		fogColour:     mgl32.Vec3{0.5, 0.5, 0.5},
		background:    mgl32.Vec4{0.1, 0.1, 0.12, 1},
		lightDir:      mgl32.Vec3{-0.3, -1, -0.5}.Normalize(),
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}
	s.root = newNode(name+"_Root", s, nil)
	s.root.root = true
	s.nodes = newObjectCache[Node]("node", s.notifyChanged)
	s.geometries = newObjectCache[Geometry]("geometry", s.notifyChanged)
	s.billboards = newObjectCache[BillboardList]("billboard list", s.notifyChanged)
	s.particleSystems = newObjectCache[ParticleSystem]("particle system", s.notifyChanged)
	s.animatedGroups = newObjectCache[AnimatedObjectGroup]("animated object group", s.notifyChanged)

	for _, opt := range options {
		opt(s)
	}

	// Queue size of 256 accommodates typical particle system counts with headroom.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) notifyChanged() {
	if s == nil {
		return
	}
	s.changed.Emit(s)
}

func (s *scene) notifyMoved() {
	if s == nil {
		return
	}
	s.transformChanged.Emit(s)
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) RootNode() Node {
	return s.root
}

func (s *scene) parentOrRoot(parent Node) Node {
	if parent == nil {
		return s.root
	}
	return parent
}

func (s *scene) CreateNode(name string, parent Node) (Node, error) {
	n := newNode(name, s, s.parentOrRoot(parent))
	if err := s.nodes.Add(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *scene) CreateGeometry(name string, parent Node, m mesh.Mesh, options ...GeometryBuilderOption) (Geometry, error) {
	if m == nil {
		panic("scene: CreateGeometry requires a non-nil Mesh")
	}
	g := newGeometry(name, nil, s.parentOrRoot(parent), m)
	b := &geometryBuilder{}
	for _, opt := range options {
		opt(b)
	}
	b.apply(g)
	g.owner = s

	if err := s.geometries.Add(g); err != nil {
		g.ReleaseMaterials()
		return nil, err
	}
	return g, nil
}

func (s *scene) RemoveGeometry(name string) error {
	g, err := s.geometries.Remove(name)
	if err != nil {
		return err
	}
	g.ReleaseMaterials()
	return nil
}

func (s *scene) CreateBillboardList(name string, parent Node, options ...BillboardBuilderOption) (BillboardList, error) {
	b := newBillboardList(name, s, s.parentOrRoot(parent), options...)
	if err := s.billboards.Add(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *scene) RemoveBillboardList(name string) error {
	_, err := s.billboards.Remove(name)
	return err
}

func (s *scene) CreateParticleSystem(name string, parent Node, options ...ParticleSystemBuilderOption) (ParticleSystem, error) {
	p := newParticleSystem(name, s, s.parentOrRoot(parent), options...)
	if err := s.particleSystems.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *scene) RemoveParticleSystem(name string) error {
	_, err := s.particleSystems.Remove(name)
	return err
}

func (s *scene) CreateAnimatedObjectGroup(name string) (AnimatedObjectGroup, error) {
	g := newAnimatedObjectGroup(name, s)
	if err := s.animatedGroups.Add(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *scene) Nodes() *ObjectCache[Node] {
	return s.nodes
}

func (s *scene) Geometries() *ObjectCache[Geometry] {
	return s.geometries
}

func (s *scene) BillboardLists() *ObjectCache[BillboardList] {
	return s.billboards
}

func (s *scene) ParticleSystems() *ObjectCache[ParticleSystem] {
	return s.particleSystems
}

func (s *scene) AnimatedObjectGroups() *ObjectCache[AnimatedObjectGroup] {
	return s.animatedGroups
}

func (s *scene) FindAnimatedObject(name string) AnimatedObject {
	var found AnimatedObject
	s.animatedGroups.Range(func(_ string, g AnimatedObjectGroup) bool {
		if obj, ok := g.Find(name); ok {
			found = obj
			return false
		}
		return true
	})
	return found
}

func (s *scene) Flags() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

func (s *scene) SetFlags(f Flags) {
	s.mu.Lock()
	s.flags = f
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *scene) HasShadows() bool {
	return s.Flags().Has(FlagShadows)
}

func (s *scene) FogDensity() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fogDensity
}

func (s *scene) SetFogDensity(density float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fogDensity = density
}

func (s *scene) FogColour() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fogColour
}

func (s *scene) BackgroundColour() mgl32.Vec4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) LightDirection() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lightDir
}

func (s *scene) OnChanged() *signal.Signal[Scene] {
	return &s.changed
}

func (s *scene) OnTransformChanged() *signal.Signal[Scene] {
	return &s.transformChanged
}

func (s *scene) Initialise(buffers buffer.Factory, textures material.TextureFactory, instanceCapacity int, layout buffer.InstanceLayout) error {
	var errs []error
	seenMeshes := make(map[mesh.Mesh]struct{})
	seenMaterials := make(map[material.Material]struct{})

	initMaterial := func(m material.Material) {
		if m == nil {
			return
		}
		if _, ok := seenMaterials[m]; ok {
			return
		}
		seenMaterials[m] = struct{}{}
		for _, p := range m.Passes() {
			p.PrepareTextures()
			if err := p.Initialise(textures); err != nil {
				errs = append(errs, fmt.Errorf("material %s: %w", m.Name(), err))
			}
		}
	}

	for _, g := range s.geometries.Values() {
		m := g.Mesh()
		if _, ok := seenMeshes[m]; !ok {
			seenMeshes[m] = struct{}{}
			if err := m.Initialise(buffers, instanceCapacity, layout); err != nil {
				errs = append(errs, err)
			}
		}
		for _, sm := range m.Submeshes() {
			initMaterial(g.Material(sm))
		}
	}
	billboards := s.billboards.Values()
	for _, p := range s.particleSystems.Values() {
		billboards = append(billboards, p.Billboards())
	}
	for _, b := range billboards {
		if err := b.Initialise(buffers, layout); err != nil {
			errs = append(errs, err)
		}
		initMaterial(b.Material())
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to initialise scene %s: %w", s.name, err)
	}
	logger.Info("scene initialised", "scene", s.name, "meshes", len(seenMeshes), "materials", len(seenMaterials), "billboards", len(billboards))
	return nil
}

func (s *scene) Update(dt float32) {
	for _, g := range s.animatedGroups.Values() {
		g.Update(dt)
	}

	systems := s.particleSystems.Values()
	if len(systems) == 0 {
		return
	}

	// A WaitGroup provides the per-frame barrier; the pool's own Wait blocks until
	// workers idle-exit.
	var wg sync.WaitGroup
	for i, p := range systems {
		wg.Add(1)
		ps := p
		s.updatePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				ps.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Release() {
	seen := make(map[mesh.Mesh]struct{})
	for _, g := range s.geometries.Values() {
		if _, ok := seen[g.Mesh()]; ok {
			continue
		}
		seen[g.Mesh()] = struct{}{}
		g.Mesh().Release()
	}
	release := func(b BillboardList) {
		if sm := b.Submesh(); sm != nil {
			sm.Release()
		}
	}
	for _, b := range s.billboards.Values() {
		release(b)
	}
	for _, p := range s.particleSystems.Values() {
		release(p.Billboards())
	}
}
