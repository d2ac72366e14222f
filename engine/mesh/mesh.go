// Package mesh holds CPU-side geometry: meshes made of submeshes, their skeletons
// and animation clips, and generators for simple primitives.
package mesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/go-gl/mathgl/mgl32"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu        sync.Mutex
	name      string
	submeshes []Submesh
	skeleton  *Skeleton
	clips     []*AnimationClip
}

// Mesh defines a named collection of submeshes that geometries instantiate.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Submeshes returns a snapshot of the submeshes in creation order.
	Submeshes() []Submesh

	// Submesh returns the submesh at index i, or nil when out of range.
	Submesh(i int) Submesh

	// SubmeshCount returns the number of submeshes.
	SubmeshCount() int

	// CreateSubmesh appends a submesh built from interleaved vertex data.
	//
	// Parameters:
	//   - layout: the vertex layout; the first component must be the position
	//   - vertices: interleaved vertex data
	//   - indices: triangle list indices
	//   - options: functional options applied to the submesh
	//
	// Returns:
	//   - Submesh: the created submesh
	CreateSubmesh(layout buffer.VertexLayout, vertices []float32, indices []uint32, options ...SubmeshBuilderOption) Submesh

	// CollisionSphere returns a sphere enclosing every submesh sphere.
	CollisionSphere() common.BoundingSphere

	// Skeleton returns the bind-pose skeleton, or nil for static meshes.
	Skeleton() *Skeleton

	// AnimationClips returns the animation clips bundled with the mesh.
	AnimationClips() []*AnimationClip

	// Initialise creates GPU buffers for every submesh.
	//
	// Parameters:
	//   - factory: backend buffer factory
	//   - instanceCapacity: instance slots per submesh, 0 to disable instancing
	//   - layout: per-instance payload layout
	//
	// Returns:
	//   - error: the joined errors of every submesh that failed
	Initialise(factory buffer.Factory, instanceCapacity int, layout buffer.InstanceLayout) error

	// Release deletes the GPU buffers of every submesh.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh creates an empty Mesh.
//
// Parameters:
//   - name: the mesh identifier
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the created mesh
func NewMesh(name string, options ...MeshBuilderOption) Mesh {
	m := &mesh{name: name}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Submeshes() []Submesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Submesh, len(m.submeshes))
	copy(out, m.submeshes)
	return out
}

func (m *mesh) Submesh(i int) Submesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.submeshes) {
		return nil
	}
	return m.submeshes[i]
}

func (m *mesh) SubmeshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submeshes)
}

func (m *mesh) CreateSubmesh(layout buffer.VertexLayout, vertices []float32, indices []uint32, options ...SubmeshBuilderOption) Submesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSubmesh(len(m.submeshes), layout, vertices, indices, options...)
	m.submeshes = append(m.submeshes, s)
	return s
}

func (m *mesh) CollisionSphere() common.BoundingSphere {
	var points []mgl32.Vec3
	spheres := make([]common.BoundingSphere, 0, m.SubmeshCount())
	for _, s := range m.Submeshes() {
		sphere := s.CollisionSphere()
		spheres = append(spheres, sphere)
		points = append(points, sphere.Center)
	}
	if len(spheres) == 0 {
		return common.BoundingSphere{}
	}
	out := common.BoundingSphereFromPoints(points)
	for _, s := range spheres {
		out.Radius = max(out.Radius, s.Center.Sub(out.Center).Len()+s.Radius)
	}
	return out
}

func (m *mesh) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *mesh) AnimationClips() []*AnimationClip {
	return m.clips
}

func (m *mesh) Initialise(factory buffer.Factory, instanceCapacity int, layout buffer.InstanceLayout) error {
	var errs []error
	for _, s := range m.Submeshes() {
		if err := s.Initialise(factory, instanceCapacity, layout); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to initialise mesh %s: %w", m.name, err)
	}
	return nil
}

func (m *mesh) Release() {
	for _, s := range m.Submeshes() {
		s.Release()
	}
}
