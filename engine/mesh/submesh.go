package mesh

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// submesh is the implementation of the Submesh interface.
type submesh struct {
	mu sync.Mutex

	index    int
	layout   buffer.VertexLayout
	vertices []float32
	indices  []uint32

	programFlags flags.ProgramFlags
	sphere       common.BoundingSphere
	refs         map[material.Material]int

	buffers  buffer.GeometryBuffers
	matrices *buffer.MatrixBuffer
}

// Submesh defines one indexed draw range of a mesh with its own vertex layout.
// Geometries sharing a submesh register the material they draw it with, and the
// per-material reference count decides whether the submesh can be instanced.
type Submesh interface {
	// Index returns the position of the submesh within its mesh.
	Index() int

	// Layout returns the interleaved vertex layout.
	Layout() buffer.VertexLayout

	// Vertices returns the interleaved vertex data.
	Vertices() []float32

	// Indices returns the triangle list indices.
	Indices() []uint32

	// HasBoneData reports whether the vertices carry bone indices and weights.
	HasBoneData() bool

	// ProgramFlags returns the base program flags of the submesh.
	ProgramFlags() flags.ProgramFlags

	// SetProgramFlags replaces the base program flags.
	SetProgramFlags(f flags.ProgramFlags)

	// RefCount returns the number of geometries drawing this submesh with m.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - int: the reference count, 0 when unused with m
	RefCount(m material.Material) int

	// IncRef registers one more user of the submesh with material m.
	IncRef(m material.Material)

	// DecRef releases one user of the submesh with material m.
	DecRef(m material.Material)

	// CollisionSphere returns the local-space bounding sphere of the vertices.
	CollisionSphere() common.BoundingSphere

	// FaceCount returns the number of triangles.
	FaceCount() int

	// PointCount returns the number of vertices.
	PointCount() int

	// Initialise creates the GPU buffers. A per-instance matrix buffer is created
	// when instanceCapacity is positive.
	//
	// Parameters:
	//   - factory: backend buffer factory
	//   - instanceCapacity: number of instance slots, 0 to disable instancing
	//   - layout: per-instance payload layout
	//
	// Returns:
	//   - error: error if a buffer cannot be created
	Initialise(factory buffer.Factory, instanceCapacity int, layout buffer.InstanceLayout) error

	// Initialised reports whether GPU buffers exist.
	Initialised() bool

	// HasMatrixBuffer reports whether an instance matrix buffer exists.
	HasMatrixBuffer() bool

	// MatrixBuffer returns the instance matrix buffer, or nil.
	MatrixBuffer() *buffer.MatrixBuffer

	// Draw issues one indexed draw. Does nothing before Initialise.
	Draw()

	// DrawInstanced issues one instanced indexed draw of count instances.
	DrawInstanced(count int)

	// Release deletes the GPU buffers.
	Release()
}

var _ Submesh = &submesh{}

func newSubmesh(index int, layout buffer.VertexLayout, vertices []float32, indices []uint32, options ...SubmeshBuilderOption) *submesh {
	s := &submesh{
		index:    index,
		layout:   layout,
		vertices: vertices,
		indices:  indices,
		refs:     make(map[material.Material]int),
	}
	for _, opt := range options {
		opt(s)
	}
	s.sphere = common.BoundingSphereFromPoints(s.positions())
	return s
}

// positions extracts the first three components of every vertex.
func (s *submesh) positions() []mgl32.Vec3 {
	stride := s.layout.Stride()
	if stride < 3 {
		return nil
	}
	out := make([]mgl32.Vec3, 0, len(s.vertices)/stride)
	for i := 0; i+2 < len(s.vertices); i += stride {
		out = append(out, mgl32.Vec3{s.vertices[i], s.vertices[i+1], s.vertices[i+2]})
	}
	return out
}

func (s *submesh) Index() int {
	return s.index
}

func (s *submesh) Layout() buffer.VertexLayout {
	return s.layout
}

func (s *submesh) HasBoneData() bool {
	return s.layout.HasBoneData()
}

func (s *submesh) Vertices() []float32 {
	return s.vertices
}

func (s *submesh) Indices() []uint32 {
	return s.indices
}

func (s *submesh) ProgramFlags() flags.ProgramFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programFlags
}

func (s *submesh) SetProgramFlags(f flags.ProgramFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programFlags = f
}

func (s *submesh) RefCount(m material.Material) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[m]
}

func (s *submesh) IncRef(m material.Material) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[m]++
}

func (s *submesh) DecRef(m material.Material) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs[m] <= 1 {
		delete(s.refs, m)
		return
	}
	s.refs[m]--
}

func (s *submesh) CollisionSphere() common.BoundingSphere {
	return s.sphere
}

func (s *submesh) FaceCount() int {
	return len(s.indices) / 3
}

func (s *submesh) PointCount() int {
	if stride := s.layout.Stride(); stride > 0 {
		return len(s.vertices) / stride
	}
	return 0
}

func (s *submesh) Initialise(factory buffer.Factory, instanceCapacity int, layout buffer.InstanceLayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffers != nil {
		return nil
	}

	var matrices *buffer.MatrixBuffer
	if instanceCapacity > 0 {
		store, err := factory.CreateMatrixStore(instanceCapacity * layout.Stride)
		if err != nil {
			return fmt.Errorf("failed to create matrix store for submesh %d: %w", s.index, err)
		}
		matrices, err = buffer.NewMatrixBuffer(instanceCapacity, layout, store)
		if err != nil {
			store.Release()
			return fmt.Errorf("failed to create matrix buffer for submesh %d: %w", s.index, err)
		}
	}

	buffers, err := factory.CreateGeometryBuffers(s.layout, s.vertices, s.indices, matrices)
	if err != nil {
		if matrices != nil {
			matrices.Release()
		}
		return fmt.Errorf("failed to create geometry buffers for submesh %d: %w", s.index, err)
	}
	s.buffers = buffers
	s.matrices = matrices
	return nil
}

func (s *submesh) Initialised() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers != nil
}

func (s *submesh) HasMatrixBuffer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matrices != nil
}

func (s *submesh) MatrixBuffer() *buffer.MatrixBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matrices
}

func (s *submesh) Draw() {
	s.mu.Lock()
	b := s.buffers
	s.mu.Unlock()
	if b == nil {
		return
	}
	b.Bind()
	b.Draw(len(s.indices))
	b.Unbind()
}

func (s *submesh) DrawInstanced(count int) {
	s.mu.Lock()
	b := s.buffers
	s.mu.Unlock()
	if b == nil || count <= 0 {
		return
	}
	b.Bind()
	b.DrawInstanced(len(s.indices), count)
	b.Unbind()
}

func (s *submesh) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffers != nil {
		s.buffers.Release()
		s.buffers = nil
	}
	if s.matrices != nil {
		s.matrices.Release()
		s.matrices = nil
	}
}
