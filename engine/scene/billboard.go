package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/go-gl/mathgl/mgl32"
)

// billboardList is the implementation of the BillboardList interface.
type billboardList struct {
	mu sync.Mutex

	name      string
	parent    Node
	material  material.Material
	conn      signal.Connection
	size      mgl32.Vec2
	positions []mgl32.Vec3
	capacity  int
	quad      mesh.Submesh

	owner *scene
}

// BillboardList is a set of camera-facing quads sharing one material. Positions are
// local to the parent node and are uploaded as instance translations on each draw.
type BillboardList interface {
	// Name returns the list identifier.
	Name() string

	// Parent returns the node the list is attached to.
	Parent() Node

	// AttachTo moves the list under another node.
	AttachTo(node Node)

	// Material returns the material of every billboard.
	Material() material.Material

	// SetMaterial replaces the material.
	SetMaterial(m material.Material)

	// Size returns the world-space width and height of each billboard.
	Size() mgl32.Vec2

	// SetSize sets the world-space width and height of each billboard.
	SetSize(size mgl32.Vec2)

	// Positions returns a copy of the billboard centers.
	Positions() []mgl32.Vec3

	// SetPositions replaces the billboard centers. Positions past the instance
	// capacity are kept but not drawn.
	SetPositions(positions []mgl32.Vec3)

	// AddPosition appends one billboard center.
	AddPosition(p mgl32.Vec3)

	// Count returns the number of billboards.
	Count() int

	// Capacity returns the maximum number of billboards drawn per call.
	Capacity() int

	// Submesh returns the shared quad, nil before Initialise.
	Submesh() mesh.Submesh

	// Initialise creates the quad buffers with an instance buffer sized to Capacity.
	//
	// Parameters:
	//   - factory: backend buffer factory
	//   - layout: per-instance payload layout
	//
	// Returns:
	//   - error: error if the buffers cannot be created
	Initialise(factory buffer.Factory, layout buffer.InstanceLayout) error

	// Draw uploads the billboard translations and issues one instanced draw.
	//
	// Returns:
	//   - int: the number of billboards drawn
	Draw() int
}

var _ BillboardList = &billboardList{}

func newBillboardList(name string, owner *scene, parent Node, options ...BillboardBuilderOption) *billboardList {
	b := &billboardList{
		name:     name,
		parent:   parent,
		size:     mgl32.Vec2{1, 1},
		capacity: 256,
		owner:    owner,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.material != nil {
		b.conn = b.material.OnChanged().Connect(func(material.Material) { b.owner.notifyChanged() })
	}
	return b
}

func (b *billboardList) Name() string {
	return b.name
}

func (b *billboardList) Parent() Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parent
}

func (b *billboardList) AttachTo(node Node) {
	b.mu.Lock()
	b.parent = node
	b.mu.Unlock()
	b.owner.notifyChanged()
}

func (b *billboardList) Material() material.Material {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.material
}

func (b *billboardList) SetMaterial(m material.Material) {
	b.mu.Lock()
	b.conn.Disconnect()
	b.conn = signal.Connection{}
	b.material = m
	if m != nil {
		b.conn = m.OnChanged().Connect(func(material.Material) { b.owner.notifyChanged() })
	}
	b.mu.Unlock()
	b.owner.notifyChanged()
}

func (b *billboardList) Size() mgl32.Vec2 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *billboardList) SetSize(size mgl32.Vec2) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size = size
}

func (b *billboardList) Positions() []mgl32.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]mgl32.Vec3, len(b.positions))
	copy(out, b.positions)
	return out
}

func (b *billboardList) SetPositions(positions []mgl32.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions[:0], positions...)
}

func (b *billboardList) AddPosition(p mgl32.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions, p)
}

func (b *billboardList) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.positions)
}

func (b *billboardList) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

func (b *billboardList) Submesh() mesh.Submesh {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quad
}

func (b *billboardList) Initialise(factory buffer.Factory, layout buffer.InstanceLayout) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.quad != nil {
		return nil
	}
	quad := mesh.NewQuad(b.name+"_Quad", 1, 1).Submesh(0)
	if err := quad.Initialise(factory, b.capacity, layout); err != nil {
		return fmt.Errorf("failed to initialise billboards %s: %w", b.name, err)
	}
	b.quad = quad
	return nil
}

func (b *billboardList) Draw() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.quad == nil || !b.quad.HasMatrixBuffer() {
		return 0
	}
	mb := b.quad.MatrixBuffer()
	count := min(len(b.positions), mb.Capacity())
	for i := 0; i < count; i++ {
		mb.Write(i, mgl32.Translate3D(b.positions[i].Elem()), 0)
	}
	mb.Upload(count)
	b.quad.DrawInstanced(count)
	return count
}
