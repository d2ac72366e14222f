package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
)

// geometry is the implementation of the Geometry interface.
type geometry struct {
	mu sync.Mutex

	name   string
	parent Node
	mesh   mesh.Mesh

	materials map[mesh.Submesh]material.Material
	conns     map[mesh.Submesh]signal.Connection

	shadowCaster   bool
	shadowReceiver bool

	owner *scene
}

// Geometry places a mesh in the scene under a node and assigns a material to each
// of its submeshes.
type Geometry interface {
	// Name returns the geometry identifier.
	Name() string

	// Parent returns the node the geometry is attached to.
	Parent() Node

	// AttachTo moves the geometry under another node.
	AttachTo(node Node)

	// Mesh returns the instantiated mesh.
	Mesh() mesh.Mesh

	// Material returns the material drawn on sm, or nil.
	//
	// Parameters:
	//   - sm: a submesh of the geometry's mesh
	//
	// Returns:
	//   - material.Material: the assigned material, or nil
	Material(sm mesh.Submesh) material.Material

	// SetMaterial assigns m to sm, updating the submesh reference counts.
	// Passing nil clears the assignment.
	//
	// Parameters:
	//   - sm: a submesh of the geometry's mesh
	//   - m: the material
	SetMaterial(sm mesh.Submesh, m material.Material)

	// IsShadowCaster reports whether the geometry is drawn into shadow maps.
	IsShadowCaster() bool

	// SetShadowCaster toggles shadow casting.
	SetShadowCaster(caster bool)

	// IsShadowReceiver reports whether the geometry samples shadow maps.
	IsShadowReceiver() bool

	// SetShadowReceiver toggles shadow receiving.
	SetShadowReceiver(receiver bool)

	// ReleaseMaterials clears every assignment, releasing the submesh reference counts.
	ReleaseMaterials()
}

var _ Geometry = &geometry{}

func newGeometry(name string, owner *scene, parent Node, m mesh.Mesh) *geometry {
	return &geometry{
		name:           name,
		parent:         parent,
		mesh:           m,
		materials:      make(map[mesh.Submesh]material.Material),
		conns:          make(map[mesh.Submesh]signal.Connection),
		shadowCaster:   true,
		shadowReceiver: true,
		owner:          owner,
	}
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) Parent() Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.parent
}

func (g *geometry) AttachTo(node Node) {
	g.mu.Lock()
	g.parent = node
	g.mu.Unlock()
	g.owner.notifyChanged()
}

func (g *geometry) Mesh() mesh.Mesh {
	return g.mesh
}

func (g *geometry) Material(sm mesh.Submesh) material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.materials[sm]
}

func (g *geometry) SetMaterial(sm mesh.Submesh, m material.Material) {
	if sm == nil {
		return
	}
	g.mu.Lock()
	old := g.materials[sm]
	if old == m {
		g.mu.Unlock()
		return
	}
	if old != nil {
		sm.DecRef(old)
		g.conns[sm].Disconnect()
		delete(g.conns, sm)
		delete(g.materials, sm)
	}
	if m != nil {
		sm.IncRef(m)
		g.materials[sm] = m
		g.conns[sm] = m.OnChanged().Connect(func(material.Material) {
			g.owner.notifyChanged()
		})
	}
	g.mu.Unlock()

	g.owner.notifyChanged()
}

func (g *geometry) IsShadowCaster() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shadowCaster
}

func (g *geometry) SetShadowCaster(caster bool) {
	g.mu.Lock()
	g.shadowCaster = caster
	g.mu.Unlock()
	g.owner.notifyChanged()
}

func (g *geometry) IsShadowReceiver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shadowReceiver
}

func (g *geometry) SetShadowReceiver(receiver bool) {
	g.mu.Lock()
	g.shadowReceiver = receiver
	g.mu.Unlock()
	g.owner.notifyChanged()
}

func (g *geometry) ReleaseMaterials() {
	g.mu.Lock()
	for sm, m := range g.materials {
		sm.DecRef(m)
		g.conns[sm].Disconnect()
	}
	g.materials = make(map[mesh.Submesh]material.Material)
	g.conns = make(map[mesh.Submesh]signal.Connection)
	g.mu.Unlock()
}
