package render_node

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// StaticNode draws one submesh of a geometry with one pass.
// Instanced static nodes are grouped by the render pass and never drawn one by one.
type StaticNode struct {
	base
	geometry scene.Geometry
	submesh  mesh.Submesh
}

var _ RenderNode = &StaticNode{}

// NewStaticNode creates a StaticNode.
//
// Parameters:
//   - pass: the material pass
//   - p: the pipeline the pass is drawn with
//   - g: the owning geometry; its parent is the scene node
//   - sm: the submesh to draw
//
// Returns:
//   - *StaticNode: the node
func NewStaticNode(pass material.Pass, p pipeline.Pipeline, g scene.Geometry, sm mesh.Submesh) *StaticNode {
	if g == nil || sm == nil {
		panic("render_node: NewStaticNode requires a non-nil Geometry and Submesh")
	}
	return &StaticNode{
		base:     newBase("StaticNode", pass, p, g.Parent()),
		geometry: g,
		submesh:  sm,
	}
}

// Geometry returns the geometry the node was classified from.
func (n *StaticNode) Geometry() scene.Geometry {
	return n.geometry
}

// Submesh returns the drawn submesh.
func (n *StaticNode) Submesh() mesh.Submesh {
	return n.submesh
}

// CollisionSphere returns the submesh's local-space bounding sphere.
func (n *StaticNode) CollisionSphere() common.BoundingSphere {
	return n.submesh.CollisionSphere()
}

func (n *StaticNode) Center() mgl32.Vec3 {
	return n.submesh.CollisionSphere().Transform(n.node.DerivedTransform()).Center
}

func (n *StaticNode) Faces() int {
	return n.submesh.FaceCount()
}

func (n *StaticNode) Vertices() int {
	return n.submesh.PointCount()
}

func (n *StaticNode) Render() {
	program := n.pipeline.Program()
	n.pass.Bind(program)
	program.SetMat4(shader.UniformModel, n.node.DerivedTransform())
	n.submesh.Draw()
	n.pass.Unbind()
}
