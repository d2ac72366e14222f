package render_node

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// BillboardNode draws every position of a billboard list as one instanced quad batch.
type BillboardNode struct {
	base
	list scene.BillboardList
}

var _ RenderNode = &BillboardNode{}

// NewBillboardNode creates a BillboardNode.
//
// Parameters:
//   - pass: the material pass
//   - p: the pipeline the pass is drawn with
//   - list: the billboard list; its parent is the scene node
//
// Returns:
//   - *BillboardNode: the node
func NewBillboardNode(pass material.Pass, p pipeline.Pipeline, list scene.BillboardList) *BillboardNode {
	if list == nil {
		panic("render_node: NewBillboardNode requires a non-nil BillboardList")
	}
	return &BillboardNode{
		base: newBase("BillboardNode", pass, p, list.Parent()),
		list: list,
	}
}

// Billboards returns the drawn list.
func (n *BillboardNode) Billboards() scene.BillboardList {
	return n.list
}

func (n *BillboardNode) Center() mgl32.Vec3 {
	return n.node.DerivedPosition()
}

// drawn returns the number of quads one draw emits.
func (n *BillboardNode) drawn() int {
	return min(n.list.Count(), n.list.Capacity())
}

func (n *BillboardNode) Faces() int {
	return 2 * n.drawn()
}

func (n *BillboardNode) Vertices() int {
	return 4 * n.drawn()
}

func (n *BillboardNode) Render() {
	program := n.pipeline.Program()
	n.pass.Bind(program)
	program.SetMat4(shader.UniformModel, n.node.DerivedTransform())
	program.SetVec2(shader.UniformBillboardSize, n.list.Size())
	n.list.Draw()
	n.pass.Unbind()
}
