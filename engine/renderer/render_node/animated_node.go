package render_node

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

// AnimatedNode draws a skinned and/or morphed submesh. Either animation may be nil.
type AnimatedNode struct {
	StaticNode
	skeleton scene.AnimatedSkeleton
	morph    scene.AnimatedMesh
}

var _ RenderNode = &AnimatedNode{}

// NewAnimatedNode creates an AnimatedNode.
//
// Parameters:
//   - pass: the material pass
//   - p: the pipeline the pass is drawn with
//   - g: the owning geometry
//   - sm: the submesh to draw
//   - skeleton: the skeleton animation driving the geometry, or nil
//   - morph: the mesh animation driving the geometry, or nil
//
// Returns:
//   - *AnimatedNode: the node
func NewAnimatedNode(pass material.Pass, p pipeline.Pipeline, g scene.Geometry, sm mesh.Submesh, skeleton scene.AnimatedSkeleton, morph scene.AnimatedMesh) *AnimatedNode {
	if skeleton == nil && morph == nil {
		panic("render_node: NewAnimatedNode requires a skeleton or a mesh animation")
	}
	return &AnimatedNode{
		StaticNode: *NewStaticNode(pass, p, g, sm),
		skeleton:   skeleton,
		morph:      morph,
	}
}

// Skeleton returns the skeleton animation, or nil.
func (n *AnimatedNode) Skeleton() scene.AnimatedSkeleton {
	return n.skeleton
}

// Morph returns the mesh animation, or nil.
func (n *AnimatedNode) Morph() scene.AnimatedMesh {
	return n.morph
}

func (n *AnimatedNode) Render() {
	program := n.pipeline.Program()
	n.pass.Bind(program)
	program.SetMat4(shader.UniformModel, n.node.DerivedTransform())
	if n.skeleton != nil {
		palette := n.skeleton.Palette()
		if len(palette) > shader.MaxBones {
			palette = palette[:shader.MaxBones]
		}
		program.SetMat4Array(shader.UniformBones, palette)
	}
	if n.morph != nil {
		program.SetFloat(shader.UniformMorphTime, n.morph.MorphTime())
	}
	n.submesh.Draw()
	n.pass.Unbind()
}
