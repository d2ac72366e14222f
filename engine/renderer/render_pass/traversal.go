package render_pass

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_queue"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// frame holds the per queue state of one Render call.
type frame struct {
	pass     *renderPass
	register bool

	scene      scene.Scene
	projection mgl32.Mat4
	view       mgl32.Mat4
	eye        mgl32.Vec3

	info     RenderInfo
	rendered []render_node.RenderNode
}

// begin switches the frame to the queue drawing s through cam. A nil camera draws
// with identity matrices from the origin.
func (f *frame) begin(s scene.Scene, cam camera.Camera) {
	f.scene = s
	f.projection, f.view, f.eye = mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec3{}
	if cam != nil {
		f.projection = cam.Viewport().Projection()
		f.view = cam.ViewMatrix()
		f.eye = cam.Position()
	}
}

func (f *frame) render(nodes *render_queue.SceneNodes) {
	g, b := nodes.Geometries, nodes.Billboards
	f.renderInstanced(g.InstancedFront)
	f.renderInstanced(g.InstancedBack)

	if f.pass.distanceSort {
		var sorted []sortedNode
		sorted = collect(sorted, g.StaticFront)
		sorted = collect(sorted, g.StaticBack)
		sorted = collect(sorted, g.AnimatedFront)
		sorted = collect(sorted, g.AnimatedBack)
		sorted = collect(sorted, b.Front)
		sorted = collect(sorted, b.Back)
		f.renderSorted(sorted)
		return
	}

	renderBucket(f, g.StaticFront)
	renderBucket(f, g.StaticBack)
	renderBucket(f, g.AnimatedFront)
	renderBucket(f, g.AnimatedBack)
	renderBucket(f, b.Front)
	renderBucket(f, b.Back)
}

// apply binds p with the camera matrices and the scene wide uniforms.
func (f *frame) apply(p pipeline.Pipeline) {
	p.SetProjection(f.projection)
	p.SetView(f.view)
	p.Apply()

	program := p.Program()
	program.SetVec3(shader.UniformCameraPosition, f.eye)
	if f.scene == nil {
		return
	}
	program.SetInt(shader.UniformFogMode, f.scene.Flags().FogMode())
	program.SetFloat(shader.UniformFogDensity, f.scene.FogDensity())
	program.SetVec4(shader.UniformFogColour, f.scene.FogColour().Vec4(1))
	program.SetVec3(shader.UniformLightDirection, f.scene.LightDirection())
}

func (f *frame) drawn(n render_node.RenderNode) {
	f.info.count(n)
	if f.register {
		f.rendered = append(f.rendered, n)
	}
}

func renderBucket[N render_node.RenderNode](f *frame, b *render_queue.NodesByPipeline[N]) {
	b.Range(func(p pipeline.Pipeline, nodes []N) bool {
		if len(nodes) == 0 {
			return true
		}
		f.apply(p)
		for _, n := range nodes {
			n.Render()
			f.info.DrawCalls++
			f.drawn(n)
		}
		return true
	})
}

func (f *frame) renderInstanced(b *render_queue.InstancedNodes) {
	var current pipeline.Pipeline
	b.Range(func(p pipeline.Pipeline, pass material.Pass, sm mesh.Submesh, nodes []*render_node.StaticNode) bool {
		if len(nodes) == 0 || !sm.HasMatrixBuffer() {
			return true
		}
		if p != current {
			f.apply(p)
			current = p
		}
		f.drawInstanced(p, pass, sm, nodes)
		return true
	})
}

func (f *frame) drawInstanced(p pipeline.Pipeline, pass material.Pass, sm mesh.Submesh, nodes []*render_node.StaticNode) {
	matrices := sm.MatrixBuffer()
	count := len(nodes)
	if count > matrices.Capacity() {
		if f.pass.warnOnce(sm) {
			logger.Warn("instance count exceeds matrix buffer capacity", "pass", f.pass.name, "instances", count, "capacity", matrices.Capacity())
		}
		count = matrices.Capacity()
	}
	if count == 0 {
		return
	}

	index := uint32(pass.Index())
	for i, n := range nodes[:count] {
		matrices.Write(i, n.SceneNode().DerivedTransform(), index)
	}
	matrices.Upload(count)

	program := p.Program()
	first := nodes[0].Pass()
	first.Bind(program)
	program.SetMat4(shader.UniformModel, mgl32.Ident4())
	sm.DrawInstanced(count)
	first.Unbind()

	f.info.DrawCalls++
	for _, n := range nodes[:count] {
		f.drawn(n)
	}
}

// sortedNode is a node waiting for the distance sort.
type sortedNode struct {
	node     render_node.RenderNode
	distance float32
}

func collect[N render_node.RenderNode](out []sortedNode, b *render_queue.NodesByPipeline[N]) []sortedNode {
	for _, n := range b.All() {
		out = append(out, sortedNode{node: n})
	}
	return out
}

// renderSorted draws nodes farthest first. Equal distances keep insertion order.
func (f *frame) renderSorted(nodes []sortedNode) {
	for i := range nodes {
		d := nodes[i].node.Center().Sub(f.eye)
		nodes[i].distance = d.Dot(d)
	}
	slices.SortStableFunc(nodes, func(a, b sortedNode) int {
		return cmp.Compare(b.distance, a.distance)
	})

	for _, s := range nodes {
		f.apply(s.node.Pipeline())
		s.node.Render()
		f.info.DrawCalls++
		f.drawn(s.node)
	}
}
