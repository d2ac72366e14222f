package render_queue

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

// sphereNode is a node carrying a collision sphere.
type sphereNode interface {
	render_node.RenderNode
	Submesh() mesh.Submesh
}

func displayable(n scene.Node) bool {
	return n.IsDisplayable() && n.IsVisible()
}

func inView[N sphereNode](cam camera.Camera, n N) bool {
	node := n.SceneNode()
	return displayable(node) && cam.IsVisible(n.Submesh().CollisionSphere(), node.DerivedTransform())
}

func filterBucket[N sphereNode](cam camera.Camera, raw, prepared *NodesByPipeline[N]) {
	prepared.Clear()
	raw.Range(func(p pipeline.Pipeline, nodes []N) bool {
		for _, n := range nodes {
			if inView(cam, n) {
				prepared.Add(p, n)
			}
		}
		return true
	})
}

func filterInstanced(cam camera.Camera, raw, prepared *InstancedNodes) {
	prepared.Clear()
	raw.Range(func(p pipeline.Pipeline, _ material.Pass, _ mesh.Submesh, nodes []*render_node.StaticNode) bool {
		for _, n := range nodes {
			if inView(cam, n) {
				prepared.Add(p, n)
			}
		}
		return true
	})
}

func filterBillboards(raw, prepared *NodesByPipeline[*render_node.BillboardNode]) {
	prepared.Clear()
	raw.Range(func(p pipeline.Pipeline, nodes []*render_node.BillboardNode) bool {
		for _, n := range nodes {
			if displayable(n.SceneNode()) {
				prepared.Add(p, n)
			}
		}
		return true
	})
}

// FilterGeometries rebuilds prepared from the raw nodes visible to cam.
// Instanced groups keep their pass and submesh grouping.
//
// Parameters:
//   - cam: the viewing camera
//   - raw: the classified nodes
//   - prepared: the output, cleared first
func FilterGeometries(cam camera.Camera, raw, prepared *GeometryNodes) {
	filterBucket(cam, raw.StaticFront, prepared.StaticFront)
	filterBucket(cam, raw.StaticBack, prepared.StaticBack)
	filterInstanced(cam, raw.InstancedFront, prepared.InstancedFront)
	filterInstanced(cam, raw.InstancedBack, prepared.InstancedBack)
	filterBucket(cam, raw.AnimatedFront, prepared.AnimatedFront)
	filterBucket(cam, raw.AnimatedBack, prepared.AnimatedBack)
}

// FilterBillboards rebuilds prepared from the displayable raw billboard nodes.
// Billboards are not sphere tested.
//
// Parameters:
//   - cam: the viewing camera
//   - raw: the classified nodes
//   - prepared: the output, cleared first
func FilterBillboards(_ camera.Camera, raw, prepared *BillboardNodes) {
	filterBillboards(raw.Front, prepared.Front)
	filterBillboards(raw.Back, prepared.Back)
}
