package render_queue

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
)

// orderedMap is a map remembering key insertion order.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any]() orderedMap[K, V] {
	return orderedMap[K, V]{values: make(map[K]V)}
}

// get returns the value for k, inserting the result of create on a miss.
func (m *orderedMap[K, V]) get(k K, create func() V) V {
	if v, ok := m.values[k]; ok {
		return v
	}
	v := create()
	m.keys = append(m.keys, k)
	m.values[k] = v
	return v
}

func (m *orderedMap[K, V]) set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m *orderedMap[K, V]) clear() {
	m.keys = m.keys[:0]
	clear(m.values)
}

// NodesByPipeline groups render nodes by the pipeline they are drawn with.
// Pipelines and nodes iterate in insertion order.
type NodesByPipeline[N render_node.RenderNode] struct {
	m orderedMap[pipeline.Pipeline, []N]
}

// NewNodesByPipeline creates an empty bucket.
func NewNodesByPipeline[N render_node.RenderNode]() *NodesByPipeline[N] {
	return &NodesByPipeline[N]{m: newOrderedMap[pipeline.Pipeline, []N]()}
}

// Add appends n under p.
func (b *NodesByPipeline[N]) Add(p pipeline.Pipeline, n N) {
	b.m.set(p, append(b.m.values[p], n))
}

// Nodes returns the nodes drawn with p.
func (b *NodesByPipeline[N]) Nodes(p pipeline.Pipeline) []N {
	return b.m.values[p]
}

// Pipelines returns the pipelines in insertion order.
func (b *NodesByPipeline[N]) Pipelines() []pipeline.Pipeline {
	return b.m.keys
}

// Len returns the number of pipelines.
func (b *NodesByPipeline[N]) Len() int {
	return len(b.m.keys)
}

// Count returns the number of nodes across all pipelines.
func (b *NodesByPipeline[N]) Count() int {
	n := 0
	for _, nodes := range b.m.values {
		n += len(nodes)
	}
	return n
}

// Range calls fn for every pipeline with nodes, in insertion order, until fn returns false.
func (b *NodesByPipeline[N]) Range(fn func(p pipeline.Pipeline, nodes []N) bool) {
	for _, p := range b.m.keys {
		if !fn(p, b.m.values[p]) {
			return
		}
	}
}

// All returns every node, pipeline by pipeline.
func (b *NodesByPipeline[N]) All() []N {
	out := make([]N, 0, b.Count())
	for _, p := range b.m.keys {
		out = append(out, b.m.values[p]...)
	}
	return out
}

// Clear empties the bucket.
func (b *NodesByPipeline[N]) Clear() {
	b.m.clear()
}

type submeshNodes = orderedMap[mesh.Submesh, []*render_node.StaticNode]

type passNodes = orderedMap[material.Pass, *submeshNodes]

// InstancedNodes groups instanced static nodes by pipeline, then pass, then submesh.
// Each innermost list is drawn with one instanced call.
type InstancedNodes struct {
	m orderedMap[pipeline.Pipeline, *passNodes]
}

// NewInstancedNodes creates an empty bucket.
func NewInstancedNodes() *InstancedNodes {
	return &InstancedNodes{m: newOrderedMap[pipeline.Pipeline, *passNodes]()}
}

// Add appends n under p, n's pass and n's submesh.
func (b *InstancedNodes) Add(p pipeline.Pipeline, n *render_node.StaticNode) {
	passes := b.m.get(p, func() *passNodes {
		m := newOrderedMap[material.Pass, *submeshNodes]()
		return &m
	})
	submeshes := passes.get(n.Pass(), func() *submeshNodes {
		m := newOrderedMap[mesh.Submesh, []*render_node.StaticNode]()
		return &m
	})
	submeshes.set(n.Submesh(), append(submeshes.values[n.Submesh()], n))
}

// Nodes returns the nodes drawn with p, pass and sm.
func (b *InstancedNodes) Nodes(p pipeline.Pipeline, pass material.Pass, sm mesh.Submesh) []*render_node.StaticNode {
	passes, ok := b.m.values[p]
	if !ok {
		return nil
	}
	submeshes, ok := passes.values[pass]
	if !ok {
		return nil
	}
	return submeshes.values[sm]
}

// Pipelines returns the pipelines in insertion order.
func (b *InstancedNodes) Pipelines() []pipeline.Pipeline {
	return b.m.keys
}

// Len returns the number of pipelines.
func (b *InstancedNodes) Len() int {
	return len(b.m.keys)
}

// Count returns the number of nodes across all groups.
func (b *InstancedNodes) Count() int {
	n := 0
	b.Range(func(_ pipeline.Pipeline, _ material.Pass, _ mesh.Submesh, nodes []*render_node.StaticNode) bool {
		n += len(nodes)
		return true
	})
	return n
}

// Range calls fn for every (pipeline, pass, submesh) group in insertion order until fn returns false.
func (b *InstancedNodes) Range(fn func(p pipeline.Pipeline, pass material.Pass, sm mesh.Submesh, nodes []*render_node.StaticNode) bool) {
	for _, p := range b.m.keys {
		passes := b.m.values[p]
		for _, pass := range passes.keys {
			submeshes := passes.values[pass]
			for _, sm := range submeshes.keys {
				if !fn(p, pass, sm, submeshes.values[sm]) {
					return
				}
			}
		}
	}
}

// All returns every node in traversal order.
func (b *InstancedNodes) All() []*render_node.StaticNode {
	var out []*render_node.StaticNode
	b.Range(func(_ pipeline.Pipeline, _ material.Pass, _ mesh.Submesh, nodes []*render_node.StaticNode) bool {
		out = append(out, nodes...)
		return true
	})
	return out
}

// Clear empties the bucket.
func (b *InstancedNodes) Clear() {
	b.m.clear()
}

// GeometryNodes holds the classified geometry nodes, split by cull side.
// Front buckets hold the inside faces of two-sided and alpha blended passes.
type GeometryNodes struct {
	StaticFront    *NodesByPipeline[*render_node.StaticNode]
	StaticBack     *NodesByPipeline[*render_node.StaticNode]
	InstancedFront *InstancedNodes
	InstancedBack  *InstancedNodes
	AnimatedFront  *NodesByPipeline[*render_node.AnimatedNode]
	AnimatedBack   *NodesByPipeline[*render_node.AnimatedNode]
}

// NewGeometryNodes creates empty geometry buckets.
func NewGeometryNodes() *GeometryNodes {
	return &GeometryNodes{
		StaticFront:    NewNodesByPipeline[*render_node.StaticNode](),
		StaticBack:     NewNodesByPipeline[*render_node.StaticNode](),
		InstancedFront: NewInstancedNodes(),
		InstancedBack:  NewInstancedNodes(),
		AnimatedFront:  NewNodesByPipeline[*render_node.AnimatedNode](),
		AnimatedBack:   NewNodesByPipeline[*render_node.AnimatedNode](),
	}
}

// Count returns the number of nodes in every bucket.
func (g *GeometryNodes) Count() int {
	return g.StaticFront.Count() + g.StaticBack.Count() +
		g.InstancedFront.Count() + g.InstancedBack.Count() +
		g.AnimatedFront.Count() + g.AnimatedBack.Count()
}

// Clear empties every bucket.
func (g *GeometryNodes) Clear() {
	g.StaticFront.Clear()
	g.StaticBack.Clear()
	g.InstancedFront.Clear()
	g.InstancedBack.Clear()
	g.AnimatedFront.Clear()
	g.AnimatedBack.Clear()
}

// BillboardNodes holds the classified billboard and particle nodes, split by cull side.
type BillboardNodes struct {
	Front *NodesByPipeline[*render_node.BillboardNode]
	Back  *NodesByPipeline[*render_node.BillboardNode]
}

// NewBillboardNodes creates empty billboard buckets.
func NewBillboardNodes() *BillboardNodes {
	return &BillboardNodes{
		Front: NewNodesByPipeline[*render_node.BillboardNode](),
		Back:  NewNodesByPipeline[*render_node.BillboardNode](),
	}
}

// Count returns the number of nodes in both buckets.
func (b *BillboardNodes) Count() int {
	return b.Front.Count() + b.Back.Count()
}

// Clear empties both buckets.
func (b *BillboardNodes) Clear() {
	b.Front.Clear()
	b.Back.Clear()
}

// SceneNodes is the full set of render nodes of one scene for one render pass.
type SceneNodes struct {
	Geometries *GeometryNodes
	Billboards *BillboardNodes
}

// NewSceneNodes creates empty scene buckets.
func NewSceneNodes() *SceneNodes {
	return &SceneNodes{
		Geometries: NewGeometryNodes(),
		Billboards: NewBillboardNodes(),
	}
}

// Count returns the number of nodes in every bucket.
func (s *SceneNodes) Count() int {
	return s.Geometries.Count() + s.Billboards.Count()
}

// Clear empties every bucket.
func (s *SceneNodes) Clear() {
	s.Geometries.Clear()
	s.Billboards.Clear()
}
