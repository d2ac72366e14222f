// Package render_node holds the per-frame drawables produced by scene classification.
// A render node ties one material pass to the pipeline it is drawn with and to the
// scene object it draws; nodes live until the next reclassification.
package render_node

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderNode is a drawable bound to a pipeline.
type RenderNode interface {
	// Pass returns the material pass drawn by the node.
	Pass() material.Pass

	// Pipeline returns the pipeline the node is drawn with.
	Pipeline() pipeline.Pipeline

	// SceneNode returns the scene node carrying the drawable.
	SceneNode() scene.Node

	// Center returns the world-space point used for distance sorting.
	Center() mgl32.Vec3

	// Faces returns the number of triangles one Render call draws.
	Faces() int

	// Vertices returns the number of vertices one Render call draws.
	Vertices() int

	// Render binds the pass, uploads the per-object uniforms and issues the draw.
	// The pipeline must already be applied.
	Render()
}

// base holds the fields shared by every node variant.
type base struct {
	pass     material.Pass
	pipeline pipeline.Pipeline
	node     scene.Node
}

func newBase(kind string, pass material.Pass, p pipeline.Pipeline, node scene.Node) base {
	if pass == nil {
		panic("render_node: New" + kind + " requires a non-nil Pass")
	}
	if p == nil {
		panic("render_node: New" + kind + " requires a non-nil Pipeline")
	}
	if node == nil {
		panic("render_node: New" + kind + " requires a non-nil scene Node")
	}
	return base{pass: pass, pipeline: p, node: node}
}

func (b *base) Pass() material.Pass {
	return b.pass
}

func (b *base) Pipeline() pipeline.Pipeline {
	return b.pipeline
}

func (b *base) SceneNode() scene.Node {
	return b.node
}
