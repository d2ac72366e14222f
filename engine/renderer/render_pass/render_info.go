package render_pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
)

// RenderInfo counts what a render pass drew in one frame.
type RenderInfo struct {
	DrawCalls       int
	VisibleObjects  int
	VisibleFaces    int
	VisibleVertices int
}

// Add accumulates other into r.
func (r *RenderInfo) Add(other RenderInfo) {
	r.DrawCalls += other.DrawCalls
	r.VisibleObjects += other.VisibleObjects
	r.VisibleFaces += other.VisibleFaces
	r.VisibleVertices += other.VisibleVertices
}

func (r *RenderInfo) count(n render_node.RenderNode) {
	r.VisibleObjects++
	r.VisibleFaces += n.Faces()
	r.VisibleVertices += n.Vertices()
}

func (r RenderInfo) String() string {
	return fmt.Sprintf("draws=%d objects=%d faces=%d vertices=%d", r.DrawCalls, r.VisibleObjects, r.VisibleFaces, r.VisibleVertices)
}
