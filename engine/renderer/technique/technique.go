// Package technique combines the opaque and transparent render passes drawing the same
// scenes into one per-frame unit.
package technique

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
)

// technique is the implementation of the Technique interface.
type technique struct {
	mu sync.Mutex

	name        string
	system      renderer.RenderSystem
	programs    shader.Cache
	opaque      render_pass.RenderPass
	transparent render_pass.RenderPass
	register    bool

	watcher     shader.Watcher
	watcherConn signal.Connection
	reload      atomic.Bool
	last        render_pass.RenderInfo
}

// Technique draws opaque objects first, then transparent ones, for every attached
// scene and camera pair. Transparent objects are distance sorted unless the render
// target is multisampled.
type Technique interface {
	// Name returns the name of the technique.
	Name() string

	// Opaque returns the opaque render pass.
	Opaque() render_pass.RenderPass

	// Transparent returns the transparent render pass.
	Transparent() render_pass.RenderPass

	// AddScene attaches s, seen through cam, to both passes.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewing camera, nil to draw without culling
	AddScene(s scene.Scene, cam camera.Camera)

	// RemoveScene detaches every queue drawing s from both passes.
	//
	// Returns:
	//   - int: number of queues removed
	RemoveScene(s scene.Scene) int

	// SetIgnoredNode excludes the objects attached to node from both passes.
	SetIgnoredNode(node scene.Node)

	// RequestReload schedules a program reload for the next Update. Safe from any goroutine.
	RequestReload()

	// Update applies a pending reload and brings both passes up to date.
	Update()

	// Render draws the opaque then the transparent pass.
	//
	// Returns:
	//   - render_pass.RenderInfo: the summed statistics of both passes
	Render() render_pass.RenderInfo

	// LastRenderInfo returns the statistics of the last Render.
	LastRenderInfo() render_pass.RenderInfo

	// RenderedNodes returns the nodes drawn by the last Render when node registration is on.
	RenderedNodes() []render_node.RenderNode

	// Cleanup detaches every scene, releases the pipelines and stops listening to the watcher.
	Cleanup()
}

var _ Technique = &technique{}

// NewTechnique creates a technique with an opaque and a transparent pass.
//
// Parameters:
//   - name: identifier of the technique
//   - system: the render system both passes draw with
//   - programs: the program cache shared by both passes
//   - options: functional options to configure the technique
//
// Returns:
//   - Technique: the new technique
func NewTechnique(name string, system renderer.RenderSystem, programs shader.Cache, options ...TechniqueBuilderOption) Technique {
	if system == nil {
		panic("technique: NewTechnique requires a non-nil RenderSystem")
	}
	if programs == nil {
		panic("technique: NewTechnique requires a non-nil shader.Cache")
	}
	t := &technique{
		name:     name,
		system:   system,
		programs: programs,
	}
	for _, opt := range options {
		opt(t)
	}

	t.opaque = render_pass.NewRenderPass(name+"_Opaque", system, programs, render_pass.WithOpaque())
	t.transparent = render_pass.NewRenderPass(name+"_Transparent", system, programs,
		render_pass.WithTransparent(),
		render_pass.WithDistanceSort(!system.Samples().Enabled()),
	)
	if t.watcher != nil {
		t.watcherConn = t.watcher.OnChanged().Connect(func(string) { t.RequestReload() })
	}
	return t
}

func (t *technique) Name() string {
	return t.name
}

func (t *technique) Opaque() render_pass.RenderPass {
	return t.opaque
}

func (t *technique) Transparent() render_pass.RenderPass {
	return t.transparent
}

func (t *technique) AddScene(s scene.Scene, cam camera.Camera) {
	t.opaque.AddScene(s, cam)
	t.transparent.AddScene(s, cam)
}

func (t *technique) RemoveScene(s scene.Scene) int {
	removed := 0
	for _, p := range []render_pass.RenderPass{t.opaque, t.transparent} {
		for _, q := range p.Queues() {
			if q.Scene() == s && p.RemoveQueue(q.ID()) {
				removed++
			}
		}
	}
	return removed
}

func (t *technique) SetIgnoredNode(node scene.Node) {
	t.opaque.SetIgnoredNode(node)
	t.transparent.SetIgnoredNode(node)
}

func (t *technique) RequestReload() {
	t.reload.Store(true)
}

func (t *technique) Update() {
	if t.reload.Swap(false) {
		t.programs.Reset()
		t.opaque.Invalidate()
		t.transparent.Invalidate()
		logger.Info("programs reset", "technique", t.name, "generation", t.programs.Library().Generation())
	}
	t.opaque.Update()
	t.transparent.Update()
}

func (t *technique) Render() render_pass.RenderInfo {
	info := t.opaque.Render(t.register)
	info.Add(t.transparent.Render(t.register))

	t.mu.Lock()
	t.last = info
	t.mu.Unlock()
	return info
}

func (t *technique) LastRenderInfo() render_pass.RenderInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *technique) RenderedNodes() []render_node.RenderNode {
	return append(t.opaque.RenderedNodes(), t.transparent.RenderedNodes()...)
}

func (t *technique) Cleanup() {
	t.watcherConn.Disconnect()
	t.opaque.Cleanup()
	t.transparent.Cleanup()
}
