// Package render_pass draws the render queues of one pass: it owns the pass's pipelines,
// keeps one queue per attached scene and walks their buckets every frame.
package render_pass

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_queue"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/google/uuid"
)

// renderPass is the implementation of the RenderPass interface.
type renderPass struct {
	mu sync.Mutex

	name         string
	system       renderer.RenderSystem
	programs     shader.Cache
	opaque       bool
	programFlags flags.ProgramFlags
	distanceSort bool

	pipelines pipeline.Cache
	queues    []render_queue.RenderQueue
	ignored   scene.Node
	rendered  []render_node.RenderNode
	warned    map[mesh.Submesh]struct{}
}

// RenderPass draws every scene attached to it with the pipelines it creates.
// An opaque pass draws objects without alpha blending, a transparent pass the others.
type RenderPass interface {
	render_queue.Owner

	// Name returns the name of the pass.
	Name() string

	// AddScene attaches s, seen through cam, to the pass.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewing camera, nil to draw s without culling
	//
	// Returns:
	//   - render_queue.RenderQueue: the queue created for the pair
	AddScene(s scene.Scene, cam camera.Camera) render_queue.RenderQueue

	// RemoveQueue detaches the queue with the given id.
	//
	// Returns:
	//   - bool: true if a queue was removed
	RemoveQueue(id uuid.UUID) bool

	// Queues returns the queues of the pass in attachment order.
	Queues() []render_queue.RenderQueue

	// Update brings every queue up to date.
	Update()

	// Render draws every queue.
	//
	// Parameters:
	//   - register: whether drawn nodes are recorded for RenderedNodes
	//
	// Returns:
	//   - RenderInfo: the frame statistics of the pass
	Render(register bool) RenderInfo

	// RenderedNodes returns the nodes drawn by the last Render called with register set.
	RenderedNodes() []render_node.RenderNode

	// SetIgnoredNode excludes the objects attached to node from classification.
	SetIgnoredNode(node scene.Node)

	// Pipelines returns the pipeline cache of the pass.
	Pipelines() pipeline.Cache

	// Invalidate drops every pipeline and forces every queue to reclassify.
	Invalidate()

	// Cleanup detaches every queue and releases every pipeline.
	Cleanup()
}

var _ RenderPass = &renderPass{}

// NewRenderPass creates an opaque render pass unless WithTransparent is given.
//
// Parameters:
//   - name: identifier of the pass
//   - system: the render system the pass draws with
//   - programs: the program cache shared between passes
//   - options: functional options to configure the pass
//
// Returns:
//   - RenderPass: the new pass
func NewRenderPass(name string, system renderer.RenderSystem, programs shader.Cache, options ...RenderPassBuilderOption) RenderPass {
	if system == nil {
		panic("render_pass: NewRenderPass requires a non-nil RenderSystem")
	}
	if programs == nil {
		panic("render_pass: NewRenderPass requires a non-nil shader.Cache")
	}
	p := &renderPass{
		name:      name,
		system:    system,
		programs:  programs,
		opaque:    true,
		pipelines: pipeline.NewCache(),
		warned:    make(map[mesh.Submesh]struct{}),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *renderPass) Name() string {
	return p.name
}

func (p *renderPass) IsOpaque() bool {
	return p.opaque
}

func (p *renderPass) HasInstancing() bool {
	return p.system.GpuInformations().HasInstancing()
}

func (p *renderPass) Multisampling() bool {
	return p.system.Samples().Enabled()
}

func (p *renderPass) UpdateFlags(f flags.ProgramFlags) flags.ProgramFlags {
	return f.With(p.programFlags)
}

func (p *renderPass) IgnoredNode() scene.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ignored
}

func (p *renderPass) SetIgnoredNode(node scene.Node) {
	p.mu.Lock()
	p.ignored = node
	queues := slices.Clone(p.queues)
	p.mu.Unlock()

	for _, q := range queues {
		q.OnSceneChanged(q.Scene())
	}
}

// key normalises f the way the pipelines of this pass are stored.
func (p *renderPass) key(f pipeline.Flags) pipeline.Flags {
	if p.opaque {
		f.AlphaBlendMode = flags.BlendModeNone
	}
	return f
}

func (p *renderPass) PreparePipeline(f pipeline.Flags, frontToo bool) error {
	f = p.key(f)
	if _, err := p.pipelines.GetOrCreate(pipeline.CullBack, f, func() (pipeline.Pipeline, error) {
		return p.createPipeline(f, pipeline.CullBack)
	}); err != nil {
		return err
	}
	if !frontToo {
		return nil
	}
	_, err := p.pipelines.GetOrCreate(pipeline.CullFront, f, func() (pipeline.Pipeline, error) {
		return p.createPipeline(f, pipeline.CullFront)
	})
	return err
}

// createPipeline builds the pipeline of one cull side. Front pipelines draw back faces
// and use the normal inverting program.
func (p *renderPass) createPipeline(f pipeline.Flags, cull pipeline.CullMode) (pipeline.Pipeline, error) {
	program, err := p.programs.Get(shader.ProgramKey{
		TextureFlags:  f.TextureFlags,
		ProgramFlags:  f.ProgramFlags,
		InvertNormals: cull == pipeline.CullFront,
	})
	if err != nil {
		return nil, err
	}

	options := []pipeline.PipelineBuilderOption{
		pipeline.WithCullMode(cull),
		pipeline.WithBlendState(pipeline.NewBlendState(f.ColourBlendMode, f.AlphaBlendMode)),
	}
	if !p.opaque {
		if p.Multisampling() {
			options = append(options, pipeline.WithAlphaToCoverage(true))
		} else {
			options = append(options, pipeline.WithDepthWrite(false))
		}
	}
	return pipeline.NewPipeline(f, program, p.system, options...), nil
}

func (p *renderPass) FrontPipeline(f pipeline.Flags) (pipeline.Pipeline, bool) {
	return p.pipelines.Get(pipeline.CullFront, p.key(f))
}

func (p *renderPass) BackPipeline(f pipeline.Flags) (pipeline.Pipeline, bool) {
	return p.pipelines.Get(pipeline.CullBack, p.key(f))
}

func (p *renderPass) Pipelines() pipeline.Cache {
	return p.pipelines
}

func (p *renderPass) AddScene(s scene.Scene, cam camera.Camera) render_queue.RenderQueue {
	if s == nil {
		panic("render_pass: AddScene requires a non-nil Scene")
	}
	q := render_queue.NewRenderQueue(p)
	q.InitialiseWithCamera(s, cam)

	p.mu.Lock()
	p.queues = append(p.queues, q)
	p.mu.Unlock()
	logger.Debug("scene attached", "pass", p.name, "scene", s.Name(), "queue", q.ID(), "state", q.State())
	return q
}

func (p *renderPass) RemoveQueue(id uuid.UUID) bool {
	p.mu.Lock()
	i := slices.IndexFunc(p.queues, func(q render_queue.RenderQueue) bool { return q.ID() == id })
	if i < 0 {
		p.mu.Unlock()
		return false
	}
	q := p.queues[i]
	p.queues = slices.Delete(p.queues, i, i+1)
	p.mu.Unlock()

	q.Cleanup()
	return true
}

func (p *renderPass) Queues() []render_queue.RenderQueue {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.queues)
}

func (p *renderPass) Update() {
	for _, q := range p.Queues() {
		q.Update()
	}
}

func (p *renderPass) Render(register bool) RenderInfo {
	queues := p.Queues()
	f := &frame{pass: p, register: register}
	for _, q := range queues {
		nodes := q.RenderNodes()
		if nodes == nil {
			continue
		}
		f.begin(q.Scene(), q.Camera())
		f.render(nodes)
	}

	p.mu.Lock()
	p.rendered = f.rendered
	p.mu.Unlock()
	return f.info
}

func (p *renderPass) RenderedNodes() []render_node.RenderNode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.rendered)
}

// warnOnce reports whether the capacity warning for sm has not been logged yet.
func (p *renderPass) warnOnce(sm mesh.Submesh) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.warned[sm]; ok {
		return false
	}
	p.warned[sm] = struct{}{}
	return true
}

func (p *renderPass) Invalidate() {
	p.pipelines.Clear()
	for _, q := range p.Queues() {
		q.OnSceneChanged(q.Scene())
	}
	logger.Debug("pipelines invalidated", "pass", p.name)
}

func (p *renderPass) Cleanup() {
	p.mu.Lock()
	queues := p.queues
	p.queues = nil
	p.rendered = nil
	p.mu.Unlock()

	for _, q := range queues {
		q.Cleanup()
	}
	p.pipelines.Clear()
}
