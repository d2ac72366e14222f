// Package pipeline holds the GPU state objects used to draw render nodes: a compiled
// program plus its blend, cull and depth configuration, cached per pipeline flags.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// CullMode selects which faces a pipeline discards.
type CullMode int

const (
	// CullNone disables face culling.
	CullNone CullMode = iota
	// CullFront discards front faces; used for the inside of two-sided and transparent passes.
	CullFront
	// CullBack discards back faces.
	CullBack
)

func (c CullMode) String() string {
	switch c {
	case CullNone:
		return "None"
	case CullFront:
		return "Front"
	case CullBack:
		return "Back"
	default:
		return "Unknown"
	}
}

// Flags is the complete state key of a pipeline. Two drawables with equal Flags share a pipeline.
type Flags struct {
	TextureFlags    flags.TextureChannels
	ProgramFlags    flags.ProgramFlags
	ColourBlendMode flags.BlendMode
	AlphaBlendMode  flags.BlendMode
}

func (f Flags) String() string {
	return fmt.Sprintf("tex=%s prog=%s colour=%s alpha=%s",
		f.TextureFlags, f.ProgramFlags, f.ColourBlendMode, f.AlphaBlendMode)
}

// StateApplier pushes a pipeline's fixed-function state to the GPU.
// It is supplied by the render backend.
type StateApplier interface {
	ApplyPipeline(p Pipeline)
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	mu sync.Mutex

	flags   Flags
	program shader.Program
	applier StateApplier

	cullMode        CullMode
	depthTest       bool
	depthWrite      bool
	blendState      BlendState
	alphaToCoverage bool

	projection mgl32.Mat4
	view       mgl32.Mat4

	released bool
}

// Pipeline binds a compiled program together with the blend, cull and depth state
// it is drawn with. The projection and view matrices are uploaded on each Apply.
type Pipeline interface {
	// Flags returns the state key the pipeline was created for.
	Flags() Flags

	// Program returns the compiled program drawn by this pipeline.
	Program() shader.Program

	// CullMode returns the faces discarded by the pipeline.
	CullMode() CullMode

	// DepthTest reports whether fragments are depth tested.
	DepthTest() bool

	// DepthWrite reports whether fragments write depth.
	DepthWrite() bool

	// BlendState returns the colour attachment blend configuration.
	BlendState() BlendState

	// AlphaToCoverage reports whether the fragment alpha drives the multisample coverage mask.
	AlphaToCoverage() bool

	// Projection returns the projection matrix uploaded on Apply.
	Projection() mgl32.Mat4

	// SetProjection sets the projection matrix uploaded on Apply.
	//
	// Parameters:
	//   - m: the projection matrix
	SetProjection(m mgl32.Mat4)

	// View returns the view matrix uploaded on Apply.
	View() mgl32.Mat4

	// SetView sets the view matrix uploaded on Apply.
	//
	// Parameters:
	//   - m: the view matrix
	SetView(m mgl32.Mat4)

	// Apply pushes the fixed-function state, binds the program and uploads the
	// projection and view matrices. Applying a released pipeline does nothing.
	Apply()

	// Release detaches the pipeline from its program. The program itself belongs to
	// the shader cache and stays alive.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline drawing program with the given state key. The blend state
// defaults to the one derived from the key's blend modes, with back-face culling and depth
// testing and writing enabled.
//
// Parameters:
//   - f: the pipeline state key
//   - program: the compiled program
//   - applier: the backend pushing fixed-function state
//   - options: functional options overriding the defaults
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(f Flags, program shader.Program, applier StateApplier, options ...PipelineBuilderOption) Pipeline {
	if program == nil {
		panic("pipeline: NewPipeline requires a non-nil Program")
	}
	if applier == nil {
		panic("pipeline: NewPipeline requires a non-nil StateApplier")
	}
	p := &pipeline{
		flags:      f,
		program:    program,
		applier:    applier,
		cullMode:   CullBack,
		depthTest:  true,
		depthWrite: true,
		blendState: NewBlendState(f.ColourBlendMode, f.AlphaBlendMode),
		projection: mgl32.Ident4(),
		view:       mgl32.Ident4(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *pipeline) Flags() Flags {
	return p.flags
}

func (p *pipeline) Program() shader.Program {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.program
}

func (p *pipeline) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline) DepthTest() bool {
	return p.depthTest
}

func (p *pipeline) DepthWrite() bool {
	return p.depthWrite
}

func (p *pipeline) BlendState() BlendState {
	return p.blendState
}

func (p *pipeline) AlphaToCoverage() bool {
	return p.alphaToCoverage
}

func (p *pipeline) Projection() mgl32.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projection
}

func (p *pipeline) SetProjection(m mgl32.Mat4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projection = m
}

func (p *pipeline) View() mgl32.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

func (p *pipeline) SetView(m mgl32.Mat4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = m
}

func (p *pipeline) Apply() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	program, projection, view := p.program, p.projection, p.view
	p.mu.Unlock()

	p.applier.ApplyPipeline(p)
	program.Bind()
	program.SetMat4(shader.UniformProjection, projection)
	program.SetMat4(shader.UniformView, view)
}

func (p *pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
}

func (p *pipeline) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
