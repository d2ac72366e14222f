package opengl

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// state is the last pipeline state sent to GL.
type state struct {
	valid      bool
	cull       pipeline.CullMode
	depthTest  bool
	depthWrite bool
	blend      pipeline.BlendState
	coverage   bool
}

// renderSystem is the OpenGL implementation of renderer.RenderSystem.
type renderSystem struct {
	info       renderer.GpuInformations
	samples    renderer.MSAASampleCount
	instancing bool

	current  state
	released bool
}

var _ renderer.RenderSystem = &renderSystem{}

// NewRenderSystem loads the GL entry points of the current context and queries its
// capabilities. The context must be current on the calling goroutine.
//
// Parameters:
//   - options: functional options to configure the render system
//
// Returns:
//   - renderer.RenderSystem: the render system
//   - error: error if the GL entry points cannot be loaded
func NewRenderSystem(options ...RenderSystemBuilderOption) (renderer.RenderSystem, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise OpenGL: %w", err)
	}
	r := &renderSystem{
		samples:    renderer.MSAAOff,
		instancing: true,
	}
	for _, opt := range options {
		opt(r)
	}

	r.info = queryGpuInformations()
	r.info.Instancing = r.info.Instancing && r.instancing
	if limit := renderer.MSAASampleCount(r.info.MaxSamples); limit > 0 && r.samples > limit {
		logger.Warn("multisampling clamped", "requested", r.samples, "max", limit)
		r.samples = limit
	}
	if r.samples.Enabled() {
		gl.Enable(gl.MULTISAMPLE)
	}
	gl.DepthFunc(gl.LEQUAL)

	logger.Info("render system ready", "backend", r.Backend(), "gpu", r.info, "samples", r.samples)
	return r, nil
}

func queryGpuInformations() renderer.GpuInformations {
	var maxTexture, maxSamples, maxAttribs int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTexture)
	gl.GetIntegerv(gl.MAX_SAMPLES, &maxSamples)
	gl.GetIntegerv(gl.MAX_VERTEX_ATTRIBS, &maxAttribs)
	return renderer.GpuInformations{
		Vendor:           gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:         gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:          gl.GoStr(gl.GetString(gl.VERSION)),
		ShadingLanguage:  gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		MaxTextureSize:   maxTexture,
		MaxSamples:       maxSamples,
		MaxVertexAttribs: maxAttribs,
		Instancing:       maxAttribs > instancePassIndexLocation,
	}
}

func (r *renderSystem) Backend() renderer.BackendType {
	return renderer.BackendOpenGL
}

func (r *renderSystem) GpuInformations() renderer.GpuInformations {
	return r.info
}

func (r *renderSystem) Samples() renderer.MSAASampleCount {
	return r.samples
}

func (r *renderSystem) CompileProgram(name string, src shader.ProgramSource) (shader.Program, error) {
	return compileProgram(name, src)
}

func (r *renderSystem) CreateGeometryBuffers(layout buffer.VertexLayout, vertices []float32, indices []uint32, matrices *buffer.MatrixBuffer) (buffer.GeometryBuffers, error) {
	return newGeometryBuffers(layout, vertices, indices, matrices)
}

func (r *renderSystem) CreateMatrixStore(size int) (buffer.MatrixStore, error) {
	return newMatrixStore(size)
}

func (r *renderSystem) CreateTexture(img *common.TextureImage) (material.Texture, error) {
	return newTexture(img)
}

// ApplyPipeline sends the fixed function state of p, skipping what is already set.
func (r *renderSystem) ApplyPipeline(p pipeline.Pipeline) {
	next := state{
		valid:      true,
		cull:       p.CullMode(),
		depthTest:  p.DepthTest(),
		depthWrite: p.DepthWrite(),
		blend:      p.BlendState(),
		coverage:   p.AlphaToCoverage(),
	}
	prev := r.current
	force := !prev.valid

	if force || prev.cull != next.cull {
		if enabled, face := CullFace(next.cull); enabled {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(face)
		} else {
			gl.Disable(gl.CULL_FACE)
		}
	}
	if force || prev.depthTest != next.depthTest {
		setCapability(gl.DEPTH_TEST, next.depthTest)
	}
	if force || prev.depthWrite != next.depthWrite {
		gl.DepthMask(next.depthWrite)
	}
	if force || prev.blend != next.blend {
		setCapability(gl.BLEND, next.blend.Enabled)
		if next.blend.Enabled {
			gl.BlendEquation(gl.FUNC_ADD)
			gl.BlendFuncSeparate(
				BlendFactor(next.blend.ColourSrc), BlendFactor(next.blend.ColourDst),
				BlendFactor(next.blend.AlphaSrc), BlendFactor(next.blend.AlphaDst),
			)
		}
	}
	if force || prev.coverage != next.coverage {
		setCapability(gl.SAMPLE_ALPHA_TO_COVERAGE, next.coverage && r.samples.Enabled())
	}
	r.current = next
}

func setCapability(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (r *renderSystem) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *renderSystem) BeginFrame(clear mgl32.Vec4) {
	// Clearing depth requires depth writes.
	gl.DepthMask(true)
	r.current.depthWrite = true
	gl.ClearColor(clear.X(), clear.Y(), clear.Z(), clear.W())
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *renderSystem) EndFrame() {
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.SAMPLE_ALPHA_TO_COVERAGE)
	gl.UseProgram(0)
	gl.BindVertexArray(0)
	r.current = state{}
}

func (r *renderSystem) Release() {
	if r.released {
		return
	}
	r.released = true
	r.current = state{}
	logger.Debug("render system released", "backend", r.Backend())
}
