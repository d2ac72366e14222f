// Package renderer defines the render system abstraction implemented by the GPU
// backends. A RenderSystem compiles programs, creates buffers and textures and
// applies pipeline state; the draw path above it never talks to the GPU API directly.
package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// GpuInformations describes the capabilities of the active rendering context.
type GpuInformations struct {
	Vendor          string
	Renderer        string
	Version         string
	ShadingLanguage string

	MaxTextureSize   int32
	MaxSamples       int32
	MaxVertexAttribs int32

	// Instancing is true when instanced draws with attribute divisors are available.
	Instancing bool
}

// HasInstancing reports whether the context supports hardware instancing.
func (g GpuInformations) HasInstancing() bool {
	return g.Instancing
}

func (g GpuInformations) String() string {
	return fmt.Sprintf("%s %s (%s, GLSL %s)", g.Vendor, g.Renderer, g.Version, g.ShadingLanguage)
}

// RenderSystem is the GPU backend used by render passes.
// Every method must be called from the goroutine owning the rendering context.
type RenderSystem interface {
	shader.Compiler
	buffer.Factory
	material.TextureFactory
	pipeline.StateApplier

	// Backend returns the backend type.
	Backend() BackendType

	// GpuInformations returns the capabilities queried when the context was created.
	GpuInformations() GpuInformations

	// Samples returns the multisample count of the default framebuffer.
	Samples() MSAASampleCount

	// SetViewport resizes the drawable area.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	SetViewport(width, height int)

	// BeginFrame clears the colour and depth buffers.
	//
	// Parameters:
	//   - clear: the background colour
	BeginFrame(clear mgl32.Vec4)

	// EndFrame restores the default state after the last draw of a frame.
	EndFrame()

	// Release destroys every GPU object owned by the render system.
	Release()
}
