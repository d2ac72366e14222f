package opengl

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer"

// RenderSystemBuilderOption is a functional option for configuring the OpenGL render system.
type RenderSystemBuilderOption func(*renderSystem)

// WithSamples sets the multisample count the default framebuffer was created with.
// Counts above the context's maximum are clamped.
func WithSamples(samples renderer.MSAASampleCount) RenderSystemBuilderOption {
	return func(r *renderSystem) {
		if samples < renderer.MSAAOff {
			samples = renderer.MSAAOff
		}
		r.samples = samples
	}
}

// WithInstancing turns instanced drawing off when false, even if the context supports it.
func WithInstancing(enabled bool) RenderSystemBuilderOption {
	return func(r *renderSystem) {
		r.instancing = enabled
	}
}
