package render_pass

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"

// RenderPassBuilderOption is a functional option for configuring a RenderPass.
type RenderPassBuilderOption func(*renderPass)

// WithOpaque makes the pass draw objects without alpha blending. This is the default.
func WithOpaque() RenderPassBuilderOption {
	return func(p *renderPass) {
		p.opaque = true
	}
}

// WithTransparent makes the pass draw alpha blended objects.
func WithTransparent() RenderPassBuilderOption {
	return func(p *renderPass) {
		p.opaque = false
	}
}

// WithProgramFlags adds program flags to every pipeline the pass creates,
// e.g. flags.ProgramShadowMap for a shadow pass.
func WithProgramFlags(f flags.ProgramFlags) RenderPassBuilderOption {
	return func(p *renderPass) {
		p.programFlags = p.programFlags.With(f)
	}
}

// WithDistanceSort draws non instanced nodes farthest first.
func WithDistanceSort(enabled bool) RenderPassBuilderOption {
	return func(p *renderPass) {
		p.distanceSort = enabled
	}
}
