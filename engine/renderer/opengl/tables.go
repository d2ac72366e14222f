// Package opengl implements renderer.RenderSystem on an OpenGL 4.1 core context through go-gl.
// Every call must be made on the goroutine the context is current on.
package opengl

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// blendFactors maps engine blend factors to GL codes.
var blendFactors = [...]uint32{
	pipeline.BlendZero:         gl.ZERO,
	pipeline.BlendOne:          gl.ONE,
	pipeline.BlendSrcColour:    gl.SRC_COLOR,
	pipeline.BlendInvSrcColour: gl.ONE_MINUS_SRC_COLOR,
	pipeline.BlendSrcAlpha:     gl.SRC_ALPHA,
	pipeline.BlendInvSrcAlpha:  gl.ONE_MINUS_SRC_ALPHA,
	pipeline.BlendDstColour:    gl.DST_COLOR,
	pipeline.BlendInvDstColour: gl.ONE_MINUS_DST_COLOR,
	pipeline.BlendDstAlpha:     gl.DST_ALPHA,
	pipeline.BlendInvDstAlpha:  gl.ONE_MINUS_DST_ALPHA,
}

// BlendFactor returns the GL code of f. Unknown factors map to GL_ONE.
func BlendFactor(f pipeline.BlendFactor) uint32 {
	if f < 0 || int(f) >= len(blendFactors) {
		return gl.ONE
	}
	return blendFactors[f]
}

// CullFace returns whether culling is enabled for mode and the face GL culls.
func CullFace(mode pipeline.CullMode) (enabled bool, face uint32) {
	switch mode {
	case pipeline.CullFront:
		return true, gl.FRONT
	case pipeline.CullBack:
		return true, gl.BACK
	default:
		return false, gl.BACK
	}
}

// TextureUnit returns the GL enum of sampler unit n.
func TextureUnit(n uint32) uint32 {
	return gl.TEXTURE0 + n
}

// StageName names a shader stage for error messages.
func StageName(stage uint32) string {
	switch stage {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	case gl.GEOMETRY_SHADER:
		return "geometry"
	default:
		return "unknown"
	}
}

// Instance attribute locations. The transform takes four consecutive vec4 slots.
const (
	instanceTransformLocation = 8
	instancePassIndexLocation = 12
)

// glBool converts a GL boolean query result.
func glBool(v int32) bool {
	return v == gl.TRUE
}
