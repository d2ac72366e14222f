package opengl

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
)

func TestBlendFactor(t *testing.T) {
	tests := []struct {
		factor pipeline.BlendFactor
		want   uint32
	}{
		{pipeline.BlendZero, gl.ZERO},
		{pipeline.BlendOne, gl.ONE},
		{pipeline.BlendSrcColour, gl.SRC_COLOR},
		{pipeline.BlendInvSrcColour, gl.ONE_MINUS_SRC_COLOR},
		{pipeline.BlendSrcAlpha, gl.SRC_ALPHA},
		{pipeline.BlendInvSrcAlpha, gl.ONE_MINUS_SRC_ALPHA},
		{pipeline.BlendDstColour, gl.DST_COLOR},
		{pipeline.BlendInvDstAlpha, gl.ONE_MINUS_DST_ALPHA},
		{pipeline.BlendFactor(99), gl.ONE},
		{pipeline.BlendFactor(-1), gl.ONE},
	}
	for _, tt := range tests {
		t.Run(tt.factor.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, BlendFactor(tt.factor))
		})
	}
}

func TestCullFace(t *testing.T) {
	enabled, face := CullFace(pipeline.CullFront)
	assert.True(t, enabled)
	assert.Equal(t, uint32(gl.FRONT), face)

	enabled, face = CullFace(pipeline.CullBack)
	assert.True(t, enabled)
	assert.Equal(t, uint32(gl.BACK), face)

	enabled, _ = CullFace(pipeline.CullNone)
	assert.False(t, enabled)
}

func TestTextureUnitAndStageName(t *testing.T) {
	assert.Equal(t, uint32(gl.TEXTURE0), TextureUnit(0))
	assert.Equal(t, uint32(gl.TEXTURE3), TextureUnit(3))
	assert.Equal(t, "vertex", StageName(gl.VERTEX_SHADER))
	assert.Equal(t, "fragment", StageName(gl.FRAGMENT_SHADER))
	assert.Equal(t, "unknown", StageName(0))
}

func TestBuilderOptions(t *testing.T) {
	r := &renderSystem{samples: renderer.MSAAOff, instancing: true}
	WithSamples(renderer.MSAA8x)(r)
	WithInstancing(false)(r)
	assert.Equal(t, renderer.MSAA8x, r.samples)
	assert.False(t, r.instancing)

	WithSamples(0)(r)
	assert.Equal(t, renderer.MSAAOff, r.samples)
}
