package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramFlagsPredicates(t *testing.T) {
	f := ProgramFlags(0).With(ProgramSkinning | ProgramAlphaBlending)

	assert.True(t, f.IsSkinned())
	assert.True(t, f.IsAnimated())
	assert.True(t, f.HasAlphaBlending())
	assert.False(t, f.IsMorphed())
	assert.False(t, f.IsInstanced())

	f = f.Without(ProgramSkinning)
	assert.False(t, f.IsAnimated())
	assert.Equal(t, ProgramAlphaBlending, f)

	assert.True(t, f.Set(ProgramShadows, true).ReceivesShadows())
	assert.False(t, f.Set(ProgramAlphaBlending, false).HasAlphaBlending())
}

func TestProgramFlagsBitsAreDistinct(t *testing.T) {
	seen := ProgramFlags(0)
	for _, n := range programFlagNames {
		assert.False(t, seen.Any(n.flag), n.name)
		seen = seen.With(n.flag)
	}
}

func TestProgramFlagsString(t *testing.T) {
	assert.Equal(t, "None", ProgramFlags(0).String())
	assert.Equal(t, "Instantiation|Billboards", (ProgramInstantiation | ProgramBillboards).String())
	assert.Equal(t, "Picking|0x8000", (ProgramPicking | 0x8000).String())
}

func TestTextureChannels(t *testing.T) {
	c := TextureNone.With(TextureDiffuse).With(TextureOpacity)
	assert.True(t, c.HasOpacityMap())
	assert.Equal(t, []TextureChannels{TextureDiffuse, TextureOpacity}, c.Channels())
	assert.Equal(t, "Diffuse|Opacity", c.String())
	assert.Equal(t, TextureDiffuse, c.Without(TextureOpacity))
}

func TestBlendModeString(t *testing.T) {
	assert.Equal(t, "Interpolative", BlendModeInterpolative.String())
	assert.Equal(t, "BlendMode(9)", BlendMode(9).String())
}
