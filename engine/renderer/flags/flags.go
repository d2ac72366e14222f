// Package flags defines the typed bitsets and enums that key shader programs and
// pipelines: program flags, texture channels and blend modes.
package flags

import (
	"fmt"
	"strings"
)

// ProgramFlags selects the shader program variant used to draw an object.
type ProgramFlags uint16

const (
	// ProgramInstantiation draws the object through a per-instance transform buffer.
	ProgramInstantiation ProgramFlags = 1 << iota
	// ProgramSkinning deforms vertices with a skeleton.
	ProgramSkinning
	// ProgramMorphing interpolates between two vertex keyframes.
	ProgramMorphing
	// ProgramShadows samples shadow maps when shading.
	ProgramShadows
	// ProgramShadowMap renders depth into a shadow map.
	ProgramShadowMap
	// ProgramAlphaBlending blends the output with the framebuffer.
	ProgramAlphaBlending
	// ProgramBillboards expands points into camera-facing quads.
	ProgramBillboards
	// ProgramPicking writes object identifiers instead of colours.
	ProgramPicking
)

var programFlagNames = []struct {
	flag ProgramFlags
	name string
}{
	{ProgramInstantiation, "Instantiation"},
	{ProgramSkinning, "Skinning"},
	{ProgramMorphing, "Morphing"},
	{ProgramShadows, "Shadows"},
	{ProgramShadowMap, "ShadowMap"},
	{ProgramAlphaBlending, "AlphaBlending"},
	{ProgramBillboards, "Billboards"},
	{ProgramPicking, "Picking"},
}

// Has reports whether every bit of o is set in f.
func (f ProgramFlags) Has(o ProgramFlags) bool { return f&o == o }

// Any reports whether at least one bit of o is set in f.
func (f ProgramFlags) Any(o ProgramFlags) bool { return f&o != 0 }

// With returns f with the bits of o set.
func (f ProgramFlags) With(o ProgramFlags) ProgramFlags { return f | o }

// Without returns f with the bits of o cleared.
func (f ProgramFlags) Without(o ProgramFlags) ProgramFlags { return f &^ o }

// Set returns f with o set when on is true and cleared otherwise.
func (f ProgramFlags) Set(o ProgramFlags, on bool) ProgramFlags {
	if on {
		return f.With(o)
	}
	return f.Without(o)
}

func (f ProgramFlags) IsInstanced() bool      { return f.Has(ProgramInstantiation) }
func (f ProgramFlags) IsSkinned() bool        { return f.Has(ProgramSkinning) }
func (f ProgramFlags) IsMorphed() bool        { return f.Has(ProgramMorphing) }
func (f ProgramFlags) IsAnimated() bool       { return f.Any(ProgramSkinning | ProgramMorphing) }
func (f ProgramFlags) ReceivesShadows() bool  { return f.Has(ProgramShadows) }
func (f ProgramFlags) IsShadowMap() bool      { return f.Has(ProgramShadowMap) }
func (f ProgramFlags) HasAlphaBlending() bool { return f.Has(ProgramAlphaBlending) }
func (f ProgramFlags) IsBillboard() bool      { return f.Has(ProgramBillboards) }
func (f ProgramFlags) IsPicking() bool        { return f.Has(ProgramPicking) }

func (f ProgramFlags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	rest := f
	for _, n := range programFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
			rest = rest.Without(n.flag)
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint16(rest)))
	}
	return strings.Join(parts, "|")
}

// TextureChannels records which texture maps a pass samples.
type TextureChannels uint16

const (
	TextureDiffuse TextureChannels = 1 << iota
	TextureNormal
	TextureOpacity
	TextureSpecular
	TextureEmissive
	TextureHeight
	TextureGloss
	TextureAmbient
)

// TextureNone is the empty channel set.
const TextureNone TextureChannels = 0

var textureChannelNames = []struct {
	flag TextureChannels
	name string
}{
	{TextureDiffuse, "Diffuse"},
	{TextureNormal, "Normal"},
	{TextureOpacity, "Opacity"},
	{TextureSpecular, "Specular"},
	{TextureEmissive, "Emissive"},
	{TextureHeight, "Height"},
	{TextureGloss, "Gloss"},
	{TextureAmbient, "Ambient"},
}

// Has reports whether every bit of o is set in t.
func (t TextureChannels) Has(o TextureChannels) bool { return t&o == o }

// With returns t with the bits of o set.
func (t TextureChannels) With(o TextureChannels) TextureChannels { return t | o }

// Without returns t with the bits of o cleared.
func (t TextureChannels) Without(o TextureChannels) TextureChannels { return t &^ o }

// HasOpacityMap reports whether the opacity channel is sampled.
func (t TextureChannels) HasOpacityMap() bool { return t.Has(TextureOpacity) }

// Channels lists the individual channels set in t, in bit order.
func (t TextureChannels) Channels() []TextureChannels {
	var out []TextureChannels
	for _, n := range textureChannelNames {
		if t.Has(n.flag) {
			out = append(out, n.flag)
		}
	}
	return out
}

func (t TextureChannels) String() string {
	if t == 0 {
		return "None"
	}
	var parts []string
	for _, n := range textureChannelNames {
		if t.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// BlendMode describes how a pass combines its output with the framebuffer.
type BlendMode int

const (
	// BlendModeNone writes the source unchanged.
	BlendModeNone BlendMode = iota
	// BlendModeAdditive adds the source to the destination.
	BlendModeAdditive
	// BlendModeMultiplicative multiplies the destination by the inverse source.
	BlendModeMultiplicative
	// BlendModeInterpolative lerps between destination and source by the source.
	BlendModeInterpolative
)

func (b BlendMode) String() string {
	switch b {
	case BlendModeNone:
		return "None"
	case BlendModeAdditive:
		return "Additive"
	case BlendModeMultiplicative:
		return "Multiplicative"
	case BlendModeInterpolative:
		return "Interpolative"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
}
