package material

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/go-gl/mathgl/mgl32"
)

// PassBuilderOption is a function that configures a pass during construction.
type PassBuilderOption func(*pass)

// WithDiffuse is an option builder that sets the diffuse colour of the pass.
//
// Parameters:
//   - c: RGBA colour
//
// Returns:
//   - PassBuilderOption: a function that applies the diffuse colour
func WithDiffuse(c mgl32.Vec4) PassBuilderOption {
	return func(p *pass) {
		p.diffuse = c
	}
}

// WithAmbient is an option builder that sets the ambient colour of the pass.
func WithAmbient(c mgl32.Vec4) PassBuilderOption {
	return func(p *pass) {
		p.ambient = c
	}
}

// WithSpecular is an option builder that sets the specular colour and exponent.
//
// Parameters:
//   - c: RGBA colour
//   - shininess: specular exponent
//
// Returns:
//   - PassBuilderOption: a function that applies the specular settings
func WithSpecular(c mgl32.Vec4, shininess float32) PassBuilderOption {
	return func(p *pass) {
		p.specular = c
		p.shininess = shininess
	}
}

// WithEmissive is an option builder that sets the emissive colour of the pass.
func WithEmissive(c mgl32.Vec4) PassBuilderOption {
	return func(p *pass) {
		p.emissive = c
	}
}

// WithOpacity is an option builder that sets the pass opacity, clamped to [0, 1].
func WithOpacity(opacity float32) PassBuilderOption {
	return func(p *pass) {
		p.opacity = mgl32.Clamp(opacity, 0, 1)
	}
}

// WithTwoSided is an option builder that makes the pass draw both faces.
func WithTwoSided(twoSided bool) PassBuilderOption {
	return func(p *pass) {
		p.twoSided = twoSided
	}
}

// WithBlendModes is an option builder that sets the colour and alpha blend modes.
//
// Parameters:
//   - colour: blend mode for the RGB components
//   - alpha: blend mode for the alpha component
//
// Returns:
//   - PassBuilderOption: a function that applies the blend modes
func WithBlendModes(colour, alpha flags.BlendMode) PassBuilderOption {
	return func(p *pass) {
		p.colourBlendMode = colour
		p.alphaBlendMode = alpha
	}
}

// WithTexture is an option builder that attaches an image to a texture channel.
//
// Parameters:
//   - channel: a single texture channel bit
//   - img: the source image
//
// Returns:
//   - PassBuilderOption: a function that attaches the texture
func WithTexture(channel Channel, img *common.TextureImage) PassBuilderOption {
	return func(p *pass) {
		p.units = append(p.units, &TextureUnit{Channel: channel, Image: img})
	}
}
