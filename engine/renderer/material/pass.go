package material

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/go-gl/mathgl/mgl32"
)

// Channel is an alias for the texture channel bits a pass samples.
type Channel = flags.TextureChannels

// pass is the implementation of the Pass interface.
type pass struct {
	mu sync.Mutex

	index int

	ambient   mgl32.Vec4
	diffuse   mgl32.Vec4
	specular  mgl32.Vec4
	emissive  mgl32.Vec4
	shininess float32
	opacity   float32

	twoSided        bool
	colourBlendMode flags.BlendMode
	alphaBlendMode  flags.BlendMode

	units        []*TextureUnit
	textureFlags flags.TextureChannels
	prepared     bool

	changed signal.Signal[Pass]
}

// Pass defines one shading layer of a material.
type Pass interface {
	// Index returns the position of the pass within its material.
	Index() int

	// ColourBlendMode returns the blend mode applied to colour components.
	ColourBlendMode() flags.BlendMode

	// AlphaBlendMode returns the blend mode applied to the alpha component.
	AlphaBlendMode() flags.BlendMode

	// SetColourBlendMode sets the colour blend mode and notifies OnChanged.
	SetColourBlendMode(mode flags.BlendMode)

	// SetAlphaBlendMode sets the alpha blend mode and notifies OnChanged.
	SetAlphaBlendMode(mode flags.BlendMode)

	// IsTwoSided reports whether both faces of the pass geometry are drawn.
	IsTwoSided() bool

	// SetTwoSided toggles two-sided drawing and notifies OnChanged.
	SetTwoSided(twoSided bool)

	// HasAlphaBlending reports whether the pass needs blending with the frame buffer:
	// its alpha blend mode is not None and it is either translucent or has an opacity map.
	HasAlphaBlending() bool

	// TextureFlags returns the channels derived by the last PrepareTextures call.
	TextureFlags() flags.TextureChannels

	// AddTexture attaches an image to a channel, replacing any previous one.
	//
	// Parameters:
	//   - channel: a single texture channel bit
	//   - img: the source image
	AddTexture(channel Channel, img *common.TextureImage)

	// Units returns a snapshot of the attached texture units.
	Units() []TextureUnit

	// PrepareTextures derives TextureFlags from the attached units. When an opacity map
	// is present and the alpha blend mode is None, the alpha mode becomes Interpolative.
	// Calling it again without new textures is a no-op.
	PrepareTextures()

	// Initialise uploads every decoded unit image that has no GPU texture yet.
	//
	// Parameters:
	//   - factory: the texture uploader
	//
	// Returns:
	//   - error: error if an image fails to decode or upload
	Initialise(factory TextureFactory) error

	// AmbientColour returns the ambient colour.
	AmbientColour() mgl32.Vec4

	// DiffuseColour returns the diffuse colour.
	DiffuseColour() mgl32.Vec4

	// SpecularColour returns the specular colour.
	SpecularColour() mgl32.Vec4

	// EmissiveColour returns the emissive colour.
	EmissiveColour() mgl32.Vec4

	// Shininess returns the specular exponent.
	Shininess() float32

	// Opacity returns the global opacity in [0, 1].
	Opacity() float32

	// SetDiffuseColour sets the diffuse colour.
	SetDiffuseColour(c mgl32.Vec4)

	// SetOpacity sets the global opacity, clamped to [0, 1], and notifies OnChanged.
	SetOpacity(opacity float32)

	// Bind uploads the pass uniforms to program and activates its textures.
	Bind(program shader.Program)

	// Unbind deactivates the pass textures.
	Unbind()

	// OnChanged is emitted when a property affecting classification changes.
	OnChanged() *signal.Signal[Pass]
}

var _ Pass = &pass{}

func newPass(index int, options ...PassBuilderOption) *pass {
	p := &pass{
		index:           index,
		ambient:         mgl32.Vec4{0, 0, 0, 1},
		diffuse:         mgl32.Vec4{1, 1, 1, 1},
		specular:        mgl32.Vec4{1, 1, 1, 1},
		emissive:        mgl32.Vec4{0, 0, 0, 1},
		shininess:       50,
		opacity:         1,
		colourBlendMode: flags.BlendModeNone,
		alphaBlendMode:  flags.BlendModeNone,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pass) setIndex(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = i
}

func (p *pass) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

func (p *pass) ColourBlendMode() flags.BlendMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colourBlendMode
}

func (p *pass) AlphaBlendMode() flags.BlendMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alphaBlendMode
}

func (p *pass) SetColourBlendMode(mode flags.BlendMode) {
	p.mu.Lock()
	p.colourBlendMode = mode
	p.mu.Unlock()
	p.changed.Emit(p)
}

func (p *pass) SetAlphaBlendMode(mode flags.BlendMode) {
	p.mu.Lock()
	p.alphaBlendMode = mode
	p.mu.Unlock()
	p.changed.Emit(p)
}

func (p *pass) IsTwoSided() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.twoSided
}

func (p *pass) SetTwoSided(twoSided bool) {
	p.mu.Lock()
	p.twoSided = twoSided
	p.mu.Unlock()
	p.changed.Emit(p)
}

func (p *pass) HasAlphaBlending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasAlphaBlending()
}

func (p *pass) hasAlphaBlending() bool {
	if p.alphaBlendMode == flags.BlendModeNone {
		return false
	}
	return p.opacity < 1 || p.hasUnit(flags.TextureOpacity)
}

func (p *pass) hasUnit(channel Channel) bool {
	for _, u := range p.units {
		if u.Channel == channel {
			return true
		}
	}
	return false
}

func (p *pass) TextureFlags() flags.TextureChannels {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textureFlags
}

func (p *pass) AddTexture(channel Channel, img *common.TextureImage) {
	p.mu.Lock()
	replaced := false
	for _, u := range p.units {
		if u.Channel == channel {
			if u.Texture != nil {
				u.Texture.Release()
			}
			u.Image, u.Texture = img, nil
			replaced = true
			break
		}
	}
	if !replaced {
		p.units = append(p.units, &TextureUnit{Channel: channel, Image: img})
	}
	p.prepared = false
	p.mu.Unlock()
	p.changed.Emit(p)
}

func (p *pass) Units() []TextureUnit {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TextureUnit, 0, len(p.units))
	for _, u := range p.units {
		out = append(out, *u)
	}
	return out
}

func (p *pass) PrepareTextures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prepared {
		return
	}
	p.textureFlags = flags.TextureNone
	for _, u := range p.units {
		p.textureFlags = p.textureFlags.With(u.Channel)
	}
	if p.textureFlags.HasOpacityMap() && p.alphaBlendMode == flags.BlendModeNone {
		p.alphaBlendMode = flags.BlendModeInterpolative
	}
	p.prepared = true
}

func (p *pass) Initialise(factory TextureFactory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.units {
		if u.Texture != nil || u.Image == nil {
			continue
		}
		if err := u.Image.Decode(); err != nil {
			return fmt.Errorf("failed to initialise %s texture: %w", u.Channel, err)
		}
		tex, err := factory.CreateTexture(u.Image)
		if err != nil {
			return fmt.Errorf("failed to initialise %s texture: %w", u.Channel, err)
		}
		u.Texture = tex
	}
	return nil
}

func (p *pass) AmbientColour() mgl32.Vec4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ambient
}

func (p *pass) DiffuseColour() mgl32.Vec4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.diffuse
}

func (p *pass) SpecularColour() mgl32.Vec4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.specular
}

func (p *pass) EmissiveColour() mgl32.Vec4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.emissive
}

func (p *pass) Shininess() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shininess
}

func (p *pass) Opacity() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opacity
}

func (p *pass) SetDiffuseColour(c mgl32.Vec4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diffuse = c
}

func (p *pass) SetOpacity(opacity float32) {
	p.mu.Lock()
	p.opacity = mgl32.Clamp(opacity, 0, 1)
	p.mu.Unlock()
	p.changed.Emit(p)
}

func (p *pass) Bind(program shader.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()

	program.SetVec4(shader.UniformAmbientColour, p.ambient)
	program.SetVec4(shader.UniformDiffuseColour, p.diffuse)
	program.SetVec4(shader.UniformSpecularColour, p.specular)
	program.SetVec4(shader.UniformEmissiveColour, p.emissive)
	program.SetFloat(shader.UniformShininess, p.shininess)
	program.SetFloat(shader.UniformOpacity, p.opacity)

	var unit uint32
	for _, u := range p.units {
		sampler := shader.SamplerName(u.Channel)
		if u.Texture == nil || sampler == "" || !p.textureFlags.Has(u.Channel) {
			continue
		}
		u.Texture.Bind(unit)
		program.SetInt(sampler, int32(unit))
		unit++
	}
}

func (p *pass) Unbind() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var unit uint32
	for _, u := range p.units {
		if u.Texture == nil || shader.SamplerName(u.Channel) == "" || !p.textureFlags.Has(u.Channel) {
			continue
		}
		u.Texture.Unbind(unit)
		unit++
	}
}

func (p *pass) OnChanged() *signal.Signal[Pass] {
	return &p.changed
}
