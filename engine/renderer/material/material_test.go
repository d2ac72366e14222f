package material

import (
	"errors"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	bound    []uint32
	released bool
}

func (t *fakeTexture) Bind(unit uint32) { t.bound = append(t.bound, unit) }
func (t *fakeTexture) Unbind(uint32)    {}
func (t *fakeTexture) Release()         { t.released = true }

type fakeTextureFactory struct {
	created int
	fail    error
}

func (f *fakeTextureFactory) CreateTexture(*common.TextureImage) (Texture, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.created++
	return &fakeTexture{}, nil
}

func TestNewMaterialDefaultPass(t *testing.T) {
	m := NewMaterial("plain")
	require.Equal(t, 1, m.PassCount())
	p := m.Pass(0)
	assert.Equal(t, 0, p.Index())
	assert.False(t, p.HasAlphaBlending())
	assert.False(t, p.IsTwoSided())
	assert.Nil(t, m.Pass(3))

	empty := NewMaterial("empty", WithoutDefaultPass())
	assert.Equal(t, 0, empty.PassCount())
}

func TestPassAlphaBlending(t *testing.T) {
	tests := []struct {
		name    string
		options []PassBuilderOption
		want    bool
	}{
		{"opaque", nil, false},
		{"translucent without blend mode", []PassBuilderOption{WithOpacity(0.5)}, false},
		{"translucent interpolative", []PassBuilderOption{WithOpacity(0.5), WithBlendModes(flags.BlendModeInterpolative, flags.BlendModeInterpolative)}, true},
		{"opaque interpolative", []PassBuilderOption{WithBlendModes(flags.BlendModeInterpolative, flags.BlendModeInterpolative)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial(tt.name, WithPass(tt.options...))
			assert.Equal(t, tt.want, m.Pass(0).HasAlphaBlending())
			assert.Equal(t, tt.want, m.HasAlphaBlending())
		})
	}
}

func TestPrepareTexturesOpacityMap(t *testing.T) {
	img := common.SolidTextureImage("opacity", color.RGBA{A: 128})
	m := NewMaterial("leaf", WithPass(
		WithTexture(flags.TextureDiffuse, common.SolidTextureImage("diffuse", color.RGBA{G: 255, A: 255})),
		WithTexture(flags.TextureOpacity, img),
	))
	p := m.Pass(0)
	assert.Equal(t, flags.TextureNone, p.TextureFlags())

	p.PrepareTextures()
	assert.Equal(t, flags.TextureDiffuse.With(flags.TextureOpacity), p.TextureFlags())
	assert.Equal(t, flags.BlendModeInterpolative, p.AlphaBlendMode())
	assert.True(t, p.HasAlphaBlending())

	p.PrepareTextures()
	assert.Equal(t, flags.TextureDiffuse.With(flags.TextureOpacity), p.TextureFlags())
}

func TestPassChangesPropagateToMaterial(t *testing.T) {
	m := NewMaterial("glass")
	count := 0
	m.OnChanged().Connect(func(Material) { count++ })

	m.Pass(0).SetTwoSided(true)
	m.Pass(0).SetOpacity(0.25)
	m.CreatePass()
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, m.Pass(1).Index())

	m.RemovePass(0)
	assert.Equal(t, 4, count)
	assert.Equal(t, 0, m.Pass(0).Index())
}

func TestPassInitialiseUploadsOnce(t *testing.T) {
	m := NewMaterial("crate", WithPass(WithTexture(flags.TextureDiffuse, common.SolidTextureImage("d", color.RGBA{R: 255, A: 255}))))
	p := m.Pass(0)
	f := &fakeTextureFactory{}
	require.NoError(t, p.Initialise(f))
	require.NoError(t, p.Initialise(f))
	assert.Equal(t, 1, f.created)

	units := p.Units()
	require.Len(t, units, 1)
	assert.NotNil(t, units[0].Texture)
}

func TestPassInitialiseFailure(t *testing.T) {
	m := NewMaterial("broken", WithPass(WithTexture(flags.TextureSpecular, &common.TextureImage{Name: "missing"})))
	err := m.Pass(0).Initialise(&fakeTextureFactory{})
	assert.Error(t, err)

	m2 := NewMaterial("gpu", WithPass(WithTexture(flags.TextureDiffuse, common.SolidTextureImage("d", color.RGBA{}))))
	err = m2.Pass(0).Initialise(&fakeTextureFactory{fail: errors.New("out of memory")})
	assert.ErrorContains(t, err, "out of memory")
}
