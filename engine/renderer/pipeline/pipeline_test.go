package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgram struct {
	bound int
	mats  map[string]mgl32.Mat4
}

func (p *fakeProgram) Name() string                      { return "fake" }
func (p *fakeProgram) Bind()                             { p.bound++ }
func (p *fakeProgram) Unbind()                           {}
func (p *fakeProgram) SetMat4Array(string, []mgl32.Mat4) {}
func (p *fakeProgram) SetVec2(string, mgl32.Vec2)        {}
func (p *fakeProgram) SetVec3(string, mgl32.Vec3)        {}
func (p *fakeProgram) SetVec4(string, mgl32.Vec4)        {}
func (p *fakeProgram) SetFloat(string, float32)          {}
func (p *fakeProgram) SetInt(string, int32)              {}
func (p *fakeProgram) Release()                          {}
func (p *fakeProgram) SetMat4(name string, m mgl32.Mat4) {
	if p.mats == nil {
		p.mats = make(map[string]mgl32.Mat4)
	}
	p.mats[name] = m
}

type fakeApplier struct {
	applied []Pipeline
}

func (a *fakeApplier) ApplyPipeline(p Pipeline) { a.applied = append(a.applied, p) }

func TestNewBlendStateTable(t *testing.T) {
	tests := []struct {
		name   string
		colour flags.BlendMode
		alpha  flags.BlendMode
		want   BlendState
	}{
		{"opaque", flags.BlendModeNone, flags.BlendModeNone, BlendState{false, BlendOne, BlendZero, BlendOne, BlendZero}},
		{"additive", flags.BlendModeAdditive, flags.BlendModeAdditive, BlendState{true, BlendOne, BlendOne, BlendOne, BlendOne}},
		{"multiplicative colour", flags.BlendModeMultiplicative, flags.BlendModeNone, BlendState{true, BlendZero, BlendInvSrcColour, BlendOne, BlendZero}},
		{"multiplicative alpha overrides colour", flags.BlendModeInterpolative, flags.BlendModeMultiplicative, BlendState{true, BlendZero, BlendInvSrcAlpha, BlendZero, BlendInvSrcAlpha}},
		{"interpolative colour", flags.BlendModeInterpolative, flags.BlendModeNone, BlendState{true, BlendSrcColour, BlendInvSrcColour, BlendOne, BlendZero}},
		{"interpolative alpha", flags.BlendModeNone, flags.BlendModeInterpolative, BlendState{true, BlendSrcAlpha, BlendInvSrcAlpha, BlendSrcAlpha, BlendInvSrcAlpha}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBlendState(tt.colour, tt.alpha))
		})
	}
}

func TestPipelineApply(t *testing.T) {
	prog := &fakeProgram{}
	applier := &fakeApplier{}
	p := NewPipeline(Flags{}, prog, applier, WithCullMode(CullFront), WithDepthWrite(false))

	proj := mgl32.Perspective(1, 1, 0.1, 10)
	p.SetProjection(proj)
	p.SetView(mgl32.Translate3D(0, 0, -5))
	p.Apply()

	assert.Equal(t, CullFront, p.CullMode())
	assert.False(t, p.DepthWrite())
	assert.True(t, p.DepthTest())
	assert.Equal(t, 1, prog.bound)
	require.Len(t, applier.applied, 1)
	assert.Equal(t, proj, prog.mats["uProjection"])
	assert.Equal(t, mgl32.Translate3D(0, 0, -5), prog.mats["uView"])

	p.Release()
	p.Apply()
	assert.Equal(t, 1, prog.bound)
}

func TestNewPipelineRequiresProgram(t *testing.T) {
	assert.Panics(t, func() { NewPipeline(Flags{}, nil, &fakeApplier{}) })
}

func TestCacheIdentity(t *testing.T) {
	c := NewCache()
	applier := &fakeApplier{}
	key := Flags{ProgramFlags: flags.ProgramInstantiation, ColourBlendMode: flags.BlendModeInterpolative}
	var created int
	create := func() (Pipeline, error) {
		created++
		return NewPipeline(key, &fakeProgram{}, applier), nil
	}

	first, err := c.GetOrCreate(CullBack, key, create)
	require.NoError(t, err)
	second, err := c.GetOrCreate(CullBack, key, create)
	require.NoError(t, err)
	front, err := c.GetOrCreate(CullFront, key, create)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotSame(t, first, front)
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, c.Len(CullBack))
	assert.Equal(t, 1, c.Len(CullFront))

	transparent := key
	transparent.ProgramFlags = transparent.ProgramFlags.With(flags.ProgramAlphaBlending)
	_, ok := c.Get(CullBack, transparent)
	assert.False(t, ok)
}

func TestCacheCreateErrorNotCached(t *testing.T) {
	c := NewCache()
	boom := errors.New("link failed")

	_, err := c.GetOrCreate(CullBack, Flags{}, func() (Pipeline, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(CullBack))

	p, err := c.GetOrCreate(CullBack, Flags{}, func() (Pipeline, error) {
		return NewPipeline(Flags{}, &fakeProgram{}, &fakeApplier{}), nil
	})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestCacheClearReleases(t *testing.T) {
	c := NewCache()
	p, err := c.GetOrCreate(CullFront, Flags{}, func() (Pipeline, error) {
		return NewPipeline(Flags{}, &fakeProgram{}, &fakeApplier{}), nil
	})
	require.NoError(t, err)

	var seen int
	c.Range(func(CullMode, Flags, Pipeline) bool { seen++; return true })
	assert.Equal(t, 1, seen)

	c.Clear()
	assert.True(t, p.Released())
	assert.Equal(t, 0, c.Len(CullFront))
}
