package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgram struct {
	name     string
	released bool
}

func (p *fakeProgram) Name() string                      { return p.name }
func (p *fakeProgram) Bind()                             {}
func (p *fakeProgram) Unbind()                           {}
func (p *fakeProgram) SetMat4(string, mgl32.Mat4)        {}
func (p *fakeProgram) SetMat4Array(string, []mgl32.Mat4) {}
func (p *fakeProgram) SetVec2(string, mgl32.Vec2)        {}
func (p *fakeProgram) SetVec3(string, mgl32.Vec3)        {}
func (p *fakeProgram) SetVec4(string, mgl32.Vec4)        {}
func (p *fakeProgram) SetFloat(string, float32)          {}
func (p *fakeProgram) SetInt(string, int32)              {}
func (p *fakeProgram) Release()                          { p.released = true }

type fakeCompiler struct {
	calls   int
	sources []ProgramSource
	fail    error
}

func (c *fakeCompiler) CompileProgram(name string, src ProgramSource) (Program, error) {
	c.calls++
	c.sources = append(c.sources, src)
	if c.fail != nil {
		return nil, c.fail
	}
	return &fakeProgram{name: name}, nil
}

func TestProgramKeyDefines(t *testing.T) {
	key := ProgramKey{
		TextureFlags:  flags.TextureDiffuse.With(flags.TextureOpacity),
		ProgramFlags:  flags.ProgramInstantiation.With(flags.ProgramAlphaBlending),
		InvertNormals: true,
	}
	assert.Equal(t, []string{"INSTANTIATION", "ALPHA_BLENDING", "DIFFUSE_MAP", "OPACITY_MAP", "INVERT_NORMALS"}, key.Defines())
	assert.Equal(t, "scene_t0005_p0021_inv", key.Name())
	assert.Empty(t, ProgramKey{}.Defines())
}

func TestLibraryEmbeddedSources(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	src, err := lib.Source(ProgramKey{ProgramFlags: flags.ProgramSkinning})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src.Vertex, "#version 410 core\n#define SKINNING 1\n"))
	assert.Contains(t, src.Fragment, "outColour")
	assert.Equal(t, 1, lib.CachedSources())
	assert.Empty(t, lib.Dir())
}

func TestLibraryMissingTemplate(t *testing.T) {
	_, err := NewLibrary(WithFS(fstest.MapFS{"scene.vert": {Data: []byte("void main(){}")}}))
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestLibraryReloadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.vert"), []byte("// v1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.frag"), []byte("// f1"), 0o644))

	lib, err := NewLibrary(WithDir(dir), WithGLSLVersion("330 core"), WithCacheSize(4))
	require.NoError(t, err)
	src, err := lib.Source(ProgramKey{})
	require.NoError(t, err)
	assert.Equal(t, "#version 330 core\n// v1", src.Vertex)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.vert"), []byte("// v2"), 0o644))
	require.NoError(t, lib.Reload())
	assert.Equal(t, uint64(1), lib.Generation())
	assert.Equal(t, 0, lib.CachedSources())

	src, err = lib.Source(ProgramKey{})
	require.NoError(t, err)
	assert.Equal(t, "#version 330 core\n// v2", src.Vertex)
}

func TestLibraryReloadNeverKeepsStaleSources(t *testing.T) {
	dir := t.TempDir()
	write := func(round int) {
		body := []byte(fmt.Sprintf("// round %d", round))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.vert"), body, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.frag"), body, 0o644))
	}
	write(0)
	lib, err := NewLibrary(WithDir(dir), WithCacheSize(8))
	require.NoError(t, err)

	keys := []ProgramKey{
		{},
		{ProgramFlags: flags.ProgramSkinning},
		{TextureFlags: flags.TextureDiffuse},
		{InvertNormals: true},
	}
	for round := 1; round <= 25; round++ {
		stop := make(chan struct{})
		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					for _, k := range keys {
						_, _ = lib.Source(k)
					}
				}
			}()
		}

		write(round)
		require.NoError(t, lib.Reload())
		close(stop)
		wg.Wait()

		want := fmt.Sprintf("// round %d", round)
		for _, k := range keys {
			src, err := lib.Source(k)
			require.NoError(t, err)
			require.True(t, strings.HasSuffix(src.Vertex, want), "round %d key %v got %q", round, k, src.Vertex)
			require.True(t, strings.HasSuffix(src.Fragment, want))
		}
	}
}

func TestCacheCompilesOnce(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	comp := &fakeCompiler{}
	c := NewCache(lib, comp)

	key := ProgramKey{TextureFlags: flags.TextureDiffuse}
	p1, err := c.Get(key)
	require.NoError(t, err)
	p2, err := c.Get(key)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, comp.calls)
	assert.Equal(t, key.Name(), p1.Name())

	_, err = c.Get(ProgramKey{TextureFlags: flags.TextureDiffuse, InvertNormals: true})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.True(t, p1.(*fakeProgram).released)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	comp := &fakeCompiler{fail: errors.New("link error")}
	c := NewCache(lib, comp)

	_, err = c.Get(ProgramKey{})
	assert.ErrorContains(t, err, "failed to compile program")
	assert.Equal(t, 0, c.Len())

	comp.fail = nil
	_, err = c.Get(ProgramKey{})
	require.NoError(t, err)
	assert.Equal(t, 2, comp.calls)
}

func TestNewWatcherRequiresDir(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	_, err = NewWatcher(lib, 0)
	assert.Error(t, err)
}

func TestSamplerName(t *testing.T) {
	assert.Equal(t, "uDiffuseMap", SamplerName(flags.TextureDiffuse))
	assert.Equal(t, "", SamplerName(flags.TextureHeight))
}
