package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoScene = `
[[materials]]
name = "red"
diffuse = [1.0, 0.0, 0.0, 1.0]

[[materials]]
name = "smoke"
diffuse = [0.5, 0.5, 0.5, 0.4]
opacity = 0.4
blend = "interpolative"
two_sided = true

[[meshes]]
name = "cube"
kind = "cube"
size = 1.0

[[meshes]]
name = "panel"
kind = "quad"
width = 2.0
height = 1.0

[[geometries]]
name = "cubes"
mesh = "cube"
material = "red"
grid = [2, 1, 3]
spacing = 3.0

[[geometries]]
name = "glass"
mesh = "panel"
material = "smoke"
position = [0.0, 2.0, 0.0]
scale = [2.0, 2.0, 2.0]

[[billboards]]
name = "sprites"
material = "smoke"
size = [0.5, 0.5]
positions = [[0.0, 1.0, 0.0], [1.0, 1.0, 0.0]]

[[particles]]
name = "fountain"
material = "smoke"
position = [0.0, 0.0, 5.0]
capacity = 64
rate = 10.0
speed = 2.0
gravity = [0.0, -9.8, 0.0]
`

func TestParseScenePopulatesObjects(t *testing.T) {
	s := scene.NewScene("demo")
	l := NewLoader(WithWorkers(3))
	require.NoError(t, l.ParseScene([]byte(demoScene), ".", s))

	assert.Equal(t, 7, s.Geometries().Len())
	assert.True(t, s.Geometries().Has("cubes_0"))
	assert.True(t, s.Geometries().Has("cubes_5"))

	glass, ok := s.Geometries().Find("glass")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, glass.Parent().Position())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, glass.Parent().Scale())
	smoke := glass.Material(glass.Mesh().Submesh(0))
	require.NotNil(t, smoke)
	assert.Equal(t, "smoke", smoke.Name())
	assert.True(t, smoke.Pass(0).IsTwoSided())
	assert.Equal(t, flags.BlendModeInterpolative, smoke.Pass(0).AlphaBlendMode())

	// Grid geometries share one mesh.
	a, _ := s.Geometries().Find("cubes_0")
	b, _ := s.Geometries().Find("cubes_1")
	assert.Same(t, a.Mesh(), b.Mesh())
	assert.NotEqual(t, a.Parent().Position(), b.Parent().Position())

	sprites, ok := s.BillboardLists().Find("sprites")
	require.True(t, ok)
	assert.Equal(t, 2, sprites.Count())
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, sprites.Size())

	fountain, ok := s.ParticleSystems().Find("fountain")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, fountain.Parent().Position())
}

func TestParseSceneRejectsBadDescriptions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc:  "[[meshes]]\nname = \"cube\"\nkind = \"cube\"\ncolour = 1\n",
			want: "colour",
		},
		{
			name: "unknown mesh",
			doc:  "[[geometries]]\nname = \"g\"\nmesh = \"missing\"\n",
			want: "unknown mesh \"missing\"",
		},
		{
			name: "unknown kind",
			doc:  "[[meshes]]\nname = \"m\"\nkind = \"torus\"\n",
			want: "unknown kind",
		},
		{
			name: "bad blend",
			doc:  "[[materials]]\nname = \"m\"\nblend = \"screen\"\n",
			want: "unknown blend mode",
		},
		{
			name: "no material",
			doc:  "[[meshes]]\nname = \"cube\"\nkind = \"cube\"\n[[geometries]]\nname = \"g\"\nmesh = \"cube\"\n",
			want: "carries no materials",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLoader().ParseScene([]byte(tt.doc), ".", scene.NewScene(tt.name))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	err := NewLoader().ParseScene([]byte("[[meshes]]\nname = \"\"\nkind = \"cube\"\n"), ".", scene.NewScene("empty"))
	assert.ErrorIs(t, err, ErrInvalidScene)
}

func TestParseSceneAnimatesImportedSkeletons(t *testing.T) {
	p, err := parseGLTF(skinnedFixture().gltf(t), ".")
	require.NoError(t, err)
	asset, err := p.importAsset("body")
	require.NoError(t, err)

	l := NewLoader(WithAsset(filepath.Join("assets", "body.glb"), asset))
	doc := `
[[meshes]]
name = "body"
kind = "file"
path = "body.glb"

[[geometries]]
name = "dancer"
mesh = "body"
animated = true
clip = "spin"
grid = [2, 1, 1]
`
	s := scene.NewScene("anim")
	require.NoError(t, l.ParseScene([]byte(doc), "assets", s))

	assert.Equal(t, 2, s.Geometries().Len())
	require.Equal(t, 1, s.AnimatedObjectGroups().Len())
	obj := s.FindAnimatedObject("dancer_0" + scene.SkeletonSuffix)
	require.NotNil(t, obj)
	assert.Same(t, asset.Mesh.Skeleton(), obj.(scene.AnimatedSkeleton).Skeleton())

	g, _ := s.Geometries().Find("dancer_1")
	assert.Same(t, asset.Materials[0], g.Material(g.Mesh().Submesh(0)))

	err = NewLoader(WithAsset(filepath.Join("assets", "body.glb"), asset)).ParseScene(
		[]byte(doc+"\n[[geometries]]\nname = \"bad\"\nmesh = \"body\"\nanimated = true\nclip = \"walk\"\n"), "assets", scene.NewScene("bad"))
	assert.ErrorContains(t, err, "unknown clip \"walk\"")
}

func TestLoadMeshCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, triangleFixture().gltf(t), 0o644))

	l := NewLoader()
	first, err := l.LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, "tri", first.Mesh.Name())

	second, err := l.LoadMesh(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))
	assert.Len(t, l.Assets(), 1)

	_, err = l.LoadMesh(filepath.Join(dir, "tri.obj"))
	assert.ErrorContains(t, err, "unsupported file extension")
	_, err = l.LoadMesh(filepath.Join(dir, "missing.glb"))
	assert.Error(t, err)
}

func TestLoadMeshReader(t *testing.T) {
	l := NewLoader()
	asset, err := l.LoadMeshReader("stream.glb", bytes.NewReader(triangleFixture().glb(t)))
	require.NoError(t, err)
	assert.Equal(t, "stream", asset.Mesh.Name())
	assert.Same(t, asset, l.Get("stream.glb"))
}

func TestSceneFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(demoScene), 0o644))

	s := scene.NewScene("file")
	require.NoError(t, NewLoader().LoadScene(path, s))
	assert.Equal(t, 7, s.Geometries().Len())

	assert.Error(t, NewLoader().LoadScene(filepath.Join(dir, "missing.toml"), s))
}

func TestGridPositionsAreCentred(t *testing.T) {
	g := GeometryDescription{Position: [3]float32{1, 0, 0}, Grid: [3]int{3, 1, 1}, Spacing: 2}
	assert.Equal(t, []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}, {3, 0, 0}}, g.gridPositions())
	assert.Len(t, GeometryDescription{}.gridPositions(), 1)
}
