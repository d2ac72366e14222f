package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneDescription is the TOML layout read by Loader.LoadScene.
//
//	[[materials]]
//	name = "red"
//	diffuse = [1.0, 0.2, 0.2, 1.0]
//
//	[[meshes]]
//	name = "cube"
//	kind = "cube"
//	size = 1.0
//
//	[[geometries]]
//	name = "cubes"
//	mesh = "cube"
//	material = "red"
//	grid = [10, 1, 10]
//	spacing = 2.0
type SceneDescription struct {
	Materials  []MaterialDescription  `toml:"materials"`
	Meshes     []MeshDescription      `toml:"meshes"`
	Geometries []GeometryDescription  `toml:"geometries"`
	Billboards []BillboardDescription `toml:"billboards"`
	Particles  []ParticleDescription  `toml:"particles"`
}

// MaterialDescription describes a single-pass material.
type MaterialDescription struct {
	Name      string     `toml:"name"`
	Diffuse   [4]float32 `toml:"diffuse"`
	Emissive  [3]float32 `toml:"emissive"`
	Shininess float32    `toml:"shininess"`
	Opacity   *float32   `toml:"opacity"`
	TwoSided  bool       `toml:"two_sided"`
	Blend     string     `toml:"blend"`
	Texture   string     `toml:"texture"`
}

// MeshDescription names a primitive or an imported asset.
type MeshDescription struct {
	Name   string  `toml:"name"`
	Kind   string  `toml:"kind"` // cube, quad or file
	Size   float32 `toml:"size"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
	Path   string  `toml:"path"`
}

// GeometryDescription places a mesh, optionally replicated over a grid of nodes.
type GeometryDescription struct {
	Name     string      `toml:"name"`
	Mesh     string      `toml:"mesh"`
	Material string      `toml:"material"`
	Position [3]float32  `toml:"position"`
	Scale    *[3]float32 `toml:"scale"`
	Grid     [3]int      `toml:"grid"`
	Spacing  float32     `toml:"spacing"`
	Animated bool        `toml:"animated"`
	Clip     string      `toml:"clip"`
	Shadows  bool        `toml:"shadows"`
}

// BillboardDescription is a fixed set of camera-facing quads.
type BillboardDescription struct {
	Name      string       `toml:"name"`
	Material  string       `toml:"material"`
	Size      [2]float32   `toml:"size"`
	Positions [][3]float32 `toml:"positions"`
}

// ParticleDescription is an emitter anchored at Position.
type ParticleDescription struct {
	Name     string     `toml:"name"`
	Material string     `toml:"material"`
	Position [3]float32 `toml:"position"`
	Capacity int        `toml:"capacity"`
	Size     [2]float32 `toml:"size"`
	Rate     float32    `toml:"rate"`
	Lifetime float32    `toml:"lifetime"`
	Speed    float32    `toml:"speed"`
	Gravity  [3]float32 `toml:"gravity"`
}

const (
	meshKindCube = "cube"
	meshKindQuad = "quad"
	meshKindFile = "file"
)

// ErrInvalidScene wraps every scene description validation failure.
var ErrInvalidScene = errors.New("invalid scene description")

// Validate checks names are unique and every reference resolves.
func (d SceneDescription) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidScene}, args...)...))
	}

	materials := make(map[string]bool, len(d.Materials))
	for _, m := range d.Materials {
		if m.Name == "" || materials[m.Name] {
			fail("material name %q is empty or duplicated", m.Name)
		}
		if _, err := parseBlendMode(m.Blend); err != nil {
			fail("material %q: %v", m.Name, err)
		}
		materials[m.Name] = true
	}
	meshes := make(map[string]bool, len(d.Meshes))
	for _, m := range d.Meshes {
		if m.Name == "" || meshes[m.Name] {
			fail("mesh name %q is empty or duplicated", m.Name)
		}
		switch m.Kind {
		case meshKindCube, meshKindQuad:
		case meshKindFile:
			if m.Path == "" {
				fail("mesh %q has no path", m.Name)
			}
		default:
			fail("mesh %q has unknown kind %q", m.Name, m.Kind)
		}
		meshes[m.Name] = true
	}
	ref := func(kind, owner, name string, known map[string]bool, optional bool) {
		if name == "" && optional {
			return
		}
		if !known[name] {
			fail("%s references unknown %s %q", owner, kind, name)
		}
	}
	for _, g := range d.Geometries {
		ref("mesh", g.Name, g.Mesh, meshes, false)
		ref("material", g.Name, g.Material, materials, true)
		for _, n := range g.Grid {
			if n < 0 {
				fail("geometry %q has a negative grid dimension", g.Name)
			}
		}
	}
	for _, b := range d.Billboards {
		ref("material", b.Name, b.Material, materials, false)
	}
	for _, p := range d.Particles {
		ref("material", p.Name, p.Material, materials, false)
		if p.Capacity < 0 || p.Rate < 0 || p.Lifetime < 0 {
			fail("particle system %q has a negative capacity, rate or lifetime", p.Name)
		}
	}
	return errors.Join(errs...)
}

func parseBlendMode(name string) (flags.BlendMode, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return flags.BlendModeNone, nil
	case "additive":
		return flags.BlendModeAdditive, nil
	case "multiplicative":
		return flags.BlendModeMultiplicative, nil
	case "interpolative":
		return flags.BlendModeInterpolative, nil
	}
	return flags.BlendModeNone, fmt.Errorf("unknown blend mode %q", name)
}

// build creates the material. Texture paths resolve against baseDir.
func (m MaterialDescription) build(baseDir string) material.Material {
	diffuse := mgl32.Vec4(m.Diffuse)
	if diffuse == (mgl32.Vec4{}) {
		diffuse = mgl32.Vec4{1, 1, 1, 1}
	}
	options := []material.PassBuilderOption{
		material.WithDiffuse(diffuse),
		material.WithAmbient(diffuse.Mul(0.2)),
		material.WithEmissive(mgl32.Vec3(m.Emissive).Vec4(1)),
		material.WithSpecular(mgl32.Vec4{0.5, 0.5, 0.5, 1}, common.Coalesce(m.Shininess, 32)),
		material.WithTwoSided(m.TwoSided),
	}
	if m.Opacity != nil {
		options = append(options, material.WithOpacity(*m.Opacity))
	}
	if blend, _ := parseBlendMode(m.Blend); blend != flags.BlendModeNone {
		options = append(options, material.WithBlendModes(blend, blend))
	}
	if m.Texture != "" {
		path := m.Texture
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, filepath.FromSlash(path))
		}
		options = append(options, material.WithTexture(flags.TextureDiffuse, &common.TextureImage{Name: m.Name, Path: path}))
	}
	return material.NewMaterial(m.Name, material.WithPass(options...))
}

// gridPositions returns the node positions of a geometry. An all-zero grid places one node.
func (g GeometryDescription) gridPositions() []mgl32.Vec3 {
	nx, ny, nz := max(g.Grid[0], 1), max(g.Grid[1], 1), max(g.Grid[2], 1)
	spacing := common.Coalesce(g.Spacing, 2)
	origin := mgl32.Vec3(g.Position)
	centre := mgl32.Vec3{float32(nx-1) / 2, float32(ny-1) / 2, float32(nz-1) / 2}.Mul(spacing)

	out := make([]mgl32.Vec3, 0, nx*ny*nz)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				p := mgl32.Vec3{float32(x), float32(y), float32(z)}.Mul(spacing).Sub(centre)
				out = append(out, origin.Add(p))
			}
		}
	}
	return out
}
