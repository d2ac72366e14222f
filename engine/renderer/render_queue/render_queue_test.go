package render_queue

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOwner struct {
	opaque        bool
	instancing    bool
	multisampling bool
	extra         flags.ProgramFlags
	ignored       scene.Node
	fail          error

	cache  pipeline.Cache
	system *renderer.FakeRenderSystem
}

func newOwner(opaque, instancing bool) *testOwner {
	return &testOwner{
		opaque:     opaque,
		instancing: instancing,
		cache:      pipeline.NewCache(),
		system:     renderer.NewFakeRenderSystem(),
	}
}

func (o *testOwner) normalise(f pipeline.Flags) pipeline.Flags {
	if o.opaque {
		f.AlphaBlendMode = flags.BlendModeNone
	}
	return f
}

func (o *testOwner) create(side pipeline.CullMode, f pipeline.Flags) func() (pipeline.Pipeline, error) {
	return func() (pipeline.Pipeline, error) {
		if o.fail != nil {
			return nil, o.fail
		}
		return pipeline.NewPipeline(f, renderer.NewFakeProgram(f.String()), o.system, pipeline.WithCullMode(side)), nil
	}
}

func (o *testOwner) IsOpaque() bool { return o.opaque }

func (o *testOwner) PreparePipeline(f pipeline.Flags, frontToo bool) error {
	f = o.normalise(f)
	if _, err := o.cache.GetOrCreate(pipeline.CullBack, f, o.create(pipeline.CullBack, f)); err != nil {
		return err
	}
	if frontToo {
		if _, err := o.cache.GetOrCreate(pipeline.CullFront, f, o.create(pipeline.CullFront, f)); err != nil {
			return err
		}
	}
	return nil
}

func (o *testOwner) FrontPipeline(f pipeline.Flags) (pipeline.Pipeline, bool) {
	return o.cache.Get(pipeline.CullFront, o.normalise(f))
}

func (o *testOwner) BackPipeline(f pipeline.Flags) (pipeline.Pipeline, bool) {
	return o.cache.Get(pipeline.CullBack, o.normalise(f))
}

func (o *testOwner) HasInstancing() bool     { return o.instancing }
func (o *testOwner) Multisampling() bool     { return o.multisampling }
func (o *testOwner) IgnoredNode() scene.Node { return o.ignored }
func (o *testOwner) UpdateFlags(f flags.ProgramFlags) flags.ProgramFlags {
	return f.With(o.extra)
}

func opaqueMaterial(name string) material.Material {
	return material.NewMaterial(name)
}

func glassMaterial(name string) material.Material {
	return material.NewMaterial(name, material.WithPass(
		material.WithOpacity(0.5),
		material.WithBlendModes(flags.BlendModeInterpolative, flags.BlendModeInterpolative),
	))
}

// skinnedCube returns a cube whose vertices carry one full weight on bone 0.
func skinnedCube(name string) mesh.Mesh {
	src := mesh.NewCube(name, 1).Submesh(0)
	in := src.Vertices()
	stride := buffer.PositionNormalUV.Stride()
	out := make([]float32, 0, len(in)/stride*buffer.SkinnedLayout.Stride())
	for i := 0; i+stride <= len(in); i += stride {
		out = append(out, in[i:i+stride]...)
		out = append(out, 0, 0, 0, 0, 1, 0, 0, 0)
	}
	m := mesh.NewMesh(name)
	m.CreateSubmesh(buffer.SkinnedLayout, out, src.Indices())
	return m
}

// bucketCounts summarises every bucket of a classification.
func bucketCounts(g *GeometryNodes) map[string]int {
	return map[string]int{
		"static front":    g.StaticFront.Count(),
		"static back":     g.StaticBack.Count(),
		"instanced front": g.InstancedFront.Count(),
		"instanced back":  g.InstancedBack.Count(),
		"animated front":  g.AnimatedFront.Count(),
		"animated back":   g.AnimatedBack.Count(),
	}
}

func onlyBuckets(want map[string]int) map[string]int {
	out := map[string]int{
		"static front": 0, "static back": 0,
		"instanced front": 0, "instanced back": 0,
		"animated front": 0, "animated back": 0,
	}
	for k, v := range want {
		out[k] = v
	}
	return out
}

func TestClassifySingleOpaqueGeometry(t *testing.T) {
	s := scene.NewScene("one")
	_, err := s.CreateGeometry("cube", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)

	out := NewClassifier(newOwner(true, false)).ClassifyGeometries(s, true)

	assert.Equal(t, onlyBuckets(map[string]int{"static back": 1}), bucketCounts(out))
}

func TestClassifyAlphaBlendedGoesToTransparentOnly(t *testing.T) {
	s := scene.NewScene("glass")
	_, err := s.CreateGeometry("pane", nil, mesh.NewCube("cube", 1), scene.WithMaterial(glassMaterial("glass")))
	require.NoError(t, err)

	opaque := NewClassifier(newOwner(true, false)).ClassifyGeometries(s, true)
	transparent := NewClassifier(newOwner(false, false)).ClassifyGeometries(s, false)

	assert.Equal(t, 0, opaque.Count())
	assert.Equal(t, onlyBuckets(map[string]int{"static front": 1, "static back": 1}), bucketCounts(transparent))
	p := transparent.StaticBack.Pipelines()[0]
	assert.True(t, p.Flags().ProgramFlags.HasAlphaBlending())
	front := transparent.StaticFront.Pipelines()[0]
	assert.NotSame(t, front, p)
	assert.Equal(t, pipeline.CullFront, front.CullMode())
	assert.Equal(t, pipeline.CullBack, p.CullMode())
}

func TestClassifySharedSubmeshIsInstanced(t *testing.T) {
	s := scene.NewScene("shared")
	cube := mesh.NewCube("cube", 1)
	mat := opaqueMaterial("m")
	for _, name := range []string{"a", "b"} {
		_, err := s.CreateGeometry(name, nil, cube, scene.WithMaterial(mat))
		require.NoError(t, err)
	}

	out := NewClassifier(newOwner(true, true)).ClassifyGeometries(s, true)

	assert.Equal(t, onlyBuckets(map[string]int{"instanced back": 2}), bucketCounts(out))
	require.Equal(t, 1, out.InstancedBack.Len())
	p := out.InstancedBack.Pipelines()[0]
	assert.True(t, p.Flags().ProgramFlags.IsInstanced())
	assert.Len(t, out.InstancedBack.Nodes(p, mat.Pass(0), cube.Submesh(0)), 2)
}

func TestClassifySharedSubmeshWithoutInstancing(t *testing.T) {
	s := scene.NewScene("shared")
	cube := mesh.NewCube("cube", 1)
	mat := opaqueMaterial("m")
	for _, name := range []string{"a", "b"} {
		_, err := s.CreateGeometry(name, nil, cube, scene.WithMaterial(mat))
		require.NoError(t, err)
	}

	out := NewClassifier(newOwner(true, false)).ClassifyGeometries(s, true)

	assert.Equal(t, onlyBuckets(map[string]int{"static back": 2}), bucketCounts(out))
	assert.Equal(t, 1, out.StaticBack.Len())
}

func TestClassifySingleReferenceNeverInstanced(t *testing.T) {
	s := scene.NewScene("single")
	_, err := s.CreateGeometry("a", nil, mesh.NewCube("a", 1), scene.WithMaterial(opaqueMaterial("a")))
	require.NoError(t, err)
	_, err = s.CreateGeometry("b", nil, mesh.NewCube("b", 1), scene.WithMaterial(opaqueMaterial("b")))
	require.NoError(t, err)

	owner := newOwner(true, true)
	owner.multisampling = true
	out := NewClassifier(owner).ClassifyGeometries(s, true)

	assert.Equal(t, 0, out.InstancedBack.Count()+out.InstancedFront.Count())
	assert.Equal(t, 2, out.StaticBack.Count())
}

func TestClassifyIsIdempotent(t *testing.T) {
	s := scene.NewScene("idem")
	cube := mesh.NewCube("cube", 1)
	mat := opaqueMaterial("m")
	for _, name := range []string{"a", "b"} {
		_, err := s.CreateGeometry(name, nil, cube, scene.WithMaterial(mat))
		require.NoError(t, err)
	}
	_, err := s.CreateGeometry("c", nil, mesh.NewQuad("quad", 1, 1), scene.WithMaterial(
		material.NewMaterial("two", material.WithPass(material.WithTwoSided(true)))))
	require.NoError(t, err)

	c := NewClassifier(newOwner(true, true))
	first := c.ClassifyGeometries(s, true)
	second := c.ClassifyGeometries(s, true)

	assert.Equal(t, bucketCounts(first), bucketCounts(second))
	assert.Equal(t, first.InstancedBack.Pipelines(), second.InstancedBack.Pipelines())
	assert.Equal(t, first.StaticBack.Pipelines(), second.StaticBack.Pipelines())
	assert.Equal(t, first.StaticFront.Pipelines(), second.StaticFront.Pipelines())
	assert.Equal(t, 1, first.StaticFront.Count())
}

func TestClassifyPartitionIsComplete(t *testing.T) {
	s := scene.NewScene("mixed")
	mixed := material.NewMaterial("mixed",
		material.WithPass(),
		material.WithPass(material.WithOpacity(0.3), material.WithBlendModes(flags.BlendModeNone, flags.BlendModeInterpolative)),
		material.WithPass(material.WithTwoSided(true)),
	)
	_, err := s.CreateGeometry("a", nil, mesh.NewCube("a", 1), scene.WithMaterial(mixed))
	require.NoError(t, err)
	_, err = s.CreateGeometry("b", nil, mesh.NewCube("b", 1), scene.WithMaterial(glassMaterial("glass")))
	require.NoError(t, err)

	opaque := NewClassifier(newOwner(true, true)).ClassifyGeometries(s, true)
	transparent := NewClassifier(newOwner(false, true)).ClassifyGeometries(s, false)

	backs := opaque.StaticBack.Count() + transparent.StaticBack.Count()
	assert.Equal(t, 4, backs)
	assert.Equal(t, 2, opaque.StaticBack.Count())
	assert.Equal(t, 1, opaque.StaticFront.Count())
	assert.Equal(t, 2, transparent.StaticFront.Count())
}

func TestClassifyAnimatedObjects(t *testing.T) {
	s := scene.NewScene("anim")
	cube := skinnedCube("cube")
	mat := opaqueMaterial("m")
	hero, err := s.CreateGeometry("hero", nil, cube, scene.WithMaterial(mat))
	require.NoError(t, err)
	_, err = s.CreateGeometry("extra", nil, cube, scene.WithMaterial(mat))
	require.NoError(t, err)
	blob, err := s.CreateGeometry("blob", nil, mesh.NewCube("blob", 1), scene.WithMaterial(mat))
	require.NoError(t, err)

	group, err := s.CreateAnimatedObjectGroup("group")
	require.NoError(t, err)
	skel := &mesh.Skeleton{Bones: []mesh.Bone{{Name: "root", Parent: -1, InverseBind: mgl32.Ident4(), Local: mesh.IdentityTransform()}}}
	_, err = group.AddSkeleton(hero, skel)
	require.NoError(t, err)
	_, err = group.AddMesh(blob, 1)
	require.NoError(t, err)

	out := NewClassifier(newOwner(true, true)).ClassifyGeometries(s, true)

	assert.Equal(t, 2, out.AnimatedBack.Count())
	assert.Equal(t, 1, out.InstancedBack.Count(), "the unanimated sibling still shares the submesh")
	assert.Equal(t, 0, out.StaticBack.Count())

	var skinned, morphed int
	out.AnimatedBack.Range(func(p pipeline.Pipeline, nodes []*render_node.AnimatedNode) bool {
		pf := p.Flags().ProgramFlags
		if pf.IsSkinned() {
			skinned += len(nodes)
		}
		if pf.IsMorphed() {
			morphed += len(nodes)
		}
		return true
	})
	assert.Equal(t, 1, skinned)
	assert.Equal(t, 1, morphed)
}

func TestClassifySkeletonWithoutBoneDataIsStatic(t *testing.T) {
	s := scene.NewScene("rigid")
	hero, err := s.CreateGeometry("hero", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)
	group, err := s.CreateAnimatedObjectGroup("group")
	require.NoError(t, err)
	skel := &mesh.Skeleton{Bones: []mesh.Bone{{Name: "root", Parent: -1, InverseBind: mgl32.Ident4(), Local: mesh.IdentityTransform()}}}
	_, err = group.AddSkeleton(hero, skel)
	require.NoError(t, err)

	out := NewClassifier(newOwner(true, true)).ClassifyGeometries(s, true)

	assert.Equal(t, onlyBuckets(map[string]int{"static back": 1}), bucketCounts(out))
	assert.False(t, out.StaticBack.All()[0].Pipeline().Flags().ProgramFlags.IsSkinned())
}

func TestClassifyShadowFlags(t *testing.T) {
	s := scene.NewScene("shadows", scene.WithFlags(scene.FlagShadows))
	_, err := s.CreateGeometry("receiver", nil, mesh.NewCube("a", 1), scene.WithMaterial(opaqueMaterial("a")))
	require.NoError(t, err)
	_, err = s.CreateGeometry("plain", nil, mesh.NewCube("b", 1),
		scene.WithMaterial(opaqueMaterial("b")), scene.WithShadowReceiver(false), scene.WithShadowCaster(false))
	require.NoError(t, err)

	out := NewClassifier(newOwner(true, false)).ClassifyGeometries(s, true)
	require.Equal(t, 2, out.StaticBack.Count())
	var receiving int
	for _, n := range out.StaticBack.All() {
		if n.Pipeline().Flags().ProgramFlags.ReceivesShadows() {
			receiving++
		}
	}
	assert.Equal(t, 1, receiving)

	shadowPass := newOwner(true, false)
	shadowPass.extra = flags.ProgramShadowMap
	out = NewClassifier(shadowPass).ClassifyGeometries(s, true)
	require.Equal(t, 1, out.StaticBack.Count())
	assert.Equal(t, "receiver", out.StaticBack.All()[0].Geometry().Name())
}

func TestClassifySkipsHiddenAndIgnoredObjects(t *testing.T) {
	s := scene.NewScene("skip")
	hidden, err := s.CreateNode("hidden", nil)
	require.NoError(t, err)
	viewer, err := s.CreateNode("viewer", nil)
	require.NoError(t, err)

	_, err = s.CreateGeometry("shown", nil, mesh.NewCube("a", 1), scene.WithMaterial(opaqueMaterial("a")))
	require.NoError(t, err)
	_, err = s.CreateGeometry("hidden", hidden, mesh.NewCube("b", 1), scene.WithMaterial(opaqueMaterial("b")))
	require.NoError(t, err)
	_, err = s.CreateGeometry("self", viewer, mesh.NewCube("c", 1), scene.WithMaterial(opaqueMaterial("c")))
	require.NoError(t, err)
	_, err = s.CreateGeometry("bare", nil, mesh.NewCube("d", 1))
	require.NoError(t, err)
	_, err = s.CreateGeometry("empty", nil, mesh.NewCube("e", 1),
		scene.WithMaterial(material.NewMaterial("none", material.WithoutDefaultPass())))
	require.NoError(t, err)
	hidden.SetVisible(false)

	owner := newOwner(true, false)
	owner.ignored = viewer
	out := NewClassifier(owner).ClassifyGeometries(s, true)

	require.Equal(t, 1, out.Count())
	assert.Equal(t, "shown", out.StaticBack.All()[0].Geometry().Name())
}

func TestClassifyPipelineFailureSkipsNodes(t *testing.T) {
	s := scene.NewScene("fail")
	_, err := s.CreateGeometry("cube", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)

	owner := newOwner(true, false)
	owner.fail = errors.New("link failed")
	c := NewClassifier(owner)
	assert.Equal(t, 0, c.ClassifyGeometries(s, true).Count())

	owner.fail = nil
	assert.Equal(t, 1, c.ClassifyGeometries(s, true).Count())
}

func TestClassifyReportsPreparationFailures(t *testing.T) {
	s := scene.NewScene("count")
	_, err := s.CreateGeometry("cube", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)
	_, err = s.CreateGeometry("pane", nil, mesh.NewCube("pane", 1), scene.WithMaterial(glassMaterial("glass")))
	require.NoError(t, err)

	owner := newOwner(true, false)
	owner.fail = errors.New("link failed")
	out := NewGeometryNodes()
	assert.Equal(t, 2, NewClassifier(owner).ClassifyGeometriesInto(s, true, out))
	assert.Equal(t, 0, out.Count())

	owner.fail = nil
	assert.Equal(t, 0, NewClassifier(owner).ClassifyGeometriesInto(s, true, out))
	assert.Equal(t, 1, out.Count())
}

func TestClassifyPreparesPipelinesOfSkippedPasses(t *testing.T) {
	s := scene.NewScene("warm")
	_, err := s.CreateGeometry("pane", nil, mesh.NewCube("cube", 1),
		scene.WithMaterial(glassMaterial("glass")), scene.WithShadowCaster(false))
	require.NoError(t, err)

	transparent := newOwner(false, false)
	out := NewClassifier(transparent).ClassifyGeometries(s, true)
	assert.Equal(t, 0, out.Count())
	assert.Equal(t, 1, transparent.cache.Len(pipeline.CullBack))
	assert.Equal(t, 1, transparent.cache.Len(pipeline.CullFront), "front and back are ready before the pass is routed")

	shadowPass := newOwner(true, false)
	shadowPass.extra = flags.ProgramShadowMap
	out = NewClassifier(shadowPass).ClassifyGeometries(s, false)
	assert.Equal(t, 0, out.Count())
	assert.Equal(t, 1, shadowPass.cache.Len(pipeline.CullBack), "non casters still warm the cache")
}

func TestClassifyBillboards(t *testing.T) {
	s := scene.NewScene("billboards")
	_, err := s.CreateBillboardList("stars", nil,
		scene.WithBillboardMaterial(opaqueMaterial("star")),
		scene.WithBillboardPositions(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	require.NoError(t, err)
	_, err = s.CreateParticleSystem("smoke", nil, scene.WithParticleMaterial(glassMaterial("smoke")))
	require.NoError(t, err)
	_, err = s.CreateBillboardList("bare", nil)
	require.NoError(t, err)

	opaque := NewClassifier(newOwner(true, true)).ClassifyBillboards(s, true)
	transparent := NewClassifier(newOwner(false, true)).ClassifyBillboards(s, false)

	assert.Equal(t, 1, opaque.Back.Count())
	assert.Equal(t, 0, opaque.Front.Count())
	assert.Equal(t, 1, transparent.Back.Count())
	assert.Equal(t, 1, transparent.Front.Count())
	pf := opaque.Back.Pipelines()[0].Flags().ProgramFlags
	assert.True(t, pf.IsBillboard())
	assert.False(t, pf.IsInstanced())
	assert.Equal(t, "smoke_Billboards", transparent.Back.All()[0].Billboards().Name())

	shadowPass := newOwner(true, true)
	shadowPass.extra = flags.ProgramShadowMap
	assert.Equal(t, 0, NewClassifier(shadowPass).ClassifyBillboards(s, true).Count())
}

func TestFilterOutsideFrustum(t *testing.T) {
	s := scene.NewScene("filter")
	_, err := s.CreateGeometry("cube", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)
	raw := NewClassifier(newOwner(true, false)).ClassifyGeometries(s, true)
	require.Equal(t, 1, raw.StaticBack.Count())

	away := camera.NewCamera("away", camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 20}))
	prepared := NewGeometryNodes()
	FilterGeometries(away, raw, prepared)
	assert.Equal(t, 0, prepared.Count())
	assert.Equal(t, 1, raw.Count())

	toward := camera.NewCamera("toward", camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}))
	FilterGeometries(toward, raw, prepared)
	require.Equal(t, 1, prepared.Count())
	assert.Same(t, raw.StaticBack.All()[0], prepared.StaticBack.All()[0])
}

func TestFilterIsSubset(t *testing.T) {
	s := scene.NewScene("subset")
	cube := mesh.NewCube("cube", 1)
	mat := opaqueMaterial("m")
	for i, x := range []float32{0, 3, 500, -500} {
		n, err := s.CreateNode(string(rune('a'+i)), nil)
		require.NoError(t, err)
		n.SetPosition(mgl32.Vec3{x, 0, 0})
		_, err = s.CreateGeometry(n.Name(), n, cube, scene.WithMaterial(mat))
		require.NoError(t, err)
	}
	raw := NewClassifier(newOwner(true, true)).ClassifyGeometries(s, true)
	require.Equal(t, 4, raw.InstancedBack.Count())

	cam := camera.NewCamera("cam", camera.WithLookAt(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{}))
	prepared := NewGeometryNodes()
	FilterGeometries(cam, raw, prepared)

	rawNodes := raw.InstancedBack.All()
	kept := prepared.InstancedBack.All()
	assert.Len(t, kept, 2)
	for _, n := range kept {
		assert.Contains(t, rawNodes, n)
	}
	assert.Equal(t, 1, prepared.InstancedBack.Len())
}

func TestRenderQueueStates(t *testing.T) {
	q := NewRenderQueue(newOwner(true, false))
	assert.Equal(t, StateUninitialised, q.State())
	assert.Nil(t, q.RenderNodes())

	s := scene.NewScene("states")
	q.Initialise(s)
	assert.Equal(t, StateAttachedNoCamera, q.State())
	assert.Nil(t, q.Camera())

	cam := camera.NewCamera("cam")
	q.InitialiseWithCamera(s, cam)
	assert.Equal(t, StateAttachedWithCamera, q.State())
	assert.Same(t, cam, q.Camera())

	q.Cleanup()
	assert.Equal(t, StateUninitialised, q.State())
	assert.Nil(t, q.Scene())
}

func TestRenderQueueDirtyFlagGating(t *testing.T) {
	s := scene.NewScene("dirty")
	_, err := s.CreateGeometry("cube", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)
	cam := camera.NewCamera("cam", camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}))

	q := NewRenderQueue(newOwner(true, false))
	q.InitialiseWithCamera(s, cam)
	q.Update()

	nodes := q.RenderNodes()
	require.Equal(t, 1, nodes.Count())
	first := nodes.Geometries.StaticBack.All()[0]

	q.Update()
	assert.Same(t, nodes, q.RenderNodes())
	assert.Same(t, first, q.RenderNodes().Geometries.StaticBack.All()[0])

	cam.LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 20})
	q.Update()
	assert.Equal(t, 0, q.RenderNodes().Count())

	cam.LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{})
	q.Update()
	require.Equal(t, 1, q.RenderNodes().Count())
	assert.Same(t, first, q.RenderNodes().Geometries.StaticBack.All()[0], "camera changes only refilter")

	s.SetFlags(scene.FlagFogLinear)
	q.Update()
	require.Equal(t, 1, q.RenderNodes().Count())
	assert.NotSame(t, first, q.RenderNodes().Geometries.StaticBack.All()[0], "scene changes reclassify")
}

func TestRenderQueueTransformChangeRefilters(t *testing.T) {
	s := scene.NewScene("moves")
	n, err := s.CreateNode("n", nil)
	require.NoError(t, err)
	_, err = s.CreateGeometry("cube", n, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)
	cam := camera.NewCamera("cam", camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}))

	q := NewRenderQueue(newOwner(true, false))
	q.InitialiseWithCamera(s, cam)
	q.Update()
	require.Equal(t, 1, q.RenderNodes().Count())

	n.SetPosition(mgl32.Vec3{0, 0, 50})
	q.Update()
	assert.Equal(t, 0, q.RenderNodes().Count())
}

func TestRenderQueueRetriesFailedPipelines(t *testing.T) {
	s := scene.NewScene("retry")
	_, err := s.CreateGeometry("cube", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)

	owner := newOwner(true, false)
	owner.fail = errors.New("link failed")
	q := NewRenderQueue(owner)
	q.Initialise(s)
	q.Update()
	assert.Equal(t, 0, q.RenderNodes().Count())

	owner.fail = nil
	q.Update()
	require.Equal(t, 1, q.RenderNodes().Count())
	assert.Equal(t, 1, q.RenderNodes().Geometries.Count())

	q.Update()
	assert.Equal(t, 1, q.RenderNodes().Count())
}

func TestRenderQueueWithoutCameraUsesRawNodes(t *testing.T) {
	s := scene.NewScene("raw")
	_, err := s.CreateGeometry("far", nil, mesh.NewCube("cube", 1), scene.WithMaterial(opaqueMaterial("m")))
	require.NoError(t, err)

	q := NewRenderQueue(newOwner(true, false))
	q.Initialise(s)
	q.Update()
	assert.Equal(t, 1, q.RenderNodes().Count())

	q.Cleanup()
	s.SetFlags(scene.FlagShadows)
	q.Update()
	assert.Nil(t, q.RenderNodes())
}
