// Package render_queue turns a scene into the per-pass buckets of render nodes the
// render pass draws: classification picks each drawable's pipeline and bucket,
// filtering keeps the nodes the camera can see.
package render_queue

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_node"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

// Owner is the render pass a queue classifies for. It owns the pipelines and
// decides which program flags its pass contributes.
type Owner interface {
	// IsOpaque reports whether the pass draws opaque objects.
	IsOpaque() bool

	// PreparePipeline makes sure the back pipeline for f exists, and the front one
	// too when frontToo is set.
	//
	// Parameters:
	//   - f: the pipeline state key
	//   - frontToo: whether a front-culled pipeline is needed
	//
	// Returns:
	//   - error: the wrapped program or pipeline creation error
	PreparePipeline(f pipeline.Flags, frontToo bool) error

	// FrontPipeline returns the front-culled pipeline prepared for f.
	FrontPipeline(f pipeline.Flags) (pipeline.Pipeline, bool)

	// BackPipeline returns the back-culled pipeline prepared for f.
	BackPipeline(f pipeline.Flags) (pipeline.Pipeline, bool)

	// HasInstancing reports whether the render system can draw instanced.
	HasInstancing() bool

	// Multisampling reports whether the render target is multisampled.
	Multisampling() bool

	// UpdateFlags adds the pass's own program flags.
	UpdateFlags(f flags.ProgramFlags) flags.ProgramFlags

	// IgnoredNode returns the scene node whose objects are never classified, or nil.
	IgnoredNode() scene.Node
}

// Classifier assigns every drawable of a scene to a pipeline and a bucket.
type Classifier struct {
	owner Owner
}

// NewClassifier creates a Classifier for owner.
func NewClassifier(owner Owner) *Classifier {
	if owner == nil {
		panic("render_queue: NewClassifier requires a non-nil Owner")
	}
	return &Classifier{owner: owner}
}

// visibleParent returns the object's parent when the object should be classified.
func (c *Classifier) visibleParent(parent scene.Node) (scene.Node, bool) {
	if parent == nil || !parent.IsVisible() {
		return nil, false
	}
	if ignored := c.owner.IgnoredNode(); ignored != nil && ignored == parent {
		return nil, false
	}
	return parent, true
}

// pipelines prepares and fetches the pipelines for f. front is nil unless needed.
func (c *Classifier) pipelines(name string, f pipeline.Flags, needFront bool) (front, back pipeline.Pipeline, ok bool) {
	if err := c.owner.PreparePipeline(f, needFront); err != nil {
		logger.Error("failed to prepare pipeline", "object", name, "flags", f, "err", err)
		return nil, nil, false
	}
	back, ok = c.owner.BackPipeline(f)
	if !logger.Require(ok, "back pipeline missing after prepare", "object", name, "flags", f) {
		return nil, nil, false
	}
	if needFront {
		front, ok = c.owner.FrontPipeline(f)
		if !logger.Require(ok, "front pipeline missing after prepare", "object", name, "flags", f) {
			return nil, nil, false
		}
	}
	return front, back, true
}

// ClassifyGeometries builds the geometry buckets of s for an opaque or a transparent queue.
//
// Parameters:
//   - s: the scene to classify
//   - wantOpaque: true to keep non alpha blended passes, false to keep alpha blended ones
//
// Returns:
//   - *GeometryNodes: the classified nodes
func (c *Classifier) ClassifyGeometries(s scene.Scene, wantOpaque bool) *GeometryNodes {
	out := NewGeometryNodes()
	c.ClassifyGeometriesInto(s, wantOpaque, out)
	return out
}

// ClassifyGeometriesInto clears out and fills it like ClassifyGeometries.
//
// Returns:
//   - int: the number of passes left out because their pipelines could not be prepared
func (c *Classifier) ClassifyGeometriesInto(s scene.Scene, wantOpaque bool, out *GeometryNodes) int {
	out.Clear()
	failed := 0
	shadows := s.HasShadows()
	instancing := c.owner.HasInstancing()
	multisampling := c.owner.Multisampling()

	s.Geometries().Range(func(_ string, g scene.Geometry) bool {
		if _, ok := c.visibleParent(g.Parent()); !ok {
			return true
		}
		m := g.Mesh()
		if m == nil || m.SubmeshCount() == 0 {
			return true
		}

		animatedSkeleton, _ := s.FindAnimatedObject(g.Name() + scene.SkeletonSuffix).(scene.AnimatedSkeleton)
		morph, _ := s.FindAnimatedObject(g.Name() + scene.MeshSuffix).(scene.AnimatedMesh)

		for _, sm := range m.Submeshes() {
			mat := g.Material(sm)
			if mat == nil || mat.PassCount() == 0 {
				continue
			}
			skeleton := animatedSkeleton
			if !sm.HasBoneData() {
				skeleton = nil
			}
			animated := skeleton != nil || morph != nil
			refs := sm.RefCount(mat)
			for _, pass := range mat.Passes() {
				pass.PrepareTextures()
				pf := sm.ProgramFlags().Without(flags.ProgramSkinning | flags.ProgramMorphing)
				pf = pf.Set(flags.ProgramSkinning, skeleton != nil)
				pf = pf.Set(flags.ProgramMorphing, morph != nil)
				pf = pf.Set(flags.ProgramShadows, shadows && g.IsShadowReceiver())

				blended := pass.HasAlphaBlending()
				instanced := refs > 1 && !animated && (!blended || multisampling) && instancing
				pf = pf.Set(flags.ProgramInstantiation, instanced)
				pf = pf.Set(flags.ProgramAlphaBlending, blended)
				pf = c.owner.UpdateFlags(pf)

				f := pipelineFlags(pass, pf)
				needFront := pass.IsTwoSided() || pf.HasAlphaBlending()
				front, back, ok := c.pipelines(g.Name(), f, needFront)
				if !ok {
					failed++
					continue
				}
				if pf.HasAlphaBlending() == wantOpaque {
					continue
				}
				if pf.IsShadowMap() && !g.IsShadowCaster() {
					continue
				}
				c.routeGeometry(out, pass, g, sm, pf, front, back, skeleton, morph)
			}
		}
		return true
	})
	return failed
}

func (c *Classifier) routeGeometry(out *GeometryNodes, pass material.Pass, g scene.Geometry, sm mesh.Submesh, pf flags.ProgramFlags, front, back pipeline.Pipeline, skeleton scene.AnimatedSkeleton, morph scene.AnimatedMesh) {
	switch {
	case pf.IsAnimated():
		if front != nil {
			out.AnimatedFront.Add(front, render_node.NewAnimatedNode(pass, front, g, sm, skeleton, morph))
		}
		out.AnimatedBack.Add(back, render_node.NewAnimatedNode(pass, back, g, sm, skeleton, morph))
	case pf.IsInstanced():
		if front != nil {
			out.InstancedFront.Add(front, render_node.NewStaticNode(pass, front, g, sm))
		}
		out.InstancedBack.Add(back, render_node.NewStaticNode(pass, back, g, sm))
	default:
		if front != nil {
			out.StaticFront.Add(front, render_node.NewStaticNode(pass, front, g, sm))
		}
		out.StaticBack.Add(back, render_node.NewStaticNode(pass, back, g, sm))
	}
}

// ClassifyBillboards builds the billboard buckets of s from its billboard lists and particle systems.
//
// Parameters:
//   - s: the scene to classify
//   - wantOpaque: true to keep non alpha blended passes, false to keep alpha blended ones
//
// Returns:
//   - *BillboardNodes: the classified nodes
func (c *Classifier) ClassifyBillboards(s scene.Scene, wantOpaque bool) *BillboardNodes {
	out := NewBillboardNodes()
	c.ClassifyBillboardsInto(s, wantOpaque, out)
	return out
}

// ClassifyBillboardsInto clears out and fills it like ClassifyBillboards.
//
// Returns:
//   - int: the number of passes left out because their pipelines could not be prepared
func (c *Classifier) ClassifyBillboardsInto(s scene.Scene, wantOpaque bool, out *BillboardNodes) int {
	out.Clear()
	failed := 0
	s.BillboardLists().Range(func(_ string, b scene.BillboardList) bool {
		failed += c.classifyBillboard(out, b, wantOpaque)
		return true
	})
	s.ParticleSystems().Range(func(_ string, p scene.ParticleSystem) bool {
		failed += c.classifyBillboard(out, p.Billboards(), wantOpaque)
		return true
	})
	return failed
}

func (c *Classifier) classifyBillboard(out *BillboardNodes, b scene.BillboardList, wantOpaque bool) (failed int) {
	if _, ok := c.visibleParent(b.Parent()); !ok {
		return 0
	}
	mat := b.Material()
	if mat == nil {
		return 0
	}
	for _, pass := range mat.Passes() {
		pass.PrepareTextures()
		pf := flags.ProgramBillboards.Set(flags.ProgramAlphaBlending, pass.HasAlphaBlending())
		pf = c.owner.UpdateFlags(pf)
		if pf.IsShadowMap() {
			continue
		}

		f := pipelineFlags(pass, pf)
		needFront := pass.IsTwoSided() || pf.HasAlphaBlending()
		front, back, ok := c.pipelines(b.Name(), f, needFront)
		if !ok {
			failed++
			continue
		}
		if pf.HasAlphaBlending() == wantOpaque {
			continue
		}
		if front != nil {
			out.Front.Add(front, render_node.NewBillboardNode(pass, front, b))
		}
		out.Back.Add(back, render_node.NewBillboardNode(pass, back, b))
	}
	return failed
}

func pipelineFlags(pass material.Pass, pf flags.ProgramFlags) pipeline.Flags {
	return pipeline.Flags{
		TextureFlags:    pass.TextureFlags(),
		ProgramFlags:    pf,
		ColourBlendMode: pass.ColourBlendMode(),
		AlphaBlendMode:  pass.AlphaBlendMode(),
	}
}
