package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// importAsset assembles a parsed document into a MeshAsset. Every primitive of every
// glTF mesh becomes one submesh. The first skin referenced by a node drives the skeleton
// and only animations aimed at its joints are kept.
//
// Parameters:
//   - name: the asset name, used for the mesh and as the material namespace
//
// Returns:
//   - *MeshAsset: the assembled asset
//   - error: error if any extractor fails
func (p *gltfParser) importAsset(name string) (*MeshAsset, error) {
	if len(p.doc.Meshes) == 0 {
		return nil, fmt.Errorf("%s: document has no meshes", name)
	}

	var skeleton *mesh.Skeleton
	var clips []*mesh.AnimationClip
	var jointToBone []int
	if skin := p.findSkin(); skin >= 0 {
		var nodeToBone map[int]int
		var err error
		if skeleton, jointToBone, nodeToBone, err = p.extractSkeleton(skin); err != nil {
			return nil, fmt.Errorf("%s: skeleton extraction failed: %w", name, err)
		}
		if clips, err = p.extractAnimations(nodeToBone); err != nil {
			return nil, fmt.Errorf("%s: animation extraction failed: %w", name, err)
		}
	}

	materials, err := p.extractMaterials(name)
	if err != nil {
		return nil, fmt.Errorf("%s: material extraction failed: %w", name, err)
	}

	var options []mesh.MeshBuilderOption
	if skeleton != nil {
		options = append(options, mesh.WithSkeleton(skeleton), mesh.WithAnimationClips(clips...))
	}
	asset := &MeshAsset{Mesh: mesh.NewMesh(name, options...)}

	var fallback material.Material
	for mi := range p.doc.Meshes {
		submeshes, err := p.extractMesh(mi, jointToBone)
		if err != nil {
			return nil, fmt.Errorf("%s: mesh extraction failed: %w", name, err)
		}
		for _, sm := range submeshes {
			if sm.material >= 0 && sm.material < len(materials) {
				asset.Materials = append(asset.Materials, materials[sm.material])
			} else {
				if fallback == nil {
					fallback = material.NewMaterial(name+"/default", material.WithPass(
						material.WithDiffuse(mgl32.Vec4{0.8, 0.8, 0.8, 1}),
						material.WithAmbient(mgl32.Vec4{0.2, 0.2, 0.2, 1}),
					))
				}
				asset.Materials = append(asset.Materials, fallback)
			}
			asset.Mesh.CreateSubmesh(sm.layout, sm.vertices, sm.indices)
		}
	}
	return asset, nil
}

// findSkin returns the skin of the first node that carries both a mesh and a skin, or
// the first skin in the document, or -1.
func (p *gltfParser) findSkin() int {
	for _, n := range p.doc.Nodes {
		if n.Mesh != nil && n.Skin != nil {
			return *n.Skin
		}
	}
	if len(p.doc.Skins) > 0 {
		return 0
	}
	return -1
}
