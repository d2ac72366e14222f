package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// extractMaterials converts every glTF material into a single-pass material named
// "<prefix>/<name>". Metallic-roughness inputs map onto the fixed-function pass model:
// base colour becomes diffuse and roughness lowers the specular exponent.
//
// Parameters:
//   - prefix: namespace for the generated material names, usually the asset name
//
// Returns:
//   - []material.Material: one material per document material, in document order
//   - error: error if a texture reference is malformed
func (p *gltfParser) extractMaterials(prefix string) ([]material.Material, error) {
	images := make(map[int]*common.TextureImage)
	out := make([]material.Material, 0, len(p.doc.Materials))

	for i, gm := range p.doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}

		diffuse := mgl32.Vec4{1, 1, 1, 1}
		shininess := float32(32)
		var options []material.PassBuilderOption

		if pbr := gm.PbrMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				diffuse = mgl32.Vec4(*pbr.BaseColorFactor)
			}
			if pbr.RoughnessFactor != nil {
				shininess = max(1, 128*(1-mgl32.Clamp(*pbr.RoughnessFactor, 0, 1)))
			}
			if pbr.BaseColorTexture != nil {
				img, err := p.textureImage(pbr.BaseColorTexture.Index, images)
				if err != nil {
					return nil, fmt.Errorf("material %q base colour: %w", name, err)
				}
				options = append(options, material.WithTexture(flags.TextureDiffuse, img))
			}
		}
		if gm.NormalTexture != nil {
			img, err := p.textureImage(gm.NormalTexture.Index, images)
			if err != nil {
				return nil, fmt.Errorf("material %q normal: %w", name, err)
			}
			options = append(options, material.WithTexture(flags.TextureNormal, img))
		}
		if gm.EmissiveTexture != nil {
			img, err := p.textureImage(gm.EmissiveTexture.Index, images)
			if err != nil {
				return nil, fmt.Errorf("material %q emissive: %w", name, err)
			}
			options = append(options, material.WithTexture(flags.TextureEmissive, img))
		}
		if gm.EmissiveFactor != nil {
			options = append(options, material.WithEmissive(mgl32.Vec3(*gm.EmissiveFactor).Vec4(1)))
		}

		options = append(options,
			material.WithDiffuse(diffuse),
			material.WithAmbient(diffuse.Mul(0.2)),
			material.WithSpecular(mgl32.Vec4{0.5, 0.5, 0.5, 1}, shininess),
			material.WithTwoSided(gm.DoubleSided),
		)
		switch gm.AlphaMode {
		case gltfAlphaBlend:
			options = append(options,
				material.WithOpacity(diffuse.W()),
				material.WithBlendModes(flags.BlendModeInterpolative, flags.BlendModeInterpolative),
			)
		case "", gltfAlphaOpaque, gltfAlphaMask:
			// MASK has no alpha-test path and renders opaque.
		default:
			return nil, fmt.Errorf("material %q: unknown alpha mode %q", name, gm.AlphaMode)
		}

		out = append(out, material.NewMaterial(prefix+"/"+name, material.WithPass(options...)))
	}
	return out, nil
}

// textureImage resolves a texture index to its source image. Images are shared between
// materials that reference the same source. Pixels are decoded at upload time.
func (p *gltfParser) textureImage(textureIndex int, cache map[int]*common.TextureImage) (*common.TextureImage, error) {
	if textureIndex < 0 || textureIndex >= len(p.doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", textureIndex)
	}
	src := p.doc.Textures[textureIndex].Source
	if src == nil || *src < 0 || *src >= len(p.doc.Images) {
		return nil, fmt.Errorf("texture %d has no valid image source", textureIndex)
	}
	if img, ok := cache[*src]; ok {
		return img, nil
	}

	gi := p.doc.Images[*src]
	img := &common.TextureImage{Name: gi.Name}
	if img.Name == "" {
		img.Name = fmt.Sprintf("image_%d", *src)
	}
	switch {
	case gi.BufferView != nil:
		data, err := p.bufferView(*gi.BufferView)
		if err != nil {
			return nil, err
		}
		img.Data = data
	case strings.HasPrefix(gi.URI, "data:"):
		data, _, err := decodeDataURI(gi.URI)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", *src, err)
		}
		img.Data = data
	case gi.URI != "":
		img.Path = filepath.Join(p.baseDir, filepath.FromSlash(gi.URI))
	default:
		return nil, fmt.Errorf("image %d has neither a URI nor a buffer view", *src)
	}
	cache[*src] = img
	return img, nil
}
