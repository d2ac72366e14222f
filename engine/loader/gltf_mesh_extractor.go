package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfSubmesh is one triangle primitive flattened into an interleaved vertex stream.
type gltfSubmesh struct {
	layout   buffer.VertexLayout
	vertices []float32
	indices  []uint32
	material int // -1 when the primitive has no material
	skinned  bool
}

// extractMesh flattens every primitive of a glTF mesh. With a jointToBone table every
// primitive is emitted in buffer.SkinnedLayout with joint indices rewritten through it;
// primitives without JOINTS_0/WEIGHTS_0 bind fully to the root bone. Without a table
// primitives use buffer.PositionNormalUV.
//
// Parameters:
//   - meshIndex: index into the document's meshes
//   - jointToBone: skin joint index to sorted bone index, nil for static meshes
//
// Returns:
//   - []gltfSubmesh: one entry per primitive
//   - error: error if a primitive is not a triangle list or an accessor is malformed
func (p *gltfParser) extractMesh(meshIndex int, jointToBone []int) ([]gltfSubmesh, error) {
	if meshIndex < 0 || meshIndex >= len(p.doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", meshIndex)
	}
	m := p.doc.Meshes[meshIndex]

	out := make([]gltfSubmesh, 0, len(m.Primitives))
	for i, prim := range m.Primitives {
		sm, err := p.extractPrimitive(prim, jointToBone)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		out = append(out, sm)
	}
	return out, nil
}

func (p *gltfParser) extractPrimitive(prim gltfPrimitive, jointToBone []int) (gltfSubmesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfModeTriangles {
		return gltfSubmesh{}, fmt.Errorf("unsupported primitive mode %d", *prim.Mode)
	}
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return gltfSubmesh{}, fmt.Errorf("missing POSITION attribute")
	}
	positions, err := p.readComponents(posIndex, "VEC3")
	if err != nil {
		return gltfSubmesh{}, err
	}
	count := len(positions) / 3

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = p.readIndices(*prim.Indices); err != nil {
			return gltfSubmesh{}, err
		}
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= count {
			return gltfSubmesh{}, fmt.Errorf("index %d exceeds %d vertices", idx, count)
		}
	}

	normals, err := p.optionalAttribute(prim, "NORMAL", "VEC3", count)
	if err != nil {
		return gltfSubmesh{}, err
	}
	if normals == nil {
		normals = generateNormals(positions, indices)
	}
	uvs, err := p.optionalAttribute(prim, "TEXCOORD_0", "VEC2", count)
	if err != nil {
		return gltfSubmesh{}, err
	}
	if uvs == nil {
		uvs = make([]float32, count*2)
	}

	sm := gltfSubmesh{layout: buffer.PositionNormalUV, indices: indices, material: -1}
	if prim.Material != nil {
		sm.material = *prim.Material
	}

	var joints, weights []float32
	if jointToBone != nil {
		if joints, err = p.optionalAttribute(prim, "JOINTS_0", "VEC4", count); err != nil {
			return gltfSubmesh{}, err
		}
		if weights, err = p.optionalAttribute(prim, "WEIGHTS_0", "VEC4", count); err != nil {
			return gltfSubmesh{}, err
		}
		sm.layout = buffer.SkinnedLayout
		sm.skinned = true
	}

	sm.vertices = make([]float32, 0, count*sm.layout.Stride())
	for v := 0; v < count; v++ {
		sm.vertices = append(sm.vertices, positions[v*3:v*3+3]...)
		sm.vertices = append(sm.vertices, normals[v*3:v*3+3]...)
		sm.vertices = append(sm.vertices, uvs[v*2:v*2+2]...)
		if !sm.skinned {
			continue
		}
		if joints == nil || weights == nil {
			sm.vertices = append(sm.vertices, 0, 0, 0, 0, 1, 0, 0, 0)
			continue
		}
		for c := 0; c < 4; c++ {
			j := int(joints[v*4+c])
			if j < 0 || j >= len(jointToBone) {
				return gltfSubmesh{}, fmt.Errorf("joint %d outside the skin", j)
			}
			sm.vertices = append(sm.vertices, float32(jointToBone[j]))
		}
		sm.vertices = append(sm.vertices, normalizeWeights(weights[v*4:v*4+4])...)
	}
	return sm, nil
}

// optionalAttribute reads a vertex attribute when present and checks it matches the
// vertex count. A missing attribute returns nil without error.
func (p *gltfParser) optionalAttribute(prim gltfPrimitive, name, accessorType string, count int) ([]float32, error) {
	index, ok := prim.Attributes[name]
	if !ok {
		return nil, nil
	}
	values, err := p.readComponents(index, accessorType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(values) != count*componentCount(accessorType) {
		return nil, fmt.Errorf("%s has %d values for %d vertices", name, len(values), count)
	}
	return values, nil
}

// generateNormals computes area-weighted smooth vertex normals.
func generateNormals(positions []float32, indices []uint32) []float32 {
	acc := make([]mgl32.Vec3, len(positions)/3)
	vec := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		face := vec(b).Sub(vec(a)).Cross(vec(c).Sub(vec(a)))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}
	out := make([]float32, 0, len(positions))
	for _, n := range acc {
		if n.Len() > 0 {
			n = n.Normalize()
		} else {
			n = mgl32.Vec3{0, 1, 0}
		}
		out = append(out, n[:]...)
	}
	return out
}

// normalizeWeights rescales four bone weights to sum to one. All-zero weights bind fully
// to the first joint.
func normalizeWeights(w []float32) []float32 {
	sum := w[0] + w[1] + w[2] + w[3]
	if sum <= 0 {
		return []float32{1, 0, 0, 0}
	}
	return []float32{w[0] / sum, w[1] / sum, w[2] / sum, w[3] / sum}
}
