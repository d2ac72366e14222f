package loader

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// extractSkeleton converts a skin into a mesh.Skeleton whose bones are ordered parents
// first. The returned slice maps each skin joint index to its bone index, and nodeToBone
// maps glTF node indices to bone indices for animation targeting.
//
// Parameters:
//   - skinIndex: index into the document's skins
//
// Returns:
//   - *mesh.Skeleton: the sorted skeleton
//   - []int: joint index to bone index
//   - map[int]int: node index to bone index
//   - error: error if the skin is malformed
func (p *gltfParser) extractSkeleton(skinIndex int) (*mesh.Skeleton, []int, map[int]int, error) {
	if skinIndex < 0 || skinIndex >= len(p.doc.Skins) {
		return nil, nil, nil, fmt.Errorf("skin %d out of range", skinIndex)
	}
	skin := p.doc.Skins[skinIndex]
	if len(skin.Joints) == 0 {
		return nil, nil, nil, fmt.Errorf("skin %d has no joints", skinIndex)
	}

	var inverseBinds []float32
	if skin.InverseBindMatrices != nil {
		var err error
		if inverseBinds, err = p.readComponents(*skin.InverseBindMatrices, "MAT4"); err != nil {
			return nil, nil, nil, fmt.Errorf("skin %d inverse bind matrices: %w", skinIndex, err)
		}
		if len(inverseBinds) < len(skin.Joints)*16 {
			return nil, nil, nil, fmt.Errorf("skin %d has %d inverse bind matrices for %d joints", skinIndex, len(inverseBinds)/16, len(skin.Joints))
		}
	}

	nodeParent := make(map[int]int, len(p.doc.Nodes))
	for i, n := range p.doc.Nodes {
		for _, c := range n.Children {
			nodeParent[c] = i
		}
	}
	jointOfNode := make(map[int]int, len(skin.Joints))
	for j, node := range skin.Joints {
		if node < 0 || node >= len(p.doc.Nodes) {
			return nil, nil, nil, fmt.Errorf("skin %d joint %d references node %d", skinIndex, j, node)
		}
		jointOfNode[node] = j
	}

	// The nearest ancestor that belongs to the skin is the bone parent.
	parentJoint := make([]int, len(skin.Joints))
	depth := make([]int, len(skin.Joints))
	for j, node := range skin.Joints {
		parentJoint[j] = -1
		cur, ok := nodeParent[node]
		for steps := 0; ok && steps < len(p.doc.Nodes); steps++ {
			if pj, isJoint := jointOfNode[cur]; isJoint {
				parentJoint[j] = pj
				break
			}
			cur, ok = nodeParent[cur]
		}
	}
	for j := range skin.Joints {
		for cur := parentJoint[j]; cur >= 0; cur = parentJoint[cur] {
			depth[j]++
			if depth[j] > len(skin.Joints) {
				return nil, nil, nil, fmt.Errorf("skin %d joint hierarchy has a cycle", skinIndex)
			}
		}
	}

	order := make([]int, len(skin.Joints))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return depth[order[a]] < depth[order[b]] })

	jointToBone := make([]int, len(skin.Joints))
	for bone, j := range order {
		jointToBone[j] = bone
	}

	skeleton := &mesh.Skeleton{Bones: make([]mesh.Bone, len(order))}
	nodeToBone := make(map[int]int, len(order))
	for bone, j := range order {
		node := p.doc.Nodes[skin.Joints[j]]
		b := mesh.Bone{
			Name:        node.Name,
			Parent:      -1,
			InverseBind: mgl32.Ident4(),
			Local:       nodeTransform(node),
		}
		if b.Name == "" {
			b.Name = fmt.Sprintf("joint_%d", j)
		}
		if parentJoint[j] >= 0 {
			b.Parent = jointToBone[parentJoint[j]]
		}
		if inverseBinds != nil {
			copy(b.InverseBind[:], inverseBinds[j*16:j*16+16])
		}
		skeleton.Bones[bone] = b
		nodeToBone[skin.Joints[j]] = bone
	}
	return skeleton, jointToBone, nodeToBone, nil
}

// nodeTransform returns the local transform of a node, decomposing its matrix when set.
func nodeTransform(n gltfNode) mesh.Transform {
	t := mesh.IdentityTransform()
	if n.Matrix != nil {
		return decomposeMatrix(mgl32.Mat4(*n.Matrix))
	}
	if n.Translation != nil {
		t.Translation = mgl32.Vec3(*n.Translation)
	}
	if n.Rotation != nil {
		t.Rotation = gltfQuat(n.Rotation[:])
	}
	if n.Scale != nil {
		t.Scale = mgl32.Vec3(*n.Scale)
	}
	return t
}

// decomposeMatrix splits an affine TRS matrix. Shear is discarded.
func decomposeMatrix(m mgl32.Mat4) mesh.Transform {
	t := mesh.Transform{Translation: m.Col(3).Vec3()}
	t.Scale = mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if t.Scale.X() == 0 || t.Scale.Y() == 0 || t.Scale.Z() == 0 {
		t.Rotation = mgl32.QuatIdent()
		return t
	}
	rot := mgl32.Mat4FromCols(
		m.Col(0).Mul(1/t.Scale.X()),
		m.Col(1).Mul(1/t.Scale.Y()),
		m.Col(2).Mul(1/t.Scale.Z()),
		mgl32.Vec4{0, 0, 0, 1},
	)
	t.Rotation = mgl32.Mat4ToQuat(rot).Normalize()
	return t
}

// gltfQuat converts an x, y, z, w quaternion.
func gltfQuat(v []float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
