package mesh

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
)

// NewCube creates a mesh holding one axis-aligned cube submesh centered on the origin.
// Each face has its own four vertices so normals stay flat.
//
// Parameters:
//   - name: the mesh identifier
//   - size: edge length
//
// Returns:
//   - Mesh: the cube mesh
func NewCube(name string, size float32, options ...SubmeshBuilderOption) Mesh {
	h := size / 2
	faces := []struct {
		normal [3]float32
		corner [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]float32, 0, 6*4*8)
	indices := make([]uint32, 0, 6*6)
	for f, face := range faces {
		for c, p := range face.corner {
			vertices = append(vertices, p[0], p[1], p[2], face.normal[0], face.normal[1], face.normal[2], uvs[c][0], uvs[c][1])
		}
		base := uint32(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	m := NewMesh(name)
	m.CreateSubmesh(buffer.PositionNormalUV, vertices, indices, options...)
	return m
}

// NewQuad creates a mesh holding a single quad in the XY plane facing +Z.
//
// Parameters:
//   - name: the mesh identifier
//   - width: extent along X
//   - height: extent along Y
//
// Returns:
//   - Mesh: the quad mesh
func NewQuad(name string, width, height float32, options ...SubmeshBuilderOption) Mesh {
	w, h := width/2, height/2
	vertices := []float32{
		-w, -h, 0, 0, 0, 1, 0, 0,
		w, -h, 0, 0, 0, 1, 1, 0,
		w, h, 0, 0, 0, 1, 1, 1,
		-w, h, 0, 0, 0, 1, 0, 1,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	m := NewMesh(name)
	m.CreateSubmesh(buffer.PositionNormalUV, vertices, indices, options...)
	return m
}
