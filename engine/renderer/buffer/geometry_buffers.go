package buffer

// VertexLayout describes the interleaved float attributes of a vertex buffer.
type VertexLayout struct {
	// Components lists the float count of each attribute, in location order.
	Components []int
}

// Stride returns the size of one vertex in floats.
func (l VertexLayout) Stride() int {
	n := 0
	for _, c := range l.Components {
		n += c
	}
	return n
}

// HasBoneData reports whether the layout carries the bone indices and weights of
// SkinnedLayout after position, normal and texcoord.
func (l VertexLayout) HasBoneData() bool {
	return len(l.Components) >= 5 && l.Components[3] == 4 && l.Components[4] == 4
}

// PositionNormalUV is the default layout: position (3), normal (3), texcoord (2).
var PositionNormalUV = VertexLayout{Components: []int{3, 3, 2}}

// SkinnedLayout appends four bone indices and four bone weights to PositionNormalUV.
var SkinnedLayout = VertexLayout{Components: []int{3, 3, 2, 4, 4}}

// GeometryBuffers is a drawable set of vertex, index and optional instance buffers
// produced by a render system.
type GeometryBuffers interface {
	// Bind makes the vertex layout current.
	Bind()

	// Unbind restores the default vertex layout.
	Unbind()

	// Draw issues one indexed draw of indexCount indices.
	Draw(indexCount int)

	// DrawInstanced issues one indexed draw repeated instances times. Per-instance
	// data is read from the matrix buffer attached at creation.
	DrawInstanced(indexCount, instances int)

	// Release destroys the GPU objects.
	Release()
}

// Factory creates GPU buffers. Render systems implement it.
type Factory interface {
	// CreateGeometryBuffers uploads interleaved vertices and indices. When matrices is
	// non-nil its store is bound as per-instance attributes of the same vertex layout.
	CreateGeometryBuffers(layout VertexLayout, vertices []float32, indices []uint32, matrices *MatrixBuffer) (GeometryBuffers, error)

	// CreateMatrixStore allocates the GPU side of a matrix buffer of the given size in bytes.
	CreateMatrixStore(size int) (MatrixStore, error)
}
