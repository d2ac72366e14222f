package opengl

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// newBufferResource wraps a GL buffer object bound to target.
func newBufferResource(target uint32) *buffer.Resource {
	return buffer.NewResource(buffer.KindBuffer, buffer.Capabilities{
		Create: func() (uint32, error) {
			var id uint32
			gl.GenBuffers(1, &id)
			if id == 0 {
				return 0, fmt.Errorf("glGenBuffers returned 0 (GL error %d)", gl.GetError())
			}
			return id, nil
		},
		Destroy: func(id uint32) { gl.DeleteBuffers(1, &id) },
		Bind:    func(id uint32) { gl.BindBuffer(target, id) },
		Unbind:  func(uint32) { gl.BindBuffer(target, 0) },
	})
}

// newVertexArrayResource wraps a GL vertex array object.
func newVertexArrayResource() *buffer.Resource {
	return buffer.NewResource(buffer.KindVertexArray, buffer.Capabilities{
		Create: func() (uint32, error) {
			var id uint32
			gl.GenVertexArrays(1, &id)
			if id == 0 {
				return 0, fmt.Errorf("glGenVertexArrays returned 0 (GL error %d)", gl.GetError())
			}
			return id, nil
		},
		Destroy: func(id uint32) { gl.DeleteVertexArrays(1, &id) },
		Bind:    func(id uint32) { gl.BindVertexArray(id) },
		Unbind:  func(uint32) { gl.BindVertexArray(0) },
	})
}

// matrixStore is the instance VBO behind a buffer.MatrixBuffer.
type matrixStore struct {
	vbo  *buffer.Resource
	size int
}

var _ buffer.MatrixStore = &matrixStore{}

func newMatrixStore(size int) (*matrixStore, error) {
	vbo := newBufferResource(gl.ARRAY_BUFFER)
	if err := vbo.Create(); err != nil {
		return nil, fmt.Errorf("failed to create matrix store: %w", err)
	}
	_ = vbo.Bind()
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	vbo.Unbind()
	return &matrixStore{vbo: vbo, size: size}, nil
}

func (s *matrixStore) Upload(data []byte) {
	if len(data) == 0 || !s.vbo.Created() {
		return
	}
	n := min(len(data), s.size)
	_ = s.vbo.Bind()
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n, gl.Ptr(data))
	s.vbo.Unbind()
}

func (s *matrixStore) Release() {
	s.vbo.Destroy()
}

// geometryBuffers is a VAO over an interleaved VBO, an index buffer and, for
// instanced geometry, the matrix store VBO.
type geometryBuffers struct {
	vao *buffer.Resource
	vbo *buffer.Resource
	ibo *buffer.Resource
}

var _ buffer.GeometryBuffers = &geometryBuffers{}

func newGeometryBuffers(layout buffer.VertexLayout, vertices []float32, indices []uint32, matrices *buffer.MatrixBuffer) (*geometryBuffers, error) {
	stride := layout.Stride()
	if stride == 0 || len(vertices) == 0 || len(vertices)%stride != 0 {
		return nil, fmt.Errorf("failed to create geometry buffers: %d floats for stride %d", len(vertices), stride)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("failed to create geometry buffers: no indices")
	}

	g := &geometryBuffers{
		vao: newVertexArrayResource(),
		vbo: newBufferResource(gl.ARRAY_BUFFER),
		ibo: newBufferResource(gl.ELEMENT_ARRAY_BUFFER),
	}
	for _, r := range []*buffer.Resource{g.vao, g.vbo, g.ibo} {
		if err := r.Create(); err != nil {
			g.Release()
			return nil, fmt.Errorf("failed to create geometry buffers: %w", err)
		}
	}

	_ = g.vao.Bind()
	_ = g.vbo.Bind()
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	var offset int
	for i, components := range layout.Components {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), int32(components), gl.FLOAT, false, int32(stride*4), uintptr(offset*4))
		offset += components
	}

	_ = g.ibo.Bind()
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	if matrices != nil {
		if err := bindInstanceAttributes(matrices); err != nil {
			g.vao.Unbind()
			g.Release()
			return nil, err
		}
	}
	g.vao.Unbind()
	return g, nil
}

// bindInstanceAttributes points the per-instance attributes of the bound VAO at the
// matrix store: four vec4 columns of the transform, then the optional pass index.
func bindInstanceAttributes(matrices *buffer.MatrixBuffer) error {
	layout := matrices.Layout()
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("failed to bind instance attributes: %w", err)
	}
	store, ok := matrices.Store().(*matrixStore)
	if !ok {
		return fmt.Errorf("failed to bind instance attributes: matrix store was not created by this render system")
	}

	_ = store.vbo.Bind()
	for col := 0; col < 4; col++ {
		loc := uint32(instanceTransformLocation + col)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, int32(layout.Stride), uintptr(col*16))
		gl.VertexAttribDivisor(loc, 1)
	}
	if layout.WritePassIndex {
		gl.EnableVertexAttribArray(instancePassIndexLocation)
		gl.VertexAttribIPointer(instancePassIndexLocation, 1, gl.UNSIGNED_INT, int32(layout.Stride), gl.PtrOffset(buffer.MatrixSize))
		gl.VertexAttribDivisor(instancePassIndexLocation, 1)
	}
	return nil
}

func (g *geometryBuffers) Bind() {
	_ = g.vao.Bind()
}

func (g *geometryBuffers) Unbind() {
	g.vao.Unbind()
}

func (g *geometryBuffers) Draw(indexCount int) {
	gl.DrawElements(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, nil)
}

func (g *geometryBuffers) DrawInstanced(indexCount, instances int) {
	gl.DrawElementsInstanced(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, nil, int32(instances))
}

func (g *geometryBuffers) Release() {
	g.ibo.Destroy()
	g.vbo.Destroy()
	g.vao.Destroy()
}
