package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MatrixSize is the byte size of one 4x4 float32 matrix.
const MatrixSize = 16 * 4

// ErrInvalidStride is returned for instance strides that cannot hold a matrix.
var ErrInvalidStride = errors.New("buffer: invalid instance stride")

// MatrixStore is the GPU side of a MatrixBuffer.
type MatrixStore interface {
	// Upload replaces the first len(data) bytes of the GPU buffer.
	Upload(data []byte)

	// Release destroys the GPU buffer.
	Release()
}

// InstanceLayout is the per-instance payload contract shared by the draw path and
// the instanced vertex shader.
type InstanceLayout struct {
	// Stride is the byte distance between consecutive instances. The 4x4 transform
	// always occupies the first MatrixSize bytes.
	Stride int

	// WritePassIndex stores the drawing pass index as a little-endian uint32 at
	// byte offset MatrixSize. Requires Stride >= MatrixSize+4.
	WritePassIndex bool
}

// DefaultInstanceLayout is a tightly packed matrix per instance.
var DefaultInstanceLayout = InstanceLayout{Stride: MatrixSize}

// Validate checks the layout can hold its payload.
//
// Returns:
//   - error: wrapped ErrInvalidStride when it cannot
func (l InstanceLayout) Validate() error {
	if l.Stride < MatrixSize || l.Stride%4 != 0 {
		return fmt.Errorf("%w: %d (must be >= %d and a multiple of 4)", ErrInvalidStride, l.Stride, MatrixSize)
	}
	if l.WritePassIndex && l.Stride < MatrixSize+4 {
		return fmt.Errorf("%w: %d cannot hold a pass index", ErrInvalidStride, l.Stride)
	}
	return nil
}

// MatrixBuffer is a flat CPU byte buffer of per-instance transforms, reused across
// frames and uploaded to its store before each instanced draw.
type MatrixBuffer struct {
	layout   InstanceLayout
	capacity int
	data     []byte
	store    MatrixStore
}

// NewMatrixBuffer allocates room for capacity instances.
//
// Parameters:
//   - capacity: maximum instance count, must be positive
//   - layout: per-instance payload layout
//   - store: GPU side; may be nil for CPU-only buffers
//
// Returns:
//   - *MatrixBuffer: the buffer
//   - error: error if capacity or layout is invalid
func NewMatrixBuffer(capacity int, layout InstanceLayout, store MatrixStore) (*MatrixBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("failed to create matrix buffer: capacity %d must be positive", capacity)
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create matrix buffer: %w", err)
	}
	return &MatrixBuffer{
		layout:   layout,
		capacity: capacity,
		data:     make([]byte, capacity*layout.Stride),
		store:    store,
	}, nil
}

// Stride returns the per-instance byte stride.
func (b *MatrixBuffer) Stride() int { return b.layout.Stride }

// Layout returns the per-instance payload layout.
func (b *MatrixBuffer) Layout() InstanceLayout { return b.layout }

// Capacity returns the maximum number of instances.
func (b *MatrixBuffer) Capacity() int { return b.capacity }

// Size returns the buffer size in bytes.
func (b *MatrixBuffer) Size() int { return len(b.data) }

// Data returns the raw CPU payload.
func (b *MatrixBuffer) Data() []byte { return b.data }

// SetStore attaches the GPU side once the render system created it.
func (b *MatrixBuffer) SetStore(store MatrixStore) { b.store = store }

// Store returns the GPU side, or nil.
func (b *MatrixBuffer) Store() MatrixStore { return b.store }

// Write copies the transform of instance i into its slot and fills the rest of the
// slot according to the layout. Out of range indices are ignored.
//
// Parameters:
//   - i: instance slot
//   - m: the instance's world transform
//   - passIndex: written when the layout asks for it
func (b *MatrixBuffer) Write(i int, m mgl32.Mat4, passIndex uint32) {
	if i < 0 || i >= b.capacity {
		return
	}
	slot := b.data[i*b.layout.Stride : (i+1)*b.layout.Stride]
	n := copy(slot, common.SliceToBytes(m[:]))
	rest := slot[n:]
	clear(rest)
	if b.layout.WritePassIndex {
		binary.LittleEndian.PutUint32(rest, passIndex)
	}
}

// Matrix decodes the transform stored in slot i.
func (b *MatrixBuffer) Matrix(i int) mgl32.Mat4 {
	var m mgl32.Mat4
	if i < 0 || i >= b.capacity {
		return m
	}
	copy(common.SliceToBytes(m[:]), b.data[i*b.layout.Stride:])
	return m
}

// Upload sends the first count instances to the GPU store.
//
// Parameters:
//   - count: number of instances written this frame, clamped to the capacity
func (b *MatrixBuffer) Upload(count int) {
	if b.store == nil || count <= 0 {
		return
	}
	count = min(count, b.capacity)
	b.store.Upload(b.data[:count*b.layout.Stride])
}

// Release destroys the GPU store.
func (b *MatrixBuffer) Release() {
	if b.store != nil {
		b.store.Release()
		b.store = nil
	}
}
