// Package buffer holds the backend-agnostic GPU resource wrappers consumed by the draw
// path: tagged resources, geometry buffers and the per-instance matrix buffer.
package buffer

import (
	"errors"
	"fmt"
)

// ErrNotCreated is returned when a resource is used before Create succeeded.
var ErrNotCreated = errors.New("buffer: resource not created")

// Kind tags the family a GPU resource belongs to.
type Kind int

const (
	KindBuffer Kind = iota
	KindVertexArray
	KindTexture
	KindFrameBuffer
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindVertexArray:
		return "vertex array"
	case KindTexture:
		return "texture"
	case KindFrameBuffer:
		return "frame buffer"
	case KindQuery:
		return "query"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Capabilities are the backend entry points driving a resource's lifecycle.
// Create and Destroy are required; Bind and Unbind may be nil for kinds that
// are never bound (queries).
type Capabilities struct {
	Create  func() (uint32, error)
	Destroy func(id uint32)
	Bind    func(id uint32)
	Unbind  func(id uint32)
}

// Resource is a GPU object with a create/destroy/bind/unbind lifecycle.
type Resource struct {
	kind    Kind
	id      uint32
	created bool
	caps    Capabilities
}

// NewResource wraps the given backend capabilities. The GPU object is not created
// until Create is called.
//
// Parameters:
//   - kind: the resource family
//   - caps: backend entry points; Create and Destroy must be non-nil
//
// Returns:
//   - *Resource: the uncreated resource
func NewResource(kind Kind, caps Capabilities) *Resource {
	if caps.Create == nil || caps.Destroy == nil {
		panic("buffer: NewResource requires Create and Destroy capabilities")
	}
	return &Resource{kind: kind, caps: caps}
}

// Kind returns the resource family.
func (r *Resource) Kind() Kind { return r.kind }

// ID returns the backend handle, or 0 before creation.
func (r *Resource) ID() uint32 { return r.id }

// Created reports whether the GPU object exists.
func (r *Resource) Created() bool { return r.created }

// Create allocates the GPU object. Creating twice is a no-op.
//
// Returns:
//   - error: error returned by the backend
func (r *Resource) Create() error {
	if r.created {
		return nil
	}
	id, err := r.caps.Create()
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	r.id = id
	r.created = true
	return nil
}

// Destroy releases the GPU object. Destroying an uncreated resource is a no-op.
func (r *Resource) Destroy() {
	if !r.created {
		return
	}
	r.caps.Destroy(r.id)
	r.id = 0
	r.created = false
}

// Bind makes the resource current on the backend.
//
// Returns:
//   - error: ErrNotCreated when called before Create
func (r *Resource) Bind() error {
	if !r.created {
		return fmt.Errorf("failed to bind %s: %w", r.kind, ErrNotCreated)
	}
	if r.caps.Bind != nil {
		r.caps.Bind(r.id)
	}
	return nil
}

// Unbind restores the backend's default binding for this kind.
func (r *Resource) Unbind() {
	if r.created && r.caps.Unbind != nil {
		r.caps.Unbind(r.id)
	}
}
