// Package material holds surface descriptions. A Material is an ordered list of
// Passes; each Pass carries its colours, blend modes, culling and texture units.
package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
)

// material is the implementation of the Material interface.
type material struct {
	mu      sync.Mutex
	name    string
	passes  []Pass
	conns   []signal.Connection
	changed signal.Signal[Material]
}

// Material defines the interface for a render material. Every pass is drawn in
// order; a change to any pass is re-emitted through the material's OnChanged signal
// so the owning scene can reclassify.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Passes returns a snapshot of the material passes in draw order.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// Pass returns the pass at index i, or nil when out of range.
	Pass(i int) Pass

	// PassCount returns the number of passes.
	PassCount() int

	// CreatePass appends a new pass configured by options.
	//
	// Parameters:
	//   - options: functional options applied to the pass
	//
	// Returns:
	//   - Pass: the created pass
	CreatePass(options ...PassBuilderOption) Pass

	// RemovePass removes the pass at index i and re-indexes the remaining passes.
	RemovePass(i int)

	// HasAlphaBlending reports whether any pass blends with the frame buffer.
	HasAlphaBlending() bool

	// OnChanged is emitted whenever the material or one of its passes changes.
	//
	// Returns:
	//   - *signal.Signal[Material]: the change signal
	OnChanged() *signal.Signal[Material]
}

var _ Material = &material{}

// NewMaterial creates a new Material. Unless WithoutDefaultPass is given, the material
// starts with one opaque single-sided pass.
//
// Parameters:
//   - name: the material identifier
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(name string, options ...MaterialBuilderOption) Material {
	m := &material{name: name}
	b := &materialBuilder{defaultPass: true}
	for _, opt := range options {
		opt(b)
	}
	if b.defaultPass && len(b.passes) == 0 {
		b.passes = append(b.passes, nil)
	}
	for _, passOptions := range b.passes {
		m.CreatePass(passOptions...)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Passes() []Pass {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Pass, len(m.passes))
	copy(out, m.passes)
	return out
}

func (m *material) Pass(i int) Pass {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.passes) {
		return nil
	}
	return m.passes[i]
}

func (m *material) PassCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.passes)
}

func (m *material) CreatePass(options ...PassBuilderOption) Pass {
	m.mu.Lock()
	p := newPass(len(m.passes), options...)
	m.passes = append(m.passes, p)
	m.conns = append(m.conns, p.OnChanged().Connect(func(Pass) {
		m.changed.Emit(m)
	}))
	m.mu.Unlock()

	m.changed.Emit(m)
	return p
}

func (m *material) RemovePass(i int) {
	m.mu.Lock()
	if i < 0 || i >= len(m.passes) {
		m.mu.Unlock()
		return
	}
	m.conns[i].Disconnect()
	m.passes = append(m.passes[:i], m.passes[i+1:]...)
	m.conns = append(m.conns[:i], m.conns[i+1:]...)
	for j := i; j < len(m.passes); j++ {
		m.passes[j].(*pass).setIndex(j)
	}
	m.mu.Unlock()

	m.changed.Emit(m)
}

func (m *material) HasAlphaBlending() bool {
	for _, p := range m.Passes() {
		if p.HasAlphaBlending() {
			return true
		}
	}
	return false
}

func (m *material) OnChanged() *signal.Signal[Material] {
	return &m.changed
}
