package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// node is the implementation of the Node interface.
type node struct {
	mu sync.Mutex

	name   string
	root   bool
	parent Node

	position    mgl32.Vec3
	orientation mgl32.Quat
	scale       mgl32.Vec3
	visible     bool

	owner *scene
}

// Node is a transform in the scene hierarchy. Objects attached to a node inherit its
// derived transform and visibility.
type Node interface {
	// Name returns the node identifier.
	Name() string

	// Parent returns the parent node, nil for the root or a detached node.
	Parent() Node

	// AttachTo reparents the node. Attaching to nil detaches it from the hierarchy,
	// which makes it and its descendants non-displayable.
	AttachTo(parent Node)

	// Position returns the local translation.
	Position() mgl32.Vec3

	// SetPosition sets the local translation.
	SetPosition(p mgl32.Vec3)

	// Translate offsets the local translation.
	Translate(d mgl32.Vec3)

	// Orientation returns the local rotation.
	Orientation() mgl32.Quat

	// SetOrientation sets the local rotation.
	SetOrientation(q mgl32.Quat)

	// Rotate applies q after the current local rotation.
	Rotate(q mgl32.Quat)

	// Scale returns the local scale.
	Scale() mgl32.Vec3

	// SetScale sets the local scale.
	SetScale(s mgl32.Vec3)

	// LocalTransform returns translation * rotation * scale.
	LocalTransform() mgl32.Mat4

	// DerivedTransform returns the world transform: the parent's derived transform
	// multiplied by the local transform.
	DerivedTransform() mgl32.Mat4

	// DerivedPosition returns the world-space origin of the node.
	DerivedPosition() mgl32.Vec3

	// IsVisible reports whether the node and all of its ancestors are visible.
	IsVisible() bool

	// SetVisible toggles the node's own visibility.
	SetVisible(visible bool)

	// IsDisplayable reports whether the node is connected to the scene root.
	IsDisplayable() bool
}

var _ Node = &node{}

func newNode(name string, owner *scene, parent Node) *node {
	return &node{
		name:        name,
		parent:      parent,
		orientation: mgl32.QuatIdent(),
		scale:       mgl32.Vec3{1, 1, 1},
		visible:     true,
		owner:       owner,
	}
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Parent() Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

func (n *node) AttachTo(parent Node) {
	if n.root {
		return
	}
	for p := parent; p != nil; p = p.Parent() {
		if p == Node(n) {
			return
		}
	}
	n.mu.Lock()
	n.parent = parent
	n.mu.Unlock()
	n.changed()
}

func (n *node) Position() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *node) SetPosition(p mgl32.Vec3) {
	n.mu.Lock()
	n.position = p
	n.mu.Unlock()
	n.moved()
}

func (n *node) Translate(d mgl32.Vec3) {
	n.mu.Lock()
	n.position = n.position.Add(d)
	n.mu.Unlock()
	n.moved()
}

func (n *node) Orientation() mgl32.Quat {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.orientation
}

func (n *node) SetOrientation(q mgl32.Quat) {
	n.mu.Lock()
	n.orientation = q.Normalize()
	n.mu.Unlock()
	n.moved()
}

func (n *node) Rotate(q mgl32.Quat) {
	n.mu.Lock()
	n.orientation = q.Mul(n.orientation).Normalize()
	n.mu.Unlock()
	n.moved()
}

func (n *node) Scale() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scale
}

func (n *node) SetScale(s mgl32.Vec3) {
	n.mu.Lock()
	n.scale = s
	n.mu.Unlock()
	n.moved()
}

func (n *node) LocalTransform() mgl32.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.localLocked()
}

func (n *node) localLocked() mgl32.Mat4 {
	return mgl32.Translate3D(n.position.Elem()).
		Mul4(n.orientation.Mat4()).
		Mul4(mgl32.Scale3D(n.scale.Elem()))
}

func (n *node) DerivedTransform() mgl32.Mat4 {
	n.mu.Lock()
	local := n.localLocked()
	parent := n.parent
	n.mu.Unlock()

	if parent == nil {
		return local
	}
	return parent.DerivedTransform().Mul4(local)
}

func (n *node) DerivedPosition() mgl32.Vec3 {
	return n.DerivedTransform().Col(3).Vec3()
}

func (n *node) IsVisible() bool {
	n.mu.Lock()
	visible := n.visible
	parent := n.parent
	n.mu.Unlock()

	if !visible {
		return false
	}
	return parent == nil || parent.IsVisible()
}

func (n *node) SetVisible(visible bool) {
	n.mu.Lock()
	if n.visible == visible {
		n.mu.Unlock()
		return
	}
	n.visible = visible
	n.mu.Unlock()
	n.changed()
}

func (n *node) IsDisplayable() bool {
	if n.root {
		return true
	}
	parent := n.Parent()
	return parent != nil && parent.IsDisplayable()
}

func (n *node) changed() {
	if n.owner != nil {
		n.owner.notifyChanged()
	}
}

func (n *node) moved() {
	if n.owner != nil {
		n.owner.notifyMoved()
	}
}
