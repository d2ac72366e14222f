package scene

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateName is returned when an object name is already taken in a cache.
	ErrDuplicateName = errors.New("scene: duplicate object name")

	// ErrNotFound is returned when a named object does not exist.
	ErrNotFound = errors.New("scene: object not found")
)

// Named is implemented by every object stored in an ObjectCache.
type Named interface {
	Name() string
}

// ObjectCache is a name-indexed, insertion-ordered collection of scene objects.
// All methods are safe for concurrent use. Change notifications run after the
// cache lock is released.
type ObjectCache[T Named] struct {
	mu        sync.Mutex
	kind      string
	objects   map[string]T
	order     []string
	onChanged func()
}

func newObjectCache[T Named](kind string, onChanged func()) *ObjectCache[T] {
	return &ObjectCache[T]{
		kind:      kind,
		objects:   make(map[string]T),
		onChanged: onChanged,
	}
}

// Add inserts obj under its name and notifies the owning scene.
//
// Parameters:
//   - obj: the object to insert
//
// Returns:
//   - error: ErrDuplicateName if the name is taken
func (c *ObjectCache[T]) Add(obj T) error {
	name := obj.Name()
	c.mu.Lock()
	if _, ok := c.objects[name]; ok {
		c.mu.Unlock()
		return fmt.Errorf("failed to add %s %q: %w", c.kind, name, ErrDuplicateName)
	}
	c.objects[name] = obj
	c.order = append(c.order, name)
	c.mu.Unlock()

	c.notify()
	return nil
}

// Remove deletes the named object and notifies the owning scene.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - T: the removed object
//   - error: ErrNotFound if no object has that name
func (c *ObjectCache[T]) Remove(name string) (T, error) {
	c.mu.Lock()
	obj, ok := c.objects[name]
	if !ok {
		c.mu.Unlock()
		var zero T
		return zero, fmt.Errorf("failed to remove %s %q: %w", c.kind, name, ErrNotFound)
	}
	delete(c.objects, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notify()
	return obj, nil
}

// Find returns the named object.
func (c *ObjectCache[T]) Find(name string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[name]
	return obj, ok
}

// Has reports whether the named object exists.
func (c *ObjectCache[T]) Has(name string) bool {
	_, ok := c.Find(name)
	return ok
}

// Len returns the number of objects.
func (c *ObjectCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Range calls fn for every object in insertion order while holding the cache lock,
// so the cache cannot change during the traversal. fn must not modify this cache.
// Returning false from fn stops the traversal.
//
// Parameters:
//   - fn: visitor receiving the object name and the object
func (c *ObjectCache[T]) Range(fn func(name string, obj T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range c.order {
		if !fn(name, c.objects[name]) {
			return
		}
	}
}

// Values returns a snapshot of the objects in insertion order.
func (c *ObjectCache[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.objects[name])
	}
	return out
}

// Clear removes every object and notifies the owning scene once.
func (c *ObjectCache[T]) Clear() []T {
	c.mu.Lock()
	out := make([]T, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.objects[name])
	}
	c.objects = make(map[string]T)
	c.order = nil
	c.mu.Unlock()

	if len(out) > 0 {
		c.notify()
	}
	return out
}

func (c *ObjectCache[T]) notify() {
	if c.onChanged != nil {
		c.onChanged()
	}
}
