package pipeline

import (
	"fmt"
	"sync"
)

// Cache owns the pipelines of one render pass. Pipelines are keyed by the culled side
// and their Flags, so each (side, Flags) pair maps to exactly one Pipeline until Clear.
type Cache interface {
	// GetOrCreate returns the pipeline for side and f, calling create on a miss.
	// A create error is returned wrapped and nothing is cached, so a later call retries.
	//
	// Parameters:
	//   - side: CullFront or CullBack
	//   - f: the pipeline state key
	//   - create: builds the pipeline on a miss
	//
	// Returns:
	//   - Pipeline: the cached or newly created pipeline
	//   - error: the wrapped create error, if any
	GetOrCreate(side CullMode, f Flags, create func() (Pipeline, error)) (Pipeline, error)

	// Get looks a pipeline up without creating it.
	//
	// Parameters:
	//   - side: CullFront or CullBack
	//   - f: the pipeline state key
	//
	// Returns:
	//   - Pipeline: the cached pipeline or nil
	//   - bool: true if present
	Get(side CullMode, f Flags) (Pipeline, bool)

	// Len returns the number of cached pipelines for a side.
	Len(side CullMode) int

	// Range calls fn for every cached pipeline until fn returns false.
	// The cache lock is held for the traversal; fn must not call back into the cache.
	Range(fn func(side CullMode, f Flags, p Pipeline) bool)

	// Clear releases and forgets every cached pipeline.
	Clear()
}

type cache struct {
	mu    sync.Mutex
	front map[Flags]Pipeline
	back  map[Flags]Pipeline
}

var _ Cache = &cache{}

// NewCache creates an empty pipeline cache.
func NewCache() Cache {
	return &cache{
		front: make(map[Flags]Pipeline),
		back:  make(map[Flags]Pipeline),
	}
}

// side returns the map for a cull mode. CullNone shares the back map.
// Caller must hold the mutex.
func (c *cache) side(mode CullMode) map[Flags]Pipeline {
	if mode == CullFront {
		return c.front
	}
	return c.back
}

func (c *cache) GetOrCreate(side CullMode, f Flags, create func() (Pipeline, error)) (Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.side(side)
	if p, ok := m[f]; ok {
		return p, nil
	}
	p, err := create()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline for %s: %w", side, f, err)
	}
	if p == nil {
		return nil, fmt.Errorf("failed to create %s pipeline for %s: nil pipeline", side, f)
	}
	m[f] = p
	return p, nil
}

func (c *cache) Get(side CullMode, f Flags) (Pipeline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.side(side)[f]
	return p, ok
}

func (c *cache) Len(side CullMode) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.side(side))
}

func (c *cache) Range(fn func(side CullMode, f Flags, p Pipeline) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for f, p := range c.front {
		if !fn(CullFront, f, p) {
			return
		}
	}
	for f, p := range c.back {
		if !fn(CullBack, f, p) {
			return
		}
	}
}

func (c *cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.front {
		p.Release()
	}
	for _, p := range c.back {
		p.Release()
	}
	clear(c.front)
	clear(c.back)
}
