package shader

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
)

// Compiler turns program source into a linked Program. The OpenGL backend implements
// it; tests supply fakes.
type Compiler interface {
	CompileProgram(name string, src ProgramSource) (Program, error)
}

// cache is the implementation of the Cache interface.
type cache struct {
	mu       sync.Mutex
	library  Library
	compiler Compiler
	programs map[ProgramKey]Program
}

// Cache compiles each ProgramKey at most once and shares the result between render
// passes. Failed compilations are not cached, so the next request retries.
type Cache interface {
	// Get returns the compiled program for key, compiling it on first use.
	//
	// Parameters:
	//   - key: the program variant
	//
	// Returns:
	//   - Program: the compiled program
	//   - error: error if the source cannot be generated or compiled
	Get(key ProgramKey) (Program, error)

	// Len returns the number of compiled programs held.
	Len() int

	// Reset releases every compiled program. Pipelines holding them must be dropped too.
	Reset()

	// Library returns the source library the cache compiles from.
	Library() Library
}

var _ Cache = &cache{}

// NewCache creates a program cache.
//
// Parameters:
//   - library: source of the program text
//   - compiler: backend that compiles and links programs
//
// Returns:
//   - Cache: the empty cache
func NewCache(library Library, compiler Compiler) Cache {
	if library == nil {
		panic("shader: NewCache requires a non-nil Library")
	}
	if compiler == nil {
		panic("shader: NewCache requires a non-nil Compiler")
	}
	return &cache{
		library:  library,
		compiler: compiler,
		programs: make(map[ProgramKey]Program),
	}
}

func (c *cache) Get(key ProgramKey) (Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.programs[key]; ok {
		return p, nil
	}

	src, err := c.library.Source(key)
	if err != nil {
		return nil, fmt.Errorf("failed to generate program %s: %w", key.Name(), err)
	}
	p, err := c.compiler.CompileProgram(key.Name(), src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program %s: %w", key.Name(), err)
	}
	c.programs[key] = p
	logger.Debug("compiled program", "name", key.Name(), "texture", key.TextureFlags, "program", key.ProgramFlags)
	return p, nil
}

func (c *cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}

func (c *cache) Reset() {
	c.mu.Lock()
	programs := c.programs
	c.programs = make(map[ProgramKey]Program)
	c.mu.Unlock()

	for _, p := range programs {
		p.Release()
	}
}

func (c *cache) Library() Library {
	return c.library
}
