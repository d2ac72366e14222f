package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

//go:embed sources/*.vert sources/*.frag
var embeddedSources embed.FS

// ErrMissingSource is returned when a template file cannot be found.
var ErrMissingSource = errors.New("shader: missing template")

// library is the implementation of the Library interface.
type library struct {
	mu sync.Mutex

	fsys         fs.FS
	dir          string
	version      string
	vertexName   string
	fragmentName string
	cacheSize    int

	vertexTemplate   string
	fragmentTemplate string
	sources          *lru.Cache[ProgramKey, ProgramSource]
	generation       uint64
}

// Library turns a ProgramKey into GLSL source by prefixing the scene templates with
// a version line and the key's #define symbols. Generated sources are kept in a
// bounded LRU cache.
type Library interface {
	// Source returns the program source for key.
	//
	// Parameters:
	//   - key: the program variant
	//
	// Returns:
	//   - ProgramSource: the generated GLSL
	//   - error: error if the templates are unavailable
	Source(key ProgramKey) (ProgramSource, error)

	// Reload re-reads the templates and drops every cached source.
	//
	// Returns:
	//   - error: error if a template cannot be read; the previous templates stay active
	Reload() error

	// Generation returns a counter incremented by every successful Reload.
	Generation() uint64

	// Dir returns the on-disk template directory, or "" when templates are embedded.
	Dir() string

	// CachedSources returns the number of sources currently cached.
	CachedSources() int
}

var _ Library = &library{}

// NewLibrary creates a Library over the embedded templates unless WithDir or WithFS
// selects another location.
//
// Parameters:
//   - options: functional options to configure the library
//
// Returns:
//   - Library: the library with templates loaded
//   - error: error if the templates cannot be read or the cache cannot be created
func NewLibrary(options ...LibraryBuilderOption) (Library, error) {
	sub, err := fs.Sub(embeddedSources, "sources")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded shader sources: %w", err)
	}
	l := &library{
		fsys:         sub,
		version:      "410 core",
		vertexName:   "scene.vert",
		fragmentName: "scene.frag",
		cacheSize:    128,
	}
	for _, opt := range options {
		opt(l)
	}

	l.sources, err = lru.New[ProgramKey, ProgramSource](l.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader source cache: %w", err)
	}
	if err := l.loadTemplates(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *library) loadTemplates() error {
	vert, err := fs.ReadFile(l.fsys, l.vertexName)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w: %w", l.vertexName, ErrMissingSource, err)
	}
	frag, err := fs.ReadFile(l.fsys, l.fragmentName)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w: %w", l.fragmentName, ErrMissingSource, err)
	}
	l.vertexTemplate = string(vert)
	l.fragmentTemplate = string(frag)
	return nil
}

func (l *library) Source(key ProgramKey) (ProgramSource, error) {
	if src, ok := l.sources.Get(key); ok {
		return src, nil
	}

	// Generate and insert under mu so a concurrent Reload cannot purge between them
	// and leave a source built from the old templates in the cache.
	l.mu.Lock()
	defer l.mu.Unlock()
	if src, ok := l.sources.Get(key); ok {
		return src, nil
	}
	h := header(l.version, key.Defines())
	src := ProgramSource{
		Vertex:   h + l.vertexTemplate,
		Fragment: h + l.fragmentTemplate,
	}
	l.sources.Add(key, src)
	return src, nil
}

func (l *library) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dir != "" {
		l.fsys = os.DirFS(l.dir)
	}
	if err := l.loadTemplates(); err != nil {
		return err
	}
	l.sources.Purge()
	l.generation++
	return nil
}

func (l *library) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

func (l *library) Dir() string {
	return l.dir
}

func (l *library) CachedSources() int {
	return l.sources.Len()
}
