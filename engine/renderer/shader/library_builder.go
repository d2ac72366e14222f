package shader

import (
	"io/fs"
	"os"
)

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithDir reads the templates from a directory on disk. The directory is re-read on Reload,
// which makes it suitable for the file watcher.
//
// Parameters:
//   - dir: directory holding scene.vert and scene.frag
//
// Returns:
//   - LibraryBuilderOption: a function that sets the template directory
func WithDir(dir string) LibraryBuilderOption {
	return func(l *library) {
		if dir == "" {
			return
		}
		l.dir = dir
		l.fsys = os.DirFS(dir)
	}
}

// WithFS reads the templates from an arbitrary file system.
//
// Parameters:
//   - fsys: file system holding the templates
//
// Returns:
//   - LibraryBuilderOption: a function that sets the template file system
func WithFS(fsys fs.FS) LibraryBuilderOption {
	return func(l *library) {
		l.fsys = fsys
	}
}

// WithCacheSize bounds the number of generated sources kept in memory.
//
// Parameters:
//   - size: maximum cached sources; values <= 0 keep the default
//
// Returns:
//   - LibraryBuilderOption: a function that sets the cache size
func WithCacheSize(size int) LibraryBuilderOption {
	return func(l *library) {
		if size > 0 {
			l.cacheSize = size
		}
	}
}

// WithGLSLVersion overrides the #version line, e.g. "330 core".
func WithGLSLVersion(version string) LibraryBuilderOption {
	return func(l *library) {
		l.version = version
	}
}

// WithTemplateNames overrides the template file names.
func WithTemplateNames(vertex, fragment string) LibraryBuilderOption {
	return func(l *library) {
		l.vertexName = vertex
		l.fragmentName = fragment
	}
}
