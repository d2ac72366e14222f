package loader

import (
	"io"
)

// loaderBackend defines the generic interface for importing mesh assets from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the asset stored at path. The asset is named after the file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *MeshAsset: the imported mesh and its per-submesh materials
	//   - error: error if loading fails
	Load(path string) (*MeshAsset, error)

	// LoadReader imports an asset from a stream. External resources resolve against baseDir.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader providing the encoded asset
	//   - baseDir: directory for relative buffer and image URIs
	//
	// Returns:
	//   - *MeshAsset: the imported asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, baseDir string) (*MeshAsset, error)

	// Extensions lists the lower-case file extensions the backend accepts.
	Extensions() []string
}
