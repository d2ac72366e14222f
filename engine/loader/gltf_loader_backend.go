package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// gltfLoaderBackend imports .gltf and .glb files.
type gltfLoaderBackend struct{}

var _ loaderBackend = &gltfLoaderBackend{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackend{}
}

func (b *gltfLoaderBackend) Load(path string) (*MeshAsset, error) {
	p, err := parseGLTFFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p.importAsset(assetName(path))
}

func (b *gltfLoaderBackend) LoadReader(name string, r io.Reader, baseDir string) (*MeshAsset, error) {
	p, err := parseGLTFReader(r, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return p.importAsset(name)
}

func (b *gltfLoaderBackend) Extensions() []string {
	return []string{".gltf", ".glb"}
}

// assetName strips the directory and extension from path.
func assetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
