// Package loader imports mesh assets and populates scenes from TOML scene descriptions.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// MeshAsset is an imported mesh with one material per submesh.
type MeshAsset struct {
	Mesh      mesh.Mesh
	Materials []material.Material
}

// Apply returns geometry options binding each submesh to its imported material.
func (a *MeshAsset) Apply() []scene.GeometryBuilderOption {
	options := make([]scene.GeometryBuilderOption, 0, len(a.Materials))
	for i, m := range a.Materials {
		options = append(options, scene.WithSubmeshMaterial(i, m))
	}
	return options
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu      sync.RWMutex
	assets  map[string]*MeshAsset
	backend []loaderBackend
	workers int
	pool    worker.DynamicWorkerPool
}

// Loader defines the public-facing interface for importing and caching mesh assets.
// It abstracts the file format (glTF, GLB) behind a backend chosen by file extension.
type Loader interface {
	// LoadMesh imports a mesh file and caches the result by path.
	// If the asset is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the asset
	//
	// Returns:
	//   - *MeshAsset: the loaded and cached asset
	//   - error: error if no backend accepts the extension or the import fails
	LoadMesh(path string) (*MeshAsset, error)

	// LoadMeshReader imports an asset from a stream and caches it by name. The format is
	// taken from the extension of name.
	//
	// Parameters:
	//   - name: the cache key, e.g. "fox.glb"
	//   - r: the reader providing the encoded asset
	//
	// Returns:
	//   - *MeshAsset: the loaded asset
	//   - error: error if loading fails
	LoadMeshReader(name string, r io.Reader) (*MeshAsset, error)

	// LoadScene reads a TOML scene description from path and populates s.
	// Relative asset paths resolve against the file's directory.
	LoadScene(path string, s scene.Scene) error

	// ParseScene decodes a TOML scene description and populates s.
	// Meshes are imported and objects created on the worker pool. Failures of individual
	// entries are joined into the returned error; entries that succeeded stay in s.
	//
	// Parameters:
	//   - data: the TOML document
	//   - baseDir: directory for relative asset paths
	//   - s: the scene to populate
	//
	// Returns:
	//   - error: decoding, validation or creation errors
	ParseScene(data []byte, baseDir string, s scene.Scene) error

	// Get retrieves a cached asset by key. Returns nil if not found.
	Get(name string) *MeshAsset

	// Assets returns a copy of the asset cache.
	Assets() map[string]*MeshAsset
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF backend registered.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		assets:  make(map[string]*MeshAsset),
		backend: []loaderBackend{newGLTFLoaderBackend()},
		workers: 4,
	}
	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) LoadMesh(path string) (*MeshAsset, error) {
	if asset := l.Get(path); asset != nil {
		return asset, nil
	}
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	asset, err := backend.Load(path)
	if err != nil {
		return nil, err
	}
	return l.store(path, asset), nil
}

func (l *loader) LoadMeshReader(name string, r io.Reader) (*MeshAsset, error) {
	if asset := l.Get(name); asset != nil {
		return asset, nil
	}
	backend, err := l.resolveBackend(name)
	if err != nil {
		return nil, err
	}
	asset, err := backend.LoadReader(assetName(name), r, ".")
	if err != nil {
		return nil, err
	}
	return l.store(name, asset), nil
}

// store caches asset under key unless another goroutine won the race, in which case the
// cached asset is returned.
func (l *loader) store(key string, asset *MeshAsset) *MeshAsset {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.assets[key]; ok {
		return existing
	}
	l.assets[key] = asset
	logger.Debug("loader: imported asset", "key", key, "submeshes", asset.Mesh.SubmeshCount())
	return asset
}

func (l *loader) Get(name string) *MeshAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assets[name]
}

func (l *loader) Assets() map[string]*MeshAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*MeshAsset, len(l.assets))
	for k, v := range l.assets {
		out[k] = v
	}
	return out
}

// resolveBackend picks the backend for a file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, b := range l.backend {
		if slices.Contains(b.Extensions(), ext) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unsupported file extension %q for %s", ext, path)
}

func (l *loader) LoadScene(path string, s scene.Scene) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	return l.ParseScene(data, filepath.Dir(path), s)
}

func (l *loader) ParseScene(data []byte, baseDir string, s scene.Scene) error {
	if s == nil {
		panic("loader: ParseScene requires a non-nil Scene")
	}
	var desc SceneDescription
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("failed to decode scene: %s", strict.String())
		}
		return fmt.Errorf("failed to decode scene: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	materials := make(map[string]material.Material, len(desc.Materials))
	for _, m := range desc.Materials {
		materials[m.Name] = m.build(baseDir)
	}

	meshes, err := l.loadMeshes(desc.Meshes, baseDir)
	if err != nil {
		return err
	}

	var group scene.AnimatedObjectGroup
	if slices.ContainsFunc(desc.Geometries, func(g GeometryDescription) bool { return g.Animated }) {
		if group, err = s.CreateAnimatedObjectGroup(s.Name() + "/animated"); err != nil {
			return fmt.Errorf("failed to create animated group: %w", err)
		}
	}

	var tasks []func() error
	for _, g := range desc.Geometries {
		tasks = append(tasks, func() error { return createGeometries(s, g, meshes[g.Mesh], materials, group) })
	}
	for _, b := range desc.Billboards {
		tasks = append(tasks, func() error { return createBillboards(s, b, materials[b.Material]) })
	}
	for _, p := range desc.Particles {
		tasks = append(tasks, func() error { return createParticles(s, p, materials[p.Material]) })
	}
	if err := l.run(tasks); err != nil {
		return err
	}
	logger.Info("loader: scene populated", "scene", s.Name(),
		"geometries", s.Geometries().Len(),
		"billboards", s.BillboardLists().Len(),
		"particles", s.ParticleSystems().Len())
	return nil
}

// loadMeshes resolves every mesh description. File imports run on the pool.
func (l *loader) loadMeshes(descs []MeshDescription, baseDir string) (map[string]*MeshAsset, error) {
	var mu sync.Mutex
	out := make(map[string]*MeshAsset, len(descs))
	put := func(name string, a *MeshAsset) {
		mu.Lock()
		out[name] = a
		mu.Unlock()
	}

	var tasks []func() error
	for _, d := range descs {
		switch d.Kind {
		case meshKindCube:
			put(d.Name, &MeshAsset{Mesh: mesh.NewCube(d.Name, max(d.Size, 0.01))})
		case meshKindQuad:
			put(d.Name, &MeshAsset{Mesh: mesh.NewQuad(d.Name, max(d.Width, 0.01), max(d.Height, 0.01))})
		case meshKindFile:
			path := d.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, filepath.FromSlash(path))
			}
			tasks = append(tasks, func() error {
				asset, err := l.LoadMesh(path)
				if err != nil {
					return fmt.Errorf("mesh %q: %w", d.Name, err)
				}
				put(d.Name, asset)
				return nil
			})
		}
	}
	return out, l.run(tasks)
}

// run executes tasks on the worker pool and joins their errors.
func (l *loader) run(tasks []func() error) error {
	if len(tasks) == 0 {
		return nil
	}
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = task()
				return nil, errs[i]
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

func createGeometries(s scene.Scene, d GeometryDescription, asset *MeshAsset, materials map[string]material.Material, group scene.AnimatedObjectGroup) error {
	if asset == nil {
		return fmt.Errorf("geometry %q: mesh %q was not loaded", d.Name, d.Mesh)
	}
	var options []scene.GeometryBuilderOption
	if m, ok := materials[d.Material]; ok {
		options = append(options, scene.WithMaterial(m))
	} else if len(asset.Materials) > 0 {
		options = asset.Apply()
	} else {
		return fmt.Errorf("geometry %q: mesh %q carries no materials and none is named", d.Name, d.Mesh)
	}
	if d.Shadows {
		options = append(options, scene.WithShadowCaster(true), scene.WithShadowReceiver(true))
	}

	var errs []error
	positions := d.gridPositions()
	for i, pos := range positions {
		name := d.Name
		if len(positions) > 1 {
			name = fmt.Sprintf("%s_%d", d.Name, i)
		}
		node, err := s.CreateNode(name, s.RootNode())
		if err != nil {
			errs = append(errs, fmt.Errorf("geometry %q: %w", name, err))
			continue
		}
		node.SetPosition(pos)
		if d.Scale != nil {
			node.SetScale(mgl32.Vec3(*d.Scale))
		}
		g, err := s.CreateGeometry(name, node, asset.Mesh, options...)
		if err != nil {
			errs = append(errs, fmt.Errorf("geometry %q: %w", name, err))
			continue
		}
		if !d.Animated {
			continue
		}
		sk := asset.Mesh.Skeleton()
		if sk == nil {
			errs = append(errs, fmt.Errorf("geometry %q: mesh %q has no skeleton to animate", name, d.Mesh))
			continue
		}
		obj, err := group.AddSkeleton(g, sk, asset.Mesh.AnimationClips()...)
		if err != nil {
			errs = append(errs, fmt.Errorf("geometry %q: %w", name, err))
			continue
		}
		if d.Clip != "" && !obj.Play(d.Clip) {
			errs = append(errs, fmt.Errorf("geometry %q: unknown clip %q", name, d.Clip))
		}
	}
	return errors.Join(errs...)
}

func createBillboards(s scene.Scene, d BillboardDescription, m material.Material) error {
	positions := make([]mgl32.Vec3, len(d.Positions))
	for i, p := range d.Positions {
		positions[i] = mgl32.Vec3(p)
	}
	options := []scene.BillboardBuilderOption{
		scene.WithBillboardMaterial(m),
		scene.WithBillboardPositions(positions...),
	}
	if d.Size != ([2]float32{}) {
		options = append(options, scene.WithBillboardSize(mgl32.Vec2(d.Size)))
	}
	if _, err := s.CreateBillboardList(d.Name, s.RootNode(), options...); err != nil {
		return fmt.Errorf("billboard list %q: %w", d.Name, err)
	}
	return nil
}

func createParticles(s scene.Scene, d ParticleDescription, m material.Material) error {
	node, err := s.CreateNode(d.Name, s.RootNode())
	if err != nil {
		return fmt.Errorf("particle system %q: %w", d.Name, err)
	}
	node.SetPosition(mgl32.Vec3(d.Position))

	options := []scene.ParticleSystemBuilderOption{
		scene.WithParticleMaterial(m),
		scene.WithGravity(mgl32.Vec3(d.Gravity)),
	}
	if d.Capacity > 0 {
		options = append(options, scene.WithParticleCapacity(d.Capacity))
	}
	if d.Size != ([2]float32{}) {
		options = append(options, scene.WithParticleSize(mgl32.Vec2(d.Size)))
	}
	if d.Rate > 0 {
		options = append(options, scene.WithEmission(d.Rate, common.Coalesce(d.Lifetime, 2), d.Speed))
	}
	if _, err := s.CreateParticleSystem(d.Name, node, options...); err != nil {
		return fmt.Errorf("particle system %q: %w", d.Name, err)
	}
	return nil
}
