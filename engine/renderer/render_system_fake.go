package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawRecord is one draw issued against a FakeRenderSystem.
type DrawRecord struct {
	IndexCount int
	Instances  int
}

// FakeRenderSystem is an in-memory RenderSystem. It records compilations, state
// changes and draws instead of issuing them, which makes it usable for tests and
// for headless runs.
type FakeRenderSystem struct {
	mu sync.Mutex

	info    GpuInformations
	samples MSAASampleCount

	compileErr func(name string) error

	compiled []string
	applied  []pipeline.Pipeline
	draws    []DrawRecord
	textures int
	frames   int
	width    int
	height   int
}

var _ RenderSystem = &FakeRenderSystem{}

// NewFakeRenderSystem creates a FakeRenderSystem reporting instancing support and no multisampling.
//
// Parameters:
//   - options: functional options to configure the fake
//
// Returns:
//   - *FakeRenderSystem: the fake
func NewFakeRenderSystem(options ...FakeRenderSystemOption) *FakeRenderSystem {
	f := &FakeRenderSystem{
		info: GpuInformations{
			Vendor:           "oxy",
			Renderer:         "headless",
			Version:          "4.1",
			ShadingLanguage:  "4.10",
			MaxTextureSize:   16384,
			MaxSamples:       16,
			MaxVertexAttribs: 16,
			Instancing:       true,
		},
		samples: MSAAOff,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *FakeRenderSystem) Backend() BackendType {
	return BackendHeadless
}

func (f *FakeRenderSystem) GpuInformations() GpuInformations {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

func (f *FakeRenderSystem) Samples() MSAASampleCount {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples
}

func (f *FakeRenderSystem) CompileProgram(name string, src shader.ProgramSource) (shader.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.compileErr != nil {
		if err := f.compileErr(name); err != nil {
			return nil, fmt.Errorf("failed to compile program %s: %w", name, err)
		}
	}
	f.compiled = append(f.compiled, name)
	return NewFakeProgram(name), nil
}

func (f *FakeRenderSystem) CreateGeometryBuffers(layout buffer.VertexLayout, vertices []float32, indices []uint32, matrices *buffer.MatrixBuffer) (buffer.GeometryBuffers, error) {
	if layout.Stride() == 0 {
		return nil, fmt.Errorf("failed to create geometry buffers: empty vertex layout")
	}
	if len(vertices)%layout.Stride() != 0 {
		return nil, fmt.Errorf("failed to create geometry buffers: %d floats is not a multiple of stride %d", len(vertices), layout.Stride())
	}
	return &fakeGeometryBuffers{system: f}, nil
}

func (f *FakeRenderSystem) CreateMatrixStore(size int) (buffer.MatrixStore, error) {
	return &FakeMatrixStore{data: make([]byte, size)}, nil
}

func (f *FakeRenderSystem) CreateTexture(img *common.TextureImage) (material.Texture, error) {
	if !img.Decoded() {
		return nil, fmt.Errorf("failed to create texture: image is not decoded")
	}
	f.mu.Lock()
	f.textures++
	f.mu.Unlock()
	return fakeTexture{}, nil
}

func (f *FakeRenderSystem) ApplyPipeline(p pipeline.Pipeline) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, p)
}

func (f *FakeRenderSystem) SetViewport(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
}

func (f *FakeRenderSystem) BeginFrame(mgl32.Vec4) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
}

func (f *FakeRenderSystem) EndFrame() {}

func (f *FakeRenderSystem) Release() {}

// SetCompileError installs a hook failing CompileProgram for the names it returns an error for.
func (f *FakeRenderSystem) SetCompileError(fn func(name string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compileErr = fn
}

// Compiled returns the names of the programs compiled so far.
func (f *FakeRenderSystem) Compiled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.compiled...)
}

// Applied returns the pipelines applied so far, in order.
func (f *FakeRenderSystem) Applied() []pipeline.Pipeline {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.Pipeline(nil), f.applied...)
}

// Draws returns the draws issued so far, in order.
func (f *FakeRenderSystem) Draws() []DrawRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DrawRecord(nil), f.draws...)
}

// Textures returns the number of textures created.
func (f *FakeRenderSystem) Textures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.textures
}

// Frames returns the number of BeginFrame calls.
func (f *FakeRenderSystem) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Viewport returns the size passed to the last SetViewport.
func (f *FakeRenderSystem) Viewport() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

// ResetRecords forgets the recorded state changes and draws; compiled programs are kept.
func (f *FakeRenderSystem) ResetRecords() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = nil
	f.draws = nil
}

func (f *FakeRenderSystem) recordDraw(indexCount, instances int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws = append(f.draws, DrawRecord{IndexCount: indexCount, Instances: instances})
}

type fakeGeometryBuffers struct {
	system *FakeRenderSystem
}

func (b *fakeGeometryBuffers) Bind()   {}
func (b *fakeGeometryBuffers) Unbind() {}
func (b *fakeGeometryBuffers) Draw(indexCount int) {
	b.system.recordDraw(indexCount, 1)
}
func (b *fakeGeometryBuffers) DrawInstanced(indexCount, instances int) {
	b.system.recordDraw(indexCount, instances)
}
func (b *fakeGeometryBuffers) Release() {}

// FakeMatrixStore keeps the last uploaded instance data in memory.
type FakeMatrixStore struct {
	mu      sync.Mutex
	data    []byte
	uploads int
}

func (s *FakeMatrixStore) Upload(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.data, data)
	s.uploads++
}

func (s *FakeMatrixStore) Release() {}

// Uploads returns the number of Upload calls.
func (s *FakeMatrixStore) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

type fakeTexture struct{}

func (fakeTexture) Bind(uint32)   {}
func (fakeTexture) Unbind(uint32) {}
func (fakeTexture) Release()      {}

// FakeProgram records the uniforms uploaded to it.
type FakeProgram struct {
	mu sync.Mutex

	name     string
	binds    int
	mats     map[string]mgl32.Mat4
	matArray map[string][]mgl32.Mat4
	vecs     map[string]mgl32.Vec4
	floats   map[string]float32
	ints     map[string]int32
}

var _ shader.Program = &FakeProgram{}

// NewFakeProgram creates an empty FakeProgram.
func NewFakeProgram(name string) *FakeProgram {
	return &FakeProgram{
		name:     name,
		mats:     make(map[string]mgl32.Mat4),
		matArray: make(map[string][]mgl32.Mat4),
		vecs:     make(map[string]mgl32.Vec4),
		floats:   make(map[string]float32),
		ints:     make(map[string]int32),
	}
}

func (p *FakeProgram) Name() string { return p.name }

func (p *FakeProgram) Bind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.binds++
}

func (p *FakeProgram) Unbind() {}

func (p *FakeProgram) SetMat4(name string, m mgl32.Mat4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mats[name] = m
}

func (p *FakeProgram) SetMat4Array(name string, m []mgl32.Mat4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matArray[name] = append([]mgl32.Mat4(nil), m...)
}

func (p *FakeProgram) SetVec2(name string, v mgl32.Vec2) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vecs[name] = mgl32.Vec4{v[0], v[1], 0, 0}
}

func (p *FakeProgram) SetVec3(name string, v mgl32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vecs[name] = v.Vec4(0)
}

func (p *FakeProgram) SetVec4(name string, v mgl32.Vec4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vecs[name] = v
}

func (p *FakeProgram) SetFloat(name string, v float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.floats[name] = v
}

func (p *FakeProgram) SetInt(name string, v int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ints[name] = v
}

func (p *FakeProgram) Release() {}

// Binds returns the number of Bind calls.
func (p *FakeProgram) Binds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binds
}

// Mat4 returns the last matrix uploaded under name.
func (p *FakeProgram) Mat4(name string) (mgl32.Mat4, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.mats[name]
	return m, ok
}

// Mat4Array returns the last matrix array uploaded under name.
func (p *FakeProgram) Mat4Array(name string) []mgl32.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.matArray[name]
}

// Vec returns the last vector uploaded under name, widened to four components.
func (p *FakeProgram) Vec(name string) (mgl32.Vec4, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.vecs[name]
	return v, ok
}

// Float returns the last float uploaded under name.
func (p *FakeProgram) Float(name string) (float32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.floats[name]
	return v, ok
}

// Int returns the last int uploaded under name.
func (p *FakeProgram) Int(name string) (int32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.ints[name]
	return v, ok
}
