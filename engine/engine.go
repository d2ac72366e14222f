// Package engine drives the frame loop: fixed-rate logic ticks, scene updates and the
// opaque/transparent technique, all on the goroutine owning the GL context.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/opengl"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/technique"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// maxTicksPerFrame bounds the catch-up ticks run after a long frame.
const maxTicksPerFrame = 8

// ErrDuplicateKey is returned by AddScene when the z-index is taken.
var ErrDuplicateKey = errors.New("engine: scene key already in use")

// sceneEntry is one registered scene and the camera it is drawn through.
type sceneEntry struct {
	key    int
	scene  scene.Scene
	camera camera.Camera
	conn   signal.Connection
	dirty  atomic.Bool
}

// engine implements the Engine interface.
type engine struct {
	mu sync.Mutex

	cfg       config.Config
	window    window.Window
	system    renderer.RenderSystem
	library   shader.Library
	programs  shader.Cache
	watcher   shader.Watcher
	technique technique.Technique

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate       time.Duration
	accumulator    time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration
	headless         bool
	headlessFrames   int
	frames           int

	scenes  map[int]*sceneEntry
	pending []*sceneEntry

	quitChannel chan struct{}
	quitOnce    sync.Once
	closeOnce   sync.Once
	cancelWatch context.CancelFunc
}

// Engine is the main entry point for the engine.
// It owns the window, the render system and the technique drawing every registered scene.
type Engine interface {
	// Window returns the underlying window, nil when headless.
	Window() window.Window

	// RenderSystem returns the render system the technique draws with.
	RenderSystem() renderer.RenderSystem

	// Technique returns the technique drawing every registered scene.
	Technique() technique.Technique

	// Config returns the configuration the engine was built with.
	Config() config.Config

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics and input processing.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame, before the
	// technique updates.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key and initialises its GPU
	// resources. Scenes are drawn in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	//   - cam: the viewing camera, nil to draw without culling
	//
	// Returns:
	//   - error: ErrDuplicateKey, or the scene initialisation error
	AddScene(key int, s scene.Scene, cam camera.Camera) error

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// Frame runs one frame: fixed ticks, scene and camera updates, the render callback,
	// then the technique.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - render_pass.RenderInfo: the statistics of the frame
	Frame(dt float32) render_pass.RenderInfo

	// Frames returns the number of frames rendered so far.
	Frames() int

	// Run drives frames until the window closes, Quit is called, or the headless frame
	// budget is spent.
	Run() error

	// Quit signals the loop to stop. Safe to call multiple times.
	Quit()

	// Close releases every scene, the technique, the render system and the window.
	Close() error
}

var _ Engine = &engine{}

// NewEngine creates the engine. Without WithRenderSystem or WithHeadless it opens a
// window and an OpenGL render system on the calling goroutine, which must stay the
// render goroutine.
//
// Parameters:
//   - options: functional options for engine configuration (config, window, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the render system or the shader library cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:         config.Default(),
		scenes:      make(map[int]*sceneEntry),
		quitChannel: make(chan struct{}),
		tickRate:    -1,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.tickRate < 0 {
		e.tickRate = tickInterval(e.cfg.Engine.TickRate)
	}
	if e.renderFrameLimit == 0 {
		e.renderFrameLimit = frameInterval(e.cfg.Engine.FrameLimit)
	}
	e.profilingEnabled = e.profilingEnabled || e.cfg.Engine.Profiling
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if err := e.createRenderSystem(); err != nil {
		return nil, err
	}
	if err := e.createTechnique(); err != nil {
		e.system.Release()
		return nil, err
	}

	width, height := e.cfg.Window.Width, e.cfg.Window.Height
	if e.window != nil {
		width, height = e.window.Width(), e.window.Height()
		e.window.SetResizeCallback(e.resize)
	}
	e.system.SetViewport(width, height)

	pending := e.pending
	e.pending = nil
	for _, p := range pending {
		if err := e.AddScene(p.key, p.scene, p.camera); err != nil {
			_ = e.Close()
			return nil, err
		}
	}

	logger.Info("engine: ready",
		"backend", e.system.Backend(),
		"gpu", e.system.GpuInformations(),
		"samples", uint32(e.system.Samples()),
		"tick", e.tickRate)
	return e, nil
}

func (e *engine) createRenderSystem() error {
	r := e.cfg.Renderer
	samples := renderer.MSAASampleCount(max(r.SampleCount(), 1))
	switch {
	case e.system != nil:
		return nil
	case e.headless:
		e.system = renderer.NewFakeRenderSystem(
			renderer.WithInstancing(r.Instancing),
			renderer.WithSamples(samples),
		)
		return nil
	}

	if e.window == nil {
		e.window = window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithWidth(e.cfg.Window.Width),
			window.WithHeight(e.cfg.Window.Height),
			window.WithSamples(r.SampleCount()),
			window.WithVSync(e.cfg.Window.VSync),
		)
	}
	e.window.MakeContextCurrent()
	system, err := opengl.NewRenderSystem(opengl.WithSamples(samples), opengl.WithInstancing(r.Instancing))
	if err != nil {
		_ = e.window.Close()
		return fmt.Errorf("failed to create render system: %w", err)
	}
	e.system = system
	return nil
}

func (e *engine) createTechnique() error {
	s := e.cfg.Shaders
	libOptions := []shader.LibraryBuilderOption{shader.WithCacheSize(s.CacheSize)}
	if s.Dir != "" {
		libOptions = append(libOptions, shader.WithDir(s.Dir))
	}
	library, err := shader.NewLibrary(libOptions...)
	if err != nil {
		return fmt.Errorf("failed to create shader library: %w", err)
	}
	e.library = library
	e.programs = shader.NewCache(library, e.system)

	var techniqueOptions []technique.TechniqueBuilderOption
	if s.Watch && s.Dir != "" {
		w, err := shader.NewWatcher(library, time.Duration(s.Debounce))
		if err != nil {
			logger.Warn("engine: shader hot reload disabled", "err", err)
		} else {
			e.watcher = w
			techniqueOptions = append(techniqueOptions, technique.WithWatcher(w))
		}
	}
	e.technique = technique.NewTechnique("main", e.system, e.programs, techniqueOptions...)
	return nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) RenderSystem() renderer.RenderSystem {
	return e.system
}

func (e *engine) Technique() technique.Technique {
	return e.technique
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	e.profilingEnabled = true
	e.mu.Unlock()
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	e.profilingEnabled = false
	e.mu.Unlock()
}

// SetTickRate sets the engine tick rate in ticks per second. Pending time in the
// accumulator carries over to the new rate.
func (e *engine) SetTickRate(fps float64) {
	e.mu.Lock()
	e.tickRate = tickInterval(fps)
	e.mu.Unlock()
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	e.tickCallback = callback
	e.mu.Unlock()
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	e.renderCallback = callback
	e.mu.Unlock()
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	e.renderFrameLimit = frameInterval(fps)
	e.mu.Unlock()
}

func (e *engine) AddScene(key int, s scene.Scene, cam camera.Camera) error {
	if s == nil {
		panic("engine: AddScene requires a non-nil Scene")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.scenes[key]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateKey, key)
	}

	r := e.cfg.Renderer
	if err := s.Initialise(e.system, e.system, r.InstanceCapacity, r.InstanceLayout()); err != nil {
		return err
	}
	entry := &sceneEntry{key: key, scene: s, camera: cam}
	entry.conn = s.OnChanged().Connect(func(scene.Scene) { entry.dirty.Store(true) })
	e.scenes[key] = entry

	// Queues draw in attachment order, so everything above key is re-attached behind it.
	var above []*sceneEntry
	for _, other := range e.sortedLocked() {
		if other.key > key {
			e.technique.RemoveScene(other.scene)
			above = append(above, other)
		}
	}
	e.technique.AddScene(s, cam)
	for _, other := range above {
		e.technique.AddScene(other.scene, other.camera)
	}

	if cam != nil && e.window != nil && e.window.Height() > 0 {
		cam.SetAspect(float32(e.window.Width()) / float32(e.window.Height()))
	}
	logger.Debug("engine: scene added", "key", key, "scene", s.Name())
	return nil
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.scenes[key]
	if !ok {
		return
	}
	delete(e.scenes, key)
	entry.conn.Disconnect()
	e.technique.RemoveScene(entry.scene)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.scenes[key]; ok {
		return entry.scene
	}
	return nil
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v.scene
	}
	return cp
}

// sortedLocked returns the entries in ascending key order. Callers hold e.mu.
func (e *engine) sortedLocked() []*sceneEntry {
	out := make([]*sceneEntry, 0, len(e.scenes))
	for _, entry := range e.scenes {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func (e *engine) Frame(dt float32) render_pass.RenderInfo {
	e.mu.Lock()
	entries := e.sortedLocked()
	tick, render := e.tickCallback, e.renderCallback
	tickRate := e.tickRate
	profiling := e.profilingEnabled
	e.mu.Unlock()

	e.accumulator += time.Duration(float64(dt) * float64(time.Second))
	for steps := 0; tickRate > 0 && e.accumulator >= tickRate; steps++ {
		if steps == maxTicksPerFrame {
			e.accumulator = 0
			break
		}
		if tick != nil {
			tick(float32(tickRate.Seconds()))
		}
		e.accumulator -= tickRate
	}

	r := e.cfg.Renderer
	for _, entry := range entries {
		if entry.dirty.Swap(false) {
			if err := entry.scene.Initialise(e.system, e.system, r.InstanceCapacity, r.InstanceLayout()); err != nil {
				logger.Error("engine: scene initialisation failed", "scene", entry.scene.Name(), "err", err)
			}
		}
		entry.scene.Update(dt)
		if entry.camera != nil {
			entry.camera.Update()
		}
	}
	if render != nil {
		render(dt)
	}

	background := mgl32.Vec4{0, 0, 0, 1}
	if len(entries) > 0 {
		background = entries[0].scene.BackgroundColour()
	}
	e.technique.Update()
	e.system.BeginFrame(background)
	info := e.technique.Render()
	e.system.EndFrame()
	e.frames++

	if profiling {
		e.profiler.Tick(info)
	}
	return info
}

func (e *engine) Frames() int {
	return e.frames
}

func (e *engine) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancelWatch = cancel
	e.mu.Unlock()
	if e.watcher != nil {
		if err := e.watcher.Start(ctx); err != nil {
			logger.Warn("engine: shader watcher failed to start", "err", err)
		}
	}

	if e.window == nil {
		return e.runHeadless()
	}

	last := time.Now()
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.window.RequestClose()
			return
		default:
		}
		start := time.Now()
		e.Frame(float32(start.Sub(last).Seconds()))
		last = start
		e.limit(start)
	})
	e.window.ProcessMessages()
	return nil
}

// runHeadless renders at a fixed step until the frame budget is spent or Quit is called.
// A zero budget runs until Quit.
func (e *engine) runHeadless() error {
	dt := float32(1.0 / 60)
	if e.tickRate > 0 {
		dt = float32(e.tickRate.Seconds())
	}
	for i := 0; e.headlessFrames <= 0 || i < e.headlessFrames; i++ {
		select {
		case <-e.quitChannel:
			return nil
		default:
		}
		start := time.Now()
		e.Frame(dt)
		e.limit(start)
	}
	return nil
}

// limit sleeps out the rest of the frame when a frame cap is set.
func (e *engine) limit(start time.Time) {
	e.mu.Lock()
	frame := e.renderFrameLimit
	e.mu.Unlock()
	if frame <= 0 {
		return
	}
	if remaining := frame - time.Since(start); remaining > 0 {
		time.Sleep(remaining)
	}
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Close() error {
	var errs []error
	e.closeOnce.Do(func() {
		e.Quit()
		e.mu.Lock()
		if e.cancelWatch != nil {
			e.cancelWatch()
		}
		entries := e.sortedLocked()
		e.scenes = make(map[int]*sceneEntry)
		e.mu.Unlock()

		e.technique.Cleanup()
		for _, entry := range entries {
			entry.conn.Disconnect()
			entry.scene.Release()
		}
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		e.programs.Reset()
		e.system.Release()
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// resize follows framebuffer size changes.
func (e *engine) resize(width, height int) {
	e.system.SetViewport(width, height)
	if height <= 0 {
		return
	}
	e.mu.Lock()
	entries := e.sortedLocked()
	e.mu.Unlock()
	for _, entry := range entries {
		if entry.camera != nil {
			entry.camera.SetAspect(float32(width) / float32(height))
		}
	}
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
