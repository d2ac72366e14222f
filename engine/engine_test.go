package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeScene(t *testing.T, name string) scene.Scene {
	t.Helper()
	s := scene.NewScene(name, scene.WithBackgroundColour(mgl32.Vec4{0.1, 0.2, 0.3, 1}))
	_, err := s.CreateGeometry(name+"_cube", nil, mesh.NewCube(name+"_cube", 1), scene.WithMaterial(material.NewMaterial(name+"_solid")))
	require.NoError(t, err)
	return s
}

func newHeadless(t *testing.T, options ...EngineBuilderOption) (*engine, *renderer.FakeRenderSystem) {
	t.Helper()
	system := renderer.NewFakeRenderSystem()
	e, err := NewEngine(append([]EngineBuilderOption{WithRenderSystem(system)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e.(*engine), system
}

func TestFrameRendersRegisteredScenes(t *testing.T) {
	e, system := newHeadless(t)
	cam := camera.NewCamera("cam", camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}))
	require.NoError(t, e.AddScene(0, cubeScene(t, "main"), cam))

	info := e.Frame(1.0 / 60)
	assert.Equal(t, 1, info.VisibleObjects)
	assert.Equal(t, 1, info.DrawCalls)
	assert.Equal(t, 12, info.VisibleFaces)
	assert.Equal(t, 1, system.Frames())
	assert.Equal(t, 1, e.Frames())

	w, h := system.Viewport()
	assert.Equal(t, config.Default().Window.Width, w)
	assert.Equal(t, config.Default().Window.Height, h)
}

func TestFixedTicksAccumulate(t *testing.T) {
	e, _ := newHeadless(t, WithTickRate(10))
	var ticks []float32
	e.SetTickCallback(func(dt float32) { ticks = append(ticks, dt) })

	e.Frame(0.25)
	assert.Len(t, ticks, 2)
	assert.InDelta(t, 0.1, ticks[0], 1e-6)

	e.Frame(0.06)
	assert.Len(t, ticks, 3, "the remainder of the first frame carries over")

	ticks = nil
	e.Frame(10)
	assert.Len(t, ticks, maxTicksPerFrame)
	assert.Equal(t, time.Duration(0), e.accumulator, "the backlog is dropped after a stall")
}

func TestRenderCallbackRunsEachFrame(t *testing.T) {
	e, _ := newHeadless(t)
	frames := 0
	e.SetRenderCallback(func(float32) { frames++ })
	e.Frame(0.01)
	e.Frame(0.01)
	assert.Equal(t, 2, frames)
}

func TestScenesDrawInKeyOrder(t *testing.T) {
	e, _ := newHeadless(t)
	back := cubeScene(t, "back")
	front := cubeScene(t, "front")
	overlay := cubeScene(t, "overlay")

	require.NoError(t, e.AddScene(5, overlay, nil))
	require.NoError(t, e.AddScene(1, back, nil))
	require.NoError(t, e.AddScene(3, front, nil))
	assert.ErrorIs(t, e.AddScene(3, cubeScene(t, "dup"), nil), ErrDuplicateKey)

	queues := e.Technique().Opaque().Queues()
	require.Len(t, queues, 3)
	assert.Same(t, back, queues[0].Scene())
	assert.Same(t, front, queues[1].Scene())
	assert.Same(t, overlay, queues[2].Scene())

	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
	assert.Len(t, e.Scenes(), 2)
	assert.Len(t, e.Technique().Opaque().Queues(), 2)
	assert.Equal(t, 2, e.Frame(0.01).VisibleObjects)
}

func TestScenesAddedAfterRegistrationAreInitialised(t *testing.T) {
	e, system := newHeadless(t)
	s := cubeScene(t, "late")
	require.NoError(t, e.AddScene(0, s, nil))
	e.Frame(0.01)

	_, err := s.CreateGeometry("extra", nil, mesh.NewCube("extra", 1), scene.WithMaterial(material.NewMaterial("extra")))
	require.NoError(t, err)
	system.ResetRecords()
	info := e.Frame(0.01)
	assert.Equal(t, 2, info.VisibleObjects)
	assert.Len(t, system.Draws(), 2)
}

func TestRunHeadlessStopsAfterBudget(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TickRate = 30
	e, err := NewEngine(WithConfig(cfg), WithHeadless(5), WithScene(0, cubeScene(t, "run"), nil))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Run())
	assert.Equal(t, 5, e.Frames())
	assert.Nil(t, e.Window())
	assert.Equal(t, renderer.BackendHeadless, e.RenderSystem().Backend())
	assert.Len(t, e.Scenes(), 1)
}

func TestQuitStopsHeadlessRun(t *testing.T) {
	e, err := NewEngine(WithHeadless(0))
	require.NoError(t, err)
	defer e.Close()

	e.SetRenderCallback(func(float32) {
		if e.Frames() >= 2 {
			e.Quit()
		}
	})
	require.NoError(t, e.Run())
	assert.Equal(t, 3, e.Frames(), "the frame that calls Quit still completes")
	e.Quit()
}

func TestResizeUpdatesViewportAndCameras(t *testing.T) {
	e, system := newHeadless(t)
	cam := camera.NewCamera("cam")
	require.NoError(t, e.AddScene(0, cubeScene(t, "r"), cam))

	e.resize(800, 400)
	w, h := system.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
	assert.InDelta(t, 2, cam.Viewport().Aspect, 1e-6)
}

func TestProfilerReceivesFrames(t *testing.T) {
	e, _ := newHeadless(t, WithProfiling(true))
	require.NoError(t, e.AddScene(0, cubeScene(t, "p"), nil))
	e.Frame(0.01)
	e.DisableProfiler()
	e.Frame(0.01)
	assert.NotNil(t, e.Profiler())
}
