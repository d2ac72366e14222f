package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoScenePopulatesEveryKind(t *testing.T) {
	d, err := buildDemoScene(3)
	require.NoError(t, err)
	s := d.scene

	assert.Equal(t, 3*3+2, s.Geometries().Len(), "grid, panel and ribbon")
	assert.Equal(t, 1, s.ParticleSystems().Len())
	assert.Equal(t, 1, s.AnimatedObjectGroups().Len())
	assert.NotNil(t, s.FindAnimatedObject("ribbon"+scene.SkeletonSuffix))

	assert.Equal(t, clipIdle, d.nextClip())
	assert.Equal(t, clipWave, d.nextClip())
}

func TestDemoSceneDrawsGridInstanced(t *testing.T) {
	d, err := buildDemoScene(3)
	require.NoError(t, err)

	system := renderer.NewFakeRenderSystem()
	eng, err := engine.NewEngine(engine.WithRenderSystem(system), engine.WithScene(0, d.scene, nil))
	require.NoError(t, err)
	defer eng.Close()

	info := eng.Frame(1.0 / 60)
	assert.Positive(t, info.DrawCalls)

	instanced := 0
	for _, draw := range system.Draws() {
		instanced = max(instanced, draw.Instances)
	}
	assert.Equal(t, 9, instanced)
}

func TestRibbonVerticesMatchSkinnedLayout(t *testing.T) {
	vertices, indices := ribbonVertices()
	assert.Len(t, vertices, 6*16)
	for _, i := range indices {
		assert.Less(t, int(i), 6)
	}

	skeleton, clips := ribbonSkeleton()
	require.Len(t, skeleton.Bones, 2)
	assert.Equal(t, 0, skeleton.Bones[1].Parent)
	require.Len(t, clips, 2)
	assert.Equal(t, clipWave, clips[0].Name)
}
