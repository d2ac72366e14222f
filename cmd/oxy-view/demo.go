package main

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	cubeSpacing = 2.5
	// clip names of the skinned ribbon
	clipWave = "wave"
	clipIdle = "idle"
)

// demoScene is the built-in scene and the handles the input bindings drive.
type demoScene struct {
	scene   scene.Scene
	ribbon  scene.AnimatedSkeleton
	clips   []string
	clipIdx int
	extent  float32
	panel   scene.Node
}

// buildDemoScene builds a side x side grid of cubes sharing one mesh and material so they
// draw instanced, a transparent two-sided panel, a skinned ribbon and a particle fountain.
func buildDemoScene(side int) (*demoScene, error) {
	side = max(side, 1)
	s := scene.NewScene("demo",
		scene.WithFlags(scene.FlagFogExponential),
		scene.WithBackgroundColour(mgl32.Vec4{0.08, 0.09, 0.12, 1}),
		scene.WithFog(mgl32.Vec3{0.08, 0.09, 0.12}, 0.015),
		scene.WithLightDirection(mgl32.Vec3{-0.4, -1, -0.3}),
	)
	d := &demoScene{
		scene:  s,
		clips:  []string{clipWave, clipIdle},
		extent: float32(side) * cubeSpacing,
	}

	solid := material.NewMaterial("demo/solid", material.WithPass(
		material.WithDiffuse(mgl32.Vec4{0.85, 0.35, 0.2, 1}),
		material.WithSpecular(mgl32.Vec4{1, 1, 1, 1}, 32),
	))
	cube := mesh.NewCube("demo/cube", 1)
	offset := float32(side-1) * cubeSpacing / 2
	for i := 0; i < side*side; i++ {
		name := fmt.Sprintf("cube_%d", i)
		n, err := s.CreateNode(name, nil)
		if err != nil {
			return nil, err
		}
		n.SetPosition(mgl32.Vec3{float32(i%side)*cubeSpacing - offset, 0, float32(i/side)*cubeSpacing - offset})
		if _, err := s.CreateGeometry(name, n, cube, scene.WithMaterial(solid), scene.WithShadowCaster(true)); err != nil {
			return nil, err
		}
	}

	glass := material.NewMaterial("demo/glass", material.WithPass(
		material.WithDiffuse(mgl32.Vec4{0.3, 0.6, 1, 1}),
		material.WithOpacity(0.4),
		material.WithTwoSided(true),
		material.WithBlendModes(flags.BlendModeInterpolative, flags.BlendModeInterpolative),
	))
	panel, err := s.CreateNode("panel", nil)
	if err != nil {
		return nil, err
	}
	panel.SetPosition(mgl32.Vec3{0, 2, 0})
	if _, err := s.CreateGeometry("panel", panel, mesh.NewQuad("demo/panel", d.extent, 3), scene.WithMaterial(glass)); err != nil {
		return nil, err
	}
	d.panel = panel

	if err := d.addRibbon(); err != nil {
		return nil, err
	}

	smoke := material.NewMaterial("demo/smoke", material.WithPass(
		material.WithDiffuse(mgl32.Vec4{1, 0.8, 0.4, 1}),
		material.WithOpacity(0.6),
		material.WithBlendModes(flags.BlendModeAdditive, flags.BlendModeAdditive),
	))
	fountain, err := s.CreateNode("fountain", nil)
	if err != nil {
		return nil, err
	}
	fountain.SetPosition(mgl32.Vec3{0, 0.5, -d.extent/2 - 2})
	if _, err := s.CreateParticleSystem("fountain", fountain,
		scene.WithParticleMaterial(smoke),
		scene.WithParticleCapacity(512),
		scene.WithParticleSize(mgl32.Vec2{0.2, 0.2}),
		scene.WithEmission(120, 2.5, 3),
		scene.WithGravity(mgl32.Vec3{0, -2, 0}),
	); err != nil {
		return nil, err
	}
	return d, nil
}

// addRibbon places a two-bone ribbon next to the grid and starts its wave clip.
func (d *demoScene) addRibbon() error {
	skin := material.NewMaterial("demo/ribbon", material.WithPass(
		material.WithDiffuse(mgl32.Vec4{0.4, 0.9, 0.5, 1}),
		material.WithTwoSided(true),
	))
	skeleton, clips := ribbonSkeleton()
	m := mesh.NewMesh("demo/ribbon", mesh.WithSkeleton(skeleton), mesh.WithAnimationClips(clips...))
	vertices, indices := ribbonVertices()
	m.CreateSubmesh(buffer.SkinnedLayout, vertices, indices)

	n, err := d.scene.CreateNode("ribbon", nil)
	if err != nil {
		return err
	}
	n.SetPosition(mgl32.Vec3{d.extent/2 + 2, 0, 0})
	g, err := d.scene.CreateGeometry("ribbon", n, m, scene.WithMaterial(skin))
	if err != nil {
		return err
	}
	group, err := d.scene.CreateAnimatedObjectGroup("demo/animated")
	if err != nil {
		return err
	}
	if d.ribbon, err = group.AddSkeleton(g, skeleton, clips...); err != nil {
		return err
	}
	d.ribbon.Play(clipWave)
	return nil
}

// nextClip switches the ribbon to the following clip.
func (d *demoScene) nextClip() string {
	d.clipIdx = (d.clipIdx + 1) % len(d.clips)
	d.ribbon.Play(d.clips[d.clipIdx])
	return d.clips[d.clipIdx]
}

// ribbonSkeleton returns a root bone at the origin, a tip bone one unit above it and the
// clips driving the tip.
func ribbonSkeleton() (*mesh.Skeleton, []*mesh.AnimationClip) {
	tip := mgl32.Vec3{0, 1, 0}
	skeleton := &mesh.Skeleton{Bones: []mesh.Bone{
		{Name: "root", Parent: -1, InverseBind: mgl32.Ident4(), Local: mesh.IdentityTransform()},
		{Name: "tip", Parent: 0, InverseBind: mgl32.Translate3D(0, -1, 0), Local: mesh.Transform{
			Translation: tip,
			Rotation:    mgl32.QuatIdent(),
			Scale:       mgl32.Vec3{1, 1, 1},
		}},
	}}

	swing := float32(math.Pi / 4)
	wave := &mesh.AnimationClip{Name: clipWave, Duration: 2, Channels: []mesh.AnimationChannel{{
		Bone: 1,
		Rotations: []mesh.QuatKey{
			{Time: 0, Value: mgl32.QuatRotate(-swing, mgl32.Vec3{0, 0, 1})},
			{Time: 1, Value: mgl32.QuatRotate(swing, mgl32.Vec3{0, 0, 1})},
			{Time: 2, Value: mgl32.QuatRotate(-swing, mgl32.Vec3{0, 0, 1})},
		},
	}}}
	idle := &mesh.AnimationClip{Name: clipIdle, Duration: 1}
	return skeleton, []*mesh.AnimationClip{wave, idle}
}

// ribbonVertices builds a vertical strip two units tall. The bottom and middle rows
// follow the root bone and the top row follows the tip.
func ribbonVertices() ([]float32, []uint32) {
	var vertices []float32
	for row := 0; row < 3; row++ {
		bone := float32(0)
		if row == 2 {
			bone = 1
		}
		for col := 0; col < 2; col++ {
			x := float32(col) - 0.5
			y := float32(row)
			vertices = append(vertices,
				x, y, 0,           // position
				0, 0, 1,           // normal
				float32(col), y/2, // uv
				bone, 0, 0, 0,     // joints
				1, 0, 0, 0,        // weights
			)
		}
	}
	indices := []uint32{0, 1, 3, 0, 3, 2, 2, 3, 5, 2, 5, 4}
	return vertices, indices
}

// newOrbitCamera orbits the origin at the given distance.
func newOrbitCamera(radius float32) camera.Camera {
	return camera.NewCamera("main",
		camera.WithFov(float32(60.0*math.Pi/180.0)),
		camera.WithClipPlanes(0.1, 1000),
		camera.WithController(camera.NewCameraController(
			camera.WithOrbit(radius, 0.3, 0.6),
			camera.WithRadiusBounds(2, 500),
			camera.WithRates(camera.InputRates{Zoom: 2, Mouse: 0.005}),
		)),
	)
}
