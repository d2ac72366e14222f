package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithFlags sets the initial scene feature flags.
//
// Parameters:
//   - f: the flags
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFlags(f Flags) SceneBuilderOption {
	return func(s *scene) {
		s.flags = f
	}
}

// WithFog sets the fog colour and density. The fog mode comes from the scene flags.
//
// Parameters:
//   - colour: the fog colour
//   - density: the fog density
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFog(colour mgl32.Vec3, density float32) SceneBuilderOption {
	return func(s *scene) {
		s.fogColour = colour
		s.fogDensity = density
	}
}

// WithBackgroundColour sets the clear colour.
func WithBackgroundColour(c mgl32.Vec4) SceneBuilderOption {
	return func(s *scene) {
		s.background = c
	}
}

// WithLightDirection sets the direction of the scene's directional light.
func WithLightDirection(dir mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		if dir.Len() > 0 {
			s.lightDir = dir.Normalize()
		}
	}
}

// WithUpdateWorkers sets the number of worker goroutines that step particle systems
// in Update. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.updateWorkers = max(n, 1)
	}
}

// geometryBuilder collects geometry options; materials are assigned once the mesh is known.
type geometryBuilder struct {
	material       material.Material
	materials      map[int]material.Material
	shadowCaster   *bool
	shadowReceiver *bool
}

func (b *geometryBuilder) apply(g *geometry) {
	for _, sm := range g.mesh.Submeshes() {
		if m, ok := b.materials[sm.Index()]; ok {
			g.SetMaterial(sm, m)
		} else if b.material != nil {
			g.SetMaterial(sm, b.material)
		}
	}
	if b.shadowCaster != nil {
		g.shadowCaster = *b.shadowCaster
	}
	if b.shadowReceiver != nil {
		g.shadowReceiver = *b.shadowReceiver
	}
}

// GeometryBuilderOption is a functional option for configuring a Geometry.
type GeometryBuilderOption func(b *geometryBuilder)

// WithMaterial assigns m to every submesh not given a material by WithSubmeshMaterial.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithMaterial(m material.Material) GeometryBuilderOption {
	return func(b *geometryBuilder) {
		b.material = m
	}
}

// WithSubmeshMaterial assigns m to the submesh at index.
//
// Parameters:
//   - index: the submesh index
//   - m: the material
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithSubmeshMaterial(index int, m material.Material) GeometryBuilderOption {
	return func(b *geometryBuilder) {
		if b.materials == nil {
			b.materials = make(map[int]material.Material)
		}
		b.materials[index] = m
	}
}

// WithShadowCaster sets whether the geometry casts shadows. Defaults to true.
func WithShadowCaster(caster bool) GeometryBuilderOption {
	return func(b *geometryBuilder) {
		b.shadowCaster = &caster
	}
}

// WithShadowReceiver sets whether the geometry receives shadows. Defaults to true.
func WithShadowReceiver(receiver bool) GeometryBuilderOption {
	return func(b *geometryBuilder) {
		b.shadowReceiver = &receiver
	}
}

// BillboardBuilderOption is a functional option for configuring a BillboardList.
type BillboardBuilderOption func(b *billboardList)

// WithBillboardMaterial sets the billboard material.
func WithBillboardMaterial(m material.Material) BillboardBuilderOption {
	return func(b *billboardList) {
		b.material = m
	}
}

// WithBillboardSize sets the world-space width and height of each billboard.
func WithBillboardSize(size mgl32.Vec2) BillboardBuilderOption {
	return func(b *billboardList) {
		b.size = size
	}
}

// WithBillboardPositions sets the initial billboard centers.
func WithBillboardPositions(positions ...mgl32.Vec3) BillboardBuilderOption {
	return func(b *billboardList) {
		b.positions = append(b.positions, positions...)
	}
}

// WithBillboardCapacity sets the maximum number of billboards drawn per call.
//
// Parameters:
//   - capacity: instance slots; values <= 0 keep the default of 256
//
// Returns:
//   - BillboardBuilderOption: option function to apply
func WithBillboardCapacity(capacity int) BillboardBuilderOption {
	return func(b *billboardList) {
		if capacity > 0 {
			b.capacity = capacity
		}
	}
}

// particleSystemBuilder collects particle options and the options of the owned billboard list.
type particleSystemBuilder struct {
	system           *particleSystem
	billboardOptions []BillboardBuilderOption
}

// ParticleSystemBuilderOption is a functional option for configuring a ParticleSystem.
type ParticleSystemBuilderOption func(b *particleSystemBuilder)

// WithParticleMaterial sets the material the particles are drawn with.
func WithParticleMaterial(m material.Material) ParticleSystemBuilderOption {
	return func(b *particleSystemBuilder) {
		b.billboardOptions = append(b.billboardOptions, WithBillboardMaterial(m))
	}
}

// WithParticleCapacity sets the maximum number of live particles.
func WithParticleCapacity(capacity int) ParticleSystemBuilderOption {
	return func(b *particleSystemBuilder) {
		b.billboardOptions = append(b.billboardOptions, WithBillboardCapacity(capacity))
	}
}

// WithParticleSize sets the billboard size of each particle.
func WithParticleSize(size mgl32.Vec2) ParticleSystemBuilderOption {
	return func(b *particleSystemBuilder) {
		b.billboardOptions = append(b.billboardOptions, WithBillboardSize(size))
	}
}

// WithEmission sets the emission rate, particle lifetime and initial speed.
//
// Parameters:
//   - rate: particles emitted per second
//   - lifetime: maximum particle lifetime in seconds
//   - speed: initial speed in units per second
//
// Returns:
//   - ParticleSystemBuilderOption: option function to apply
func WithEmission(rate, lifetime, speed float32) ParticleSystemBuilderOption {
	return func(b *particleSystemBuilder) {
		b.system.rate = rate
		b.system.lifetime = lifetime
		b.system.speed = speed
	}
}

// WithGravity sets the constant acceleration applied to particles.
func WithGravity(g mgl32.Vec3) ParticleSystemBuilderOption {
	return func(b *particleSystemBuilder) {
		b.system.gravity = g
	}
}
