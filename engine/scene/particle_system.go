package scene

import (
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Particle is one simulated point of a particle system.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Age      float32
	Lifetime float32
}

// particleSystem is the implementation of the ParticleSystem interface.
type particleSystem struct {
	mu sync.Mutex

	name      string
	particles []Particle
	rate      float32
	lifetime  float32
	speed     float32
	gravity   mgl32.Vec3
	pending   float32
	rng       *rand.Rand

	billboards *billboardList
}

// ParticleSystem emits particles from its node origin and renders them through an
// owned BillboardList. Particles are stepped by Scene.Update.
type ParticleSystem interface {
	// Name returns the particle system identifier.
	Name() string

	// Parent returns the node the system is attached to.
	Parent() Node

	// Material returns the billboard material.
	Material() material.Material

	// Billboards returns the list the particles are drawn with.
	Billboards() BillboardList

	// Particles returns a copy of the live particles.
	Particles() []Particle

	// Count returns the number of live particles.
	Count() int

	// Update advances the simulation by dt seconds: ages and moves particles, drops
	// expired ones, emits new ones up to the billboard capacity, then refreshes the
	// billboard positions.
	Update(dt float32)
}

var _ ParticleSystem = &particleSystem{}

func newParticleSystem(name string, owner *scene, parent Node, options ...ParticleSystemBuilderOption) *particleSystem {
	p := &particleSystem{
		name:     name,
		rate:     32,
		lifetime: 2,
		speed:    1,
		gravity:  mgl32.Vec3{0, -0.5, 0},
		rng:      rand.New(rand.NewPCG(uint64(len(name)), 0x9e3779b97f4a7c15)),
	}
	b := &particleSystemBuilder{system: p}
	for _, opt := range options {
		opt(b)
	}
	p.billboards = newBillboardList(name+"_Billboards", owner, parent, b.billboardOptions...)
	return p
}

func (p *particleSystem) Name() string {
	return p.name
}

func (p *particleSystem) Parent() Node {
	return p.billboards.Parent()
}

func (p *particleSystem) Material() material.Material {
	return p.billboards.Material()
}

func (p *particleSystem) Billboards() BillboardList {
	return p.billboards
}

func (p *particleSystem) Particles() []Particle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Particle, len(p.particles))
	copy(out, p.particles)
	return out
}

func (p *particleSystem) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.particles)
}

func (p *particleSystem) Update(dt float32) {
	if dt <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	live := p.particles[:0]
	for _, pt := range p.particles {
		pt.Age += dt
		if pt.Age >= pt.Lifetime {
			continue
		}
		pt.Velocity = pt.Velocity.Add(p.gravity.Mul(dt))
		pt.Position = pt.Position.Add(pt.Velocity.Mul(dt))
		live = append(live, pt)
	}
	p.particles = live

	p.pending += p.rate * dt
	capacity := p.billboards.Capacity()
	for p.pending >= 1 && len(p.particles) < capacity {
		p.pending--
		dir := mgl32.Vec3{p.rng.Float32()*2 - 1, 1, p.rng.Float32()*2 - 1}.Normalize()
		p.particles = append(p.particles, Particle{
			Velocity: dir.Mul(p.speed),
			Lifetime: p.lifetime * (0.5 + p.rng.Float32()/2),
		})
	}
	if p.pending >= 1 {
		p.pending = 0
	}

	positions := make([]mgl32.Vec3, len(p.particles))
	for i, pt := range p.particles {
		positions[i] = pt.Position
	}
	p.billboards.SetPositions(positions)
}
