package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SkeletonSuffix is appended to a geometry name to name its skeleton animation.
	SkeletonSuffix = "_Skeleton"

	// MeshSuffix is appended to a geometry name to name its morph animation.
	MeshSuffix = "_Mesh"
)

// AnimatedObject is one animation target stored in an AnimatedObjectGroup.
type AnimatedObject interface {
	// Name returns the object identifier, the target geometry name plus a suffix.
	Name() string

	// Geometry returns the animated geometry.
	Geometry() Geometry

	// Update advances the playback time by dt seconds.
	Update(dt float32)

	// Time returns the current playback time in seconds.
	Time() float32

	// SetSpeed sets the playback speed multiplier.
	SetSpeed(speed float32)
}

// AnimatedSkeleton plays skeleton clips and exposes the resulting skinning palette.
type AnimatedSkeleton interface {
	AnimatedObject

	// Skeleton returns the animated skeleton.
	Skeleton() *mesh.Skeleton

	// Play selects the clip to play by name.
	//
	// Returns:
	//   - bool: false if no clip has that name
	Play(clip string) bool

	// Palette returns the bone matrices of the last Update.
	Palette() []mgl32.Mat4
}

// AnimatedMesh blends between the base vertices and a morph target.
type AnimatedMesh interface {
	AnimatedObject

	// MorphTime returns the blend factor in [0, 1].
	MorphTime() float32
}

// animatedBase holds state common to both animation kinds.
type animatedBase struct {
	mu       sync.Mutex
	name     string
	geometry Geometry
	time     float32
	speed    float32
}

func (a *animatedBase) Name() string {
	return a.name
}

func (a *animatedBase) Geometry() Geometry {
	return a.geometry
}

func (a *animatedBase) Time() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.time
}

func (a *animatedBase) SetSpeed(speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = speed
}

// animatedSkeleton is the implementation of the AnimatedSkeleton interface.
type animatedSkeleton struct {
	animatedBase
	skeleton *mesh.Skeleton
	clips    []*mesh.AnimationClip
	current  *mesh.AnimationClip
	palette  []mgl32.Mat4
}

var _ AnimatedSkeleton = &animatedSkeleton{}

func newAnimatedSkeleton(g Geometry, skeleton *mesh.Skeleton, clips []*mesh.AnimationClip) *animatedSkeleton {
	a := &animatedSkeleton{
		animatedBase: animatedBase{name: g.Name() + SkeletonSuffix, geometry: g, speed: 1},
		skeleton:     skeleton,
		clips:        clips,
	}
	if len(clips) > 0 {
		a.current = clips[0]
	}
	a.palette = make([]mgl32.Mat4, len(skeleton.Bones))
	for i := range a.palette {
		a.palette[i] = mgl32.Ident4()
	}
	return a
}

func (a *animatedSkeleton) Skeleton() *mesh.Skeleton {
	return a.skeleton
}

func (a *animatedSkeleton) Play(clip string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.clips {
		if c.Name == clip {
			a.current = c
			a.time = 0
			return true
		}
	}
	return false
}

func (a *animatedSkeleton) Update(dt float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time += dt * a.speed
	if a.current != nil {
		a.palette = a.current.Pose(a.skeleton, a.time, a.palette)
	}
}

func (a *animatedSkeleton) Palette() []mgl32.Mat4 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]mgl32.Mat4, len(a.palette))
	copy(out, a.palette)
	return out
}

// animatedMesh is the implementation of the AnimatedMesh interface.
type animatedMesh struct {
	animatedBase
	period float32
}

var _ AnimatedMesh = &animatedMesh{}

func newAnimatedMesh(g Geometry, period float32) *animatedMesh {
	if period <= 0 {
		period = 1
	}
	return &animatedMesh{
		animatedBase: animatedBase{name: g.Name() + MeshSuffix, geometry: g, speed: 1},
		period:       period,
	}
}

func (a *animatedMesh) Update(dt float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time += dt * a.speed
}

// MorphTime ping-pongs between 0 and 1 over one period.
func (a *animatedMesh) MorphTime() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	phase := a.time / a.period
	phase -= float32(int(phase/2)) * 2
	if phase > 1 {
		return 2 - phase
	}
	return phase
}

// animatedObjectGroup is the implementation of the AnimatedObjectGroup interface.
type animatedObjectGroup struct {
	name    string
	objects *ObjectCache[AnimatedObject]
}

// AnimatedObjectGroup collects animation targets that are updated together.
type AnimatedObjectGroup interface {
	// Name returns the group identifier.
	Name() string

	// AddSkeleton registers a skeleton animation for g, named g.Name()+SkeletonSuffix.
	//
	// Parameters:
	//   - g: the skinned geometry
	//   - skeleton: the bind-pose skeleton
	//   - clips: the playable clips, the first one starts playing
	//
	// Returns:
	//   - AnimatedSkeleton: the registered animation
	//   - error: ErrDuplicateName if g already has one in this group
	AddSkeleton(g Geometry, skeleton *mesh.Skeleton, clips ...*mesh.AnimationClip) (AnimatedSkeleton, error)

	// AddMesh registers a morph animation for g, named g.Name()+MeshSuffix.
	//
	// Parameters:
	//   - g: the morphed geometry
	//   - period: seconds for one blend from base to target
	//
	// Returns:
	//   - AnimatedMesh: the registered animation
	//   - error: ErrDuplicateName if g already has one in this group
	AddMesh(g Geometry, period float32) (AnimatedMesh, error)

	// Remove unregisters an animated object by name.
	Remove(name string) error

	// Find returns the named animated object.
	Find(name string) (AnimatedObject, bool)

	// Objects returns the group's object cache.
	Objects() *ObjectCache[AnimatedObject]

	// Update advances every object by dt seconds.
	Update(dt float32)
}

var _ AnimatedObjectGroup = &animatedObjectGroup{}

func newAnimatedObjectGroup(name string, owner *scene) *animatedObjectGroup {
	return &animatedObjectGroup{
		name:    name,
		objects: newObjectCache[AnimatedObject]("animated object", owner.notifyChanged),
	}
}

func (g *animatedObjectGroup) Name() string {
	return g.name
}

func (g *animatedObjectGroup) AddSkeleton(geom Geometry, skeleton *mesh.Skeleton, clips ...*mesh.AnimationClip) (AnimatedSkeleton, error) {
	if geom == nil || skeleton == nil {
		panic("scene: AddSkeleton requires a non-nil Geometry and Skeleton")
	}
	a := newAnimatedSkeleton(geom, skeleton, clips)
	if err := g.objects.Add(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (g *animatedObjectGroup) AddMesh(geom Geometry, period float32) (AnimatedMesh, error) {
	if geom == nil {
		panic("scene: AddMesh requires a non-nil Geometry")
	}
	a := newAnimatedMesh(geom, period)
	if err := g.objects.Add(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (g *animatedObjectGroup) Remove(name string) error {
	_, err := g.objects.Remove(name)
	return err
}

func (g *animatedObjectGroup) Find(name string) (AnimatedObject, bool) {
	return g.objects.Find(name)
}

func (g *animatedObjectGroup) Objects() *ObjectCache[AnimatedObject] {
	return g.objects
}

func (g *animatedObjectGroup) Update(dt float32) {
	for _, obj := range g.objects.Values() {
		obj.Update(dt)
	}
}
