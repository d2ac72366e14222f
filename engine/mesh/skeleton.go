package mesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns the transform with no translation, rotation or scaling.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.Elem()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.Elem()))
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier.
	Name string

	// Parent is the index of the parent bone, -1 for root bones.
	// Parents always precede their children.
	Parent int

	// InverseBind transforms from mesh space to bone space at bind pose.
	InverseBind mgl32.Mat4

	// Local is the bind-pose transform relative to the parent.
	Local Transform
}

// Skeleton represents a bone hierarchy for skeletal animation.
type Skeleton struct {
	Bones []Bone
}

// BoneIndex returns the index of the named bone, or -1.
func (s *Skeleton) BoneIndex(name string) int {
	for i, b := range s.Bones {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// VectorKey stores a vector value at a specific time in seconds.
type VectorKey struct {
	Time  float32
	Value mgl32.Vec3
}

// QuatKey stores a rotation at a specific time in seconds.
type QuatKey struct {
	Time  float32
	Value mgl32.Quat
}

// AnimationChannel contains the keyframes of a single bone.
type AnimationChannel struct {
	Bone         int
	Translations []VectorKey
	Rotations    []QuatKey
	Scales       []VectorKey
}

// AnimationClip represents a single named animation.
type AnimationClip struct {
	Name     string
	Duration float32
	Channels []AnimationChannel
}

// Pose evaluates the clip at time t (seconds, wrapped by Duration) and writes the skinning
// palette, one matrix per bone, into out. out is grown as needed and returned.
//
// Parameters:
//   - s: the skeleton the clip animates
//   - t: the playback time in seconds
//   - out: reusable destination slice
//
// Returns:
//   - []mgl32.Mat4: global bone transform multiplied by the inverse bind matrix, per bone
func (c *AnimationClip) Pose(s *Skeleton, t float32, out []mgl32.Mat4) []mgl32.Mat4 {
	n := len(s.Bones)
	if cap(out) < n {
		out = make([]mgl32.Mat4, n)
	}
	out = out[:n]

	if c.Duration > 0 {
		for t >= c.Duration {
			t -= c.Duration
		}
		for t < 0 {
			t += c.Duration
		}
	}

	locals := make([]Transform, n)
	for i, b := range s.Bones {
		locals[i] = b.Local
	}
	for _, ch := range c.Channels {
		if ch.Bone < 0 || ch.Bone >= n {
			continue
		}
		if len(ch.Translations) > 0 {
			locals[ch.Bone].Translation = sampleVector(ch.Translations, t)
		}
		if len(ch.Rotations) > 0 {
			locals[ch.Bone].Rotation = sampleQuat(ch.Rotations, t)
		}
		if len(ch.Scales) > 0 {
			locals[ch.Bone].Scale = sampleVector(ch.Scales, t)
		}
	}

	globals := make([]mgl32.Mat4, n)
	for i, b := range s.Bones {
		local := locals[i].Matrix()
		if b.Parent >= 0 && b.Parent < i {
			globals[i] = globals[b.Parent].Mul4(local)
		} else {
			globals[i] = local
		}
		out[i] = globals[i].Mul4(b.InverseBind)
	}
	return out
}

func sampleVector(keys []VectorKey, t float32) mgl32.Vec3 {
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if i == 0 {
		return keys[0].Value
	}
	if i == len(keys) {
		return keys[len(keys)-1].Value
	}
	a, b := keys[i-1], keys[i]
	f := (t - a.Time) / (b.Time - a.Time)
	return a.Value.Add(b.Value.Sub(a.Value).Mul(f))
}

func sampleQuat(keys []QuatKey, t float32) mgl32.Quat {
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if i == 0 {
		return keys[0].Value
	}
	if i == len(keys) {
		return keys[len(keys)-1].Value
	}
	a, b := keys[i-1], keys[i]
	f := (t - a.Time) / (b.Time - a.Time)
	return mgl32.QuatNlerp(a.Value, b.Value, f)
}
