package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// extractAnimations converts every animation targeting the skeleton's nodes into a clip.
// Channels aimed at nodes outside the skeleton, or at morph weights, are skipped.
//
// Parameters:
//   - nodeToBone: node index to bone index from extractSkeleton
//
// Returns:
//   - []*mesh.AnimationClip: one clip per animation with at least one bone channel
//   - error: error if a sampler accessor is malformed
func (p *gltfParser) extractAnimations(nodeToBone map[int]int) ([]*mesh.AnimationClip, error) {
	var clips []*mesh.AnimationClip
	for ai, anim := range p.doc.Animations {
		clip := &mesh.AnimationClip{Name: anim.Name}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%d", ai)
		}
		channels := make(map[int]*mesh.AnimationChannel)
		var order []int

		for ci, ch := range anim.Channels {
			if ch.Target.Node == nil {
				continue
			}
			bone, ok := nodeToBone[*ch.Target.Node]
			if !ok {
				continue
			}
			if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
				return nil, fmt.Errorf("animation %q channel %d: sampler %d out of range", clip.Name, ci, ch.Sampler)
			}
			sampler := anim.Samplers[ch.Sampler]
			times, err := p.readComponents(sampler.Input, "SCALAR")
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d input: %w", clip.Name, ci, err)
			}

			target, ok := channels[bone]
			if !ok {
				target = &mesh.AnimationChannel{Bone: bone}
				channels[bone] = target
				order = append(order, bone)
			}

			switch ch.Target.Path {
			case gltfPathTranslation, gltfPathScale:
				values, err := p.readKeyValues(sampler.Output, "VEC3", len(times))
				if err != nil {
					return nil, fmt.Errorf("animation %q channel %d output: %w", clip.Name, ci, err)
				}
				keys := make([]mesh.VectorKey, len(times))
				for i, t := range times {
					keys[i] = mesh.VectorKey{Time: t, Value: mgl32.Vec3{values[i*3], values[i*3+1], values[i*3+2]}}
				}
				if ch.Target.Path == gltfPathTranslation {
					target.Translations = keys
				} else {
					target.Scales = keys
				}
			case gltfPathRotation:
				values, err := p.readKeyValues(sampler.Output, "VEC4", len(times))
				if err != nil {
					return nil, fmt.Errorf("animation %q channel %d output: %w", clip.Name, ci, err)
				}
				keys := make([]mesh.QuatKey, len(times))
				for i, t := range times {
					keys[i] = mesh.QuatKey{Time: t, Value: gltfQuat(values[i*4 : i*4+4]).Normalize()}
				}
				target.Rotations = keys
			default:
				continue
			}
			if n := len(times); n > 0 {
				clip.Duration = max(clip.Duration, times[n-1])
			}
		}

		for _, bone := range order {
			if c := channels[bone]; len(c.Translations)+len(c.Rotations)+len(c.Scales) > 0 {
				clip.Channels = append(clip.Channels, *c)
			}
		}
		if len(clip.Channels) > 0 {
			clips = append(clips, clip)
		}
	}
	return clips, nil
}

// readKeyValues reads a sampler output with one value per keyframe. Cubic spline outputs
// carry in and out tangents around each value; only the value is kept.
func (p *gltfParser) readKeyValues(index int, accessorType string, keys int) ([]float32, error) {
	values, err := p.readComponents(index, accessorType)
	if err != nil {
		return nil, err
	}
	n := componentCount(accessorType)
	switch len(values) {
	case keys * n:
		return values, nil
	case keys * n * 3:
		out := make([]float32, 0, keys*n)
		for k := 0; k < keys; k++ {
			out = append(out, values[(k*3+1)*n:(k*3+2)*n]...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%d values for %d keyframes", len(values)/max(n, 1), keys)
}
