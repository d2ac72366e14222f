package mesh

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/flags"
)

// MeshBuilderOption is a function that configures a mesh during construction.
type MeshBuilderOption func(*mesh)

// WithSkeleton is an option builder that attaches a bind-pose skeleton.
//
// Parameters:
//   - s: the skeleton
//
// Returns:
//   - MeshBuilderOption: a function that sets the skeleton
func WithSkeleton(s *Skeleton) MeshBuilderOption {
	return func(m *mesh) {
		m.skeleton = s
	}
}

// WithAnimationClips is an option builder that attaches animation clips.
func WithAnimationClips(clips ...*AnimationClip) MeshBuilderOption {
	return func(m *mesh) {
		m.clips = append(m.clips, clips...)
	}
}

// SubmeshBuilderOption is a function that configures a submesh during construction.
type SubmeshBuilderOption func(*submesh)

// WithProgramFlags is an option builder that sets the base program flags of a submesh.
//
// Parameters:
//   - f: the base flags
//
// Returns:
//   - SubmeshBuilderOption: a function that sets the flags
func WithProgramFlags(f flags.ProgramFlags) SubmeshBuilderOption {
	return func(s *submesh) {
		s.programFlags = f
	}
}
