package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBoundingSphereFromPoints(t *testing.T) {
	s := BoundingSphereFromPoints([]mgl32.Vec3{{-1, -1, -1}, {1, 1, 1}})
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.Center)
	assert.InDelta(t, mgl32.Vec3{1, 1, 1}.Len(), s.Radius, 1e-6)

	assert.Equal(t, BoundingSphere{}, BoundingSphereFromPoints(nil))
}

func TestBoundingSphereTransform(t *testing.T) {
	s := BoundingSphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 2}
	m := mgl32.Translate3D(0, 5, 0).Mul4(mgl32.Scale3D(1, 3, 2))

	got := s.Transform(m)
	assert.InDelta(t, 1, got.Center.X(), 1e-6)
	assert.InDelta(t, 5, got.Center.Y(), 1e-6)
	assert.InDelta(t, 6, got.Radius, 1e-6)
}

func TestClampAndCoalesce(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, float32(0), Clamp(float32(-1), 0, 1))
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
