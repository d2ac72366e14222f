package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testViewProjection() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProjection())

	tests := []struct {
		name   string
		sphere BoundingSphere
		want   bool
	}{
		{"origin", BoundingSphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}, true},
		{"behind camera", BoundingSphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}, false},
		{"far right", BoundingSphere{Center: mgl32.Vec3{100, 0, 0}, Radius: 1}, false},
		{"beyond far plane", BoundingSphere{Center: mgl32.Vec3{0, 0, -200}, Radius: 1}, false},
		{"straddling left plane", BoundingSphere{Center: mgl32.Vec3{-3.5, 0, 0}, Radius: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IntersectsSphere(tt.sphere))
		})
	}
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProjection())
	for i, p := range f.Planes {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := ExtractFrustumFromMatrix(testViewProjection())
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 0}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, 6}))
}
