package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BoundingSphere is a sphere enclosing a drawable, expressed in the drawable's local space
// unless stated otherwise.
type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

// BoundingSphereFromPoints builds the sphere centered on the axis-aligned bounds of the
// given points. An empty point set yields the zero sphere.
//
// Parameters:
//   - points: positions to enclose
//
// Returns:
//   - BoundingSphere: the enclosing sphere
func BoundingSphereFromPoints(points []mgl32.Vec3) BoundingSphere {
	if len(points) == 0 {
		return BoundingSphere{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	var radius float32
	for _, p := range points {
		radius = max(radius, p.Sub(center).Len())
	}
	return BoundingSphere{Center: center, Radius: radius}
}

// Transform returns the sphere moved into the space described by m.
// The radius is scaled by the largest axis scale of m so the result still encloses
// the transformed volume under non-uniform scaling.
//
// Parameters:
//   - m: the local-to-world transform
//
// Returns:
//   - BoundingSphere: the transformed sphere
func (s BoundingSphere) Transform(m mgl32.Mat4) BoundingSphere {
	center := m.Mul4x1(s.Center.Vec4(1)).Vec3()
	return BoundingSphere{Center: center, Radius: s.Radius * MaxAxisScale(m)}
}

// MaxAxisScale returns the length of the longest basis vector of m's upper 3x3 block.
func MaxAxisScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return max(sx, sy, sz)
}
