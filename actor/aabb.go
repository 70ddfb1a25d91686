package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box by its center and half-extents
type AABB struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// AABBFromMinMax builds a box spanning the two corners
func AABBFromMinMax(min, max mgl64.Vec3) AABB {
	return AABB{
		Center:      min.Add(max).Mul(0.5),
		HalfExtents: max.Sub(min).Mul(0.5),
	}
}

func (a AABB) Min() mgl64.Vec3 { return a.Center.Sub(a.HalfExtents) }
func (a AABB) Max() mgl64.Vec3 { return a.Center.Add(a.HalfExtents) }

// Size returns the full extents
func (a AABB) Size() mgl64.Vec3 { return a.HalfExtents.Mul(2) }

// Volume of the box spanned by the half-extents
func (a AABB) Volume() float64 {
	return 8.0 * math.Abs(a.HalfExtents.X()*a.HalfExtents.Y()*a.HalfExtents.Z())
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	min, max := a.Min(), a.Max()
	return point.X() >= min.X() && point.X() <= max.X() &&
		point.Y() >= min.Y() && point.Y() <= max.Y() &&
		point.Z() >= min.Z() && point.Z() <= max.Z()
}

// Overlaps checks if two AABBs overlap. Touching boxes overlap, so a pair in
// contact still reaches the narrow phase.
func (a AABB) Overlaps(other AABB) bool {
	for i := range 3 {
		if math.Abs(a.Center[i]-other.Center[i]) > a.HalfExtents[i]+other.HalfExtents[i] {
			return false
		}
	}
	return true
}
