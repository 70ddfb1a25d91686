// Package intersect provides closed-form tests between axis-aligned boxes and
// rays. Boxes are given by their center and full size.
package intersect

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelInverse stands in for 1/0 on an axis the ray does not move along
const parallelInverse = 1e30

// sweepEpsilon keeps a swept box just short of the contact time
const sweepEpsilon = 1e-8

// Hit describes the contact of a test
type Hit struct {
	Occurred bool
	// Position is the contact point
	Position mgl64.Vec3
	// Normal is a unit axis. For box pairs it points from A away from B;
	// for rays it is the normal of the entered face.
	Normal mgl64.Vec3
	// Delta is Normal * Depth, the translation that separates A from B
	Delta mgl64.Vec3
	Depth float64
	// Time is the ray parameter of the entry point
	Time float64
}

// Sweep is the result of moving a box along a delta
type Sweep struct {
	Hit Hit
	// Position is where the moving box stops
	Position mgl64.Vec3
	// Time is the fraction of the delta travelled, 1 when nothing was hit
	Time float64
}

// AabbAabb tests two boxes for overlap. Touching boxes do not overlap. The
// separating axis is the one with the smallest penetration.
func AabbAabb(posA, sizeA, posB, sizeB mgl64.Vec3) Hit {
	halfA := sizeA.Mul(0.5)
	halfB := sizeB.Mul(0.5)
	delta := posB.Sub(posA)

	axis := -1
	depth := math.Inf(1)
	for i := range 3 {
		p := halfA[i] + halfB[i] - math.Abs(delta[i])
		if p <= 0 {
			return Hit{}
		}
		if p < depth {
			depth = p
			axis = i
		}
	}

	sign := sign(delta[axis])

	hit := Hit{Occurred: true, Depth: depth, Position: posB}
	hit.Normal[axis] = -sign
	hit.Delta = hit.Normal.Mul(depth)
	hit.Position[axis] = posA[axis] + halfA[axis]*sign
	return hit
}

// RayAabb intersects the ray origin + t*direction with a box grown by padding
// on every side, using the slab method. Time is the entry parameter and may
// be negative when the origin is inside the box; a box entirely behind the
// origin is missed.
func RayAabb(origin, direction, boxPos, boxSize, padding mgl64.Vec3) Hit {
	half := boxSize.Mul(0.5).Add(padding)

	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	entryAxis := 0

	for i := range 3 {
		inv := parallelInverse
		if direction[i] != 0 {
			inv = 1 / direction[i]
		}

		near := (boxPos[i] - half[i] - origin[i]) * inv
		far := (boxPos[i] + half[i] - origin[i]) * inv
		if near > far {
			near, far = far, near
		}

		if near > tmin {
			tmin = near
			entryAxis = i
		}
		tmax = math.Min(tmax, far)
	}

	if tmax < 0 || tmin > tmax {
		return Hit{}
	}

	hit := Hit{
		Occurred: true,
		Time:     tmin,
		Position: origin.Add(direction.Mul(tmin)),
	}

	s := -sign(direction[entryAxis])
	if direction[entryAxis] == 0 {
		s = sign(origin[entryAxis] - boxPos[entryAxis])
	}
	hit.Normal[entryAxis] = s

	return hit
}

// SweptAabbAabb moves box A along delta and reports the first contact with
// box B. A zero delta is a static overlap test.
func SweptAabbAabb(posA, sizeA, delta, posB, sizeB mgl64.Vec3) Sweep {
	if delta.LenSqr() == 0 {
		hit := AabbAabb(posA, sizeA, posB, sizeB)
		sweep := Sweep{Hit: hit, Position: posA, Time: 1}
		if hit.Occurred {
			sweep.Time = 0
		}
		return sweep
	}

	hit := RayAabb(posA, delta, posB, sizeB, sizeA.Mul(0.5))
	if !hit.Occurred || hit.Time < 0 || hit.Time > 1 {
		return Sweep{Position: posA.Add(delta), Time: 1}
	}

	t := math.Max(0, math.Min(1, hit.Time-sweepEpsilon))
	hit.Time = t
	return Sweep{
		Hit:      hit,
		Position: posA.Add(delta.Mul(t)),
		Time:     t,
	}
}

// sign returns -1 for negative values, 1 otherwise
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
