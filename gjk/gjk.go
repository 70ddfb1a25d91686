// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for collision detection.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski difference
// contains the origin. The algorithm builds a simplex incrementally, converging toward
// the origin in typically 3-6 iterations.
//
// Every simplex vertex keeps the two support points it was built from, so that the
// expanding polytope can later rebuild contact locations on each shape.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"errors"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxIterations guards against numerical cycling
const DefaultMaxIterations = 100000

// ErrMaxIterations is returned by Search when the iteration ceiling is hit
var ErrMaxIterations = errors.New("gjk: iteration limit reached")

// degenerateEpsilon is the squared length under which a search direction is
// considered zero
const degenerateEpsilon = 1e-20

// Collider is anything with a world-space support function
type Collider interface {
	FurthestPoint(direction mgl64.Vec3) mgl64.Vec3
}

// SupportPoint is a vertex of the Minkowski difference A - B together with the
// witness points on A and B that produced it.
type SupportPoint struct {
	Point mgl64.Vec3
	A     mgl64.Vec3
	B     mgl64.Vec3
}

// Support computes a support point in the Minkowski difference (A - B):
// furthestPoint(A, direction) - furthestPoint(B, -direction).
//
// This is the fundamental query that makes GJK work for any convex shape - shapes only
// need to implement a support function, not expose their full geometry.
func Support(a, b Collider, direction mgl64.Vec3) SupportPoint {
	supportA := a.FurthestPoint(direction)
	supportB := b.FurthestPoint(direction.Mul(-1))
	return SupportPoint{
		Point: supportA.Sub(supportB),
		A:     supportA,
		B:     supportB,
	}
}

// Simplex is an ordered set of up to 4 support points, most recent first.
// Size progression: 1 point → 2 points (line) → 3 points (triangle) → 4 points (tetrahedron)
type Simplex struct {
	points [4]SupportPoint
	size   int
}

func (s *Simplex) Reset() {
	s.size = 0
}

func (s *Simplex) Len() int {
	return s.size
}

// At returns the i-th point, 0 being the most recent
func (s *Simplex) At(i int) SupportPoint {
	return s.points[i]
}

// Points returns a copy of the current points, most recent first
func (s *Simplex) Points() []SupportPoint {
	out := make([]SupportPoint, s.size)
	copy(out, s.points[:s.size])
	return out
}

// PushFront inserts p as the most recent point. A full simplex evicts its
// oldest point.
func (s *Simplex) PushFront(p SupportPoint) {
	copy(s.points[1:], s.points[:3])
	s.points[0] = p
	s.size = min(s.size+1, 4)
}

// Set replaces the simplex with the given points (at most 4, extra are ignored)
func (s *Simplex) Set(points ...SupportPoint) {
	s.size = copy(s.points[:], points)
}

// SameDirection is strict: perpendicular vectors are not in the same direction.
func SameDirection(a, b mgl64.Vec3) bool {
	return a.Dot(b) > 0
}

// Detector runs GJK with a bounded number of iterations
type Detector struct {
	MaxIterations int
	Logger        *slog.Logger
}

// FindIntersection runs GJK with default settings
func FindIntersection(a, b Collider, simplex *Simplex) bool {
	return Detector{}.Intersect(a, b, simplex)
}

// Intersect reports whether the colliders overlap. Reaching the iteration
// ceiling logs a warning and reports no intersection.
func (d Detector) Intersect(a, b Collider, simplex *Simplex) bool {
	hit, err := d.Search(a, b, simplex)
	if err != nil {
		d.logger().Warn("gjk: assuming no intersection", "error", err, "iterations", d.maxIterations())
	}
	return hit
}

// Search performs collision detection between two convex colliders.
//
// Algorithm overview:
//  1. Seed the simplex with a support point along a fixed axis
//  2. Search toward the origin from the newest point
//  3. A support point that does not pass the origin proves separation
//  4. Otherwise refine the simplex toward the origin (NextSimplex)
//  5. A tetrahedron enclosing the origin means collision
//
// The simplex is modified in place. On collision it is always a tetrahedron,
// which the expanding polytope uses as its initial shape.
func (d Detector) Search(a, b Collider, simplex *Simplex) (bool, error) {
	simplex.Reset()
	support := Support(a, b, mgl64.Vec3{1, 0, 0})
	simplex.PushFront(support)
	direction := support.Point.Mul(-1)

	for range d.maxIterations() {
		if direction.LenSqr() < degenerateEpsilon {
			// The origin lies on the current simplex feature: keep searching
			// off that feature so a full tetrahedron can be built.
			direction = fallbackDirection(simplex)
		}

		support = Support(a, b, direction)

		// The new point does not pass the origin: the origin cannot be
		// enclosed and the shapes are separated.
		if support.Point.Dot(direction) <= 0 {
			return false, nil
		}

		simplex.PushFront(support)
		if NextSimplex(simplex, &direction) {
			return true, nil
		}
	}

	return false, ErrMaxIterations
}

func (d Detector) maxIterations() int {
	if d.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return d.MaxIterations
}

func (d Detector) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// NextSimplex reduces the simplex to its feature closest to the origin and
// updates the search direction. It returns true only when a tetrahedron
// encloses the origin.
func NextSimplex(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.size {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

// line handles the line simplex case (2 points: A newest, B).
func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.points[0], simplex.points[1]
	ab := b.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)

	if SameDirection(ab, ao) {
		*direction = ab.Cross(ao).Cross(ab)
	} else {
		simplex.Set(a)
		*direction = ao
	}

	return false
}

// triangle handles the triangle simplex case (3 points: A newest, B, C).
// The kept triangle is wound so that the search direction is its normal.
func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.points[0], simplex.points[1], simplex.points[2]

	ab := b.Point.Sub(a.Point)
	ac := c.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)

	abc := ab.Cross(ac)

	if SameDirection(abc.Cross(ac), ao) {
		if SameDirection(ac, ao) {
			simplex.Set(a, c)
			*direction = ac.Cross(ao).Cross(ac)
			return false
		}
		simplex.Set(a, b)
		return line(simplex, direction)
	}

	if SameDirection(ab.Cross(abc), ao) {
		simplex.Set(a, b)
		return line(simplex, direction)
	}

	if SameDirection(abc, ao) {
		*direction = abc
	} else {
		simplex.Set(a, c, b)
		*direction = abc.Mul(-1)
	}

	return false
}

// tetrahedron handles the tetrahedron case (4 points: A newest, B, C, D).
// The base BCD was oriented by triangle, so the three faces through A are
// tested: outside one of them collapses to that face, inside all of them
// means the origin is enclosed.
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c, d := simplex.points[0], simplex.points[1], simplex.points[2], simplex.points[3]

	ab := b.Point.Sub(a.Point)
	ac := c.Point.Sub(a.Point)
	ad := d.Point.Sub(a.Point)
	ao := a.Point.Mul(-1)

	abc := ab.Cross(ac)
	acd := ac.Cross(ad)
	adb := ad.Cross(ab)

	if SameDirection(abc, ao) {
		simplex.Set(a, b, c)
		return triangle(simplex, direction)
	}

	if SameDirection(acd, ao) {
		simplex.Set(a, c, d)
		return triangle(simplex, direction)
	}

	if SameDirection(adb, ao) {
		simplex.Set(a, d, b)
		return triangle(simplex, direction)
	}

	return true
}

// fallbackDirection picks a search direction off the current simplex feature
// when the origin lies on it.
func fallbackDirection(simplex *Simplex) mgl64.Vec3 {
	switch simplex.size {
	case 2:
		return perpendicular(simplex.points[1].Point.Sub(simplex.points[0].Point))
	case 3:
		ab := simplex.points[1].Point.Sub(simplex.points[0].Point)
		ac := simplex.points[2].Point.Sub(simplex.points[0].Point)
		if n := ab.Cross(ac); n.LenSqr() >= degenerateEpsilon {
			return n
		}
		return perpendicular(ab)
	}
	return mgl64.Vec3{0, 1, 0}
}

// perpendicular returns a vector orthogonal to v, crossing it with the axis
// it is least aligned with.
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	ax, ay, az := abs(v.X()), abs(v.Y()), abs(v.Z())
	if ay <= ax && ay <= az {
		axis = mgl64.Vec3{0, 1, 0}
	} else if az <= ax && az <= ay {
		axis = mgl64.Vec3{0, 0, 1}
	}

	p := v.Cross(axis)
	if p.LenSqr() < degenerateEpsilon {
		return mgl64.Vec3{0, 1, 0}
	}
	return p
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
