// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects a collision to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//   - Witness points (where each shape reaches deepest into the other)
//
// The algorithm expands a polytope (starting from GJK's final simplex) toward the boundary
// of the Minkowski difference, finding the face closest to the origin, which gives the
// Minimum Translation Vector (MTV) to separate the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"log/slog"
	"math"

	"github.com/akmonengine/kinetic/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations limits polytope expansion. Reaching it reports no
	// collision.
	DefaultMaxIterations = 10000

	// ConvergenceTolerance defines when EPA has converged: the support point
	// along the closest face normal is not further than this from the face.
	ConvergenceTolerance = 0.001

	// DepthBias is added to the reported depth so that resolved bodies end up
	// slightly apart instead of exactly touching.
	DepthBias = 0.001

	// MinimumDepth is reported when no face ever yields a usable distance
	MinimumDepth = 0.001
)

var (
	// ErrIncompleteSimplex is returned when the simplex is not a tetrahedron
	ErrIncompleteSimplex = errors.New("epa: simplex is not a tetrahedron")
	// ErrMaxIterations is returned when the polytope never converged
	ErrMaxIterations = errors.New("epa: iteration limit reached")
)

// Result of a penetration query between A and B
type Result struct {
	// Normal is the unit direction A has to move to separate from B
	Normal mgl64.Vec3
	Depth  float64
	// ContactA and ContactB are the witness points on A and B
	ContactA mgl64.Vec3
	ContactB mgl64.Vec3
}

// Expander runs EPA with a bounded number of iterations
type Expander struct {
	MaxIterations int
	Logger        *slog.Logger
}

// Penetration runs EPA with default settings
func Penetration(a, b gjk.Collider, simplex *gjk.Simplex) (Result, bool) {
	return Expander{}.Expand(a, b, simplex)
}

// Expand computes the penetration of two intersecting colliders. It reports
// false when Solve fails, logging a warning if the iteration ceiling was hit.
func (e Expander) Expand(a, b gjk.Collider, simplex *gjk.Simplex) (Result, bool) {
	result, err := e.Solve(a, b, simplex)
	if errors.Is(err, ErrMaxIterations) {
		e.logger().Warn("epa: assuming no collision", "error", err, "iterations", e.maxIterations())
	}
	return result, err == nil
}

// Solve expands the GJK simplex into the closest face of the Minkowski difference.
//
// Algorithm overview:
//  1. Start with simplex from GJK (tetrahedron containing origin)
//  2. Build initial polytope faces from simplex
//  3. Find face closest to origin
//  4. Get support point in face normal direction
//  5. If converged (new point doesn't improve distance) → done
//  6. Otherwise, expand polytope by adding support point
//  7. Repeat from step 3
//
// When no face ever has a finite distance, the minimal depth along +Y is
// reported instead of an undefined value.
func (e Expander) Solve(a, b gjk.Collider, simplex *gjk.Simplex) (Result, error) {
	if simplex.Len() < 4 {
		return Result{}, ErrIncompleteSimplex
	}

	p := polytopePool.Get().(*polytope)
	defer polytopePool.Put(p)
	p.build(simplex)

	for range e.maxIterations() {
		index := p.closest()
		if index < 0 {
			break
		}

		closest := p.faces[index]
		if !isFinite(closest.distance) {
			// only degenerate faces remain
			break
		}

		support := gjk.Support(a, b, closest.normal)
		if support.Point.Dot(closest.normal)-closest.distance <= ConvergenceTolerance {
			return p.result(closest), nil
		}

		p.expand(support, index)
	}

	if index := p.closest(); index >= 0 && isFinite(p.faces[index].distance) {
		return Result{}, ErrMaxIterations
	}

	return p.fallback(), nil
}

func (e Expander) maxIterations() int {
	if e.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return e.MaxIterations
}

func (e Expander) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// result turns the closest face into a contact. The projection of the origin
// on the face is expressed in barycentric coordinates, which weight the
// witness points of the face vertices.
func (p *polytope) result(f face) Result {
	v0 := p.vertices[f.indices[0]]
	v1 := p.vertices[f.indices[1]]
	v2 := p.vertices[f.indices[2]]

	u, v, w := barycentric(f.normal.Mul(f.distance), v0.Point, v1.Point, v2.Point)

	return Result{
		Normal:   f.normal.Mul(-1),
		Depth:    f.distance + DepthBias,
		ContactA: v0.A.Mul(u).Add(v1.A.Mul(v)).Add(v2.A.Mul(w)),
		ContactB: v0.B.Mul(u).Add(v1.B.Mul(v)).Add(v2.B.Mul(w)),
	}
}

// fallback reports the minimal depth along +Y, located at the first vertex
func (p *polytope) fallback() Result {
	r := Result{
		Normal: mgl64.Vec3{0, 1, 0},
		Depth:  MinimumDepth,
	}
	if len(p.vertices) > 0 {
		r.ContactA = p.vertices[0].A
		r.ContactB = p.vertices[0].B
	}
	return r
}

// barycentric returns the coordinates of point in the triangle (a, b, c).
// See Ericson, Real-Time Collision Detection, 3.4.
func barycentric(point, a, b, c mgl64.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := point.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 1, 0, 0
	}

	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
