package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind represents the type of collision shape
type ShapeKind int

const (
	ShapeKindBox ShapeKind = iota
	ShapeKindSphere
	ShapeKindConvexHullSet
	ShapeKindMesh
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeKindBox:
		return "box"
	case ShapeKindSphere:
		return "sphere"
	case ShapeKindConvexHullSet:
		return "convex_hull_set"
	case ShapeKindMesh:
		return "mesh"
	}
	return "unknown"
}

// Shape is the interface that all collision shapes must implement. Shapes
// carry no placement: the node's world matrix and world size place them.
type Shape interface {
	Kind() ShapeKind
	// FurthestPoint returns the world-space point of the shape that maximizes
	// the projection onto direction
	FurthestPoint(transform *Transform, direction mgl64.Vec3) mgl64.Vec3
	// Bounds calculates the world axis-aligned bounding box of the shape
	Bounds(transform *Transform) AABB
}

// Box fills the node's world size, oriented by its world rotation
type Box struct{}

func (Box) Kind() ShapeKind { return ShapeKindBox }

func (Box) FurthestPoint(transform *Transform, direction mgl64.Vec3) mgl64.Vec3 {
	half := halfExtents(transform)
	rotation := transform.Rotation()

	// direction in the box frame, inverse of a rotation is its transpose
	local := rotation.Transpose().Mul3x1(direction)

	corner := half
	for i := range 3 {
		if local[i] < 0 {
			corner[i] = -corner[i]
		}
	}

	return transform.Position().Add(rotation.Mul3x1(corner))
}

func (Box) Bounds(transform *Transform) AABB {
	h := halfExtents(transform)
	rotation := transform.Rotation()
	position := transform.Position()

	corners := [8]mgl64.Vec3{
		{-h.X(), -h.Y(), -h.Z()},
		{+h.X(), -h.Y(), -h.Z()},
		{-h.X(), +h.Y(), -h.Z()},
		{+h.X(), +h.Y(), -h.Z()},
		{-h.X(), -h.Y(), +h.Z()},
		{+h.X(), -h.Y(), +h.Z()},
		{-h.X(), +h.Y(), +h.Z()},
		{+h.X(), +h.Y(), +h.Z()},
	}

	worldCorner := rotation.Mul3x1(corners[0]).Add(position)
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = rotation.Mul3x1(corners[i]).Add(position)
		for axis := range 3 {
			min[axis] = math.Min(min[axis], worldCorner[axis])
			max[axis] = math.Max(max[axis], worldCorner[axis])
		}
	}

	return AABBFromMinMax(min, max)
}

// Sphere is inscribed in the node's world size: its radius is half the
// largest world size component
type Sphere struct{}

func (Sphere) Kind() ShapeKind { return ShapeKindSphere }

func (Sphere) Radius(transform *Transform) float64 {
	h := halfExtents(transform)
	return math.Max(h.X(), math.Max(h.Y(), h.Z()))
}

func (s Sphere) FurthestPoint(transform *Transform, direction mgl64.Vec3) mgl64.Vec3 {
	center := transform.Position()
	length := direction.Len()
	if length < 1e-12 {
		return center
	}

	return center.Add(direction.Mul(s.Radius(transform) / length))
}

func (s Sphere) Bounds(transform *Transform) AABB {
	r := s.Radius(transform)
	return AABB{Center: transform.Position(), HalfExtents: mgl64.Vec3{r, r, r}}
}

// ConvexHullSet treats the vertices of all its hulls as one compound convex
// shape: the support point is taken across every hull combined.
type ConvexHullSet struct {
	Hulls []MeshData
}

// NewConvexHullSet resolves the assets through source. Missing assets are
// skipped.
func NewConvexHullSet(source MeshSource, assets ...string) *ConvexHullSet {
	set := &ConvexHullSet{}
	for _, asset := range assets {
		if mesh, ok := source.CollisionMesh(asset); ok {
			set.Hulls = append(set.Hulls, mesh)
		}
	}
	return set
}

func (*ConvexHullSet) Kind() ShapeKind { return ShapeKindConvexHullSet }

func (c *ConvexHullSet) FurthestPoint(transform *Transform, direction mgl64.Vec3) mgl64.Vec3 {
	return furthestVertex(transform, direction, c.Hulls...)
}

func (c *ConvexHullSet) Bounds(transform *Transform) AABB {
	return supportBounds(c, transform)
}

// MeshCollider uses the vertices of a single render mesh as its hull
type MeshCollider struct {
	Mesh MeshData
}

func NewMeshCollider(source MeshSource, asset string) *MeshCollider {
	mesh, _ := source.CollisionMesh(asset)
	return &MeshCollider{Mesh: mesh}
}

func (*MeshCollider) Kind() ShapeKind { return ShapeKindMesh }

func (m *MeshCollider) FurthestPoint(transform *Transform, direction mgl64.Vec3) mgl64.Vec3 {
	return furthestVertex(transform, direction, m.Mesh)
}

func (m *MeshCollider) Bounds(transform *Transform) AABB {
	return supportBounds(m, transform)
}

func halfExtents(transform *Transform) mgl64.Vec3 {
	s := transform.WorldSize()
	return mgl64.Vec3{math.Abs(s[0]) / 2, math.Abs(s[1]) / 2, math.Abs(s[2]) / 2}
}

// furthestVertex scans every vertex in world space. Without any vertex the
// node's position is returned, a degenerate point shape.
func furthestVertex(transform *Transform, direction mgl64.Vec3, meshes ...MeshData) mgl64.Vec3 {
	world := transform.World()
	size := transform.WorldSize()

	best := transform.Position()
	bestDot := math.Inf(-1)
	for _, mesh := range meshes {
		for _, p := range mesh.Positions {
			scaled := mgl64.Vec3{p[0] * size[0], p[1] * size[1], p[2] * size[2]}
			v := world.Mul4x1(scaled.Vec4(1)).Vec3()
			if d := v.Dot(direction); d > bestDot {
				bestDot = d
				best = v
			}
		}
	}
	return best
}

// supportBounds derives the box from the six axis support points
func supportBounds(shape Shape, transform *Transform) AABB {
	var min, max mgl64.Vec3
	for axis := range 3 {
		var dir mgl64.Vec3
		dir[axis] = 1
		max[axis] = shape.FurthestPoint(transform, dir)[axis]
		min[axis] = shape.FurthestPoint(transform, dir.Mul(-1))[axis]
	}
	return AABBFromMinMax(min, max)
}
