package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vecApprox(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a.X()-b.X()) < eps &&
		math.Abs(a.Y()-b.Y()) < eps &&
		math.Abs(a.Z()-b.Z()) < eps
}

func rotatedY(name string, position, size mgl64.Vec3, angle float64) *Transform {
	t := NewTransformAt(name, position, size)
	world := mgl64.Translate3D(position.X(), position.Y(), position.Z()).Mul4(mgl64.HomogRotate3DY(angle))
	t.SetWorld(world)
	return t
}

func TestShapeKind_String(t *testing.T) {
	tests := []struct {
		kind ShapeKind
		want string
	}{
		{ShapeKindBox, "box"},
		{ShapeKindSphere, "sphere"},
		{ShapeKindConvexHullSet, "convex_hull_set"},
		{ShapeKindMesh, "mesh"},
		{ShapeKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ShapeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// ========== BOX TESTS ==========

func TestBoxFurthestPoint(t *testing.T) {
	transform := NewTransformAt("box", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, 4, 6})

	tests := []struct {
		name      string
		direction mgl64.Vec3
		want      mgl64.Vec3
	}{
		{"+X+Y+Z", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 4, 6}},
		{"-X-Y-Z", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{0, 0, 0}},
		{"+X only", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 4, 6}},
		{"mixed", mgl64.Vec3{-1, 1, -1}, mgl64.Vec3{0, 4, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Box{}.FurthestPoint(transform, tt.direction)
			if !vecApprox(got, tt.want, 1e-9) {
				t.Errorf("FurthestPoint(%v) = %v, want %v", tt.direction, got, tt.want)
			}
		})
	}
}

func TestBoxFurthestPointWithRotation(t *testing.T) {
	// 90° around Y maps local +X to world -Z
	transform := rotatedY("box", mgl64.Vec3{}, mgl64.Vec3{4, 2, 2}, math.Pi/2)

	got := Box{}.FurthestPoint(transform, mgl64.Vec3{0, 0, -1})
	if math.Abs(got.Z()-(-2)) > 1e-9 {
		t.Errorf("support along -Z = %v, want z = -2 (long axis rotated)", got)
	}

	got = Box{}.FurthestPoint(transform, mgl64.Vec3{1, 0, 0})
	if math.Abs(got.X()-1) > 1e-9 {
		t.Errorf("support along +X = %v, want x = 1 (short axis rotated)", got)
	}
}

func TestBoxBounds(t *testing.T) {
	tests := []struct {
		name      string
		transform *Transform
		wantHalf  mgl64.Vec3
		wantCtr   mgl64.Vec3
	}{
		{
			name:      "axis aligned",
			transform: NewTransformAt("box", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, 2, 2}),
			wantHalf:  mgl64.Vec3{1, 1, 1},
			wantCtr:   mgl64.Vec3{1, 2, 3},
		},
		{
			name:      "45° around Y",
			transform: rotatedY("box", mgl64.Vec3{}, mgl64.Vec3{2, 2, 2}, math.Pi/4),
			wantHalf:  mgl64.Vec3{math.Sqrt2, 1, math.Sqrt2},
			wantCtr:   mgl64.Vec3{},
		},
		{
			name:      "negative size",
			transform: NewTransformAt("box", mgl64.Vec3{}, mgl64.Vec3{-2, 2, 2}),
			wantHalf:  mgl64.Vec3{1, 1, 1},
			wantCtr:   mgl64.Vec3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aabb := Box{}.Bounds(tt.transform)
			if !vecApprox(aabb.HalfExtents, tt.wantHalf, 1e-9) {
				t.Errorf("HalfExtents = %v, want %v", aabb.HalfExtents, tt.wantHalf)
			}
			if !vecApprox(aabb.Center, tt.wantCtr, 1e-9) {
				t.Errorf("Center = %v, want %v", aabb.Center, tt.wantCtr)
			}
		})
	}
}

// ========== SPHERE TESTS ==========

func TestSphereRadius(t *testing.T) {
	transform := NewTransformAt("sphere", mgl64.Vec3{}, mgl64.Vec3{1, 3, 2})

	if got := (Sphere{}).Radius(transform); got != 1.5 {
		t.Errorf("Radius = %v, want 1.5 (half the largest size)", got)
	}
}

func TestSphereFurthestPoint(t *testing.T) {
	transform := NewTransformAt("sphere", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 2, 2})

	tests := []struct {
		name      string
		direction mgl64.Vec3
		want      mgl64.Vec3
	}{
		{"+X", mgl64.Vec3{5, 0, 0}, mgl64.Vec3{2, 0, 0}},
		{"-Y", mgl64.Vec3{0, -0.1, 0}, mgl64.Vec3{1, -1, 0}},
		{"diagonal", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1 + math.Sqrt2/2, math.Sqrt2 / 2, 0}},
		{"zero direction", mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sphere{}.FurthestPoint(transform, tt.direction)
			if !vecApprox(got, tt.want, 1e-9) {
				t.Errorf("FurthestPoint(%v) = %v, want %v", tt.direction, got, tt.want)
			}
		})
	}
}

func TestSphereBounds(t *testing.T) {
	transform := rotatedY("sphere", mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 1, 1}, 1.3)

	aabb := Sphere{}.Bounds(transform)
	if !vecApprox(aabb.HalfExtents, mgl64.Vec3{0.5, 0.5, 0.5}, 1e-9) {
		t.Errorf("HalfExtents = %v, want (0.5, 0.5, 0.5) regardless of rotation", aabb.HalfExtents)
	}
	if !vecApprox(aabb.Center, mgl64.Vec3{0, 5, 0}, 1e-9) {
		t.Errorf("Center = %v, want (0, 5, 0)", aabb.Center)
	}
}

// ========== MESH TESTS ==========

func TestConvexHullSet(t *testing.T) {
	library := MeshLibrary{
		"left":  {Positions: []mgl64.Vec3{{-1, 0, 0}, {-0.5, 0.5, 0}}},
		"right": {Positions: []mgl64.Vec3{{1, 0, 0}, {0.5, -0.5, 0}}},
	}
	set := NewConvexHullSet(library, "left", "right", "missing")

	if len(set.Hulls) != 2 {
		t.Fatalf("len(Hulls) = %d, want 2 (missing asset skipped)", len(set.Hulls))
	}

	transform := NewTransformAt("hulls", mgl64.Vec3{0, 0, 10}, mgl64.Vec3{2, 2, 2})

	// support is taken across both hulls, scaled by the world size
	if got := set.FurthestPoint(transform, mgl64.Vec3{1, 0, 0}); !vecApprox(got, mgl64.Vec3{2, 0, 10}, 1e-9) {
		t.Errorf("support +X = %v, want (2, 0, 10)", got)
	}
	if got := set.FurthestPoint(transform, mgl64.Vec3{-1, 0, 0}); !vecApprox(got, mgl64.Vec3{-2, 0, 10}, 1e-9) {
		t.Errorf("support -X = %v, want (-2, 0, 10)", got)
	}

	aabb := set.Bounds(transform)
	if !vecApprox(aabb.Min(), mgl64.Vec3{-2, -1, 10}, 1e-9) || !vecApprox(aabb.Max(), mgl64.Vec3{2, 1, 10}, 1e-9) {
		t.Errorf("Bounds = [%v, %v], want [(-2,-1,10), (2,1,10)]", aabb.Min(), aabb.Max())
	}
}

func TestMeshCollider(t *testing.T) {
	library := MeshLibrary{"cube": UnitCubeMesh()}
	mesh := NewMeshCollider(library, "cube")
	transform := NewTransformAt("mesh", mgl64.Vec3{3, 0, 0}, mgl64.Vec3{2, 2, 2})

	if mesh.Kind() != ShapeKindMesh {
		t.Errorf("Kind = %v, want mesh", mesh.Kind())
	}

	got := mesh.FurthestPoint(transform, mgl64.Vec3{1, 1, 1})
	if !vecApprox(got, mgl64.Vec3{4, 1, 1}, 1e-9) {
		t.Errorf("support = %v, want (4, 1, 1)", got)
	}

	// a unit cube mesh bounds like a Box on the same node
	meshBounds := mesh.Bounds(transform)
	boxBounds := Box{}.Bounds(transform)
	if !vecApprox(meshBounds.Center, boxBounds.Center, 1e-9) || !vecApprox(meshBounds.HalfExtents, boxBounds.HalfExtents, 1e-9) {
		t.Errorf("mesh bounds %v differ from box bounds %v", meshBounds, boxBounds)
	}
}

func TestMeshCollider_Empty(t *testing.T) {
	mesh := NewMeshCollider(MeshLibrary{}, "nothing")
	transform := NewTransformAt("mesh", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, 1})

	if !mesh.Mesh.Empty() {
		t.Fatal("unknown asset should give an empty mesh")
	}

	for _, dir := range []mgl64.Vec3{{1, 0, 0}, {0, -1, 0}, {1, 1, 1}} {
		if got := mesh.FurthestPoint(transform, dir); !vecApprox(got, mgl64.Vec3{1, 2, 3}, 1e-12) {
			t.Errorf("support %v = %v, want the node position", dir, got)
		}
	}
}

// ========== CONSISTENCY TESTS ==========

func TestShapeConsistency(t *testing.T) {
	library := MeshLibrary{"cube": UnitCubeMesh()}
	shapes := []Shape{Box{}, Sphere{}, NewConvexHullSet(library, "cube"), NewMeshCollider(library, "cube")}
	transform := rotatedY("node", mgl64.Vec3{-2, 1, 4}, mgl64.Vec3{1, 2, 3}, 0.7)

	directions := []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		{1, 1, 1}, {-1, 2, 0.5},
	}

	for _, shape := range shapes {
		t.Run(shape.Kind().String(), func(t *testing.T) {
			aabb := shape.Bounds(transform)
			grown := AABB{Center: aabb.Center, HalfExtents: aabb.HalfExtents.Add(mgl64.Vec3{1e-9, 1e-9, 1e-9})}

			for _, dir := range directions {
				p := shape.FurthestPoint(transform, dir)
				if !grown.ContainsPoint(p) {
					t.Errorf("support %v = %v lies outside bounds [%v, %v]", dir, p, aabb.Min(), aabb.Max())
				}
			}
		})
	}
}
