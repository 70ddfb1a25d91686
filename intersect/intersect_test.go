package intersect

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vec3ApproxEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return math.Abs(a.X()-b.X()) < epsilon &&
		math.Abs(a.Y()-b.Y()) < epsilon &&
		math.Abs(a.Z()-b.Z()) < epsilon
}

func TestAabbAabb_NoOverlap(t *testing.T) {
	tests := []struct {
		name string
		posB mgl64.Vec3
	}{
		{"separated on x", mgl64.Vec3{3, 0, 0}},
		{"separated on y", mgl64.Vec3{0, -2.5, 0}},
		{"separated on z only", mgl64.Vec3{0.5, 0.5, 4}},
		{"face touching", mgl64.Vec3{2, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := AabbAabb(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}, tt.posB, mgl64.Vec3{2, 2, 2})
			if hit.Occurred {
				t.Errorf("expected no overlap, got %+v", hit)
			}
		})
	}
}

func TestAabbAabb_Overlap(t *testing.T) {
	tests := []struct {
		name           string
		posB           mgl64.Vec3
		expectedDepth  float64
		expectedNormal mgl64.Vec3
	}{
		{"B on +X", mgl64.Vec3{1.5, 0, 0}, 0.5, mgl64.Vec3{-1, 0, 0}},
		{"B on -X", mgl64.Vec3{-1.75, 0, 0}, 0.25, mgl64.Vec3{1, 0, 0}},
		{"B on +Y", mgl64.Vec3{0, 1.9, 0}, 0.1, mgl64.Vec3{0, -1, 0}},
		{"B on -Z", mgl64.Vec3{0, 0, -1.2}, 0.8, mgl64.Vec3{0, 0, 1}},
		{"smallest axis wins", mgl64.Vec3{1.5, 1.2, 0}, 0.5, mgl64.Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := AabbAabb(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}, tt.posB, mgl64.Vec3{2, 2, 2})
			if !hit.Occurred {
				t.Fatal("expected overlap")
			}
			if math.Abs(hit.Depth-tt.expectedDepth) > 1e-9 {
				t.Errorf("Depth = %v, want %v", hit.Depth, tt.expectedDepth)
			}
			if hit.Normal != tt.expectedNormal {
				t.Errorf("Normal = %v, want %v", hit.Normal, tt.expectedNormal)
			}
			if !vec3ApproxEqual(hit.Delta, tt.expectedNormal.Mul(tt.expectedDepth), 1e-9) {
				t.Errorf("Delta = %v, want Normal * Depth", hit.Delta)
			}
		})
	}
}

func TestAabbAabb_ContactPosition(t *testing.T) {
	hit := AabbAabb(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}, mgl64.Vec3{1.5, 0.25, -0.5}, mgl64.Vec3{2, 2, 2})

	// on A's +X face, other axes taken from B
	want := mgl64.Vec3{1, 0.25, -0.5}
	if !vec3ApproxEqual(hit.Position, want, 1e-9) {
		t.Errorf("Position = %v, want %v", hit.Position, want)
	}
}

func TestRayAabb(t *testing.T) {
	boxSize := mgl64.Vec3{2, 2, 2}

	tests := []struct {
		name             string
		origin, dir      mgl64.Vec3
		expectHit        bool
		expectedTime     float64
		expectedPosition mgl64.Vec3
		expectedNormal   mgl64.Vec3
	}{
		{
			name: "along +X", origin: mgl64.Vec3{-5, 0, 0}, dir: mgl64.Vec3{1, 0, 0},
			expectHit: true, expectedTime: 4, expectedPosition: mgl64.Vec3{-1, 0, 0}, expectedNormal: mgl64.Vec3{-1, 0, 0},
		},
		{
			name: "down onto the top face", origin: mgl64.Vec3{0.5, 10, 0}, dir: mgl64.Vec3{0, -2, 0},
			expectHit: true, expectedTime: 4.5, expectedPosition: mgl64.Vec3{0.5, 1, 0}, expectedNormal: mgl64.Vec3{0, 1, 0},
		},
		{
			name: "diagonal", origin: mgl64.Vec3{-3, -3, 0}, dir: mgl64.Vec3{1, 1, 0},
			expectHit: true, expectedTime: 2, expectedPosition: mgl64.Vec3{-1, -1, 0}, expectedNormal: mgl64.Vec3{-1, 0, 0},
		},
		{
			name: "parallel and outside", origin: mgl64.Vec3{-5, 3, 0}, dir: mgl64.Vec3{1, 0, 0},
		},
		{
			name: "box behind the ray", origin: mgl64.Vec3{5, 0, 0}, dir: mgl64.Vec3{1, 0, 0},
		},
		{
			name: "pointing away", origin: mgl64.Vec3{-5, 0, 0}, dir: mgl64.Vec3{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := RayAabb(tt.origin, tt.dir, mgl64.Vec3{}, boxSize, mgl64.Vec3{})
			if hit.Occurred != tt.expectHit {
				t.Fatalf("Occurred = %v, want %v", hit.Occurred, tt.expectHit)
			}
			if !tt.expectHit {
				return
			}
			if math.Abs(hit.Time-tt.expectedTime) > 1e-9 {
				t.Errorf("Time = %v, want %v", hit.Time, tt.expectedTime)
			}
			if !vec3ApproxEqual(hit.Position, tt.expectedPosition, 1e-9) {
				t.Errorf("Position = %v, want %v", hit.Position, tt.expectedPosition)
			}
			if hit.Normal != tt.expectedNormal {
				t.Errorf("Normal = %v, want %v", hit.Normal, tt.expectedNormal)
			}
		})
	}
}

func TestRayAabb_OriginInside(t *testing.T) {
	hit := RayAabb(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{2, 2, 2}, mgl64.Vec3{})
	if !hit.Occurred {
		t.Fatal("expected a hit from inside the box")
	}
	if hit.Time >= 0 {
		t.Errorf("Time = %v, want negative entry time", hit.Time)
	}
}

func TestRayAabb_Padding(t *testing.T) {
	hit := RayAabb(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{2, 2, 2}, mgl64.Vec3{0.5, 0.5, 0.5})
	if !hit.Occurred || math.Abs(hit.Time-3.5) > 1e-9 {
		t.Errorf("got %+v, want entry at t = 3.5", hit)
	}
}

func TestSweptAabbAabb(t *testing.T) {
	size := mgl64.Vec3{1, 1, 1}

	t.Run("zero delta overlapping", func(t *testing.T) {
		sweep := SweptAabbAabb(mgl64.Vec3{0.5, 0, 0}, size, mgl64.Vec3{}, mgl64.Vec3{}, size)
		if !sweep.Hit.Occurred || sweep.Time != 0 {
			t.Errorf("got %+v, want static overlap at time 0", sweep)
		}
	})

	t.Run("zero delta apart", func(t *testing.T) {
		sweep := SweptAabbAabb(mgl64.Vec3{3, 0, 0}, size, mgl64.Vec3{}, mgl64.Vec3{}, size)
		if sweep.Hit.Occurred || sweep.Time != 1 {
			t.Errorf("got %+v, want no hit and time 1", sweep)
		}
	})

	t.Run("moving into the box", func(t *testing.T) {
		sweep := SweptAabbAabb(mgl64.Vec3{-5, 0, 0}, size, mgl64.Vec3{8, 0, 0}, mgl64.Vec3{}, size)
		if !sweep.Hit.Occurred {
			t.Fatal("expected a hit")
		}
		// contact when A's right face (x + 0.5) reaches B's left face (-0.5)
		if math.Abs(sweep.Time-0.5) > 1e-6 {
			t.Errorf("Time = %v, want 0.5", sweep.Time)
		}
		if math.Abs(sweep.Position.X()-(-1)) > 1e-6 {
			t.Errorf("Position = %v, want x = -1", sweep.Position)
		}
		if sweep.Hit.Normal != (mgl64.Vec3{-1, 0, 0}) {
			t.Errorf("Normal = %v, want (-1,0,0)", sweep.Hit.Normal)
		}
	})

	t.Run("stopping short", func(t *testing.T) {
		sweep := SweptAabbAabb(mgl64.Vec3{-5, 0, 0}, size, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}, size)
		if sweep.Hit.Occurred || sweep.Time != 1 {
			t.Errorf("got %+v, want no hit", sweep)
		}
		if sweep.Position != (mgl64.Vec3{-3, 0, 0}) {
			t.Errorf("Position = %v, want the full delta", sweep.Position)
		}
	})
}
