package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func createBody(t *testing.T, position mgl64.Vec3, bodyType actor.BodyType, material actor.Material) *actor.RigidBody {
	t.Helper()
	rb, err := actor.NewRigidBody(actor.NewTransformAt("body", position, mgl64.Vec3{1, 1, 1}), actor.Box{}, bodyType, material)
	if err != nil {
		t.Fatalf("NewRigidBody: %v", err)
	}
	return rb
}

func vec3ApproxEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return math.Abs(a.X()-b.X()) < epsilon &&
		math.Abs(a.Y()-b.Y()) < epsilon &&
		math.Abs(a.Z()-b.Z()) < epsilon
}

func TestComputeRestitution(t *testing.T) {
	tests := []struct {
		name     string
		matA     actor.Material
		matB     actor.Material
		expected float64
	}{
		{
			name:     "both zero restitution",
			matA:     actor.Material{Restitution: 0.0},
			matB:     actor.Material{Restitution: 0.0},
			expected: 0.0,
		},
		{
			name:     "one zero, one high restitution - returns average",
			matA:     actor.Material{Restitution: 0.0},
			matB:     actor.Material{Restitution: 0.8},
			expected: 0.4,
		},
		{
			name:     "both same restitution",
			matA:     actor.Material{Restitution: 0.5},
			matB:     actor.Material{Restitution: 0.5},
			expected: 0.5,
		},
		{
			name:     "both perfect restitution",
			matA:     actor.Material{Restitution: 1.0},
			matB:     actor.Material{Restitution: 1.0},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeRestitution(tt.matA, tt.matB)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ComputeRestitution() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestComputeFriction(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"both zero", 0, 0, 0},
		{"one zero", 0, 0.8, 0},
		{"geometric mean", 0.4, 0.9, 0.6},
		{"negative product", -0.5, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeFriction(actor.Material{Friction: tt.a}, actor.Material{Friction: tt.b})
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ComputeFriction() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 1, 3); got != 3 {
		t.Errorf("Clamp(5, 1, 3) = %v, want 3", got)
	}
	if got := Clamp(-0.5, 0.0, 1.0); got != 0 {
		t.Errorf("Clamp(-0.5, 0, 1) = %v, want 0", got)
	}
	if got := Clamp(0.25, 0.0, 1.0); got != 0.25 {
		t.Errorf("Clamp(0.25, 0, 1) = %v, want 0.25", got)
	}
}

func TestContact_ResolveStatic(t *testing.T) {
	tests := []struct {
		name             string
		material         actor.Material
		velocity         mgl64.Vec3
		depth            float64
		expectedVelocity mgl64.Vec3
		expectedPosition mgl64.Vec3
	}{
		{
			name:             "inelastic landing stops the normal velocity",
			material:         actor.Material{Density: 1},
			velocity:         mgl64.Vec3{0, -3, 0},
			depth:            0.1,
			expectedVelocity: mgl64.Vec3{0, 0, 0},
			expectedPosition: mgl64.Vec3{0, 0.6, 0},
		},
		{
			name:             "restitution bounces",
			material:         actor.Material{Density: 1, Restitution: 0.5},
			velocity:         mgl64.Vec3{0, -4, 0},
			depth:            0.1,
			expectedVelocity: mgl64.Vec3{0, 2, 0},
			expectedPosition: mgl64.Vec3{0, 0.6, 0},
		},
		{
			name:             "friction damps sliding",
			material:         actor.Material{Density: 1, Friction: 0.5},
			velocity:         mgl64.Vec3{2, -1, 0},
			depth:            0.1,
			expectedVelocity: mgl64.Vec3{1, 0, 0},
			expectedPosition: mgl64.Vec3{0, 0.6, 0},
		},
		{
			name:             "separating velocity is kept",
			material:         actor.Material{Density: 1},
			velocity:         mgl64.Vec3{0, 2, 0},
			depth:            0.1,
			expectedVelocity: mgl64.Vec3{0, 2, 0},
			expectedPosition: mgl64.Vec3{0, 0.6, 0},
		},
		{
			name:             "deep overlap is corrected gradually",
			material:         actor.Material{Density: 1},
			velocity:         mgl64.Vec3{},
			depth:            0.8,
			expectedVelocity: mgl64.Vec3{},
			expectedPosition: mgl64.Vec3{0, 0.5 + DefaultMaxCorrection, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := createBody(t, mgl64.Vec3{0, 0.5, 0}, actor.BodyTypeDynamic, tt.material)
			b := createBody(t, mgl64.Vec3{0, -0.5, 0}, actor.BodyTypeStatic, tt.material)
			a.Velocity = tt.velocity

			c := &Contact{BodyA: a, BodyB: b, Normal: mgl64.Vec3{0, 1, 0}, Depth: tt.depth}
			c.Resolve(DefaultSettings())

			if !vec3ApproxEqual(a.Velocity, tt.expectedVelocity, 1e-9) {
				t.Errorf("Velocity = %v, want %v", a.Velocity, tt.expectedVelocity)
			}
			if !vec3ApproxEqual(a.Position(), tt.expectedPosition, 1e-9) {
				t.Errorf("Position = %v, want %v", a.Position(), tt.expectedPosition)
			}
			if b.Position() != (mgl64.Vec3{0, -0.5, 0}) {
				t.Errorf("static body moved to %v", b.Position())
			}
		})
	}
}

func TestContact_ResolveDynamic(t *testing.T) {
	a := createBody(t, mgl64.Vec3{0, 0, 0}, actor.BodyTypeDynamic, actor.Material{Density: 1})
	b := createBody(t, mgl64.Vec3{0.9, 0, 0}, actor.BodyTypeDynamic, actor.Material{Density: 1})
	a.Velocity = mgl64.Vec3{1, 0, 0}

	c := &Contact{BodyA: a, BodyB: b, Normal: mgl64.Vec3{-1, 0, 0}, Depth: 0.1}
	c.Resolve(Settings{Elasticity: 10})

	// 1 + (-1 * 0.1 * 10)
	if !vec3ApproxEqual(a.Velocity, mgl64.Vec3{0, 0, 0}, 1e-9) {
		t.Errorf("A velocity = %v, want 0", a.Velocity)
	}
	if a.Position() != (mgl64.Vec3{0, 0, 0}) {
		t.Errorf("A was translated to %v", a.Position())
	}
	if b.Velocity != (mgl64.Vec3{}) {
		t.Errorf("B velocity = %v, only A is corrected", b.Velocity)
	}
}

func TestContact_StaticBodyIsNeverCorrected(t *testing.T) {
	a := createBody(t, mgl64.Vec3{0, 0, 0}, actor.BodyTypeStatic, actor.Material{Density: 1})
	b := createBody(t, mgl64.Vec3{0, 0.5, 0}, actor.BodyTypeDynamic, actor.Material{Density: 1})

	c := &Contact{BodyA: a, BodyB: b, Normal: mgl64.Vec3{0, -1, 0}, Depth: 0.5}
	c.Resolve(DefaultSettings())

	if a.Position() != (mgl64.Vec3{0, 0, 0}) || a.Velocity != (mgl64.Vec3{}) {
		t.Errorf("static body changed: position %v velocity %v", a.Position(), a.Velocity)
	}
}
