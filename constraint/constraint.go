package constraint

import (
	"math"

	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// Constraint corrects the bodies it holds, once per tick
type Constraint interface {
	Resolve(settings Settings)
}

func ComputeRestitution(matA, matB actor.Material) float64 {
	// Average: a bouncy body on a dead surface bounces half as much
	return (matA.Restitution + matB.Restitution) / 2.0
}

func ComputeFriction(matA, matB actor.Material) float64 {
	// Geometric mean, standard in physics engines
	return math.Sqrt(math.Max(0, matA.Friction*matB.Friction))
}

// Clamp limits v to [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
}
