package actor

import (
	"errors"
	"math"

	"github.com/akmonengine/kinetic/grid"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies never move on their own (e.g. ground, walls)
	BodyTypeStatic
)

var (
	ErrNilTransform = errors.New("actor: nil transform")
	ErrNilShape     = errors.New("actor: nil shape")
)

type Material struct {
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`    // 0 = frictionless, 1 = tangential motion stopped on contact
	Restitution float64 `yaml:"restitution"` // 0 = no rebound, 1 = perfect restitution
}

// RigidBody is the collision component of a scene node
type RigidBody struct {
	Transform *Transform
	Shape     Shape
	BodyType  BodyType
	Material  Material

	CollisionsEnabled bool
	GravityFactor     float64

	Velocity mgl64.Vec3 // Linear velocity (m/s)
	// NetForce is rebuilt every tick from gravity, drag and applied forces
	NetForce mgl64.Vec3

	// Cells the body is registered in, owned by the world's spatial hash
	Cells []grid.CellKey

	mass             float64
	aabb             AABB
	accumulatedForce mgl64.Vec3
}

// NewRigidBody creates a body with collisions enabled and full gravity, and
// computes its AABB and mass.
func NewRigidBody(transform *Transform, shape Shape, bodyType BodyType, material Material) (*RigidBody, error) {
	if transform == nil {
		return nil, ErrNilTransform
	}
	if shape == nil {
		return nil, ErrNilShape
	}

	rb := &RigidBody{
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Material:          material,
		CollisionsEnabled: true,
		GravityFactor:     1,
	}
	rb.RecomputeAABB()

	return rb, nil
}

func (rb *RigidBody) IsDynamic() bool {
	return rb.BodyType == BodyTypeDynamic
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

// AABB returns the cached world bounds
func (rb *RigidBody) AABB() AABB {
	return rb.aabb
}

// RecomputeAABB refreshes the world bounds from the transform and keeps
// mass = density * volume(bounds) in step with them.
func (rb *RigidBody) RecomputeAABB() AABB {
	rb.aabb = rb.Shape.Bounds(rb.Transform)
	rb.mass = rb.Material.Density * rb.aabb.Volume()
	return rb.aabb
}

// FurthestPoint is the support function of the body in world space
func (rb *RigidBody) FurthestPoint(direction mgl64.Vec3) mgl64.Vec3 {
	return rb.Shape.FurthestPoint(rb.Transform, direction)
}

func (rb *RigidBody) Position() mgl64.Vec3 {
	return rb.Transform.Position()
}

// AddForce accumulates a force (N) applied during the next tick
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.IsDynamic() {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// ComputeForces rebuilds NetForce: weight, a velocity-squared drag opposing
// motion, and the forces applied since the previous tick.
func (rb *RigidBody) ComputeForces(gravity mgl64.Vec3, dragCoefficient float64) {
	rb.NetForce = mgl64.Vec3{}
	if !rb.IsDynamic() {
		return
	}

	rb.mass = rb.Material.Density * rb.aabb.Volume()

	weight := gravity.Mul(rb.mass * rb.GravityFactor)
	drag := rb.Velocity.Mul(-dragCoefficient * rb.Velocity.Len())

	rb.NetForce = weight.Add(drag).Add(rb.accumulatedForce)
	rb.accumulatedForce = mgl64.Vec3{}
}

// Integrate advances velocity and position by dt. Non-finite or excessive
// velocities are reset to zero, non-finite positions to the origin; the
// returned flags report which reset happened.
func (rb *RigidBody) Integrate(dt float64, maxVelocity float64) (velocityReset, positionReset bool) {
	if !rb.IsDynamic() {
		return false, false
	}

	if rb.mass > 0 && !math.IsInf(rb.mass, 0) {
		rb.Velocity = rb.Velocity.Add(rb.NetForce.Mul(dt / rb.mass))
	}
	if !finite(rb.Velocity) || rb.Velocity.Len() > maxVelocity {
		rb.Velocity = mgl64.Vec3{}
		velocityReset = true
	}

	position := rb.Transform.Position().Add(rb.Velocity.Mul(dt))
	if !finite(position) {
		position = mgl64.Vec3{}
		positionReset = true
	}
	rb.Transform.SetPosition(position)

	return velocityReset, positionReset
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
