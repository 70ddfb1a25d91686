package constraint

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultShallowPenetration is the deepest overlap fully corrected in a
	// single tick
	DefaultShallowPenetration = 0.5

	// DefaultMaxCorrection caps the per-tick translation of a deep overlap
	DefaultMaxCorrection = 0.1

	// DefaultElasticity scales the push between two dynamic bodies
	DefaultElasticity = 10.0
)

// Settings tune contact resolution
type Settings struct {
	ShallowPenetration float64
	MaxCorrection      float64
	Elasticity         float64
}

func DefaultSettings() Settings {
	return Settings{
		ShallowPenetration: DefaultShallowPenetration,
		MaxCorrection:      DefaultMaxCorrection,
		Elasticity:         DefaultElasticity,
	}
}

// Contact between BodyA, the body being corrected, and BodyB.
// Normal is the unit direction A has to move to leave B.
type Contact struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Normal mgl64.Vec3
	Depth  float64
}

// Resolve corrects BodyA only. Against a static body the velocity and
// position are fixed up; against a dynamic body A is pushed away through its
// velocity. A dynamic pair is expected to be resolved once from each side.
func (c *Contact) Resolve(settings Settings) {
	if c.BodyA == nil || c.BodyB == nil || !c.BodyA.IsDynamic() {
		return
	}

	if c.BodyB.IsDynamic() {
		c.resolveDynamic(settings)
	} else {
		c.resolveStatic(settings)
	}
}

// resolveStatic removes the approaching part of the normal velocity, scaled
// by restitution, damps the tangential velocity by friction and translates A
// out of B.
func (c *Contact) resolveStatic(settings Settings) {
	a := c.BodyA
	n := c.Normal

	restitution := ComputeRestitution(a.Material, c.BodyB.Material)
	friction := Clamp(ComputeFriction(a.Material, c.BodyB.Material), 0, 1)

	vn := a.Velocity.Dot(n)
	normal := n.Mul(vn)
	tangent := a.Velocity.Sub(normal)

	if vn < 0 {
		normal = n.Mul(-vn * restitution)
	}
	a.Velocity = normal.Add(tangent.Mul(1 - friction))
	clampSmallVelocities(a)

	correction := c.Depth
	if correction > settings.ShallowPenetration {
		correction = settings.MaxCorrection
	}
	if correction > 0 {
		a.Transform.Translate(n.Mul(correction))
	}
}

// resolveDynamic adds Normal * Depth * Elasticity to A's velocity. This is
// not momentum conserving.
func (c *Contact) resolveDynamic(settings Settings) {
	a := c.BodyA
	a.Velocity = a.Velocity.Add(c.Normal.Mul(c.Depth * settings.Elasticity))
}
