package kinetic

import (
	"errors"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/epa"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionResult of the narrow phase between BodyA and BodyB
type CollisionResult struct {
	BodyA BodyHandle
	BodyB BodyHandle
	// Normal is the unit direction BodyA has to move to leave BodyB
	Normal mgl64.Vec3
	Depth  float64
	// ContactA and ContactB are the deepest points of each body inside the other
	ContactA mgl64.Vec3
	ContactB mgl64.Vec3
	Occurred bool
}

// Collide runs the narrow phase between two bodies, whatever their type or
// cells. The bodies are not modified.
func (w *World) Collide(ha, hb BodyHandle) (CollisionResult, error) {
	a, err := w.Body(ha)
	if err != nil {
		return CollisionResult{}, err
	}
	b, err := w.Body(hb)
	if err != nil {
		return CollisionResult{}, err
	}

	return w.collide(ha, a, hb, b), nil
}

// collide runs GJK, then EPA on intersection. An iteration overrun in
// either is reported as no collision.
func (w *World) collide(ha BodyHandle, a *actor.RigidBody, hb BodyHandle, b *actor.RigidBody) CollisionResult {
	result := CollisionResult{BodyA: ha, BodyB: hb}

	w.Stats.NarrowTests++
	hit, err := w.detector.Search(a, b, &w.simplex)
	if err != nil {
		w.Stats.GJKOverruns++
		w.Logger.Warn("gjk: iteration limit reached, assuming no collision",
			"bodyA", ha, "bodyB", hb, "iterations", w.Config.GJKMaxIterations)
		return result
	}
	if !hit {
		return result
	}

	penetration, err := w.expander.Solve(a, b, &w.simplex)
	if err != nil {
		if errors.Is(err, epa.ErrMaxIterations) {
			w.Stats.EPAOverruns++
			w.Logger.Warn("epa: iteration limit reached, assuming no collision",
				"bodyA", ha, "bodyB", hb, "iterations", w.Config.EPAMaxIterations)
		}
		return result
	}

	result.Normal = penetration.Normal
	result.Depth = penetration.Depth
	result.ContactA = penetration.ContactA
	result.ContactB = penetration.ContactB
	result.Occurred = true
	return result
}
