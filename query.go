package kinetic

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/grid"
	"github.com/akmonengine/kinetic/intersect"
	"github.com/go-gl/mathgl/mgl64"
)

// RaycastResult is the body hit by a ray
type RaycastResult struct {
	Body     BodyHandle
	Node     *actor.Transform
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	// Time is the fraction of the ray travelled before the hit
	Time float64
}

// Raycast casts the segment origin + t*direction, t in [0, 1], against the
// body AABBs. Cells are walked in ray order and only the candidates of the
// first cell holding a hit are considered; the nearest of them is returned.
// A ray starting inside a body hits it at t = 0 with the normal facing back
// along the ray.
func (w *World) Raycast(origin, direction mgl64.Vec3, ignore ...*actor.Transform) (RaycastResult, bool) {
	if direction.LenSqr() == 0 {
		return RaycastResult{}, false
	}

	var best RaycastResult
	found := false

	w.hash.Traverse(origin, direction, 1, func(key grid.CellKey) bool {
		for _, h := range w.hash.Members(key) {
			body, ok := w.bodies.get(h)
			if !ok || !body.CollisionsEnabled || ignored(body.Transform, ignore) {
				continue
			}

			aabb := body.AABB()
			hit := intersect.RayAabb(origin, direction, aabb.Center, aabb.Size(), mgl64.Vec3{})
			if !hit.Occurred || hit.Time > 1 {
				continue
			}

			result := RaycastResult{Body: h, Node: body.Transform, Position: hit.Position, Normal: hit.Normal, Time: hit.Time}
			if hit.Time < 0 {
				result.Time = 0
				result.Position = origin
				result.Normal = direction.Normalize().Mul(-1)
			}

			if !found || result.Time < best.Time || (result.Time == best.Time && h.index < best.Body.index) {
				best = result
				found = true
			}
		}

		// stop at the first cell that yields any hit
		return !found
	})

	return best, found
}

// AabbQuery returns the scene nodes under Root whose box, given by their
// world position and world size, overlaps the box at position of the given
// size.
func (w *World) AabbQuery(position, size mgl64.Vec3, ignore ...*actor.Transform) []*actor.Transform {
	return GetObjectsInAabb(w.Root, position, size, ignore...)
}

// GetObjectsInAabb scans every descendant of root and tests it against the
// box. The spatial hash is not used.
func GetObjectsInAabb(root *actor.Transform, position, size mgl64.Vec3, ignore ...*actor.Transform) []*actor.Transform {
	var objects []*actor.Transform

	root.Walk(func(node *actor.Transform) bool {
		if node == root || ignored(node, ignore) {
			return true
		}
		if intersect.AabbAabb(position, size, node.Position(), absVec3(node.WorldSize())).Occurred {
			objects = append(objects, node)
		}
		return true
	})

	return objects
}

func ignored(node *actor.Transform, ignore []*actor.Transform) bool {
	for _, n := range ignore {
		if n == node {
			return true
		}
	}
	return false
}

func absVec3(v mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		if v[i] < 0 {
			v[i] = -v[i]
		}
	}
	return v
}
