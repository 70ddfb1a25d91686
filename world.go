package kinetic

import (
	"cmp"
	"errors"
	"log/slog"
	"math"
	"slices"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/constraint"
	"github.com/akmonengine/kinetic/epa"
	"github.com/akmonengine/kinetic/gjk"
	"github.com/akmonengine/kinetic/grid"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNilBody       = errors.New("kinetic: nil body")
	ErrDuplicateBody = errors.New("kinetic: node already carries a body")
	ErrStaleHandle   = errors.New("kinetic: stale body handle")
)

// Stats counts what the last Step did
type Stats struct {
	// CandidatePairs sharing at least one cell, one count per side
	CandidatePairs int
	// NarrowTests is the number of GJK runs
	NarrowTests int
	Collisions  int

	VelocityResets int
	PositionResets int

	GJKOverruns int
	EPAOverruns int
}

// World is the simulation context: the scene root, the bodies attached to
// it and the spatial hash indexing them. It is not safe for concurrent use.
type World struct {
	Config Config
	// Root is the scene root. Bodies added with a parentless node are
	// attached under it.
	Root   *actor.Transform
	Logger *slog.Logger
	Events Events
	Stats  Stats

	bodies   bodyArena
	byNode   map[*actor.Transform]BodyHandle
	hash     *grid.SpatialHash[BodyHandle]
	detector gjk.Detector
	expander epa.Expander
	simplex  gjk.Simplex

	candidates []BodyHandle
	seen       map[BodyHandle]struct{}
}

// NewWorld validates cfg and creates an empty world. A nil logger uses
// slog.Default().
func NewWorld(cfg Config, logger *slog.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &World{
		Config:   cfg,
		Root:     actor.NewTransform("root"),
		Logger:   logger,
		Events:   NewEvents(),
		byNode:   make(map[*actor.Transform]BodyHandle),
		hash:     grid.New[BodyHandle](cfg.CellSize),
		detector: gjk.Detector{MaxIterations: cfg.GJKMaxIterations},
		expander: epa.Expander{MaxIterations: cfg.EPAMaxIterations},
		seen:     make(map[BodyHandle]struct{}),
	}, nil
}

// AddBody registers a body. Its AABB and cells are computed immediately and
// kept in sync with every later change of its node.
func (w *World) AddBody(body *actor.RigidBody) (BodyHandle, error) {
	if body == nil {
		return BodyHandle{}, ErrNilBody
	}
	node := body.Transform
	if node == nil {
		return BodyHandle{}, actor.ErrNilTransform
	}
	if _, ok := w.byNode[node]; ok {
		return BodyHandle{}, ErrDuplicateBody
	}

	if node.Parent() == nil && node != w.Root {
		node.SetParent(w.Root)
	}

	h := w.bodies.insert(body)
	w.byNode[node] = h
	w.sync(h, body)

	w.bodies.slot(h).detach = node.OnChange(func(*actor.Transform) {
		w.sync(h, body)
	})

	return h, nil
}

// RemoveBody deregisters the body from every cell it occupies. The node is
// left in the scene.
func (w *World) RemoveBody(h BodyHandle) error {
	s, ok := w.bodies.remove(h)
	if !ok {
		return ErrStaleHandle
	}

	if s.detach != nil {
		s.detach()
	}
	w.hash.Remove(h, s.body.Cells)
	s.body.Cells = nil
	delete(w.byNode, s.body.Transform)
	w.Events.forget(h)

	return nil
}

// DestroyNode removes the bodies of node and all its descendants, then
// detaches node from its parent.
func (w *World) DestroyNode(node *actor.Transform) {
	node.Walk(func(t *actor.Transform) bool {
		if h, ok := w.byNode[t]; ok {
			_ = w.RemoveBody(h)
		}
		return true
	})
	node.SetParent(nil)
}

// Body resolves a handle
func (w *World) Body(h BodyHandle) (*actor.RigidBody, error) {
	body, ok := w.bodies.get(h)
	if !ok {
		return nil, ErrStaleHandle
	}
	return body, nil
}

// HandleOf returns the handle of the body carried by node
func (w *World) HandleOf(node *actor.Transform) (BodyHandle, bool) {
	h, ok := w.byNode[node]
	return h, ok
}

// Len returns the number of registered bodies
func (w *World) Len() int {
	return w.bodies.len()
}

// Each visits the bodies in stable slot order. fn returns false to stop.
func (w *World) Each(fn func(h BodyHandle, body *actor.RigidBody) bool) {
	w.bodies.each(fn)
}

// AddForce accumulates a force applied to the body during the next Step
func (w *World) AddForce(h BodyHandle, force mgl64.Vec3) error {
	body, err := w.Body(h)
	if err != nil {
		return err
	}
	body.AddForce(force)
	return nil
}

// Material returns the named preset with the non-zero fields of each
// override applied in order.
func (w *World) Material(name string, overrides ...actor.Material) (actor.Material, error) {
	material, ok := w.Config.Materials[name]
	if !ok {
		return actor.Material{}, ErrUnknownMaterial
	}
	for _, o := range overrides {
		if err := mergeMaterial(&material, o); err != nil {
			return actor.Material{}, err
		}
	}
	return material, nil
}

// Cells returns the cells the body is registered in
func (w *World) Cells(h BodyHandle) ([]grid.CellKey, error) {
	body, err := w.Body(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(body.Cells), nil
}

// Step advances the simulation by dt, clamped to Config.MaxDeltaTime. A
// non-positive or non-finite dt does nothing. Collision events are sent
// once all sub-steps are done.
func (w *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	dt = math.Min(dt, w.Config.MaxDeltaTime)

	w.Stats = Stats{}
	substeps := max(1, w.Config.Substeps)
	h := dt / float64(substeps)
	settings := w.Config.contactSettings()

	for range substeps {
		// Phase 1: Forces
		w.applyForces()

		// Phase 2: Broad phase over the spatial hash, then GJK/EPA
		// Phase 3: Resolution of every contact found
		w.detectAndResolve(settings)

		// Phase 4: Integration
		w.integrate(h)
	}

	w.Events.flush()
}

func (w *World) applyForces() {
	gravity := w.Config.Gravity
	drag := w.Config.DragCoefficient

	w.bodies.each(func(_ BodyHandle, body *actor.RigidBody) bool {
		body.ComputeForces(gravity, drag)
		return true
	})
}

// detectAndResolve corrects each dynamic body against the bodies it shares a
// cell with. A dynamic pair is met from both sides and resolved twice, each
// side correcting only itself.
func (w *World) detectAndResolve(settings constraint.Settings) {
	w.bodies.each(func(ha BodyHandle, a *actor.RigidBody) bool {
		if !a.IsDynamic() || !a.CollisionsEnabled {
			return true
		}

		for _, hb := range w.candidatesOf(ha, a) {
			b, ok := w.bodies.get(hb)
			if !ok || !b.CollisionsEnabled {
				continue
			}
			w.Stats.CandidatePairs++

			if !a.AABB().Overlaps(b.AABB()) {
				continue
			}

			result := w.collide(ha, a, hb, b)
			if !result.Occurred {
				continue
			}

			w.Stats.Collisions++
			w.Events.record(result)

			c := constraint.Contact{BodyA: a, BodyB: b, Normal: result.Normal, Depth: result.Depth}
			c.Resolve(settings)
		}
		return true
	})
}

// candidatesOf lists, once each and in slot order, the other bodies
// registered in the cells of a.
func (w *World) candidatesOf(ha BodyHandle, a *actor.RigidBody) []BodyHandle {
	w.candidates = w.candidates[:0]
	clear(w.seen)

	w.hash.Each(a.Cells, func(hb BodyHandle) {
		if hb == ha {
			return
		}
		if _, ok := w.seen[hb]; ok {
			return
		}
		w.seen[hb] = struct{}{}
		w.candidates = append(w.candidates, hb)
	})

	slices.SortFunc(w.candidates, func(x, y BodyHandle) int {
		return cmp.Compare(x.index, y.index)
	})
	return w.candidates
}

func (w *World) integrate(h float64) {
	w.bodies.each(func(handle BodyHandle, body *actor.RigidBody) bool {
		velocityReset, positionReset := body.Integrate(h, w.Config.MaxVelocity)
		if velocityReset {
			w.Stats.VelocityResets++
			w.Logger.Debug("velocity reset", "body", handle)
		}
		if positionReset {
			w.Stats.PositionResets++
			w.Logger.Debug("position reset", "body", handle)
		}
		return true
	})
}

// sync refreshes the AABB of the body and moves it to the cells it now
// overlaps
func (w *World) sync(h BodyHandle, body *actor.RigidBody) {
	aabb := body.RecomputeAABB()
	body.Cells = w.hash.Sync(h, aabb.Min(), aabb.Max(), body.Cells)
}
