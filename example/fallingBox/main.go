// Drops a few bodies onto a floor and reports their contacts. An optional
// argument names a YAML world config.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/kinetic"
	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	dt    = 1.0 / 60.0
	steps = 240
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := kinetic.DefaultConfig()
	if len(os.Args) > 1 {
		var err error
		cfg, err = kinetic.LoadConfig(os.Args[1])
		if err != nil {
			logger.Error("cannot load config", "error", err)
			os.Exit(1)
		}
	}

	world, err := kinetic.NewWorld(cfg, logger)
	if err != nil {
		logger.Error("cannot create world", "error", err)
		os.Exit(1)
	}

	bodies, err := setupScene(world)
	if err != nil {
		logger.Error("cannot build scene", "error", err)
		os.Exit(1)
	}

	world.Events.Subscribe(kinetic.COLLISION_ENTER, func(event kinetic.Event) {
		e := event.(kinetic.CollisionEnterEvent)
		logger.Info("contact", "bodyA", e.BodyA, "bodyB", e.BodyB, "normal", e.Normal, "depth", e.Depth)
	})
	world.Events.Subscribe(kinetic.COLLISION_EXIT, func(event kinetic.Event) {
		e := event.(kinetic.CollisionExitEvent)
		logger.Info("separated", "bodyA", e.BodyA, "bodyB", e.BodyB)
	})

	for range steps {
		world.Step(dt)
	}

	for name, h := range bodies {
		body, err := world.Body(h)
		if err != nil {
			continue
		}
		aabb := body.AABB()
		fmt.Printf("%-8s position %v  bottom %.4f  velocity %v\n", name, body.Position(), aabb.Min().Y(), body.Velocity)
	}

	// probe the ground under the origin
	if hit, ok := world.Raycast(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -20, 0}); ok {
		fmt.Printf("raycast hit %s at %v (normal %v)\n", hit.Node.Name, hit.Position, hit.Normal)
	}
}

// setupScene creates a static floor and a few dynamic bodies of every shape
// kind above it
func setupScene(world *kinetic.World) (map[string]kinetic.BodyHandle, error) {
	meshes := actor.MeshLibrary{"crate": actor.UnitCubeMesh()}
	handles := make(map[string]kinetic.BodyHandle)

	concrete, err := world.Material("concrete")
	if err != nil {
		return nil, err
	}
	floor, err := actor.NewRigidBody(
		actor.NewTransformAt("floor", mgl64.Vec3{0, -0.5, 0}, mgl64.Vec3{40, 1, 40}),
		actor.Box{}, actor.BodyTypeStatic, concrete)
	if err != nil {
		return nil, err
	}
	if handles["floor"], err = world.AddBody(floor); err != nil {
		return nil, err
	}

	scene := []struct {
		name     string
		shape    actor.Shape
		position mgl64.Vec3
		material string
		override actor.Material
	}{
		{"box", actor.Box{}, mgl64.Vec3{0, 3, 0}, "wood", actor.Material{}},
		{"ball", actor.Sphere{}, mgl64.Vec3{3, 5, 0}, "rubber", actor.Material{Restitution: 0.6}},
		{"crate", actor.NewConvexHullSet(meshes, "crate"), mgl64.Vec3{-3, 4, 1}, "default", actor.Material{}},
		{"slab", actor.NewMeshCollider(meshes, "crate"), mgl64.Vec3{0, 8, -3}, "ice", actor.Material{Density: 2}},
	}

	for _, s := range scene {
		material, err := world.Material(s.material, s.override)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		body, err := actor.NewRigidBody(actor.NewTransformAt(s.name, s.position, mgl64.Vec3{1, 1, 1}), s.shape, actor.BodyTypeDynamic, material)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		if handles[s.name], err = world.AddBody(body); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	return handles, nil
}
