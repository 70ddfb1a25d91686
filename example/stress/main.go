// Broad-phase stress test: drops many boxes into a pit and reports how much
// work each step did. With -record, every frame is appended to a file as a
// msgpack document.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/akmonengine/kinetic"
	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/vmihailenco/msgpack/v5"
)

// BodyState is the recorded state of one body
type BodyState struct {
	ID       int        `msgpack:"id"`
	Position [3]float64 `msgpack:"p"`
	Velocity [3]float64 `msgpack:"v"`
}

// Frame is the recorded state of the world after a step
type Frame struct {
	Tick   int           `msgpack:"tick"`
	Bodies []BodyState   `msgpack:"bodies"`
	Stats  kinetic.Stats `msgpack:"stats"`
}

// options are the command line settings of a run
type options struct {
	count    int
	steps    int
	seed     uint64
	cellSize float64
	record   string
}

func main() {
	var opts options
	flag.IntVar(&opts.count, "n", 1000, "number of dynamic boxes")
	flag.IntVar(&opts.steps, "steps", 300, "number of steps to simulate")
	flag.Uint64Var(&opts.seed, "seed", 42, "random seed")
	flag.Float64Var(&opts.cellSize, "cell", kinetic.DEFAULT_CELL_SIZE, "spatial hash cell size")
	flag.StringVar(&opts.record, "record", "", "write msgpack frames to this file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := run(opts, logger, os.Stdout); err != nil {
		logger.Error("stress run failed", "error", err)
		os.Exit(1)
	}
}

// run simulates the scene and writes the summary to out. The record file, if
// any, is flushed and closed before run returns, even on error.
func run(opts options, logger *slog.Logger, out io.Writer) (err error) {
	cfg := kinetic.DefaultConfig()
	cfg.CellSize = opts.cellSize
	world, err := kinetic.NewWorld(cfg, logger)
	if err != nil {
		return fmt.Errorf("cannot create world: %w", err)
	}

	if err := spawn(world, opts.count, rand.New(rand.NewPCG(opts.seed, opts.seed))); err != nil {
		return fmt.Errorf("cannot spawn bodies: %w", err)
	}

	var encoder *msgpack.Encoder
	if opts.record != "" {
		f, createErr := os.Create(opts.record)
		if createErr != nil {
			return fmt.Errorf("cannot create record file: %w", createErr)
		}
		w := bufio.NewWriter(f)
		defer func() {
			err = errors.Join(err, w.Flush(), f.Close())
		}()
		encoder = msgpack.NewEncoder(w)
	}

	var total kinetic.Stats
	var frame Frame
	start := time.Now()

	for tick := range opts.steps {
		world.Step(1.0 / 60.0)
		accumulate(&total, world.Stats)

		if encoder == nil {
			continue
		}
		snapshot(world, tick, &frame)
		if err := encoder.Encode(&frame); err != nil {
			return fmt.Errorf("cannot record frame %d: %w", tick, err)
		}
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "%d bodies, %d steps in %v (%v/step)\n", world.Len(), opts.steps, elapsed.Round(time.Millisecond), (elapsed / time.Duration(max(1, opts.steps))).Round(time.Microsecond))
	fmt.Fprintf(out, "candidate pairs %d | narrow tests %d | collisions %d\n", total.CandidatePairs, total.NarrowTests, total.Collisions)
	fmt.Fprintf(out, "velocity resets %d | position resets %d | gjk overruns %d | epa overruns %d\n",
		total.VelocityResets, total.PositionResets, total.GJKOverruns, total.EPAOverruns)
	return nil
}

// spawn builds a floor with four walls and count boxes of random size above it
func spawn(world *kinetic.World, count int, rng *rand.Rand) error {
	const pit = 40.0

	walls := []struct {
		position, size mgl64.Vec3
	}{
		{mgl64.Vec3{0, -0.5, 0}, mgl64.Vec3{pit, 1, pit}},
		{mgl64.Vec3{pit / 2, 5, 0}, mgl64.Vec3{1, 10, pit}},
		{mgl64.Vec3{-pit / 2, 5, 0}, mgl64.Vec3{1, 10, pit}},
		{mgl64.Vec3{0, 5, pit / 2}, mgl64.Vec3{pit, 10, 1}},
		{mgl64.Vec3{0, 5, -pit / 2}, mgl64.Vec3{pit, 10, 1}},
	}

	concrete, err := world.Material("concrete")
	if err != nil {
		return err
	}
	for i, wall := range walls {
		body, err := actor.NewRigidBody(actor.NewTransformAt(fmt.Sprintf("wall%d", i), wall.position, wall.size), actor.Box{}, actor.BodyTypeStatic, concrete)
		if err != nil {
			return err
		}
		if _, err := world.AddBody(body); err != nil {
			return err
		}
	}

	presets := []string{"default", "wood", "rubber", "ice"}
	for i := range count {
		material, err := world.Material(presets[rng.IntN(len(presets))])
		if err != nil {
			return err
		}

		position := mgl64.Vec3{
			(rng.Float64() - 0.5) * (pit - 4),
			2 + rng.Float64()*30,
			(rng.Float64() - 0.5) * (pit - 4),
		}
		side := 0.5 + rng.Float64()
		node := actor.NewTransformAt(fmt.Sprintf("box%d", i), position, mgl64.Vec3{side, side, side})

		var shape actor.Shape = actor.Box{}
		if rng.IntN(4) == 0 {
			shape = actor.Sphere{}
		}

		body, err := actor.NewRigidBody(node, shape, actor.BodyTypeDynamic, material)
		if err != nil {
			return err
		}
		body.Velocity = mgl64.Vec3{rng.NormFloat64(), 0, rng.NormFloat64()}
		if _, err := world.AddBody(body); err != nil {
			return err
		}
	}

	return nil
}

func snapshot(world *kinetic.World, tick int, frame *Frame) {
	frame.Tick = tick
	frame.Stats = world.Stats
	frame.Bodies = frame.Bodies[:0]

	world.Each(func(h kinetic.BodyHandle, body *actor.RigidBody) bool {
		if !body.IsDynamic() {
			return true
		}
		frame.Bodies = append(frame.Bodies, BodyState{
			ID:       h.Index(),
			Position: body.Position(),
			Velocity: body.Velocity,
		})
		return true
	})
}

func accumulate(total *kinetic.Stats, step kinetic.Stats) {
	total.CandidatePairs += step.CandidatePairs
	total.NarrowTests += step.NarrowTests
	total.Collisions += step.Collisions
	total.VelocityResets += step.VelocityResets
	total.PositionResets += step.PositionResets
	total.GJKOverruns += step.GJKOverruns
	total.EPAOverruns += step.EPAOverruns
}
