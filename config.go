package kinetic

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/constraint"
	"github.com/akmonengine/kinetic/epa"
	"github.com/akmonengine/kinetic/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_CELL_SIZE      = 4.0
	DEFAULT_MAX_DELTA_TIME = 1.0 / 30.0
	DEFAULT_MAX_VELOCITY   = 1000.0
	DEFAULT_DRAG           = 0.01
	MAX_SUBSTEPS           = 64
)

var (
	ErrInvalidConfig   = errors.New("kinetic: invalid config")
	ErrUnknownMaterial = errors.New("kinetic: unknown material")
)

// Config holds the tunables of a World. It is read from YAML; keys left out
// keep their default value.
type Config struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec3 `yaml:"gravity"`
	// CellSize is the edge length of a spatial hash cell
	CellSize float64 `yaml:"cell_size"`
	// MaxDeltaTime clamps the time advanced by a single Step
	MaxDeltaTime float64 `yaml:"max_delta_time"`
	// Substeps splits each Step in equal sub-steps
	Substeps        int     `yaml:"substeps"`
	DragCoefficient float64 `yaml:"drag_coefficient"`
	// MaxVelocity is the sanity bound above which a velocity is reset
	MaxVelocity float64 `yaml:"max_velocity"`

	ShallowPenetration float64 `yaml:"shallow_penetration"`
	MaxCorrection      float64 `yaml:"max_correction"`
	ContactElasticity  float64 `yaml:"contact_elasticity"`

	GJKMaxIterations int `yaml:"gjk_max_iterations"`
	EPAMaxIterations int `yaml:"epa_max_iterations"`

	// Materials are named presets, see World.Material
	Materials map[string]actor.Material `yaml:"materials"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:            mgl64.Vec3{0, -9.81, 0},
		CellSize:           DEFAULT_CELL_SIZE,
		MaxDeltaTime:       DEFAULT_MAX_DELTA_TIME,
		Substeps:           1,
		DragCoefficient:    DEFAULT_DRAG,
		MaxVelocity:        DEFAULT_MAX_VELOCITY,
		ShallowPenetration: constraint.DefaultShallowPenetration,
		MaxCorrection:      constraint.DefaultMaxCorrection,
		ContactElasticity:  constraint.DefaultElasticity,
		GJKMaxIterations:   gjk.DefaultMaxIterations,
		EPAMaxIterations:   epa.DefaultMaxIterations,
		Materials: map[string]actor.Material{
			"default":  {Density: 1, Friction: 0.3},
			"concrete": {Density: 2.4, Friction: 0.6, Restitution: 0.05},
			"wood":     {Density: 0.7, Friction: 0.4, Restitution: 0.2},
			"rubber":   {Density: 1.1, Friction: 0.9, Restitution: 0.8},
			"ice":      {Density: 0.92, Friction: 0.02, Restitution: 0.05},
		},
	}
}

// ParseConfig reads a YAML document over the defaults. A material entry
// naming an existing preset only overrides the fields it sets.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	presets := cfg.Materials
	cfg.Materials = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("kinetic: parse config: %w", err)
	}

	for name, override := range cfg.Materials {
		merged := presets[name]
		if err := mergeMaterial(&merged, override); err != nil {
			return Config{}, fmt.Errorf("kinetic: material %q: %w", name, err)
		}
		presets[name] = merged
	}
	cfg.Materials = presets

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("kinetic: load config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with. Substeps is
// clamped to [1, MAX_SUBSTEPS] and missing iteration limits get defaults.
func (c *Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell_size must be positive, got %v", ErrInvalidConfig, c.CellSize)
	}
	if c.MaxDeltaTime <= 0 {
		return fmt.Errorf("%w: max_delta_time must be positive, got %v", ErrInvalidConfig, c.MaxDeltaTime)
	}
	if c.MaxVelocity <= 0 {
		return fmt.Errorf("%w: max_velocity must be positive, got %v", ErrInvalidConfig, c.MaxVelocity)
	}
	if c.DragCoefficient < 0 {
		return fmt.Errorf("%w: drag_coefficient must not be negative, got %v", ErrInvalidConfig, c.DragCoefficient)
	}
	if c.ShallowPenetration < 0 || c.MaxCorrection < 0 {
		return fmt.Errorf("%w: penetration correction must not be negative", ErrInvalidConfig)
	}

	c.Substeps = constraint.Clamp(c.Substeps, 1, MAX_SUBSTEPS)
	if c.GJKMaxIterations <= 0 {
		c.GJKMaxIterations = gjk.DefaultMaxIterations
	}
	if c.EPAMaxIterations <= 0 {
		c.EPAMaxIterations = epa.DefaultMaxIterations
	}

	return nil
}

// contactSettings maps the config onto the resolver settings
func (c *Config) contactSettings() constraint.Settings {
	return constraint.Settings{
		ShallowPenetration: c.ShallowPenetration,
		MaxCorrection:      c.MaxCorrection,
		Elasticity:         c.ContactElasticity,
	}
}

// mergeMaterial copies the non-zero fields of override onto dst
func mergeMaterial(dst *actor.Material, override actor.Material) error {
	return copier.CopyWithOption(dst, &override, copier.Option{IgnoreEmpty: true})
}
