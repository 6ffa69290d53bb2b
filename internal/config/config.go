package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

const (
	DefaultScene    = "balls"
	DefaultDuration = 100.0
	DefaultSeed     = 1
)

type Config struct {
	Scene       string                 `yaml:"scene"`
	Duration    float64                `yaml:"duration"`
	Seed        int64                  `yaml:"seed"`
	RecordEvery int                    `yaml:"record_every"`
	World       world.Config           `yaml:"world"`
	Params      experiment.SceneParams `yaml:"params"`
	Bodies      []BodyConfig           `yaml:"bodies,omitempty"`
}

// BodyConfig is one explicit body. The size is Radius when set, otherwise
// it is derived from Width and Height.
type BodyConfig struct {
	Shape           string  `yaml:"shape"`
	Mass            float64 `yaml:"mass"`
	Radius          float64 `yaml:"radius,omitempty"`
	Width           float64 `yaml:"width,omitempty"`
	Height          float64 `yaml:"height,omitempty"`
	X               float64 `yaml:"x"`
	Y               float64 `yaml:"y"`
	VX              float64 `yaml:"vx"`
	VY              float64 `yaml:"vy"`
	Angle           float64 `yaml:"angle,omitempty"`
	AngularVelocity float64 `yaml:"angular_velocity,omitempty"`
	Drag            float64 `yaml:"drag,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Duration:    DefaultDuration,
		Seed:        DefaultSeed,
		RecordEvery: 1,
		World:       world.DefaultConfig(),
		Params:      experiment.DefaultSceneParams(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Spec converts b into a world body spec.
func (b BodyConfig) Spec() (world.BodySpec, error) {
	kind, err := rigidbody.ParseShapeKind(b.Shape)
	if err != nil {
		return world.BodySpec{}, err
	}

	shape := rigidbody.Shape{Kind: kind, Radius: b.Radius}
	if b.Radius == 0 && b.Width > 0 {
		h := b.Height
		if h == 0 {
			h = b.Width
		}
		shape = rigidbody.ShapeFromSize(kind, b.Width, h)
	}

	return world.BodySpec{
		Mass:            b.Mass,
		Position:        vecmath.New(b.X, b.Y),
		Velocity:        vecmath.New(b.VX, b.VY),
		Shape:           shape,
		Angle:           b.Angle,
		AngularVelocity: b.AngularVelocity,
		Drag:            b.Drag,
	}, nil
}

// Experiment converts the file config into an experiment configuration.
func (c *Config) Experiment() (experiment.Config, error) {
	specs := make([]world.BodySpec, 0, len(c.Bodies))
	for i, b := range c.Bodies {
		spec, err := b.Spec()
		if err != nil {
			return experiment.Config{}, fmt.Errorf("bodies[%d]: %w", i, err)
		}
		specs = append(specs, spec)
	}

	return experiment.Config{
		Scene:       c.Scene,
		World:       c.World,
		Params:      c.Params,
		Bodies:      specs,
		Duration:    c.Duration,
		Seed:        c.Seed,
		RecordEvery: c.RecordEvery,
	}, nil
}

// Validate checks the world section, the scene params and the run length.
func (c *Config) Validate() error {
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d", c.RecordEvery)
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	return c.World.Validate()
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &out
}
