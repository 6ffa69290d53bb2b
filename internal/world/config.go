package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/collision"
	"github.com/san-kum/rigid2d/internal/integrators"
)

var (
	// ErrUnknownBody indicates a BodyID that was never issued by the world.
	ErrUnknownBody = errors.New("world: unknown body")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("world: invalid config")
)

// Config holds the global simulation constants. Positions are in screen
// coordinates with y growing downward, so a positive Gravity pulls toward
// larger y.
type Config struct {
	Gravity     float64 `yaml:"gravity" json:"gravity"`
	Dt          float64 `yaml:"dt" json:"dt"`
	MaxVelocity float64 `yaml:"max_velocity" json:"max_velocity"`
	Restitution float64 `yaml:"restitution" json:"restitution"`
	Friction    float64 `yaml:"friction" json:"friction"`
	Width       float64 `yaml:"width" json:"width"`
	Height      float64 `yaml:"height" json:"height"`
	CircleRect  string  `yaml:"circle_rect" json:"circle_rect"`
	Integrator  string  `yaml:"integrator" json:"integrator"`
	Workers     int     `yaml:"workers" json:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:     0.9,
		Dt:          0.5,
		MaxVelocity: 25,
		Restitution: 1.0,
		Friction:    0.0,
		Width:       800,
		Height:      600,
		CircleRect:  collision.PolicyAxisAligned.String(),
		Integrator:  "rk4",
		Workers:     1,
	}
}

// Validate reports the first out-of-range field wrapped in ErrInvalidConfig.
// A non-positive MaxVelocity disables the velocity cap and a non-positive
// Width or Height disables the walls; neither is an error.
func (c Config) Validate() error {
	switch {
	case !(c.Dt > 0) || math.IsInf(c.Dt, 0):
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	case math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0):
		return fmt.Errorf("%w: gravity must be finite, got %v", ErrInvalidConfig, c.Gravity)
	case !(c.Restitution >= 0 && c.Restitution <= 1):
		return fmt.Errorf("%w: restitution must be in [0, 1], got %v", ErrInvalidConfig, c.Restitution)
	case !(c.Friction >= 0 && c.Friction <= 1):
		return fmt.Errorf("%w: friction must be in [0, 1], got %v", ErrInvalidConfig, c.Friction)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := collision.ParsePolicy(c.CircleRect); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := integrators.ByName(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) capEnabled() bool   { return c.MaxVelocity > 0 }
func (c Config) wallsEnabled() bool { return c.Width > 0 && c.Height > 0 }
