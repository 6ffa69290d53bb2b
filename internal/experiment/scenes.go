package experiment

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

// SceneParams shapes the generated bodies. Zero fields take the defaults
// from DefaultSceneParams.
type SceneParams struct {
	Count          int     `yaml:"count" json:"count"`
	Radius         float64 `yaml:"radius" json:"radius"`
	Mass           float64 `yaml:"mass" json:"mass"`
	MaxSpeed       float64 `yaml:"max_speed" json:"max_speed"`
	Margin         float64 `yaml:"margin" json:"margin"`
	SquareFraction float64 `yaml:"square_fraction" json:"square_fraction"`
}

// DefaultSceneParams is the classic demo: 20 unit-mass balls of radius 20
// placed at least 50 units from the walls with speeds up to 50 per axis.
func DefaultSceneParams() SceneParams {
	return SceneParams{
		Count:    20,
		Radius:   20,
		Mass:     1,
		MaxSpeed: 50,
		Margin:   50,
	}
}

// ErrInvalidParams is returned for scene parameters no generator can use.
var ErrInvalidParams = errors.New("experiment: invalid scene params")

// Validate rejects negative or non-finite sizes. Zero is allowed and means
// the default.
func (p SceneParams) Validate() error {
	if p.Count < 0 {
		return fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidParams, p.Count)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"radius", p.Radius},
		{"mass", p.Mass},
		{"margin", p.Margin},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite and not negative, got %v", ErrInvalidParams, f.name, f.v)
		}
	}
	if math.IsNaN(p.MaxSpeed) || math.IsInf(p.MaxSpeed, 0) {
		return fmt.Errorf("%w: max_speed must be finite, got %v", ErrInvalidParams, p.MaxSpeed)
	}
	if math.IsNaN(p.SquareFraction) {
		return fmt.Errorf("%w: square_fraction is NaN", ErrInvalidParams)
	}
	return nil
}

func (p SceneParams) withDefaults() SceneParams {
	d := DefaultSceneParams()
	if p.Count == 0 {
		p.Count = d.Count
	}
	if p.Radius == 0 {
		p.Radius = d.Radius
	}
	if p.Mass == 0 {
		p.Mass = d.Mass
	}
	if p.MaxSpeed == 0 {
		p.MaxSpeed = d.MaxSpeed
	}
	if p.Margin == 0 {
		p.Margin = d.Margin
	}
	return p
}

// SceneFunc generates the initial bodies of a scene. All randomness must
// come from rng so a seed reproduces the scene exactly.
type SceneFunc func(rng *rand.Rand, p SceneParams, cfg world.Config) []world.BodySpec

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func extent(cfg world.Config) (float64, float64) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	return w, h
}

func randomBody(rng *rand.Rand, p SceneParams, cfg world.Config, shape rigidbody.Shape) world.BodySpec {
	w, h := extent(cfg)
	return world.BodySpec{
		Mass:     p.Mass,
		Position: vecmath.New(uniform(rng, p.Margin, w-p.Margin), uniform(rng, p.Margin, h-p.Margin)),
		Velocity: vecmath.New(uniform(rng, -p.MaxSpeed, p.MaxSpeed), uniform(rng, -p.MaxSpeed, p.MaxSpeed)),
		Shape:    shape,
	}
}

func ballsScene(rng *rand.Rand, p SceneParams, cfg world.Config) []world.BodySpec {
	specs := make([]world.BodySpec, p.Count)
	for i := range specs {
		specs[i] = randomBody(rng, p, cfg, rigidbody.Circle(p.Radius))
	}
	return specs
}

func boxesScene(rng *rand.Rand, p SceneParams, cfg world.Config) []world.BodySpec {
	specs := make([]world.BodySpec, p.Count)
	for i := range specs {
		specs[i] = randomBody(rng, p, cfg, rigidbody.Square(p.Radius))
		specs[i].Angle = uniform(rng, 0, math.Pi/2)
		specs[i].AngularVelocity = uniform(rng, -0.1, 0.1)
	}
	return specs
}

func mixedScene(rng *rand.Rand, p SceneParams, cfg world.Config) []world.BodySpec {
	frac := p.SquareFraction
	if frac <= 0 {
		frac = 0.5
	}
	specs := make([]world.BodySpec, p.Count)
	for i := range specs {
		shape := rigidbody.Circle(p.Radius)
		square := rng.Float64() < frac
		if square {
			shape = rigidbody.Square(p.Radius)
		}
		specs[i] = randomBody(rng, p, cfg, shape)
		if square {
			specs[i].Angle = uniform(rng, 0, math.Pi/2)
		}
	}
	return specs
}

// cradleScene lines up Count-1 resting balls with a gap of 1 and sends one
// more ball into the row from the left.
func cradleScene(rng *rand.Rand, p SceneParams, cfg world.Config) []world.BodySpec {
	w, h := extent(cfg)
	y := h / 2
	d := 2*p.Radius + 1

	rowStart := w/2 - float64(p.Count-1)*d/2
	specs := make([]world.BodySpec, 0, p.Count)
	specs = append(specs, world.BodySpec{
		Mass:     p.Mass,
		Position: vecmath.New(math.Max(p.Radius, rowStart-4*d), y),
		Velocity: vecmath.New(p.MaxSpeed, 0),
		Shape:    rigidbody.Circle(p.Radius),
	})
	for i := 1; i < p.Count; i++ {
		specs = append(specs, world.BodySpec{
			Mass:     p.Mass,
			Position: vecmath.New(rowStart+float64(i-1)*d, y),
			Shape:    rigidbody.Circle(p.Radius),
		})
	}
	return specs
}

// pileScene drops a loose grid of bodies onto a static floor slab.
func pileScene(rng *rand.Rand, p SceneParams, cfg world.Config) []world.BodySpec {
	w, h := extent(cfg)
	floor := rigidbody.ShapeFromSize(rigidbody.KindSquare, 4*p.Radius, 4*p.Radius)
	specs := []world.BodySpec{{
		Mass:     0,
		Position: vecmath.New(w/2, h-p.Margin-floor.Radius),
		Shape:    floor,
	}}

	cols := int(math.Max(1, math.Floor((w-2*p.Margin)/(3*p.Radius))))
	for i := 0; i < p.Count; i++ {
		row, col := i/cols, i%cols
		shape := rigidbody.Circle(p.Radius)
		if rng.Float64() < p.SquareFraction {
			shape = rigidbody.Square(p.Radius)
		}
		specs = append(specs, world.BodySpec{
			Mass:     p.Mass,
			Position: vecmath.New(p.Margin+p.Radius+float64(col)*3*p.Radius+uniform(rng, -1, 1), p.Margin+p.Radius+float64(row)*3*p.Radius),
			Shape:    shape,
		})
	}
	return specs
}

func emptyScene(*rand.Rand, SceneParams, world.Config) []world.BodySpec { return nil }
