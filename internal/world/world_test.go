package world

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

func freeConfig() Config {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.MaxVelocity = 0
	cfg.Width, cfg.Height = 0, 0
	return cfg
}

func mustWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return w
}

func mustAdd(t *testing.T, w *World, spec BodySpec) BodyID {
	t.Helper()
	id, err := w.AddBody(spec)
	if err != nil {
		t.Fatalf("AddBody() error: %v", err)
	}
	return id
}

func ball(x, y, vx, vy float64) BodySpec {
	return BodySpec{
		Mass:     1,
		Position: vecmath.New(x, y),
		Velocity: vecmath.New(vx, vy),
		Shape:    rigidbody.Circle(10),
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero dt", func(c *Config) { c.Dt = 0 }, false},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }, false},
		{"nan dt", func(c *Config) { c.Dt = math.NaN() }, false},
		{"restitution above one", func(c *Config) { c.Restitution = 1.5 }, false},
		{"negative friction", func(c *Config) { c.Friction = -0.1 }, false},
		{"negative workers", func(c *Config) { c.Workers = -1 }, false},
		{"bad policy", func(c *Config) { c.CircleRect = "swept" }, false},
		{"bad integrator", func(c *Config) { c.Integrator = "leapfrog" }, false},
		{"cap disabled", func(c *Config) { c.MaxVelocity = 0 }, true},
		{"walls disabled", func(c *Config) { c.Width = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestAddBodyInvalidMass(t *testing.T) {
	w := mustWorld(t, DefaultConfig())
	spec := ball(100, 100, 0, 0)
	spec.Mass = -1

	id, err := w.AddBody(spec)
	if !errors.Is(err, rigidbody.ErrInvalidMass) {
		t.Fatalf("AddBody() error = %v, want ErrInvalidMass", err)
	}
	if id != -1 || w.Len() != 0 {
		t.Errorf("body registered on error: id=%d len=%d", id, w.Len())
	}
}

func TestUnknownBody(t *testing.T) {
	w := mustWorld(t, DefaultConfig())
	mustAdd(t, w, ball(100, 100, 0, 0))

	if _, err := w.Position(5); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Position(5) error = %v", err)
	}
	if err := w.ApplyExternalForce(-1, vecmath.New(1, 0)); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("ApplyExternalForce(-1) error = %v", err)
	}
	if err := w.ApplyTorque(1, 1); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("ApplyTorque(1) error = %v", err)
	}
}

func TestVelocityClamp(t *testing.T) {
	cfg := freeConfig()
	cfg.MaxVelocity = 25
	w := mustWorld(t, cfg)
	id := mustAdd(t, w, ball(400, 300, 60, 80))

	stats := w.Step(0.01)

	v, _ := w.Velocity(id)
	if !v.Equal(vecmath.New(15, 20), 1e-9) {
		t.Errorf("velocity = %v, want (15, 20)", v)
	}
	if stats.Clamped != 1 {
		t.Errorf("Clamped = %d, want 1", stats.Clamped)
	}

	fast := mustAdd(t, w, ball(100, 100, 100, 0))
	w.Step(0.01)
	v, _ = w.Velocity(fast)
	if math.Abs(v.Len()-25) > 1e-9 {
		t.Errorf("|v| = %v, want 25", v.Len())
	}
}

func TestBoundaryReflection(t *testing.T) {
	cfg := freeConfig()
	cfg.Width, cfg.Height = 800, 600
	w := mustWorld(t, cfg)
	left := mustAdd(t, w, ball(12, 300, -6, 0))
	bottom := mustAdd(t, w, ball(400, 588, 0, 6))

	stats := w.Step(1)

	p, _ := w.Position(left)
	v, _ := w.Velocity(left)
	if p.X != 10 || v.X != 6 {
		t.Errorf("left wall: p=%v v=%v, want x=10 vx=6", p, v)
	}

	p, _ = w.Position(bottom)
	v, _ = w.Velocity(bottom)
	if p.Y != 590 || v.Y != -6 {
		t.Errorf("bottom wall: p=%v v=%v, want y=590 vy=-6", p, v)
	}
	if stats.WallHits != 2 {
		t.Errorf("WallHits = %d, want 2", stats.WallHits)
	}
}

func TestWallsOnBodyWiderThanDomain(t *testing.T) {
	cfg := freeConfig()
	cfg.Width, cfg.Height = 30, 600
	w := mustWorld(t, cfg)
	id := mustAdd(t, w, BodySpec{
		Mass:     1,
		Position: vecmath.New(15, 300),
		Velocity: vecmath.New(-2, 0),
		Shape:    rigidbody.Circle(20),
	})

	stats := w.Step(1)

	// both x walls fire: snapped to the right wall, vx negated twice
	p, _ := w.Position(id)
	v, _ := w.Velocity(id)
	if p.X != 10 || v.X != -2 {
		t.Errorf("p=%v v=%v, want x=10 vx=-2", p, v)
	}
	if stats.WallHits != 1 {
		t.Errorf("WallHits = %d, want 1", stats.WallHits)
	}
}

func TestStepIgnoresBadDt(t *testing.T) {
	cfg := freeConfig()
	cfg.Gravity = 0.9
	w := mustWorld(t, cfg)
	id := mustAdd(t, w, ball(100, 100, 3, -4))

	for _, dt := range []float64{0, -0.5, math.NaN(), math.Inf(1)} {
		stats := w.Step(dt)
		if stats != (StepStats{}) {
			t.Errorf("Step(%v) stats = %+v", dt, stats)
		}
	}

	p, _ := w.Position(id)
	v, _ := w.Velocity(id)
	if p != vecmath.New(100, 100) || v != vecmath.New(3, -4) {
		t.Errorf("state changed: p=%v v=%v", p, v)
	}
	if w.Steps() != 0 || w.Time() != 0 {
		t.Errorf("steps=%d time=%v, want 0", w.Steps(), w.Time())
	}
}

func TestIntegrationAccuracy(t *testing.T) {
	cfg := freeConfig()
	cfg.Gravity = 0.9
	w := mustWorld(t, cfg)
	id := mustAdd(t, w, ball(0, 0, 0, 0))

	const (
		dt = 0.5
		n  = 40
	)
	for i := 0; i < n; i++ {
		w.Step(dt)
	}

	v, _ := w.Velocity(id)
	if math.Abs(v.Y-0.9*n*dt) > 1e-9 {
		t.Errorf("vy = %v, want %v", v.Y, 0.9*n*dt)
	}
	p, _ := w.Position(id)
	want := 0.5 * 0.9 * (n * dt) * (n * dt)
	if math.Abs(p.Y-want) > 0.9*n*dt*dt {
		t.Errorf("y = %v, want %v within O(dt)", p.Y, want)
	}
	if w.Steps() != n || math.Abs(w.Time()-n*dt) > 1e-12 {
		t.Errorf("steps=%d time=%v", w.Steps(), w.Time())
	}
}

func TestExternalForceLastsOneStep(t *testing.T) {
	w := mustWorld(t, freeConfig())
	id := mustAdd(t, w, BodySpec{Mass: 2, Position: vecmath.New(0, 0), Shape: rigidbody.Circle(1)})

	if err := w.ApplyExternalForce(id, vecmath.New(4, 0)); err != nil {
		t.Fatal(err)
	}
	w.Step(1)
	w.Step(1)

	v, _ := w.Velocity(id)
	if math.Abs(v.X-2) > 1e-12 {
		t.Errorf("vx = %v, want 2", v.X)
	}
}

func TestEqualMassSwap(t *testing.T) {
	cfg := freeConfig()
	w := mustWorld(t, cfg)
	a := mustAdd(t, w, BodySpec{Mass: 1, Position: vecmath.New(100, 300), Velocity: vecmath.New(5, 0), Shape: rigidbody.Circle(20)})
	b := mustAdd(t, w, BodySpec{Mass: 1, Position: vecmath.New(139, 300), Velocity: vecmath.New(-5, 0), Shape: rigidbody.Circle(20)})

	stats := w.Step(0.5)

	va, _ := w.Velocity(a)
	vb, _ := w.Velocity(b)
	if !va.Equal(vecmath.New(-5, 0), 1e-12) || !vb.Equal(vecmath.New(5, 0), 1e-12) {
		t.Errorf("velocities after swap: a=%v b=%v", va, vb)
	}
	if stats.Contacts != 1 || stats.Resolved != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPairOrderDependence(t *testing.T) {
	run := func(order []int) []vecmath.Vec2 {
		specs := []BodySpec{
			ball(0, 0, 1, 0),
			ball(19, 0, 0, 0),
			ball(38, 0, 0, 0),
		}
		w := mustWorld(t, freeConfig())
		ids := make([]BodyID, len(specs))
		for _, k := range order {
			ids[k] = mustAdd(t, w, specs[k])
		}
		w.Step(0.001)

		out := make([]vecmath.Vec2, len(specs))
		for k, id := range ids {
			out[k], _ = w.Velocity(id)
		}
		return out
	}

	forward := run([]int{0, 1, 2})
	rotated := run([]int{1, 2, 0})

	if forward[2].X != 1 || forward[1].X != 0 {
		t.Errorf("forward order: %v, want the momentum passed down to the last body", forward)
	}
	if rotated[1].X != 1 || rotated[2].X != 0 {
		t.Errorf("rotated order: %v, want the momentum stopped at the middle body", rotated)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	build := func(workers int) *World {
		cfg := DefaultConfig()
		cfg.Workers = workers
		cfg.Friction = 0.3
		cfg.CircleRect = "oriented"
		w := mustWorld(t, cfg)

		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 40; i++ {
			shape := rigidbody.Circle(15)
			if i%3 == 0 {
				shape = rigidbody.Square(12)
			}
			mustAdd(t, w, BodySpec{
				Mass:            1 + rng.Float64(),
				Position:        vecmath.New(50+rng.Float64()*700, 50+rng.Float64()*500),
				Velocity:        vecmath.New(rng.Float64()*20-10, rng.Float64()*20-10),
				Shape:           shape,
				Angle:           rng.Float64(),
				AngularVelocity: rng.Float64()*0.2 - 0.1,
			})
		}
		return w
	}

	seq, par := build(1), build(4)
	for step := 0; step < 60; step++ {
		s1, s2 := seq.Advance(), par.Advance()
		if s1 != s2 {
			t.Fatalf("step %d: stats differ: %+v vs %+v", step, s1, s2)
		}
	}

	a, b := seq.Snapshot(), par.Snapshot()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("body %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	w := mustWorld(t, freeConfig())
	id := mustAdd(t, w, ball(10, 20, 1, 2))

	snap := w.Snapshot()
	snap[0].Position = vecmath.New(-1, -1)

	p, _ := w.Position(id)
	if p != vecmath.New(10, 20) {
		t.Errorf("snapshot aliased world state: %v", p)
	}

	st, err := w.Body(id)
	if err != nil || st.Shape != "circle" || st.Radius != 10 {
		t.Errorf("Body() = %+v, %v", st, err)
	}
}

func TestParallelFor(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8} {
		seen := make([]int, 100)
		parallelFor(len(seen), workers, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, n)
			}
		}
	}
}
