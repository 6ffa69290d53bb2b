package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

func TestSeriesBounded(t *testing.T) {
	s := NewSeries("x", 3)
	assert.Equal(t, 0.0, s.Last())

	for i := 1; i <= 5; i++ {
		s.Add(float64(i))
	}

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{3, 4, 5}, s.Values())
	assert.Equal(t, 5.0, s.Last())

	min, max := s.MinMax()
	assert.Equal(t, 3.0, min)
	assert.Equal(t, 5.0, max)

	s.Reset()
	assert.Empty(t, s.Values())
}

func TestSeriesPartial(t *testing.T) {
	s := NewSeries("x", 10)
	s.Add(1)
	s.Add(2)
	assert.Equal(t, []float64{1, 2}, s.Values())
	assert.Equal(t, 10, s.Capacity())
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(100, 0.5, 0.9)

	f := &sim.Frame{
		Bodies: []world.BodyState{
			{Mass: 2, Position: vecmath.New(0, 50), Velocity: vecmath.New(3, 4)},
			{Mass: 1, Position: vecmath.New(0, 70), Velocity: vecmath.New(0, 1)},
		},
		Elapsed: 1500 * time.Microsecond,
	}
	r.OnStep(f)

	assert.Equal(t, []float64{5, 1}, r.Velocity.Values())
	assert.Equal(t, []float64{50, 70}, r.Position.Values())
	assert.Equal(t, []float64{10, 2}, r.Acceleration.Values())
	assert.InDeltaSlice(t, []float64{1.8, 0.9}, r.Force.Values(), 1e-12)
	assert.Equal(t, []float64{1.5}, r.Performance.Values())

	r.Reset()
	for _, s := range r.Series() {
		assert.Zero(t, s.Len(), s.Title)
	}
}

func TestRecorderAsObserver(t *testing.T) {
	cfg := world.DefaultConfig()
	w, err := world.New(cfg)
	require.NoError(t, err)
	_, err = w.AddBody(world.BodySpec{Mass: 1, Position: vecmath.New(400, 100), Shape: rigidbody.Circle(20)})
	require.NoError(t, err)

	rec := NewRecorder(DefaultCapacity, cfg.Dt, cfg.Gravity)
	s := sim.New(w)
	s.AddObserver(rec)

	_, err = s.Run(context.Background(), sim.Config{Duration: 10})
	require.NoError(t, err)

	assert.Equal(t, 20, rec.Velocity.Len())
	assert.Equal(t, 20, rec.Performance.Len())
	assert.InDelta(t, 9.0, rec.Velocity.Last(), 1e-9)
}

func TestRender(t *testing.T) {
	s := NewSeries("speed", 500)
	for i := 0; i < 500; i++ {
		s.Add(float64(i % 50))
	}

	out := Render(s, 5, 60)
	assert.Contains(t, out, "speed")
	assert.GreaterOrEqual(t, len(strings.Split(out, "\n")), 5)

	empty := NewSeries("idle", 10)
	assert.Equal(t, "idle: no data", Render(empty, 5, 60))
}

func TestDownsample(t *testing.T) {
	got := downsample([]float64{1, 3, 5, 7, 9, 11}, 3)
	assert.Equal(t, []float64{2, 6, 10}, got)
}
