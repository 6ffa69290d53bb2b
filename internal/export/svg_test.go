package export

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/viz"
	"github.com/san-kum/rigid2d/internal/world"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			require.Equal(t, "EOF", err.Error(), "malformed svg")
			return
		}
	}
}

func frames() []sim.Frame {
	body := func(id int, shape string, x float64) world.BodyState {
		return world.BodyState{ID: world.BodyID(id), Shape: shape, Radius: 10, Mass: 1, Position: vecmath.New(x, 50)}
	}
	return []sim.Frame{
		{Step: 0, Bodies: []world.BodyState{body(0, "circle", 20), body(1, "square", 80)}},
		{Step: 1, Bodies: []world.BodyState{body(0, "circle", 25), body(1, "square", 75)}},
		{Step: 2, Bodies: []world.BodyState{body(0, "circle", 30), body(1, "square", 70)}},
	}
}

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 2))

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	out := CanvasToSVG(c, 2)

	wellFormed(t, out)
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, `width="16" height="16"`)
	assert.Contains(t, out, `cx="1.0" cy="1.0"`)
	assert.Contains(t, out, `cx="15.0" cy="15.0"`)
}

func TestTrajectoryToSVG(t *testing.T) {
	assert.Empty(t, TrajectoryToSVG([]vecmath.Vec2{{X: 1, Y: 1}}, 100, 100, "#fff"))

	out := TrajectoryToSVG([]vecmath.Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}}, 120, 120, "#00ff00")
	wellFormed(t, out)
	assert.Contains(t, out, `stroke="#00ff00"`)
	// 10% padding on each side, y not flipped.
	assert.Contains(t, out, "M10.0,10.0 L110.0,110.0")
}

func TestFrameToSVG(t *testing.T) {
	f := frames()[0]
	out := FrameToSVG(f, 100, 100, 2)

	wellFormed(t, out)
	assert.Contains(t, out, `width="200" height="200"`)
	assert.Contains(t, out, `<circle id="shape-0" cx="20.00" cy="50.00" r="10.00"`)
	assert.Contains(t, out, `points="70.00,40.00 90.00,40.00 90.00,60.00 70.00,60.00"`)
}

func TestTrajectoriesToSVG(t *testing.T) {
	assert.Empty(t, TrajectoriesToSVG(nil, 100, 100, 1))

	out := TrajectoriesToSVG(frames(), 100, 100, 1)
	wellFormed(t, out)
	assert.Equal(t, 2, strings.Count(out, "<polyline"))
	assert.Contains(t, out, `<polyline id="body-0" points="20.00,50.00 25.00,50.00 30.00,50.00"/>`)
	assert.Contains(t, out, `cx="30.00"`, "last frame bodies drawn")
}

func TestDomainFallsBackToBodyExtent(t *testing.T) {
	w, h := domain(0, 0, [][]world.BodyState{frames()[0].Bodies})
	assert.Equal(t, 90.0, w)
	assert.Equal(t, 60.0, h)

	w, h = domain(0, 0, nil)
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)
}
