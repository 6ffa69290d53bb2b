// Package export renders simulation output as SVG documents.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/viz"
	"github.com/san-kum/rigid2d/internal/world"
)

const background = "#0a0a0a"

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", viz.CurrentTheme.Body)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as a single path fitted into a width x height
// image with 10% padding. Screen y grows downward, as in the world.
func TrajectoryToSVG(points []vecmath.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	lo, hi := bounds(points)
	rangeX := hi.X - lo.X
	rangeY := hi.Y - lo.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo.X -= rangeX * 0.1
	lo.Y -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, p := range points {
		x := (p.X - lo.X) / rangeX * float64(width)
		y := (p.Y - lo.Y) / rangeY * float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// FrameToSVG draws the bodies of f inside a w x h domain, in world units
// multiplied by scale.
func FrameToSVG(f sim.Frame, w, h, scale float64) string {
	w, h = domain(w, h, [][]world.BodyState{f.Bodies})

	var sb strings.Builder
	writeHeader(&sb, w*scale, h*scale)
	fmt.Fprintf(&sb, "<g transform=\"scale(%g)\">\n", scale)
	writeDomain(&sb, w, h)
	writeBodies(&sb, f.Bodies)
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws the path of every body across frames, with the
// bodies of the last frame on top.
func TrajectoriesToSVG(frames []sim.Frame, w, h, scale float64) string {
	if len(frames) == 0 {
		return ""
	}
	all := make([][]world.BodyState, len(frames))
	paths := make(map[world.BodyID][]vecmath.Vec2)
	for i, f := range frames {
		all[i] = f.Bodies
		for _, b := range f.Bodies {
			paths[b.ID] = append(paths[b.ID], b.Position)
		}
	}
	w, h = domain(w, h, all)

	ids := make([]world.BodyID, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	writeHeader(&sb, w*scale, h*scale)
	fmt.Fprintf(&sb, "<g transform=\"scale(%g)\">\n", scale)
	writeDomain(&sb, w, h)

	fmt.Fprintf(&sb, "<g fill=\"none\" stroke=\"%s\" stroke-opacity=\"0.5\" stroke-width=\"1\">\n", viz.CurrentTheme.Accent)
	for _, id := range ids {
		pts := paths[id]
		if len(pts) < 2 {
			continue
		}
		fmt.Fprintf(&sb, "<polyline id=\"body-%d\" points=\"", id)
		for i, p := range pts {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.2f,%.2f", p.X, p.Y)
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</g>\n")

	writeBodies(&sb, frames[len(frames)-1].Bodies)
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func writeDomain(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, "<rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\"/>\n", w, h, viz.CurrentTheme.Muted)
}

func writeBodies(sb *strings.Builder, bodies []world.BodyState) {
	for _, b := range bodies {
		color := viz.CurrentTheme.Body
		if b.Mass == 0 {
			color = viz.CurrentTheme.Static
		}
		switch b.Shape {
		case "square":
			corners := viz.Corners(b)
			fmt.Fprintf(sb, "<polygon id=\"shape-%d\" fill=\"none\" stroke=\"%s\" points=\"", b.ID, color)
			for i, p := range corners {
				if i > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(sb, "%.2f,%.2f", p.X, p.Y)
			}
			sb.WriteString("\"/>\n")
		default:
			spoke := b.Position.Add(vecmath.New(b.Radius, 0).Rotate(b.Angle))
			fmt.Fprintf(sb, "<circle id=\"shape-%d\" cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\"/>\n",
				b.ID, b.Position.X, b.Position.Y, b.Radius, color)
			fmt.Fprintf(sb, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\"/>\n",
				b.Position.X, b.Position.Y, spoke.X, spoke.Y, color)
		}
	}
}

// domain returns w and h, or the extent of every body when walls are
// disabled.
func domain(w, h float64, frames [][]world.BodyState) (float64, float64) {
	if w > 0 && h > 0 {
		return w, h
	}
	var pts []vecmath.Vec2
	for _, bodies := range frames {
		for _, b := range bodies {
			ext := vecmath.New(b.Radius, b.Radius)
			pts = append(pts, b.Position.Add(ext))
		}
	}
	if len(pts) == 0 {
		return 800, 600
	}
	_, hi := bounds(pts)
	return max(hi.X, 1), max(hi.Y, 1)
}

func bounds(points []vecmath.Vec2) (lo, hi vecmath.Vec2) {
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi
}
