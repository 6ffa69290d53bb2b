package telemetry

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Render plots s as an ASCII chart. Series wider than width are averaged
// down to width columns. An empty series renders as its title alone.
func Render(s *Series, height, width int) string {
	data := s.Values()
	if len(data) == 0 {
		return s.Title + ": no data"
	}
	if width > 0 && len(data) > width {
		data = downsample(data, width)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(s.Title),
	)
}

// RenderAll renders every series of r separated by blank lines.
func RenderAll(r *Recorder, height, width int) string {
	var sb strings.Builder
	for i, s := range r.Series() {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(Render(s, height, width))
	}
	return sb.String()
}

func downsample(data []float64, width int) []float64 {
	out := make([]float64, width)
	bucket := float64(len(data)) / float64(width)
	for i := range out {
		lo := int(float64(i) * bucket)
		hi := int(float64(i+1) * bucket)
		if hi <= lo {
			hi = lo + 1
		}
		sum := 0.0
		for _, v := range data[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
