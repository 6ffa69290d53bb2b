package metrics

import (
	"github.com/san-kum/rigid2d/internal/sim"
)

// Stability is the fraction of frames in which every body is finite and no
// faster than the speed limit. With the velocity cap on, a frame only fails
// when the state has blown up.
type Stability struct {
	limit  float64
	frames int
	bad    int
	peak   float64
}

func NewStability(limit float64) *Stability {
	return &Stability{limit: limit}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(f *sim.Frame) {
	s.frames++
	if !f.IsValid() {
		s.bad++
		return
	}
	over := false
	for _, b := range f.Bodies {
		speed := b.Velocity.Len()
		if speed > s.peak {
			s.peak = speed
		}
		if speed > s.limit {
			over = true
		}
	}
	if over {
		s.bad++
	}
}

func (s *Stability) Value() float64 {
	if s.frames == 0 {
		return 1
	}
	return float64(s.frames-s.bad) / float64(s.frames)
}

// Peak is the highest finite body speed seen.
func (s *Stability) Peak() float64 { return s.peak }

func (s *Stability) Reset() {
	*s = Stability{limit: s.limit}
}
