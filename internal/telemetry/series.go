// Package telemetry records bounded time series of simulation quantities and
// renders them as terminal charts.
package telemetry

import "math"

// Series is a bounded FIFO of samples. Once full, each Add drops the oldest
// sample.
type Series struct {
	Title string

	data  []float64
	start int
	n     int
}

func NewSeries(title string, capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{Title: title, data: make([]float64, capacity)}
}

func (s *Series) Add(v float64) {
	if s.n < len(s.data) {
		s.data[(s.start+s.n)%len(s.data)] = v
		s.n++
		return
	}
	s.data[s.start] = v
	s.start = (s.start + 1) % len(s.data)
}

func (s *Series) Len() int      { return s.n }
func (s *Series) Capacity() int { return len(s.data) }

// Values returns the samples oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.data[(s.start+i)%len(s.data)]
	}
	return out
}

// Last returns the newest sample, or 0 when empty.
func (s *Series) Last() float64 {
	if s.n == 0 {
		return 0
	}
	return s.data[(s.start+s.n-1)%len(s.data)]
}

func (s *Series) MinMax() (min, max float64) {
	if s.n == 0 {
		return 0, 0
	}
	min, max = math.Inf(1), math.Inf(-1)
	for i := 0; i < s.n; i++ {
		v := s.data[(s.start+i)%len(s.data)]
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max
}

func (s *Series) Reset() {
	s.start, s.n = 0, 0
}
