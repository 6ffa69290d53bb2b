package metrics

import (
	"github.com/san-kum/rigid2d/internal/sim"
)

// ImpulseEffort is the mean impulse magnitude (normal plus friction) applied
// per observed frame.
type ImpulseEffort struct {
	name    string
	sum     float64
	samples int
}

func NewImpulseEffort() *ImpulseEffort {
	return &ImpulseEffort{
		name: "impulse_effort",
	}
}

func (c *ImpulseEffort) Name() string {
	return c.name
}

func (c *ImpulseEffort) Observe(f *sim.Frame) {
	c.sum += f.Stats.NormalImpulse + f.Stats.FrictionImpulse
	c.samples++
}

func (c *ImpulseEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ImpulseEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// ContactRate is the mean number of detected contacts per observed frame.
type ContactRate struct {
	name     string
	contacts int
	samples  int
}

func NewContactRate() *ContactRate {
	return &ContactRate{name: "contact_rate"}
}

func (c *ContactRate) Name() string { return c.name }

func (c *ContactRate) Observe(f *sim.Frame) {
	c.contacts += f.Stats.Contacts
	c.samples++
}

func (c *ContactRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.contacts) / float64(c.samples)
}

func (c *ContactRate) Reset() {
	c.contacts = 0
	c.samples = 0
}
