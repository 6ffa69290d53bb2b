package world_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

var _ = Describe("World", func() {
	var (
		cfg world.Config
		w   *world.World
	)

	BeforeEach(func() {
		cfg = world.DefaultConfig()
	})

	JustBeforeEach(func() {
		var err error
		w, err = world.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("gravity", func() {
		It("pulls dynamic bodies toward larger y", func() {
			id, err := w.AddBody(world.BodySpec{Mass: 1, Position: vecmath.New(400, 100), Shape: rigidbody.Circle(20)})
			Expect(err).NotTo(HaveOccurred())

			w.Advance()

			v, err := w.Velocity(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.X).To(BeZero())
			Expect(v.Y).To(BeNumerically("~", cfg.Gravity*cfg.Dt, 1e-12))
		})

		It("leaves static bodies where they are", func() {
			id, err := w.AddBody(world.BodySpec{Mass: 0, Position: vecmath.New(400, 300), Shape: rigidbody.Square(30)})
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddBody(world.BodySpec{Mass: 1, Position: vecmath.New(400, 245), Velocity: vecmath.New(0, 10), Shape: rigidbody.Circle(20)})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 20; i++ {
				w.Advance()
			}

			p, _ := w.Position(id)
			v, _ := w.Velocity(id)
			Expect(p).To(Equal(vecmath.New(400, 300)))
			Expect(v).To(Equal(vecmath.Zero))
		})
	})

	Context("in a closed system of circles", func() {
		BeforeEach(func() {
			cfg.Gravity = 0
			cfg.MaxVelocity = 0
			cfg.Width, cfg.Height = 0, 0
		})

		JustBeforeEach(func() {
			for i := 0; i < 6; i++ {
				_, err := w.AddBody(world.BodySpec{
					Mass:     1 + float64(i%3),
					Position: vecmath.New(float64(i)*35, float64(i%2)*8),
					Velocity: vecmath.New(float64(3-i), float64(i%2)-0.5),
					Shape:    rigidbody.Circle(20),
				})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("conserves momentum", func() {
			p0 := w.TotalMomentum()
			contacts := 0
			for i := 0; i < 100; i++ {
				contacts += w.Step(0.25).Contacts
			}
			Expect(contacts).To(BeNumerically(">", 0))
			Expect(w.TotalMomentum().Equal(p0, 1e-9)).To(BeTrue())
		})

		It("conserves kinetic energy with full restitution", func() {
			ke0 := w.TotalKineticEnergy()
			for i := 0; i < 100; i++ {
				w.Step(0.25)
			}
			Expect(w.TotalKineticEnergy()).To(BeNumerically("~", ke0, 1e-9*ke0))
		})
	})

	Describe("the domain", func() {
		It("keeps every body inside the walls", func() {
			for i := 0; i < 10; i++ {
				_, err := w.AddBody(world.BodySpec{
					Mass:     1,
					Position: vecmath.New(60+float64(i)*70, 300),
					Velocity: vecmath.New(float64(i*7%11)-5, float64(i*5%13)-6),
					Shape:    rigidbody.Circle(20),
				})
				Expect(err).NotTo(HaveOccurred())
			}

			for step := 0; step < 500; step++ {
				w.Advance()
				for _, b := range w.Snapshot() {
					Expect(b.Position.X-b.Radius).To(BeNumerically(">=", 0))
					Expect(b.Position.X+b.Radius).To(BeNumerically("<=", cfg.Width))
					Expect(b.Position.Y-b.Radius).To(BeNumerically(">=", 0))
					Expect(b.Position.Y+b.Radius).To(BeNumerically("<=", cfg.Height))
					Expect(b.Velocity.Len()).To(BeNumerically("<=", cfg.MaxVelocity+1e-9))
				}
			}
		})
	})

	Describe("accessors", func() {
		It("reject ids that were never issued", func() {
			_, err := w.Body(3)
			Expect(err).To(MatchError(world.ErrUnknownBody))
			_, err = w.KineticEnergy(-2)
			Expect(err).To(MatchError(world.ErrUnknownBody))
			_, err = w.Angle(0)
			Expect(err).To(MatchError(world.ErrUnknownBody))
		})

		It("advance the angle by the angular velocity", func() {
			id, err := w.AddBody(world.BodySpec{Mass: 1, Position: vecmath.New(400, 300), Shape: rigidbody.Square(10), AngularVelocity: 0.2})
			Expect(err).NotTo(HaveOccurred())

			w.Step(0.5)

			a, err := w.Angle(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(BeNumerically("~", 0.1, 1e-12))
			Expect(math.IsNaN(a)).To(BeFalse())
		})
	})
})
