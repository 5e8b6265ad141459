package propagator_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/maneuvers"
	"github.com/san-kum/astroprop/internal/orbits"
	"github.com/san-kum/astroprop/internal/propagator"
	"github.com/san-kum/astroprop/internal/spacecraft"
)

const start = 10.0

var _ = Describe("Orbit transfers", func() {
	var (
		mu    = bodies.Earth.Mu
		model = bodies.NewPointMass(bodies.Earth)
	)

	// run flies a circular spacecraft at r1 under plan until end and
	// returns it with the propagator and the number of plan events.
	run := func(r1 float64, plan *maneuvers.Plan, end float64) (*spacecraft.Spacecraft, *propagator.Propagator, int) {
		handled := 0
		plan.AddHandler(events.HandlerFunc(func(events.Target, float64) error {
			handled++
			return nil
		}))

		x, err := orbits.CircularState(r3.Vec{X: r1}, mu)
		Expect(err).NotTo(HaveOccurred())
		sc, err := spacecraft.New("sc1", x, 0, spacecraft.WithPlan(plan))
		Expect(err).NotTo(HaveOccurred())
		reg, err := spacecraft.NewRegistry(sc)
		Expect(err).NotTo(HaveOccurred())
		p, err := propagator.New(model, reg)
		Expect(err).NotTo(HaveOccurred())

		reached, err := p.PropagateTo(context.Background(), end)
		Expect(err).NotTo(HaveOccurred())
		Expect(reached).To(Equal(end))
		return sc, p, handled
	}

	DescribeTable("Hohmann transfer between circular orbits",
		func(r1, r2 float64) {
			h, err := maneuvers.NewHohmann(r1, r2, mu)
			Expect(err).NotTo(HaveOccurred())
			plan := h.Plan(start)

			sc, p, handled := run(r1, plan, start+h.TransitTime()+600)

			Expect(handled).To(Equal(2))
			Expect(plan.Active()).To(BeFalse())
			Expect(plan.Stage()).To(Equal(2))

			evs := p.Events()
			Expect(evs).To(HaveLen(2))
			Expect(evs[0].Time).To(BeNumerically("~", start, 1e-6))
			Expect(evs[1].Time).To(BeNumerically("~", start+h.TransitTime(), 1.0))

			Expect(r3.Norm(sc.Position())).To(BeNumerically("~", r2, r2*1e-3))
			Expect(orbits.Eccentricity(sc.Position(), sc.Velocity(), mu)).To(BeNumerically("<", 1e-3))
			Expect(sc.DeltaVApplied()).To(BeNumerically("~", h.TotalDeltaV(), 1e-6))
		},
		Entry("raising LEO to GEO", 6628000.0, 42164154.0),
		Entry("lowering GEO to LEO", 42164154.0, 6628000.0),
	)

	It("flies a bi-elliptic transfer through three burns", func() {
		r1, r2, rb := 7000e3, 42164154.0, 60000e3
		b, err := maneuvers.NewBiElliptic(r1, r2, rb, mu)
		Expect(err).NotTo(HaveOccurred())
		plan := b.Plan(start)

		sc, p, handled := run(r1, plan, start+b.TransitTime()+600)

		Expect(handled).To(Equal(3))
		Expect(plan.Active()).To(BeFalse())
		Expect(p.Events()).To(HaveLen(3))
		Expect(r3.Norm(sc.Position())).To(BeNumerically("~", r2, r2*1e-3))
		Expect(orbits.Eccentricity(sc.Position(), sc.Velocity(), mu)).To(BeNumerically("<", 1e-3))
	})

	It("leaves a spacecraft without a plan on its orbit", func() {
		x, err := orbits.CircularState(r3.Vec{X: 6628000}, mu)
		Expect(err).NotTo(HaveOccurred())
		sc, err := spacecraft.New("coast", x, 0)
		Expect(err).NotTo(HaveOccurred())
		reg, err := spacecraft.NewRegistry(sc)
		Expect(err).NotTo(HaveOccurred())
		p, err := propagator.New(model, reg, propagator.WithWindow(10))
		Expect(err).NotTo(HaveOccurred())

		_, err = p.PropagateTo(context.Background(), 3000)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Events()).To(BeEmpty())
		Expect(r3.Norm(sc.Position())).To(BeNumerically("~", 6628000, 10))
	})
})
