package optics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/optics"
)

var _ = Describe("Engine", func() {
	var e *optics.Engine

	BeforeEach(func() {
		e = optics.Default()
	})

	Describe("FixedPoint", func() {
		It("returns a point the map leaves invariant", func() {
			twiss := beam.TwissSet{{Alpha: 0.8, Beta: 6}, {Alpha: -0.5, Beta: 3}, {Alpha: 0.1, Beta: 40}}
			m := beam.FromTwiss(twiss, [3]float64{1.1, 0.7, 0.3}).
				WithTranslation([6]float64{1e-3, 2e-4, -5e-4, 1e-4, 1e-2, 2e-3})

			p := e.FixedPoint(m)
			Expect(p[beam.IndexHom]).To(Equal(1.0))
			Expect(p.Distance(beam.Origin())).To(BeNumerically(">", 0))
			Expect(m.Apply(p).Distance(p)).To(BeNumerically("<", 1e-10))
		})

		It("falls back to the transverse system when longitudinal motion is frozen", func() {
			twiss := beam.TwissSet{{Alpha: 0.2, Beta: 5}, {Alpha: 0, Beta: 2}, {Alpha: 0, Beta: 1}}
			m := beam.FromTwiss(twiss, [3]float64{0.9, 1.4, 0}).
				WithTranslation([6]float64{2e-3, -1e-4, 3e-4, 0, 0.5, 0.25})

			p := e.FixedPoint(m)
			Expect(p[beam.IndexZ]).To(Equal(0.0))
			Expect(p[beam.IndexZP]).To(Equal(0.0))

			q := m.Apply(p)
			for i := beam.IndexX; i <= beam.IndexYP; i++ {
				Expect(q[i]).To(BeNumerically("~", p[i], 1e-10))
			}
			Expect(p[beam.IndexX]).NotTo(BeZero())
		})
	})

	Describe("PhaseAdvancePerCell and TunePerCell", func() {
		DescribeTable("a rotation block by theta",
			func(theta float64) {
				m := beam.Rotation([3]float64{theta, theta, theta})
				mu := e.PhaseAdvancePerCell(m)
				q := e.TunePerCell(m)
				for _, p := range beam.Planes {
					Expect(mu[p]).To(BeNumerically("~", theta, 1e-12))
					Expect(q[p]).To(BeNumerically("~", theta/(2*math.Pi), 1e-12))
				}
			},
			Entry("small", 0.1),
			Entry("one radian", 1.0),
			Entry("near pi/2", math.Pi/2),
			Entry("near pi", 3.0),
		)

		It("keeps every tune in [0, 1)", func() {
			for theta := -3.1; theta < 3.1; theta += 0.1 {
				q := e.TunePerCell(beam.Rotation([3]float64{theta, theta, theta}))
				for _, v := range q {
					Expect(v).To(And(BeNumerically(">=", 0), BeNumerically("<", 1)))
				}
			}
		})
	})

	Describe("PhaseAdvance", func() {
		It("returns 1 rad for the unit-twiss fixture", func() {
			unit := beam.Twiss{Alpha: 0, Beta: 1, Emittance: 0}
			set := beam.TwissSet{unit, unit, unit}
			m := beam.Identity().WithBlock(beam.X, [2][2]float64{
				{math.Cos(1.0), math.Sin(1.0)},
				{-math.Sin(1.0), math.Cos(1.0)},
			})

			phi, err := e.PhaseAdvance(m, set, set)
			Expect(err).NotTo(HaveOccurred())
			Expect(phi[beam.X]).To(BeNumerically("~", 1.0, 1e-12))
		})
	})

	Describe("MatchedTwiss", func() {
		DescribeTable("recovers the twiss a matrix was built from",
			func(alpha, beta, mu float64) {
				tw := beam.Twiss{Alpha: alpha, Beta: beta}
				m := beam.FromTwiss(beam.TwissSet{tw, tw, tw}, [3]float64{mu, mu, mu})

				set := e.MatchedTwiss(m)
				for _, p := range beam.Planes {
					Expect(set[p].Alpha).To(BeNumerically("~", alpha, 1e-9))
					Expect(set[p].Beta).To(BeNumerically("~", beta, 1e-9))
					Expect(math.IsNaN(set[p].Emittance)).To(BeTrue())
				}
			},
			Entry("fodo 60 degrees", 0.0, 10.0, math.Pi/3),
			Entry("focusing slope", -1.2, 8.3, 1.3),
			Entry("defocusing slope", 0.4, 2.1, 2.2),
			Entry("advance beyond pi", 0.7, 15.0, 4.0),
		)
	})

	Describe("Dispersion", func() {
		DescribeTable("is zero when the z' column is zero",
			func(gamma float64) {
				m := beam.FromTwiss(
					beam.TwissSet{{Beta: 3}, {Beta: 4}, {Beta: 5}},
					[3]float64{1, 1.5, 0.2},
				)
				d, err := e.Dispersion(m, gamma)
				Expect(err).NotTo(HaveOccurred())
				Expect(d).To(Equal([4]float64{}))
			},
			Entry("at rest", 1.0),
			Entry("moderate", 2.5),
			Entry("ultra relativistic", 1e4),
		)

		It("solves the diagonal fixture", func() {
			half := [2][2]float64{{0.5, 0}, {0, 0.5}}
			m := beam.Identity().
				WithBlock(beam.X, half).
				WithBlock(beam.Y, half).
				WithColumn(beam.IndexZP, [6]float64{0.0025, 0, 0, 0, 0, 1})

			d, err := e.Dispersion(m, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(d[0]).To(BeNumerically("~", 0.005, 1e-15))
			Expect(d[1]).To(BeZero())
			Expect(d[2]).To(BeZero())
			Expect(d[3]).To(BeZero())
		})

		It("normalizes by gamma squared before solving", func() {
			half := [2][2]float64{{0.5, 0}, {0, 0.5}}
			m := beam.Identity().
				WithBlock(beam.X, half).
				WithBlock(beam.Y, half).
				WithColumn(beam.IndexZP, [6]float64{0.01, 0, 0, 0, 0, 1})

			d, err := e.Dispersion(m, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(d[0]).To(BeNumerically("~", 0.005, 1e-15))
		})
	})

	Describe("ChromaticAberration", func() {
		It("divides transverse entries by exactly gamma squared", func() {
			col := [6]float64{0.1, 0.2, -0.3, 0.4, 1.5, -2.5}
			m := beam.Identity().WithColumn(beam.IndexZP, col)
			gamma := 3.0

			c, err := e.ChromaticAberration(m, gamma)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 4; i++ {
				Expect(c[i]).To(Equal(col[i] / (gamma * gamma)))
			}
			Expect(c[4]).To(Equal(col[4]))
			Expect(c[5]).To(Equal(col[5]))
		})
	})
})
