package coltree

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"
)

var _ = Describe("Scheduler", func() {
	const (
		dt    = 1e-5
		dtOut = 1e-3
	)

	newScheduler := func(initial float64) *Scheduler {
		s, err := NewScheduler(New(DefaultOptions()), dt, dtOut, initial)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("rejects a step larger than the measurement step", func() {
		_, err := NewScheduler(New(DefaultOptions()), 1e-2, 1e-3, 1e-3)
		Expect(err).To(MatchError(ErrIntervalBounds))

		_, err = NewScheduler(New(DefaultOptions()), 0, 1e-3, 1e-3)
		Expect(err).To(MatchError(ErrIntervalBounds))
	})

	It("clamps the initial interval", func() {
		Expect(newScheduler(1).Interval()).To(Equal(dtOut))
		Expect(newScheduler(0).Interval()).To(Equal(dt))
	})

	DescribeTable("adapts to the collision fraction",
		func(initial float64, collisions, n int, want float64) {
			s := newScheduler(initial)
			Expect(s.Adapt(collisions, n)).To(BeNumerically("~", want, 1e-15))
			Expect(s.Interval()).To(BeNumerically("~", want, 1e-15))
		},
		Entry("halves above the high fraction", dt*10, 6, 10, dt*5),
		Entry("grows tenfold below the low fraction", dt*10, 5, 1000, dt*100),
		Entry("holds in between", dt*10, 1, 10, dt*10),
		Entry("holds at exactly the high fraction", dt*10, 5, 10, dt*10),
		Entry("treats an empty ensemble as no collisions", dt*10, 0, 0, dt*100),
		Entry("stops at the measurement step", dtOut, 0, 100, dtOut),
		Entry("stops at the integration step", dt, 10, 10, dt),
	)

	It("records collisions and density on the ensemble", func() {
		e := randomEnsemble(2000, 21)
		e.CrossSection = 1e2
		e.Weight = 50
		e.Collisions = 4

		s := newScheduler(dt * 10)
		hits := s.Event(e, rand.New(rand.NewSource(1)))

		Expect(hits).To(BeNumerically(">", 0))
		Expect(e.Collisions).To(Equal(4 + hits))
		Expect(s.Density()).To(Equal(1 / (s.Tree().MinCellSize() * s.Tree().MinCellSize() * s.Tree().MinCellSize())))
		Expect(e.PeakDensity).To(Equal(s.Density() * 50))
		Expect(s.Events()).To(Equal(1))
	})

	It("slows down events for a cloud that rarely collides", func() {
		e := randomEnsemble(500, 23)
		s := newScheduler(dt)
		for k := 0; k < 3; k++ {
			Expect(s.Event(e, rand.New(rand.NewSource(uint64(k))))).To(Equal(0))
		}
		Expect(s.Interval()).To(Equal(dtOut))
		Expect(s.Events()).To(Equal(3))
	})
})
