package coltree

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Scatter", func() {
	It("conserves momentum and relative speed", func() {
		rnd := rand.New(rand.NewSource(3))
		for k := 0; k < 1000; k++ {
			vi := r3.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
			vj := r3.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
			ai, aj := Scatter(vi, vj, rnd)

			before := r3.Add(vi, vj)
			after := r3.Add(ai, aj)
			Expect(r3.Norm(r3.Sub(before, after))).To(BeNumerically("<", 1e-12))
			Expect(r3.Norm(r3.Sub(ai, aj))).To(BeNumerically("~", r3.Norm(r3.Sub(vi, vj)), 1e-12))
		}
	})

	It("leaves a pair at rest relative to each other unchanged", func() {
		v := r3.Vec{X: 1, Y: 2, Z: 3}
		a, b := Scatter(v, v, &fixed{vals: []float64{0.3, 0.8}})
		Expect(a).To(Equal(v))
		Expect(b).To(Equal(v))
	})
})

var _ = Describe("Accept", func() {
	DescribeTable("converges to min(1, crit*v/invRho)",
		func(crit, v, invRho float64) {
			const trials = 200000
			rnd := rand.New(rand.NewSource(11))
			hits := 0
			for k := 0; k < trials; k++ {
				if Accept(invRho, crit, v, rnd.Float64()) {
					hits++
				}
			}
			want := math.Min(1, crit*v/invRho)
			Expect(float64(hits) / trials).To(BeNumerically("~", want, 0.005))
		},
		Entry("probability 0.6", 1e-3, 300.0, 0.5),
		Entry("probability 0.05", 1e-4, 50.0, 0.1),
		Entry("saturated", 1.0, 10.0, 0.5),
		Entry("no relative motion", 1.0, 0.0, 0.5),
	)
})

var _ = Describe("Compute", func() {
	It("changes velocities only and conserves total momentum", func() {
		e := randomEnsemble(3000, 5)
		e.CrossSection = 1e3
		before := e.Clone()

		tree := New(DefaultOptions())
		tree.Init(e)
		tree.UpdatePointers()
		hits := tree.Compute(e, 1e-3, rand.New(rand.NewSource(9)))

		Expect(hits).To(BeNumerically(">", 0))
		Expect(e.Pos).To(Equal(before.Pos))
		Expect(e.Vel).NotTo(Equal(before.Vel))
		Expect(r3.Norm(r3.Sub(e.Momentum(), before.Momentum()))).To(BeNumerically("<", 1e-9))
	})

	It("tests each pair cell exactly once", func() {
		e := randomEnsemble(1000, 13)
		tree := New(DefaultOptions())
		tree.Init(e)
		tree.UpdatePointers()

		pairs := 0
		for _, c := range tree.Leaves() {
			if c.Eligible() {
				pairs++
			}
		}
		// a zero draw accepts every pair with distinct velocities
		rng := &fixed{vals: []float64{0}}
		hits := tree.Compute(e, 1e-3, rng)
		Expect(hits).To(Equal(pairs))
		Expect(rng.i).To(Equal(3 * pairs))
	})

	It("links the tree itself when needed", func() {
		e := randomEnsemble(100, 17)
		tree := New(DefaultOptions())
		tree.Init(e)
		Expect(tree.Compute(e, 1e-3, &fixed{vals: []float64{0}})).To(BeNumerically(">", 0))
	})
})
