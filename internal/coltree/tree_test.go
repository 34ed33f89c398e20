package coltree

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Octant", func() {
	It("selects the upper side on ties", func() {
		Expect(OctantOf(r3.Vec{}, r3.Vec{})).To(Equal(HHH))
		Expect(OctantOf(r3.Vec{}, r3.Vec{X: -1, Y: 0, Z: -1})).To(Equal(LHL))
		Expect(OctantOf(r3.Vec{}, r3.Vec{X: 1, Y: -1, Z: -1})).To(Equal(HLL))
	})

	It("offsets every child into its own corner", func() {
		for o := LLL; o <= HHH; o++ {
			c := o.Offset(0.25)
			Expect(OctantOf(r3.Vec{}, c)).To(Equal(o))
			Expect(math.Abs(c.X)).To(Equal(0.25))
			Expect(math.Abs(c.Y)).To(Equal(0.25))
			Expect(math.Abs(c.Z)).To(Equal(0.25))
		}
	})
})

var _ = Describe("Tree", func() {
	var tree *Tree

	BeforeEach(func() {
		tree = New(DefaultOptions())
	})

	Context("with no particles", func() {
		It("returns the root density proxy and resolves nothing", func() {
			e := ensembleAt()
			Expect(tree.Init(e)).To(Equal(1.0))
			Expect(tree.Len()).To(Equal(1))
			tree.UpdatePointers()
			Expect(tree.Leaves()).To(BeEmpty())
			Expect(tree.Compute(e, 1e-3, &fixed{vals: []float64{0}})).To(Equal(0))
		})
	})

	Context("with a single particle", func() {
		It("never allocates children", func() {
			e := ensembleAt(r3.Vec{X: 0.1, Y: -0.2, Z: 0.3})
			Expect(tree.Init(e)).To(Equal(1.0))
			Expect(tree.Len()).To(Equal(1))
			Expect(tree.Compute(e, 1e-3, &fixed{vals: []float64{0}})).To(Equal(0))

			leaves := tree.Leaves()
			Expect(leaves).To(HaveLen(1))
			Expect(leaves[0].Members).To(Equal([]int{0}))
		})
	})

	Context("with two particles in opposite corners", func() {
		var density float64

		BeforeEach(func() {
			e := ensembleAt(
				r3.Vec{X: -0.4, Y: -0.4, Z: -0.4},
				r3.Vec{X: 0.4, Y: 0.4, Z: 0.4},
			)
			density = tree.Init(e)
			tree.UpdatePointers()
			Expect(tree.Compute(e, 1e-3, &fixed{vals: []float64{0}})).To(Equal(0))
		})

		It("estimates the density from the half-size cells they separate into", func() {
			Expect(density).To(BeNumerically("~", 8, 1e-12))
			Expect(tree.MinCellSize()).To(Equal(0.5))
		})

		It("keeps them as one pair cell without subdividing", func() {
			Expect(tree.Len()).To(Equal(1))
			leaves := tree.Leaves()
			Expect(leaves).To(HaveLen(1))
			Expect(leaves[0].Eligible()).To(BeTrue())
			Expect(leaves[0].Forced).To(BeFalse())
			Expect(leaves[0].Members).To(ConsistOf(0, 1))
			Expect(leaves[0].Size).To(Equal(1.0))
		})
	})

	Context("with three particles in distinct octants", func() {
		It("splits the root once", func() {
			e := ensembleAt(
				r3.Vec{X: -0.4, Y: -0.4, Z: -0.4},
				r3.Vec{X: 0.4, Y: 0.4, Z: 0.4},
				r3.Vec{X: 0.4, Y: -0.4, Z: 0.4},
			)
			Expect(tree.Init(e)).To(BeNumerically("~", 8, 1e-12))
			Expect(tree.Len()).To(Equal(9))

			var occ []int
			for _, c := range tree.Leaves() {
				Expect(c.Size).To(Equal(0.5))
				Expect(c.Depth).To(Equal(1))
				occ = append(occ, c.Occupancy)
			}
			Expect(occ).To(Equal([]int{1, 1, 1}))
		})
	})

	Context("with coincident particles", func() {
		BeforeEach(func() {
			tree = New(Options{Size: 1, MaxDepth: 10})
		})

		It("terminates as a forced pair at the depth cap", func() {
			e := ensembleAt(r3.Vec{}, r3.Vec{})
			Expect(tree.Init(e)).To(BeNumerically("~", math.Pow(1024, 3), 1e-3))
			Expect(tree.MinCellSize()).To(Equal(1.0 / 1024))

			leaves := tree.Leaves()
			Expect(leaves).To(HaveLen(1))
			Expect(leaves[0].Eligible()).To(BeTrue())
			Expect(leaves[0].Forced).To(BeTrue())
		})

		It("chains a third particle into a crowd at the cap", func() {
			e := ensembleAt(r3.Vec{}, r3.Vec{}, r3.Vec{})
			e.SetVelocity(0, r3.Vec{X: 1})
			e.SetVelocity(1, r3.Vec{X: -1})
			e.SetVelocity(2, r3.Vec{Y: 1})
			tree.Init(e)
			Expect(tree.Len()).To(Equal(1 + 8*10))

			leaves := tree.Leaves()
			Expect(leaves).To(HaveLen(1))
			Expect(leaves[0].Depth).To(Equal(10))
			Expect(leaves[0].Occupancy).To(Equal(3))
			Expect(leaves[0].Members).To(Equal([]int{0, 1, 2}))
			Expect(leaves[0].Eligible()).To(BeFalse())

			Expect(tree.Compute(e, 1, &fixed{vals: []float64{0}})).To(Equal(1))
			Expect(e.Velocity(2)).To(Equal(r3.Vec{Y: 1}))
		})
	})

	Context("with a random cloud", func() {
		const n = 2000

		BeforeEach(func() {
			tree.Init(randomEnsemble(n, 7))
			tree.UpdatePointers()
		})

		It("accounts for every particle exactly once in the leaves", func() {
			seen := make(map[int]int)
			total := 0
			for _, c := range tree.Leaves() {
				total += c.Occupancy
				Expect(c.Members).To(HaveLen(c.Occupancy))
				for _, m := range c.Members {
					seen[m]++
				}
			}
			Expect(total).To(Equal(n))
			Expect(seen).To(HaveLen(n))
			for _, k := range seen {
				Expect(k).To(Equal(1))
			}
		})

		It("keeps branch occupancy equal to the sum of its children", func() {
			for i := range tree.nodes {
				nd := &tree.nodes[i]
				if nd.kind != branch {
					Expect(nd.child).To(Equal(none))
					continue
				}
				sum := int32(0)
				for c := nd.child; c < nd.child+8; c++ {
					child := &tree.nodes[c]
					Expect(child.size).To(Equal(nd.size / 2))
					sum += child.count
				}
				Expect(nd.count).To(Equal(sum))
				Expect(nd.count).To(BeNumerically(">=", 3))
			}
		})

		It("walks every non-empty node once in pre-order", func() {
			want := preorder(tree, root, nil)

			var got []int32
			steps := 0
			tree.Walk(func(c Cell) bool {
				got = append(got, int32(c.Index))
				steps++
				return steps <= tree.Len()
			})
			Expect(steps).To(BeNumerically("<=", tree.Len()))
			Expect(got).To(Equal(want))
		})

		It("never offers a particle to two collision tests", func() {
			seen := make(map[int]bool)
			for _, c := range tree.Leaves() {
				if !c.Eligible() {
					continue
				}
				for _, m := range c.Members {
					Expect(seen[m]).To(BeFalse())
					seen[m] = true
				}
			}
			Expect(seen).NotTo(BeEmpty())
		})

		It("reuses the arena on rebuild", func() {
			nodes := tree.Len()
			capacity := cap(tree.nodes)
			tree.Init(randomEnsemble(n, 7))
			Expect(tree.Len()).To(Equal(nodes))
			Expect(cap(tree.nodes)).To(Equal(capacity))
		})
	})
})
