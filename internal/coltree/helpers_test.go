package coltree

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/atoms"
)

func ensembleAt(points ...r3.Vec) *atoms.Ensemble {
	e, err := atoms.New(atoms.Rb87(), len(points))
	if err != nil {
		panic(err)
	}
	for i, p := range points {
		e.SetPosition(i, p)
	}
	return e
}

func randomEnsemble(n int, seed uint64) *atoms.Ensemble {
	rnd := rand.New(rand.NewSource(seed))
	e, err := atoms.New(atoms.Rb87(), n)
	if err != nil {
		panic(err)
	}
	for i := 0; i < n; i++ {
		e.SetPosition(i, r3.Vec{
			X: rnd.Float64() - 0.5,
			Y: rnd.Float64() - 0.5,
			Z: rnd.Float64() - 0.5,
		})
		e.SetVelocity(i, r3.Vec{
			X: rnd.NormFloat64(),
			Y: rnd.NormFloat64(),
			Z: rnd.NormFloat64(),
		})
	}
	return e
}

// preorder lists non-empty node indices by explicit recursion, treating
// every non-branch node as a leaf.
func preorder(t *Tree, n int32, out []int32) []int32 {
	nd := &t.nodes[n]
	if nd.kind == empty && n != root {
		return out
	}
	out = append(out, n)
	if nd.kind != branch {
		return out
	}
	for c := nd.child; c < nd.child+8; c++ {
		out = preorder(t, c, out)
	}
	return out
}

// fixed replays a cycle of uniform draws.
type fixed struct {
	vals []float64
	i    int
}

func (f *fixed) Float64() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}
