package coltree

import "gonum.org/v1/gonum/spatial/r3"

// Cell is a read-only view of a tree node.
type Cell struct {
	Index     int
	Center    r3.Vec
	Size      float64
	Depth     int
	Occupancy int
	Leaf      bool
	// Forced marks a pair or crowd whose members share a cell at the depth cap.
	Forced bool
	// Members lists the resident particles of a leaf.
	Members []int
}

// Eligible reports whether the cell is a collision candidate pair.
func (c Cell) Eligible() bool { return c.Leaf && c.Occupancy == 2 }

func (t *Tree) cell(n int32) Cell {
	nd := &t.nodes[n]
	c := Cell{
		Index:     int(n),
		Center:    nd.center,
		Size:      nd.size,
		Depth:     int(nd.depth),
		Occupancy: int(nd.count),
		Leaf:      nd.kind != branch,
		Forced:    nd.forced,
	}
	switch nd.kind {
	case single:
		c.Members = []int{int(nd.a)}
	case pair:
		c.Members = []int{int(nd.a), int(nd.b)}
	case crowd:
		for i := nd.a; i != none; i = t.chain[i] {
			c.Members = append(c.Members, int(i))
		}
	}
	return c
}

// Walk follows next pointers from the root and calls fn for every visited
// cell until fn returns false. The tree is linked first if needed.
func (t *Tree) Walk(fn func(Cell) bool) {
	if len(t.nodes) == 0 {
		return
	}
	if !t.linked {
		t.UpdatePointers()
	}
	for n := root; n != none; n = t.nodes[n].next {
		if !fn(t.cell(n)) {
			return
		}
	}
}

// Leaves returns every non-empty leaf in traversal order.
func (t *Tree) Leaves() []Cell {
	var out []Cell
	t.Walk(func(c Cell) bool {
		if c.Leaf && c.Occupancy > 0 {
			out = append(out, c)
		}
		return true
	})
	return out
}
