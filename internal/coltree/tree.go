package coltree

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/atoms"
)

// none marks the absence of a node or particle index.
const none int32 = -1

const root int32 = 0

// DefaultMaxDepth bounds subdivision. At 40 levels a 1 m root reaches
// cells of about 1e-12 m.
const DefaultMaxDepth = 40

type kind uint8

const (
	empty  kind = iota // no particle
	single             // one particle in a
	pair               // two particles in a, b: one collision test
	branch             // eight children starting at child
	crowd              // three or more particles at the depth cap, chained from a to b
)

func (k kind) String() string {
	switch k {
	case empty:
		return "empty"
	case single:
		return "single"
	case pair:
		return "pair"
	case branch:
		return "branch"
	case crowd:
		return "crowd"
	}
	return "unknown"
}

type node struct {
	center r3.Vec
	size   float64 // edge length
	depth  int32
	kind   kind
	forced bool // pair members never separate above the depth cap
	count  int32
	a, b   int32
	child  int32
	next   int32
	skip   int32
}

// Options sets the root cell and the depth cap.
type Options struct {
	Center   r3.Vec
	Size     float64
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{Size: 1.0, MaxDepth: DefaultMaxDepth}
}

// Tree is a disposable octree over the positions of an ensemble.
type Tree struct {
	opts    Options
	nodes   []node
	chain   []int32
	minSize float64
	linked  bool
}

func New(opts Options) *Tree {
	if opts.Size <= 0 {
		opts.Size = 1.0
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Tree{opts: opts, minSize: opts.Size}
}

func (t *Tree) Options() Options { return t.opts }

// Len returns the number of allocated nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Init discards the previous tree, inserts every particle of e and
// returns the peak density proxy 1/minSize^3, where minSize is the
// smallest cell any particle was placed in. An empty or single-particle
// ensemble yields the root cell size.
func (t *Tree) Init(e *atoms.Ensemble) float64 {
	n := e.N()
	t.nodes = append(t.nodes[:0], t.newNode(t.opts.Center, t.opts.Size, 0))
	if cap(t.chain) < n {
		t.chain = make([]int32, n)
	}
	t.chain = t.chain[:n]
	t.minSize = t.opts.Size
	t.linked = false

	for i := 0; i < n; i++ {
		t.insert(e, root, int32(i))
	}
	return 1 / (t.minSize * t.minSize * t.minSize)
}

func (t *Tree) newNode(center r3.Vec, size float64, depth int32) node {
	return node{
		center: center,
		size:   size,
		depth:  depth,
		a:      none,
		b:      none,
		child:  none,
		next:   none,
		skip:   none,
	}
}

// insert places particle p in the subtree rooted at from.
func (t *Tree) insert(e *atoms.Ensemble, from, p int32) {
	pos := e.Position(int(p))
	n := from
	for {
		nd := &t.nodes[n]
		switch nd.kind {
		case empty:
			nd.kind, nd.count, nd.a = single, 1, p
			t.observe(nd.size)
			return
		case single:
			size, forced := t.separation(nd.center, nd.size, nd.depth, e.Position(int(nd.a)), pos)
			nd.kind, nd.count, nd.b, nd.forced = pair, 2, p, forced
			t.observe(size)
			return
		case crowd:
			t.chain[nd.b] = p
			t.chain[p] = none
			nd.b = p
			nd.count++
			return
		case pair:
			if int(nd.depth) >= t.opts.MaxDepth {
				t.chain[nd.a] = nd.b
				t.chain[nd.b] = p
				t.chain[p] = none
				nd.kind, nd.b, nd.forced = crowd, p, true
				nd.count++
				return
			}
			i, j := nd.a, nd.b
			t.split(n)
			// fresh children are empty, so neither call reaches this case
			t.insert(e, n, i)
			t.insert(e, n, j)
		}

		nd = &t.nodes[n]
		nd.count++
		n = nd.child + int32(OctantOf(nd.center, pos))
	}
}

// split turns node n into an empty branch with eight children.
func (t *Tree) split(n int32) {
	parent := t.nodes[n]
	first := int32(len(t.nodes))
	half, quarter := parent.size/2, parent.size/4
	for o := LLL; o <= HHH; o++ {
		c := r3.Add(parent.center, o.Offset(quarter))
		t.nodes = append(t.nodes, t.newNode(c, half, parent.depth+1))
	}
	nd := &t.nodes[n]
	nd.kind, nd.count, nd.child = branch, 0, first
	nd.a, nd.b, nd.forced = none, none, false
}

// separation returns the edge of the cell p and q would each occupy alone
// if the cell at center were subdivided until they part. No node is
// allocated. When they share a cell down to the depth cap the cap cell
// size is returned with forced set.
func (t *Tree) separation(center r3.Vec, size float64, depth int32, p, q r3.Vec) (float64, bool) {
	for int(depth) < t.opts.MaxDepth {
		op := OctantOf(center, p)
		if op != OctantOf(center, q) {
			return size / 2, false
		}
		center = r3.Add(center, op.Offset(size/4))
		size /= 2
		depth++
	}
	return size, true
}

func (t *Tree) observe(size float64) {
	if size < t.minSize {
		t.minSize = size
	}
}

// MinCellSize returns the smallest cell edge reached by the last Init.
func (t *Tree) MinCellSize() float64 { return t.minSize }
