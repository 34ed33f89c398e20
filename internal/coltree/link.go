package coltree

// UpdatePointers assigns next and skip on every non-empty node so the tree
// can be walked in pre-order without a stack. A branch points next at its
// first non-empty child and chains its non-empty children through skip,
// the last one inheriting the branch's own skip. Any other node points
// next at its skip. The walk ends at the root's skip, which is none.
func (t *Tree) UpdatePointers() {
	if len(t.nodes) == 0 {
		return
	}
	t.nodes[root].skip = none
	for n := root; n != none; n = t.nodes[n].next {
		nd := &t.nodes[n]
		if nd.kind != branch {
			nd.next = nd.skip
			continue
		}
		nd.next = none
		prev := none
		for c := nd.child; c < nd.child+8; c++ {
			if t.nodes[c].kind == empty {
				continue
			}
			if prev == none {
				nd.next = c
			} else {
				t.nodes[prev].skip = c
			}
			prev = c
		}
		t.nodes[prev].skip = nd.skip
	}
	t.linked = true
}
