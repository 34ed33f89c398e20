package coltree

import "gonum.org/v1/gonum/spatial/r3"

// Octant identifies one of the eight children of a cell. Bit 2 selects
// the upper half along x, bit 1 along y and bit 0 along z.
type Octant uint8

const (
	LLL Octant = 0b000
	LLH Octant = 0b001
	LHL Octant = 0b010
	LHH Octant = 0b011
	HLL Octant = 0b100
	HLH Octant = 0b101
	HHL Octant = 0b110
	HHH Octant = 0b111
)

// OctantOf returns the octant of center that p falls into. A coordinate
// equal to the center goes to the upper side.
func OctantOf(center, p r3.Vec) Octant {
	var o Octant
	if p.X >= center.X {
		o |= HLL
	}
	if p.Y >= center.Y {
		o |= LHL
	}
	if p.Z >= center.Z {
		o |= LLH
	}
	return o
}

// Offset returns the displacement from a parent center to the center of
// this child, d being a quarter of the parent edge.
func (o Octant) Offset(d float64) r3.Vec {
	v := r3.Vec{X: -d, Y: -d, Z: -d}
	if o&HLL != 0 {
		v.X = d
	}
	if o&LHL != 0 {
		v.Y = d
	}
	if o&LLH != 0 {
		v.Z = d
	}
	return v
}
