// Package coltree resolves binary collisions in a particle cloud with a
// direct-simulation Monte Carlo scheme.
//
// Every collision event builds an octree over the current positions, in
// which each cell holds at most one particle or exactly one candidate
// pair. The tree lives in a flat arena of nodes addressed by index and is
// reused from one event to the next:
//
//	tree := coltree.New(coltree.DefaultOptions())
//	density := tree.Init(ens)     // build, returns 1/minSize^3
//	tree.UpdatePointers()         // link next/skip for stack-free walks
//	hits := tree.Compute(ens, dt, rng)
//
// [Scheduler] wraps the three calls and adapts the interval between
// events to the observed collision fraction.
//
// Tree and Scheduler are not safe for concurrent use.
package coltree
