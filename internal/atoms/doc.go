// Package atoms holds the simulated particle cloud.
//
// An [Ensemble] stores positions and velocities as flat slices with three
// components per particle, so index i addresses x, y, z at 3i, 3i+1, 3i+2
// in both slices. Species constants (mass, susceptibility, cross-section,
// vacuum loss rate) live on the ensemble next to the data they describe.
//
// Energies are reported in frequency units (E/h, Hz), masses in proton
// masses and lengths in meters.
package atoms
