// Package analysis extracts trap and cloud properties from a stored
// measurement series.
//
//   - [Spectrum] and [DominantFrequency]: oscillation of a column, such as
//     the centre-of-mass sloshing (mean_z) or the breathing mode (var_x)
//   - [FitLoss]: exponential particle loss rate and lifetime
//   - [Analyze]: both for every column of interest
//   - [Portrait]: one column against another, rendered as text
//
// Frequencies are only meaningful up to the Nyquist limit 1/(2 dtOut).
package analysis
