package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// ErrTooShort is returned when a series has too few samples to analyze.
var ErrTooShort = errors.New("analysis: series too short")

// ErrSpacing is returned for a non-positive sample spacing.
var ErrSpacing = errors.New("analysis: sample spacing must be positive")

// Spectrum returns the one-sided amplitude spectrum of a uniformly sampled
// series with sample spacing dt. The mean is removed first so the zero
// frequency bin only carries rounding noise.
func Spectrum(series []float64, dt float64) (freqs, amps []float64, err error) {
	n := len(series)
	if n < 4 {
		return nil, nil, ErrTooShort
	}
	if dt <= 0 {
		return nil, nil, ErrSpacing
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeff))
	amps = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		amps[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return freqs, amps, nil
}

// DominantFrequency returns the frequency of the largest non-zero bin and
// its amplitude. A constant series yields zero for both.
func DominantFrequency(series []float64, dt float64) (freq, amp float64, err error) {
	freqs, amps, err := Spectrum(series, dt)
	if err != nil {
		return 0, 0, err
	}
	best := 1
	for i := 2; i < len(amps); i++ {
		if amps[i] > amps[best] {
			best = i
		}
	}
	if amps[best] <= 1e-12*maxAbs(series) {
		return 0, 0, nil
	}
	return freqs[best], amps[best], nil
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
