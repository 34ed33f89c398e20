package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/coldsim/internal/sim"
)

// LossFit is an exponential decay N(t) = N0 exp(-Rate t).
type LossFit struct {
	N0       float64
	Rate     float64
	Lifetime float64 // 1/Rate, +Inf without losses
	Points   int
}

// FitLoss fits ln N against time by least squares over the measurements
// with N > 0.
func FitLoss(ms []sim.Measurement) (LossFit, error) {
	ts := make([]float64, 0, len(ms))
	logs := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.N > 0 {
			ts = append(ts, m.Time)
			logs = append(logs, math.Log(float64(m.N)))
		}
	}
	if len(ts) < 2 {
		return LossFit{}, ErrTooShort
	}

	alpha, beta := stat.LinearRegression(ts, logs, nil, false)
	fit := LossFit{
		N0:       math.Exp(alpha),
		Rate:     -beta,
		Lifetime: math.Inf(1),
		Points:   len(ts),
	}
	if fit.Rate > 0 {
		fit.Lifetime = 1 / fit.Rate
	}
	return fit, nil
}
