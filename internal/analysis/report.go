package analysis

import (
	"github.com/san-kum/coldsim/internal/sim"
)

// OscillationFields are the columns searched for trap oscillations.
var OscillationFields = []string{"mean_x", "mean_y", "mean_z", "var_x", "var_y", "var_z"}

type Oscillation struct {
	Field     string
	Frequency float64
	Amplitude float64
}

type Report struct {
	Samples      int
	Duration     float64
	Oscillations []Oscillation
	Loss         LossFit
	TempStart    float64
	TempEnd      float64
}

// Analyze summarizes a measurement series taken every dtOut.
func Analyze(ms []sim.Measurement) (Report, error) {
	if len(ms) < 4 {
		return Report{}, ErrTooShort
	}
	dt := ms[1].Time - ms[0].Time

	r := Report{
		Samples:   len(ms),
		Duration:  ms[len(ms)-1].Time - ms[0].Time,
		TempStart: ms[0].Temperature,
		TempEnd:   ms[len(ms)-1].Temperature,
	}
	for _, f := range OscillationFields {
		series := Column(ms, f)
		freq, amp, err := DominantFrequency(series, dt)
		if err != nil {
			return Report{}, err
		}
		r.Oscillations = append(r.Oscillations, Oscillation{Field: f, Frequency: freq, Amplitude: amp})
	}

	loss, err := FitLoss(ms)
	if err != nil {
		return Report{}, err
	}
	r.Loss = loss
	return r, nil
}

// Column extracts one named column. Unknown names yield zeros.
func Column(ms []sim.Measurement, name string) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i], _ = m.Field(name)
	}
	return out
}
