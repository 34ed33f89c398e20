package sim

// Columns names the values of a measurement in reporting order.
var Columns = []string{
	"time",
	"mean_x", "mean_y", "mean_z",
	"var_x", "var_y", "var_z",
	"e_kin", "e_pot",
	"n",
	"peak_density",
	"collision_rate",
	"temperature",
	"interval",
}

// Values returns the measurement in Columns order.
func (m Measurement) Values() []float64 {
	return []float64{
		m.Time,
		m.Mean.X, m.Mean.Y, m.Mean.Z,
		m.Variance.X, m.Variance.Y, m.Variance.Z,
		m.Kinetic, m.Potential,
		float64(m.N),
		m.PeakDensity,
		m.CollisionRate,
		m.Temperature,
		m.Interval,
	}
}

// FromValues rebuilds a measurement from values in Columns order.
func FromValues(v []float64) (Measurement, bool) {
	if len(v) != len(Columns) {
		return Measurement{}, false
	}
	var m Measurement
	m.Time = v[0]
	m.Mean.X, m.Mean.Y, m.Mean.Z = v[1], v[2], v[3]
	m.Variance.X, m.Variance.Y, m.Variance.Z = v[4], v[5], v[6]
	m.Kinetic, m.Potential = v[7], v[8]
	m.N = int(v[9])
	m.PeakDensity = v[10]
	m.CollisionRate = v[11]
	m.Temperature = v[12]
	m.Interval = v[13]
	return m, true
}

// Field returns the value of the named column.
func (m Measurement) Field(name string) (float64, bool) {
	for i, c := range Columns {
		if c == name {
			return m.Values()[i], true
		}
	}
	return 0, false
}

// CollisionRate converts the collisions counted over one measurement
// window into a rate per particle.
func CollisionRate(collisions int, dtOut float64, n int) float64 {
	if n == 0 || dtOut <= 0 {
		return 0
	}
	return float64(collisions) / (dtOut * float64(n))
}
