package atoms

const (
	// ProtonMass in kg.
	ProtonMass = 1.67262192369e-27
	// Planck constant in J·s.
	Planck = 6.62607015e-34
	// Boltzmann constant in J/K.
	Boltzmann = 1.380649e-23
)
