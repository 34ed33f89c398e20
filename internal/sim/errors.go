package sim

import "errors"

var (
	// ErrInvalidConfig indicates a run configuration that cannot be simulated.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrNoReplicas indicates a batch asked to run zero simulations.
	ErrNoReplicas = errors.New("sim: no replicas requested")
)
