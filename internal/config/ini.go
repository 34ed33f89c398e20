package config

import (
	"fmt"
	"io"
	"strconv"
)

// WriteINI writes c in the layout Load reads for .ini files.
func (c *Config) WriteINI(w io.Writer) error {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	s, a, p, t := c.Simulation, c.Atoms, c.Potential, c.Tree

	_, err := fmt.Fprintf(w, `[Simulation]
integrator = %s
time = %s
dt = %s
dtOut = %s
dtEvent = %s
seed = %d
collisions = %t

[Atoms]
n = %d
mass = %s
chi = %s
sigma = %s
vacuumRate = %s
weight = %s
temperature = %s
radius = %s

[Potential]
type = %s
gravity = %s
gradB = %s
depth = %s
nu-x = %s
nu-y = %s
nu-z = %s

[Tree]
size = %s
maxDepth = %d
`,
		s.Integrator, f(s.Duration), f(s.Dt), f(s.DtOut), f(s.DtEvent), s.Seed, s.Collisions,
		a.Number, f(a.Mass), f(a.Chi), f(a.CrossSection), f(a.VacuumRate), f(a.Weight), f(a.Temperature), f(a.Radius),
		p.Type, f(p.Gravity), f(p.GradB), f(p.Depth), f(p.NuX), f(p.NuY), f(p.NuZ),
		f(t.Size), t.MaxDepth)
	return err
}
