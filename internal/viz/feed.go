package viz

import (
	"context"
	"math"

	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/sim"
)

// DefaultPoints caps the particles copied into a frame.
const DefaultPoints = 4000

// Frame is one measurement with a projection of the cloud onto the x-z
// plane, z being the vertical axis.
type Frame struct {
	Measurement sim.Measurement
	X, Z        []float64
}

// Feed is a sim.Observer that forwards frames over an unbuffered channel.
// The simulator blocks until the frame is taken or ctx is done.
type Feed struct {
	ctx    context.Context
	ens    *atoms.Ensemble
	points int
	frames chan Frame
}

func NewFeed(ctx context.Context, ens *atoms.Ensemble, points int) *Feed {
	if points <= 0 {
		points = DefaultPoints
	}
	return &Feed{ctx: ctx, ens: ens, points: points, frames: make(chan Frame)}
}

func (f *Feed) Frames() <-chan Frame { return f.frames }

// Close ends the stream. Call it once the run has returned.
func (f *Feed) Close() { close(f.frames) }

func (f *Feed) OnMeasurement(m sim.Measurement) {
	if f.ctx.Err() != nil {
		return
	}
	select {
	case f.frames <- f.snapshot(m):
	case <-f.ctx.Done():
	}
}

// snapshot copies at most f.points evenly strided particles.
func (f *Feed) snapshot(m sim.Measurement) Frame {
	n := f.ens.N()
	stride := 1
	if n > f.points {
		stride = int(math.Ceil(float64(n) / float64(f.points)))
	}
	fr := Frame{
		Measurement: m,
		X:           make([]float64, 0, n/stride+1),
		Z:           make([]float64, 0, n/stride+1),
	}
	for i := 0; i < n; i += stride {
		p := f.ens.Position(i)
		fr.X = append(fr.X, p.X)
		fr.Z = append(fr.Z, p.Z)
	}
	return fr
}
