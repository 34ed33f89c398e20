package viz

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/integrators"
	"github.com/san-kum/coldsim/internal/potential"
	"github.com/san-kum/coldsim/internal/sim"
)

func cloud(t *testing.T, n int) *atoms.Ensemble {
	t.Helper()
	e, err := atoms.New(atoms.Rb87(), n)
	require.NoError(t, err)
	e.InitCloud(1e-5, 5e-5, rand.New(rand.NewSource(1)))
	return e
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(10, 5)
	assert.Zero(t, c.Lit())

	assert.True(t, c.Plot(0, 0, 1))
	assert.True(t, c.Plot(1, 1, 1))
	assert.True(t, c.Plot(-1, -1, 1))
	assert.False(t, c.Plot(2, 0, 1))
	assert.False(t, c.Plot(0, 0, 0))
	assert.Equal(t, 3, c.Lit())

	// (1, 1) is the top right dot, (-1, -1) the bottom left
	assert.Equal(t, rune(blank|0x8), c.Grid[0][9])
	assert.Equal(t, rune(blank|0x40), c.Grid[4][0])

	c.Clear()
	assert.Zero(t, c.Lit())
	assert.Len(t, strings.Split(strings.TrimRight(c.String(), "\n"), "\n"), 5)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "───", Sparkline(nil, 3))
	out := Sparkline([]float64{1, 2, 3, 4, 5, 6}, 4)
	assert.Equal(t, 4, strings.Count(out, "▁")+strings.Count(out, "▃")+strings.Count(out, "▅")+strings.Count(out, "▆")+strings.Count(out, "█"))
}

func TestFeedSubsamples(t *testing.T) {
	e := cloud(t, 10000)
	f := NewFeed(context.Background(), e, 1000)
	fr := f.snapshot(sim.Measurement{N: e.N()})
	assert.LessOrEqual(t, len(fr.X), 1000)
	assert.Len(t, fr.Z, len(fr.X))
	assert.Equal(t, e.Position(0).X, fr.X[0])
	assert.Equal(t, e.Position(0).Z, fr.Z[0])
}

func TestFeedDoesNotBlockAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := NewFeed(ctx, cloud(t, 10), 0)
	cancel()
	f.OnMeasurement(sim.Measurement{})
}

func TestFeedStreamsRun(t *testing.T) {
	e := cloud(t, 100)
	trap, err := potential.NewHarmonic([3]float64{100, 100, 100}, 0)
	require.NoError(t, err)
	s := sim.New(e, integrators.NewRK4(), trap)
	f := NewFeed(context.Background(), e, 0)
	s.AddObserver(f)

	cfg := sim.DefaultConfig()
	cfg.Duration = 5e-3
	cfg.Collisions = false

	type outcome struct {
		res *sim.Result
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		res, err := s.Run(context.Background(), cfg)
		f.Close()
		out <- outcome{res, err}
	}()

	frames := 0
	for fr := range f.Frames() {
		assert.Len(t, fr.X, 100)
		frames++
	}
	o := <-out
	require.NoError(t, o.err)
	assert.Equal(t, len(o.res.Measurements), frames)
}

func frame(t float64, n int) frameMsg {
	return frameMsg{
		Measurement: sim.Measurement{
			Time:     t,
			N:        n,
			Variance: r3.Vec{X: 1e-8, Y: 1e-8, Z: 4e-8},
		},
		X: []float64{0, 1e-4, -1e-4},
		Z: []float64{0, 2e-4, -2e-4},
	}
}

func newTestModel() Model {
	run := func(ctx context.Context, f *Feed) (*sim.Result, error) { return &sim.Result{}, nil }
	return NewModel(context.Background(), "test", 1, nil, run)
}

func TestModelFrames(t *testing.T) {
	m := newTestModel()

	next, cmd := m.Update(frame(0, 100))
	m = next.(Model)
	assert.NotNil(t, cmd, "expected to wait for the next frame")
	next, _ = m.Update(frame(0.5, 90))
	m = next.(Model)

	assert.Equal(t, []float64{100, 90}, m.Series("n"))
	assert.InDelta(t, 6e-4, m.span, 1e-12)
	assert.Equal(t, 3, m.canvas.Lit())
	assert.Contains(t, m.View(), "RUNNING")
}

func TestModelPause(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	require.True(t, m.paused)
	assert.Contains(t, m.View(), "PAUSED")

	next, cmd := m.Update(frame(0, 10))
	m = next.(Model)
	assert.Nil(t, cmd, "a paused dashboard must not request frames")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	assert.False(t, m.paused)
	assert.NotNil(t, cmd)
}

func TestModelFieldsAndDone(t *testing.T) {
	m := newTestModel()
	for range Fields {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(Model)
	}
	assert.Zero(t, m.field)

	next, _ := m.Update(doneMsg{result: &sim.Result{Steps: 3}})
	m = next.(Model)
	res, err := m.Result()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Steps)
	assert.True(t, m.Done())
	assert.Contains(t, m.View(), "FINISHED")

	next, _ = m.Update(doneMsg{err: errors.New("boom")})
	assert.Contains(t, next.(Model).View(), "FAILED: boom")
}

func TestModelQuitCancels(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Error(t, m.ctx.Err())

	// the feed gives up once the dashboard is gone
	m.feed.OnMeasurement(sim.Measurement{})
}
