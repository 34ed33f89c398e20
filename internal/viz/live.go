package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 600
)

// Fields lists the columns the graph can cycle through.
var Fields = []string{"n", "temperature", "peak_density", "collision_rate", "e_kin", "interval"}

type frameMsg Frame

type doneMsg struct {
	result *sim.Result
	err    error
}

// RunFunc runs the simulation to completion. It must register feed as an
// observer of the simulator it drives.
type RunFunc func(ctx context.Context, feed *Feed) (*sim.Result, error)

// Model is the live dashboard of a single run.
type Model struct {
	title    string
	duration float64
	ctx      context.Context
	cancel   context.CancelFunc
	feed     *Feed
	run      RunFunc

	canvas  *Canvas
	history []sim.Measurement
	current Frame
	field   int
	span    float64

	paused   bool
	waiting  bool
	done     bool
	showHelp bool
	result   *sim.Result
	err      error
}

// NewModel prepares a dashboard for run, projecting the particles of ens.
// Quitting cancels the context handed to run.
func NewModel(ctx context.Context, title string, duration float64, ens *atoms.Ensemble, run RunFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		title:    title,
		duration: duration,
		ctx:      ctx,
		cancel:   cancel,
		feed:     NewFeed(ctx, ens, DefaultPoints),
		run:      run,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		history:  make([]sim.Measurement, 0, historyCapacity),
		waiting:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.start(), waitForFrame(m.feed))
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		res, err := m.run(m.ctx, m.feed)
		m.feed.Close()
		return doneMsg{result: res, err: err}
	}
}

// waitForFrame returns nil once the feed is closed.
func waitForFrame(f *Feed) tea.Cmd {
	return func() tea.Msg {
		fr, ok := <-f.Frames()
		if !ok {
			return nil
		}
		return frameMsg(fr)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		case " ":
			if m.done {
				return m, nil
			}
			m.paused = !m.paused
			if !m.paused && !m.waiting {
				m.waiting = true
				return m, waitForFrame(m.feed)
			}
		case "tab":
			m.field = (m.field + 1) % len(Fields)
		case "?":
			m.showHelp = !m.showHelp
		}
	case frameMsg:
		m.push(Frame(msg))
		m.waiting = false
		if !m.paused {
			m.waiting = true
			return m, waitForFrame(m.feed)
		}
	case doneMsg:
		m.done = true
		m.result, m.err = msg.result, msg.err
	}
	return m, nil
}

func (m *Model) push(fr Frame) {
	m.current = fr
	m.history = append(m.history, fr.Measurement)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}

	mm := fr.Measurement
	// three standard deviations of the wider axis, shrinking slowly
	span := 3 * math.Sqrt(math.Max(mm.Variance.X, mm.Variance.Z))
	if span > 0 && !math.IsNaN(span) {
		if m.span == 0 || span > m.span {
			m.span = span
		} else {
			m.span = 0.9*m.span + 0.1*span
		}
	}
	m.draw()
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.span == 0 {
		return
	}
	cx, cz := m.current.Measurement.Mean.X, m.current.Measurement.Mean.Z
	for i := range m.current.X {
		m.canvas.Plot(m.current.X[i]-cx, m.current.Z[i]-cz, m.span)
	}
}

// Result returns the outcome once the run has finished.
func (m Model) Result() (*sim.Result, error) { return m.result, m.err }

func (m Model) Done() bool { return m.done }

// Series returns the history of the named column.
func (m Model) Series(name string) []float64 {
	out := make([]float64, 0, len(m.history))
	for _, mm := range m.history {
		v, _ := mm.Field(name)
		out = append(out, v)
	}
	return out
}

func (m Model) status() string {
	switch {
	case m.done && m.err != nil:
		return statusFailed.Render("FAILED: " + m.err.Error())
	case m.done:
		return statusDone.Render("FINISHED")
	case m.paused:
		return statusPaused.Render("PAUSED")
	}
	return statusRunning.Render("RUNNING")
}

func (m Model) View() string {
	mm := m.current.Measurement

	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	progress := 0.0
	if m.duration > 0 {
		progress = mm.Time / m.duration
	}
	s.WriteString(ProgressBar(progress, 30) + fmt.Sprintf(" %5.1f%%\n\n", 100*progress))

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.4f s", mm.Time))
	row("Atoms", fmt.Sprintf("%d", mm.N))
	row("Temperature", fmt.Sprintf("%.3e K", mm.Temperature))
	row("Peak density", fmt.Sprintf("%.3e m^-3", mm.PeakDensity))
	row("Coll. rate", fmt.Sprintf("%.3e Hz", mm.CollisionRate))
	row("Interval", fmt.Sprintf("%.2e s", mm.Interval))
	row("Width x/z", fmt.Sprintf("%.2e / %.2e m", math.Sqrt(mm.Variance.X), math.Sqrt(mm.Variance.Z)))

	field := Fields[m.field]
	series := m.Series(field)
	s.WriteString("\n" + labelStyle.Render("Atoms") + Sparkline(m.Series("n"), 30) + "\n\n")
	if len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption(field))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(hintStyle.Render("\nSPACE:Pause TAB:Field ?:Help Q:Quit"))

	cloud := panelStyle.Render(fmt.Sprintf("x-z  ±%.1e m\n", m.span) + m.canvas.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, cloud, statsStyle.Render(s.String()))
	if m.showHelp {
		help := panelStyle.Render(strings.Join([]string{
			"Space  pause or resume the run",
			"Tab    cycle the plotted column",
			"?      toggle this help",
			"Q      quit and cancel the run",
		}, "\n"))
		return help + "\n" + body
	}
	return body
}
