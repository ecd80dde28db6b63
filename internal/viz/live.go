package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 600
	frameRate       = 60
	// maxFrameDt bounds the step taken after a stalled frame.
	maxFrameDt = 0.1
	// paramWindow is the number of parameters listed around the selection.
	paramWindow = 7
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one simulator. Parameter edits go through
// config.Params and Simulator.Apply; a rejected edit leaves both the
// simulator and the shown configuration unchanged.
type Model struct {
	sim      *sim.Simulator
	cfg      *config.Config
	name     string
	params   []config.Param
	selected int

	canvas   *Canvas
	camera   *Camera
	frame    *Wireframe
	vertices []float32

	population []float64
	energy     []float64
	lastTick   time.Time
	frames     int

	status   string
	showHelp bool
}

// NewModel wraps s, which must have been built from cfg.LiveOptions().
func NewModel(s *sim.Simulator, cfg *config.Config, name string) Model {
	m := Model{
		sim:        s,
		cfg:        cfg,
		name:       name,
		params:     config.Params(),
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		population: make([]float64, 0, historyCapacity),
		energy:     make([]float64, 0, historyCapacity),
	}
	m.setBoundary(s.Options().Boundary)
	return m
}

func (m *Model) setBoundary(b collision.Boundary) {
	m.frame = BoundaryWireframe(b)
	m.camera.Fit(SceneExtent(b))
}

func (m Model) Simulator() *sim.Simulator { return m.sim }
func (m Model) Config() *config.Config    { return m.cfg }
func (m Model) Status() string            { return m.status }

// Selected returns the name of the parameter the arrow keys edit.
func (m Model) Selected() string { return m.params[m.selected].Name }

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the simulator once per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.sim.Toggle()
		case "n", ".":
			m.sim.RequestStep()
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.params)
		case "shift+tab":
			m.selected = (m.selected + len(m.params) - 1) % len(m.params)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "c":
			m.camera.Fit(SceneExtent(m.sim.Options().Boundary))
		}
	case TickMsg:
		m.advance(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance(now time.Time) {
	dt := 1.0 / frameRate
	if !m.lastTick.IsZero() {
		dt = min(max(now.Sub(m.lastTick).Seconds(), 0), maxFrameDt)
	}
	m.lastTick = now
	m.frames++
	if dt == 0 {
		return
	}

	stepped, err := m.sim.Advance(dt)
	if err != nil {
		m.sim.Pause()
		m.status = err.Error()
		return
	}
	if stepped {
		m.record()
	}
}

func (m *Model) record() {
	f := m.sim.LastFrame()
	m.population = appendCapped(m.population, float64(len(f.States)))
	m.energy = appendCapped(m.energy, f.KineticEnergy())
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// adjustParam nudges the selected parameter by one step in direction dir.
func (m *Model) adjustParam(dir float64) {
	p := m.params[m.selected]
	next := m.cfg.Clone()
	p.Set(next, p.Get(next)+dir*p.Step)

	opts, err := next.LiveOptions()
	if err == nil {
		err = m.sim.Apply(opts)
	}
	if err != nil {
		m.status = fmt.Sprintf("%s rejected: %v", p.Name, err)
		return
	}
	m.cfg = next
	m.status = ""
	if strings.HasPrefix(p.Name, "boundary.") {
		m.setBoundary(opts.Boundary)
	}
}

func (m *Model) reset() {
	m.sim.Reset()
	m.population = m.population[:0]
	m.energy = m.energy[:0]
	m.status = ""
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, m.frame, m.camera)
	m.vertices = m.sim.Vertices(m.vertices[:0])
	RenderParticles(m.canvas, m.vertices, m.camera)
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())
	stats := statsStyle.Render(m.statsView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, stats)
	if m.showHelp {
		return helpText + "\n" + body
	}
	return body
}

func (m Model) statsView() string {
	var s strings.Builder
	title := "PARTICLESIM"
	if m.name != "" {
		title += " · " + strings.ToUpper(m.name)
	}
	s.WriteString(GradientText(title, CurrentTheme.Primary, CurrentTheme.Accent) + "\n")

	if m.sim.Running() {
		s.WriteString(statusStyle(true).Render(AnimatedSpinner(m.frames)+" RUNNING") + "\n\n")
	} else {
		s.WriteString(statusStyle(false).Render("■ PAUSED") + "\n\n")
	}

	f := m.sim.LastFrame()
	opts := m.sim.Options()
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2fs", m.sim.Time())) + "\n")
	s.WriteString(MetricLabel.Render("Step") + MetricValue.Render(fmt.Sprintf("%d", m.sim.Steps())) + "\n")
	dtLabel := "frame"
	if opts.Dt > 0 {
		dtLabel = fmt.Sprintf("%.4f", opts.Dt)
	}
	s.WriteString(MetricLabel.Render("dt") + MetricValue.Render(dtLabel) + "\n")
	s.WriteString(MetricLabel.Render("Particles") + MetricValue.Render(fmt.Sprintf("%d/%d ", m.sim.Total(), opts.Capacity)) +
		ProgressBar(float64(m.sim.Total())/float64(opts.Capacity), 12) + "\n")
	s.WriteString(MetricLabel.Render("Kinetic") + MetricValue.Render(fmt.Sprintf("%.3f", f.KineticEnergy())) + "\n")
	s.WriteString(MetricLabel.Render("Collisions") + MetricValue.Render(fmt.Sprintf("%d", f.Collisions)) + "\n")
	s.WriteString(MetricLabel.Render("Mean speed") + Swatch(dynamo.SpeedColor(mgl64.Vec3{meanSpeed(f.States), 0, 0})) + "\n")

	s.WriteString("\n" + Subtle.Render("GENERATORS") + "\n")
	for _, g := range m.sim.Generators() {
		fill := 0.0
		if g.Capacity > 0 {
			fill = float64(g.Live) / float64(g.Capacity)
		}
		s.WriteString(fmt.Sprintf("  %-8s %5d ", g.Name, g.Live) + ProgressBar(fill, 10) + "\n")
	}

	if len(m.population) > 1 {
		chart := asciigraph.Plot(m.population, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("live particles"))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
		s.WriteString(SparklineChart(m.energy, 30) + Subtle.Render(" energy") + "\n")
	}

	s.WriteString("\n" + Subtle.Render("PARAMETERS") + "\n")
	lo := min(max(m.selected-paramWindow/2, 0), max(len(m.params)-paramWindow, 0))
	hi := min(lo+paramWindow, len(m.params))
	for i := lo; i < hi; i++ {
		p := m.params[i]
		line := fmt.Sprintf("%-26s %8.3f", p.Name, p.Get(m.cfg))
		if i == m.selected {
			s.WriteString(selectedStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}

	if m.status != "" {
		s.WriteString("\n" + errorStyle().Render(m.status) + "\n")
	}
	s.WriteString("\n" + Separator(40) + "\n")
	s.WriteString(KeyHint.Render("SPC:Run/Pause N:Step R:Reset Q:Quit\nTAB:Param ↑↓:Tune T:Theme ?:Help"))
	return s.String()
}

func meanSpeed(states []dynamo.State) float64 {
	if len(states) == 0 {
		return 0
	}
	sum := 0.0
	for _, st := range states {
		sum += st.Speed()
	}
	return sum / float64(len(states))
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Start/Pause simulation   ║
║  N / .    - Single step              ║
║  R        - Reset particles & clock  ║
║  Q        - Quit                     ║
║  Tab      - Next parameter           ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  x y z    - Rotate (shift reverses)  ║
║  + / -    - Zoom                     ║
║  C        - Recenter camera          ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`

// RunLive opens the live view for cfg. The simulation starts running.
func RunLive(cfg *config.Config, name string) error {
	opts, err := cfg.LiveOptions()
	if err != nil {
		return err
	}
	s, err := sim.New(opts)
	if err != nil {
		return err
	}
	s.Start()
	_, err = tea.NewProgram(NewModel(s, cfg, name), tea.WithAltScreen()).Run()
	return err
}
