package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rigid2d/internal/telemetry"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	pushForce       = 10.0
)

// Snapshot stores the bodies at a specific time for replay.
type Snapshot struct {
	Bodies []world.BodyState
	Time   float64
	Energy float64
	Stats  world.StepStats
}

type TickMsg time.Time

// Builder constructs a fresh world. The live view calls it once at start and
// again on every reset.
type Builder func() (*world.World, error)

// Model drives a world at one step per tick and renders it on a braille
// canvas next to a stats panel.
type Model struct {
	build    Builder
	world    *world.World
	name     string
	canvas   *Canvas
	viewport Viewport
	bodies   []world.BodyState
	stats    world.StepStats
	energy   *telemetry.Series
	history  []Snapshot
	playHead int
	selected int
	running  bool
	theme    Theme
	showHelp bool
	err      error
}

// NewModel builds the initial world and the view around it.
func NewModel(name string, build Builder) (Model, error) {
	w, err := build()
	if err != nil {
		return Model{}, err
	}
	canvas := NewCanvas(width, height)
	cfg := w.Config()
	return Model{
		build:    build,
		world:    w,
		name:     name,
		canvas:   canvas,
		viewport: Fit(canvas, cfg.Width, cfg.Height),
		bodies:   w.Snapshot(),
		energy:   telemetry.NewSeries("Kinetic energy", historyCapacity),
		history:  make([]Snapshot, 0, historyCapacity),
		playHead: -1,
		running:  true,
		theme:    CurrentTheme,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running && m.playHead == -1 {
				m.step()
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			if n := m.world.Len(); n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "up", "k":
			m.push(vecmath.New(0, -pushForce))
		case "down", "j":
			m.push(vecmath.New(0, pushForce))
		case "left", "h":
			m.push(vecmath.New(-pushForce, 0))
		case "right", "l":
			m.push(vecmath.New(pushForce, 0))
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// push applies f to the selected body for the next step, scaled by its mass
// so every body gets the same velocity change.
func (m *Model) push(f vecmath.Vec2) {
	if m.selected >= len(m.bodies) {
		return
	}
	mass := m.bodies[m.selected].Mass
	if mass <= 0 {
		return
	}
	if err := m.world.ApplyExternalForce(world.BodyID(m.selected), f.Scale(mass)); err != nil {
		m.err = err
	}
}

// step advances the world by one configured dt and records a snapshot.
func (m *Model) step() {
	m.stats = m.world.Advance()
	m.bodies = m.world.SnapshotInto(m.bodies)

	ke := m.world.TotalKineticEnergy()
	m.energy.Add(ke)

	snap := Snapshot{
		Bodies: append([]world.BodyState(nil), m.bodies...),
		Time:   m.world.Time(),
		Energy: ke,
		Stats:  m.stats,
	}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the world from the builder.
func (m *Model) reset() {
	w, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.world = w
	m.bodies = w.Snapshot()
	m.stats = world.StepStats{}
	m.energy.Reset()
	m.history = m.history[:0]
	m.playHead = -1
	m.err = nil
	if m.selected >= w.Len() {
		m.selected = 0
	}
}

// current returns what the view should show: the live world, or the replayed
// snapshot.
func (m *Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return Snapshot{
		Bodies: m.bodies,
		Time:   m.world.Time(),
		Energy: m.energy.Last(),
		Stats:  m.stats,
	}
}

func (m *Model) draw(bodies []world.BodyState) {
	m.canvas.Clear()
	cfg := m.world.Config()
	DrawBounds(m.canvas, m.viewport, cfg.Width, cfg.Height)
	DrawBodies(m.canvas, m.viewport, bodies)
	if m.selected < len(bodies) {
		b := bodies[m.selected]
		cx, cy := m.viewport.projectInt(b.Position)
		m.canvas.DrawCircle(cx, cy, roundInt(b.Radius*m.viewport.Scale)+2)
	}
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	snap := m.current()
	m.draw(snap.Bodies)

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.playHead != -1 && len(m.history) > 0:
		back := snap.Time - m.history[len(m.history)-1].Time
		if m.running {
			status = StatusPaused.Render(fmt.Sprintf("REPLAYING (%.1f)", back))
		} else {
			status = StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.1f)", back))
		}
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(headerStyle(m.theme).Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(status + "\n")
	if m.energy.Len() > 1 {
		s.WriteString(graphStyle.Render(telemetry.Render(m.energy, 4, 30)) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f", snap.Time))
	row("Bodies", fmt.Sprintf("%d", len(snap.Bodies)))
	row("Energy", fmt.Sprintf("%.2f", snap.Energy))
	row("Contacts", fmt.Sprintf("%d", snap.Stats.Contacts))
	row("Impulse", fmt.Sprintf("%.2f", snap.Stats.NormalImpulse))

	if m.selected < len(snap.Bodies) {
		b := snap.Bodies[m.selected]
		s.WriteString("\n" + bodyStyle(m.theme).Render(fmt.Sprintf("BODY %d (%s)", b.ID, b.Shape)) + "\n")
		row("Position", b.Position.String())
		row("Velocity", b.Velocity.String())
		if limit := m.world.Config().MaxVelocity; limit > 0 {
			s.WriteString(MetricLabel.Render("Speed") + ProgressBar(b.Velocity.Len()/limit, 20) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusPaused.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause S:Step R:Reset Q:Quit\nTab:Select ←↑↓→:Push\n[ ]:Time-Travel T:Theme ?:Help"))

	canvasView := canvasStyle.Foreground(m.theme.Body).Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Single step when paused  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Select next body         ║
║  Arrows   - Push selected body       ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view on the terminal.
func Run(name string, build Builder) error {
	m, err := NewModel(name, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
