// Package viz renders a running propagation in the terminal.
package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/propagator"
)

const (
	historyCapacity = 240
	recentEvents    = 6
	barWidth        = 30
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// CheckpointMsg carries one spacecraft's state at a checkpoint.
type CheckpointMsg struct {
	ID     string
	Sample dynamo.Sample
}

// EventMsg carries a handled event and the post-event state.
type EventMsg struct {
	Event  propagator.Event
	Sample dynamo.Sample
}

// DoneMsg ends the view once the run has returned.
type DoneMsg struct {
	Err error
}

type track struct {
	last   dynamo.Sample
	radii  []float64
	events int
}

// Model shows progress, the latest state per spacecraft, a radius chart
// and the most recent events.
type Model struct {
	name     string
	start    float64
	duration float64
	cancel   func()

	order    []string
	tracks   map[string]*track
	selected int
	events   []propagator.Event
	t        float64

	done bool
	err  error
}

// NewModel builds the view for a run covering [start, start+duration].
// cancel is called when the user quits before the run is done.
func NewModel(name string, start, duration float64, cancel func()) Model {
	if cancel == nil {
		cancel = func() {}
	}
	return Model{
		name:     name,
		start:    start,
		duration: duration,
		cancel:   cancel,
		tracks:   make(map[string]*track),
		t:        start,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.done {
				m.cancel()
			}
			return m, tea.Quit
		case "tab":
			if len(m.order) > 0 {
				m.selected = (m.selected + 1) % len(m.order)
			}
		}
	case CheckpointMsg:
		tr := m.track(msg.ID)
		tr.last = msg.Sample
		tr.radii = append(tr.radii, msg.Sample.State.Block(0, 3).Norm()/1e3)
		if len(tr.radii) > historyCapacity {
			tr.radii = tr.radii[len(tr.radii)-historyCapacity:]
		}
		if msg.Sample.T > m.t {
			m.t = msg.Sample.T
		}
	case EventMsg:
		tr := m.track(msg.Event.Spacecraft)
		tr.last = msg.Sample
		tr.events++
		m.events = append(m.events, msg.Event)
		if len(m.events) > recentEvents {
			m.events = m.events[len(m.events)-recentEvents:]
		}
	case DoneMsg:
		m.done, m.err = true, msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) track(id string) *track {
	tr, ok := m.tracks[id]
	if !ok {
		tr = &track{}
		m.tracks[id] = tr
		m.order = append(m.order, id)
	}
	return tr
}

// Progress is the completed fraction of the run.
func (m Model) Progress() float64 {
	if m.duration <= 0 {
		return 0
	}
	p := (m.t - m.start) / m.duration
	if p > 1 {
		p = 1
	}
	return p
}

func (m Model) Done() bool { return m.done }

func (m Model) Err() error { return m.err }

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	filled := int(m.Progress() * barWidth)
	status := "PROPAGATING"
	if m.done {
		status = "DONE"
	}
	fmt.Fprintf(&s, "%s [%s%s] %5.1f%%  t=%.1fs\n\n", status,
		strings.Repeat("=", filled), strings.Repeat("-", barWidth-filled), 100*m.Progress(), m.t)

	for i, id := range m.order {
		tr := m.tracks[id]
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		r := tr.last.State.Block(0, 3).Norm() / 1e3
		v := tr.last.State.Block(3, 3).Norm() / 1e3
		s.WriteString(marker + labelStyle.Render(id) +
			valueStyle.Render(fmt.Sprintf("r=%.1f km  v=%.4f km/s  events=%d", r, v, tr.events)) + "\n")
	}

	if m.selected < len(m.order) {
		if radii := m.tracks[m.order[m.selected]].radii; len(radii) > 1 {
			chart := asciigraph.Plot(radii, asciigraph.Height(8), asciigraph.Width(60),
				asciigraph.Caption(m.order[m.selected]+" radius (km)"))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}

	if len(m.events) > 0 {
		s.WriteString("\nEVENTS\n")
		for _, ev := range m.events {
			s.WriteString(eventStyle.Render(fmt.Sprintf("  %-10s %-16s t=%.3fs", ev.Spacecraft, ev.Detector, ev.Time)) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + eventStyle.Render("error: "+m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("TAB:Next spacecraft  Q:Quit"))
	return s.String()
}
