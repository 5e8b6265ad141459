package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/propagator"
	"github.com/san-kum/astroprop/internal/sim"
)

var _ sim.Observer = (*Observer)(nil)

type captured struct {
	msgs []tea.Msg
}

func (c *captured) Send(msg tea.Msg) { c.msgs = append(c.msgs, msg) }

func sample(t, r float64) dynamo.Sample {
	return dynamo.Sample{State: dynamo.State{r, 0, 0, 0, 7500, 0}, T: t}
}

func apply(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestObserver_ForwardsClones(t *testing.T) {
	out := &captured{}
	o := NewObserver(out)

	s := sample(60, 7000e3)
	o.OnCheckpoint("sat-1", s)
	o.OnEvent(propagator.Event{Spacecraft: "sat-1", Detector: "maneuver-plan", Time: 60}, s)
	s.State[0] = 0

	if len(out.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out.msgs))
	}
	cp, ok := out.msgs[0].(CheckpointMsg)
	if !ok || cp.ID != "sat-1" || cp.Sample.State[0] != 7000e3 {
		t.Errorf("unexpected checkpoint message %+v", out.msgs[0])
	}
	ev, ok := out.msgs[1].(EventMsg)
	if !ok || ev.Event.Detector != "maneuver-plan" || ev.Sample.State[0] != 7000e3 {
		t.Errorf("unexpected event message %+v", out.msgs[1])
	}
}

func TestModel_Progress(t *testing.T) {
	m := NewModel("coast", 0, 600, nil)
	m, cmd := apply(m,
		CheckpointMsg{ID: "a", Sample: sample(0, 7000e3)},
		CheckpointMsg{ID: "b", Sample: sample(0, 8000e3)},
		CheckpointMsg{ID: "a", Sample: sample(300, 7000e3)},
	)
	if cmd != nil {
		t.Error("checkpoints must not end the view")
	}
	if math.Abs(m.Progress()-0.5) > 1e-12 {
		t.Errorf("progress %g, want 0.5", m.Progress())
	}

	view := m.View()
	for _, want := range []string{"COAST", "PROPAGATING", "r=7000.0 km", "r=8000.0 km", "a radius (km)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = apply(m, tea.KeyMsg{Type: tea.KeyTab})
	if !strings.Contains(m.View(), "b radius (km)") {
		t.Error("tab should select the next spacecraft")
	}
}

func TestModel_Events(t *testing.T) {
	m := NewModel("transfer", 0, 100, nil)
	for i := 0; i < recentEvents+2; i++ {
		m, _ = apply(m, EventMsg{
			Event:  propagator.Event{Spacecraft: "sat-1", Detector: "maneuver-plan", Time: float64(i)},
			Sample: sample(float64(i), 7000e3),
		})
	}
	if len(m.events) != recentEvents {
		t.Errorf("kept %d events, want %d", len(m.events), recentEvents)
	}
	if m.events[0].Time != 2 {
		t.Errorf("oldest kept event at %g, want 2", m.events[0].Time)
	}
	if !strings.Contains(m.View(), "events=8") {
		t.Errorf("event count missing from view:\n%s", m.View())
	}
}

func TestModel_QuitCancelsRun(t *testing.T) {
	canceled := false
	m := NewModel("coast", 0, 100, func() { canceled = true })
	_, cmd := apply(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !canceled {
		t.Error("quitting before the run is done should cancel it")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
}

func TestModel_Done(t *testing.T) {
	canceled := false
	m := NewModel("coast", 0, 100, func() { canceled = true })
	boom := errors.New("boom")
	m, cmd := apply(m, DoneMsg{Err: boom})
	if !m.Done() || !errors.Is(m.Err(), boom) || cmd == nil {
		t.Errorf("done=%v err=%v cmd=%v", m.Done(), m.Err(), cmd)
	}
	if !strings.Contains(m.View(), "error: boom") {
		t.Error("view should show the run error")
	}
	apply(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if canceled {
		t.Error("a finished run must not be canceled")
	}
}
