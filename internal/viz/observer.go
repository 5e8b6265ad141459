package viz

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/propagator"
)

// Sender receives view messages; *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards checkpoints and events to a running view. Samples are
// cloned since the view keeps them after the callback returns.
type Observer struct {
	out Sender
}

func NewObserver(out Sender) *Observer {
	return &Observer{out: out}
}

func (o *Observer) OnCheckpoint(id string, s dynamo.Sample) {
	o.out.Send(CheckpointMsg{ID: id, Sample: s.Clone()})
}

func (o *Observer) OnEvent(ev propagator.Event, s dynamo.Sample) {
	o.out.Send(EventMsg{Event: ev, Sample: s.Clone()})
}
