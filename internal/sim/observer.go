package sim

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/logging"
	"github.com/san-kum/astroprop/internal/propagator"
)

// LogObserver writes checkpoints at debug level and events at info level.
type LogObserver struct {
	logger log.Logger
}

func NewLogObserver(logger log.Logger) *LogObserver {
	return &LogObserver{logger: logging.Subsystem(logger, "observer")}
}

func (o *LogObserver) OnCheckpoint(id string, s dynamo.Sample) {
	level.Debug(o.logger).Log("sc", id, "t", s.T, "r", s.State.Block(0, 3).Norm(), "v", s.State.Block(3, 3).Norm())
}

func (o *LogObserver) OnEvent(ev propagator.Event, s dynamo.Sample) {
	level.Info(o.logger).Log("sc", ev.Spacecraft, "event", ev.Detector, "t", ev.Time, "v", s.State.Block(3, 3).Norm())
}

// Recorder keeps every event with the post-event state.
type Recorder struct {
	Events  []propagator.Event
	Samples []dynamo.Sample
	Checks  int
}

func (r *Recorder) OnCheckpoint(id string, s dynamo.Sample) { r.Checks++ }

func (r *Recorder) OnEvent(ev propagator.Event, s dynamo.Sample) {
	r.Events = append(r.Events, ev)
	r.Samples = append(r.Samples, s.Clone())
}
