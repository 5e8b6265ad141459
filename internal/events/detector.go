package events

import (
	"fmt"

	"github.com/san-kum/astroprop/internal/dynamo"
)

type Trigger int

const (
	Increasing Trigger = iota
	Decreasing
	All
)

func (t Trigger) String() string {
	switch t {
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	case All:
		return "all"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// ParseTrigger maps a config name to its Trigger.
func ParseTrigger(name string) (Trigger, error) {
	switch name {
	case "increasing":
		return Increasing, nil
	case "decreasing":
		return Decreasing, nil
	case "all", "":
		return All, nil
	}
	return 0, fmt.Errorf("unknown trigger mode: %s", name)
}

// Target identifies the vehicle an event fired on.
type Target interface {
	ID() string
}

type Handler interface {
	HandleEvent(target Target, t float64) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(target Target, t float64) error

func (f HandlerFunc) HandleEvent(target Target, t float64) error { return f(target, t) }

type Detector interface {
	Name() string
	G(s dynamo.Sample) float64
	Fires(prev, curr dynamo.Sample) bool
	HandleEvent(target Target, t float64) error
	Active() bool
}

// Crossed applies the sign-change test with the directional filter of mode.
func Crossed(mode Trigger, g0, g1 float64) bool {
	if g0*g1 > 0 {
		return false
	}
	switch mode {
	case Increasing:
		return g0 <= 0
	case Decreasing:
		return g1 <= 0
	default:
		return true
	}
}

// Base carries the trigger mode, active flag and handler list shared by
// detector implementations.
type Base struct {
	mode     Trigger
	inactive bool
	oneShot  bool
	handlers []Handler
}

func NewBase(mode Trigger) Base {
	return Base{mode: mode}
}

func (b *Base) Trigger() Trigger { return b.mode }

func (b *Base) Active() bool { return !b.inactive }

// Deactivate marks the detector as permanently fired.
func (b *Base) Deactivate() { b.inactive = true }

// OneShot makes the detector deactivate itself after its first event.
func (b *Base) OneShot() { b.oneShot = true }

func (b *Base) AddHandler(h Handler) {
	b.handlers = append(b.handlers, h)
}

// HandleEvent notifies every registered handler in registration order and
// stops at the first error.
func (b *Base) HandleEvent(target Target, t float64) error {
	if b.oneShot {
		b.inactive = true
	}
	for _, h := range b.handlers {
		if err := h.HandleEvent(target, t); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) crosses(g0, g1 float64) bool {
	if b.inactive {
		return false
	}
	return Crossed(b.mode, g0, g1)
}
