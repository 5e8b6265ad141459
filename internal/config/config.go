package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/astroprop/internal/events"
	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/orbits"
)

const (
	DefaultBody     = "earth"
	DefaultGravity  = "point_mass"
	DefaultWindow   = 2.0
	DefaultInterval = 60.0
	DefaultDuration = 5400.0
	DefaultMass     = 1000.0
	DefaultRadius   = 6628000.0
)

var ErrInvalid = errors.New("config: invalid scenario")

// Config is a propagation scenario. Distances are in meters, times in
// seconds and angles in radians.
type Config struct {
	Name       string             `yaml:"name"`
	Body       string             `yaml:"body"`
	Gravity    string             `yaml:"gravity"`
	Window     float64            `yaml:"window"`
	Interval   float64            `yaml:"interval"`
	Duration   float64            `yaml:"duration"`
	Parallel   bool               `yaml:"parallel,omitempty"`
	Integrator integrators.Config `yaml:"integrator"`
	Spacecraft []SpacecraftConfig `yaml:"spacecraft"`
}

// SpacecraftConfig places one spacecraft either by Cartesian position
// (with Velocity, or on a circular orbit when Velocity is omitted) or by
// Elements.
type SpacecraftConfig struct {
	ID       string            `yaml:"id"`
	Mass     float64           `yaml:"mass,omitempty"`
	Position *Vec3             `yaml:"position,omitempty"`
	Velocity *Vec3             `yaml:"velocity,omitempty"`
	Elements *orbits.Keplerian `yaml:"elements,omitempty"`
	Attitude *AttitudeConfig   `yaml:"attitude,omitempty"`
	Transfer *TransferConfig   `yaml:"transfer,omitempty"`
}

type Vec3 [3]float64

// AttitudeConfig adds a rigid body attitude block. Rates are body rates in
// rad/s; NadirRate overrides them with the orbit rate about body Z.
type AttitudeConfig struct {
	Size      Vec3       `yaml:"size"`
	Quat      [4]float64 `yaml:"quaternion"`
	Rates     Vec3       `yaml:"rates,omitempty"`
	NadirRate bool       `yaml:"nadir_rate,omitempty"`
}

// TransferConfig attaches a maneuver plan. Kind is hohmann, bielliptic or
// sequence; IntermediateRadius is only used by bielliptic and Burns only by
// sequence.
type TransferConfig struct {
	Kind               string       `yaml:"kind"`
	TargetRadius       float64      `yaml:"target_radius,omitempty"`
	IntermediateRadius float64      `yaml:"intermediate_radius,omitempty"`
	Start              float64      `yaml:"start"`
	Burns              []BurnConfig `yaml:"burns,omitempty"`
}

// BurnConfig is one stage of a sequence transfer. Direction is in the RIC
// frame. Event is time (fires At seconds after Start) or apsis (fires on
// the crossing named by Trigger: increasing, decreasing or all).
type BurnConfig struct {
	DeltaV    float64 `yaml:"delta_v"`
	Direction Vec3    `yaml:"direction"`
	Event     string  `yaml:"event"`
	At        float64 `yaml:"at,omitempty"`
	Trigger   string  `yaml:"trigger,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Body:       DefaultBody,
		Gravity:    DefaultGravity,
		Window:     DefaultWindow,
		Interval:   DefaultInterval,
		Duration:   DefaultDuration,
		Integrator: integrators.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario over DefaultConfig and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %g", ErrInvalid, c.Window)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %g", ErrInvalid, c.Interval)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalid, c.Duration)
	}
	if len(c.Spacecraft) == 0 {
		return fmt.Errorf("%w: no spacecraft", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Spacecraft))
	for i, sc := range c.Spacecraft {
		if sc.ID == "" {
			return fmt.Errorf("%w: spacecraft %d has no id", ErrInvalid, i)
		}
		if seen[sc.ID] {
			return fmt.Errorf("%w: duplicate spacecraft id %q", ErrInvalid, sc.ID)
		}
		seen[sc.ID] = true
		if err := sc.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, sc.ID, err)
		}
	}
	return nil
}

func (s SpacecraftConfig) validate() error {
	switch {
	case s.Position == nil && s.Elements == nil:
		return errors.New("one of position or elements is required")
	case s.Position != nil && s.Elements != nil:
		return errors.New("position and elements are mutually exclusive")
	case s.Elements != nil && s.Velocity != nil:
		return errors.New("velocity cannot be combined with elements")
	case s.Mass < 0:
		return fmt.Errorf("mass must not be negative, got %g", s.Mass)
	}
	if s.Elements != nil && (s.Elements.SMA <= 0 || s.Elements.Ecc < 0 || s.Elements.Ecc >= 1) {
		return errors.New("elements must describe a closed orbit")
	}
	if a := s.Attitude; a != nil && (a.Size[0] <= 0 || a.Size[1] <= 0 || a.Size[2] <= 0) {
		return errors.New("attitude size must be positive")
	}
	if tr := s.Transfer; tr != nil {
		return tr.validate()
	}
	return nil
}

func (tr TransferConfig) validate() error {
	if tr.Start < 0 {
		return errors.New("transfer start must not be negative")
	}
	if tr.Kind != "sequence" {
		if tr.TargetRadius <= 0 {
			return errors.New("transfer target radius must be positive")
		}
		return nil
	}
	if len(tr.Burns) == 0 {
		return errors.New("sequence transfer needs at least one burn")
	}
	for i, b := range tr.Burns {
		if b.Direction == (Vec3{}) {
			return fmt.Errorf("burn %d: direction must be non-zero", i)
		}
		switch b.Event {
		case "time":
			if b.At < 0 {
				return fmt.Errorf("burn %d: at must not be negative", i)
			}
		case "apsis":
			if _, err := events.ParseTrigger(b.Trigger); err != nil {
				return fmt.Errorf("burn %d: %v", i, err)
			}
		default:
			return fmt.Errorf("burn %d: unknown event %q", i, b.Event)
		}
	}
	return nil
}
