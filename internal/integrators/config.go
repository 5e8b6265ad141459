package integrators

// EventTolerance is the absolute time tolerance event bisection converges to.
const EventTolerance = 1e-6

// Config controls the adaptive step size controller.
type Config struct {
	AbsTol      float64 `yaml:"abs_tol"`
	RelTol      float64 `yaml:"rel_tol"`
	InitialStep float64 `yaml:"initial_step"`
	MinStep     float64 `yaml:"min_step"`
	MaxStep     float64 `yaml:"max_step"` // 0 means unbounded
	MaxSteps    int     `yaml:"max_steps"`
	Safety      float64 `yaml:"safety"`
	MinScale    float64 `yaml:"min_scale"`
	MaxScale    float64 `yaml:"max_scale"`
}

func DefaultConfig() Config {
	return Config{
		AbsTol:      1e-6,
		RelTol:      1e-6,
		InitialStep: 0.1,
		MinStep:     1e-10,
		MaxSteps:    1_000_000,
		Safety:      0.9,
		MinScale:    0.2,
		MaxScale:    10.0,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AbsTol <= 0 {
		c.AbsTol = d.AbsTol
	}
	if c.RelTol <= 0 {
		c.RelTol = d.RelTol
	}
	if c.InitialStep <= 0 {
		c.InitialStep = d.InitialStep
	}
	if c.MinStep <= 0 {
		c.MinStep = d.MinStep
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.Safety <= 0 || c.Safety >= 1 {
		c.Safety = d.Safety
	}
	if c.MinScale <= 0 {
		c.MinScale = d.MinScale
	}
	if c.MaxScale <= 1 {
		c.MaxScale = d.MaxScale
	}
	return c
}

// Stats describes the work done by the most recent Integrate or
// FindEventTime call.
type Stats struct {
	Steps       int
	Rejected    int
	Evaluations int
	Bisections  int
	LastStep    float64
	NextStep    float64
}
