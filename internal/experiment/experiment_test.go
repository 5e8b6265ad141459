package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/orbits"
	"github.com/san-kum/astroprop/internal/sim"
)

func TestPresetsBuild(t *testing.T) {
	r := NewRegistry()
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := config.GetPreset(name)
			e, err := New(cfg, r)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if got := e.Spacecraft().Len(); got != len(cfg.Spacecraft) {
				t.Errorf("built %d spacecraft, want %d", got, len(cfg.Spacecraft))
			}
			want := 0
			for _, sc := range cfg.Spacecraft {
				if sc.Transfer != nil {
					want++
				}
			}
			if len(e.Transfers()) != want {
				t.Errorf("built %d transfers, want %d", len(e.Transfers()), want)
			}
		})
	}
}

func TestConstellationLayout(t *testing.T) {
	e, err := New(config.GetPreset("constellation"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	a, err := e.Spacecraft().Get("plane-a")
	if err != nil {
		t.Fatal(err)
	}
	if a.Dim() != 13 {
		t.Errorf("attitude spacecraft has dim %d, want 13", a.Dim())
	}
	if a.Mass() != 500 {
		t.Errorf("mass = %g", a.Mass())
	}
	raiser, err := e.Spacecraft().Get("raiser")
	if err != nil {
		t.Fatal(err)
	}
	if raiser.Plan() == nil || raiser.Plan().Len() != 2 {
		t.Error("raiser should carry a two-burn plan")
	}
}

func TestBuildErrors(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown body", func(c *config.Config) { c.Body = "vulcan" }},
		{"unknown gravity", func(c *config.Config) { c.Gravity = "mascon" }},
		{"unknown transfer", func(c *config.Config) { c.Spacecraft[0].Transfer.Kind = "lambert" }},
		{"inside body", func(c *config.Config) { c.Spacecraft[0].Position = &config.Vec3{1000, 0, 0} }},
		{"polar position", func(c *config.Config) { c.Spacecraft[0].Position = &config.Vec3{0, 0, 7000e3} }},
		{"eccentric start", func(c *config.Config) {
			c.Spacecraft[0].Velocity = &config.Vec3{0, 8500, 0}
		}},
		{"invalid scenario", func(c *config.Config) { c.Duration = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetPreset("leo-to-geo")
			tt.modify(cfg)
			if _, err := New(cfg, r); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunBeforeSetup(t *testing.T) {
	e, err := New(config.GetPreset("coast"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestRunCoast(t *testing.T) {
	cfg := config.GetPreset("coast")
	cfg.Duration, cfg.Interval = 600, 300

	e, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	rec := &sim.Recorder{}
	if err := e.Setup(nil, nil, rec); err != nil {
		t.Fatal(err)
	}
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if rec.Checks != 3 {
		t.Errorf("expected 3 checkpoints, got %d", rec.Checks)
	}
	for _, name := range []string{"energy_drift", "momentum_drift", "min_radius"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing from %v", name, result.Metrics)
		}
	}
	if result.Metrics["energy_drift"] > 1e-8 {
		t.Errorf("energy drift %g", result.Metrics["energy_drift"])
	}
	if math.Abs(result.Metrics["min_radius"]-6778000) > 1 {
		t.Errorf("min radius %g", result.Metrics["min_radius"])
	}
}

func TestRunConstellationParallel(t *testing.T) {
	cfg := config.GetPreset("constellation")
	cfg.Duration, cfg.Interval = 120, 60

	e, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Setup(nil, nil); err != nil {
		t.Fatal(err)
	}
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Events) != 1 {
		t.Fatalf("expected the raiser's first burn, got %v", result.Events)
	}
	ev := result.Events[0]
	if ev.Spacecraft != "raiser" || math.Abs(ev.Time-60) > 1e-6 {
		t.Errorf("unexpected event %+v", ev)
	}
	for _, id := range []string{"plane-a", "plane-b", "raiser"} {
		s, err := e.State(id)
		if err != nil {
			t.Fatal(err)
		}
		if s.T != 120 {
			t.Errorf("%s at t=%g, want 120", id, s.T)
		}
	}
}

func TestDefaultMetrics(t *testing.T) {
	r := NewRegistry()
	names := func(ms []sim.Metric) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Name()
		}
		return out
	}

	pm := r.DefaultMetrics("point_mass", bodies.NewPointMass(bodies.Earth))
	if diff := cmp.Diff([]string{"energy_drift", "momentum_drift", "min_radius"}, names(pm)); diff != "" {
		t.Errorf("point mass metrics (-want +got):\n%s", diff)
	}
	j2 := r.DefaultMetrics("j2", bodies.NewOblate(bodies.Earth))
	if diff := cmp.Diff([]string{"energy_drift", "axial_momentum_drift", "min_radius"}, names(j2)); diff != "" {
		t.Errorf("j2 metrics (-want +got):\n%s", diff)
	}
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if diff := cmp.Diff([]string{"j2", "point_mass"}, r.ListGravity()); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff([]string{"bielliptic", "hohmann", "sequence"}, r.ListTransfers()); diff != "" {
		t.Error(diff)
	}
}

func TestRunPhasingSequence(t *testing.T) {
	e, err := New(config.GetPreset("phasing"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Setup(nil, nil); err != nil {
		t.Fatal(err)
	}
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Events) != 2 {
		t.Fatalf("expected two burns, got %v", result.Events)
	}
	const r = 6878000.0
	mu := bodies.Earth.Mu
	v := math.Sqrt(mu/r) - 20
	a := -mu / (2 * (0.5*v*v - mu/r))
	wantSecond := 60 + orbits.Period(a, mu)
	if math.Abs(result.Events[0].Time-60) > 1e-6 {
		t.Errorf("first burn at %g, want 60", result.Events[0].Time)
	}
	if math.Abs(result.Events[1].Time-wantSecond) > 1 {
		t.Errorf("second burn at %g, want one phasing orbit later at %g", result.Events[1].Time, wantSecond)
	}

	final := result.Final[0]
	if final.Burns != 2 || math.Abs(final.DeltaV-40) > 1e-9 {
		t.Errorf("unexpected burns %d, delta-v %g", final.Burns, final.DeltaV)
	}
	if final.Eccentricity > 1e-5 || math.Abs(final.SemiMajorAxis-r) > 100 {
		t.Errorf("orbit not restored: a=%g e=%g", final.SemiMajorAxis, final.Eccentricity)
	}
}
