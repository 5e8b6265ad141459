package config

import (
	"math"
	"sort"

	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/orbits"
)

const (
	leoRadius = 6628000.0
	geoRadius = 42164154.0
)

// Presets builds a fresh scenario on every call so callers may modify it.
var Presets = map[string]func() *Config{
	"leo-to-geo": func() *Config {
		return &Config{
			Name: "leo-to-geo", Body: "earth", Gravity: "point_mass",
			Window: DefaultWindow, Interval: 60, Duration: 21600,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{{
				ID: "sat-1", Mass: DefaultMass, Position: &Vec3{leoRadius, 0, 0},
				Transfer: &TransferConfig{Kind: "hohmann", TargetRadius: geoRadius, Start: 10},
			}},
		}
	},
	"geo-to-leo": func() *Config {
		return &Config{
			Name: "geo-to-leo", Body: "earth", Gravity: "point_mass",
			Window: DefaultWindow, Interval: 60, Duration: 21600,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{{
				ID: "sat-1", Mass: DefaultMass, Position: &Vec3{geoRadius, 0, 0},
				Transfer: &TransferConfig{Kind: "hohmann", TargetRadius: leoRadius, Start: 10},
			}},
		}
	},
	"bielliptic": func() *Config {
		return &Config{
			Name: "bielliptic", Body: "earth", Gravity: "point_mass",
			Window: 10, Interval: 300, Duration: 90000,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{{
				ID: "sat-1", Mass: DefaultMass, Position: &Vec3{7000e3, 0, 0},
				Transfer: &TransferConfig{
					Kind: "bielliptic", TargetRadius: geoRadius,
					IntermediateRadius: 60000e3, Start: 10,
				},
			}},
		}
	},
	"coast": func() *Config {
		return &Config{
			Name: "coast", Body: "earth", Gravity: "point_mass",
			Window: DefaultWindow, Interval: 60, Duration: 16800,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{{
				ID: "sat-1", Mass: DefaultMass, Position: &Vec3{6778000, 0, 0},
			}},
		}
	},
	"phasing": func() *Config {
		return &Config{
			Name: "phasing", Body: "earth", Gravity: "point_mass",
			Window: DefaultWindow, Interval: 60, Duration: 6000,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{{
				ID: "sat-1", Mass: DefaultMass, Position: &Vec3{6878000, 0, 0},
				Transfer: &TransferConfig{Kind: "sequence", Start: 60, Burns: []BurnConfig{
					{DeltaV: -20, Direction: Vec3{0, 1, 0}, Event: "time"},
					{DeltaV: 20, Direction: Vec3{0, 1, 0}, Event: "apsis", Trigger: "decreasing"},
				}},
			}},
		}
	},
	"j2-coast": func() *Config {
		return &Config{
			Name: "j2-coast", Body: "earth", Gravity: "j2",
			Window: 10, Interval: 300, Duration: 86400,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{{
				ID: "iss-like", Mass: 420000,
				Elements: &orbits.Keplerian{
					SMA: 6778000, Ecc: 0.0005, Inc: 51.6 * math.Pi / 180,
					RAAN: 30 * math.Pi / 180, ArgPeri: 90 * math.Pi / 180,
				},
			}},
		}
	},
	"constellation": func() *Config {
		return &Config{
			Name: "constellation", Body: "earth", Gravity: "point_mass",
			Window: DefaultWindow, Interval: 120, Duration: 6000, Parallel: true,
			Integrator: integrators.DefaultConfig(),
			Spacecraft: []SpacecraftConfig{
				{
					ID: "plane-a", Mass: 500, Position: &Vec3{7000e3, 0, 0},
					Attitude: &AttitudeConfig{Size: Vec3{1, 1, 2}, Quat: [4]float64{1, 0, 0, 0}, NadirRate: true},
				},
				{
					ID: "plane-b", Mass: 500,
					Elements: &orbits.Keplerian{SMA: 7000e3, Inc: math.Pi / 3, TrueAnomaly: math.Pi},
					Attitude: &AttitudeConfig{Size: Vec3{1, 2, 3}, Quat: [4]float64{1, 0, 0, 0}, Rates: Vec3{0.01, 0.2, 0.01}},
				},
				{
					ID: "raiser", Mass: 500, Position: &Vec3{0, 7000e3, 0},
					Transfer: &TransferConfig{Kind: "hohmann", TargetRadius: 7500e3, Start: 60},
				},
			},
		}
	},
}

// GetPreset returns a new copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
