package orbits

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/frames"
)

// Keplerian is a classical element set. Angles are in radians.
type Keplerian struct {
	SMA         float64 `yaml:"sma" json:"sma"`
	Ecc         float64 `yaml:"ecc" json:"ecc"`
	Inc         float64 `yaml:"inc" json:"inc"`
	RAAN        float64 `yaml:"raan" json:"raan"`
	ArgPeri     float64 `yaml:"arg_peri" json:"arg_peri"`
	TrueAnomaly float64 `yaml:"true_anomaly" json:"true_anomaly"`
}

// CircularElements returns an equatorial circular orbit of radius r.
func CircularElements(r float64) Keplerian {
	return Keplerian{SMA: r}
}

func (k Keplerian) ToCartesian(mu float64) (pos, vel r3.Vec) {
	p := k.SMA * (1 - k.Ecc*k.Ecc)
	sinNu, cosNu := math.Sincos(k.TrueAnomaly)
	r := p / (1 + k.Ecc*cosNu)

	rPQW := r3.Vec{X: r * cosNu, Y: r * sinNu}
	vPQW := r3.Scale(math.Sqrt(mu/p), r3.Vec{X: -sinNu, Y: k.Ecc + cosNu})

	pos = frames.PQWToInertial(k.Inc, k.ArgPeri, k.RAAN, rPQW)
	vel = frames.PQWToInertial(k.Inc, k.ArgPeri, k.RAAN, vPQW)
	return pos, vel
}

// FromCartesian recovers elements from an inertial state. For circular
// orbits the argument of periapsis is zero and the true anomaly is measured
// from the ascending node; for equatorial orbits the node is the X axis.
func FromCartesian(pos, vel r3.Vec, mu float64) Keplerian {
	const small = 1e-10

	h := AngularMomentum(pos, vel)
	n := r3.Cross(zHat, h)
	eVec := EccentricityVector(pos, vel, mu)
	e := r3.Norm(eVec)

	k := Keplerian{
		SMA: SemiMajorAxis(pos, vel, mu),
		Ecc: e,
		Inc: math.Acos(clamp(h.Z / r3.Norm(h))),
	}

	nodeDir := r3.Vec{X: 1}
	if r3.Norm(n) > small*r3.Norm(h) {
		nodeDir = r3.Unit(n)
		k.RAAN = math.Atan2(n.Y, n.X)
		if k.RAAN < 0 {
			k.RAAN += 2 * math.Pi
		}
	}

	ref := nodeDir
	if e > small {
		k.ArgPeri = angleIn(nodeDir, r3.Unit(eVec), h)
		ref = r3.Unit(eVec)
	}
	k.TrueAnomaly = angleIn(ref, r3.Unit(pos), h)
	return k
}

// angleIn is the angle from a to b measured positively about axis.
func angleIn(a, b, axis r3.Vec) float64 {
	theta := math.Acos(clamp(r3.Dot(a, b)))
	if r3.Dot(r3.Cross(a, b), axis) < 0 {
		theta = 2*math.Pi - theta
	}
	return theta
}

func clamp(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}
