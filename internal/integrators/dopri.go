package integrators

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

var (
	ErrOutsideDenseRange = errors.New("integrators: time outside dense output range")
	ErrBackward          = errors.New("integrators: end time precedes start time")
)

// Firer reports whether an event condition is crossed between two samples.
type Firer interface {
	Fires(prev, curr dynamo.Sample) bool
}

// DormandPrince is an adaptive embedded Runge-Kutta 5(4) stepper with
// dense output. It keeps scratch buffers between calls and must not be
// shared between goroutines.
type DormandPrince struct {
	cfg   Config
	stats Stats
	traj  trajectory

	k    [7]dynamo.State
	tmp  dynamo.State
	yNew dynamo.State
}

func NewDormandPrince(cfg Config) *DormandPrince {
	return &DormandPrince{cfg: cfg.withDefaults()}
}

func (d *DormandPrince) Config() Config { return d.cfg }

func (d *DormandPrince) Stats() Stats { return d.stats }

func (d *DormandPrince) ensureScratch(n int) {
	if len(d.tmp) != n {
		d.tmp = make(dynamo.State, n)
		d.yNew = make(dynamo.State, n)
	}
}

// Integrate advances x in place from t0 to t1 and returns t1. The final
// step is clamped so the reported time is exactly t1. Dense output for
// [t0, t1] stays available through DenseStateAt until the next call.
func (d *DormandPrince) Integrate(sys dynamo.System, x dynamo.State, t0, t1, h0 float64) (float64, error) {
	if len(x) != sys.StateDim() {
		return t0, fmt.Errorf("state has %d components, system expects %d: %w", len(x), sys.StateDim(), dynamo.ErrDimensionMismatch)
	}
	if t1 < t0 {
		return t0, fmt.Errorf("integrate [%g, %g]: %w", t0, t1, ErrBackward)
	}

	d.stats = Stats{}
	d.traj.reset(x, t0)
	if t1 == t0 {
		return t1, nil
	}

	n := len(x)
	d.ensureScratch(n)

	h := h0
	if h <= 0 {
		h = d.cfg.InitialStep
	}
	if d.cfg.MaxStep > 0 {
		h = math.Min(h, d.cfg.MaxStep)
	}

	t := t0
	d.k[0] = d.eval(sys, x, t)
	landing := 1e-12 * math.Max(1, math.Abs(t1))

	for attempts := 0; t < t1; attempts++ {
		if attempts >= d.cfg.MaxSteps {
			return t, fmt.Errorf("integrate [%g, %g] stopped at t=%g: %w", t0, t1, t, dynamo.ErrMaxSteps)
		}

		last := false
		free := h
		if t+h >= t1-landing {
			h = t1 - t
			last = true
		}

		errNorm := d.attempt(sys, x, t, h)

		if errNorm <= 1 {
			d.traj.push(x, d.yNew, &d.k, t, h)
			copy(x, d.yNew)
			if last {
				t = t1
			} else {
				t += h
			}
			d.k[0], d.k[6] = d.k[6], d.k[0]

			if !x.IsValid() {
				return t, fmt.Errorf("integrate at t=%g: %w", t, dynamo.ErrInvalidState)
			}

			d.stats.Steps++
			d.stats.LastStep = h

			scale := d.cfg.MaxScale
			if errNorm > 0 {
				scale = math.Min(d.cfg.MaxScale, d.cfg.Safety*math.Pow(errNorm, -0.2))
			}
			h *= scale
			if last {
				// a step clamped to land on t1 says nothing about the next window
				h = math.Max(h, free)
			}
			if d.cfg.MaxStep > 0 {
				h = math.Min(h, d.cfg.MaxStep)
			}
			d.stats.NextStep = h
			continue
		}

		d.stats.Rejected++
		scale := d.cfg.MinScale
		if !math.IsNaN(errNorm) && !math.IsInf(errNorm, 0) {
			scale = math.Max(d.cfg.MinScale, d.cfg.Safety*math.Pow(errNorm, -0.25))
		}
		h *= scale
		if h < d.cfg.MinStep {
			return t, fmt.Errorf("integrate at t=%g (h=%g): %w", t, h, dynamo.ErrStepTooSmall)
		}
	}

	return t1, nil
}

// attempt takes one trial step of size h from (x, t), leaving the
// candidate in d.yNew and the stage derivatives in d.k. d.k[0] must hold
// the derivative at (x, t). It returns the scaled RMS error.
func (d *DormandPrince) attempt(sys dynamo.System, x dynamo.State, t, h float64) float64 {
	n := len(x)
	k := &d.k
	y := d.tmp

	for i := 0; i < n; i++ {
		y[i] = x[i] + h*b21*k[0][i]
	}
	k[1] = d.eval(sys, y, t+a2*h)

	for i := 0; i < n; i++ {
		y[i] = x[i] + h*(b31*k[0][i]+b32*k[1][i])
	}
	k[2] = d.eval(sys, y, t+a3*h)

	for i := 0; i < n; i++ {
		y[i] = x[i] + h*(b41*k[0][i]+b42*k[1][i]+b43*k[2][i])
	}
	k[3] = d.eval(sys, y, t+a4*h)

	for i := 0; i < n; i++ {
		y[i] = x[i] + h*(b51*k[0][i]+b52*k[1][i]+b53*k[2][i]+b54*k[3][i])
	}
	k[4] = d.eval(sys, y, t+a5*h)

	for i := 0; i < n; i++ {
		y[i] = x[i] + h*(b61*k[0][i]+b62*k[1][i]+b63*k[2][i]+b64*k[3][i]+b65*k[4][i])
	}
	k[5] = d.eval(sys, y, t+h)

	for i := 0; i < n; i++ {
		d.yNew[i] = x[i] + h*(c1*k[0][i]+c3*k[2][i]+c4*k[3][i]+c5*k[4][i]+c6*k[5][i])
	}
	k[6] = d.eval(sys, d.yNew, t+h)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k[0][i] + dc3*k[2][i] + dc4*k[3][i] + dc5*k[4][i] + dc6*k[5][i] + dc7*k[6][i])
		sk := d.cfg.AbsTol + d.cfg.RelTol*math.Max(math.Abs(x[i]), math.Abs(d.yNew[i]))
		sum += (errEst / sk) * (errEst / sk)
	}
	return math.Sqrt(sum / float64(n))
}

func (d *DormandPrince) eval(sys dynamo.System, x dynamo.State, t float64) dynamo.State {
	d.stats.Evaluations++
	return sys.Derive(x, t)
}

// DenseStateAt interpolates the trajectory of the most recent Integrate
// call at t.
func (d *DormandPrince) DenseStateAt(t float64) (dynamo.State, error) {
	return d.traj.at(t)
}

// FindEventTime locates the time in [start.T, tEnd] at which det first
// fires, to within EventTolerance. The bracket is integrated once and the
// bisection runs on dense output. If det never fires in the bracket the
// result converges towards tEnd.
func (d *DormandPrince) FindEventTime(sys dynamo.System, start dynamo.Sample, tEnd float64, det Firer, h0 float64) (dynamo.Sample, error) {
	x := start.State.Clone()
	if _, err := d.Integrate(sys, x, start.T, tEnd, h0); err != nil {
		return dynamo.Sample{}, fmt.Errorf("event bracket [%g, %g]: %w", start.T, tEnd, err)
	}

	lo, hi := start.T, tEnd
	curr := start
	iterations := 0
	for math.Abs(hi-lo) > EventTolerance {
		mid := 0.5 * (lo + hi)
		if mid <= lo || mid >= hi {
			break
		}
		xm, err := d.traj.at(mid)
		if err != nil {
			return dynamo.Sample{}, err
		}
		s := dynamo.Sample{State: xm, T: mid}
		if det.Fires(curr, s) {
			hi = mid
		} else {
			lo = mid
			curr = s
		}
		iterations++
	}
	d.stats.Bisections = iterations

	tm := 0.5 * (lo + hi)
	xm, err := d.traj.at(tm)
	if err != nil {
		return dynamo.Sample{}, err
	}
	return dynamo.Sample{State: xm, T: tm}, nil
}
