package integrators

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Continuous extension coefficients of Dormand-Prince 5(4).
var (
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// segment holds the interpolation polynomial of one accepted step.
type segment struct {
	t0, h float64
	r     [5]dynamo.State
}

func (s *segment) fill(y0, y1 dynamo.State, k *[7]dynamo.State, t0, h float64) {
	n := len(y0)
	for i := range s.r {
		if cap(s.r[i]) < n {
			s.r[i] = make(dynamo.State, n)
		}
		s.r[i] = s.r[i][:n]
	}
	s.t0, s.h = t0, h
	for i := 0; i < n; i++ {
		ydiff := y1[i] - y0[i]
		bspl := h*k[0][i] - ydiff
		s.r[0][i] = y0[i]
		s.r[1][i] = ydiff
		s.r[2][i] = bspl
		s.r[3][i] = ydiff - h*k[6][i] - bspl
		s.r[4][i] = h * (d1*k[0][i] + d3*k[2][i] + d4*k[3][i] + d5*k[4][i] + d6*k[5][i] + d7*k[6][i])
	}
}

func (s *segment) eval(t float64, out dynamo.State) {
	theta := (t - s.t0) / s.h
	theta1 := 1 - theta
	for i := range out {
		out[i] = s.r[0][i] + theta*(s.r[1][i]+theta1*(s.r[2][i]+theta*(s.r[3][i]+theta1*s.r[4][i])))
	}
}

// trajectory is the piecewise continuous extension of one integration.
type trajectory struct {
	start dynamo.Sample
	segs  []segment
	n     int
}

func (tr *trajectory) reset(x dynamo.State, t float64) {
	tr.start = dynamo.Sample{State: x.Clone(), T: t}
	tr.n = 0
}

func (tr *trajectory) push(y0, y1 dynamo.State, k *[7]dynamo.State, t0, h float64) {
	if tr.n == len(tr.segs) {
		tr.segs = append(tr.segs, segment{})
	}
	tr.segs[tr.n].fill(y0, y1, k, t0, h)
	tr.n++
}

func (tr *trajectory) end() float64 {
	if tr.n == 0 {
		return tr.start.T
	}
	last := &tr.segs[tr.n-1]
	return last.t0 + last.h
}

func (tr *trajectory) at(t float64) (dynamo.State, error) {
	lo, hi := tr.start.T, tr.end()
	slack := 1e-12 * (1 + math.Abs(hi))
	if t < lo-slack || t > hi+slack {
		return nil, fmt.Errorf("t=%g not in [%g, %g]: %w", t, lo, hi, ErrOutsideDenseRange)
	}
	if tr.n == 0 {
		return tr.start.State.Clone(), nil
	}
	segs := tr.segs[:tr.n]
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].t0+segs[i].h >= t
	})
	if i == len(segs) {
		i--
	}
	out := make(dynamo.State, len(tr.start.State))
	segs[i].eval(t, out)
	return out, nil
}
