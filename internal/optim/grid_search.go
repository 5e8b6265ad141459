// Package optim searches parameter grids for the lowest cost.
package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/astroprop/internal/maneuvers"
)

var ErrNoFeasible = errors.New("optim: no grid point could be evaluated")

// CostFunc evaluates one grid point. Points returning an error are skipped.
type CostFunc func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search visits every combination of the grid and returns the parameters
// with the lowest cost.
func (g *GridSearch) Search(ctx context.Context, cost CostFunc) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), cost, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoFeasible
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	cost CostFunc,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := cost(ctx, current)
		if err != nil || math.IsNaN(val) {
			return nil
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, cost, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// Geometric returns n points from lo to hi with a constant ratio.
func Geometric(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	ratio := math.Pow(hi/lo, 1/float64(n-1))
	v := lo
	for i := range out {
		out[i] = v
		v *= ratio
	}
	out[n-1] = hi
	return out
}

// BiEllipticApoapsis finds the intermediate apoapsis among rbs with the
// lowest total delta-v for a transfer from r1 to r2.
func BiEllipticApoapsis(ctx context.Context, r1, r2, mu float64, rbs []float64) (float64, float64, error) {
	g := NewGridSearch([]string{"rb"}, [][]float64{rbs})
	params, dv, err := g.Search(ctx, func(_ context.Context, p map[string]float64) (float64, error) {
		b, err := maneuvers.NewBiElliptic(r1, r2, p["rb"], mu)
		if err != nil {
			return 0, err
		}
		return b.TotalDeltaV(), nil
	})
	if err != nil {
		return 0, 0, err
	}
	return params["rb"], dv, nil
}
