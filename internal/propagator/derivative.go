package propagator

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/spacecraft"
)

// Derivative is the right-hand side of one spacecraft: gravity drives the
// position/velocity block and each additional block is dispatched to its
// provider by span.
type Derivative struct {
	model  bodies.AccelerationModel
	blocks []spacecraft.Block
	dim    int
}

func NewDerivative(model bodies.AccelerationModel, blocks []spacecraft.Block) *Derivative {
	dim := spacecraft.PVSize
	for _, b := range blocks {
		dim += b.Span.Size
	}
	return &Derivative{
		model:  model,
		blocks: append([]spacecraft.Block(nil), blocks...),
		dim:    dim,
	}
}

func (d *Derivative) StateDim() int { return d.dim }

func (d *Derivative) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, d.dim)

	a := d.model.Acceleration(r3.Vec{X: x[0], Y: x[1], Z: x[2]}, t)
	copy(dx[0:3], x[3:6])
	dx[3], dx[4], dx[5] = a.X, a.Y, a.Z

	for _, b := range d.blocks {
		copy(dx[b.Span.Offset:b.Span.End()], b.Provider.Derivative(x, b.Span.Offset, t))
	}
	return dx
}
