package spacecraft

import "github.com/san-kum/astroprop/internal/dynamo"

// PVSize is the length of the position/velocity block at the head of
// every state vector.
const PVSize = 6

// StateProvider owns an additional block of the integrated state.
// Derivative reads its own block from full at offset and returns the
// block's derivative.
type StateProvider interface {
	Name() string
	Size() int
	Derivative(full dynamo.State, offset int, t float64) dynamo.State
	IntegratedState() dynamo.State
	SetIntegratedState(x dynamo.State)
}

// Span is a contiguous range of the state vector.
type Span struct {
	Offset int
	Size   int
}

func (s Span) End() int { return s.Offset + s.Size }

// Block pairs a provider with the span it was assigned.
type Block struct {
	Span     Span
	Provider StateProvider
}
