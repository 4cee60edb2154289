// Package anneal searches for a linear flappy policy with simulated
// annealing and random restarts.
package anneal

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/games/flappy"
)

// Dim is the number of policy weights: one per observation component plus a bias.
const Dim = flappy.ObservationSize + 1

// ErrDimensionMismatch is returned when the weights do not fit the observation.
var ErrDimensionMismatch = errors.New("anneal: policy dimension mismatch")

// Policy is a linear threshold controller: flap iff w·[obs, 1] > 0.
type Policy struct {
	Weights []float64
}

// NewPolicy copies w into a new policy.
func NewPolicy(w []float64) Policy {
	return Policy{Weights: append([]float64(nil), w...)}
}

// Clone returns a deep copy.
func (p Policy) Clone() Policy {
	return NewPolicy(p.Weights)
}

// Value returns the dot product of the weights with the observation padded
// with a constant 1 for the bias term.
func (p Policy) Value(obs core.Observation) (float64, error) {
	if len(p.Weights) != len(obs)+1 {
		return 0, fmt.Errorf("%w: %d weights for %d observation values", ErrDimensionMismatch, len(p.Weights), len(obs))
	}
	n := len(obs)
	return floats.Dot(p.Weights[:n], obs) + p.Weights[n], nil
}

// Decide maps an observation to an action.
func (p Policy) Decide(obs core.Observation) (core.Action, error) {
	v, err := p.Value(obs)
	if err != nil {
		return core.ActionIdle, err
	}
	return core.ActionFromBool(v > 0), nil
}

// String formats the weights for logs and CLI output.
func (p Policy) String() string {
	return fmt.Sprintf("%.6g", p.Weights)
}
