package anneal

import (
	"fmt"

	"github.com/vovakirdan/flappyrl/internal/core"
)

// Environment is the episodic step contract the optimizer needs.
type Environment interface {
	Reset() (core.Observation, error)
	Step(core.Action) (core.StepResult, error)
}

// Episode summarizes one policy rollout.
type Episode struct {
	Reward    float64
	Ticks     int
	Score     int
	Truncated bool // stopped at the reward cap rather than by termination
}

// Evaluate runs one episode under p until the environment terminates or the
// cumulative reward reaches rewardCap. A non-positive cap disables truncation.
func Evaluate(env Environment, p Policy, rewardCap float64) (Episode, error) {
	obs, err := env.Reset()
	if err != nil {
		return Episode{}, fmt.Errorf("anneal: reset: %w", err)
	}
	if len(p.Weights) != len(obs)+1 {
		return Episode{}, fmt.Errorf("%w: %d weights for %d observation values", ErrDimensionMismatch, len(p.Weights), len(obs))
	}

	var ep Episode
	for {
		a, err := p.Decide(obs)
		if err != nil {
			return ep, err
		}
		res, err := env.Step(a)
		if err != nil {
			return ep, fmt.Errorf("anneal: step %d: %w", ep.Ticks+1, err)
		}
		ep.Ticks++
		ep.Reward += res.Reward
		ep.Score = res.Info.Score
		obs = res.Observation

		if res.Terminated {
			return ep, nil
		}
		if rewardCap > 0 && ep.Reward >= rewardCap {
			ep.Truncated = true
			return ep, nil
		}
	}
}
