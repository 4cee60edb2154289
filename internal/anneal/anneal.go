package anneal

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vovakirdan/flappyrl/internal/config"
)

// Iteration is one annealing step as seen by an Observer.
type Iteration struct {
	Restart         int
	Iter            int
	Temperature     float64
	Noise           float64 // noise scale after this step's update
	CurrentReward   float64
	CandidateReward float64
	Accepted        bool
	BestReward      float64 // best reward in this restart so far
	Weights         []float64
}

// Observer receives every annealing step. A non-nil error aborts the run.
type Observer interface {
	Observe(it Iteration) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Iteration) error

// Observe calls f(it).
func (f ObserverFunc) Observe(it Iteration) error {
	return f(it)
}

// RestartResult is the outcome of a single restart.
type RestartResult struct {
	Restart     int
	Policy      Policy
	Reward      float64
	Iterations  int
	ReachedCap  bool
	Evaluations int
}

// Result is the outcome of a full run.
type Result struct {
	Policy      Policy
	Reward      float64
	Restarts    []RestartResult
	Evaluations int
}

// Option configures an Annealer.
type Option func(*Annealer)

// WithLogger sets the progress logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Annealer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver registers an observer for every iteration.
func WithObserver(o Observer) Option {
	return func(a *Annealer) {
		if o != nil {
			a.observers = append(a.observers, o)
		}
	}
}

// Annealer runs simulated annealing with random restarts over linear policies.
type Annealer struct {
	env       Environment
	cfg       config.AnnealConfig
	rng       *rand.Rand
	logger    *log.Logger
	observers []Observer
	evals     int
}

// New creates an annealer over env. All sampling draws from rng.
func New(env Environment, cfg config.AnnealConfig, rng *rand.Rand, opts ...Option) *Annealer {
	a := &Annealer{
		env:    env,
		cfg:    cfg,
		rng:    rng,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run performs every restart and returns the best policy seen. When ctx is
// cancelled the best result so far is returned together with ctx.Err().
func (a *Annealer) Run(ctx context.Context) (Result, error) {
	res := Result{Reward: math.Inf(-1)}

	for r := 0; r < a.cfg.Restarts; r++ {
		rr, err := a.restart(ctx, r)
		res.Evaluations = a.evals
		if !math.IsInf(rr.Reward, -1) {
			res.Restarts = append(res.Restarts, rr)
			if rr.Reward > res.Reward {
				res.Reward = rr.Reward
				res.Policy = rr.Policy.Clone()
			}
		}
		if err != nil {
			return res, err
		}

		a.logger.Info("restart finished",
			"restart", fmt.Sprintf("%d/%d", r+1, a.cfg.Restarts),
			"reward", rr.Reward,
			"best", res.Reward,
			"iterations", rr.Iterations)
	}

	return res, nil
}

// restart anneals from a fresh uniformly drawn policy.
func (a *Annealer) restart(ctx context.Context, r int) (RestartResult, error) {
	uniform := distuv.Uniform{Min: -a.cfg.InitRange, Max: a.cfg.InitRange, Src: a.rng}
	current := Policy{Weights: make([]float64, Dim)}
	for i := range current.Weights {
		current.Weights[i] = uniform.Rand()
	}

	rr := RestartResult{Restart: r, Reward: math.Inf(-1)}
	startEvals := a.evals
	done := func(err error) (RestartResult, error) {
		rr.Evaluations = a.evals - startEvals
		return rr, err
	}

	temperature := a.cfg.InitialTemperature
	noise := a.cfg.InitialNoise

	a.logger.Debug("restart started", "restart", r+1, "weights", current)

	for temperature > a.cfg.MinTemperature {
		if err := ctx.Err(); err != nil {
			return done(err)
		}

		curReward, err := a.evaluate(current)
		if err != nil {
			return done(err)
		}
		if curReward > rr.Reward {
			a.setBest(&rr, current, curReward)
		}
		if a.cfg.RewardCap > 0 && curReward >= a.cfg.RewardCap {
			rr.ReachedCap = true
			break
		}

		candidate := a.propose(current, noise)
		candReward, err := a.evaluate(candidate)
		if err != nil {
			return done(err)
		}

		accepted := false
		if candReward > curReward {
			accepted = true
			noise = math.Max(noise/2, a.cfg.MinNoise)
		} else {
			p := math.Exp((candReward - curReward) / temperature)
			accepted = a.rng.Float64() < p
			noise = math.Min(noise*2, a.cfg.MaxNoise)
		}
		if accepted {
			current = candidate
		}

		if candReward > rr.Reward {
			a.setBest(&rr, candidate, candReward)
		}

		rr.Iterations++
		it := Iteration{
			Restart:         r,
			Iter:            rr.Iterations,
			Temperature:     temperature,
			Noise:           noise,
			CurrentReward:   curReward,
			CandidateReward: candReward,
			Accepted:        accepted,
			BestReward:      rr.Reward,
			Weights:         append([]float64(nil), current.Weights...),
		}
		a.logger.Debug("iteration",
			"restart", r+1,
			"iter", it.Iter,
			"temperature", temperature,
			"noise", noise,
			"current", curReward,
			"candidate", candReward,
			"accepted", accepted)
		for _, o := range a.observers {
			if err := o.Observe(it); err != nil {
				return done(fmt.Errorf("anneal: observer: %w", err))
			}
		}

		temperature *= a.cfg.CoolingRate
	}

	return done(nil)
}

// setBest records a new best policy for the restart.
func (a *Annealer) setBest(rr *RestartResult, p Policy, reward float64) {
	rr.Policy = p.Clone()
	rr.Reward = reward
	a.logger.Info("new best reward", "restart", rr.Restart+1, "reward", reward)
}

// propose perturbs every weight with independent Gaussian noise.
func (a *Annealer) propose(p Policy, noise float64) Policy {
	n := distuv.Normal{Mu: 0, Sigma: noise, Src: a.rng}
	delta := make([]float64, len(p.Weights))
	for i := range delta {
		delta[i] = n.Rand()
	}
	next := p.Clone()
	floats.Add(next.Weights, delta)
	return next
}

// evaluate scores a policy by a single capped rollout.
func (a *Annealer) evaluate(p Policy) (float64, error) {
	a.evals++
	ep, err := Evaluate(a.env, p, a.cfg.RewardCap)
	if err != nil {
		return 0, err
	}
	return ep.Reward, nil
}
