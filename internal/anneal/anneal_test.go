package anneal

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/flappyrl/internal/config"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/games/flappy"
)

// targetEnv rewards +10 for every tick the action matches a hidden linear
// rule and terminates with -10 on the first mismatch.
type targetEnv struct {
	target Policy
	obs    []core.Observation
	t      int
}

func newTargetEnv(n int) *targetEnv {
	rng := core.NewRand(5)
	env := &targetEnv{target: NewPolicy([]float64{0.5, -1, 0.25, 1, 0.1})}
	for i := 0; i < n; i++ {
		o := make(core.Observation, 4)
		for j := range o {
			o[j] = rng.Float64()*2 - 1
		}
		env.obs = append(env.obs, o)
	}
	return env
}

func (e *targetEnv) Reset() (core.Observation, error) {
	e.t = 0
	return e.obs[0].Clone(), nil
}

func (e *targetEnv) Step(a core.Action) (core.StepResult, error) {
	want, err := e.target.Decide(e.obs[e.t])
	if err != nil {
		return core.StepResult{}, err
	}
	e.t++
	if a != want {
		return core.StepResult{Observation: e.obs[e.t-1].Clone(), Reward: -10, Terminated: true}, nil
	}
	if e.t == len(e.obs) {
		return core.StepResult{Observation: e.obs[e.t-1].Clone(), Reward: 10, Terminated: true}, nil
	}
	return core.StepResult{Observation: e.obs[e.t].Clone(), Reward: 10}, nil
}

// endlessEnv pays a fixed reward forever.
type endlessEnv struct {
	reward float64
	size   int
}

func (e *endlessEnv) Reset() (core.Observation, error) {
	return make(core.Observation, e.size), nil
}

func (e *endlessEnv) Step(core.Action) (core.StepResult, error) {
	return core.StepResult{Observation: make(core.Observation, e.size), Reward: e.reward}, nil
}

func smallConfig() config.AnnealConfig {
	cfg := config.DefaultConfig().Anneal
	cfg.Restarts = 3
	cfg.InitialTemperature = 1000
	cfg.CoolingRate = 0.9
	return cfg
}

func TestPolicyValue(t *testing.T) {
	p := NewPolicy([]float64{1, 2, 3, 4, 5})

	v, err := p.Value(core.Observation{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Value() failed: %v", err)
	}
	if v != 15 {
		t.Errorf("Value() = %g, expected 15", v)
	}

	v, err = p.Value(core.Observation{2, 0, -1, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if v != 6 {
		t.Errorf("Value() = %g, expected 6 (2 - 3 + 2 + bias 5)", v)
	}
}

func TestPolicyDimensionMismatch(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		obs     core.Observation
	}{
		{"same length", []float64{1, 2, 3, 4}, core.Observation{1, 2, 3, 4}},
		{"too long", []float64{1, 2, 3, 4, 5, 6}, core.Observation{1, 2, 3, 4}},
		{"empty", nil, core.Observation{1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicy(tc.weights).Value(tc.obs)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Value() error = %v, expected ErrDimensionMismatch", err)
			}
			if _, err := NewPolicy(tc.weights).Decide(tc.obs); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Decide() error = %v, expected ErrDimensionMismatch", err)
			}
		})
	}
}

func TestPolicyDecide(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    core.Action
	}{
		{"positive", []float64{0, 0, 0, 0, 1}, core.ActionFlap},
		{"zero is idle", []float64{0, 0, 0, 0, 0}, core.ActionIdle},
		{"negative", []float64{0, 0, 0, 0, -1}, core.ActionIdle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewPolicy(tc.weights).Decide(core.Observation{3, 1, 4, 1})
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Decide() = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestPolicyCloneIsDeep(t *testing.T) {
	w := []float64{1, 2, 3, 4, 5}
	p := NewPolicy(w)
	w[0] = 100
	if p.Weights[0] != 1 {
		t.Error("NewPolicy should copy its input")
	}
	c := p.Clone()
	c.Weights[1] = 100
	if p.Weights[1] != 2 {
		t.Error("Clone should not share weights")
	}
}

func TestEvaluateNeverFlap(t *testing.T) {
	env := flappy.New(config.DefaultConfig().Flappy, core.NewRand(1))

	ep, err := Evaluate(env, NewPolicy([]float64{0, 0, 0, 0, -1}), 1000)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if ep.Reward != -10 || ep.Ticks != 16 || ep.Truncated {
		t.Errorf("Evaluate() = %+v, expected a -10 crash after 16 ticks", ep)
	}
}

// flap iff y > 600 survives forever when the only possible gap is [50, 750].
func TestEvaluateStopsAtRewardCap(t *testing.T) {
	cfg := config.DefaultConfig().Flappy
	cfg.Obstacles.GapSize = 700
	env := flappy.New(cfg, core.NewRand(1))

	ep, err := Evaluate(env, NewPolicy([]float64{1, 0, 0, 0, -600}), 1000)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if ep.Reward != 1000 {
		t.Errorf("reward = %g, expected exactly 1000", ep.Reward)
	}
	if !ep.Truncated || ep.Score != 100 {
		t.Errorf("episode = %+v, expected truncation after 100 passes", ep)
	}
}

func TestEvaluateUncapped(t *testing.T) {
	ep, err := Evaluate(newTargetEnv(20), NewPolicy([]float64{0.5, -1, 0.25, 1, 0.1}), 0)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Reward != 200 || ep.Ticks != 20 || ep.Truncated {
		t.Errorf("Evaluate() = %+v, expected 20 matched ticks", ep)
	}
}

func TestEvaluateDimensionMismatch(t *testing.T) {
	_, err := Evaluate(&endlessEnv{reward: 1, size: 3}, NewPolicy(make([]float64, Dim)), 1000)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Evaluate() error = %v, expected ErrDimensionMismatch", err)
	}
}

func TestRunReachesCapOnFirstEvaluation(t *testing.T) {
	cfg := smallConfig()
	a := New(&endlessEnv{reward: 10, size: 4}, cfg, core.NewRand(3))

	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Reward != 1000 {
		t.Errorf("best reward = %g, expected 1000", res.Reward)
	}
	if len(res.Restarts) != cfg.Restarts {
		t.Fatalf("restarts = %d, expected %d", len(res.Restarts), cfg.Restarts)
	}
	for _, rr := range res.Restarts {
		if !rr.ReachedCap || rr.Iterations != 0 || rr.Evaluations != 1 {
			t.Errorf("restart %d = %+v, expected a single capped evaluation", rr.Restart, rr)
		}
		if len(rr.Policy.Weights) != Dim {
			t.Errorf("restart %d policy has %d weights", rr.Restart, len(rr.Policy.Weights))
		}
	}
	if res.Evaluations != cfg.Restarts {
		t.Errorf("evaluations = %d, expected %d", res.Evaluations, cfg.Restarts)
	}
}

func TestRunIterationCount(t *testing.T) {
	cfg := smallConfig()
	cfg.Restarts = 1
	cfg.InitialTemperature = 10
	cfg.CoolingRate = 0.5

	// T = 10, 5, 2.5, 1.25 and then stops at 0.625.
	res, err := New(newTargetEnv(30), cfg, core.NewRand(3)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Restarts[0].Iterations; got != 4 {
		t.Errorf("iterations = %d, expected 4", got)
	}
	if res.Evaluations != 8 {
		t.Errorf("evaluations = %d, expected 8", res.Evaluations)
	}
}

func TestNoiseScheduleStaysInBounds(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxNoise = 5
	var iters []Iteration

	obs := ObserverFunc(func(it Iteration) error {
		iters = append(iters, it)
		return nil
	})
	if _, err := New(newTargetEnv(60), cfg, core.NewRand(21), WithObserver(obs)).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(iters) == 0 {
		t.Fatal("observer received no iterations")
	}

	prev := cfg.InitialNoise
	for _, it := range iters {
		if it.Iter == 1 {
			prev = cfg.InitialNoise
		}
		if it.Noise < cfg.MinNoise || it.Noise > cfg.MaxNoise {
			t.Fatalf("noise %g outside [%g, %g]", it.Noise, cfg.MinNoise, cfg.MaxNoise)
		}

		want := math.Min(prev*2, cfg.MaxNoise)
		if it.CandidateReward > it.CurrentReward {
			want = math.Max(prev/2, cfg.MinNoise)
			if !it.Accepted {
				t.Errorf("restart %d iter %d: better candidate was rejected", it.Restart, it.Iter)
			}
		}
		if it.Noise != want {
			t.Errorf("restart %d iter %d: noise %g, expected %g", it.Restart, it.Iter, it.Noise, want)
		}
		if it.BestReward < it.CandidateReward {
			t.Errorf("restart %d iter %d: best %g below candidate %g", it.Restart, it.Iter, it.BestReward, it.CandidateReward)
		}
		prev = it.Noise
	}
}

func TestRunTracksOverallBest(t *testing.T) {
	res, err := New(newTargetEnv(40), smallConfig(), core.NewRand(8)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	best := math.Inf(-1)
	for _, rr := range res.Restarts {
		best = math.Max(best, rr.Reward)
	}
	if res.Reward != best {
		t.Errorf("overall reward %g, expected max over restarts %g", res.Reward, best)
	}

	// The reported policy reproduces its reward on the deterministic env.
	ep, err := Evaluate(newTargetEnv(40), res.Policy, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Reward != res.Reward {
		t.Errorf("replayed reward %g, expected %g", ep.Reward, res.Reward)
	}
}

func TestRunDeterministic(t *testing.T) {
	run := func() Result {
		res, err := New(newTargetEnv(40), smallConfig(), core.NewRand(77)).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	r1, r2 := run(), run()
	if r1.Reward != r2.Reward || r1.Evaluations != r2.Evaluations {
		t.Fatalf("runs differ: %g/%d vs %g/%d", r1.Reward, r1.Evaluations, r2.Reward, r2.Evaluations)
	}
	for i := range r1.Policy.Weights {
		if r1.Policy.Weights[i] != r2.Policy.Weights[i] {
			t.Errorf("weight %d differs: %g vs %g", i, r1.Policy.Weights[i], r2.Policy.Weights[i])
		}
	}
}

func TestInitialWeightsInRange(t *testing.T) {
	cfg := smallConfig()
	cfg.Restarts = 20
	cfg.InitRange = 0.5

	res, err := New(&endlessEnv{reward: 10, size: 4}, cfg, core.NewRand(4)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, rr := range res.Restarts {
		for _, w := range rr.Policy.Weights {
			if w < -0.5 || w > 0.5 {
				t.Errorf("restart %d: initial weight %g outside [-0.5, 0.5]", rr.Restart, w)
			}
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(newTargetEnv(10), smallConfig(), core.NewRand(1)).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, expected context.Canceled", err)
	}
	if len(res.Restarts) != 0 {
		t.Errorf("cancelled run should record no restarts, got %d", len(res.Restarts))
	}
}

func TestRunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	obs := ObserverFunc(func(it Iteration) error {
		calls++
		if calls == 5 {
			cancel()
		}
		return nil
	})

	res, err := New(newTargetEnv(10), smallConfig(), core.NewRand(1), WithObserver(obs)).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, expected context.Canceled", err)
	}
	if calls != 5 {
		t.Errorf("observer called %d times after cancel, expected 5", calls)
	}
	if len(res.Restarts) != 1 || len(res.Policy.Weights) != Dim {
		t.Errorf("expected the partial restart to be reported, got %+v", res)
	}
}

func TestObserverErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	obs := ObserverFunc(func(Iteration) error { return boom })

	_, err := New(newTargetEnv(10), smallConfig(), core.NewRand(1), WithObserver(obs)).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, expected the observer error", err)
	}
}

func TestRunOnFlappy(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := config.ApplyPreset(&cfg, config.PresetTiny); err != nil {
		t.Fatal(err)
	}
	env := flappy.New(cfg.Flappy, core.NewRand(2))

	res, err := New(env, cfg.Anneal, core.NewRand(2)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(res.Restarts) != cfg.Anneal.Restarts {
		t.Errorf("restarts = %d, expected %d", len(res.Restarts), cfg.Anneal.Restarts)
	}
	if res.Reward < -10 || res.Reward > cfg.Anneal.RewardCap {
		t.Errorf("best reward %g outside [-10, %g]", res.Reward, cfg.Anneal.RewardCap)
	}
}
