// Package flappy implements a Flappy Bird-style environment.
// The agent controls a bird that must navigate through gaps in vertical
// pipes; every tick it either idles or flaps and receives a reward.
package flappy

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vovakirdan/flappyrl/internal/config"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/registry"
)

// ObservationSize is the width of the observation vector:
// bird y, bird velocity, distance to the next pipe, bottom of its gap.
const ObservationSize = 4

// Visual characters for rendering
const (
	BirdChar      = '●'
	BirdBeakChar  = '▶'
	PipeChar      = '█'
	PipeCapTop    = '▄'
	PipeCapBottom = '▀'
	GroundChar    = '═'
)

// Bird is the agent.
type Bird struct {
	X        float64 // Fixed horizontal position (left edge)
	Y        float64 // Vertical position (top of hitbox, 0 at the top)
	Velocity float64 // Vertical velocity, positive = down
}

// Env implements the flappy environment.
type Env struct {
	cfg        config.FlappyConfig
	bird       Bird
	pipes      *PipeManager
	score      int  // pipes passed this episode
	passes     int  // pipes passed since New, survives Reset
	tick       int  // ticks since Reset
	terminated bool // whether the episode has ended
	closed     bool
}

// New creates an environment. The generator is only used for gap heights;
// pass the same seeded generator to get reproducible obstacle courses.
func New(cfg config.FlappyConfig, rng *rand.Rand) *Env {
	if rng == nil {
		rng = core.NewRand(0)
	}
	e := &Env{cfg: cfg}
	e.pipes = NewPipeManager(rng, &e.cfg)
	return e
}

// ID returns the unique identifier for this environment.
func (e *Env) ID() string {
	return "flappy"
}

// Title returns the display name for this environment.
func (e *Env) Title() string {
	return "Flappy Bird"
}

// Config returns the world constants the environment runs with.
func (e *Env) Config() config.FlappyConfig {
	return e.cfg
}

// Reset starts a new episode and returns the initial observation.
func (e *Env) Reset() (core.Observation, error) {
	if e.closed {
		return nil, ErrClosed
	}

	e.bird = Bird{
		X:        e.cfg.Player.X,
		Y:        math.Floor(e.cfg.Screen.Height / 2),
		Velocity: 0,
	}
	e.pipes.Reset()
	e.score = 0
	e.tick = 0
	e.terminated = false

	return e.observe()
}

// Step advances the episode by one tick.
func (e *Env) Step(a core.Action) (core.StepResult, error) {
	switch {
	case e.closed:
		return core.StepResult{}, ErrClosed
	case e.terminated:
		return core.StepResult{}, ErrEpisodeOver
	case !a.Valid():
		return core.StepResult{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}

	e.tick++

	// A flap overwrites velocity; gravity still applies this tick.
	if a == core.ActionFlap {
		e.bird.Velocity = e.cfg.Physics.Lift
	}
	e.bird.Velocity += e.cfg.Physics.Gravity
	e.bird.Y += e.bird.Velocity

	e.pipes.SpawnIfDue()
	e.pipes.Advance()

	reward := 0.0
	if e.collides() {
		e.terminated = true
		reward = e.cfg.Rewards.Crash
	} else if passed := e.pipes.MarkPassed(e.bird.X); passed > 0 {
		// Simultaneous passes count once towards the reward.
		e.score += passed
		e.passes += passed
		reward = e.cfg.Rewards.Pass
	}

	e.pipes.Prune()
	e.pipes.EnsureLookahead()

	obs, err := e.observe()
	if err != nil {
		return core.StepResult{}, err
	}

	return core.StepResult{
		Observation: obs,
		Reward:      reward,
		Terminated:  e.terminated,
		Truncated:   false,
		Info:        e.State(),
	}, nil
}

// collides reports ground, ceiling and pipe collisions.
func (e *Env) collides() bool {
	if e.bird.Y < 0 || e.bird.Y+e.cfg.Player.Height > e.cfg.Screen.Height {
		return true
	}
	return e.pipes.Blocks(e.bird.X, e.bird.Y)
}

// observe builds the observation from the nearest un-passed pipe.
func (e *Env) observe() (core.Observation, error) {
	next, ok := e.pipes.Next()
	if !ok {
		return nil, ErrNoPendingPipe
	}
	return core.Observation{
		e.bird.Y,
		e.bird.Velocity,
		next.X - e.bird.X,
		next.GapY + e.cfg.Obstacles.GapSize,
	}, nil
}

// Bird returns the agent state.
func (e *Env) Bird() Bird {
	return e.bird
}

// Pipes returns the active pipes in creation order.
func (e *Env) Pipes() []Pipe {
	return e.pipes.Pipes()
}

// State returns the current episode bookkeeping.
func (e *Env) State() core.GameState {
	return core.GameState{
		Score:       e.score,
		PipesPassed: e.passes,
		Tick:        e.tick,
		GameOver:    e.terminated,
	}
}

// Close releases the environment. It is safe to call more than once.
func (e *Env) Close() error {
	e.closed = true
	return nil
}

// Register the environment with the registry
func init() {
	registry.Register("flappy", func(cfg config.Config, rng *rand.Rand) (registry.Env, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return New(cfg.Flappy, rng), nil
	})
}
