package core

// RuntimeConfig contains configuration passed to the terminal front ends.
// The environment itself is configured through internal/config; this only
// describes the viewport and pacing of a rendered session.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Rendered ticks per second (default 30)
	Seed     int64 // RNG seed for reproducible episodes
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// Observation is the fixed-width state vector an environment hands to a policy.
type Observation []float64

// Clone returns an independent copy of the observation.
func (o Observation) Clone() Observation {
	if o == nil {
		return nil
	}
	out := make(Observation, len(o))
	copy(out, o)
	return out
}

// GameState represents the bookkeeping of the current episode.
// It is returned as the info part of every step.
type GameState struct {
	Score       int  // Pipes passed in this episode
	PipesPassed int  // Pipes passed since the environment was created
	Tick        int  // Ticks since the last reset
	GameOver    bool // Whether the episode has terminated
}

// StepResult is returned by an environment after each simulation tick.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        GameState
}
