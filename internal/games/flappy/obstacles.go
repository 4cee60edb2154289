package flappy

import (
	"math/rand/v2"

	"github.com/vovakirdan/flappyrl/internal/config"
)

// Pipe represents a vertical obstacle with a gap for the bird to pass through.
type Pipe struct {
	X      float64 // Horizontal position (left edge)
	GapY   float64 // Y position where the gap starts (top of gap)
	Passed bool    // Whether the bird has passed this pipe (for scoring)
}

// PipeManager handles spawning, movement, scoring and removal of pipes.
// Pipes are kept in creation order: older pipes sit further left, so X
// strictly increases along the slice.
type PipeManager struct {
	pipes []Pipe
	rng   *rand.Rand
	cfg   *config.FlappyConfig
}

// NewPipeManager creates a pipe manager drawing gap heights from rng.
func NewPipeManager(rng *rand.Rand, cfg *config.FlappyConfig) *PipeManager {
	return &PipeManager{
		pipes: make([]Pipe, 0, 8),
		rng:   rng,
		cfg:   cfg,
	}
}

// Reset clears all pipes and queues exactly one fresh pipe.
func (pm *PipeManager) Reset() {
	pm.pipes = pm.pipes[:0]
	pm.spawnPipe()
}

// spawnPipe creates a new pipe at the right edge of the screen.
func (pm *PipeManager) spawnPipe() {
	pm.pipes = append(pm.pipes, Pipe{
		X:    pm.cfg.Screen.Width,
		GapY: pm.gapY(),
	})
}

// gapY draws an integer gap height in [margin, height-gap-margin].
func (pm *PipeManager) gapY() float64 {
	lo, hi := config.GapRange(*pm.cfg)
	if hi <= lo {
		return float64(lo)
	}
	return float64(lo + pm.rng.IntN(hi-lo+1))
}

// SpawnIfDue appends a pipe once the newest one has scrolled left of the
// spawn threshold. Returns true if a pipe was added.
func (pm *PipeManager) SpawnIfDue() bool {
	threshold := pm.cfg.Screen.Width * pm.cfg.Obstacles.SpawnFraction
	if len(pm.pipes) == 0 || pm.pipes[len(pm.pipes)-1].X < threshold {
		pm.spawnPipe()
		return true
	}
	return false
}

// Advance moves every pipe left by the scroll speed.
func (pm *PipeManager) Advance() {
	for i := range pm.pipes {
		pm.pipes[i].X -= pm.cfg.Physics.ScrollSpeed
	}
}

// Blocks reports whether a pipe body occupies the bird's column at height y.
// Only pipes whose span strictly contains birdX are considered.
func (pm *PipeManager) Blocks(birdX, y float64) bool {
	w := pm.cfg.Obstacles.PipeWidth
	gap := pm.cfg.Obstacles.GapSize
	for _, p := range pm.pipes {
		if p.X < birdX && birdX < p.X+w {
			if y < p.GapY || y > p.GapY+gap {
				return true
			}
		}
	}
	return false
}

// MarkPassed flags every pipe whose trailing edge is left of birdX.
// Returns the number of pipes passed this tick.
func (pm *PipeManager) MarkPassed(birdX float64) int {
	w := pm.cfg.Obstacles.PipeWidth
	passed := 0
	for i := range pm.pipes {
		if !pm.pipes[i].Passed && pm.pipes[i].X+w < birdX {
			pm.pipes[i].Passed = true
			passed++
		}
	}
	return passed
}

// Prune removes pipes that have scrolled fully off the left edge.
func (pm *PipeManager) Prune() {
	w := pm.cfg.Obstacles.PipeWidth
	valid := pm.pipes[:0]
	for _, p := range pm.pipes {
		if p.X+w > 0 {
			valid = append(valid, p)
		}
	}
	pm.pipes = valid
}

// Next returns the oldest pipe the bird has not passed yet.
func (pm *PipeManager) Next() (Pipe, bool) {
	for _, p := range pm.pipes {
		if !p.Passed {
			return p, true
		}
	}
	return Pipe{}, false
}

// EnsureLookahead spawns a pipe when every queued pipe has been passed.
// Returns true if a pipe was added.
func (pm *PipeManager) EnsureLookahead() bool {
	if _, ok := pm.Next(); ok {
		return false
	}
	pm.spawnPipe()
	return true
}

// Pipes returns the current list of pipes.
func (pm *PipeManager) Pipes() []Pipe {
	return pm.pipes
}
