package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate reports every invalid field of the configuration.
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s", field, fmt.Sprintf(format, args...)))
	}

	f := c.Flappy
	if f.Screen.Width <= 0 || f.Screen.Height <= 0 {
		bad("flappy.screen", "dimensions must be positive, got %gx%g", f.Screen.Width, f.Screen.Height)
	}
	if f.Physics.Gravity <= 0 {
		bad("flappy.physics.gravity", "must be positive so that idle episodes end, got %g", f.Physics.Gravity)
	}
	if f.Physics.ScrollSpeed <= 0 {
		bad("flappy.physics.scroll_speed", "must be positive, got %g", f.Physics.ScrollSpeed)
	}
	if f.Obstacles.PipeWidth <= 0 {
		bad("flappy.obstacles.pipe_width", "must be positive, got %g", f.Obstacles.PipeWidth)
	}
	if f.Obstacles.GapSize <= 0 {
		bad("flappy.obstacles.gap_size", "must be positive, got %g", f.Obstacles.GapSize)
	}
	if f.Obstacles.Margin < 0 {
		bad("flappy.obstacles.margin", "must not be negative, got %g", f.Obstacles.Margin)
	}
	if lo, hi := GapRange(f); hi < lo {
		bad("flappy.obstacles", "gap %g with margin %g does not fit a screen of height %g",
			f.Obstacles.GapSize, f.Obstacles.Margin, f.Screen.Height)
	}
	if f.Obstacles.SpawnFraction <= 0 || f.Obstacles.SpawnFraction > 1 {
		bad("flappy.obstacles.spawn_fraction", "must be in (0, 1], got %g", f.Obstacles.SpawnFraction)
	}
	if f.Player.Width <= 0 || f.Player.Height <= 0 {
		bad("flappy.player", "dimensions must be positive, got %gx%g", f.Player.Width, f.Player.Height)
	}
	if f.Player.X < 0 || f.Player.X >= f.Screen.Width {
		bad("flappy.player.x", "must be inside the screen, got %g", f.Player.X)
	}

	a := c.Anneal
	if a.Restarts < 1 {
		bad("anneal.restarts", "must be at least 1, got %d", a.Restarts)
	}
	if a.CoolingRate <= 0 || a.CoolingRate >= 1 {
		bad("anneal.cooling_rate", "must be in (0, 1), got %g", a.CoolingRate)
	}
	if a.MinTemperature <= 0 {
		bad("anneal.min_temperature", "must be positive, got %g", a.MinTemperature)
	}
	if a.InitialTemperature <= a.MinTemperature {
		bad("anneal.initial_temperature", "must exceed min_temperature %g, got %g", a.MinTemperature, a.InitialTemperature)
	}
	if a.MinNoise <= 0 || a.MaxNoise < a.MinNoise {
		bad("anneal.noise", "need 0 < min_noise <= max_noise, got %g and %g", a.MinNoise, a.MaxNoise)
	}
	if a.InitialNoise < a.MinNoise || a.InitialNoise > a.MaxNoise {
		bad("anneal.initial_noise", "must lie in [%g, %g], got %g", a.MinNoise, a.MaxNoise, a.InitialNoise)
	}
	if a.InitRange <= 0 {
		bad("anneal.init_range", "must be positive, got %g", a.InitRange)
	}
	if a.RewardCap <= 0 {
		bad("anneal.reward_cap", "must be positive, got %g", a.RewardCap)
	}

	if c.Replay.TickRate <= 0 {
		bad("replay.tick_rate", "must be positive, got %d", c.Replay.TickRate)
	}

	return errors.Join(errs...)
}

// GapRange returns the inclusive integer range of gap heights a pipe can draw.
func GapRange(f FlappyConfig) (lo, hi int) {
	lo = int(math.Ceil(f.Obstacles.Margin))
	hi = int(math.Floor(f.Screen.Height - f.Obstacles.GapSize - f.Obstacles.Margin))
	return lo, hi
}
