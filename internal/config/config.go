// Package config provides YAML-based configuration loading for the flappy
// environment, the annealing search and the rendered replay.
package config

// Config is the root configuration structure.
type Config struct {
	Seed   int64        `yaml:"seed"` // 0 = derive from the clock
	Flappy FlappyConfig `yaml:"flappy"`
	Anneal AnnealConfig `yaml:"anneal"`
	Replay ReplayConfig `yaml:"replay"`
}

// FlappyConfig contains all world constants of the flappy environment.
type FlappyConfig struct {
	Screen    FlappyScreen    `yaml:"screen"`
	Physics   FlappyPhysics   `yaml:"physics"`
	Obstacles FlappyObstacles `yaml:"obstacles"`
	Player    FlappyPlayer    `yaml:"player"`
	Rewards   FlappyRewards   `yaml:"rewards"`
}

// FlappyScreen defines the world size in world units (y grows downwards).
type FlappyScreen struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FlappyPhysics defines per-tick physics parameters.
type FlappyPhysics struct {
	Gravity     float64 `yaml:"gravity"`      // added to velocity every tick
	Lift        float64 `yaml:"lift"`         // velocity after a flap (negative = up)
	ScrollSpeed float64 `yaml:"scroll_speed"` // leftward pipe movement per tick
}

// FlappyObstacles defines pipe parameters.
type FlappyObstacles struct {
	PipeWidth     float64 `yaml:"pipe_width"`
	PipeHeight    float64 `yaml:"pipe_height"`    // sprite height, presentation only
	GapSize       float64 `yaml:"gap_size"`
	Margin        float64 `yaml:"margin"`         // minimum distance of the gap from either edge
	SpawnFraction float64 `yaml:"spawn_fraction"` // spawn when the newest pipe is left of width*fraction
}

// FlappyPlayer defines the bird.
type FlappyPlayer struct {
	X      float64 `yaml:"x"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FlappyRewards defines the per-tick reward signal.
type FlappyRewards struct {
	Pass  float64 `yaml:"pass"`
	Crash float64 `yaml:"crash"`
}

// AnnealConfig defines the simulated-annealing search.
type AnnealConfig struct {
	Restarts           int     `yaml:"restarts"`
	InitialTemperature float64 `yaml:"initial_temperature"`
	CoolingRate        float64 `yaml:"cooling_rate"`
	MinTemperature     float64 `yaml:"min_temperature"`
	InitialNoise       float64 `yaml:"initial_noise"`
	MinNoise           float64 `yaml:"min_noise"`
	MaxNoise           float64 `yaml:"max_noise"`
	InitRange          float64 `yaml:"init_range"` // starting weights are uniform in [-r, r]
	RewardCap          float64 `yaml:"reward_cap"`
}

// ReplayConfig defines the rendered replay.
type ReplayConfig struct {
	TickRate int `yaml:"tick_rate"`
}
