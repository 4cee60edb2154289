package config

import (
	_ "embed"
)

//go:embed defaults/flappyrl.yaml
var defaultYAML []byte

// DefaultConfig returns the classic world: a 400x800 screen, gravity 3,
// lift -20 and a search of 10 restarts cooling from 100000.
func DefaultConfig() Config {
	return Config{
		Seed: 0,
		Flappy: FlappyConfig{
			Screen: FlappyScreen{
				Width:  400,
				Height: 800,
			},
			Physics: FlappyPhysics{
				Gravity:     3,
				Lift:        -20,
				ScrollSpeed: 3,
			},
			Obstacles: FlappyObstacles{
				PipeWidth:     60,
				PipeHeight:    750,
				GapSize:       200,
				Margin:        50,
				SpawnFraction: 0.625,
			},
			Player: FlappyPlayer{
				X:      50,
				Width:  34,
				Height: 24,
			},
			Rewards: FlappyRewards{
				Pass:  10,
				Crash: -10,
			},
		},
		Anneal: AnnealConfig{
			Restarts:           10,
			InitialTemperature: 100000,
			CoolingRate:        0.995,
			MinTemperature:     1.0,
			InitialNoise:       0.1,
			MinNoise:           0.01,
			MaxNoise:           1000.0,
			InitRange:          1.0,
			RewardCap:          1000,
		},
		Replay: ReplayConfig{
			TickRate: 30,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
