package config

import "fmt"

// Preset names a world/search combination.
type Preset string

const (
	PresetClassic Preset = "classic" // the 400x800 world with the full search
	PresetTiny    Preset = "tiny"    // a small world and a short search for quick runs
)

// Presets lists the known preset names.
func Presets() []Preset {
	return []Preset{PresetClassic, PresetTiny}
}

// ApplyPreset modifies the config based on a preset.
// An empty preset leaves the config unchanged.
func ApplyPreset(cfg *Config, preset Preset) error {
	switch preset {
	case "":
		return nil
	case PresetClassic:
		seed := cfg.Seed
		*cfg = DefaultConfig()
		cfg.Seed = seed
	case PresetTiny:
		cfg.Flappy = FlappyConfig{
			Screen:    FlappyScreen{Width: 120, Height: 160},
			Physics:   FlappyPhysics{Gravity: 1, Lift: -6, ScrollSpeed: 2},
			Obstacles: FlappyObstacles{PipeWidth: 16, PipeHeight: 150, GapSize: 60, Margin: 10, SpawnFraction: 0.625},
			Player:    FlappyPlayer{X: 20, Width: 8, Height: 6},
			Rewards:   cfg.Flappy.Rewards,
		}
		cfg.Anneal.Restarts = 3
		cfg.Anneal.InitialTemperature = 1000
		cfg.Anneal.CoolingRate = 0.95
		cfg.Anneal.RewardCap = 200
	default:
		return fmt.Errorf("unknown preset %q (want one of %v)", preset, Presets())
	}
	return nil
}
