// Package registry provides a global registry for environment factories.
// Environments register themselves in init() functions, allowing the CLI
// and the SSH server to look them up by ID without hardcoded dependencies.
package registry

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/vovakirdan/flappyrl/internal/config"
	"github.com/vovakirdan/flappyrl/internal/core"
)

// Env is the interface all environments implement.
// Environments contain pure logic with no terminal dependencies; the
// platform handles timing, input and display.
type Env interface {
	// ID returns a unique identifier (e.g. "flappy").
	// Used for CLI commands and storage keys.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset starts a new episode and returns its first observation.
	Reset() (core.Observation, error)

	// Step advances the episode by one tick with a discrete action.
	Step(a core.Action) (core.StepResult, error)

	// Render draws the current state into the provided screen buffer.
	Render(dst *core.Screen)

	// State returns the current episode bookkeeping.
	State() core.GameState

	// Close releases any held resources. Safe to call more than once.
	Close() error
}

// EnvInfo contains metadata about a registered environment.
type EnvInfo struct {
	ID    string
	Title string
}

// Factory creates a new environment from the configuration and the
// generator that drives its randomness.
type Factory func(cfg config.Config, rng *rand.Rand) (Env, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an environment factory to the registry.
// Typically called from an environment's init() function.
// Panics if an environment with the same ID is already registered or if
// the factory cannot build an instance from the default config.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: env %q already registered", id))
	}

	// Get title by creating a temporary instance
	env, err := f(config.DefaultConfig(), core.NewRand(1))
	if err != nil {
		panic(fmt.Sprintf("registry: env %q cannot be built from defaults: %v", id, err))
	}
	defer env.Close()

	factories[id] = f
	titles[id] = env.Title()
}

// List returns information about all registered environments, sorted by ID.
func List() []EnvInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EnvInfo, 0, len(factories))
	for id := range factories {
		result = append(result, EnvInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new environment by its ID.
func Create(id string, cfg config.Config, rng *rand.Rand) (Env, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown env %q", id)
	}

	env, err := f(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("registry: cannot create env %q: %w", id, err)
	}
	return env, nil
}

// Exists checks if an environment with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
