package policy

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// DefaultHidden is the hidden width used by the "network" policy.
const DefaultHidden = 6

// Info contains metadata about a registered policy.
type Info struct {
	ID    string
	Title string
}

// Factory creates a controller. rng seeds policies with random state.
type Factory func(rng *rand.Rand) flappy.Controller

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

func init() {
	Register("network", "Random feedforward network", func(rng *rand.Rand) flappy.Controller {
		return NewNetwork(rng, DefaultHidden)
	})
	Register("follower", "Gap follower", func(*rand.Rand) flappy.Controller {
		return Follower{}
	})
	Register("idle", "Never jump", func(*rand.Rand) flappy.Controller {
		return Constant(0)
	})
	Register("flap", "Always jump", func(*rand.Rand) flappy.Controller {
		return Constant(1)
	})
}

// Register adds a policy factory to the registry.
// Panics if a policy with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("policy: %q already registered", id))
	}
	factories[id] = f
	titles[id] = title
}

// List returns information about all registered policies, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a controller by its ID.
func Create(id string, rng *rand.Rand) (flappy.Controller, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("policy: unknown policy %q", id)
	}
	return f(rng), nil
}

// Exists checks if a policy with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
