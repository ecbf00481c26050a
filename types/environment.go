package types

// Environment the agent acts in. Reset is called at the start of each
// episode, Step once per timestep.
type Environment interface {
	// Reset called at the start of each episode
	Reset(*EpisodeContext) (State, error)
	// Step function with context to cancel it
	Step(Action, *StepContext) (State, error)
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state, empty when the episode is over
	Actions() []Action
}

// And Action that RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

type StateAbstractor func(State) string

// DefaultStateAbstractor uses the state hash as is
func DefaultStateAbstractor() StateAbstractor {
	return func(s State) string {
		return s.Hash()
	}
}
