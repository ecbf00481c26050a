package types

import "fmt"

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment Environment
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// RunEpisode runs a single episode, filling the trace and the outcome of eCtx
func (a *Agent) RunEpisode(eCtx *EpisodeContext) {
	state, err := a.environment.Reset(eCtx)
	if err != nil {
		eCtx.SetError(fmt.Errorf("reset: %w", err))
		return
	}
	trace := eCtx.Trace
	actions := state.Actions()

	for i := 0; i < a.config.Horizon; i++ {
		select {
		case <-eCtx.Context.Done():
			return
		default:
		}
		if len(actions) == 0 {
			eCtx.Terminal = true
			break
		}
		nextAction, ok := a.policy.NextAction(i, state, actions)
		if !ok {
			eCtx.Terminal = true
			break
		}
		nextState, err := a.environment.Step(nextAction, NewStepContext(eCtx, i))
		if err != nil {
			eCtx.SetError(fmt.Errorf("step %d: %w", i, err))
			return
		}
		a.policy.Update(i, state, nextAction, nextState)

		trace.Append(i, state, nextAction, nextState)
		eCtx.Timesteps++
		state = nextState
		actions = nextState.Actions()
	}
	if !eCtx.Terminal {
		if len(actions) == 0 {
			eCtx.Terminal = true
		} else {
			eCtx.HorizonEnd = true
		}
	}
	a.policy.UpdateIteration(eCtx.Episode, trace)
}
