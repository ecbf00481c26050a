package policies

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/mdp"
	"github.com/zeu5/maze-mdp/types"
	"github.com/zeu5/maze-mdp/util"
)

// Observable states expose the per tick observation of the maze
type Observable interface {
	Observation() mdp.Observation
}

// MDPPolicy plays with the value iteration agent. It does not learn between
// episodes: every action is planned from the current observation.
type MDPPolicy struct {
	layout mdp.Layout
	opts   []mdp.Option
	agent  *mdp.Agent
	logger *log.Logger

	// Err is the last planning error, it ends the episode
	Err error
}

var _ types.Policy = &MDPPolicy{}

// NewMDPPolicy registers a fresh agent on layout. Configuration errors such as
// an unknown maze are returned here.
func NewMDPPolicy(layout mdp.Layout, logger *log.Logger, opts ...mdp.Option) (*MDPPolicy, error) {
	p := &MDPPolicy{
		layout: layout,
		opts:   append(append([]mdp.Option{}, opts...), mdp.WithLogger(logger)),
		logger: logger,
	}
	if err := p.register(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *MDPPolicy) register() error {
	agent := mdp.NewAgent(p.opts...)
	if err := agent.RegisterInitialState(p.layout); err != nil {
		return err
	}
	p.agent = agent
	return nil
}

// Agent planning the moves
func (p *MDPPolicy) Agent() *mdp.Agent {
	return p.agent
}

func (p *MDPPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	s, ok := state.(Observable)
	if !ok {
		p.Err = fmt.Errorf("state %T carries no observation", state)
		p.logger.Error("cannot plan", "err", p.Err)
		return nil, false
	}
	d, err := p.agent.GetAction(s.Observation())
	if err != nil {
		p.Err = err
		p.logger.Error("planning failed", "step", step, "err", err)
		return nil, false
	}
	for _, a := range actions {
		if a.Hash() == d.Hash() {
			return a, true
		}
	}
	// Stop is always legal for the agent but may not be offered
	for _, a := range actions {
		if a.Hash() == maze.Stop.Hash() {
			return a, true
		}
	}
	return nil, false
}

func (p *MDPPolicy) Update(_ int, _ types.State, _ types.Action, _ types.State) {}

func (p *MDPPolicy) UpdateIteration(episode int, trace *types.Trace) {
	p.logger.Debug("episode done", "episode", episode, "steps", trace.Len())
}

// Reset registers a new agent on the same layout, dropping warm start state
func (p *MDPPolicy) Reset() {
	if err := p.register(); err != nil {
		p.logger.Error("re-registering maze", "err", err)
	}
}

type recordedCell struct {
	Position maze.Position `json:"position"`
	Utility  float64       `json:"utility"`
}

// Record writes the utilities of the last decision
func (p *MDPPolicy) Record(path string) {
	utilities := p.agent.Utilities()
	cells := make([]maze.Position, 0, len(utilities))
	for c := range utilities {
		cells = append(cells, c)
	}
	maze.SortPositions(cells)
	out := make([]recordedCell, len(cells))
	for i, c := range cells {
		out[i] = recordedCell{Position: c, Utility: utilities[c]}
	}
	if err := util.WriteJSON(path+".json", out); err != nil {
		p.logger.Error("recording utilities", "err", err)
	}
}
