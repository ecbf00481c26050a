package pacman

import (
	"fmt"
	"strings"

	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/mdp"
	"github.com/zeu5/maze-mdp/types"
)

// State is a snapshot of a game after a tick
type State struct {
	Obs   mdp.Observation
	Score int
	Ticks int
	Over  bool
	Won   bool
}

var _ types.State = &State{}

func (s *State) Hash() string {
	ghosts := make([]string, len(s.Obs.Ghosts))
	for i, g := range s.Obs.Ghosts {
		ghosts[i] = g.Position.String()
	}
	return fmt.Sprintf("%s food:%d ghosts:[%s]", s.Obs.Position, len(s.Obs.Food), strings.Join(ghosts, " "))
}

// Observation the agent plans on
func (s *State) Observation() mdp.Observation {
	return s.Obs
}

func (s *State) Actions() []types.Action {
	if s.Over {
		return nil
	}
	actions := make([]types.Action, len(s.Obs.Legal))
	for i, d := range s.Obs.Legal {
		actions[i] = d
	}
	return actions
}

// PositionAbstractor keeps only the agent position of a state
func PositionAbstractor() types.StateAbstractor {
	return func(s types.State) string {
		return s.(*State).Obs.Position.String()
	}
}

// Environment plays one game per episode on a fixed layout
type Environment struct {
	layout *maze.Layout
	seed   uint64
	game   *Game
}

var _ types.Environment = &Environment{}

func NewEnvironment(layout *maze.Layout, seed uint64) *Environment {
	return &Environment{
		layout: layout,
		seed:   seed,
	}
}

func (e *Environment) Layout() *maze.Layout {
	return e.layout
}

// Game in progress, nil before the first Reset
func (e *Environment) Game() *Game {
	return e.game
}

// Reset starts a new game, seeded by the base seed, the run and the episode
func (e *Environment) Reset(eCtx *types.EpisodeContext) (types.State, error) {
	seed := e.seed
	if eCtx != nil {
		seed += uint64(eCtx.Run)*1_000_003 + uint64(eCtx.Episode)
	}
	e.game = NewGame(e.layout, seed)
	return e.state(), nil
}

func (e *Environment) Step(a types.Action, _ *types.StepContext) (types.State, error) {
	if e.game == nil {
		return nil, fmt.Errorf("step before reset")
	}
	d, err := maze.ParseDirection(a.Hash())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	if err := e.game.Step(d); err != nil {
		return nil, err
	}
	return e.state(), nil
}

func (e *Environment) state() *State {
	return &State{
		Obs:   e.game.Observation(),
		Score: e.game.Score(),
		Ticks: e.game.Ticks(),
		Over:  e.game.Over(),
		Won:   e.game.Won(),
	}
}
