package server

import (
	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/mdp"
)

// CreateGameRequest describes the maze of a new game. Either Layout holds the
// maze in text form, Name names a builtin layout, or Corners and Walls are
// given directly.
type CreateGameRequest struct {
	Name    string          `json:"name"`
	Layout  string          `json:"layout"`
	Corners []maze.Position `json:"corners"`
	Walls   []maze.Position `json:"walls"`
	// Profile forces a tunable profile instead of matching the maze
	Profile string `json:"profile"`
}

func (r CreateGameRequest) layout() (mdp.Layout, error) {
	switch {
	case r.Layout != "":
		l, err := maze.ParseLayout(r.Name, r.Layout)
		if err != nil {
			return mdp.Layout{}, err
		}
		return mdp.LayoutOf(l), nil
	case len(r.Corners) > 0:
		return mdp.Layout{Corners: r.Corners, Walls: r.Walls}, nil
	case r.Name != "":
		l, err := maze.BuiltinLayout(r.Name)
		if err != nil {
			return mdp.Layout{}, err
		}
		return mdp.LayoutOf(l), nil
	}
	return mdp.Layout{}, maze.ErrDegenerateMaze
}

type CreateGameResponse struct {
	ID      string      `json:"id"`
	Profile mdp.Profile `json:"profile"`
}

type ActionResponse struct {
	Action   maze.Direction `json:"action"`
	Sweeps   int            `json:"sweeps"`
	Residual float64        `json:"residual"`
}
