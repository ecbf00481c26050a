package mdp

import "github.com/zeu5/maze-mdp/maze"

// Hazard observed on the maze. A hazard with a positive ScaredTimer is
// neutralised and harmless for that many ticks.
type Hazard struct {
	Position    maze.Position `json:"position"`
	ScaredTimer int           `json:"scared_timer"`
}

// Active hazards contribute a penalty to the reward map
func (h Hazard) Active() bool {
	return h.ScaredTimer == 0
}

// Layout is the static part of the maze, supplied once per game
type Layout struct {
	Corners []maze.Position `json:"corners"`
	Walls   []maze.Position `json:"walls"`
}

// LayoutOf extracts the static part of a parsed maze layout
func LayoutOf(l *maze.Layout) Layout {
	return Layout{Corners: l.Corners(), Walls: l.Walls}
}

// Observation is the dynamic view of the maze at one decision tick
type Observation struct {
	Position maze.Position    `json:"position"`
	Legal    []maze.Direction `json:"legal"`
	Food     []maze.Position  `json:"food"`
	Ghosts   []Hazard         `json:"ghosts"`
}

func (o Observation) hazardPositions() []maze.Position {
	positions := make([]maze.Position, len(o.Ghosts))
	for i, g := range o.Ghosts {
		positions[i] = g.Position
	}
	return positions
}

// Values maps traversable cells to a reward or utility
type Values map[maze.Position]float64

func (v Values) clone() Values {
	c := make(Values, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}
