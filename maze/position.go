package maze

import "fmt"

// Position of a cell in the maze. X grows to the east, Y grows to the north.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Add returns the position offset by the vector v
func (p Position) Add(v Position) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// Move returns the neighbour of p in direction d. Stop returns p.
func (p Position) Move(d Direction) Position {
	return p.Add(d.Vector())
}

// Manhattan distance between two positions
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction of movement on the grid
type Direction string

const (
	North Direction = "North"
	South Direction = "South"
	East  Direction = "East"
	West  Direction = "West"
	Stop  Direction = "Stop"
)

var (
	// Cardinal directions in the order the solver evaluates them
	Cardinals = []Direction{South, North, West, East}

	vectors = map[Direction]Position{
		North: {X: 0, Y: 1},
		South: {X: 0, Y: -1},
		East:  {X: 1, Y: 0},
		West:  {X: -1, Y: 0},
		Stop:  {X: 0, Y: 0},
	}
)

// ParseDirection accepts the direction names used on the wire
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if _, ok := vectors[d]; !ok {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// Vector is the unit offset of the direction
func (d Direction) Vector() Position {
	return vectors[d]
}

// Perpendicular returns the two directions an agent can drift to when it
// attempts to move in d. North and South drift West/East, East and West drift
// North/South. Stop has no perpendiculars.
func (d Direction) Perpendicular() (Direction, Direction, bool) {
	switch {
	case d == North || d == South:
		return West, East, true
	case d == East || d == West:
		return North, South, true
	}
	return "", "", false
}

// Reverse of the direction, Stop is its own reverse
func (d Direction) Reverse() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return Stop
}

// Hash implements the action interface of the experiment harness
func (d Direction) Hash() string {
	return string(d)
}
