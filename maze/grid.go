package maze

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDegenerateMaze = errors.New("degenerate maze")

// Marker of a single cell in the overlay
type Marker uint8

const (
	Empty Marker = iota
	Wall
	Consumable
	Hazard
)

func (m Marker) Rune() rune {
	switch m {
	case Wall:
		return '%'
	case Consumable:
		return '*'
	case Hazard:
		return '@'
	}
	return ' '
}

// CellSet is an ordered set of positions. Cells enumerate column by column:
// x ascending, then y ascending.
type CellSet struct {
	cells []Position
	index map[Position]int
}

func newCellSet(capacity int) CellSet {
	return CellSet{
		cells: make([]Position, 0, capacity),
		index: make(map[Position]int, capacity),
	}
}

func (c *CellSet) add(p Position) {
	if _, ok := c.index[p]; ok {
		return
	}
	c.index[p] = len(c.cells)
	c.cells = append(c.cells, p)
}

// Contains reports whether p is part of the set
func (c CellSet) Contains(p Position) bool {
	_, ok := c.index[p]
	return ok
}

// Index of p in the enumeration order, -1 if absent
func (c CellSet) Index(p Position) int {
	if i, ok := c.index[p]; ok {
		return i
	}
	return -1
}

func (c CellSet) Len() int {
	return len(c.cells)
}

// Cells returns a copy of the positions in enumeration order
func (c CellSet) Cells() []Position {
	out := make([]Position, len(c.cells))
	copy(out, c.cells)
	return out
}

// Grid is the marker overlay of a maze. Walls are fixed at creation, the
// consumable and hazard markers are refreshed every tick.
type Grid struct {
	width   int
	height  int
	markers []Marker

	traversable CellSet
}

// Bounds is the width and height spanned by the maze corners. Both are zero
// or negative when the corners are degenerate.
func Bounds(corners []Position) (width, height int) {
	width, height = -1, -1
	for _, c := range corners {
		if c.X > width {
			width = c.X
		}
		if c.Y > height {
			height = c.Y
		}
	}
	return width + 1, height + 1
}

// NewGrid sizes the overlay from the maze corners and marks the walls. A wall
// outside the corners' bounds is an error.
func NewGrid(corners, walls []Position) (*Grid, error) {
	width, height := Bounds(corners)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %d corners give %dx%d", ErrDegenerateMaze, len(corners), width, height)
	}

	g := &Grid{
		width:   width,
		height:  height,
		markers: make([]Marker, width*height),
	}
	for _, w := range walls {
		if !g.inBounds(w) {
			return nil, fmt.Errorf("%w: wall %s outside %dx%d", ErrDegenerateMaze, w, width, height)
		}
		g.markers[g.offset(w)] = Wall
	}

	g.traversable = newCellSet(width * height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if g.markers[g.offset(Position{X: x, Y: y})] != Wall {
				g.traversable.add(Position{X: x, Y: y})
			}
		}
	}
	return g, nil
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) inBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *Grid) offset(p Position) int {
	return p.Y*g.width + p.X
}

// Marker at (x, y). Out of bounds cells read as walls.
func (g *Grid) Marker(x, y int) Marker {
	p := Position{X: x, Y: y}
	if !g.inBounds(p) {
		return Wall
	}
	return g.markers[g.offset(p)]
}

// RefreshConsumables clears every non wall marker and marks the consumables
func (g *Grid) RefreshConsumables(consumables []Position) {
	for i, m := range g.markers {
		if m != Wall {
			g.markers[i] = Empty
		}
	}
	g.mark(consumables, Consumable)
}

// RefreshHazards marks the hazards on top of the consumables
func (g *Grid) RefreshHazards(hazards []Position) {
	g.mark(hazards, Hazard)
}

func (g *Grid) mark(positions []Position, m Marker) {
	for _, p := range positions {
		if !g.inBounds(p) {
			continue
		}
		i := g.offset(p)
		if g.markers[i] == Wall {
			continue
		}
		g.markers[i] = m
	}
}

// TraversableCells is the set of non wall cells. It does not change once the
// grid is created.
func (g *Grid) TraversableCells() CellSet {
	return g.traversable
}

// String renders the overlay with the top row first
func (g *Grid) String() string {
	var b strings.Builder
	for y := g.height - 1; y >= 0; y-- {
		for x := 0; x < g.width; x++ {
			b.WriteRune(g.markers[g.offset(Position{X: x, Y: y})].Rune())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
