package maze

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidLayout = errors.New("invalid layout")

// Layout is a parsed maze description in the classic text format:
//
//	% wall, . food, o capsule, P agent, G ghost, space empty
//
// The first line of text is the top row of the maze.
type Layout struct {
	Name     string
	Width    int
	Height   int
	Walls    []Position
	Food     []Position
	Capsules []Position
	Agent    Position
	Ghosts   []Position
}

// ParseLayout reads a layout from its text form
func ParseLayout(name, text string) (*Layout, error) {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidLayout, name)
	}

	l := &Layout{
		Name:   name,
		Height: len(lines),
		Width:  len(lines[0]),
	}
	agentFound := false
	for row, line := range lines {
		if len(line) > l.Width {
			return nil, fmt.Errorf("%w: %s row %d is wider than the first row", ErrInvalidLayout, name, row)
		}
		// pad short rows, trailing spaces were trimmed above
		line += strings.Repeat(" ", l.Width-len(line))
		y := l.Height - 1 - row
		for x, ch := range line {
			p := Position{X: x, Y: y}
			switch ch {
			case '%':
				l.Walls = append(l.Walls, p)
			case '.':
				l.Food = append(l.Food, p)
			case 'o':
				l.Capsules = append(l.Capsules, p)
			case 'P':
				if agentFound {
					return nil, fmt.Errorf("%w: %s has more than one agent", ErrInvalidLayout, name)
				}
				l.Agent = p
				agentFound = true
			case 'G':
				l.Ghosts = append(l.Ghosts, p)
			case ' ':
			default:
				return nil, fmt.Errorf("%w: %s unknown symbol %q at %s", ErrInvalidLayout, name, ch, p)
			}
		}
	}
	if !agentFound {
		return nil, fmt.Errorf("%w: %s has no agent", ErrInvalidLayout, name)
	}
	SortPositions(l.Walls)
	SortPositions(l.Food)
	SortPositions(l.Capsules)
	return l, nil
}

// Corners of the layout bounding box
func (l *Layout) Corners() []Position {
	return []Position{
		{X: 0, Y: 0},
		{X: 0, Y: l.Height - 1},
		{X: l.Width - 1, Y: 0},
		{X: l.Width - 1, Y: l.Height - 1},
	}
}

// IsWall reports whether p is a wall or outside the layout
func (l *Layout) IsWall(p Position) bool {
	if p.X < 0 || p.X >= l.Width || p.Y < 0 || p.Y >= l.Height {
		return true
	}
	i := sort.Search(len(l.Walls), func(i int) bool { return !less(l.Walls[i], p) })
	return i < len(l.Walls) && l.Walls[i] == p
}

func less(a, b Position) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// SortPositions orders positions column by column, like the traversable cells
func SortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

const smallGrid = `
%%%%%%%
%    .%
% %%% %
% %G  %
% %%% %
%.   P%
%%%%%%%
`

const mediumClassic = `
%%%%%%%%%%%%%%%%%%%%
%o...%........%....%
%.%%.%.%%%%%%.%.%%.%
%.%..............%.%
%.%.%%.%%  %%.%%.%.%
%......%G  G%......%
%.%.%%.%%%%%%.%%.%.%
%.%..............%.%
%.%%.%.%%%%%%.%.%%.%
%....%...P....%...o%
%%%%%%%%%%%%%%%%%%%%
`

var builtin = map[string]string{
	"smallGrid":     smallGrid,
	"mediumClassic": mediumClassic,
}

// BuiltinLayout returns one of the layouts shipped with the module
func BuiltinLayout(name string) (*Layout, error) {
	text, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: no builtin layout named %q", ErrInvalidLayout, name)
	}
	return ParseLayout(name, text)
}

// BuiltinLayouts lists the names of the shipped layouts
func BuiltinLayouts() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
