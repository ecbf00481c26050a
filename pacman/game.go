// Package pacman hosts games on a maze: it moves the agent and the ghosts,
// keeps the score and produces the observations the MDP agent plans on.
package pacman

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/mdp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

const (
	TimePenalty = 1
	FoodScore   = 10
	GhostScore  = 200
	WinScore    = 500
	LoseScore   = 500
	// ticks a ghost stays scared after a capsule is eaten
	ScaredTime = 40
)

// actions are offered in this order, Stop last
var moveOrder = []maze.Direction{maze.North, maze.South, maze.East, maze.West}

type Ghost struct {
	Start       maze.Position  `json:"start"`
	Position    maze.Position  `json:"position"`
	Direction   maze.Direction `json:"direction"`
	ScaredTimer int            `json:"scared_timer"`
}

// Game is a single game on a layout. It is not safe for concurrent use.
type Game struct {
	layout *maze.Layout
	src    rand.Source

	agent    maze.Position
	food     map[maze.Position]bool
	capsules map[maze.Position]bool
	ghosts   []Ghost

	score int
	ticks int
	over  bool
	won   bool
}

// NewGame starts a game on layout. Ghost moves are drawn from a source seeded
// with seed, so equal seeds replay equal games.
func NewGame(layout *maze.Layout, seed uint64) *Game {
	g := &Game{
		layout:   layout,
		src:      rand.NewSource(seed),
		agent:    layout.Agent,
		food:     make(map[maze.Position]bool, len(layout.Food)),
		capsules: make(map[maze.Position]bool, len(layout.Capsules)),
		ghosts:   make([]Ghost, len(layout.Ghosts)),
	}
	for _, f := range layout.Food {
		g.food[f] = true
	}
	for _, c := range layout.Capsules {
		g.capsules[c] = true
	}
	for i, p := range layout.Ghosts {
		g.ghosts[i] = Ghost{Start: p, Position: p, Direction: maze.Stop}
	}
	return g
}

func (g *Game) Layout() *maze.Layout {
	return g.layout
}

func (g *Game) Agent() maze.Position {
	return g.agent
}

func (g *Game) Score() int {
	return g.score
}

func (g *Game) Ticks() int {
	return g.ticks
}

func (g *Game) Over() bool {
	return g.over
}

func (g *Game) Won() bool {
	return g.won
}

// Food left, in cell enumeration order
func (g *Game) Food() []maze.Position {
	return sortedKeys(g.food)
}

func (g *Game) Capsules() []maze.Position {
	return sortedKeys(g.capsules)
}

func (g *Game) Ghosts() []Ghost {
	out := make([]Ghost, len(g.ghosts))
	copy(out, g.ghosts)
	return out
}

func sortedKeys(set map[maze.Position]bool) []maze.Position {
	out := make([]maze.Position, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	maze.SortPositions(out)
	return out
}

// LegalActions of the agent: the open cardinal moves in N, S, E, W order,
// followed by Stop. Nothing is legal once the game is over.
func (g *Game) LegalActions() []maze.Direction {
	if g.over {
		return nil
	}
	legal := make([]maze.Direction, 0, len(moveOrder)+1)
	for _, d := range moveOrder {
		if !g.layout.IsWall(g.agent.Move(d)) {
			legal = append(legal, d)
		}
	}
	return append(legal, maze.Stop)
}

func (g *Game) isLegal(d maze.Direction) bool {
	for _, l := range g.LegalActions() {
		if l == d {
			return true
		}
	}
	return false
}

// Step plays one tick: the agent moves, then every ghost
func (g *Game) Step(d maze.Direction) error {
	if g.over {
		return ErrGameOver
	}
	if !g.isLegal(d) {
		return fmt.Errorf("%w: %s from %s", ErrIllegalMove, d, g.agent)
	}
	g.ticks++
	g.score -= TimePenalty
	g.agent = g.agent.Move(d)

	if g.food[g.agent] {
		delete(g.food, g.agent)
		g.score += FoodScore
		if len(g.food) == 0 {
			g.score += WinScore
			g.over, g.won = true, true
			return nil
		}
	}
	if g.capsules[g.agent] {
		delete(g.capsules, g.agent)
		for i := range g.ghosts {
			g.ghosts[i].ScaredTimer = ScaredTime
		}
	}
	if g.collide(); g.over {
		return nil
	}

	for i := range g.ghosts {
		g.moveGhost(&g.ghosts[i])
	}
	if g.collide(); g.over {
		return nil
	}
	for i := range g.ghosts {
		if g.ghosts[i].ScaredTimer > 0 {
			g.ghosts[i].ScaredTimer--
		}
	}
	return nil
}

// collide resolves the agent sharing a cell with ghosts: scared ghosts are
// eaten and respawn, an active ghost ends the game
func (g *Game) collide() {
	for i := range g.ghosts {
		ghost := &g.ghosts[i]
		if ghost.Position != g.agent {
			continue
		}
		if ghost.ScaredTimer > 0 {
			g.score += GhostScore
			ghost.Position = ghost.Start
			ghost.Direction = maze.Stop
			ghost.ScaredTimer = 0
			continue
		}
		g.score -= LoseScore
		g.over = true
		return
	}
}

// ghosts move uniformly at random and only turn back at dead ends
func (g *Game) moveGhost(ghost *Ghost) {
	options := make([]maze.Direction, 0, len(moveOrder))
	for _, d := range moveOrder {
		if d != ghost.Direction.Reverse() && !g.layout.IsWall(ghost.Position.Move(d)) {
			options = append(options, d)
		}
	}
	if len(options) == 0 {
		back := ghost.Direction.Reverse()
		if back == maze.Stop || g.layout.IsWall(ghost.Position.Move(back)) {
			return
		}
		options = append(options, back)
	}

	weights := make([]float64, len(options))
	for i := range weights {
		weights[i] = 1
	}
	i, ok := sampleuv.NewWeighted(weights, g.src).Take()
	if !ok {
		return
	}
	ghost.Direction = options[i]
	ghost.Position = ghost.Position.Move(options[i])
}

// StaticLayout is the part of the observation fixed for the whole game
func (g *Game) StaticLayout() mdp.Layout {
	return mdp.LayoutOf(g.layout)
}

// Observation of the current tick
func (g *Game) Observation() mdp.Observation {
	hazards := make([]mdp.Hazard, len(g.ghosts))
	for i, ghost := range g.ghosts {
		hazards[i] = mdp.Hazard{Position: ghost.Position, ScaredTimer: ghost.ScaredTimer}
	}
	return mdp.Observation{
		Position: g.agent,
		Legal:    g.LegalActions(),
		Food:     g.Food(),
		Ghosts:   hazards,
	}
}

func (g *Game) String() string {
	ghosts := make(map[maze.Position]rune)
	for _, ghost := range g.ghosts {
		if ghost.ScaredTimer > 0 {
			ghosts[ghost.Position] = 'g'
		} else {
			ghosts[ghost.Position] = 'G'
		}
	}
	var b strings.Builder
	for y := g.layout.Height - 1; y >= 0; y-- {
		for x := 0; x < g.layout.Width; x++ {
			p := maze.Position{X: x, Y: y}
			r, isGhost := ghosts[p]
			switch {
			case p == g.agent:
				b.WriteRune('P')
			case isGhost:
				b.WriteRune(r)
			case g.layout.IsWall(p):
				b.WriteRune('%')
			case g.food[p]:
				b.WriteRune('.')
			case g.capsules[p]:
				b.WriteRune('o')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}
