package mdp

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/zeu5/maze-mdp/maze"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidDiscount = errors.New("discount must be in [0, 1)")
	ErrNotConverged    = errors.New("value iteration did not converge")
	ErrInvalidAction   = errors.New("action cannot be planned")
)

const (
	// probability of landing on the intended neighbour
	intendedProb = 0.8
	// probability of drifting to each perpendicular neighbour
	driftProb = 0.1

	DefaultTolerance = 1e-4
	DefaultMaxSweeps = 100000
)

// Convergence test applied after every sweep
type Convergence string

const (
	// SupNorm stops when no cell changed by more than the tolerance
	SupNorm Convergence = "sup-norm"
	// LegacySum stops when the sum of all utilities, rounded to two decimals,
	// is unchanged between sweeps. Kept for compatibility with older runs.
	LegacySum Convergence = "legacy-sum"
)

// ParseConvergence reads a convergence mode name
func ParseConvergence(s string) (Convergence, error) {
	switch Convergence(s) {
	case SupNorm, LegacySum:
		return Convergence(s), nil
	}
	return "", fmt.Errorf("unknown convergence mode %q", s)
}

// Solver runs synchronous value iteration over a reward map with the noisy
// movement model: the intended move succeeds with 0.8 and the agent drifts to
// either perpendicular neighbour with 0.1 each. Moves leaving the reward map's
// domain bounce back to the current cell.
type Solver struct {
	Discount    float64
	Actions     []maze.Direction
	Convergence Convergence
	Tolerance   float64
	MaxSweeps   int
}

// NewSolver with the cardinal actions and sup-norm convergence
func NewSolver(discount float64) *Solver {
	return &Solver{
		Discount:    discount,
		Actions:     maze.Cardinals,
		Convergence: SupNorm,
		Tolerance:   DefaultTolerance,
		MaxSweeps:   DefaultMaxSweeps,
	}
}

// SolveStats describes a finished solve
type SolveStats struct {
	Sweeps   int
	Residual float64
}

func (s *Solver) validate() error {
	if s.Discount < 0 || s.Discount >= 1 || math.IsNaN(s.Discount) {
		return fmt.Errorf("%w: got %v", ErrInvalidDiscount, s.Discount)
	}
	if len(s.Actions) == 0 {
		return fmt.Errorf("%w: no actions", ErrInvalidAction)
	}
	for _, a := range s.Actions {
		if _, _, ok := a.Perpendicular(); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidAction, a)
		}
	}
	switch s.Convergence {
	case SupNorm, LegacySum:
	default:
		return fmt.Errorf("unknown convergence mode %q", s.Convergence)
	}
	return nil
}

// transitions of one action from one cell, as indices into the cell slice
type outcome struct {
	intended, left, right int
}

type problem struct {
	cells    []maze.Position
	rewards  []float64
	terminal []bool
	// per cell, per action
	outcomes [][]outcome
}

func (s *Solver) compile(rewards Values) *problem {
	cells := make([]maze.Position, 0, len(rewards))
	for c := range rewards {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Y < cells[j].Y
	})
	index := make(map[maze.Position]int, len(cells))
	for i, c := range cells {
		index[c] = i
	}

	p := &problem{
		cells:    cells,
		rewards:  make([]float64, len(cells)),
		terminal: make([]bool, len(cells)),
		outcomes: make([][]outcome, len(cells)),
	}
	dest := func(from int, d maze.Direction) int {
		if j, ok := index[cells[from].Move(d)]; ok {
			return j
		}
		return from
	}
	for i, c := range cells {
		r := rewards[c]
		p.rewards[i] = r
		p.terminal[i] = math.Abs(r) >= 1
		p.outcomes[i] = make([]outcome, len(s.Actions))
		for k, a := range s.Actions {
			left, right, _ := a.Perpendicular()
			p.outcomes[i][k] = outcome{
				intended: dest(i, a),
				left:     dest(i, left),
				right:    dest(i, right),
			}
		}
	}
	return p
}

func (p *problem) sweep(gamma float64, prev, next []float64) {
	for i := range p.cells {
		if p.terminal[i] {
			next[i] = p.rewards[i]
			continue
		}
		best := math.Inf(-1)
		for _, o := range p.outcomes[i] {
			eu := intendedProb*prev[o.intended] + driftProb*prev[o.left] + driftProb*prev[o.right]
			if eu > best {
				best = eu
			}
		}
		next[i] = p.rewards[i] + gamma*best
	}
}

func roundSum(values []float64) float64 {
	return math.Round(floats.Sum(values)*100) / 100
}

// Solve returns the converged utility of every cell in rewards. init seeds the
// first sweep; cells missing from init start at zero.
func (s *Solver) Solve(rewards Values, init Values) (Values, SolveStats, error) {
	if err := s.validate(); err != nil {
		return nil, SolveStats{}, err
	}
	p := s.compile(rewards)
	n := len(p.cells)
	if n == 0 {
		return Values{}, SolveStats{}, nil
	}

	prev := make([]float64, n)
	next := make([]float64, n)
	for i, c := range p.cells {
		prev[i] = init[c]
	}

	maxSweeps := s.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = DefaultMaxSweeps
	}
	tolerance := s.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	stats := SolveStats{}
	for stats.Sweeps < maxSweeps {
		p.sweep(s.Discount, prev, next)
		stats.Sweeps++
		stats.Residual = floats.Distance(next, prev, math.Inf(1))

		var converged bool
		switch s.Convergence {
		case LegacySum:
			converged = roundSum(prev) == roundSum(next)
		default:
			converged = stats.Residual <= tolerance
		}
		if converged {
			utilities := make(Values, n)
			for i, c := range p.cells {
				utilities[c] = next[i]
			}
			return utilities, stats, nil
		}
		prev, next = next, prev
	}
	return nil, stats, fmt.Errorf("%w after %d sweeps (residual %g)", ErrNotConverged, stats.Sweeps, stats.Residual)
}
