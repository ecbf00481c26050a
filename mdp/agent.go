package mdp

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/zeu5/maze-mdp/maze"
)

var ErrNotRegistered = errors.New("agent has no registered maze")

// Decision is the outcome of one decision tick
type Decision struct {
	Action    maze.Direction
	Rewards   Values
	Utilities Values
	Stats     SolveStats
}

// Agent re-plans from scratch on every tick: it refreshes the maze overlay,
// builds the reward map, solves it with value iteration and picks the action
// leading to the best neighbour.
type Agent struct {
	profiles    *ProfileTable
	profileName string
	convergence Convergence
	warmStart   bool
	logger      *log.Logger

	grid    *maze.Grid
	profile Profile
	solver  *Solver
	last    Values
}

type Option func(*Agent)

// WithProfiles replaces the default profile table
func WithProfiles(t *ProfileTable) Option {
	return func(a *Agent) {
		a.profiles = t
	}
}

// WithProfileName skips the dimension lookup and uses the named profile
func WithProfileName(name string) Option {
	return func(a *Agent) {
		a.profileName = name
	}
}

func WithConvergence(c Convergence) Option {
	return func(a *Agent) {
		a.convergence = c
	}
}

// WithWarmStart seeds every solve with the previous tick's utilities. The
// fixed point does not change, only the number of sweeps. Ignored with
// LegacySum convergence.
func WithWarmStart() Option {
	return func(a *Agent) {
		a.warmStart = true
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Agent) {
		a.logger = l
	}
}

func NewAgent(opts ...Option) *Agent {
	a := &Agent{
		profiles:    DefaultProfiles(),
		convergence: SupNorm,
	}
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "mdp"})
	}
	return a
}

// RegisterInitialState builds the static maze and resolves the tunables. An
// unknown or degenerate maze is a configuration error. Mazes whose size no
// profile matches are rejected before the overlay is allocated.
func (a *Agent) RegisterInitialState(layout Layout) error {
	if width, height := maze.Bounds(layout.Corners); width > 0 && height > 0 {
		if err := a.profiles.CheckSize(a.profileName, width, height); err != nil {
			return err
		}
	}
	grid, err := maze.NewGrid(layout.Corners, layout.Walls)
	if err != nil {
		return err
	}
	cells := grid.TraversableCells().Len()

	var profile Profile
	if a.profileName != "" {
		profile, err = a.profiles.ByName(a.profileName)
	} else {
		profile, err = a.profiles.Resolve(grid.Width(), grid.Height(), cells)
	}
	if err != nil {
		return err
	}
	if profile.Cells != cells {
		return fmt.Errorf("%w: profile %s expects %d traversable cells, maze has %d", ErrUnknownMaze, profile.Name, profile.Cells, cells)
	}

	solver := NewSolver(profile.Discount)
	solver.Convergence = a.convergence
	if err := solver.validate(); err != nil {
		return err
	}

	a.grid = grid
	a.profile = profile
	a.solver = solver
	a.last = nil
	a.logger.Info("registered maze", "profile", profile.Name, "width", grid.Width(), "height", grid.Height(),
		"cells", cells, "discount", profile.Discount, "movement_cost", profile.MovementCost, "hazard_radius", profile.HazardRadius)
	return nil
}

// Profile in use for the registered maze
func (a *Agent) Profile() Profile {
	return a.profile
}

// Utilities of the last decision
func (a *Agent) Utilities() Values {
	return a.last.clone()
}

// Decide runs one full decision tick
func (a *Agent) Decide(obs Observation) (Decision, error) {
	if a.grid == nil {
		return Decision{}, ErrNotRegistered
	}
	a.grid.RefreshConsumables(obs.Food)
	a.grid.RefreshHazards(obs.hazardPositions())

	legal := make([]maze.Direction, 0, len(obs.Legal))
	for _, d := range obs.Legal {
		if d != maze.Stop {
			legal = append(legal, d)
		}
	}

	rewards := Rewards(a.grid.TraversableCells(), obs.Food, obs.Ghosts, a.profile.MovementCost, a.profile.HazardRadius)

	var init Values
	if a.warmStart && a.convergence == SupNorm {
		init = a.last
	}
	utilities, stats, err := a.solver.Solve(rewards, init)
	if err != nil {
		return Decision{}, err
	}
	a.last = utilities

	action := SelectAction(obs.Position, legal, utilities)
	a.logger.Debug("decided", "position", obs.Position, "action", action, "sweeps", stats.Sweeps, "residual", stats.Residual)
	return Decision{
		Action:    action,
		Rewards:   rewards,
		Utilities: utilities,
		Stats:     stats,
	}, nil
}

// GetAction returns only the chosen action of Decide
func (a *Agent) GetAction(obs Observation) (maze.Direction, error) {
	d, err := a.Decide(obs)
	if err != nil {
		return maze.Stop, err
	}
	return d.Action, nil
}

// Render draws the utilities of the last decision on the maze
func (a *Agent) Render(agent maze.Position) string {
	return a.RenderValues(a.last, agent)
}

// RenderValues draws any per cell values, such as a reward map, on the maze
func (a *Agent) RenderValues(values Values, agent maze.Position) string {
	if a.grid == nil {
		return ""
	}
	return maze.RenderValues(a.grid, values, agent)
}

// Overlay draws the marker overlay as of the last decision
func (a *Agent) Overlay() string {
	if a.grid == nil {
		return ""
	}
	return a.grid.String()
}
