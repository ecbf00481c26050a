package mdp

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-mdp/maze"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func smallGrid(t *testing.T) *maze.Layout {
	t.Helper()
	l, err := maze.BuiltinLayout("smallGrid")
	require.NoError(t, err)
	return l
}

func TestAgentNotRegistered(t *testing.T) {
	a := NewAgent(WithLogger(quietLogger()))
	_, err := a.GetAction(Observation{})
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Empty(t, a.Render(maze.Position{}))
}

func TestAgentUnknownMaze(t *testing.T) {
	a := NewAgent(WithLogger(quietLogger()))
	err := a.RegisterInitialState(Layout{Corners: []maze.Position{{X: 0, Y: 0}, {X: 2, Y: 0}}})
	assert.ErrorIs(t, err, ErrUnknownMaze)

	// a named profile must still agree with the maze
	a = NewAgent(WithLogger(quietLogger()), WithProfileName("smallGrid"))
	err = a.RegisterInitialState(Layout{Corners: []maze.Position{{X: 0, Y: 0}, {X: 2, Y: 0}}})
	assert.ErrorIs(t, err, ErrUnknownMaze)

	err = a.RegisterInitialState(Layout{})
	assert.ErrorIs(t, err, maze.ErrDegenerateMaze)
}

func TestAgentRejectsOversizedMazeBeforeBuildingIt(t *testing.T) {
	a := NewAgent(WithLogger(quietLogger()))
	// walls far outside the corners would fail the grid, so an unknown
	// size error shows the grid was never built
	err := a.RegisterInitialState(Layout{
		Corners: []maze.Position{{X: 0, Y: 0}, {X: 99999, Y: 99999}},
		Walls:   []maze.Position{{X: -5, Y: -5}},
	})
	require.ErrorIs(t, err, ErrUnknownMaze)
	assert.NotErrorIs(t, err, maze.ErrDegenerateMaze)
	assert.Contains(t, err.Error(), "100000x100000")
}

func TestAgentResolvesBuiltinProfiles(t *testing.T) {
	for _, name := range maze.BuiltinLayouts() {
		l, err := maze.BuiltinLayout(name)
		require.NoError(t, err)

		a := NewAgent(WithLogger(quietLogger()))
		require.NoError(t, a.RegisterInitialState(LayoutOf(l)))
		assert.Equal(t, name, a.Profile().Name)
	}
}

func TestAgentMovesTowardsFood(t *testing.T) {
	l := smallGrid(t)
	a := NewAgent(WithLogger(quietLogger()))
	require.NoError(t, a.RegisterInitialState(LayoutOf(l)))

	// agent at the bottom right, ghost far away and scared, only the bottom
	// left food left
	obs := Observation{
		Position: l.Agent,
		Legal:    []maze.Direction{maze.North, maze.West, maze.Stop},
		Food:     []maze.Position{{X: 1, Y: 1}},
		Ghosts:   []Hazard{{Position: l.Ghosts[0], ScaredTimer: 10}},
	}
	d, err := a.Decide(obs)
	require.NoError(t, err)
	assert.Equal(t, maze.West, d.Action)
	assert.Equal(t, 1.0, d.Rewards[maze.Position{X: 1, Y: 1}])
	assert.Len(t, d.Utilities, 18)
	assert.Equal(t, d.Utilities, a.Utilities())
	assert.NotEmpty(t, a.Render(l.Agent))
	assert.Contains(t, a.Overlay(), "*")
}

func TestAgentAvoidsActiveHazard(t *testing.T) {
	table := DefaultProfiles()
	require.NoError(t, table.Set(Profile{Name: "corridor", Width: 5, Height: 1, Cells: 5, Discount: 0.7, MovementCost: 0.1, HazardRadius: 2}))
	a := NewAgent(WithLogger(quietLogger()), WithProfiles(table))
	require.NoError(t, a.RegisterInitialState(Layout{Corners: []maze.Position{{X: 0, Y: 0}, {X: 4, Y: 0}}}))

	obs := Observation{
		Position: maze.Position{X: 2, Y: 0},
		Legal:    []maze.Direction{maze.East, maze.West, maze.Stop},
		Food:     []maze.Position{{X: 0, Y: 0}},
		Ghosts:   []Hazard{{Position: maze.Position{X: 4, Y: 0}}},
	}
	action, err := a.GetAction(obs)
	require.NoError(t, err)
	assert.Equal(t, maze.West, action)
	assert.Contains(t, a.Overlay(), "@")
}

func TestAgentWarmStart(t *testing.T) {
	l := smallGrid(t)
	obs := Observation{
		Position: l.Agent,
		Legal:    []maze.Direction{maze.North, maze.West},
		Food:     l.Food,
		Ghosts:   []Hazard{{Position: l.Ghosts[0]}},
	}

	cold := NewAgent(WithLogger(quietLogger()))
	require.NoError(t, cold.RegisterInitialState(LayoutOf(l)))
	warm := NewAgent(WithLogger(quietLogger()), WithWarmStart())
	require.NoError(t, warm.RegisterInitialState(LayoutOf(l)))

	coldFirst, err := cold.Decide(obs)
	require.NoError(t, err)
	coldSecond, err := cold.Decide(obs)
	require.NoError(t, err)
	assert.Equal(t, coldFirst.Stats.Sweeps, coldSecond.Stats.Sweeps)

	_, err = warm.Decide(obs)
	require.NoError(t, err)
	warmSecond, err := warm.Decide(obs)
	require.NoError(t, err)
	assert.Equal(t, 1, warmSecond.Stats.Sweeps)
	assert.Equal(t, coldSecond.Action, warmSecond.Action)
	for c, u := range coldSecond.Utilities {
		assert.InDelta(t, u, warmSecond.Utilities[c], 1e-3)
	}
}

func TestAgentLegacyConvergence(t *testing.T) {
	l := smallGrid(t)
	a := NewAgent(WithLogger(quietLogger()), WithConvergence(LegacySum))
	require.NoError(t, a.RegisterInitialState(LayoutOf(l)))
	action, err := a.GetAction(Observation{
		Position: l.Agent,
		Legal:    []maze.Direction{maze.North, maze.West, maze.Stop},
		Food:     l.Food,
	})
	require.NoError(t, err)
	assert.NotEqual(t, maze.Stop, action)

	bad := NewAgent(WithLogger(quietLogger()), WithConvergence(Convergence("l1")))
	assert.Error(t, bad.RegisterInitialState(LayoutOf(l)))
}
