package pacman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-mdp/maze"
)

func parse(t *testing.T, text string) *maze.Layout {
	t.Helper()
	l, err := maze.ParseLayout("test", text)
	require.NoError(t, err)
	return l
}

func TestLegalActionsOrder(t *testing.T) {
	g := NewGame(parse(t, "%%%%%\n%.P %\n%%%%%\n"), 1)
	assert.Equal(t, []maze.Direction{maze.East, maze.West, maze.Stop}, g.LegalActions())

	g = NewGame(parse(t, "%%%%%\n% . %\n%.P.%\n% . %\n%%%%%\n"), 1)
	assert.Equal(t, []maze.Direction{maze.North, maze.South, maze.East, maze.West, maze.Stop}, g.LegalActions())
}

func TestEatFoodAndWin(t *testing.T) {
	g := NewGame(parse(t, "%%%%%%\n%.P .%\n%%%%%%\n"), 1)

	require.NoError(t, g.Step(maze.West))
	assert.Equal(t, 9, g.Score())
	assert.False(t, g.Over())
	assert.Equal(t, []maze.Position{{X: 4, Y: 1}}, g.Food())

	err := g.Step(maze.West)
	assert.ErrorIs(t, err, ErrIllegalMove)

	require.NoError(t, g.Step(maze.East))
	require.NoError(t, g.Step(maze.East))
	require.NoError(t, g.Step(maze.East))
	assert.Equal(t, 9-1-1-1+FoodScore+WinScore, g.Score())
	assert.True(t, g.Over())
	assert.True(t, g.Won())
	assert.Equal(t, 4, g.Ticks())
	assert.Empty(t, g.LegalActions())
	assert.ErrorIs(t, g.Step(maze.Stop), ErrGameOver)
}

func TestCaughtByGhost(t *testing.T) {
	g := NewGame(parse(t, "%%%%%%\n%.PG %\n%%%%%%\n"), 1)
	require.NoError(t, g.Step(maze.East))
	assert.True(t, g.Over())
	assert.False(t, g.Won())
	assert.Equal(t, -TimePenalty-LoseScore, g.Score())
}

func TestCapsuleScaresGhosts(t *testing.T) {
	// the ghost is boxed in and can only walk into the agent
	g := NewGame(parse(t, "%%%%%%\n%.PoG%\n%%%%%%\n"), 1)

	require.NoError(t, g.Step(maze.East))
	assert.Equal(t, -TimePenalty+GhostScore, g.Score())
	assert.False(t, g.Over())
	assert.Empty(t, g.Capsules())

	ghosts := g.Ghosts()
	require.Len(t, ghosts, 1)
	assert.Equal(t, maze.Position{X: 4, Y: 1}, ghosts[0].Position)
	assert.Equal(t, 0, ghosts[0].ScaredTimer)

	// respawned ghosts are dangerous again
	require.NoError(t, g.Step(maze.East))
	assert.True(t, g.Over())
	assert.Equal(t, -TimePenalty+GhostScore-TimePenalty-LoseScore, g.Score())
}

func TestScaredTimerCountsDown(t *testing.T) {
	g := NewGame(parse(t, "%%%%%%%%\n%.Po   %\n%%%%% %%\n%%%%%G%%\n%%%%%%%%\n"), 3)
	require.NoError(t, g.Step(maze.East))
	ghost := g.Ghosts()[0]
	assert.Equal(t, ScaredTime-1, ghost.ScaredTimer)

	obs := g.Observation()
	require.Len(t, obs.Ghosts, 1)
	assert.False(t, obs.Ghosts[0].Active())
	assert.Equal(t, ghost.Position, obs.Ghosts[0].Position)
}

func TestGhostsReplayWithSeed(t *testing.T) {
	l, err := maze.BuiltinLayout("mediumClassic")
	require.NoError(t, err)

	play := func(seed uint64) []Ghost {
		g := NewGame(l, seed)
		for i := 0; i < 10 && !g.Over(); i++ {
			require.NoError(t, g.Step(maze.Stop))
		}
		return g.Ghosts()
	}
	assert.Equal(t, play(42), play(42))
}

func TestGhostsDoNotReverse(t *testing.T) {
	// a loop corridor, the ghost keeps circling in one direction
	g := NewGame(parse(t, "%%%%%%%\n%P%   %\n%%% % %\n%%%G  %\n%%%%%%%\n"), 5)
	var last Ghost
	for i := 0; i < 12; i++ {
		require.NoError(t, g.Step(maze.Stop))
		ghost := g.Ghosts()[0]
		if i > 0 {
			assert.NotEqual(t, last.Direction.Reverse(), ghost.Direction, "tick %d", i)
		}
		last = ghost
	}
}

func TestObservationAndRender(t *testing.T) {
	l := parse(t, "%%%%%\n%.Po%\n%G  %\n%%%%%\n")
	g := NewGame(l, 1)
	obs := g.Observation()
	assert.Equal(t, l.Agent, obs.Position)
	assert.Equal(t, g.LegalActions(), obs.Legal)
	assert.Equal(t, []maze.Position{{X: 1, Y: 2}}, obs.Food)
	require.Len(t, obs.Ghosts, 1)
	assert.True(t, obs.Ghosts[0].Active())

	assert.Equal(t, "%%%%%\n%.Po%\n%G  %\n%%%%%\n", g.String())

	static := g.StaticLayout()
	assert.Len(t, static.Corners, 4)
	assert.Equal(t, l.Walls, static.Walls)
}
