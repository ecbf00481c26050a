package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLayoutSizes(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		cells         int
	}{
		{"smallGrid", 7, 7, 18},
		{"mediumClassic", 20, 11, 106},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l, err := BuiltinLayout(c.name)
			require.NoError(t, err)
			assert.Equal(t, c.width, l.Width)
			assert.Equal(t, c.height, l.Height)

			g, err := NewGrid(l.Corners(), l.Walls)
			require.NoError(t, err)
			assert.Equal(t, c.cells, g.TraversableCells().Len())
		})
	}
	assert.Equal(t, []string{"mediumClassic", "smallGrid"}, BuiltinLayouts())
}

func TestParseLayoutCoordinates(t *testing.T) {
	l, err := ParseLayout("tiny", "%%%%%\n%.Po%\n%G  %\n%%%%%\n")
	require.NoError(t, err)

	assert.Equal(t, 5, l.Width)
	assert.Equal(t, 4, l.Height)
	// first text row is the top of the maze
	assert.Equal(t, Position{X: 2, Y: 2}, l.Agent)
	assert.Equal(t, []Position{{X: 1, Y: 2}}, l.Food)
	assert.Equal(t, []Position{{X: 3, Y: 2}}, l.Capsules)
	assert.Equal(t, []Position{{X: 1, Y: 1}}, l.Ghosts)
	assert.True(t, l.IsWall(Position{X: 0, Y: 0}))
	assert.True(t, l.IsWall(Position{X: 9, Y: 0}))
	assert.False(t, l.IsWall(Position{X: 2, Y: 1}))
}

func TestParseLayoutErrors(t *testing.T) {
	_, err := ParseLayout("empty", "\n\n")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout("noagent", "%%%\n% %\n%%%")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout("twoagents", "%%%%\n%PP%\n%%%%")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout("symbol", "%%%\n%P#\n%%%")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = BuiltinLayout("openClassic")
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
