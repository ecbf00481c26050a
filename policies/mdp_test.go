package policies

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-mdp/maze"
	"github.com/zeu5/maze-mdp/mdp"
	"github.com/zeu5/maze-mdp/pacman"
	"github.com/zeu5/maze-mdp/types"
)

func quiet() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestMDPPolicyUnknownMaze(t *testing.T) {
	l, err := maze.ParseLayout("tiny", "%%%%\n%P.%\n%%%%\n")
	require.NoError(t, err)
	_, err = NewMDPPolicy(mdp.LayoutOf(l), quiet())
	assert.ErrorIs(t, err, mdp.ErrUnknownMaze)
}

func TestMDPPolicyNextAction(t *testing.T) {
	l, err := maze.BuiltinLayout("smallGrid")
	require.NoError(t, err)
	p, err := NewMDPPolicy(mdp.LayoutOf(l), quiet())
	require.NoError(t, err)

	env := pacman.NewEnvironment(l, 1)
	s, err := env.Reset(nil)
	require.NoError(t, err)

	a, ok := p.NextAction(0, s, s.Actions())
	require.True(t, ok)
	assert.Contains(t, s.Actions(), a)
	assert.NotEqual(t, maze.Stop.Hash(), a.Hash())
	assert.NoError(t, p.Err)

	path := filepath.Join(t.TempDir(), "utilities")
	p.Record(path)
	assert.FileExists(t, path+".json")

	// only Stop offered
	a, ok = p.NextAction(1, s, []types.Action{maze.Stop})
	require.True(t, ok)
	assert.Equal(t, maze.Stop.Hash(), a.Hash())
}

type opaqueState struct{}

func (opaqueState) Hash() string            { return "opaque" }
func (opaqueState) Actions() []types.Action { return []types.Action{maze.Stop} }

func TestMDPPolicyNeedsObservation(t *testing.T) {
	l, err := maze.BuiltinLayout("smallGrid")
	require.NoError(t, err)
	p, err := NewMDPPolicy(mdp.LayoutOf(l), quiet())
	require.NoError(t, err)

	_, ok := p.NextAction(0, opaqueState{}, opaqueState{}.Actions())
	assert.False(t, ok)
	assert.Error(t, p.Err)
}

func TestMDPPolicyPlaysGames(t *testing.T) {
	l, err := maze.BuiltinLayout("smallGrid")
	require.NoError(t, err)
	p, err := NewMDPPolicy(mdp.LayoutOf(l), quiet(), mdp.WithWarmStart())
	require.NoError(t, err)

	dir := t.TempDir()
	c, err := types.NewComparison(&types.ComparisonConfig{
		Runs:         1,
		Episodes:     3,
		Horizon:      100,
		RecordPath:   dir,
		RecordPolicy: true,
		Logger:       quiet(),
		Progress:     io.Discard,
	})
	require.NoError(t, err)

	var scores *pacman.ScoreDataSet
	c.AddAnalysis("score", pacman.NewScoreAnalyzer(), func(_, _ int, _ []string, ds []types.DataSet) {
		scores = ds[0].(*pacman.ScoreDataSet)
	})
	c.AddExperiment(types.NewExperiment("mdp", p, pacman.NewEnvironment(l, 5)))

	results, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, results[0]["mdp"].Errors)
	require.NotNil(t, scores)
	assert.Len(t, scores.Scores, 3)

	_, err = os.Stat(filepath.Join(dir, "policies", "mdp_0.json"))
	assert.NoError(t, err)
}
