package types

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepAction string

func (s stepAction) Hash() string { return string(s) }

type counterState struct {
	value, limit int
}

func (c counterState) Hash() string { return strconv.Itoa(c.value) }

func (c counterState) Actions() []Action {
	if c.value >= c.limit {
		return nil
	}
	return []Action{stepAction("inc"), stepAction("stay")}
}

// counterEnv counts up to limit. The episode ends once the limit is reached.
type counterEnv struct {
	limit   int
	current counterState
	panicAt int
}

func (e *counterEnv) Reset(_ *EpisodeContext) (State, error) {
	e.current = counterState{limit: e.limit}
	return e.current, nil
}

func (e *counterEnv) Step(a Action, ctx *StepContext) (State, error) {
	if e.panicAt > 0 && ctx.Step == e.panicAt {
		panic("boom")
	}
	if a.Hash() == "inc" {
		e.current.value++
	}
	return e.current, nil
}

type incPolicy struct {
	iterations int
}

func (p *incPolicy) UpdateIteration(int, *Trace) { p.iterations++ }
func (p *incPolicy) NextAction(_ int, _ State, actions []Action) (Action, bool) {
	return actions[0], true
}
func (p *incPolicy) Update(int, State, Action, State) {}
func (p *incPolicy) Reset()                           { p.iterations = 0 }
func (p *incPolicy) Record(path string)               { os.WriteFile(path+".txt", []byte("inc"), 0644) }

func quietConfig(dir string) *ComparisonConfig {
	return &ComparisonConfig{
		Runs:         1,
		Episodes:     3,
		Horizon:      10,
		RecordPath:   dir,
		RecordTraces: true,
		RecordPolicy: true,
		Logger:       log.NewWithOptions(io.Discard, log.Options{}),
		Progress:     io.Discard,
	}
}

func TestAgentRunEpisode(t *testing.T) {
	policy := &incPolicy{}
	agent := NewAgent(&AgentConfig{Episodes: 1, Horizon: 10, Policy: policy, Environment: &counterEnv{limit: 3}})

	eCtx := NewEpisodeContext(context.Background(), 0, 0, "counter", 0)
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	require.NoError(t, eCtx.Err)
	assert.True(t, eCtx.Terminal)
	assert.False(t, eCtx.HorizonEnd)
	assert.Equal(t, 3, eCtx.Timesteps)
	assert.Equal(t, 3, eCtx.Trace.Len())
	assert.Equal(t, 1, policy.iterations)

	_, a, ns, ok := eCtx.Trace.Last()
	require.True(t, ok)
	assert.Equal(t, "inc", a.Hash())
	assert.Equal(t, "3", ns.Hash())

	// horizon shorter than the counter
	agent = NewAgent(&AgentConfig{Episodes: 1, Horizon: 2, Policy: policy, Environment: &counterEnv{limit: 3}})
	eCtx = NewEpisodeContext(context.Background(), 0, 1, "counter", 0)
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)
	assert.True(t, eCtx.HorizonEnd)
	assert.False(t, eCtx.Terminal)
}

func TestTraceJSON(t *testing.T) {
	trace := NewTrace()
	trace.Append(0, counterState{value: 0, limit: 2}, stepAction("inc"), counterState{value: 1, limit: 2})
	trace.Append(1, counterState{value: 1, limit: 2}, stepAction("stay"), counterState{value: 1, limit: 2})

	bs, err := json.Marshal(trace)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"state":"0","action":"inc","next_state":"1"},{"state":"1","action":"stay","next_state":"1"}]`, string(bs))

	prefix, ok := trace.GetPrefix(1)
	require.True(t, ok)
	assert.Equal(t, 1, prefix.Len())
	assert.Equal(t, 1, trace.Slice(1, 2).Len())
	_, _, _, ok = trace.Get(2)
	assert.False(t, ok)
}

func TestComparisonRecordsAndAnalyzes(t *testing.T) {
	dir := t.TempDir()
	c, err := NewComparison(quietConfig(dir))
	require.NoError(t, err)

	coverage := NewCoverageAnalyzer(DefaultStateAbstractor())
	var got []DataSet
	c.AddAnalysis("coverage", coverage, func(_, _ int, names []string, ds []DataSet) {
		assert.Equal(t, []string{"counter"}, names)
		got = ds
	})
	c.AddExperiment(NewExperiment("counter", &incPolicy{}, &counterEnv{limit: 4}))

	results, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	stats := results[0]["counter"]
	assert.Equal(t, 3, stats.Episodes)
	assert.Equal(t, 3, stats.Terminal)
	assert.Equal(t, 12, stats.Timesteps)

	require.Len(t, got, 1)
	assert.Equal(t, []int{5, 5, 5}, got[0])

	assert.FileExists(t, filepath.Join(dir, "comparison_config.json"))
	assert.FileExists(t, filepath.Join(dir, "traces", "counter_0.jsonl"))
	assert.FileExists(t, filepath.Join(dir, "policies", "counter_0.txt"))
}

func TestExperimentRecoversPanics(t *testing.T) {
	c, err := NewComparison(quietConfig(t.TempDir()))
	require.NoError(t, err)
	c.AddAnalysis("noop", NewCoverageAnalyzer(DefaultStateAbstractor()), NoopComparator())
	c.AddExperiment(NewExperiment("panicky", &incPolicy{}, &counterEnv{limit: 4, panicAt: 1}))

	results, err := c.Run(context.Background())
	require.NoError(t, err)
	stats := results[0]["panicky"]
	assert.Equal(t, 3, stats.Errors)
	assert.Equal(t, 3, stats.Timesteps)
}

func TestRandomPolicy(t *testing.T) {
	p := NewSeededRandomPolicy(7)
	actions := []Action{stepAction("a"), stepAction("b")}
	for i := 0; i < 20; i++ {
		a, ok := p.NextAction(i, counterState{}, actions)
		require.True(t, ok)
		assert.Contains(t, actions, a)
	}
	_, ok := p.NextAction(0, counterState{}, nil)
	assert.False(t, ok)
}

func TestSoftMaxNegPolicyPenalisesRepeats(t *testing.T) {
	p := NewSoftMaxNegPolicy(0.5, 0.9, 1)
	s := counterState{value: 0, limit: 5}
	actions := s.Actions()
	a, ok := p.NextAction(0, s, actions)
	require.True(t, ok)
	p.Update(0, s, a, counterState{value: 1, limit: 5})
	assert.Less(t, p.QTable["0"][a.Hash()], 0.0)

	p.Reset()
	assert.Empty(t, p.QTable)
}

func TestRemoveContentsKeepsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outtext.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "traces", "nested"), 0o755))

	require.NoError(t, RemoveContents(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, RemoveContents(filepath.Join(dir, "missing")))
}
