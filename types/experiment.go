package types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zeu5/maze-mdp/util"
)

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  []Analyzer
	Timeout    time.Duration
	Context    context.Context

	// thresholds to abort the experiment
	ConsecutiveErrorsAbort int

	// record flags
	RecordTraces bool
	RecordTimes  bool
	RecordPolicy bool

	ReportSavePath string

	Logger   *log.Logger
	Progress *ProgressPrinter

	//misc
	LongestExpNameLen int
}

// ExperimentStats summarises one run of an experiment
type ExperimentStats struct {
	Episodes  int
	Timesteps int
	Terminal  int
	Horizon   int
	TimedOut  int
	Errors    int
	Aborted   bool
}

// Experiment encapsulates the different parameters to configure an agent and analyze the traces
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		rConfig.Logger.Error("encoding trace", "experiment", e.Name, "err", err)
		return
	}

	if err := util.AppendToFile(tracesFile, string(bs)); err != nil {
		rConfig.Logger.Error("recording trace", "experiment", e.Name, "err", err)
	}
}

// Run the experiment for the specified number of episodes, passing every
// trace to the analyzers
func (e *Experiment) Run(rConfig *experimentRunConfig) ExperimentStats {
	stats := ExperimentStats{}
	select {
	case <-rConfig.Context.Done():
		return stats
	default:
	}

	consecutiveErrors := 0
	episodeTimes := make([]time.Duration, 0)

	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	EPPadding := len(strconv.Itoa(rConfig.Episodes))
	NamePadding := rConfig.LongestExpNameLen
	printStatus := func() {
		rConfig.Progress.Print("Exp:%*s, Eps:%*d/%d, TSteps:%d || Terminal:%*d, Horizon:%*d, TOut:%*d, Err:%*d",
			NamePadding, e.Name, EPPadding, stats.Episodes, rConfig.Episodes, stats.Timesteps,
			EPPadding, stats.Terminal, EPPadding, stats.Horizon, EPPadding, stats.TimedOut, EPPadding, stats.Errors)
	}
	printStatus()

	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return stats
		default:
		}

		eCtx := NewEpisodeContext(rConfig.Context, rConfig.CurrentRun, episode, e.Name, rConfig.Timeout)
		e.runEpisode(eCtx, agent)
		episodeTimes = append(episodeTimes, eCtx.RunDuration)

		startingTimesteps := stats.Timesteps
		stats.Timesteps += eCtx.Timesteps
		stats.Episodes += 1

		switch {
		case eCtx.TimedOut:
			stats.TimedOut += 1
		case eCtx.Err != nil:
			stats.Errors += 1
			rConfig.Logger.Debug("episode failed", "experiment", e.Name, "episode", episode, "err", eCtx.Err)
		case eCtx.Terminal:
			stats.Terminal += 1
		case eCtx.HorizonEnd:
			stats.Horizon += 1
		}
		if eCtx.Err != nil {
			consecutiveErrors += 1
		} else {
			consecutiveErrors = 0
		}

		if rConfig.RecordTraces {
			e.recordTrace(rConfig, eCtx.Trace)
		}

		// analyze the trace, even if the episode timed out or ended with an error
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, episode, startingTimesteps, e.Name, eCtx.Trace)
		}

		// print episode times
		if len(episodeTimes) == 10 {
			if rConfig.RecordTimes {
				e.printEpTimesMs(episodeTimes, rConfig.ReportSavePath)
			}
			episodeTimes = make([]time.Duration, 0)
		}

		if rConfig.ConsecutiveErrorsAbort > 0 && consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			rConfig.Logger.Warn("aborting experiment", "experiment", e.Name, "consecutive_errors", consecutiveErrors, "err", eCtx.Err)
			stats.Aborted = true
			break
		}

		printStatus()
	}

	if rConfig.RecordPolicy {
		e.policy.Record(path.Join(rConfig.ReportSavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)))
	}
	return stats
}

func (e *Experiment) runEpisode(eCtx *EpisodeContext, agent *Agent) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				eCtx.SetError(fmt.Errorf("%v", r))
			}
		}()
		start := time.Now()
		agent.RunEpisode(eCtx)
		eCtx.RunDuration = time.Since(start)
	}()

	select {
	case <-eCtx.Context.Done():
		// Timeout occurred
		deadline, ok := eCtx.Context.Deadline()
		if ok && time.Now().After(deadline) {
			eCtx.SetTimedOut()
		}
		<-done
	case <-done:
	}

	eCtx.Cancel()
}

func (e *Experiment) printEpTimesMs(epTimes []time.Duration, basePath string) {
	tMilliseconds := ""
	for _, tm := range epTimes {
		tMilliseconds = fmt.Sprintf("%s%7d, ", tMilliseconds, tm.Milliseconds())
	}
	filePath := path.Join(basePath, "epTimes", e.Name+"_ms.txt")
	util.AppendToFile(filePath, tMilliseconds)
}

// Reset cleans the information about the traces (to save memory)
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // number of steps

	RecordPath string        // path to store the results
	Timeout    time.Duration // timeout for each episode

	// thresholds to abort the experiment
	ConsecutiveErrorsAbort int

	// record flags
	RecordTraces bool
	RecordTimes  bool
	RecordPolicy bool

	Logger *log.Logger
	// Progress receives the live status lines, stdout when nil
	Progress io.Writer
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig

	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["record_traces"] = cfg.RecordTraces
	out["record_times"] = cfg.RecordTimes
	out["record_policy"] = cfg.RecordPolicy
	if cfg.Timeout != 0 {
		out["timeout"] = cfg.Timeout.String()
	}

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	out["analyzers"] = append([]string{}, c.analyzerNames...)

	return util.WriteJSON(path.Join(cfg.RecordPath, "comparison_config.json"), out)
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments   []*Experiment
	analyzerNames []string
	analyzers     map[string]Analyzer
	comparators   map[string]Comparator
	cConfig       *ComparisonConfig
	logger        *log.Logger
	progress      *ProgressPrinter
}

// NewComparison creates a comparison instance, clearing any previous results
// under the record path
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if _, err := os.Stat(config.RecordPath); err == nil {
		if err := RemoveContents(config.RecordPath); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(config.RecordPath, 0777); err != nil {
		return nil, err
	}

	foldersToCreate := make([]string, 0)
	if config.RecordTraces {
		foldersToCreate = append(foldersToCreate, "traces")
	}
	if config.RecordTimes {
		foldersToCreate = append(foldersToCreate, "epTimes")
	}
	if config.RecordPolicy {
		foldersToCreate = append(foldersToCreate, "policies")
	}
	for _, s := range foldersToCreate {
		if err := os.MkdirAll(path.Join(config.RecordPath, s), 0777); err != nil {
			return nil, err
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "experiment"})
	}
	var out io.Writer = os.Stdout
	if config.Progress != nil {
		out = config.Progress
	}

	return &Comparison{
		Experiments:   make([]*Experiment, 0),
		analyzerNames: make([]string, 0),
		analyzers:     make(map[string]Analyzer),
		comparators:   make(map[string]Comparator),
		cConfig:       config,
		logger:        logger,
		progress:      NewProgressPrinter(out),
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.analyzerNames = append(c.analyzerNames, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison. Returns the stats of every run, per experiment.
func (c *Comparison) Run(ctx context.Context) ([]map[string]ExperimentStats, error) {
	if err := c.recordConfig(); err != nil {
		return nil, fmt.Errorf("recording comparison config: %w", err)
	}

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	results := make([]map[string]ExperimentStats, 0, c.cConfig.Runs)
	for run := 0; run < c.cConfig.Runs; run++ { // number of runs
		c.logger.Info("starting run", "run", run+1, "of", c.cConfig.Runs)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		runStats := make(map[string]ExperimentStats)
		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			default:
			}
			runStats[e.Name] = e.Run(c.prepareRunConfig(ctx, run, longestNameLen))
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for _, name := range c.analyzerNames {
			c.comparators[name](run, c.cConfig.Episodes, names, datasets[name])
		}
		results = append(results, runStats)
	}
	return results, nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int, longestExpNameLen int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:             run,
		Episodes:               c.cConfig.Episodes,
		Horizon:                c.cConfig.Horizon,
		Analyzers:              make([]Analyzer, 0),
		RecordTraces:           c.cConfig.RecordTraces,
		RecordTimes:            c.cConfig.RecordTimes,
		RecordPolicy:           c.cConfig.RecordPolicy,
		ReportSavePath:         c.cConfig.RecordPath,
		Timeout:                c.cConfig.Timeout,
		ConsecutiveErrorsAbort: c.cConfig.ConsecutiveErrorsAbort,
		Context:                ctx,
		Logger:                 c.logger,
		Progress:               c.progress,

		LongestExpNameLen: longestExpNameLen,
	}

	if rCfg.ConsecutiveErrorsAbort == 0 {
		rCfg.ConsecutiveErrorsAbort = 10
	}

	for _, name := range c.analyzerNames {
		rCfg.Analyzers = append(rCfg.Analyzers, c.analyzers[name])
	}
	return rCfg
}

// RemoveContents deletes everything inside dir, keeping dir itself
func RemoveContents(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.RemoveAll(path.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
