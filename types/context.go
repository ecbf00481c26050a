package types

import (
	"context"
	"time"
)

// EpisodeContext carries the information used and returned by one episode
type EpisodeContext struct {
	Context context.Context
	cancel  context.CancelFunc

	Run            int
	Episode        int
	ExperimentName string

	Trace     *Trace
	Timesteps int

	Err         error
	TimedOut    bool
	Terminal    bool // the environment ran out of actions before the horizon
	HorizonEnd  bool
	RunDuration time.Duration
}

// NewEpisodeContext derives the episode context from ctx. A zero timeout
// means the episode is only bounded by the horizon.
func NewEpisodeContext(ctx context.Context, run, episode int, experimentName string, timeout time.Duration) *EpisodeContext {
	var eCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		eCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		eCtx, cancel = context.WithCancel(ctx)
	}
	return &EpisodeContext{
		Context:        eCtx,
		cancel:         cancel,
		Run:            run,
		Episode:        episode,
		ExperimentName: experimentName,
		Trace:          NewTrace(),
	}
}

func (e *EpisodeContext) SetError(err error) {
	e.Err = err
}

func (e *EpisodeContext) SetTimedOut() {
	e.TimedOut = true
}

// Cancel releases the resources of the episode context
func (e *EpisodeContext) Cancel() {
	e.cancel()
}

// StepContext is passed to every environment step
type StepContext struct {
	*EpisodeContext
	Step int
}

func NewStepContext(eCtx *EpisodeContext, step int) *StepContext {
	return &StepContext{
		EpisodeContext: eCtx,
		Step:           step,
	}
}
