package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// State is a step of the per-request pipeline. States only move forward.
type State string

const (
	StateStart              State = "start"
	StateAuthenticated      State = "authenticated"
	StateContextAssembled   State = "context_assembled"
	StatePromptBuilt        State = "prompt_built"
	StateGenerated          State = "generated"
	StateParsed             State = "parsed"
	StateAssembled          State = "assembled"
	StateAuthFailed         State = "auth_failed"
	StateCatalogUnavailable State = "catalog_unavailable"
	StateGenerationFailed   State = "generation_failed"
	StateCancelled          State = "cancelled"
	StateFailed             State = "failed"
)

var stateOrder = map[State]int{
	StateStart:            0,
	StateAuthenticated:    1,
	StateContextAssembled: 2,
	StatePromptBuilt:      3,
	StateGenerated:        4,
	StateParsed:           5,
	StateAssembled:        6,
}

// Pipeline names one of the request flows in metrics.
type Pipeline string

const (
	PipelineRecommend Pipeline = "recommend"
	PipelineQuery     Pipeline = "query"
	PipelineChat      Pipeline = "chat"
)

// run tracks one request through the pipeline and records where it ended.
type run struct {
	svc      *Service
	pipeline Pipeline
	state    State
	done     bool
}

func (s *Service) newRun(pipeline Pipeline) *run {
	return &run{svc: s, pipeline: pipeline, state: StateStart}
}

func (r *run) advance(next State) {
	if r.done {
		return
	}
	if stateOrder[next] <= stateOrder[r.state] {
		r.svc.logger.DPanic("pipeline state moved backwards",
			zap.String("pipeline", string(r.pipeline)),
			zap.String("from", string(r.state)),
			zap.String("to", string(next)))
		return
	}
	r.state = next
}

// succeed records the current state as the terminal one.
func (r *run) succeed() {
	r.finish(r.state)
}

// fail ends the run in terminal state, or in StateCancelled when ctx is done, and
// returns err unchanged.
func (r *run) fail(ctx context.Context, terminal State, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		terminal = StateCancelled
	}
	r.finish(terminal)
	return err
}

func (r *run) finish(terminal State) {
	if r.done {
		return
	}
	r.done = true
	r.state = terminal
	r.svc.metrics.PipelineOutcome(string(r.pipeline), string(terminal))
}
