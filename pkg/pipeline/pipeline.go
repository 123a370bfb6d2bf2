// Package pipeline routes events through ordered stages on a pool of workers.
package pipeline

import (
	"context"
)

// Event is the unit routed through a pipeline.
type Event interface {
	GetEventId() string
}

// A Pipeline helps orchestrate multiple pipeline steps.
type Pipeline[E Event] struct {
	Name   string
	stages []Stage[E]
}

// NewPipeline creates a new pipeline including the stages as configured.
func NewPipeline[E Event](name string, stages ...Stage[E]) *Pipeline[E] {
	return &Pipeline[E]{Name: name, stages: stages}
}

// Process pipes an event through the stages in order and stops at the first error.
// The returned event is the output of the last stage that ran.
func (p *Pipeline[E]) Process(ctx context.Context, event E) (E, error) {
	workerID, _ := ctx.Value(workerIDKey).(string)
	logDebug(ctx, BuildPipelineLog(Started, workerID, p.Name, "", event.GetEventId(), ""))

	var err error
	for _, stage := range p.stages {
		if err = ctx.Err(); err != nil {
			break
		}

		event, err = stage.Process(ctx, event)
		if err != nil {
			break
		}
	}

	return event, err
}
