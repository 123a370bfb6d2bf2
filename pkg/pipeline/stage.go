package pipeline

import (
	"context"
)

// Stage describes a pipeline stage an event can be routed through.
// Depending on the implementation, it may return the same event or a modified copy.
type Stage[E Event] interface {
	Process(ctx context.Context, event E) (E, error)
}

// StageFunc adapts a function to a Stage.
type StageFunc[E Event] func(ctx context.Context, event E) (E, error)

func (f StageFunc[E]) Process(ctx context.Context, event E) (E, error) {
	return f(ctx, event)
}

// NamedStage logs the stage name before delegating to Stage.
type NamedStage[E Event] struct {
	Name string
	Stage[E]
}

// Named wraps f in a NamedStage.
func Named[E Event](name string, f StageFunc[E]) NamedStage[E] {
	return NamedStage[E]{Name: name, Stage: f}
}

func (s NamedStage[E]) Process(ctx context.Context, event E) (E, error) {
	workerID, _ := ctx.Value(workerIDKey).(string)
	pipelineName, _ := ctx.Value(pipelineNameKey).(string)

	logDebug(ctx, BuildPipelineLog(Processing, workerID, pipelineName, s.Name, event.GetEventId(), ""))

	return s.Stage.Process(ctx, event)
}
