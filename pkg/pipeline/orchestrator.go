package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/marcodd23/go-serving-stmt/pkg/logx"
)

type contextKey string

const (
	workerIDKey     contextKey = "workerID"
	pipelineNameKey contextKey = "pipelineName"
)

// Result is the outcome of one event. Event is the output of the last stage that ran.
type Result[E Event] struct {
	Event E
	Err   error
}

// Config holds the configuration for each pipeline, including its input and output channels, and the number of workers.
// OutputChan, when set, receives a Result for every event read from InputChan, failed ones included.
type Config[E Event] struct {
	Pipeline   *Pipeline[E]
	InputChan  <-chan E
	OutputChan chan<- Result[E]
	NumWorkers int
}

// Orchestrator orchestrates multiple pipelines, each with its own input and output channels and a configurable number of workers.
type Orchestrator[E Event] struct {
	pipelines map[string]Config[E]
}

// NewOrchestrator creates a new Orchestrator; pipelines are keyed by name.
func NewOrchestrator[E Event](pipelines map[string]Config[E]) *Orchestrator[E] {
	return &Orchestrator[E]{pipelines: pipelines}
}

// Execute starts the workers of every pipeline and returns immediately. Workers stop when their input channel
// is closed or cancelCtx is done; wg is released once all of them have returned.
func (o *Orchestrator[E]) Execute(cancelCtx context.Context, wg *sync.WaitGroup) {
	for name, config := range o.pipelines {
		numWorkers := config.NumWorkers
		if numWorkers <= 0 {
			numWorkers = 1
		}

		for workerID := 0; workerID < numWorkers; workerID++ {
			wg.Add(1)
			go func(pipelineName string, pipelineConfig Config[E], workerID int) {
				defer wg.Done()
				o.processEvents(cancelCtx, pipelineName, pipelineConfig, workerID)
			}(name, config, workerID)
		}
	}
}

func (o *Orchestrator[E]) processEvents(ctx context.Context, pipelineName string, pipelineConfig Config[E], workerID int) {
	worker := strconv.Itoa(workerID)

	for {
		select {
		case <-ctx.Done():
			logDebug(ctx, BuildPipelineLog(Stopped, worker, pipelineName, "", "", "context cancellation"))
			return
		case event, ok := <-pipelineConfig.InputChan:
			if !ok {
				logDebug(ctx, BuildPipelineLog(Stopped, worker, pipelineName, "", "", "input closed"))
				return
			}

			eventCtx := context.WithValue(ctx, workerIDKey, worker)
			eventCtx = context.WithValue(eventCtx, pipelineNameKey, pipelineName)

			processed, err := pipelineConfig.Pipeline.Process(eventCtx, event)
			if err != nil {
				logx.GetLogger().LogError(eventCtx, BuildPipelineLog(Error, worker, pipelineName, "", event.GetEventId(),
					fmt.Sprintf("error processing event: %v", err)), err)
			} else {
				logDebug(eventCtx, BuildPipelineLog(Completed, worker, pipelineName, "", processed.GetEventId(), ""))
			}

			if pipelineConfig.OutputChan == nil {
				continue
			}

			// The event already went through every stage, so its result is delivered whenever the
			// channel has room, even after cancellation.
			result := Result[E]{Event: processed, Err: err}
			select {
			case pipelineConfig.OutputChan <- result:
			default:
				select {
				case pipelineConfig.OutputChan <- result:
				case <-ctx.Done():
					logDebug(ctx, BuildPipelineLog(Stopped, worker, pipelineName, "", processed.GetEventId(), "result dropped on cancellation"))
					return
				}
			}
		}
	}
}
