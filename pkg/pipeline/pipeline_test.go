package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/marcodd23/go-serving-stmt/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	id    string
	trace []string
}

func (j job) GetEventId() string {
	return j.id
}

func appendStage(name string) pipeline.Stage[job] {
	return pipeline.Named[job](name, func(_ context.Context, j job) (job, error) {
		j.trace = append(append([]string{}, j.trace...), name)
		return j, nil
	})
}

func TestPipelineProcessRunsStagesInOrder(t *testing.T) {
	p := pipeline.NewPipeline[job]("p", appendStage("a"), appendStage("b"), appendStage("c"))

	out, err := p.Process(context.Background(), job{id: "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, out.trace)
}

func TestPipelineProcessStopsAtFirstError(t *testing.T) {
	errBoom := errors.New("boom")
	failing := pipeline.Named[job]("fail", func(_ context.Context, j job) (job, error) {
		return j, errBoom
	})

	p := pipeline.NewPipeline[job]("p", appendStage("a"), failing, appendStage("c"))

	out, err := p.Process(context.Background(), job{id: "1"})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"a"}, out.trace)
}

func TestPipelineProcessHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := pipeline.NewPipeline[job]("p", appendStage("a"))

	_, err := p.Process(ctx, job{id: "1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestratorProcessesEveryEvent(t *testing.T) {
	input := make(chan job)
	output := make(chan pipeline.Result[job], 10)

	oddFails := pipeline.Named[job]("odd", func(_ context.Context, j job) (job, error) {
		var n int
		_, _ = fmt.Sscanf(j.id, "%d", &n)
		if n%2 == 1 {
			return j, fmt.Errorf("odd job %d", n)
		}
		return j, nil
	})
	p := pipeline.NewPipeline[job]("sync", appendStage("a"), oddFails)

	o := pipeline.NewOrchestrator(map[string]pipeline.Config[job]{
		"sync": {Pipeline: p, InputChan: input, OutputChan: output, NumWorkers: 3},
	})

	wg := &sync.WaitGroup{}
	o.Execute(context.Background(), wg)

	for i := 0; i < 6; i++ {
		input <- job{id: fmt.Sprint(i)}
	}
	close(input)
	wg.Wait()
	close(output)

	var ok, failed []string
	for res := range output {
		if res.Err != nil {
			failed = append(failed, res.Event.id)
		} else {
			ok = append(ok, res.Event.id)
		}
	}
	sort.Strings(ok)
	sort.Strings(failed)

	assert.Equal(t, []string{"0", "2", "4"}, ok)
	assert.Equal(t, []string{"1", "3", "5"}, failed)
}

func TestOrchestratorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	o := pipeline.NewOrchestrator(map[string]pipeline.Config[job]{
		"idle": {Pipeline: pipeline.NewPipeline[job]("idle"), InputChan: make(chan job)},
	})

	wg := &sync.WaitGroup{}
	o.Execute(ctx, wg)
	cancel()
	wg.Wait()
}

func TestBuildPipelineLog(t *testing.T) {
	assert.Equal(t, "[ERROR], Pipeline: sync, Worker: 2, Event: 67/fv/v1, failed",
		pipeline.BuildPipelineLog(pipeline.Error, "2", "sync", "", "67/fv/v1", "failed"))
	assert.Equal(t, "[STOPPED]", pipeline.BuildPipelineLog(pipeline.Stopped, "", "", "", "", ""))
}
