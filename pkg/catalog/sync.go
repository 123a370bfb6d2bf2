package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/pipeline"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
)

const syncPipelineName = "catalog-sync"

// Source serves the statements of feature views, usually the feature store REST API.
type Source interface {
	GetServingPreparedStatements(
		ctx context.Context,
		featureStoreID int,
		featureViewName string,
		featureViewVersion int,
		batch bool,
	) ([]*servingstmt.ServingPreparedStatement, error)
}

// SyncResult reports the outcome of copying the statements of one feature view.
type SyncResult struct {
	View  FeatureView
	Count int
	Err   error
}

type syncJob struct {
	position int
	view     FeatureView
	stmts    []*servingstmt.ServingPreparedStatement
}

func (j syncJob) GetEventId() string {
	return j.view.String()
}

// Syncer copies the statements of feature views from a Source into a Store, several views at a time.
type Syncer struct {
	source  Source
	store   Store
	workers int
}

func NewSyncer(source Source, store Store, workers int) *Syncer {
	if workers <= 0 {
		workers = 1
	}

	return &Syncer{source: source, store: store, workers: workers}
}

// Sync fetches, validates and stores the statements of every view. A failing view does not stop the others.
// Results are in the order of views.
func (s *Syncer) Sync(ctx context.Context, views []FeatureView, batch bool) []SyncResult {
	input := make(chan syncJob)
	output := make(chan pipeline.Result[syncJob], len(views))

	p := pipeline.NewPipeline[syncJob](syncPipelineName,
		pipeline.Named[syncJob]("fetch", s.fetchStage(batch)),
		pipeline.Named[syncJob]("validate", validateStage),
		pipeline.Named[syncJob]("store", s.storeStage),
	)

	orchestrator := pipeline.NewOrchestrator(map[string]pipeline.Config[syncJob]{
		syncPipelineName: {Pipeline: p, InputChan: input, OutputChan: output, NumWorkers: s.workers},
	})

	wg := &sync.WaitGroup{}
	orchestrator.Execute(ctx, wg)

	results := make([]SyncResult, len(views))
	for i, view := range views {
		results[i] = SyncResult{View: view, Err: context.Canceled}
	}

feed:
	for i, view := range views {
		select {
		case input <- syncJob{position: i, view: view}:
		case <-ctx.Done():
			break feed
		}
	}
	close(input)

	wg.Wait()
	close(output)

	for res := range output {
		results[res.Event.position] = SyncResult{View: res.Event.view, Count: len(res.Event.stmts), Err: res.Err}
	}

	return results
}

func (s *Syncer) fetchStage(batch bool) pipeline.StageFunc[syncJob] {
	return func(ctx context.Context, job syncJob) (syncJob, error) {
		stmts, err := s.source.GetServingPreparedStatements(ctx, job.view.FeatureStoreID, job.view.Name, job.view.Version, batch)
		if err != nil {
			return job, err
		}

		job.stmts = stmts

		return job, nil
	}
}

func validateStage(_ context.Context, job syncJob) (syncJob, error) {
	for i, stmt := range job.stmts {
		if stmt == nil {
			continue
		}

		if err := stmt.Validate(); err != nil {
			return job, errorx.NewGeneralErrorWrapper(err, "statement %d of %s is invalid", i, job.view)
		}
	}

	servingstmt.SortByIndex(job.stmts)

	return job, nil
}

func (s *Syncer) storeStage(ctx context.Context, job syncJob) (syncJob, error) {
	if err := s.store.Replace(ctx, job.view, job.stmts); err != nil {
		return job, err
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("synced %d serving prepared statements of %s", len(job.stmts), job.view))

	return job, nil
}

// ParseFeatureView parses the "<featureStoreId>/<name>/<version>" form printed by FeatureView.String,
// with or without the "v" before the version.
func ParseFeatureView(ref string) (FeatureView, error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 3 {
		return FeatureView{}, errorx.NewGeneralError("feature view '%s' is not in the form <featureStoreId>/<name>/<version>", ref)
	}

	fsID, err := strconv.Atoi(parts[0])
	if err != nil {
		return FeatureView{}, errorx.NewGeneralErrorWrapper(err, "invalid feature store id in '%s'", ref)
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v"))
	if err != nil {
		return FeatureView{}, errorx.NewGeneralErrorWrapper(err, "invalid version in '%s'", ref)
	}

	return FeatureView{FeatureStoreID: fsID, Name: parts[1], Version: version}, nil
}
