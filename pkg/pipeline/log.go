package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcodd23/go-serving-stmt/pkg/logx"
)

// Status of a pipeline log line.
type Status string

const (
	Started    Status = "STARTED"
	Processing Status = "PROCESSING"
	Completed  Status = "COMPLETED"
	Error      Status = "ERROR"
	Stopped    Status = "STOPPED"
)

// BuildPipelineLog formats a pipeline log line, skipping the empty parts.
func BuildPipelineLog(status Status, workerID, pipelineName, stageName, eventID, detail string) string {
	parts := []string{fmt.Sprintf("[%s]", status)}

	if pipelineName != "" {
		parts = append(parts, fmt.Sprintf("Pipeline: %s", pipelineName))
	}
	if workerID != "" {
		parts = append(parts, fmt.Sprintf("Worker: %s", workerID))
	}
	if stageName != "" {
		parts = append(parts, fmt.Sprintf("Stage: %s", stageName))
	}
	if eventID != "" {
		parts = append(parts, fmt.Sprintf("Event: %s", eventID))
	}
	if detail != "" {
		parts = append(parts, detail)
	}

	return strings.Join(parts, ", ")
}

func logDebug(ctx context.Context, msg string) {
	logx.GetLogger().LogDebug(ctx, msg)
}
