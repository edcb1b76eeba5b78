// Package runner talks to the external dependency-graph task runner. The
// runner owns all task state and execution; this package only consumes its
// API.
package runner

import (
	"context"

	"github.com/hud-govt-nz/hud-automate/internal/report"
)

// Situation is one line of the runner's pre-execution situation report.
type Situation struct {
	Name    string `json:"name"`
	Pending bool   `json:"pending"`
}

// TaskRunner is the consumed collaborator interface. Execute may run
// arbitrarily long; every method takes a context for that reason.
type TaskRunner interface {
	// InvalidateAll tells the runner to discard all cached task outputs.
	InvalidateAll(ctx context.Context) error
	// SituationReport lists tasks and whether each has pending work.
	SituationReport(ctx context.Context) ([]Situation, error)
	// Execute runs the task graph, returning an error if the run failed.
	Execute(ctx context.Context) error
	// Progress returns one record per task in graph order.
	Progress(ctx context.Context) ([]report.TaskRecord, error)
	// Meta returns per-task metadata rows keyed by task name.
	Meta(ctx context.Context) ([]report.MetaRecord, error)
	// ReadArtifact returns the raw bytes of a named task output.
	ReadArtifact(ctx context.Context, name string) ([]byte, error)
}
