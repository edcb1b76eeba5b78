package report

import (
	"fmt"
	"math"
)

// TaskProgress is the per-task state reported by the task runner. Values
// coming off the wire are normalised through ParseProgress so an
// unrecognised string becomes ProgressUnknown instead of silently falling
// into a default branch.
type TaskProgress string

const (
	ProgressCompleted TaskProgress = "completed"
	ProgressErrored   TaskProgress = "errored"
	ProgressSkipped   TaskProgress = "skipped"
	ProgressOutdated  TaskProgress = "outdated"
	ProgressStarted   TaskProgress = "started"
	ProgressUnknown   TaskProgress = "unknown"
)

func ParseProgress(s string) TaskProgress {
	switch TaskProgress(s) {
	case ProgressCompleted, ProgressErrored, ProgressSkipped, ProgressOutdated, ProgressStarted:
		return TaskProgress(s)
	}
	return ProgressUnknown
}

// RunStatus is the overall outcome of one run, derived from the
// aggregated task rows.
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusSkipped RunStatus = "skipped"
	StatusFailed  RunStatus = "failed"
)

// TaskRecord is one progress row from the task runner. Seconds is nil for
// tasks that never reached completion.
type TaskRecord struct {
	Name     string
	Progress TaskProgress
	Seconds  *float64
}

// MetaRecord is one metadata row from the task runner, keyed by task name.
type MetaRecord struct {
	Name   string
	Fields map[string]string
}

// Row is one joined report row. Minutes holds the formatted elapsed time
// for completed tasks and "-" for everything else.
type Row struct {
	Name     string
	Progress TaskProgress
	Seconds  *float64
	Minutes  string
	Meta     map[string]string
}

// RunReport preserves the order of the progress table, one row per task.
type RunReport []Row

// JoinCardinalityError reports a duplicated task name in one of the join
// inputs. The join is strictly one-to-one, so this aborts aggregation.
type JoinCardinalityError struct {
	Table string
	Name  string
}

func (e *JoinCardinalityError) Error() string {
	return fmt.Sprintf("duplicate task name %q in %s table", e.Name, e.Table)
}

// Aggregate joins the progress and metadata tables on task name and derives
// the Minutes column. A progress row with no metadata match keeps nil
// metadata; a duplicate name in either table is a *JoinCardinalityError.
func Aggregate(progress []TaskRecord, meta []MetaRecord) (RunReport, error) {
	seen := make(map[string]bool, len(progress))
	for _, rec := range progress {
		if seen[rec.Name] {
			return nil, &JoinCardinalityError{Table: "progress", Name: rec.Name}
		}
		seen[rec.Name] = true
	}

	metaByName := make(map[string]map[string]string, len(meta))
	for _, rec := range meta {
		if _, ok := metaByName[rec.Name]; ok {
			return nil, &JoinCardinalityError{Table: "meta", Name: rec.Name}
		}
		metaByName[rec.Name] = rec.Fields
	}

	rep := make(RunReport, 0, len(progress))
	for _, rec := range progress {
		rep = append(rep, Row{
			Name:     rec.Name,
			Progress: rec.Progress,
			Seconds:  rec.Seconds,
			Minutes:  formatMinutes(rec),
			Meta:     metaByName[rec.Name],
		})
	}
	return rep, nil
}

func formatMinutes(rec TaskRecord) string {
	if rec.Progress != ProgressCompleted || rec.Seconds == nil {
		return "-"
	}
	minutes := math.Round(*rec.Seconds/60*10) / 10
	return fmt.Sprintf("%.1f", minutes)
}

// ComputeRunStatus derives the overall run outcome. Precedence, highest
// first: every row skipped -> skipped, any row errored -> failed,
// otherwise success. An empty report counts as failed: a run that produced
// no rows at all is indistinguishable from a runner that never started.
func ComputeRunStatus(rep RunReport) RunStatus {
	if len(rep) == 0 {
		return StatusFailed
	}
	allSkipped := true
	for _, row := range rep {
		if row.Progress != ProgressSkipped {
			allSkipped = false
			break
		}
	}
	if allSkipped {
		return StatusSkipped
	}
	for _, row := range rep {
		if row.Progress == ProgressErrored {
			return StatusFailed
		}
	}
	return StatusSuccess
}
