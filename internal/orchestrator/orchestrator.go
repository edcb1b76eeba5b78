// Package orchestrator sequences one batch run: optional cache
// invalidation, task-graph execution, report aggregation, artifact upload
// and the closing chat notification.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hud-govt-nz/hud-automate/internal/blob"
	"github.com/hud-govt-nz/hud-automate/internal/card"
	"github.com/hud-govt-nz/hud-automate/internal/common"
	"github.com/hud-govt-nz/hud-automate/internal/report"
	"github.com/hud-govt-nz/hud-automate/internal/runner"
)

// TaskExecutionError wraps whatever the task runner raised during Execute.
// It is returned to the caller only after a best-effort notification.
type TaskExecutionError struct {
	Err error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task execution failed: %v", e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}

// Target names one task artifact to upload, with its file extension.
type Target struct {
	Name string
	Ext  string
}

// Params are the explicit inputs of one run.
type Params struct {
	RunUUID       string // generated when empty
	RunName       string
	ProjectName   string
	UploadTargets []Target
	UploadFolders []string
	Ping          []card.Recipient
	Invalidate    bool
	Forced        bool
}

// Notifier is the outbound notification dependency.
type Notifier interface {
	SendCard(ctx context.Context, c card.Card) error
}

// RunRecord is the history entry written after each run.
type RunRecord struct {
	UUID       string
	RunName    string
	Project    string
	Status     report.RunStatus
	ErrorText  string
	ReportJSON string
}

// Recorder persists run history. Recording is best-effort.
type Recorder interface {
	Record(ctx context.Context, rec RunRecord) error
}

type Orchestrator struct {
	runner   runner.TaskRunner
	store    blob.Store
	notifier Notifier
	recorder Recorder
	log      *zap.Logger

	// GraceDelay is how long to wait after invalidation before
	// execution starts, giving an operator a window to abort.
	GraceDelay time.Duration
}

// New wires an orchestrator. recorder may be nil when no history store is
// configured.
func New(r runner.TaskRunner, store blob.Store, n Notifier, recorder Recorder) *Orchestrator {
	return &Orchestrator{
		runner:     r,
		store:      store,
		notifier:   n,
		recorder:   recorder,
		log:        common.GetLogger(),
		GraceDelay: 5 * time.Second,
	}
}

// Run performs one pass: invalidate (optional) -> execute -> aggregate ->
// upload (success only) -> notify. Execution and upload failures are
// surfaced to the caller after a best-effort notification; notification
// failures themselves are only ever logged.
func (o *Orchestrator) Run(ctx context.Context, p Params) error {
	if p.RunUUID == "" {
		p.RunUUID = uuid.NewString()
	}
	log := o.log.With(zap.String("run", p.RunName), zap.String("run_uuid", p.RunUUID))

	if p.Invalidate {
		if err := o.runner.InvalidateAll(ctx); err != nil {
			return fmt.Errorf("invalidate caches: %w", err)
		}
		log.Info("caches invalidated, waiting before execution", zap.Duration("grace", o.GraceDelay))
		select {
		case <-time.After(o.GraceDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	situation, err := o.runner.SituationReport(ctx)
	if err != nil {
		return fmt.Errorf("situation report: %w", err)
	}
	pending := 0
	for _, s := range situation {
		if s.Pending {
			pending++
		}
	}
	if pending == 0 && !p.Invalidate && !p.Forced {
		log.Info("nothing to do, skipping run", zap.Int("tasks", len(situation)))
		return nil
	}

	log.Info("executing task graph", zap.Int("pending", pending))
	var execErr error
	if err := o.runner.Execute(ctx); err != nil {
		execErr = &TaskExecutionError{Err: err}
		log.Error("task graph execution failed", zap.Error(err))
	}

	rep, aggErr := o.aggregate(ctx)
	if aggErr != nil {
		// With a failed execution a broken report is expected; otherwise
		// the aggregation failure is the run failure.
		log.Error("report aggregation failed", zap.Error(aggErr))
		if execErr != nil {
			aggErr = nil
		}
	}

	status := report.ComputeRunStatus(rep)
	if execErr != nil || aggErr != nil {
		status = report.StatusFailed
	}

	var uploadErr error
	if execErr == nil && aggErr == nil && status == report.StatusSuccess {
		uploadErr = o.upload(ctx, p, rep, log)
		if uploadErr != nil {
			log.Error("artifact upload failed", zap.Error(uploadErr))
		}
	}

	runErr := firstError(execErr, aggErr, uploadErr)
	o.notify(ctx, p, rep, status, runErr, log)
	o.record(ctx, p, rep, status, runErr, log)

	if runErr != nil {
		return runErr
	}
	log.Info("run finished", zap.String("status", string(status)))
	return nil
}

func (o *Orchestrator) aggregate(ctx context.Context) (report.RunReport, error) {
	progress, err := o.runner.Progress(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	meta, err := o.runner.Meta(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch meta: %w", err)
	}
	return report.Aggregate(progress, meta)
}

func (o *Orchestrator) upload(ctx context.Context, p Params, rep report.RunReport, log *zap.Logger) error {
	prefix := path.Join(p.ProjectName, "outputs", p.RunName)
	for _, t := range p.UploadTargets {
		data, err := o.runner.ReadArtifact(ctx, t.Name)
		if err != nil {
			return err
		}
		dest := fmt.Sprintf("%s/%s.%s", prefix, t.Name, t.Ext)
		if err := o.store.Put(ctx, data, dest, true); err != nil {
			return err
		}
		log.Info("artifact uploaded", zap.String("dest", dest))
	}
	for _, dir := range p.UploadFolders {
		if err := o.store.PutDir(ctx, dir, prefix, true); err != nil {
			return err
		}
		log.Info("folder uploaded", zap.String("dir", dir), zap.String("prefix", prefix))
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode run report: %w", err)
	}
	return o.store.Put(ctx, data, prefix+"/run_report.json", true)
}

func (o *Orchestrator) notify(ctx context.Context, p Params, rep report.RunReport, status report.RunStatus, runErr error, log *zap.Logger) {
	var extras []card.Node
	if len(rep) > 0 {
		rows := make([]map[string]string, 0, len(rep))
		for _, r := range rep {
			rows = append(rows, map[string]string{
				"task":     r.Name,
				"progress": string(r.Progress),
				"minutes":  r.Minutes,
			})
		}
		extras = append(extras, card.BuildColumnSet(rows, []string{"task", "progress", "minutes"}))
	}
	if runErr != nil {
		extras = append(extras, card.BuildErrorBlock(runErr.Error()))
	}
	var mentions []card.Mention
	if len(p.Ping) > 0 {
		mentions = card.BuildMentions(p.Ping)
		extras = append(extras, card.BuildPingBlock(mentions))
	}

	banner := card.BuildStatusBanner(p.RunName, string(status), extras...)
	summary := fmt.Sprintf("%s: %s", p.RunName, status)
	if err := o.notifier.SendCard(ctx, card.Assemble([]card.Node{banner}, mentions, summary)); err != nil {
		// notification is best-effort, a failed send never fails the run
		log.Warn("notification failed", zap.Error(err))
	}
}

func (o *Orchestrator) record(ctx context.Context, p Params, rep report.RunReport, status report.RunStatus, runErr error, log *zap.Logger) {
	if o.recorder == nil {
		return
	}
	repJSON, err := json.Marshal(rep)
	if err != nil {
		repJSON = nil
	}
	rec := RunRecord{
		UUID:       p.RunUUID,
		RunName:    p.RunName,
		Project:    p.ProjectName,
		Status:     status,
		ReportJSON: string(repJSON),
	}
	if runErr != nil {
		rec.ErrorText = runErr.Error()
	}
	if err := o.recorder.Record(ctx, rec); err != nil {
		log.Warn("record run history failed", zap.Error(err))
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
