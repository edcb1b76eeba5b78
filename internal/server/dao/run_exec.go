package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hud-govt-nz/hud-automate/internal/orchestrator"
	"github.com/hud-govt-nz/hud-automate/internal/server/model"
)

type RunExecDao interface {
	Upsert(ctx context.Context, run *model.RunExecution) error
	GetByUUID(ctx context.Context, uuid string) (*model.RunExecution, error)
	GetByID(ctx context.Context, id uint) (*model.RunExecution, error)
	Latest(ctx context.Context, limit int) ([]model.RunExecution, error)

	// Record satisfies orchestrator.Recorder.
	Record(ctx context.Context, rec orchestrator.RunRecord) error
}

type runExecDAO struct {
}

func NewRunExecDao() RunExecDao {
	return &runExecDAO{}
}

func (r *runExecDAO) Upsert(ctx context.Context, run *model.RunExecution) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.RunExecution
		if err := tx.Where("run_uuid = ?", run.RunUUID).Take(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(run).Error
			}
			return err
		}

		existing.Status = run.Status
		existing.ErrorText = run.ErrorText
		existing.ReportJSON = run.ReportJSON
		return tx.Save(&existing).Error
	})
}

func (r *runExecDAO) GetByUUID(ctx context.Context, uuid string) (*model.RunExecution, error) {
	var run model.RunExecution
	if err := db.WithContext(ctx).Where("run_uuid = ?", uuid).Take(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runExecDAO) GetByID(ctx context.Context, id uint) (*model.RunExecution, error) {
	var run model.RunExecution
	if err := db.WithContext(ctx).Take(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runExecDAO) Latest(ctx context.Context, limit int) ([]model.RunExecution, error) {
	var runs []model.RunExecution
	if err := db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runExecDAO) Record(ctx context.Context, rec orchestrator.RunRecord) error {
	return r.Upsert(ctx, &model.RunExecution{
		RunUUID:    rec.UUID,
		RunName:    rec.RunName,
		Project:    rec.Project,
		Status:     string(rec.Status),
		ErrorText:  rec.ErrorText,
		ReportJSON: rec.ReportJSON,
	})
}
