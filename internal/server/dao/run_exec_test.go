package dao

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hud-govt-nz/hud-automate/internal/orchestrator"
	"github.com/hud-govt-nz/hud-automate/internal/report"
	"github.com/hud-govt-nz/hud-automate/internal/server/model"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(filepath.Join(t.TempDir(), "test.db")))
}

func TestUpsert_CreateThenUpdate(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	d := NewRunExecDao()

	run := &model.RunExecution{
		RunUUID: "uuid-1",
		RunName: "nightly",
		Project: "housing",
		Status:  "running",
	}
	require.NoError(t, d.Upsert(ctx, run))

	run2 := &model.RunExecution{
		RunUUID:   "uuid-1",
		RunName:   "nightly",
		Project:   "housing",
		Status:    "failed",
		ErrorText: "disk full",
	}
	require.NoError(t, d.Upsert(ctx, run2))

	got, err := d.GetByUUID(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "disk full", got.ErrorText)

	runs, err := d.Latest(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "upsert must not duplicate rows")
}

func TestGetByUUID_NotFound(t *testing.T) {
	setupDB(t)
	_, err := NewRunExecDao().GetByUUID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRecord(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	d := NewRunExecDao()

	rec := orchestrator.RunRecord{
		UUID:       "uuid-2",
		RunName:    "nightly",
		Project:    "housing",
		Status:     report.StatusSuccess,
		ReportJSON: `[{"Name":"extract"}]`,
	}
	require.NoError(t, d.Record(ctx, rec))

	got, err := d.GetByUUID(ctx, "uuid-2")
	require.NoError(t, err)
	assert.Equal(t, "success", got.Status)
	assert.Contains(t, got.ReportJSON, "extract")
}

func TestLatestOrderAndLimit(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	d := NewRunExecDao()

	for _, uuid := range []string{"a", "b", "c"} {
		require.NoError(t, d.Upsert(ctx, &model.RunExecution{
			RunUUID: uuid, RunName: "nightly", Project: "housing", Status: "success",
		}))
	}

	runs, err := d.Latest(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
