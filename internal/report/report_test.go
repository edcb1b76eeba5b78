package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 {
	return &v
}

func TestParseProgress(t *testing.T) {
	assert.Equal(t, ProgressCompleted, ParseProgress("completed"))
	assert.Equal(t, ProgressSkipped, ParseProgress("skipped"))
	assert.Equal(t, ProgressUnknown, ParseProgress("canceled"))
	assert.Equal(t, ProgressUnknown, ParseProgress(""))
}

func TestAggregate_MinutesFormatting(t *testing.T) {
	progress := []TaskRecord{
		{Name: "extract", Progress: ProgressCompleted, Seconds: f64(30)},
		{Name: "transform", Progress: ProgressCompleted, Seconds: f64(90)},
		{Name: "load", Progress: ProgressCompleted, Seconds: f64(150)},
		{Name: "report", Progress: ProgressSkipped},
	}

	rep, err := Aggregate(progress, nil)
	require.NoError(t, err)
	require.Len(t, rep, 4)

	assert.Equal(t, "0.5", rep[0].Minutes)
	assert.Equal(t, "1.5", rep[1].Minutes)
	assert.Equal(t, "2.5", rep[2].Minutes)
	assert.Equal(t, "-", rep[3].Minutes)
}

func TestAggregate_CompletedWithoutSeconds(t *testing.T) {
	rep, err := Aggregate([]TaskRecord{{Name: "a", Progress: ProgressCompleted}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "-", rep[0].Minutes)
}

func TestAggregate_LeftJoin(t *testing.T) {
	progress := []TaskRecord{
		{Name: "extract", Progress: ProgressCompleted, Seconds: f64(60)},
		{Name: "load", Progress: ProgressErrored},
	}
	meta := []MetaRecord{
		{Name: "extract", Fields: map[string]string{"kind": "file"}},
	}

	rep, err := Aggregate(progress, meta)
	require.NoError(t, err)
	require.Len(t, rep, 2)

	assert.Equal(t, "file", rep[0].Meta["kind"])
	assert.Nil(t, rep[1].Meta, "row without a metadata match keeps nil meta")
}

func TestAggregate_DuplicateProgressName(t *testing.T) {
	progress := []TaskRecord{
		{Name: "extract", Progress: ProgressCompleted, Seconds: f64(60)},
		{Name: "extract", Progress: ProgressSkipped},
	}

	_, err := Aggregate(progress, nil)
	var joinErr *JoinCardinalityError
	require.ErrorAs(t, err, &joinErr)
	assert.Equal(t, "progress", joinErr.Table)
	assert.Equal(t, "extract", joinErr.Name)
}

func TestAggregate_DuplicateMetaName(t *testing.T) {
	progress := []TaskRecord{{Name: "extract", Progress: ProgressCompleted, Seconds: f64(60)}}
	meta := []MetaRecord{{Name: "extract"}, {Name: "extract"}}

	_, err := Aggregate(progress, meta)
	var joinErr *JoinCardinalityError
	require.ErrorAs(t, err, &joinErr)
	assert.Equal(t, "meta", joinErr.Table)
}

func TestComputeRunStatus_AllSkipped(t *testing.T) {
	rep := RunReport{
		{Progress: ProgressSkipped},
		{Progress: ProgressSkipped},
	}
	assert.Equal(t, StatusSkipped, ComputeRunStatus(rep))
}

func TestComputeRunStatus_ErroredWins(t *testing.T) {
	rep := RunReport{
		{Progress: ProgressCompleted},
		{Progress: ProgressErrored},
		{Progress: ProgressSkipped},
	}
	assert.Equal(t, StatusFailed, ComputeRunStatus(rep))

	// errored beats skipped even when everything else is skipped
	rep = RunReport{
		{Progress: ProgressSkipped},
		{Progress: ProgressErrored},
	}
	assert.Equal(t, StatusFailed, ComputeRunStatus(rep))
}

func TestComputeRunStatus_Success(t *testing.T) {
	rep := RunReport{
		{Progress: ProgressCompleted},
		{Progress: ProgressSkipped},
		{Progress: ProgressOutdated},
	}
	assert.Equal(t, StatusSuccess, ComputeRunStatus(rep))
}

func TestComputeRunStatus_EmptyReportIsFailed(t *testing.T) {
	assert.Equal(t, StatusFailed, ComputeRunStatus(nil))
	assert.Equal(t, StatusFailed, ComputeRunStatus(RunReport{}))
}
