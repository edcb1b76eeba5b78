package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	content := []byte(`
run_name: nightly
project: housing
container_url: https://storage.example.govt.nz/outputs
targets:
  - name: consents
    ext: csv
  - name: summary
    ext: html
folders:
  - ./reports
ping:
  - name: Ana
    id: ana@example.govt.nz
invalidate: true
`)

	m, err := ParseManifest(content)
	require.NoError(t, err)

	assert.Equal(t, "nightly", m.RunName)
	assert.Equal(t, "housing", m.Project)
	assert.Equal(t, "https://storage.example.govt.nz/outputs", m.ContainerURL)
	require.Len(t, m.Targets, 2)
	assert.Equal(t, TargetSpec{Name: "consents", Ext: "csv"}, m.Targets[0])
	assert.Equal(t, []string{"./reports"}, m.Folders)
	require.Len(t, m.Ping, 1)
	assert.Equal(t, "ana@example.govt.nz", m.Ping[0].ID)
	assert.True(t, m.Invalidate)
	assert.False(t, m.Forced)
}

func TestParseManifest_Invalid(t *testing.T) {
	_, err := ParseManifest([]byte("run_name: [unclosed"))
	assert.Error(t, err)
}
