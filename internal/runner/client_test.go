package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hud-govt-nz/hud-automate/internal/report"
)

func newRunnerServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/invalidate", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "invalidate")
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/situation", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"extract","pending":true},{"name":"load","pending":false}]`))
	})
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":""}`))
	})
	mux.HandleFunc("/progress", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"extract","progress":"completed","seconds":30},{"name":"load","progress":"weird"}]`))
	})
	mux.HandleFunc("/meta", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"extract","fields":{"kind":"file"}}]`))
	})
	mux.HandleFunc("/artifact/consents", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Situation(t *testing.T) {
	srv, _ := newRunnerServer(t)
	c := NewClient(srv.URL)

	situations, err := c.SituationReport(context.Background())
	require.NoError(t, err)
	require.Len(t, situations, 2)
	assert.Equal(t, "extract", situations[0].Name)
	assert.True(t, situations[0].Pending)
	assert.False(t, situations[1].Pending)
}

func TestClient_ProgressNormalisesUnknown(t *testing.T) {
	srv, _ := newRunnerServer(t)
	c := NewClient(srv.URL)

	records, err := c.Progress(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, report.ProgressCompleted, records[0].Progress)
	require.NotNil(t, records[0].Seconds)
	assert.Equal(t, 30.0, *records[0].Seconds)

	assert.Equal(t, report.ProgressUnknown, records[1].Progress)
	assert.Nil(t, records[1].Seconds)
}

func TestClient_InvalidateAndExecute(t *testing.T) {
	srv, calls := newRunnerServer(t)
	c := NewClient(srv.URL)

	require.NoError(t, c.InvalidateAll(context.Background()))
	assert.Contains(t, *calls, "invalidate")
	require.NoError(t, c.Execute(context.Background()))
}

func TestClient_ExecuteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"disk full"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Execute(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestClient_ReadArtifact(t *testing.T) {
	srv, _ := newRunnerServer(t)
	c := NewClient(srv.URL)

	data, err := c.ReadArtifact(context.Background(), "consents")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-bytes"), data)

	_, err = c.ReadArtifact(context.Background(), "missing")
	assert.Error(t, err)
}
