package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hud-govt-nz/hud-automate/internal/card"
)

func testCard() card.Card {
	banner := card.BuildStatusBanner("nightly", "success")
	return card.Assemble([]card.Node{banner}, nil, "nightly: success")
}

func TestSendCard_Accepted(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := New(srv.URL).SendCard(context.Background(), testCard())
	require.NoError(t, err)
	assert.Equal(t, "message", received["type"])
}

func TestSendCard_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad card"))
	}))
	defer srv.Close()

	err := New(srv.URL).SendCard(context.Background(), testCard())
	var notifyErr *NotifyError
	require.ErrorAs(t, err, &notifyErr)
	assert.Equal(t, http.StatusBadRequest, notifyErr.StatusCode)
	assert.Equal(t, "bad card", notifyErr.Body)
}

func TestSendCard_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := New(srv.URL).SendCard(context.Background(), testCard())
	require.Error(t, err)
	var notifyErr *NotifyError
	assert.False(t, errors.As(err, &notifyErr), "transport errors are not NotifyError")
}

func TestSendMessage(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	recipients := []card.Recipient{{Name: "Ana", ID: "id-1"}}
	err := New(srv.URL).SendMessage(context.Background(), "run done", recipients, "summary")
	require.NoError(t, err)

	attachment := received["attachments"].([]any)[0].(map[string]any)
	content := attachment["content"].(map[string]any)
	body := content["body"].([]any)
	require.Len(t, body, 2, "text block plus ping block")

	msteams := content["msteams"].(map[string]any)
	require.Len(t, msteams["entities"].([]any), 1)
}
