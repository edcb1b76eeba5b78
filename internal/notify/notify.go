// Package notify posts assembled cards to the chat webhook. Failures here
// are reported to the caller but are always safe to ignore: a notification
// problem must never be mistaken for a pipeline problem.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hud-govt-nz/hud-automate/internal/card"
	"github.com/hud-govt-nz/hud-automate/internal/common"
)

// NotifyError is a non-2xx response from the webhook endpoint.
type NotifyError struct {
	StatusCode int
	Body       string
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("webhook returned status=%d body=%s", e.StatusCode, e.Body)
}

type Notifier struct {
	webhookURL string
	http       *http.Client
	log        *zap.Logger
}

// New builds a Notifier bound to one webhook URL. The URL is passed in
// explicitly rather than read from the environment here, so tests and
// alternate channels stay easy to wire.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 20 * time.Second},
		log:        common.GetLogger(),
	}
}

// SendCard serializes the card and posts it. Status 200, 201 or 202 counts
// as delivered; anything else comes back as a *NotifyError.
func (n *Notifier) SendCard(ctx context.Context, c card.Card) error {
	data, err := json.Marshal(c.Payload())
	if err != nil {
		return fmt.Errorf("encode card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.http.Do(req)
	if err != nil {
		n.log.Warn("notification send failed", zap.Error(err))
		return fmt.Errorf("post card: %w", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		n.log.Info("notification sent", zap.Int("status", res.StatusCode), zap.String("summary", c.Summary))
		return nil
	}
	n.log.Warn("notification rejected",
		zap.Int("status", res.StatusCode),
		zap.String("body", string(body)))
	return &NotifyError{StatusCode: res.StatusCode, Body: string(body)}
}

// SendMessage posts a plain text line, optionally pinging recipients.
func (n *Notifier) SendMessage(ctx context.Context, text string, recipients []card.Recipient, summary string) error {
	body := []card.Node{card.TextBlock{Text: text, Wrap: true}}
	var mentions []card.Mention
	if len(recipients) > 0 {
		mentions = card.BuildMentions(recipients)
		body = append(body, card.BuildPingBlock(mentions))
	}
	return n.SendCard(ctx, card.Assemble(body, mentions, summary))
}
