package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hud-govt-nz/hud-automate/internal/report"
)

// Client is the HTTP implementation of TaskRunner against the runner
// service. No client-side timeout is set: Execute legitimately runs for
// hours, so cancellation is the caller's job via context.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

func (c *Client) InvalidateAll(ctx context.Context) error {
	return c.post(ctx, "/invalidate", nil, nil)
}

func (c *Client) SituationReport(ctx context.Context) ([]Situation, error) {
	var out []Situation
	if err := c.get(ctx, "/situation", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Execute(ctx context.Context) error {
	var out struct {
		Error string `json:"error"`
	}
	if err := c.post(ctx, "/execute", nil, &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("%s", out.Error)
	}
	return nil
}

type progressRow struct {
	Name     string   `json:"name"`
	Progress string   `json:"progress"`
	Seconds  *float64 `json:"seconds"`
}

func (c *Client) Progress(ctx context.Context) ([]report.TaskRecord, error) {
	var rows []progressRow
	if err := c.get(ctx, "/progress", &rows); err != nil {
		return nil, err
	}
	records := make([]report.TaskRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, report.TaskRecord{
			Name:     row.Name,
			Progress: report.ParseProgress(row.Progress),
			Seconds:  row.Seconds,
		})
	}
	return records, nil
}

type metaRow struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) Meta(ctx context.Context) ([]report.MetaRecord, error) {
	var rows []metaRow
	if err := c.get(ctx, "/meta", &rows); err != nil {
		return nil, err
	}
	records := make([]report.MetaRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, report.MetaRecord{Name: row.Name, Fields: row.Fields})
	}
	return records, nil
}

func (c *Client) ReadArtifact(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/artifact/"+name, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("read artifact %s status=%d body=%s", name, res.StatusCode, string(body))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("runner %s: %w", path, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 300 {
		return fmt.Errorf("runner %s status=%d body=%s", path, res.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode runner %s response: %w", path, err)
	}
	return nil
}
