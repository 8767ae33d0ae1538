package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TrainingPair es un ejemplo input/output del dataset de entrenamiento del
// responder.
type TrainingPair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Client envuelve los endpoints administrativos del responder: CRUD del
// dataset y disparo del reentrenamiento. Sin estado propio.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListTrainingData(ctx context.Context) ([]TrainingPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/training_data", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []TrainingPair `json:"data"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) AddTrainingPair(ctx context.Context, input, output string) error {
	return c.post(ctx, "/admin/add", map[string]string{"input": input, "output": output})
}

func (c *Client) DeleteTrainingPair(ctx context.Context, index int) error {
	return c.post(ctx, "/admin/delete", map[string]int{"index": index})
}

func (c *Client) Retrain(ctx context.Context) error {
	return c.post(ctx, "/train", struct{}{})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("admin request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("admin http error: status=%d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
