package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNetwork señala una falla de transporte o timeout al contactar al
// responder. Se distingue de una respuesta bien formada pero vacía, que no
// es un error.
var ErrNetwork = errors.New("bot network failure")

// Client define la interfaz hacia el responder automatizado.
type Client interface {
	Submit(ctx context.Context, text string) (Reply, error)
}

// HTTPClient implementa Client contra el endpoint POST /chat del responder.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient construye el cliente HTTP del responder. Con timeout <= 0 se
// usan 30 segundos.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse acepta el texto primario bajo cualquiera de sus claves
// equivalentes; Submit prefiere la primera presente.
type chatResponse struct {
	Reply      *ReplyText `json:"reply"`
	Response   *ReplyText `json:"response"`
	Sources    []string   `json:"sources,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
}

func (c *HTTPClient) Submit(ctx context.Context, text string) (Reply, error) {
	bodyBytes, err := json.Marshal(chatRequest{Message: text})
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		return Reply{}, fmt.Errorf("bot http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Reply{}, fmt.Errorf("unmarshal response: %w", err)
	}

	reply := Reply{Sources: cr.Sources, Confidence: cr.Confidence}
	switch {
	case cr.Reply != nil:
		reply.Text = *cr.Reply
	case cr.Response != nil:
		reply.Text = *cr.Response
	}
	// Un payload sin texto es una respuesta válida pero inútil; el
	// controlador decide el fallback.
	return reply, nil
}
