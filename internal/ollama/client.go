package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	log     *slog.Logger
	client  *http.Client
}

type TagModel struct {
	Name       string    `json:"name"`
	Model      string    `json:"model"`
	Digest     string    `json:"digest"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ChatMessage is the wire shape of one /api/chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewClient builds a client for baseURL. A nil httpClient means no client
// side timeout; callers bound calls through ctx.
func NewClient(baseURL string, log *slog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: trimSlash(baseURL),
		log:     log,
		client:  httpClient,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/version", c.baseURL), nil)
	if err != nil {
		return err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()
	c.log.Debug("ollama ping", "response", string(data))
	if res.StatusCode >= 400 {
		return fmt.Errorf("ollama ping status: %d", res.StatusCode)
	}

	return nil
}

// Chat sends the whole conversation (non-stream) via /api/chat and returns
// the assistant message content.
func (c *Client) Chat(ctx context.Context, model string, messages []ChatMessage) (string, time.Duration, error) {
	payload := struct {
		Model    string        `json:"model"`
		Messages []ChatMessage `json:"messages"`
		Stream   bool          `json:"stream"`
	}{Model: model, Messages: messages, Stream: false}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/chat", c.baseURL), bytes.NewReader(b))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", 0, fmt.Errorf("ollama chat: %s", strings.TrimSpace(apiError(body, res.Status)))
	}
	var out struct {
		Message ChatMessage `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("ollama chat: decode response: %w", err)
	}
	return out.Message.Content, time.Since(start), nil
}

// Tags lists local models via GET /api/tags.
func (c *Client) Tags(ctx context.Context) ([]TagModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/tags", c.baseURL), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("ollama tags: %s", res.Status)
	}
	var out struct {
		Models []TagModel `json:"models"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// apiError extracts {"error": "..."} from an Ollama error body, falling back
// to the raw body or the status line.
func apiError(body []byte, status string) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(bytes.TrimSpace(body)) > 0 {
		return string(body)
	}
	return status
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}
