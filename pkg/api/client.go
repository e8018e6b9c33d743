// Package api provides the request/response client for the non-streaming
// Cosmo server endpoints: health and stats, quiz listing and retrieval,
// answer evaluation, document upload, and history management.
//
// Streaming chat lives in pkg/stream; this client covers everything else.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cosmohq/cosmo/pkg/logger"
)

// Client calls the Cosmo server's JSON endpoints. All methods make a
// single attempt; callers decide whether to retry.
type Client struct {
	target     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client for the given server URL.
func NewClient(target string, opts ...Option) *Client {
	c := &Client{
		target: strings.TrimRight(target, "/"),
		httpClient: &http.Client{
			// Evaluation runs a model round trip and can be slow.
			Timeout: 2 * time.Minute,
		},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health fetches server health and headline knowledge-base counts.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches full knowledge-base statistics including per-source counts.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.getJSON(ctx, "/api/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListQuizzes fetches summaries of every quiz known to the server.
func (c *Client) ListQuizzes(ctx context.Context) ([]QuizSummary, error) {
	var out struct {
		Quizzes []QuizSummary `json:"quizzes"`
	}
	if err := c.getJSON(ctx, "/api/quizzes", &out); err != nil {
		return nil, err
	}
	return out.Quizzes, nil
}

// GetQuiz fetches one quiz by identifier. A missing quiz surfaces the
// server's error message (e.g. "Quiz 'x' not found") verbatim.
func (c *Client) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	var out Quiz
	if err := c.getJSON(ctx, "/api/quizzes/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearHistory drops the server-side conversation history.
func (c *Client) ClearHistory(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+"/api/history/clear", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.doDiscard(req)
}

// Evaluate submits an answer for model-side grading.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (*Evaluation, error) {
	var out Evaluation
	if err := c.postJSON(ctx, "/api/quizzes/evaluate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends one document to the server for ingestion as a multipart
// form. The force flag is propagated as a query parameter only when set,
// asking the server to re-index an already-known document.
func (c *Client) Upload(ctx context.Context, path string, force bool) (*UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart form: %w", err)
	}

	endpoint := c.target + "/api/ingest"
	if force {
		endpoint += "?force=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading document", "path", path, "force", force)

	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and decodes a 2xx JSON body into out. Non-2xx
// responses become errors carrying the server's embedded message when one
// is present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeErrorBody(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) doDiscard(req *http.Request) error {
	return c.do(req, nil)
}

// decodeErrorBody surfaces the server's {"error": ...} message verbatim,
// falling back to the bare status code when the body is unparseable.
func decodeErrorBody(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}
