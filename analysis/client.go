// ABOUTME: HTTP client for the /analyze endpoint
// ABOUTME: Uploads a file as multipart and falls back to a local preview on any failure
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultEndpoint is where the analysis server listens by default.
const DefaultEndpoint = "http://localhost:5001/analyze"

// Client posts files to a running analysis server.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Logger   *log.Logger
}

// NewClient creates a client for endpoint, or DefaultEndpoint when empty.
func NewClient(endpoint string, logger *log.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 2 * time.Minute},
		Logger:   logger,
	}
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
	Error    string `json:"error"`
}

// Analyze never returns an error: failures yield the simulated preview.
func (c *Client) Analyze(ctx context.Context, fileName, content string) (string, error) {
	text, err := c.Request(ctx, fileName, content)
	if err != nil {
		c.Logger.Warn("analysis server unavailable, using local preview", "endpoint", c.Endpoint, "err", err)
		return Simulated(err, content), nil
	}
	return text, nil
}

// Request uploads content and returns the server's analysis.
func (c *Client) Request(ctx context.Context, fileName, content string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(fw, strings.NewReader(content)); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach analysis server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out.Error == "" {
			out.Error = resp.Status
		}
		return "", errors.New(out.Error)
	}
	return out.Analysis, nil
}
