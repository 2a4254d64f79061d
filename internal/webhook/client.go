package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SecretHeader carries the shared secret on every webhook call
const SecretHeader = "X-Kamus-Secret"

// Client posts moderation notices to the configured webhook
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	stubMode   bool
	logger     *slog.Logger
}

// NewClient creates a new webhook client with the given configuration.
// In stub mode, or without a URL, notices are only logged.
func NewClient(baseURL, secret string, stubMode bool, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		stubMode:   stubMode || baseURL == "",
		logger:     logger,
	}
}

// NotifySubmission tells moderators about a new pending definition
func (c *Client) NotifySubmission(ctx context.Context, notice SubmissionNotice) error {
	if c.stubMode {
		c.logger.Info("webhook stub: submission notice",
			"definition_id", notice.DefinitionID,
			"word", notice.Word,
			"author", notice.Author,
		)
		return nil
	}
	return c.post(ctx, "/submissions", notice)
}

// SendDigest posts the moderation queue summary
func (c *Client) SendDigest(ctx context.Context, digest Digest) error {
	if c.stubMode {
		c.logger.Info("webhook stub: moderation digest", "pending", digest.Pending)
		return nil
	}
	return c.post(ctx, "/digest", digest)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(SecretHeader, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
