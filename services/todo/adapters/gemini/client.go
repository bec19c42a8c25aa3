// Package gemini implements core.TextCompleter on top of Google's
// Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"smart-todo/services/todo/core"
)

const DefaultModel = "gemini-1.5-flash"

type Config struct {
	APIKey string
	Model  string

	// BaseURL and HTTPClient are only set in tests.
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	log    *slog.Logger
	model  string
	models *genai.Models
}

// New builds a client from cfg. A missing API key is not fatal: the client
// is still returned and every Complete call fails with core.ErrService, so
// the service can start without AI features.
func New(ctx context.Context, log *slog.Logger, cfg Config) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := &Client{log: log, model: model}
	if cfg.APIKey == "" {
		log.Warn("gemini api key is not set, completions are disabled")
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.models = gc.Models
	return c, nil
}

// Enabled is false when the client was built without an API key.
func (c *Client) Enabled() bool {
	return c.models != nil
}

// Complete sends prompt as a single user turn and returns the concatenated
// text of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: api key is not configured", core.ErrService)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	callDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if isQuotaError(err) {
			callsTotal.WithLabelValues(outcomeQuota).Inc()
			c.log.Warn("gemini quota exceeded", "error", err)
			return "", fmt.Errorf("%w: %v", core.ErrQuotaExceeded, err)
		}
		callsTotal.WithLabelValues(outcomeError).Inc()
		c.log.Error("gemini request failed", "error", err)
		return "", fmt.Errorf("%w: %v", core.ErrService, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		callsTotal.WithLabelValues(outcomeError).Inc()
		return "", fmt.Errorf("%w: no content generated", core.ErrService)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()

	callsTotal.WithLabelValues(outcomeOK).Inc()
	c.log.Debug("gemini response", "model", c.model, "text", text)
	return text, nil
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}
