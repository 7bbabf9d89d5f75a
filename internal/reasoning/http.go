package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/campaignops/routeflow/internal/config"
	rferrors "github.com/campaignops/routeflow/internal/errors"
)

const apiVersion = "2023-06-01"

// HTTPCompleter calls a messages-style completion API over HTTP.
type HTTPCompleter struct {
	endpoint  string
	model     string
	apiKey    string
	maxTokens int
	client    *http.Client
}

// NewHTTPCompleter builds a completer from the reasoning config. The API
// key is read from the environment variable the config names.
func NewHTTPCompleter(cfg config.ReasoningConfig) (*HTTPCompleter, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, rferrors.NewReasoningError(
			fmt.Sprintf("API key not set (expected in %s)", cfg.APIKeyEnv), nil).
			WithOperation("init")
	}
	return &HTTPCompleter{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    apiKey,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: cfg.Timeout()},
	}, nil
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends prompt to the messages API and returns the concatenated
// text blocks of the reply.
func (c *HTTPCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", rferrors.NewReasoningError("failed to encode request", err).WithOperation("complete")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", rferrors.NewReasoningError("failed to build request", err).WithOperation("complete")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", rferrors.NewReasoningError("completion request failed", err).WithOperation("complete")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", rferrors.NewReasoningError("failed to read response", err).WithOperation("complete")
	}

	var parsed messageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", rferrors.NewReasoningError(
			fmt.Sprintf("unparsable response (status %d)", resp.StatusCode), err).
			WithOperation("complete")
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("completion API returned status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		reqErr := rferrors.NewReasoningError(msg, rferrors.ErrReasoningUnavailable).WithOperation("complete")
		// Client errors other than rate limiting will not succeed on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			reqErr = reqErr.WithRetryable(false)
		}
		return "", reqErr
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", rferrors.NewReasoningError("completion returned no text", rferrors.ErrReasoningEmpty).
			WithOperation("complete")
	}
	return text, nil
}

var _ Completer = (*HTTPCompleter)(nil)
