// Package drafting talks to the OpenAI-compatible text-generation backend
// that produces document drafts.
package drafting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avtoyurist/docbot/utils"
)

// Message is one chat message in a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client is a typed chat-completions client. The response contract is strict:
// anything that does not decode into a non-empty first choice is a drafting
// error, there is no fallback probing of alternative fields.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a drafting client for the given endpoint
func New(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete issues one completion call. The context bounds the call; a timeout
// is a failure reported to the caller, never silently retried.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	req := completionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", utils.DraftingError("failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", utils.DraftingError("failed to create request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", utils.DraftingError("drafting request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.DraftingError("failed to read drafting response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var backendErr apiError
		if json.Unmarshal(respBody, &backendErr) == nil && backendErr.Error.Message != "" {
			return "", utils.DraftingError(fmt.Sprintf("drafting backend error (%d): %s", resp.StatusCode, backendErr.Error.Message), nil)
		}
		return "", utils.DraftingError(fmt.Sprintf("drafting backend error (%d)", resp.StatusCode), nil)
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", utils.DraftingError("failed to decode drafting response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", utils.DraftingError("drafting response contained no choices", nil)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", utils.DraftingError("drafting response was empty", nil)
	}
	return content, nil
}
