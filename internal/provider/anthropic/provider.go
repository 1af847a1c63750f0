// Package anthropic streams completions from the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianshen/docsynth/internal/provider"
)

const apiVersion = "2023-06-01"

func init() {
	provider.RegisterProvider("anthropic", func(baseURL, apiKey string, _ map[string]string) provider.LLMProvider {
		return New(baseURL, apiKey)
	})
}

// Provider is a Messages API client.
type Provider struct {
	endpoint string
	header   http.Header
	client   *http.Client
}

// New returns a Provider for the API rooted at baseURL.
func New(baseURL, apiKey string) *Provider {
	h := make(http.Header)
	h.Set("x-api-key", apiKey)
	h.Set("anthropic-version", apiVersion)
	return &Provider{
		endpoint: strings.TrimRight(baseURL, "/") + "/v1/messages",
		header:   h,
		client:   &http.Client{},
	}
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Stream      bool         `json:"stream"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string                  `json:"role"`
	Content []provider.ContentBlock `json:"content"`
}

// Stream posts req with streaming enabled. A non-200 reply is returned as
// *provider.APIError before any event is read.
func (p *Provider) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	body := apiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
		System:      req.System,
		Messages:    make([]apiMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, apiMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := provider.PostJSON(ctx, p.client, p.endpoint, p.header, body)
	if err != nil {
		return nil, err
	}
	return provider.Pump(ctx, resp.Body, decode), nil
}

// ---------- event decoding ----------

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func decode(evt provider.SSEEvent) ([]provider.StreamEvent, bool) {
	switch evt.Event {
	case "message_start":
		var v struct {
			Message struct {
				Usage usage `json:"usage"`
			} `json:"message"`
		}
		if json.Unmarshal([]byte(evt.Data), &v) != nil || v.Message.Usage.InputTokens == 0 {
			return nil, false
		}
		return one(provider.StreamEvent{Type: provider.EventUsage, InputTokens: v.Message.Usage.InputTokens}), false

	case "content_block_delta":
		var v struct {
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(evt.Data), &v); err != nil {
			return one(provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("decoding content_block_delta: %w", err)}), false
		}
		if v.Delta.Type != "text_delta" {
			return nil, false
		}
		return one(provider.StreamEvent{Type: provider.EventText, Text: v.Delta.Text}), false

	case "message_delta":
		var v struct {
			Usage usage `json:"usage"`
		}
		if json.Unmarshal([]byte(evt.Data), &v) != nil || v.Usage.OutputTokens == 0 {
			return nil, false
		}
		return one(provider.StreamEvent{Type: provider.EventUsage, OutputTokens: v.Usage.OutputTokens}), false

	case "message_stop":
		return one(provider.StreamEvent{Type: provider.EventStop}), true

	case "error":
		return one(provider.StreamEvent{Type: provider.EventError, Error: streamError(evt.Data)}), true
	}
	return nil, false
}

func one(evt provider.StreamEvent) []provider.StreamEvent {
	return []provider.StreamEvent{evt}
}

// streamError maps an error event sent after a 200 reply onto the HTTP
// status the same failure would have carried, so overloads stay retryable.
func streamError(data string) *provider.APIError {
	var v struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	_ = json.Unmarshal([]byte(data), &v)

	status := http.StatusInternalServerError
	switch v.Error.Type {
	case "overloaded_error":
		status = 529
	case "rate_limit_error":
		status = http.StatusTooManyRequests
	case "invalid_request_error":
		status = http.StatusBadRequest
	case "authentication_error":
		status = http.StatusUnauthorized
	}
	return &provider.APIError{StatusCode: status, Body: data}
}
