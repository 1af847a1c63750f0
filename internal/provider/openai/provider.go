// Package openai streams completions from OpenAI-compatible chat APIs such
// as OpenAI, OpenRouter or a local gateway.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianshen/docsynth/internal/provider"
)

const doneMarker = "[DONE]"

func init() {
	provider.RegisterProvider("openai", func(baseURL, apiKey string, extraHeaders map[string]string) provider.LLMProvider {
		return New(baseURL, apiKey, extraHeaders)
	})
}

// Provider is a chat completions client.
type Provider struct {
	endpoint string
	header   http.Header
	client   *http.Client
}

// New returns a Provider for the API rooted at baseURL. extraHeaders are
// added to every request; OpenRouter uses them for attribution.
func New(baseURL, apiKey string, extraHeaders map[string]string) *Provider {
	h := make(http.Header)
	for k, v := range extraHeaders {
		h.Set(k, v)
	}
	h.Set("Authorization", "Bearer "+apiKey)
	return &Provider{
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		header:   h,
		client:   &http.Client{},
	}
}

type apiRequest struct {
	Model         string         `json:"model"`
	Messages      []apiMessage   `json:"messages"`
	MaxTokens     int            `json:"max_tokens"`
	Temperature   *float64       `json:"temperature,omitempty"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stream posts req with streaming enabled. The system prompt travels as a
// leading "system" message.
func (p *Provider) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	body := apiRequest{
		Model:         req.Model,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}
	if req.System != "" {
		body.Messages = append(body.Messages, apiMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, apiMessage{Role: m.Role, Content: m.Text()})
	}

	resp, err := provider.PostJSON(ctx, p.client, p.endpoint, p.header, body)
	if err != nil {
		return nil, err
	}
	return provider.Pump(ctx, resp.Body, decode), nil
}

// ---------- chunk decoding ----------

type chunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// decode handles the data-only events of the chat stream. Gateways report
// upstream failures as an in-stream error object after a 200 reply; those
// are surfaced as 5xx so the caller retries.
func decode(evt provider.SSEEvent) ([]provider.StreamEvent, bool) {
	switch evt.Data {
	case "":
		return nil, false
	case doneMarker:
		return []provider.StreamEvent{{Type: provider.EventStop}}, true
	}

	var c chunk
	if err := json.Unmarshal([]byte(evt.Data), &c); err != nil {
		return []provider.StreamEvent{{Type: provider.EventError, Error: fmt.Errorf("decoding chunk: %w", err)}}, false
	}
	if c.Error != nil {
		return []provider.StreamEvent{{
			Type:  provider.EventError,
			Error: &provider.APIError{StatusCode: http.StatusBadGateway, Body: c.Error.Message},
		}}, true
	}

	var out []provider.StreamEvent
	if c.Usage != nil {
		out = append(out, provider.StreamEvent{
			Type:         provider.EventUsage,
			InputTokens:  c.Usage.PromptTokens,
			OutputTokens: c.Usage.CompletionTokens,
		})
	}
	for _, ch := range c.Choices {
		if ch.Delta.Content != nil && *ch.Delta.Content != "" {
			out = append(out, provider.StreamEvent{Type: provider.EventText, Text: *ch.Delta.Content})
		}
	}
	return out, false
}
