package provider

import (
	"context"
	"strings"
)

// LLMProvider streams a completion for one request.
type LLMProvider interface {
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)
}

// EventType classifies a StreamEvent.
type EventType string

const (
	EventText  EventType = "text_delta"
	EventUsage EventType = "usage"
	EventStop  EventType = "stop"
	EventError EventType = "error"
)

// StreamEvent is one item on a provider's stream. Text is set for
// EventText, the token counts for EventUsage and Error for EventError.
type StreamEvent struct {
	Type         EventType
	Text         string
	Error        error
	InputTokens  int
	OutputTokens int
}

// CompletionRequest is the provider-neutral request body. Providers that
// take the system prompt as a message translate it themselves.
type CompletionRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// NewTextRequest builds a single-turn request from a system prompt and a
// user prompt.
func NewTextRequest(model, system, prompt string, maxTokens int) CompletionRequest {
	return CompletionRequest{
		Model:     model,
		System:    system,
		Messages:  []Message{NewUserMessage(prompt)},
		MaxTokens: maxTokens,
	}
}

// Message is one conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a typed part of a message. Only "text" blocks are produced.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewUserMessage wraps text in a user turn.
func NewUserMessage(text string) Message {
	return Message{Role: "user", Content: []ContentBlock{{Type: "text", Text: text}}}
}

// Text joins the text blocks of m.
func (m Message) Text() string {
	var b strings.Builder
	for _, c := range m.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}
