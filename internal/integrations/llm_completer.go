package integrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianshen/docsynth/internal/provider"
)

// DefaultRequestTimeout bounds one completion, including the streamed body.
const DefaultRequestTimeout = 60 * time.Second

// LLMCompleter wraps an LLMProvider to collect streamed text into a single string.
type LLMCompleter struct {
	provider  provider.LLMProvider
	model     string
	maxTokens int
	timeout   time.Duration
}

// CompleterOption configures an LLMCompleter.
type CompleterOption func(*LLMCompleter)

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) CompleterOption {
	return func(c *LLMCompleter) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithRequestTimeout sets the per-request timeout. Zero disables it.
func WithRequestTimeout(d time.Duration) CompleterOption {
	return func(c *LLMCompleter) {
		c.timeout = d
	}
}

// NewLLMCompleter creates a new LLMCompleter.
func NewLLMCompleter(p provider.LLMProvider, model string, opts ...CompleterOption) *LLMCompleter {
	c := &LLMCompleter{
		provider:  p,
		model:     model,
		maxTokens: 4096,
		timeout:   DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends system and prompt to the LLM and returns the full response
// text. A request that outlives the timeout fails with an error wrapping
// context.DeadlineExceeded, which provider.IsTransient accepts.
func (c *LLMCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ch, err := c.provider.Stream(ctx, provider.NewTextRequest(c.model, system, prompt, c.maxTokens))
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	var b strings.Builder
	var streamErr error
	for evt := range ch {
		switch evt.Type {
		case provider.EventText:
			if streamErr == nil {
				b.WriteString(evt.Text)
			}
		case provider.EventError:
			if streamErr == nil {
				streamErr = evt.Error
			}
		}
	}
	if streamErr != nil {
		return "", fmt.Errorf("llm stream error: %w", streamErr)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	return b.String(), nil
}
