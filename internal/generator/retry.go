package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianshen/docsynth/internal/provider"
)

// request sends one prompt, retrying transient failures with exponential
// backoff. The gate is re-entered before every attempt. Permanent failures
// return immediately wrapped in ErrPermanent; other non-transient errors
// return unwrapped on the first attempt.
func (o *Orchestrator) request(ctx context.Context, jobID string, unit Unit, system, prompt string) (string, error) {
	delay := o.cfg.BaseDelay
	attempts := max(o.cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := o.gate.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate gate: %w", err)
		}

		o.record(jobID, fmt.Sprintf("Requesting documentation for %s (attempt %d/%d)", unit.Title, attempt, attempts))
		text, err := o.llm.Complete(ctx, system, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if provider.IsPermanent(err) {
			return "", fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		if !provider.IsTransient(err) {
			return "", err
		}
		if attempt == attempts {
			break
		}

		wait := delay
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > wait {
			wait = min(apiErr.RetryAfter, o.cfg.MaxDelay)
		}
		if provider.IsRateLimited(err) {
			o.record(jobID, fmt.Sprintf("Rate limited on %s, retrying in %s", unit.Title, wait))
		} else {
			o.record(jobID, fmt.Sprintf("Transient error on %s (%v), retrying in %s", unit.Title, err, wait))
		}
		if err := o.sleep(ctx, wait); err != nil {
			return "", err
		}
		delay = min(delay*2, o.cfg.MaxDelay)
	}

	return "", fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
