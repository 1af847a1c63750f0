package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Decoder maps one SSE event to zero or more stream events. done ends the
// stream after the returned events are delivered.
type Decoder func(SSEEvent) (events []StreamEvent, done bool)

// PostJSON sends payload as a JSON POST and returns the response of a 200
// reply. Any other status is read into an *APIError and the body is closed.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if header != nil {
		req.Header = header.Clone()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, NewAPIError(resp)
	}
	return resp, nil
}

// Pump decodes the SSE stream in body on a new goroutine. The returned
// channel is closed, and body with it, when the stream ends, decode reports
// done or ctx is cancelled. Cancellation and read failures are delivered as
// a final EventError.
func Pump(ctx context.Context, body io.ReadCloser, decode Decoder) <-chan StreamEvent {
	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)
		defer body.Close()

		cancelled := func() {
			select {
			case ch <- StreamEvent{Type: EventError, Error: ctx.Err()}:
			default:
			}
		}

		sc := NewSSEScanner(body)
		for sc.Next() {
			if ctx.Err() != nil {
				cancelled()
				return
			}
			events, done := decode(sc.Event())
			for _, evt := range events {
				select {
				case ch <- evt:
				case <-ctx.Done():
					cancelled()
					return
				}
			}
			if done {
				return
			}
		}

		if err := sc.Err(); err != nil {
			select {
			case ch <- StreamEvent{Type: EventError, Error: err}:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}
