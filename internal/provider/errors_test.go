package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
		transient   bool
		permanent   bool
	}{
		{"429", &APIError{StatusCode: 429}, true, true, false},
		{"wrapped 429", fmt.Errorf("llm complete: %w", &APIError{StatusCode: 429}), true, true, false},
		{"500", &APIError{StatusCode: 500}, false, true, false},
		{"503", &APIError{StatusCode: 503}, false, true, false},
		{"408", &APIError{StatusCode: 408}, false, true, false},
		{"400", &APIError{StatusCode: 400}, false, false, true},
		{"401", &APIError{StatusCode: 401}, false, false, true},
		{"403", &APIError{StatusCode: 403}, false, false, true},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), false, true, false},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, false, true, false},
		{"plain", errors.New("boom"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rateLimited, IsRateLimited(tt.err))
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
		})
	}
}

func TestNewAPIErrorReadsRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	apiErr := NewAPIError(resp)
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, `{"error":"slow down"}`, apiErr.Body)
	assert.Equal(t, 3*time.Second, apiErr.RetryAfter)
	assert.Equal(t, `API error 429: {"error":"slow down"}`, apiErr.Error())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("soon"))
	assert.Equal(t, 2*time.Second, parseRetryAfter("2"))
}

func TestMessageText(t *testing.T) {
	m := NewUserMessage("hello")
	m.Content = append(m.Content, ContentBlock{Type: "image"}, ContentBlock{Type: "text", Text: " world"})
	assert.Equal(t, "hello world", m.Text())
}
