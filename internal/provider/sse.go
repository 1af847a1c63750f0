package provider

import (
	"bufio"
	"io"
	"strings"
)

// maxSSELine bounds a single data line; generated documents can arrive in
// large chunks from some OpenAI-compatible gateways.
const maxSSELine = 1 << 20

// SSEEvent is a single Server-Sent Event.
type SSEEvent struct {
	Event string
	Data  string
}

// SSEScanner reads Server-Sent Events one at a time, following the
// bufio.Scanner pattern:
//
//	s := NewSSEScanner(r)
//	for s.Next() {
//	    evt := s.Event()
//	}
//	if err := s.Err(); err != nil { ... }
type SSEScanner struct {
	scanner *bufio.Scanner
	event   SSEEvent
	err     error
	done    bool
}

// NewSSEScanner creates a streaming SSE parser over r.
func NewSSEScanner(r io.Reader) *SSEScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	return &SSEScanner{scanner: sc}
}

// Next advances to the next event. It returns false at end of input or on
// error; check Err afterwards.
func (s *SSEScanner) Next() bool {
	if s.done {
		return false
	}

	var current SSEEvent
	hasData := false

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if hasData || current.Event != "" {
				s.event = current
				return true
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			current.Event = strings.TrimSpace(value)
		case "data":
			if hasData {
				current.Data += "\n" + value
			} else {
				current.Data = value
				hasData = true
			}
		}
	}

	s.err = s.scanner.Err()
	s.done = true

	if hasData || current.Event != "" {
		s.event = current
		return true
	}
	return false
}

// Event returns the most recent event read by Next.
func (s *SSEScanner) Event() SSEEvent {
	return s.event
}

// Err returns the first non-EOF error encountered.
func (s *SSEScanner) Err() error {
	return s.err
}
