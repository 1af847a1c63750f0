package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to content cut to fit a prompt budget.
const TruncationMarker = "\n\n... (content truncated)"

// Validate checks text structurally. Group documents only need to exceed
// minLength characters; file documents must also contain a fenced code block
// and the word "Example".
func Validate(mode Mode, text string, minLength int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n <= minLength {
		return fmt.Errorf("%w: %d characters, need more than %d", ErrValidation, n, minLength)
	}
	if mode != ModeFile {
		return nil
	}
	if !strings.Contains(text, "```") {
		return fmt.Errorf("%w: no fenced code block", ErrValidation)
	}
	if !strings.Contains(text, "Example") {
		return fmt.Errorf("%w: no Example section", ErrValidation)
	}
	return nil
}

// Truncate caps content at budget bytes, cutting on a rune boundary and
// appending TruncationMarker. Content within budget is returned unchanged.
func Truncate(content string, budget int) string {
	if budget <= 0 || len(content) <= budget {
		return content
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + TruncationMarker
}
