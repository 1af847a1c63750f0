// Package frontmatter reads and writes the YAML header that prefixes every
// generated document. The format is: ---\nyaml\n---\nbody.
package frontmatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissing is returned by Parse when raw does not start with a header.
var ErrMissing = errors.New("missing front matter")

// Fields holds the header keys the documentation site understands.
type Fields struct {
	ID              string `yaml:"id"`
	Title           string `yaml:"title"`
	SidebarPosition int    `yaml:"sidebar_position"`
}

// Parse splits raw into header fields and body. The closing delimiter must be
// on a line of its own, so "---" inside a value is not mistaken for it.
func Parse(raw string) (Fields, string, error) {
	block, body, ok := split(raw)
	if !ok {
		if strings.HasPrefix(raw, delimiter) {
			return Fields{}, "", fmt.Errorf("%w: missing closing delimiter", ErrMissing)
		}
		return Fields{}, "", ErrMissing
	}

	var f Fields
	if err := yaml.Unmarshal([]byte(block), &f); err != nil {
		return Fields{}, "", fmt.Errorf("parse front matter YAML: %w", err)
	}
	return f, body, nil
}

// Strip removes a leading header from body, if any.
func Strip(body string) string {
	if _, rest, ok := split(body); ok {
		return rest
	}
	return body
}

// Format renders a header for the given fields followed by body.
func Format(f Fields, body string) string {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	fmt.Fprintf(&b, "id: \"%s\"\n", Sanitize(f.ID))
	fmt.Fprintf(&b, "title: \"%s\"\n", Sanitize(f.Title))
	b.WriteString("sidebar_position: " + strconv.Itoa(f.SidebarPosition) + "\n")
	b.WriteString(delimiter + "\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Sanitize makes s safe inside a double-quoted YAML scalar. Quotes and
// backslashes are backslash-escaped; brackets and pipes use hex escapes so
// naive line-based readers never see them; line breaks collapse to spaces.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '[':
			b.WriteString(`\x5B`)
		case ']':
			b.WriteString(`\x5D`)
		case '|':
			b.WriteString(`\x7C`)
		case '\n', '\r', '\t':
			b.WriteByte(' ')
		default:
			if r < 0x20 {
				continue
			}
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func split(raw string) (block, body string, ok bool) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	if !strings.HasPrefix(raw, delimiter+"\n") && !strings.HasPrefix(raw, delimiter+"\r\n") {
		return "", "", false
	}
	rest := raw[strings.Index(raw, "\n")+1:]

	for offset := 0; offset <= len(rest); {
		end := strings.Index(rest[offset:], "\n")
		line := rest[offset:]
		if end >= 0 {
			line = rest[offset : offset+end]
		}
		if strings.TrimRight(line, "\r") == delimiter {
			block = rest[:offset]
			if end < 0 {
				return block, "", true
			}
			return block, strings.TrimLeft(rest[offset+end+1:], "\r\n"), true
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return "", "", false
}
