package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	got := Format(Fields{ID: "authentication", Title: "Authentication", SidebarPosition: 2}, "# Auth\n")
	assert.Equal(t, "---\nid: \"authentication\"\ntitle: \"Authentication\"\nsidebar_position: 2\n---\n\n# Auth\n", got)
}

func TestFormatAddsTrailingNewline(t *testing.T) {
	got := Format(Fields{ID: "x", Title: "X"}, "body")
	assert.Equal(t, "---\nid: \"x\"\ntitle: \"X\"\nsidebar_position: 0\n---\n\nbody\n", got)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, `plain`},
		{`say "hi"`, `say \"hi\"`},
		{`a\b`, `a\\b`},
		{`[draft] a|b`, `\x5Bdraft\x5D a\x7Cb`},
		{"two\nlines", "two lines"},
		{"  padded\t", "padded"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func TestFormatParseRoundTripsHostileTitles(t *testing.T) {
	title := `Auth "login" [beta] | admin\root`
	raw := Format(Fields{ID: "auth", Title: title, SidebarPosition: 7}, "Body text")

	f, body, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "auth", f.ID)
	assert.Equal(t, title, f.Title)
	assert.Equal(t, 7, f.SidebarPosition)
	assert.Equal(t, "Body text\n", body)
}

func TestParseMissing(t *testing.T) {
	_, _, err := Parse("no header here")
	assert.True(t, errors.Is(err, ErrMissing))

	_, _, err = Parse("---\nid: x\n")
	assert.True(t, errors.Is(err, ErrMissing))
}

func TestParseIgnoresInlineDashes(t *testing.T) {
	raw := "---\nid: tricky\ntitle: \"uses --- in value\"\n---\n\nBody"
	f, body, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "uses --- in value", f.Title)
	assert.Equal(t, "Body", body)
}

func TestParseInvalidYAML(t *testing.T) {
	_, _, err := Parse("---\nid: [unclosed\n---\nbody")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissing))
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "# Title\n", Strip("---\nid: \"a\"\n---\n\n# Title\n"))
	assert.Equal(t, "# Title\n", Strip("# Title\n"))
	assert.Equal(t, "", Strip("---\nid: a\n---"))
}

func TestStripThenFormatDoesNotDuplicateHeader(t *testing.T) {
	first := Format(Fields{ID: "a", Title: "A", SidebarPosition: 1}, "content")
	second := Format(Fields{ID: "a", Title: "A", SidebarPosition: 1}, Strip(first))
	assert.Equal(t, first, second)
}
