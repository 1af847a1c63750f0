package wiki

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureMapDiagram(t *testing.T) {
	sections := []section{
		{label: "Authentication", slug: "authentication", pages: []page{{id: "authentication", title: "Authentication"}}},
		{label: "API", slug: "api", pages: []page{{id: "routes-ts", title: "routes.ts"}, {id: "server-ts", title: "server.ts"}}},
	}

	d := featureMapDiagram(sections)
	assert.Equal(t, "feature-map", d.Type)
	assert.Equal(t, "Feature Map", d.Title)
	assert.True(t, strings.HasPrefix(d.Content, "graph TD\n"))
	assert.Contains(t, d.Content, `root --> cat_authentication["Authentication\n1 page(s)"]`)
	assert.Contains(t, d.Content, `cat_api --> doc_api_routes_ts["routes.ts"]`)
	assert.Contains(t, d.Content, `cat_api["API\n2 page(s)"]`)
}

func TestFeatureMapEscapesLabels(t *testing.T) {
	long := strings.Repeat("é", 60)
	d := featureMapDiagram([]section{
		{label: `Say "hi"`, slug: "say-hi", pages: []page{{id: "x", title: long}}},
	})
	assert.Contains(t, d.Content, "Say #quot;hi#quot;")
	assert.Contains(t, d.Content, `["`+strings.Repeat("é", maxLabelRunes)+`"]`)
}

func TestWriteMermaidBlock(t *testing.T) {
	var b strings.Builder
	writeMermaidBlock(&b, Diagram{Content: "graph TD\n    a --> b"})
	assert.Equal(t, "```mermaid\ngraph TD\n    a --> b\n```\n", b.String())
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "héll", truncateUTF8("héllo", 4))
	assert.Equal(t, "hi", truncateUTF8("hi", 4))
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "src_auth_login_ts", sanitizeID("src/auth-login.ts"))
}
