package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(fixtureSchema(), "blog")

	assert.Contains(t, out, "# blog\n")
	assert.Contains(t, out, "- **status**: draft, published")

	assert.Contains(t, out, "## users\n\nRegistered users.")
	assert.Contains(t, out, "| Column | Type | Nullable | Default | Constraints | Comment |")
	assert.Contains(t, out, "| id | serial | false |  | PK, auto-increment |  |")
	assert.Contains(t, out, "| email | text | false |  | unique | Login address. |")
	assert.Contains(t, out, "| active | boolean | true | true |  |  |")

	assert.Contains(t, out, "- `idx_email` unique index (email)")

	assert.Contains(t, out, "### References")
	assert.Contains(t, out, "- (author_id) → users (id)")
	assert.Contains(t, out, "- (author_id) → users (id), many-to-one")
}

func TestRenderMarkdown_NoEnumSection(t *testing.T) {
	s := fixtureSchema()
	s.Enums = nil
	out := RenderMarkdown(s, "blog")
	assert.NotContains(t, out, "## Enums")
}

func TestMDEscape(t *testing.T) {
	assert.Equal(t, `a\|b`, mdEscape("a|b"))
	assert.Equal(t, "two lines", mdEscape("two\nlines"))
}

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(fixtureSchema())

	assert.Contains(t, out, "erDiagram\n")
	assert.Contains(t, out, "  users {\n")
	assert.Contains(t, out, "    serial id PK")
	assert.Contains(t, out, "    text email UK")
	assert.Contains(t, out, "  posts }o--|| users : \"author_id -> id\"")
}

func TestRenderMermaid_OneToOneConnector(t *testing.T) {
	s := fixtureSchema()
	s.Relations[0].Cardinality = "one-to-one"
	out := RenderMermaid(s)
	assert.Contains(t, out, "posts ||--|| users")
}

func TestMermaidType(t *testing.T) {
	assert.Equal(t, "varchar(80)", mermaidType("varchar(80)"))
	assert.Equal(t, "enum('a'_'b')", mermaidType("enum('a','b')"))
	assert.Equal(t, "double_precision", mermaidType("double precision"))
}
