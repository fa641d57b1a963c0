package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractComments_TableAndColumns(t *testing.T) {
	src := []byte(`
## Stores user accounts.
users = table("users", {
    ## Surrogate key.
    "id": integer("id").primary_key(),
    # Display name shown in the UI.
    "name": text("name"),
    "email": text("email"),
})
`)
	sc, err := ExtractComments("users.star", src)
	require.NoError(t, err)
	require.Contains(t, sc, "users")

	tc := sc["users"]
	require.NotNil(t, tc.Comment)
	assert.Equal(t, "Stores user accounts.", *tc.Comment)

	assert.Equal(t, "Surrogate key.", tc.Columns["id"])
	assert.Equal(t, "Display name shown in the UI.", tc.Columns["name"])
	_, ok := tc.Columns["email"]
	assert.False(t, ok, "undocumented column must be absent")
}

func TestExtractComments_CommentKeyedByDatabaseName(t *testing.T) {
	src := []byte(`
posts = table("posts", {
    ## Author of the post.
    "authorId": integer("author_id"),
})
`)
	sc, err := ExtractComments("posts.star", src)
	require.NoError(t, err)

	tc := sc["posts"]
	require.NotNil(t, tc)
	assert.Equal(t, "Author of the post.", tc.Columns["author_id"])
	_, ok := tc.Columns["authorId"]
	assert.False(t, ok)
}

func TestExtractComments_ChainedModifiersUnwrap(t *testing.T) {
	src := []byte(`
items = table("items", {
    ## Stock count.
    "count": integer("count").not_null().default(0),
})
`)
	sc, err := ExtractComments("items.star", src)
	require.NoError(t, err)
	assert.Equal(t, "Stock count.", sc["items"].Columns["count"])
}

func TestExtractComments_NoComment(t *testing.T) {
	src := []byte(`
users = table("users", {
    "id": integer("id"),
})
`)
	sc, err := ExtractComments("users.star", src)
	require.NoError(t, err)

	tc := sc["users"]
	require.NotNil(t, tc)
	assert.Nil(t, tc.Comment)
	assert.Empty(t, tc.Columns)
}

func TestExtractComments_IgnoresOtherConstructors(t *testing.T) {
	src := []byte(`
## Not a table.
config = settings("app", {})

## A real table.
users = pg_table("users", {
    "id": integer("id"),
})
`)
	sc, err := ExtractComments("schema.star", src)
	require.NoError(t, err)

	assert.Len(t, sc, 1)
	require.Contains(t, sc, "users")
	assert.Equal(t, "A real table.", *sc["users"].Comment)
}

func TestExtractComments_ParseError(t *testing.T) {
	_, err := ExtractComments("broken.star", []byte("users = table(\n"))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken.star", perr.File)
}

func TestSchemaComments_MergeLastWriterWins(t *testing.T) {
	first := "first"
	second := "second"
	a := SchemaComments{
		"users": {Comment: &first, Columns: map[string]string{"id": "old"}},
		"posts": {Columns: map[string]string{}},
	}
	b := SchemaComments{
		"users": {Comment: &second, Columns: map[string]string{"name": "new"}},
	}

	a.Merge(b)

	assert.Equal(t, "second", *a["users"].Comment)
	assert.Equal(t, map[string]string{"name": "new"}, a["users"].Columns)
	assert.Contains(t, a, "posts")
}

func TestNormalizeComment_Rules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "doc lines win over plain lines",
			src: `
# plain noise
## Kept doc line.
users = table("users", {"id": integer("id")})
`,
			want: "Kept doc line.",
		},
		{
			name: "multi line doc comment",
			src: `
## First line.
## Second line.
users = table("users", {"id": integer("id")})
`,
			want: "First line.\nSecond line.",
		},
		{
			name: "annotation tag ends the text",
			src: `
## Visible part.
## @deprecated use accounts instead
## Ignored after the tag.
users = table("users", {"id": integer("id")})
`,
			want: "Visible part.",
		},
		{
			name: "leading asterisk decoration stripped",
			src: `
## * Stores user information.
users = table("users", {"id": integer("id")})
`,
			want: "Stores user information.",
		},
		{
			name: "surrounding blank lines trimmed",
			src: `
##
## Body text.
##
users = table("users", {"id": integer("id")})
`,
			want: "Body text.",
		},
		{
			name: "plain comments used when no doc lines",
			src: `
# Just a note.
users = table("users", {"id": integer("id")})
`,
			want: "Just a note.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := ExtractComments("t.star", []byte(tt.src))
			require.NoError(t, err)
			tc := sc["users"]
			require.NotNil(t, tc)
			require.NotNil(t, tc.Comment)
			assert.Equal(t, tt.want, *tc.Comment)
		})
	}
}

func TestNormalizeComment_EmptyIsNotAbsent(t *testing.T) {
	src := []byte(`
## @internal
users = table("users", {"id": integer("id")})
`)
	sc, err := ExtractComments("t.star", src)
	require.NoError(t, err)

	tc := sc["users"]
	require.NotNil(t, tc.Comment, "a comment that strips to nothing is still a comment")
	assert.Equal(t, "", *tc.Comment)
}
